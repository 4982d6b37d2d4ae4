package wbem

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Request elements. Only the IMETHODCALL shape is needed; extrinsic method
// calls are not used by the exporter.

type cimRequest struct {
	XMLName    xml.Name `xml:"CIM"`
	CIMVersion string   `xml:"CIMVERSION,attr"`
	DTDVersion string   `xml:"DTDVERSION,attr"`
	Message    requestMessage
}

type requestMessage struct {
	XMLName         xml.Name `xml:"MESSAGE"`
	ID              string   `xml:"ID,attr"`
	ProtocolVersion string   `xml:"PROTOCOLVERSION,attr"`
	SimpleReq       simpleReq
}

type simpleReq struct {
	XMLName     xml.Name `xml:"SIMPLEREQ"`
	IMethodCall iMethodCall
}

type iMethodCall struct {
	XMLName   xml.Name `xml:"IMETHODCALL"`
	Name      string   `xml:"NAME,attr"`
	Namespace localNamespacePath
	Params    []iParamValue
}

type localNamespacePath struct {
	XMLName    xml.Name `xml:"LOCALNAMESPACEPATH"`
	Namespaces []namespaceElem
}

type namespaceElem struct {
	XMLName xml.Name `xml:"NAMESPACE"`
	Name    string   `xml:"NAME,attr"`
}

type iParamValue struct {
	XMLName    xml.Name       `xml:"IPARAMVALUE"`
	Name       string         `xml:"NAME,attr"`
	ClassName  *classNameElem `xml:",omitempty"`
	Value      string         `xml:"VALUE,omitempty"`
	ValueArray *valueArray    `xml:",omitempty"`
}

type classNameElem struct {
	XMLName xml.Name `xml:"CLASSNAME"`
	Name    string   `xml:"NAME,attr"`
}

type valueArray struct {
	XMLName xml.Name `xml:"VALUE.ARRAY"`
	Values  []string `xml:"VALUE"`
}

// Response elements.

type cimResponse struct {
	XMLName xml.Name        `xml:"CIM"`
	Message responseMessage `xml:"MESSAGE"`
}

type responseMessage struct {
	SimpleRsp simpleRsp `xml:"SIMPLERSP"`
}

type simpleRsp struct {
	IMethodResponse iMethodResponse `xml:"IMETHODRESPONSE"`
}

type iMethodResponse struct {
	Name        string       `xml:"NAME,attr"`
	Error       *errorElem   `xml:"ERROR"`
	ReturnValue iReturnValue `xml:"IRETURNVALUE"`
}

type errorElem struct {
	Code        int    `xml:"CODE,attr"`
	Description string `xml:"DESCRIPTION,attr"`
}

type iReturnValue struct {
	NamedInstances []namedInstance    `xml:"VALUE.NAMEDINSTANCE"`
	InstanceNames  []instanceNameElem `xml:"INSTANCENAME"`
}

type namedInstance struct {
	Instance instanceElem `xml:"INSTANCE"`
}

type instanceNameElem struct {
	ClassName string `xml:"CLASSNAME,attr"`
}

type instanceElem struct {
	ClassName      string              `xml:"CLASSNAME,attr"`
	Properties     []propertyElem      `xml:"PROPERTY"`
	PropertyArrays []propertyArrayElem `xml:"PROPERTY.ARRAY"`
}

type propertyElem struct {
	Name string `xml:"NAME,attr"`
	Type string `xml:"TYPE,attr"`

	// Value is nil when the property is present but NULL, which SMI-S
	// providers express by omitting the VALUE element.
	Value *string `xml:"VALUE"`
}

type propertyArrayElem struct {
	Name   string   `xml:"NAME,attr"`
	Type   string   `xml:"TYPE,attr"`
	Values []string `xml:"VALUE.ARRAY>VALUE"`
}

func decodeResponse(r io.Reader) (*iMethodResponse, error) {
	rsp := cimResponse{}
	if err := xml.NewDecoder(r).Decode(&rsp); err != nil {
		return nil, err
	}
	method := rsp.Message.SimpleRsp.IMethodResponse
	if method.Name == "" && method.Error == nil {
		return nil, fmt.Errorf("response contained no IMETHODRESPONSE")
	}
	return &method, nil
}
