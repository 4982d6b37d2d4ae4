// Package wbem implements the subset of the CIM-XML (WBEM) protocol needed
// to enumerate instances of a class on an HPE 3PAR array's SMI-S provider.
// Requests are HTTP POSTs with basic auth; the array holds no per-client
// state, so a Client is safe for concurrent use.
package wbem

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

const (
	// DefaultNamespace is where the 3PAR SMI-S provider registers the TPD
	// schema.
	DefaultNamespace = "root/tpd"

	// cimomPath is the conventional CIM-XML operation endpoint.
	cimomPath = "/cimom"
)

// Config contains everything needed to talk to an array's management
// endpoint. All fields are fixed at startup.
type Config struct {

	// Host is the IP or hostname of the array's management interface.
	Host string

	// Port is the CIM-XML port, almost always 5989 (HTTPS).
	Port int

	// Username and Password authenticate every request via basic auth.
	Username string
	Password string

	// Namespace is the CIM namespace to enumerate in. Defaults to
	// DefaultNamespace if empty.
	Namespace string

	// InsecureSkipVerify disables TLS certificate verification. Arrays
	// almost universally present self-signed certificates, so this tends to
	// be on in practice.
	InsecureSkipVerify bool

	// RequestTimeout bounds a single HTTP exchange, independently of any
	// context deadline. Zero means no per-request limit.
	RequestTimeout time.Duration
}

func (c Config) namespace() string {
	if c.Namespace == "" {
		return DefaultNamespace
	}
	return c.Namespace
}

// CIMError is a status returned by the CIMOM itself, e.g. CIM_ERR_INVALID_CLASS
// (5) or CIM_ERR_ACCESS_DENIED (2). The request reached the array; the array
// refused it.
type CIMError struct {

	// Method is the intrinsic method that failed, e.g. "EnumerateInstances".
	Method string

	// Code is the DMTF status code.
	Code int

	// Description is the human-readable message supplied by the CIMOM, if
	// any.
	Description string
}

func (e *CIMError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%v returned CIM error %v", e.Method, e.Code)
	}
	return fmt.Sprintf("%v returned CIM error %v: %v", e.Method, e.Code, e.Description)
}

// Client issues CIM-XML intrinsic method calls against a single array.
type Client struct {
	config   Config
	endpoint string
	client   *http.Client

	// messageID numbers requests within the connection, as required by the
	// MESSAGE element.
	messageID uint64
}

// Dial builds a client for the supplied config. No network I/O happens until
// the first method call.
func Dial(config Config) *Client {
	return &Client{
		config:   config,
		endpoint: fmt.Sprintf("https://%v:%v%v", config.Host, config.Port, cimomPath),
		client: &http.Client{
			Timeout: config.RequestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: config.InsecureSkipVerify,
				},
			},
		},
	}
}

// Close releases idle connections. The protocol has no logout.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// EnumerateInstances returns all instances of className, restricted to the
// supplied properties. A class with no instances yields an empty slice and no
// error.
func (c *Client) EnumerateInstances(ctx context.Context, className string, properties []string) ([]Instance, error) {
	params := []iParamValue{
		{Name: "ClassName", ClassName: &classNameElem{Name: className}},
		{Name: "LocalOnly", Value: "FALSE"},
		{Name: "DeepInheritance", Value: "TRUE"},
		{Name: "IncludeQualifiers", Value: "FALSE"},
	}
	if len(properties) > 0 {
		params = append(params, iParamValue{
			Name:       "PropertyList",
			ValueArray: &valueArray{Values: properties},
		})
	}
	rsp, err := c.call(ctx, "EnumerateInstances", params)
	if err != nil {
		return nil, err
	}
	instances := make([]Instance, 0, len(rsp.ReturnValue.NamedInstances))
	for _, named := range rsp.ReturnValue.NamedInstances {
		instances = append(instances, newInstance(named.Instance))
	}
	return instances, nil
}

// EnumerateInstanceNames returns the class names of all instances of
// className. This is the cheapest enumeration the protocol offers, so it
// doubles as the auth handshake and liveness probe.
func (c *Client) EnumerateInstanceNames(ctx context.Context, className string) ([]string, error) {
	params := []iParamValue{
		{Name: "ClassName", ClassName: &classNameElem{Name: className}},
	}
	rsp, err := c.call(ctx, "EnumerateInstanceNames", params)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rsp.ReturnValue.InstanceNames))
	for _, name := range rsp.ReturnValue.InstanceNames {
		names = append(names, name.ClassName)
	}
	return names, nil
}

func (c *Client) call(ctx context.Context, method string, params []iParamValue) (*iMethodResponse, error) {
	id := atomic.AddUint64(&c.messageID, 1)
	body, err := encodeRequest(id, method, c.config.namespace(), params)
	if err != nil {
		return nil, fmt.Errorf("encoding %v request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Content-Type", `application/xml; charset="utf-8"`)
	req.Header.Set("CIMOperation", "MethodCall")
	req.Header.Set("CIMMethod", method)
	req.Header.Set("CIMObject", c.config.namespace())

	httpRsp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpRsp.Body.Close()

	if httpRsp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(httpRsp.Body, 4096))
		return nil, fmt.Errorf("%v returned HTTP %v", method, httpRsp.StatusCode)
	}

	rsp, err := decodeResponse(httpRsp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding %v response: %w", method, err)
	}
	if rsp.Error != nil {
		return nil, &CIMError{
			Method:      method,
			Code:        rsp.Error.Code,
			Description: rsp.Error.Description,
		}
	}
	return rsp, nil
}

func encodeRequest(id uint64, method, namespace string, params []iParamValue) ([]byte, error) {
	path := localNamespacePath{}
	for _, part := range splitNamespace(namespace) {
		path.Namespaces = append(path.Namespaces, namespaceElem{Name: part})
	}
	req := cimRequest{
		CIMVersion: "2.0",
		DTDVersion: "2.0",
		Message: requestMessage{
			ID:              strconv.FormatUint(id, 10),
			ProtocolVersion: "1.0",
			SimpleReq: simpleReq{
				IMethodCall: iMethodCall{
					Name:      method,
					Namespace: path,
					Params:    params,
				},
			},
		},
	}
	encoded, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), encoded...), nil
}

func splitNamespace(namespace string) []string {
	parts := []string{}
	start := 0
	for i := 0; i <= len(namespace); i++ {
		if i == len(namespace) || namespace[i] == '/' {
			if i > start {
				parts = append(parts, namespace[start:i])
			}
			start = i + 1
		}
	}
	return parts
}
