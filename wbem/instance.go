package wbem

import (
	"strconv"
)

// Instance is one enumerated object, exposed as a typed property bag.
// Properties the array did not return, or returned as NULL, are simply
// absent; accessors report this via their second return value rather than
// guessing a default.
type Instance struct {
	// ClassName is the concrete class of the instance, which may be a
	// subclass of the enumerated one.
	ClassName string

	scalars map[string]scalarProperty
	arrays  map[string]arrayProperty
}

type scalarProperty struct {
	cimType string
	value   string
}

type arrayProperty struct {
	cimType string
	values  []string
}

// MakeInstance builds an Instance from literal property values. This is for
// fakes standing in for a real array; the client builds instances from the
// wire format directly.
func MakeInstance(className string, scalars map[string]string, arrays map[string][]string) Instance {
	inst := Instance{
		ClassName: className,
		scalars:   make(map[string]scalarProperty, len(scalars)),
		arrays:    make(map[string]arrayProperty, len(arrays)),
	}
	for name, value := range scalars {
		inst.scalars[name] = scalarProperty{value: value}
	}
	for name, values := range arrays {
		inst.arrays[name] = arrayProperty{values: values}
	}
	return inst
}

func newInstance(elem instanceElem) Instance {
	inst := Instance{
		ClassName: elem.ClassName,
		scalars:   make(map[string]scalarProperty, len(elem.Properties)),
		arrays:    make(map[string]arrayProperty, len(elem.PropertyArrays)),
	}
	for _, p := range elem.Properties {
		if p.Value == nil {
			continue // NULL property; treat as absent
		}
		inst.scalars[p.Name] = scalarProperty{cimType: p.Type, value: *p.Value}
	}
	for _, p := range elem.PropertyArrays {
		if len(p.Values) == 0 {
			continue
		}
		inst.arrays[p.Name] = arrayProperty{cimType: p.Type, values: p.Values}
	}
	return inst
}

// String returns the named property as a string.
func (i Instance) String(name string) (string, bool) {
	p, ok := i.scalars[name]
	if !ok {
		return "", false
	}
	return p.value, true
}

// Float returns the named property as a float64. All CIM numeric types
// (uint8..uint64, sint8..sint64, real32/64) parse; booleans and datetimes do
// not.
func (i Instance) Float(name string) (float64, bool) {
	p, ok := i.scalars[name]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Uint16 returns the named property as a uint16, the type CIM uses for
// status and health enumerations.
func (i Instance) Uint16(name string) (uint16, bool) {
	p, ok := i.scalars[name]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(p.value, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// Bool returns the named property as a bool.
func (i Instance) Bool(name string) (bool, bool) {
	p, ok := i.scalars[name]
	if !ok {
		return false, false
	}
	switch p.value {
	case "TRUE", "true":
		return true, true
	case "FALSE", "false":
		return false, true
	}
	return false, false
}

// FirstUint16 returns the first element of the named uint16 array property.
// OperationalStatus is an array in the schema, but only the first element
// carries the primary status; the rest qualify it.
func (i Instance) FirstUint16(name string) (uint16, bool) {
	p, ok := i.arrays[name]
	if !ok || len(p.values) == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(p.values[0], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// Strings returns the named array property's elements.
func (i Instance) Strings(name string) ([]string, bool) {
	p, ok := i.arrays[name]
	if !ok {
		return nil, false
	}
	return p.values, true
}
