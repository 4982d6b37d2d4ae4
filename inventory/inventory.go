// Package inventory queries the array for one object class at a time and
// decodes the loosely-typed CIM property bags into explicit per-class
// records. Optional properties are pointer-typed: nil means the array did
// not report the value, which the metric mapping layer turns into a skipped
// sample rather than a failure.
package inventory

import (
	"context"
	"fmt"

	"github.com/storagetools/threepar_exporter/wbem"
)

// Querier is the capability collectors need from a session. *session.Session
// satisfies it; tests substitute fakes.
type Querier interface {
	EnumerateInstances(ctx context.Context, className string, properties []string) ([]wbem.Instance, error)
}

// QueryError indicates one class could not be enumerated, e.g. because the
// array rejected the class or the query timed out. It is scoped to the one
// collector that issued it; siblings in the same pass are unaffected.
type QueryError struct {
	Class string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("querying %v: %v", e.Class, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func enumerate(ctx context.Context, q Querier, class string, properties []string) ([]wbem.Instance, error) {
	instances, err := q.EnumerateInstances(ctx, class, properties)
	if err != nil {
		return nil, &QueryError{Class: class, Err: err}
	}
	return instances, nil
}

func optFloat(inst wbem.Instance, name string) *float64 {
	if v, ok := inst.Float(name); ok {
		return &v
	}
	return nil
}

func optUint16(inst wbem.Instance, name string) *uint16 {
	if v, ok := inst.Uint16(name); ok {
		return &v
	}
	return nil
}

// optStatus reads the first element of a uint16 array property, which is how
// CIM models OperationalStatus.
func optStatus(inst wbem.Instance, name string) *uint16 {
	if v, ok := inst.FirstUint16(name); ok {
		return &v
	}
	return nil
}

func str(inst wbem.Instance, name string) string {
	v, _ := inst.String(name)
	return v
}
