// Package metrics converts typed inventory records into a flat metric
// namespace. Mapping is pure: no I/O, no clocks, and a malformed record
// costs a warning count rather than an error.
//
// Naming contract: every metric is snake_case, prefixed "hpe_", and carries
// a unit suffix (_bytes, _seconds, _total for counters, _volts, _celsius,
// _watthours). Every sample's first label is "system", the storage
// system display name configured at startup, so one Prometheus can scrape
// several exporters without series colliding.
//
// Enumerations pass through as their DMTF small-integer codes rather than
// free text. HealthState: 0 unknown, 5 ok, 10 degraded, 15 minor failure,
// 20 major failure, 25 critical failure, 30 non-recoverable.
// OperationalStatus (first element): 0 unknown, 1 other, 2 ok, 3 degraded,
// 4 stressed, 5 predictive failure, 6 error, 7 non-recoverable error,
// 8 starting, 9 stopping, 10 stopped. SystemLED: 0 off, 1 amber, 2 blinking.
package metrics

import (
	"strings"
)

// Type distinguishes monotonic counters from point-in-time gauges.
type Type int

const (
	Gauge Type = iota
	Counter
)

// Sample is one (label values, value) pair within a family. LabelValues is
// positional against the family's Labels.
type Sample struct {
	LabelValues []string
	Value       float64
}

// Family is a named, typed metric with its samples for one scrape.
type Family struct {
	Name    string
	Help    string
	Type    Type
	Labels  []string
	Samples []Sample
}

func newFamily(name, help string, t Type, labels ...string) *Family {
	return &Family{
		Name:   name,
		Help:   help,
		Type:   t,
		Labels: labels,
	}
}

func (f *Family) add(value float64, labelValues ...string) {
	f.Samples = append(f.Samples, Sample{LabelValues: labelValues, Value: value})
}

// compact drops empty families so a class with zero instances contributes
// nothing to the output.
func compact(families []*Family) []Family {
	out := make([]Family, 0, len(families))
	for _, f := range families {
		if len(f.Samples) > 0 {
			out = append(out, *f)
		}
	}
	return out
}

// Dedupe merges families with the same name and enforces that a given
// (name, label values) pair appears at most once, keeping the last write.
// The returned count is the number of collisions dropped. Input order is
// preserved.
func Dedupe(families []Family) ([]Family, int) {
	merged := make([]*Family, 0, len(families))
	byName := map[string]*Family{}
	for i := range families {
		f := families[i]
		if existing, ok := byName[f.Name]; ok {
			existing.Samples = append(existing.Samples, f.Samples...)
			continue
		}
		copied := f
		copied.Samples = append([]Sample{}, f.Samples...)
		merged = append(merged, &copied)
		byName[f.Name] = &copied
	}

	collisions := 0
	out := make([]Family, 0, len(merged))
	for _, f := range merged {
		seen := map[string]int{} // series key -> index into kept
		kept := make([]Sample, 0, len(f.Samples))
		for _, s := range f.Samples {
			key := strings.Join(s.LabelValues, "\xff")
			if i, ok := seen[key]; ok {
				kept[i] = s // last write wins
				collisions++
				continue
			}
			seen[key] = len(kept)
			kept = append(kept, s)
		}
		f.Samples = kept
		out = append(out, *f)
	}
	return out, collisions
}
