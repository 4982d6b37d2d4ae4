// Package collector orchestrates one full collection pass per scrape:
// ensure a session, run every inventory collector against it, map the
// records into families, and emit the result together with meta metrics
// describing the pass itself.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/storagetools/threepar_exporter/inventory"
	"github.com/storagetools/threepar_exporter/metrics"
	"github.com/storagetools/threepar_exporter/session"
	"github.com/storagetools/threepar_exporter/wbem"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	namespace = "hpe"
	subsystem = "exporter"

	scrapesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "scrapes_total",
		Help:      "The number of collection passes performed.",
	})
	collectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "collect_duration_seconds",
		Help:      "Observes the time taken by each collection pass.",
	})

	// meta scrape metrics, all carrying the system label

	up = prometheus.NewDesc(
		"hpe_up",
		"1 if a session with the array was available this scrape, 0 otherwise. "+
			"0 means no inventory was attempted.",
		[]string{"system"}, nil,
	)
	scrapeDuration = prometheus.NewDesc(
		"hpe_scrape_duration_seconds",
		"The time taken by the whole collection pass, measured by the exporter.",
		[]string{"system"}, nil,
	)
	collectorSuccess = prometheus.NewDesc(
		"hpe_scrape_collector_success",
		"1 if the named collector's query succeeded this scrape, 0 otherwise.",
		[]string{"system", "collector"}, nil,
	)
	mappingWarnings = prometheus.NewDesc(
		"hpe_scrape_mapping_warnings",
		"The number of samples skipped this scrape due to missing or malformed "+
			"properties, plus any duplicate series dropped.",
		[]string{"system"}, nil,
	)
)

// runner is one registered collector: a named query-and-map pipeline for a
// single object class.
type runner struct {
	name string
	run  func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error)
}

// runners is the fixed registration order. It also fixes family order in
// the output, which keeps series identity stable across scrapes.
func runners() []runner {
	return []runner{
		{"system", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.Systems(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapSystems(records, system)
			return families, warnings, nil
		}},
		{"pools", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.Pools(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapPools(records, system)
			return families, warnings, nil
		}},
		{"volumes", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.Volumes(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapVolumes(records, system)
			return families, warnings, nil
		}},
		{"volume_statistics", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.VolumeStatistics(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapVolumeStatistics(records, system)
			return families, warnings, nil
		}},
		{"disks", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.Disks(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapDisks(records, system)
			return families, warnings, nil
		}},
		{"drive_cages", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.DriveCages(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapDriveCages(records, system)
			return families, warnings, nil
		}},
		portRunner("fc_ports", inventory.FCPortClass, "fc"),
		portRunner("ethernet_ports", inventory.EthernetPortClass, "ethernet"),
		portRunner("sas_ports", inventory.SASPortClass, "sas"),
		{"controllers", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.Controllers(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapControllers(records, system)
			return families, warnings, nil
		}},
		{"batteries", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.Batteries(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapBatteries(records, system)
			return families, warnings, nil
		}},
		{"fans", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.Fans(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapFans(records, system)
			return families, warnings, nil
		}},
		powerSupplyRunner("cage_power_supplies", inventory.CagePowerSupplyClass, "cage"),
		powerSupplyRunner("node_power_supplies", inventory.NodePowerSupplyClass, "node"),
		{"ide_drives", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.IDEDrives(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapIDEDrives(records, system)
			return families, warnings, nil
		}},
		{"physical_memory", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.PhysicalMemory(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapPhysicalMemory(records, system)
			return families, warnings, nil
		}},
		{"pci_cards", func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
			records, err := inventory.PCICards(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			families, warnings := metrics.MapPCICards(records, system)
			return families, warnings, nil
		}},
	}
}

func portRunner(name, class, protocol string) runner {
	return runner{name, func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
		records, err := inventory.Ports(ctx, q, class)
		if err != nil {
			return nil, 0, err
		}
		families, warnings := metrics.MapPorts(records, protocol, system)
		return families, warnings, nil
	}}
}

func powerSupplyRunner(name, class, source string) runner {
	return runner{name, func(ctx context.Context, q inventory.Querier, system string) ([]metrics.Family, int, error) {
		records, err := inventory.PowerSupplies(ctx, q, class)
		if err != nil {
			return nil, 0, err
		}
		families, warnings := metrics.MapPowerSupplies(records, source, system)
		return families, warnings, nil
	}}
}

// Collector performs one collection pass per Collect() call. It implements
// prometheus.Collector so the exposition encoding is promhttp's problem.
type Collector struct {

	// System is the storage system display name, labelled onto every
	// sample.
	System string

	// Sessions owns the array handle.
	Sessions *session.Manager

	// Timeout bounds the whole pass. Collectors still pending at the
	// deadline fail with a context error; they are not retried within the
	// request.
	Timeout time.Duration

	// Concurrency is the maximum number of collectors querying the array
	// at once.
	Concurrency int

	Logger *slog.Logger

	// mux serialises passes, so concurrent scrapers queue rather than
	// doubling the load on the array.
	mux sync.Mutex

	runners []runner
}

// New constructs a Collector with the full set of inventory collectors
// registered.
func New(system string, sessions *session.Manager, timeout time.Duration, concurrency int, logger *slog.Logger) *Collector {
	return &Collector{
		System:      system,
		Sessions:    sessions,
		Timeout:     timeout,
		Concurrency: concurrency,
		Logger:      logger,
		runners:     runners(),
	}
}

// Describe intentionally sends nothing, making this an unchecked collector:
// the families depend on what the array returns each pass, so they cannot
// be declared up front.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {}

type runnerResult struct {
	families []metrics.Family
	warnings int
	err      error
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	start := time.Now()

	c.mux.Lock()
	defer c.mux.Unlock()

	scrapesTotal.Inc()

	// detached from the request context: if the client disconnects we let
	// in-flight queries finish, as the array side is not cheaply
	// cancellable, and simply discard the response
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	sess, err := c.Sessions.Ensure(ctx)
	if err != nil {
		c.Logger.Error("scrape failed, no session", "err", err)
		ch <- prometheus.MustNewConstMetric(up, prometheus.GaugeValue, 0, c.System)
		c.observeDuration(ch, start)
		return
	}

	results := make([]runnerResult, len(c.runners))
	g := errgroup.Group{}
	g.SetLimit(c.Concurrency)
	for i := range c.runners {
		i := i
		r := c.runners[i]
		g.Go(func() error {
			families, warnings, err := r.run(ctx, sess, c.System)
			results[i] = runnerResult{families: families, warnings: warnings, err: err}
			return nil // failures are per-collector, never group-fatal
		})
	}
	g.Wait()

	families := []metrics.Family{}
	warnings := 0
	transportSuspect := false
	for i, r := range c.runners {
		result := results[i]
		if result.err != nil {
			c.Logger.Warn("collector failed", "collector", r.name, "err", result.err)
			if !isClassScoped(result.err) {
				transportSuspect = true
			}
			continue
		}
		families = append(families, result.families...)
		warnings += result.warnings
	}
	if transportSuspect {
		// a failure that isn't a CIM status points at the connection; make
		// the next scrape re-establish rather than inherit a wedged handle
		c.Sessions.Invalidate()
	}

	merged, collisions := metrics.Dedupe(families)
	if collisions > 0 {
		c.Logger.Warn("duplicate series dropped", "count", collisions)
	}
	warnings += collisions

	for _, family := range merged {
		c.emit(ch, family)
	}
	for i, r := range c.runners {
		success := 0.0
		if results[i].err == nil {
			success = 1
		}
		ch <- prometheus.MustNewConstMetric(collectorSuccess,
			prometheus.GaugeValue, success, c.System, r.name)
	}
	ch <- prometheus.MustNewConstMetric(mappingWarnings,
		prometheus.GaugeValue, float64(warnings), c.System)
	ch <- prometheus.MustNewConstMetric(up, prometheus.GaugeValue, 1, c.System)
	c.observeDuration(ch, start)
}

// observeDuration emits the scrape duration. It is always the final metric:
// by the time it is computed, every collector has resolved or timed out.
func (c *Collector) observeDuration(ch chan<- prometheus.Metric, start time.Time) {
	elapsed := time.Since(start)
	collectDuration.Observe(elapsed.Seconds())
	ch <- prometheus.MustNewConstMetric(scrapeDuration,
		prometheus.GaugeValue, elapsed.Seconds(), c.System)
}

func (c *Collector) emit(ch chan<- prometheus.Metric, family metrics.Family) {
	valueType := prometheus.GaugeValue
	if family.Type == metrics.Counter {
		valueType = prometheus.CounterValue
	}
	desc := prometheus.NewDesc(family.Name, family.Help, family.Labels, nil)
	for _, sample := range family.Samples {
		m, err := prometheus.NewConstMetric(desc, valueType, sample.Value, sample.LabelValues...)
		if err != nil {
			// label arity bug in a mapper; skip the sample rather than
			// panic mid-exposition
			c.Logger.Error("dropping malformed sample", "family", family.Name, "err", err)
			continue
		}
		ch <- m
	}
}

// isClassScoped reports whether err is confined to a single class query, as
// opposed to implicating the session or transport. A CIM status means the
// array processed the request and refused the class; anything else (TLS,
// timeout, connection reset) is transport trouble.
func isClassScoped(err error) bool {
	queryErr := &inventory.QueryError{}
	if !errors.As(err, &queryErr) {
		return false
	}
	cimErr := &wbem.CIMError{}
	return errors.As(queryErr.Err, &cimErr)
}
