package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storagetools/threepar_exporter/collector"
	"github.com/storagetools/threepar_exporter/handler/root"
	"github.com/storagetools/threepar_exporter/session"
	"github.com/storagetools/threepar_exporter/wbem"

	"github.com/alecthomas/kingpin"
	stamp "github.com/gebn/go-stamp/v2"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
)

var (
	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hpe",
			Subsystem: "exporter",
			Name:      "build_info",
			Help:      "The version and commit of the running exporter. Constant 1.",
		},
		// the runtime version is already exposed by the default Go collector
		[]string{"version", "commit"},
	)
	buildTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hpe",
		Subsystem: "exporter",
		Name:      "build_time",
		Help:      "When the running exporter was built, as seconds since the Unix Epoch.",
	})

	help = "An HPE 3PAR CIM/WBEM Prometheus exporter."

	arrayHost = kingpin.Flag("array.host", "IP or hostname of the array's "+
		"management interface.").
		Required().
		String()
	arrayPort = kingpin.Flag("array.port", "CIM-XML port of the array's "+
		"management interface.").
		Default("5989").
		Int()
	arrayUsername = kingpin.Flag("array.username", "User to authenticate "+
		"as. Ignored if --array.credentials is given.").
		String()
	arrayPassword = kingpin.Flag("array.password", "Password for "+
		"--array.username. Prefer --array.credentials, which keeps the "+
		"secret out of the process list.").
		String()
	arrayCredentials = kingpin.Flag("array.credentials", "Path to a yaml "+
		"file with username and password keys.").
		String()
	arrayName = kingpin.Flag("array.name", "Display name of the storage "+
		"system, set as the system label on every metric.").
		Required().
		String()
	arrayNamespace = kingpin.Flag("array.namespace", "CIM namespace to "+
		"enumerate.").
		Default(wbem.DefaultNamespace).
		String()
	arrayInsecure = kingpin.Flag("array.insecure-skip-verify", "Do not "+
		"verify the array's TLS certificate. Arrays commonly present "+
		"self-signed certificates.").
		Default("true").
		Bool()
	listenAddr = kingpin.Flag("web.listen-address", "Address on which to "+
		"expose metrics.").
		Default(":9101").
		String()
	scrapeTimeout = kingpin.Flag("scrape.timeout", "Collection passes "+
		"return what they have after this long. This value should be "+
		"slightly shorter than the Prometheus scrape_timeout.").
		Default("45s").
		Duration()
	scrapeConcurrency = kingpin.Flag("scrape.concurrency", "Maximum number "+
		"of inventory queries in flight against the array at once.").
		Default("4").
		Int()
)

func main() {
	buildInfo.WithLabelValues(stamp.Version, stamp.Commit).Set(1)
	buildTime.Set(float64(stamp.Time().UnixNano()) / float64(time.Second))

	kingpin.CommandLine.Help = help
	kingpin.Version(stamp.Summary())
	kingpin.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.RFC3339,
	}))

	username, password := *arrayUsername, *arrayPassword
	if *arrayCredentials != "" {
		var err error
		username, password, err = session.LoadCredentials(*arrayCredentials)
		if err != nil {
			logger.Error("failed to load credentials", "err", err)
			os.Exit(1)
		}
	}
	if username == "" || password == "" {
		logger.Error("no credentials; give --array.username and --array.password, or --array.credentials")
		os.Exit(1)
	}

	manager := session.NewManager(wbem.Config{
		Host:               *arrayHost,
		Port:               *arrayPort,
		Username:           username,
		Password:           password,
		Namespace:          *arrayNamespace,
		InsecureSkipVerify: *arrayInsecure,
		RequestTimeout:     *scrapeTimeout,
	}, logger)
	defer manager.Close()

	array := collector.New(*arrayName, manager, *scrapeTimeout, *scrapeConcurrency, logger)
	registry := prometheus.NewRegistry()
	registry.MustRegister(array)

	http.Handle("/", root.Handler(*arrayName))
	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		// a gather error is an internal defect; 500 with no partial body
		// beats emitting malformed exposition text
		ErrorHandling: promhttp.HTTPErrorOnError,
		ErrorLog:      slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}))
	http.Handle("/exporter", promhttp.Handler())

	server := &http.Server{Addr: *listenAddr}
	go func() {
		logger.Info("listening", "addr", *listenAddr, "system", *arrayName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
