package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"casmidb/internal/config"
	"casmidb/internal/metrics"
	"casmidb/internal/metrics/datadog"
	"casmidb/internal/metrics/prompush"
	"casmidb/pkg/storage"

	// register all executors with the storage factory.
	_ "casmidb/pkg/storage/all"
)

// main loads the configuration, optionally initializes a metrics backend,
// opens the configured executor and runs the demo against it.
func main() {
	var (
		cfgPath  string
		kindFlg  string
		dsnFlg   string
		backend  string
		gwURL    string
		ddAddr   string
		validate bool
		verbose  bool
	)

	flag.StringVar(&cfgPath, "config", "", "config file path (.json, .yaml or .yml)")
	flag.StringVar(&kindFlg, "kind", "", "storage kind (overrides config): "+fmt.Sprint(storage.ListKinds()))
	flag.StringVar(&dsnFlg, "dsn", "", "storage DSN (overrides config)")
	flag.StringVar(&backend, "metrics-backend", "", "metrics backend (none, pushgateway, datadog)")
	flag.StringVar(&gwURL, "pushgateway-url", "", "Pushgateway base URL")
	flag.StringVar(&ddAddr, "datadog-addr", "", "DogStatsD address")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&verbose, "v", false, "enable verbose logs")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	// Flags win over file and env, but only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kind":
			cfg.Storage.Kind = kindFlg
		case "dsn":
			cfg.Storage.DSN = dsnFlg
		case "metrics-backend":
			cfg.Metrics.Backend = backend
		case "pushgateway-url":
			cfg.Metrics.PushgatewayURL = gwURL
		case "datadog-addr":
			cfg.Metrics.DatadogAddr = ddAddr
		case "v":
			cfg.Verbose = verbose
		}
	})

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	setupMetrics(cfg.Metrics)
	defer func() {
		if err := metrics.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "metrics: flush error: %v\n", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	exec, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
	if err != nil {
		fatalf("open storage: %v", err)
	}
	log.Printf("casmidb: storage=%s", exec.Kind())

	err = run(ctx, exec, os.Stdout)
	exec.Close()
	if err != nil {
		fatalf("%v", err)
	}

	log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
}

// setupMetrics installs the configured backend. Failures leave the no-op
// backend in place.
func setupMetrics(m config.Metrics) {
	switch m.Backend {
	case "pushgateway":
		b, err := prompush.NewBackend(m.Job, m.PushgatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", m.PushgatewayURL, m.Backend, m.Job)
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.DatadogNamespace,
			GlobalTags: m.DatadogTags,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v", m.DatadogAddr, m.Backend)
		metrics.SetBackend(b)

	case "", "none":
		log.Printf("metrics: disabled")

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", m.Backend)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
