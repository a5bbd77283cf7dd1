// Package config defines the configuration model for the casmidb demo
// binary: which executor backend to open and which metrics backend to
// report to.
//
// Values are layered: Default, then an optional file (JSON, or YAML when the
// extension is .yaml/.yml), then CASMIDB_* environment variables, then
// command-line flags applied by the caller.
//
// Example (JSON):
//
//	{
//	  "storage": { "kind": "postgres", "dsn": "postgresql://u:p@localhost:5432/casmidb" },
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" },
//	  "verbose": true
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration object.
type Config struct {
	Storage Storage `json:"storage" yaml:"storage"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
	Verbose bool    `json:"verbose" yaml:"verbose"`
}

// Storage selects the executor backend.
type Storage struct {
	// Kind is a registered executor kind: sqlite, postgres, mysql or mssql.
	Kind string `json:"kind" yaml:"kind"`

	// DSN is passed to the backend unchanged.
	DSN string `json:"dsn" yaml:"dsn"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend string `json:"backend" yaml:"backend"`

	// Job is the Pushgateway grouping job.
	Job string `json:"job" yaml:"job"`

	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`

	DatadogAddr      string   `json:"datadog_addr" yaml:"datadog_addr"`
	DatadogNamespace string   `json:"datadog_namespace" yaml:"datadog_namespace"`
	DatadogTags      []string `json:"datadog_tags" yaml:"datadog_tags"`
}

// Default returns a configuration that runs against a local SQLite file
// with metrics disabled.
func Default() Config {
	return Config{
		Storage: Storage{Kind: "sqlite", DSN: "casmidb.db"},
		Metrics: Metrics{Backend: "none", Job: "casmidb"},
	}
}

// Load returns Default overlaid with the file at path (when path is not
// empty) and then with the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(&cfg, b, filepath.Ext(path)); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays the document b onto cfg. ext selects the format: ".yaml"
// and ".yml" are YAML, anything else is JSON. Unknown keys are rejected.
func Decode(cfg *Config, b []byte, ext string) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	}
	return nil
}

// ApplyEnv overlays CASMIDB_* variables found by lookup onto cfg:
//
//	CASMIDB_STORAGE_KIND, CASMIDB_STORAGE_DSN, CASMIDB_METRICS_BACKEND,
//	CASMIDB_METRICS_JOB, CASMIDB_PUSHGATEWAY_URL, CASMIDB_DATADOG_ADDR,
//	CASMIDB_DATADOG_NAMESPACE, CASMIDB_DATADOG_TAGS (comma separated),
//	CASMIDB_VERBOSE
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"CASMIDB_STORAGE_KIND":      &cfg.Storage.Kind,
		"CASMIDB_STORAGE_DSN":       &cfg.Storage.DSN,
		"CASMIDB_METRICS_BACKEND":   &cfg.Metrics.Backend,
		"CASMIDB_METRICS_JOB":       &cfg.Metrics.Job,
		"CASMIDB_PUSHGATEWAY_URL":   &cfg.Metrics.PushgatewayURL,
		"CASMIDB_DATADOG_ADDR":      &cfg.Metrics.DatadogAddr,
		"CASMIDB_DATADOG_NAMESPACE": &cfg.Metrics.DatadogNamespace,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("CASMIDB_DATADOG_TAGS"); ok {
		cfg.Metrics.DatadogTags = splitList(v)
	}
	if v, ok := lookup("CASMIDB_VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: CASMIDB_VERBOSE: %w", err)
		}
		cfg.Verbose = b
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
