package config

import "testing"

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantPaths map[string]IssueSeverity
	}{
		{
			name:      "default is valid",
			mutate:    func(*Config) {},
			wantPaths: map[string]IssueSeverity{},
		},
		{
			name: "missing storage",
			mutate: func(c *Config) {
				c.Storage = Storage{}
			},
			wantPaths: map[string]IssueSeverity{
				"storage.kind": SeverityError,
				"storage.dsn":  SeverityError,
			},
		},
		{
			name:      "unknown storage kind warns",
			mutate:    func(c *Config) { c.Storage.Kind = "oracle" },
			wantPaths: map[string]IssueSeverity{"storage.kind": SeverityWarning},
		},
		{
			name: "pushgateway without URL",
			mutate: func(c *Config) {
				c.Metrics.Backend = "pushgateway"
			},
			wantPaths: map[string]IssueSeverity{"metrics.pushgateway_url": SeverityError},
		},
		{
			name: "pushgateway with bad URL and no job",
			mutate: func(c *Config) {
				c.Metrics.Backend = "pushgateway"
				c.Metrics.PushgatewayURL = "localhost"
				c.Metrics.Job = ""
			},
			wantPaths: map[string]IssueSeverity{
				"metrics.pushgateway_url": SeverityError,
				"metrics.job":             SeverityWarning,
			},
		},
		{
			name: "datadog tag shape",
			mutate: func(c *Config) {
				c.Metrics.Backend = "datadog"
				c.Metrics.DatadogAddr = "127.0.0.1:8125"
				c.Metrics.DatadogTags = []string{"env:dev", "bare"}
			},
			wantPaths: map[string]IssueSeverity{"metrics.datadog_tags[1]": SeverityWarning},
		},
		{
			name: "datadog without addr",
			mutate: func(c *Config) {
				c.Metrics.Backend = "datadog"
			},
			wantPaths: map[string]IssueSeverity{"metrics.datadog_addr": SeverityError},
		},
		{
			name:      "unknown metrics backend",
			mutate:    func(c *Config) { c.Metrics.Backend = "graphite" },
			wantPaths: map[string]IssueSeverity{"metrics.backend": SeverityError},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(&cfg)
			issues := Validate(cfg)

			got := map[string]IssueSeverity{}
			for _, iss := range issues {
				got[iss.Path] = iss.Severity
			}
			if len(got) != len(tt.wantPaths) {
				t.Fatalf("issues = %v, want paths %v", issues, tt.wantPaths)
			}
			for p, sev := range tt.wantPaths {
				if got[p] != sev {
					t.Fatalf("issue at %s = %q, want %q (all: %v)", p, got[p], sev, issues)
				}
			}

			wantErr := false
			for _, sev := range tt.wantPaths {
				wantErr = wantErr || sev == SeverityError
			}
			if HasErrors(issues) != wantErr {
				t.Fatalf("HasErrors() = %v, want %v", HasErrors(issues), wantErr)
			}
		})
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "storage.dsn", Message: "storage.dsn must not be empty"}
	if got, want := iss.Error(), "error at storage.dsn: storage.dsn must not be empty"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
