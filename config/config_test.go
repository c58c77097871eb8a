package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTempConfig creates a minimal configuration file required for
// LoadConfig and returns its path.
func writeTempConfig(t *testing.T) string {
	t.Helper()
	content := `riskscore:
  name: "TestApp"
  version: "1.0"
fetcher:
  base_url: "https://api.etherscan.io/api"
  rate_limit:
    requests_per_second: 3
    burst_size: 1
storage:
  output_dir: results
  s3:
    enabled: false
`
	f, err := os.CreateTemp("", "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_ENV", "")
	path := writeTempConfig(t)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Riskscore.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.Riskscore.Name)
	}
	if cfg.Fetcher.RateLimit.RequestsPerSecond != 3 {
		t.Errorf("unexpected requests per second: %d", cfg.Fetcher.RateLimit.RequestsPerSecond)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	path := writeTempConfig(t)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Scoring.Contamination != 0.1 {
		t.Errorf("unexpected contamination default: %v", cfg.Scoring.Contamination)
	}
	if cfg.Scoring.Seed != 42 {
		t.Errorf("unexpected seed default: %v", cfg.Scoring.Seed)
	}
	if cfg.Fetcher.PageOffset != 1000 {
		t.Errorf("unexpected page offset default: %v", cfg.Fetcher.PageOffset)
	}
}

func TestLoadConfigAPIKeyFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ETHERSCAN_API_KEY", "env-key")
	path := writeTempConfig(t)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Fetcher.APIKey != "env-key" {
		t.Errorf("expected api key from environment, got %q", cfg.Fetcher.APIKey)
	}
}

func TestLoadConfigEnvSpecificFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.yml")
	staging := filepath.Join(dir, "config.staging.yml")

	baseContent := `riskscore:
  name: "BaseApp"
  version: "1.0"
fetcher:
  base_url: "https://api.etherscan.io/api"
  rate_limit:
    requests_per_second: 3
storage:
  output_dir: results
`
	stagingContent := `riskscore:
  name: "StagingApp"
  version: "1.0"
fetcher:
  base_url: "https://api.etherscan.io/api"
  api_key: "staging-key"
  rate_limit:
    requests_per_second: 3
storage:
  output_dir: results
`
	if err := os.WriteFile(base, []byte(baseContent), 0o644); err != nil {
		t.Fatalf("write base config: %v", err)
	}
	if err := os.WriteFile(staging, []byte(stagingContent), 0o644); err != nil {
		t.Fatalf("write staging config: %v", err)
	}

	t.Setenv("APP_ENV", "stag")
	t.Setenv("ETHERSCAN_API_KEY", "")

	cfg, err := LoadConfig(base)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Riskscore.Name != "StagingApp" {
		t.Errorf("expected staging config file to win, got name %q", cfg.Riskscore.Name)
	}
	if cfg.Fetcher.APIKey != "staging-key" {
		t.Errorf("unexpected api key: %q", cfg.Fetcher.APIKey)
	}
}

func TestLoadConfigEnvSpecificFileAbsent(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ETHERSCAN_API_KEY", "prod-key")
	path := writeTempConfig(t)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Riskscore.Name != "TestApp" {
		t.Errorf("expected requested file when no variant exists, got name %q", cfg.Riskscore.Name)
	}
}

func TestLoadConfigProductionRequiresAPIKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ETHERSCAN_API_KEY", "")
	path := writeTempConfig(t)
	defer os.Remove(path)

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for missing api key in production")
	}
}

func TestAppEnvironmentAliases(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"", EnvironmentDevelopment},
		{"prod", EnvironmentProduction},
		{" Staging ", EnvironmentStaging},
		{"stagging", EnvironmentStaging},
		{"qa", "qa"},
	}
	for _, c := range cases {
		t.Setenv("APP_ENV", c.value)
		if got := AppEnvironment(); got != c.want {
			t.Errorf("AppEnvironment with APP_ENV=%q = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestValidateConfigRejectsBadContamination(t *testing.T) {
	cfg := &Config{
		Riskscore: RiskscoreConfig{Name: "x", Version: "1"},
		Fetcher: FetcherConfig{
			BaseURL:    "https://api.etherscan.io/api",
			PageOffset: 1000,
			RateLimit:  RateLimitConfig{RequestsPerSecond: 1},
		},
		Scoring: ScoringConfig{Contamination: 0.9, Trees: 100, SampleSize: 256},
		Storage: StorageConfig{OutputDir: "results"},
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("expected validation error for contamination 0.9")
	}
}

func TestIsValidS3Bucket(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"valid-bucket", true},
		{"Invalid", false},
		{"ab", false},
		{"my..bucket", false},
	}
	for _, c := range cases {
		if got := isValidS3Bucket(c.name); got != c.valid {
			t.Errorf("isValidS3Bucket(%q) = %v, want %v", c.name, got, c.valid)
		}
	}
}
