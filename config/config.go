package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Riskscore RiskscoreConfig `yaml:"riskscore"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Wallets   WalletsConfig   `yaml:"wallets"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type RiskscoreConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type FetcherConfig struct {
	BaseURL        string          `yaml:"base_url"`
	APIKey         string          `yaml:"api_key"`
	StartBlock     int64           `yaml:"start_block"`
	PageOffset     int             `yaml:"page_offset"`
	RequestTimeout time.Duration   `yaml:"request_timeout"`
	WalletDelay    time.Duration   `yaml:"wallet_delay"`
	UserAgent      string          `yaml:"user_agent"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type WalletsConfig struct {
	File     string `yaml:"file"`
	SheetURL string `yaml:"sheet_url"`
}

// ScoringConfig controls the anomaly model. Contamination is the expected
// outlier fraction; Seed makes repeated runs over an identical batch
// byte-for-byte reproducible.
type ScoringConfig struct {
	Contamination float64 `yaml:"contamination"`
	Seed          int64   `yaml:"seed"`
	Trees         int     `yaml:"trees"`
	SampleSize    int     `yaml:"sample_size"`
}

type StorageConfig struct {
	OutputDir string        `yaml:"output_dir"`
	CacheFile string        `yaml:"cache_file"`
	S3        S3Config      `yaml:"s3"`
	Parquet   ParquetConfig `yaml:"parquet"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"`
}

type LoggingConfig struct {
	Level         string                 `yaml:"level"`
	Format        string                 `yaml:"format"`
	Output        string                 `yaml:"output"`
	MaxAge        int                    `yaml:"max_age"`
	Fields        map[string]interface{} `yaml:"fields"`
	DashboardName string                 `yaml:"dashboard_name"`
}

func LoadConfig(path string) (*Config, error) {
	path = resolveEnvSpecificPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Fetcher: FetcherConfig{
			PageOffset:     1000,
			RequestTimeout: 30 * time.Second,
			WalletDelay:    500 * time.Millisecond,
			RateLimit:      RateLimitConfig{RequestsPerSecond: 5, BurstSize: 1},
		},
		Scoring: ScoringConfig{
			Contamination: 0.1,
			Seed:          42,
			Trees:         100,
			SampleSize:    256,
		},
		Storage: StorageConfig{
			OutputDir: "results",
			CacheFile: "data/raw_wallet_data.json",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Secrets come from the environment when present.
	if v := os.Getenv("ETHERSCAN_API_KEY"); v != "" {
		config.Fetcher.APIKey = strings.TrimSpace(v)
	}
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	// Production-like environments refuse to start without an explorer key.
	if env := getAppEnvironment(); IsProductionLike(env) && config.Fetcher.APIKey == "" {
		return nil, fmt.Errorf("fetcher.api_key (or ETHERSCAN_API_KEY) is required when APP_ENV is %s", env)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Riskscore.Name == "" {
		return fmt.Errorf("riskscore.name is required")
	}

	if cfg.Riskscore.Version == "" {
		return fmt.Errorf("riskscore.version is required")
	}

	if cfg.Fetcher.BaseURL == "" {
		return fmt.Errorf("fetcher.base_url is required")
	}
	if cfg.Fetcher.PageOffset <= 0 {
		return fmt.Errorf("fetcher.page_offset must be greater than 0")
	}
	if cfg.Fetcher.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("fetcher.rate_limit.requests_per_second must be greater than 0")
	}

	if cfg.Scoring.Contamination <= 0 || cfg.Scoring.Contamination > 0.5 {
		return fmt.Errorf("scoring.contamination must be in (0, 0.5]")
	}
	if cfg.Scoring.Trees <= 0 {
		return fmt.Errorf("scoring.trees must be greater than 0")
	}
	if cfg.Scoring.SampleSize <= 1 {
		return fmt.Errorf("scoring.sample_size must be greater than 1")
	}

	if cfg.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir is required")
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	if cfg.Storage.Parquet.Enabled {
		switch cfg.Storage.Parquet.Compression {
		case "", "none", "snappy", "gzip", "lzo":
		default:
			return fmt.Errorf("storage.parquet.compression '%s' is invalid", cfg.Storage.Parquet.Compression)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
