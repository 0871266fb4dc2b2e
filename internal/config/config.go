package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/settings"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Archive backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendS3     = "s3"
	BackendMinIO  = "minio"
)

var backends = []string{BackendNone, BackendMemory, BackendLocal, BackendS3, BackendMinIO}

// Config is the top-level configuration.
type Config struct {
	Scan      ScanConfig        `yaml:"scan"`
	Corpus    CorpusConfig      `yaml:"corpus"`
	Resources resource.Config   `yaml:"resources"`
	Settings  map[string]string `yaml:"settings"`
	Archive   ArchiveConfig     `yaml:"archive"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// ScanConfig describes the scan request.
type ScanConfig struct {
	Parallelism int      `yaml:"parallelism"`
	PageSize    int      `yaml:"page_size"`
	Workers     int      `yaml:"workers"`
	Queries     []string `yaml:"queries"`
}

// CorpusConfig describes the synthetic corpus a scan runs over.
type CorpusConfig struct {
	Shards         int                `yaml:"shards"`
	Segments       int                `yaml:"segments"`
	DocsPerSegment int                `yaml:"docs_per_segment"`
	Terms          map[string]float64 `yaml:"terms"` // term -> match probability
	Seed           int64              `yaml:"seed"`
}

// ArchiveConfig selects where final statuses are archived.
type ArchiveConfig struct {
	Backend     string `yaml:"backend"`
	Compression string `yaml:"compression"` // none, lz4, zstd
	Path        string `yaml:"path"`        // local
	CacheBytes  int64  `yaml:"cache_bytes"` // local: read cache capacity
	Bucket      string `yaml:"bucket"`      // s3, minio
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`       // s3
	CommitTable string `yaml:"commit_table"` // s3: DynamoDB table for pointer commits
	Endpoint    string `yaml:"endpoint"`     // minio
	AccessKey   string `yaml:"access_key"`   // minio
	SecretKey   string `yaml:"secret_key"`   // minio
	UseSSL      bool   `yaml:"use_ssl"`      // minio
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Parallelism: 4,
			PageSize:    1024,
		},
		Corpus: CorpusConfig{
			Shards:         3,
			Segments:       2,
			DocsPerSegment: 1000,
			Terms: map[string]float64{
				"title:go":   0.25,
				"body:slice": 0.5,
			},
			Seed: 1,
		},
		Resources: resource.Config{
			MaxConcurrentDrivers: 4,
		},
		Settings: map[string]string{},
		Archive: ArchiveConfig{
			Backend:     BackendNone,
			Compression: "lz4",
			Path:        "scans",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SLICESCAN_ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = v
	}
	if v := os.Getenv("SLICESCAN_ARCHIVE_BUCKET"); v != "" {
		c.Archive.Bucket = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Archive.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Archive.SecretKey = v
	}
	if v := os.Getenv("SLICESCAN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	var errs []error

	if c.Scan.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("scan.parallelism must not be negative, got %d", c.Scan.Parallelism))
	}
	if c.Scan.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("scan.page_size must be positive, got %d", c.Scan.PageSize))
	}
	if c.Scan.Workers < 0 {
		errs = append(errs, fmt.Errorf("scan.workers must not be negative, got %d", c.Scan.Workers))
	}
	if c.Corpus.Shards < 0 || c.Corpus.Segments < 0 || c.Corpus.DocsPerSegment < 0 {
		errs = append(errs, errors.New("corpus sizes must not be negative"))
	}
	for term, p := range c.Corpus.Terms {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("corpus.terms[%q] must be within [0, 1], got %g", term, p))
		}
	}
	if c.Resources.MemoryLimitBytes < 0 || c.Resources.MaxConcurrentDrivers < 0 || c.Resources.RowsPerSecond < 0 {
		errs = append(errs, errors.New("resource limits must not be negative"))
	}
	if limit, page := c.Resources.MemoryLimitBytes, resource.PageBytes(c.Scan.PageSize); limit > 0 && page > limit {
		errs = append(errs, fmt.Errorf("resources.memory_limit_bytes %d cannot hold one page of %d bytes", limit, page))
	}

	if len(c.Settings) > 0 {
		// Dry run against a scratch gate.
		if err := settings.NewDynamic(nil).Apply(c.Settings); err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Archive.Compression {
	case "", "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("archive.compression %q is not one of none, lz4, zstd", c.Archive.Compression))
	}

	switch c.Archive.Backend {
	case "", BackendNone, BackendMemory:
	case BackendLocal:
		if c.Archive.Path == "" {
			errs = append(errs, errors.New("archive.path is required for the local backend"))
		}
	case BackendS3:
		if c.Archive.Bucket == "" {
			errs = append(errs, errors.New("archive.bucket is required for the s3 backend"))
		}
	case BackendMinIO:
		if c.Archive.Bucket == "" || c.Archive.Endpoint == "" {
			errs = append(errs, errors.New("archive.bucket and archive.endpoint are required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("archive.backend %q is not one of %s", c.Archive.Backend, strings.Join(backends, ", ")))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is unknown", c.Logging.Level))
	}
	if !slices.Contains([]string{"", "json", "text"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format %q is unknown", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
