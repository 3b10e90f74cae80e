package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root application configuration, loaded defaults -> file(s)
// -> environment -> CLI flags, in that order of increasing precedence.
type Config struct {
	Logging  LoggingConfig  `toml:"logging"`
	Database DatabaseConfig `toml:"database"`
	Browser  BrowserConfig  `toml:"browser"`
	Pool     PoolConfig     `toml:"pool"`
	Resource ResourceConfig `toml:"resource"`
	Breaker  BreakerConfig  `toml:"breaker"`
	Schedule string         `toml:"schedule"` // cron expression, empty = single pass
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // debug|info|warn|error
	Format     string   `toml:"format"`      // json|text
	Output     []string `toml:"output"`      // stdout, file
	TimeFormat string   `toml:"time_format"`
}

type DatabaseConfig struct {
	Path string `toml:"path"` // SQLite file path for the queue/product tables
}

type BrowserConfig struct {
	UserAgent          string        `toml:"user_agent"`
	Headless           bool          `toml:"headless"`
	DisableGPU         bool          `toml:"disable_gpu"`
	ViewportWidth      int           `toml:"viewport_width"`
	ViewportHeight     int           `toml:"viewport_height"`
	NavigationTimeout  time.Duration `toml:"navigation_timeout"`
	WaitSeconds        time.Duration `toml:"wait_seconds"`
	MaxScrolls         int           `toml:"max_scrolls"`
	Backend            string        `toml:"backend"` // "chromedp" or "rod"
}

type PoolConfig struct {
	DBURLStatusFilter  string `toml:"db_url_status_filter"`
	DBURLLimit         int    `toml:"db_url_limit"`
	DBURLOffset        int    `toml:"db_url_offset"`
	DBURLBatchSize     int    `toml:"db_url_batch_size"`
	MaxParallelWorkers int    `toml:"max_parallel_workers"`
	MaxRetries         int    `toml:"max_retries"`
	URLsPerDriverCleanup int  `toml:"urls_per_driver_cleanup"`
	DryRunSample       int    `toml:"dry_run_sample"`
	DryRunOnly         bool   `toml:"dry_run_only"`
	RequestsPerSecondPerHost float64 `toml:"requests_per_second_per_host"`
	BurstPerHost             int     `toml:"burst_per_host"`
}

type ResourceConfig struct {
	FDThreshold        int     `toml:"fd_threshold"`
	ChildProcThreshold int     `toml:"child_proc_threshold"`
	RAMGBPerWorker     float64 `toml:"ram_gb_per_worker"`
	HardCapWorkers     int     `toml:"hard_cap_workers"`
	ProcsPerDriver     int     `toml:"procs_per_driver"`
	SafetyMargin       int     `toml:"safety_margin"`
}

type BreakerConfig struct {
	Errno11Threshold int `toml:"errno11_threshold"`
}

// Default returns the built-in default configuration, the base of the
// defaults -> file -> env -> flags precedence chain.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Database: DatabaseConfig{
			Path: "./data/scoutpool.db",
		},
		Browser: BrowserConfig{
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Headless:          true,
			DisableGPU:        true,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			NavigationTimeout: 30 * time.Second,
			WaitSeconds:       5 * time.Second,
			MaxScrolls:        4,
			Backend:           "chromedp",
		},
		Pool: PoolConfig{
			DBURLStatusFilter:    "pending,retrying",
			DBURLLimit:           0,
			DBURLOffset:          0,
			DBURLBatchSize:       1000,
			MaxParallelWorkers:   0, // 0 = auto-size via ResourceGuard
			MaxRetries:           3,
			URLsPerDriverCleanup: 10,
			DryRunSample:         0,
			DryRunOnly:           false,
			RequestsPerSecondPerHost: 1.0,
			BurstPerHost:             2,
		},
		Resource: ResourceConfig{
			FDThreshold:        800,
			ChildProcThreshold: 20,
			RAMGBPerWorker:     0.5,
			HardCapWorkers:     32,
			ProcsPerDriver:     3,
			SafetyMargin:       50,
		},
		Breaker: BreakerConfig{
			Errno11Threshold: 3,
		},
	}
}

// LoadFromFiles loads the default config, then merges each TOML file in
// order (later files win), per the multi -config flag precedence.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := Default()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	return cfg, nil
}

// ApplyEnvOverrides applies the environment variables on top of the
// config, in the order: config file < environment.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_URL_STATUS_FILTER"); v != "" {
		cfg.Pool.DBURLStatusFilter = v
	}
	if v := os.Getenv("DB_URL_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.DBURLLimit = n
		}
	}
	if v := os.Getenv("DB_URL_OFFSET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.DBURLOffset = n
		}
	}
	if v := os.Getenv("DB_URL_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.DBURLBatchSize = n
		}
	}
	if v := os.Getenv("MAX_PARALLEL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.MaxParallelWorkers = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.MaxRetries = n
		}
	}
	if v := os.Getenv("URLS_PER_DRIVER_CLEANUP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.URLsPerDriverCleanup = n
		}
	}
	if v := os.Getenv("FD_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Resource.FDThreshold = n
		}
	}
	if v := os.Getenv("CHILD_PROC_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Resource.ChildProcThreshold = n
		}
	}
	if v := os.Getenv("DRY_RUN_SAMPLE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.DryRunSample = n
		}
	}
	if v := os.Getenv("DRY_RUN_ONLY"); v != "" {
		cfg.Pool.DryRunOnly = strings.EqualFold(v, "true") || v == "1"
	}
}

// StatusFilters splits the comma-list DB_URL_STATUS_FILTER into trimmed
// entries, defaulting to pending,retrying.
func (c *Config) StatusFilters() []string {
	parts := strings.Split(c.Pool.DBURLStatusFilter, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"pending", "retrying"}
	}
	return out
}
