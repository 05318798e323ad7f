// Package config resolves crawl settings from defaults, YAML files, and
// CITEGRAPH_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Duration wraps time.Duration to accept "1s"-style strings in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Manager struct {
	configPtr   unsafe.Pointer
	userPath    string
	projectPath string
}

type Config struct {
	API    APIConfig    `yaml:"api"`
	Retry  RetryConfig  `yaml:"retry"`
	Crawl  CrawlConfig  `yaml:"crawl"`
	Cache  CacheConfig  `yaml:"cache"`
	Output OutputConfig `yaml:"output"`
}

type APIConfig struct {
	BaseURL   string   `yaml:"base_url" validate:"required,url"`
	Key       string   `yaml:"key"`
	Timeout   Duration `yaml:"timeout" validate:"gt=0"`
	PageSize  int      `yaml:"page_size" validate:"gte=1,lte=1000"`
	PageDelay Duration `yaml:"page_delay" validate:"gte=0"`
	NodeDelay Duration `yaml:"node_delay" validate:"gte=0"`
}

type RetryConfig struct {
	GraphAttempts  int      `yaml:"graph_attempts" validate:"gte=1"`
	LookupAttempts int      `yaml:"lookup_attempts" validate:"gte=1"`
	BaseDelay      Duration `yaml:"base_delay" validate:"gt=0"`
}

type CrawlConfig struct {
	FetchLimit      int    `yaml:"fetch_limit" validate:"gte=1"`
	MaxDepth        int    `yaml:"max_depth" validate:"gte=1"`
	Widths          []int  `yaml:"widths" validate:"min=1,dive,gte=1"`
	Mode            string `yaml:"mode" validate:"oneof=references citations all"`
	InfluentialOnly bool   `yaml:"influential_only"`
}

type CacheConfig struct {
	Size int `yaml:"size" validate:"gte=1"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Format      string `yaml:"format" validate:"oneof=html dot json"`
	OpenBrowser bool   `yaml:"open_browser"`
}

// NewManager creates a Manager resolving the standard config paths:
// $XDG_CONFIG_HOME/citegraph/config.yaml (or ~/.config/citegraph) for the
// user file and .citegraph.yaml in the working directory for the project
// file.
func NewManager() *Manager {
	return NewManagerWithPaths(userConfigPath(), filepath.Join(".", ".citegraph.yaml"))
}

// NewManagerWithPaths creates a Manager with explicit file locations.
func NewManagerWithPaths(userPath, projectPath string) *Manager {
	m := &Manager{
		userPath:    userPath,
		projectPath: projectPath,
	}
	cfg := DefaultConfig()
	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	return m
}

func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://api.semanticscholar.org/graph/v1/paper",
			Timeout:   Duration(30 * time.Second),
			PageSize:  1000,
			PageDelay: Duration(1 * time.Second),
			NodeDelay: Duration(500 * time.Millisecond),
		},
		Retry: RetryConfig{
			GraphAttempts:  10,
			LookupAttempts: 5,
			BaseDelay:      Duration(3 * time.Second),
		},
		Crawl: CrawlConfig{
			FetchLimit:      10000,
			MaxDepth:        2,
			Widths:          []int{4, 2},
			Mode:            "all",
			InfluentialOnly: true,
		},
		Cache: CacheConfig{
			Size: 1024,
		},
		Output: OutputConfig{
			Dir:         ".",
			Format:      "html",
			OpenBrowser: true,
		},
	}
}

func (m *Manager) Get() *Config {
	return (*Config)(atomic.LoadPointer(&m.configPtr))
}

func (m *Manager) Load() error {
	cfg := DefaultConfig()

	if err := m.loadYAMLFile(m.userPath, cfg); err != nil {
		return fmt.Errorf("user config: %w", err)
	}

	if err := m.loadYAMLFile(m.projectPath, cfg); err != nil {
		return fmt.Errorf("project config: %w", err)
	}

	m.applyEnvironment(cfg)

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	return nil
}

func (m *Manager) loadYAMLFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func (m *Manager) applyEnvironment(cfg *Config) {
	if v := os.Getenv("CITEGRAPH_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CITEGRAPH_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("CITEGRAPH_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("CITEGRAPH_PAGE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.PageDelay = Duration(d)
		}
	}
	if v := os.Getenv("CITEGRAPH_NODE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.NodeDelay = Duration(d)
		}
	}
	if v := os.Getenv("CITEGRAPH_FETCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Crawl.FetchLimit = n
		}
	}
	if v := os.Getenv("CITEGRAPH_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Size = n
		}
	}
	if v := os.Getenv("CITEGRAPH_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
}

func userConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "citegraph", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "citegraph", "config.yaml")
}
