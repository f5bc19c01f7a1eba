// Package config loads the named configuration bundle described in spec.md
// §6: access/user/report/analyzer selection plus the web-specific crawl
// knobs. Precedence, low to high: built-in defaults, YAML file, environment
// variables, CLI flags (applied by the caller after Load).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/a11ycrawl/a11ycrawl/internal/crawlerr"
)

// ReportKind is one element of the REPORTS set.
type ReportKind string

const (
	ReportStates   ReportKind = "states"
	ReportGML      ReportKind = "gml"
	ReportMetrics  ReportKind = "metrics"
	ReportAnalysis ReportKind = "analysis"
	ReportConfig   ReportKind = "config"
	ReportAll      ReportKind = "all"
)

// Config is the named configuration bundle.
type Config struct {
	AccessClass     string   `yaml:"access_class"`
	BuildUser       string   `yaml:"build_user"`
	CrawlUsers      []string `yaml:"crawl_users"`
	BuildData       string   `yaml:"build_data"`
	StateData       string   `yaml:"state_data"`
	EdgeMetrics     string   `yaml:"edge_metrics"`
	ComparePipeline string   `yaml:"compare_pipeline"`
	AnalyzerClass   string   `yaml:"analyzer_class"`

	Multi      bool `yaml:"multi"`
	NumThreads int  `yaml:"num_threads"`

	// Delay is a human-visible pacing knob only; no correctness-affecting
	// code path reads it (spec.md §9 Open Questions).
	Delay time.Duration `yaml:"delay"`

	Reports     []ReportKind `yaml:"reports"`
	OutputDir   string       `yaml:"output_dir"`
	OutputFile  string       `yaml:"output_file"`
	Screenshots bool         `yaml:"screenshots"`

	LogLevel     string `yaml:"log_level"`
	LogToStdout  bool   `yaml:"log_to_stdout"`

	// Web-specific.
	Headless               bool          `yaml:"headless"`
	WindowWidth            int           `yaml:"window_width"`
	WindowHeight           int           `yaml:"window_height"`
	ReducedCrawl           bool          `yaml:"reduced_crawl"`
	PageChangeNumLoads     int           `yaml:"page_change_num_loads"`
	PageChangeThreshold    time.Duration `yaml:"page_change_threshold"`
	PageChangeTimeout      time.Duration `yaml:"page_change_timeout"`
	NumRevisits            int           `yaml:"num_revisits"`
}

// ErrConfig wraps configuration load failures (spec.md §7: configuration
// errors hard-fail before the crawl starts).
var ErrConfig = crawlerr.ErrConfig

// Default returns the built-in default bundle.
func Default() *Config {
	return &Config{
		AccessClass:         "webaccess.RodAccess",
		BuildUser:           "build",
		CrawlUsers:          []string{"low_vision", "screen_reader", "motor"},
		BuildData:           "builddata.Default",
		StateData:           "access.StateData",
		EdgeMetrics:         "graphstore.EdgeMetrics",
		ComparePipeline:     "compare.Default",
		AnalyzerClass:       "analyzer.Default",
		Multi:               false,
		NumThreads:          4,
		Delay:               0,
		Reports:             []ReportKind{ReportAll},
		OutputDir:           "./out",
		OutputFile:          "graph.gml",
		Screenshots:         false,
		LogLevel:            "warn",
		LogToStdout:         false,
		Headless:            true,
		WindowWidth:         1280,
		WindowHeight:        900,
		ReducedCrawl:        true,
		PageChangeNumLoads:  2,
		PageChangeThreshold: 500 * time.Millisecond,
		PageChangeTimeout:   10 * time.Second,
		NumRevisits:         3,
	}
}

// Load reads a module id (a YAML file path in this implementation) and
// layers it over Default, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		applyEnv(cfg)
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return cfg, nil
}

// Validate rejects bundles that cannot start a crawl.
func (c *Config) Validate() error {
	if c.BuildUser == "" {
		return fmt.Errorf("build_user must be set")
	}
	if c.NumThreads < 1 {
		return fmt.Errorf("num_threads must be >= 1")
	}
	if c.ComparePipeline == "" {
		return fmt.Errorf("compare_pipeline must be set: an empty pipeline is a configuration error")
	}
	return nil
}

const envPrefix = "A11YCRAWL_"

func applyEnv(c *Config) {
	if v, ok := os.LookupEnv(envPrefix + "OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := os.LookupEnv(envPrefix + "NUM_THREADS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.NumThreads = n
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "HEADLESS"); ok {
		c.Headless = strings.EqualFold(v, "true") || v == "1"
	}
	if v, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
}
