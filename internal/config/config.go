// Package config loads the mdx2md configuration file.
//
// The file is YAML. `${VAR}` references are expanded from the environment after .env and
// .env.local have been loaded; variables already set in the process win over both files.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "mdx2md.yaml"

// Config is the complete configuration.
type Config struct {
	DocsRoot string         `yaml:"docs_root"`
	Site     SiteConfig     `yaml:"site"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Output   OutputConfig   `yaml:"output"`
	Export   ExportConfig   `yaml:"export"`
	Index    IndexConfig    `yaml:"index"`
	Events   EventsConfig   `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig describes where documents are published.
type SiteConfig struct {
	BaseURL string `yaml:"base_url"` // Site root including locale
	// MarkdownBaseURL enables rewriting same-site links to published Markdown files.
	MarkdownBaseURL string `yaml:"markdown_base_url"`
}

// DefaultsConfig holds selection defaults.
type DefaultsConfig struct {
	Platform string `yaml:"platform"`
}

// OutputConfig controls written documents and assets.
type OutputConfig struct {
	Folder          string `yaml:"folder"`
	AssetBaseURL    string `yaml:"asset_base_url"`
	HTMLVersionLink bool   `yaml:"html_version_link"`
}

// ExportConfig controls batch export.
type ExportConfig struct {
	StartFolder   string   `yaml:"start_folder"`  // Relative to the docs root
	ProductsFile  string   `yaml:"products_file"` // Relative to the directory holding the docs root
	SkipFolders   []string `yaml:"skip_folders"`
	SkipUnchanged *bool    `yaml:"skip_unchanged"`
}

// IndexConfig controls the file-mapping index.
type IndexConfig struct {
	OutputFolder string `yaml:"output_folder"`
	Database     string `yaml:"database"`
	JSONFile     string `yaml:"json_file"`
}

// EventsConfig enables export events on NATS JetStream when URL is set.
type EventsConfig struct {
	URL     string   `yaml:"url"`
	Subject string   `yaml:"subject"`
	Stream  string   `yaml:"stream"`
	Timeout Duration `yaml:"timeout"`
}

// MetricsConfig enables Prometheus textfile output when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// DaemonConfig controls scheduled exports and watch mode.
type DaemonConfig struct {
	Schedule string   `yaml:"schedule"` // Cron expression
	Interval Duration `yaml:"interval"` // Used instead of Schedule when set
	Watch    bool     `yaml:"watch"`
	Debounce Duration `yaml:"debounce"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Duration is a time.Duration written as a Go duration string ("30s", "5m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	if d == 0 {
		return "", nil
	}
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found: " + path).WithPath(path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithPath(path).
			Build()
	}
	return Parse(data)
}

// LoadOrDefault loads path when it exists and returns defaults otherwise. An empty path
// means DefaultFile.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		loadEnvFiles()
		return Default()
	}
	return Load(path)
}

// Parse expands environment references in data and returns the validated configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").Fatal().Build()
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	if err := applyDefaults(c); err != nil {
		return err
	}
	return ValidateConfig(c)
}

// SkipUnchangedEnabled reports whether export skips writes whose fingerprint is unchanged.
func (e ExportConfig) SkipUnchangedEnabled() bool {
	return e.SkipUnchanged == nil || *e.SkipUnchanged
}
