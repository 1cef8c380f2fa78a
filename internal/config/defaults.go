package config

import (
	"time"
)

// Default values.
const (
	DefaultDocsRoot      = "docs"
	DefaultSiteBase      = "https://docs.agora.io/en"
	DefaultPlatform      = "android"
	DefaultOutputFolder  = "output"
	DefaultAssetBaseURL  = "/assets"
	DefaultProductsFile  = "data/v2/products.js"
	DefaultIndexFolder   = "output-index"
	DefaultIndexDatabase = "mdx2md.db"
	DefaultIndexJSON     = "file-mapping.json"
	DefaultEventsSubject = "mdx2md.export"
	DefaultEventsStream  = "MDX2MD"
	DefaultSchedule      = "0 */4 * * *"
)

// DefaultSkipFolders are never exported.
var DefaultSkipFolders = []string{"shared", ".github", "use-cases", "assets"}

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.DocsRoot == "" {
		cfg.DocsRoot = DefaultDocsRoot
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = DefaultSiteBase
	}
	if cfg.Defaults.Platform == "" {
		cfg.Defaults.Platform = DefaultPlatform
	}
	return nil
}

type outputDefaults struct{}

func (outputDefaults) Domain() string { return "output" }

func (outputDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Folder == "" {
		cfg.Output.Folder = DefaultOutputFolder
	}
	if cfg.Output.AssetBaseURL == "" {
		cfg.Output.AssetBaseURL = DefaultAssetBaseURL
	}
	return nil
}

type exportDefaults struct{}

func (exportDefaults) Domain() string { return "export" }

func (exportDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Export.ProductsFile == "" {
		cfg.Export.ProductsFile = DefaultProductsFile
	}
	if cfg.Export.SkipFolders == nil {
		cfg.Export.SkipFolders = append([]string(nil), DefaultSkipFolders...)
	}
	return nil
}

type indexDefaults struct{}

func (indexDefaults) Domain() string { return "index" }

func (indexDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Index.OutputFolder == "" {
		cfg.Index.OutputFolder = DefaultIndexFolder
	}
	if cfg.Index.Database == "" {
		cfg.Index.Database = DefaultIndexDatabase
	}
	if cfg.Index.JSONFile == "" {
		cfg.Index.JSONFile = DefaultIndexJSON
	}
	return nil
}

type eventsDefaults struct{}

func (eventsDefaults) Domain() string { return "events" }

func (eventsDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultEventsSubject
	}
	if cfg.Events.Stream == "" {
		cfg.Events.Stream = DefaultEventsStream
	}
	if cfg.Events.Timeout == 0 {
		cfg.Events.Timeout = Duration(5 * time.Second)
	}
	return nil
}

type daemonDefaults struct{}

func (daemonDefaults) Domain() string { return "daemon" }

func (daemonDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Daemon.Schedule == "" && cfg.Daemon.Interval == 0 {
		cfg.Daemon.Schedule = DefaultSchedule
	}
	if cfg.Daemon.Debounce == 0 {
		cfg.Daemon.Debounce = Duration(500 * time.Millisecond)
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		siteDefaults{},
		outputDefaults{},
		exportDefaults{},
		indexDefaults{},
		eventsDefaults{},
		daemonDefaults{},
		loggingDefaults{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
