package config

import (
	"net/url"
	"strings"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

// ValidateConfig checks the configuration after defaults have been applied.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{
		v.validateSite,
		v.validateExport,
		v.validateEvents,
		v.validateDaemon,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (v *configurationValidator) validateSite() error {
	if err := absoluteURL("site.base_url", v.config.Site.BaseURL); err != nil {
		return err
	}
	if v.config.Site.MarkdownBaseURL != "" {
		if err := absoluteURL("site.markdown_base_url", v.config.Site.MarkdownBaseURL); err != nil {
			return err
		}
	}
	if strings.ContainsAny(v.config.Defaults.Platform, "/ ") {
		return ferrors.ValidationError("defaults.platform must be a single platform id").
			WithContext("platform", v.config.Defaults.Platform).
			Build()
	}
	return nil
}

func (v *configurationValidator) validateExport() error {
	if strings.HasPrefix(v.config.Export.StartFolder, "..") {
		return ferrors.ValidationError("export.start_folder must stay inside the docs root").
			WithContext("start_folder", v.config.Export.StartFolder).
			Build()
	}
	return nil
}

func (v *configurationValidator) validateEvents() error {
	if v.config.Events.URL == "" {
		return nil
	}
	if v.config.Events.Timeout < 0 {
		return ferrors.ValidationError("events.timeout must not be negative").Build()
	}
	if strings.ContainsAny(v.config.Events.Subject, " \t") {
		return ferrors.ValidationError("events.subject must not contain whitespace").
			WithContext("subject", v.config.Events.Subject).
			Build()
	}
	return nil
}

func (v *configurationValidator) validateDaemon() error {
	if v.config.Daemon.Interval < 0 {
		return ferrors.ValidationError("daemon.interval must not be negative").Build()
	}
	if v.config.Daemon.Interval == 0 && len(strings.Fields(v.config.Daemon.Schedule)) != 5 {
		return ferrors.ValidationError("daemon.schedule must be a five-field cron expression").
			WithContext("schedule", v.config.Daemon.Schedule).
			Build()
	}
	return nil
}

func absoluteURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ferrors.ValidationError(field+" must be an absolute URL").
			WithContext("value", raw).
			Build()
	}
	return nil
}
