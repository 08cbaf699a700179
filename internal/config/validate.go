package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"suaplinks/internal/logger"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the configuration for values the run cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Files.Input == "" {
		errs = append(errs, errors.New("files.input must be set"))
	}
	if c.Files.Output == "" {
		errs = append(errs, errors.New("files.output must be set"))
	}
	errs = append(errs, validateURL("portal.entry_url", c.Portal.EntryURL))
	errs = append(errs, validateURL("portal.search_url", c.Portal.SearchURL))

	if c.Browser.NavigationTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("browser.navigation_timeout_seconds must be positive"))
	}
	if c.Browser.WaitTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("browser.wait_timeout_seconds must be positive"))
	}
	if c.Browser.SettleDelayMillis < 0 {
		errs = append(errs, errors.New("browser.settle_delay_ms must not be negative"))
	}
	if c.Run.PaceMillis < 0 {
		errs = append(errs, errors.New("run.pace_ms must not be negative"))
	}
	errs = append(errs, c.validateSelectors())

	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unsupported value %q", c.Log.Level))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: unsupported value %q", c.Log.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) validateSelectors() error {
	required := map[string]string{
		"selectors.search_input":  c.Selectors.SearchInput,
		"selectors.submit_button": c.Selectors.SubmitButton,
		"selectors.results":       c.Selectors.Results,
		"selectors.no_results":    c.Selectors.NoResults,
		"selectors.rows":          c.Selectors.Rows,
		"selectors.key_cell":      c.Selectors.KeyCell,
	}
	var errs []error
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s must be set", name))
		}
	}
	if len(c.Selectors.Links) == 0 {
		errs = append(errs, errors.New("selectors.links must list at least one selector"))
	}
	return errors.Join(errs...)
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
