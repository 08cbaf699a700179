// Package config loads suaplinks settings from TOML, environment variables
// and built-in defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ProjectFile is looked up in the working directory when no path is given.
const ProjectFile = "suaplinks.toml"

// Files contains input and output locations.
type Files struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
	CSVBOM bool   `toml:"csv_bom"`
}

// Portal contains the SUAP addresses the session visits.
type Portal struct {
	EntryURL  string `toml:"entry_url"`
	SearchURL string `toml:"search_url"`
}

// Browser contains chromedp launch and wait settings.
type Browser struct {
	Headless                 bool   `toml:"headless"`
	ChromePath               string `toml:"chrome_path"`
	UserAgent                string `toml:"user_agent"`
	Lang                     string `toml:"lang"`
	NavigationTimeoutSeconds int    `toml:"navigation_timeout_seconds"`
	WaitTimeoutSeconds       int    `toml:"wait_timeout_seconds"`
	SettleDelayMillis        int    `toml:"settle_delay_ms"`
	DumpHTMLDir              string `toml:"dump_html_dir"`
}

// Run contains batch pacing.
type Run struct {
	PaceMillis int `toml:"pace_ms"`
}

// Selectors are the CSS selectors used on the SUAP search page.
type Selectors struct {
	SearchInput  string   `toml:"search_input"`
	SubmitButton string   `toml:"submit_button"`
	Results      string   `toml:"results"`
	NoResults    string   `toml:"no_results"`
	Rows         string   `toml:"rows"`
	KeyCell      string   `toml:"key_cell"`
	Links        []string `toml:"links"`
}

// Log contains logger settings.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Files     Files     `toml:"files"`
	Portal    Portal    `toml:"portal"`
	Browser   Browser   `toml:"browser"`
	Run       Run       `toml:"run"`
	Selectors Selectors `toml:"selectors"`
	Log       Log       `toml:"log"`
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error; defaults and environment overrides apply. It returns the
// resolved path and whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = ProjectFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", abs)
	}
	return abs, true, nil
}

// CreateSample writes the sample configuration to path, refusing to
// overwrite an existing file.
func CreateSample(path string) error {
	if path == "" {
		path = ProjectFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create sample config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}

// Encode renders cfg as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NavigationTimeout bounds page loads.
func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.Browser.NavigationTimeoutSeconds) * time.Second
}

// WaitTimeout bounds the wait for search results.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Browser.WaitTimeoutSeconds) * time.Second
}

// SettleDelay is the pause after results appear.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Browser.SettleDelayMillis) * time.Millisecond
}

// Pace is the fixed delay between searches.
func (c *Config) Pace() time.Duration {
	return time.Duration(c.Run.PaceMillis) * time.Millisecond
}
