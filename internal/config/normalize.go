package config

import (
	"os"
	"strings"
)

// Environment variables that take precedence over the config file.
const (
	EnvChromePath = "CHROME_PATH"
	EnvInput      = "SUAPLINKS_INPUT"
	EnvOutput     = "SUAPLINKS_OUTPUT"
	EnvLogLevel   = "SUAPLINKS_LOG_LEVEL"
)

func (c *Config) normalize() {
	if v := strings.TrimSpace(os.Getenv(EnvChromePath)); v != "" {
		c.Browser.ChromePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvInput)); v != "" {
		c.Files.Input = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutput)); v != "" {
		c.Files.Output = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}

	c.Files.Input = strings.TrimSpace(c.Files.Input)
	c.Files.Output = strings.TrimSpace(c.Files.Output)
	c.Portal.EntryURL = strings.TrimSpace(c.Portal.EntryURL)
	c.Portal.SearchURL = strings.TrimSpace(c.Portal.SearchURL)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	links := c.Selectors.Links[:0]
	for _, sel := range c.Selectors.Links {
		if sel = strings.TrimSpace(sel); sel != "" {
			links = append(links, sel)
		}
	}
	c.Selectors.Links = links
}
