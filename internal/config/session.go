package config

import "suaplinks/internal/suap"

// SessionOptions maps the configuration onto browser session options.
func (c *Config) SessionOptions() suap.Options {
	return suap.Options{
		EntryURL:          c.Portal.EntryURL,
		SearchURL:         c.Portal.SearchURL,
		Headless:          c.Browser.Headless,
		ChromePath:        c.Browser.ChromePath,
		UserAgent:         c.Browser.UserAgent,
		Lang:              c.Browser.Lang,
		NavigationTimeout: c.NavigationTimeout(),
		WaitTimeout:       c.WaitTimeout(),
		SettleDelay:       c.SettleDelay(),
		DumpHTMLDir:       c.Browser.DumpHTMLDir,
		Selectors:         suap.Selectors(c.Selectors),
	}
}
