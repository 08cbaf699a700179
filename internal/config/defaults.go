package config

import "suaplinks/internal/suap"

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Files: Files{
			Input:  "lista.json",
			Output: "processos_links.csv",
		},
		Portal: Portal{
			EntryURL:  "https://suap.ifsp.edu.br/",
			SearchURL: "https://suap.ifsp.edu.br/admin/processo_eletronico/processo/",
		},
		Browser: Browser{
			Lang:                     "pt-BR",
			NavigationTimeoutSeconds: 30,
			WaitTimeoutSeconds:       10,
			SettleDelayMillis:        2000,
		},
		Run: Run{
			PaceMillis: 1000,
		},
		Selectors: Selectors(suap.DefaultSelectors()),
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}
