package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"suaplinks/internal/config"
)

type runFlags struct {
	configPath string
	input      string
	output     string
	headless   bool
	pace       time.Duration
	timeout    time.Duration
	dumpHTML   string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "suaplinks",
		Short: "Coleta os links dos processos eletrônicos do SUAP",
		Long: `Abre o Chrome no SUAP, espera o login manual e busca cada processo da lista,
gravando um CSV NumeroProcesso,LinkProcesso.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal; anything else is a real problem.
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("carregando .env: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, flags)
		},
	}

	// Persistent so `config show` reports the same overrides a run would use.
	f := rootCmd.PersistentFlags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Arquivo de configuração TOML (padrão: ./"+config.ProjectFile+")")
	f.StringVarP(&flags.input, "input", "i", "", "Arquivo JSON com a lista de processos")
	f.StringVarP(&flags.output, "output", "o", "", "Arquivo CSV de saída")
	f.BoolVar(&flags.headless, "headless", false, "Rodar o Chrome em modo headless (impede o login manual)")
	f.DurationVar(&flags.pace, "pace", 0, "Pausa fixa entre buscas (ex: 1s)")
	f.DurationVar(&flags.timeout, "timeout", 0, "Tempo máximo de espera pelos resultados de cada busca (ex: 10s)")
	f.StringVar(&flags.dumpHTML, "dump-html", "", "Pasta para salvar o HTML das buscas sem link")
	f.StringVar(&flags.logLevel, "log-level", "", "Nível de log (debug, info, warn, error)")
	f.StringVar(&flags.logFormat, "log-format", "", "Formato do log (console ou json)")

	rootCmd.AddCommand(newConfigCommand(flags))

	return rootCmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg, _, _, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("input") {
		cfg.Files.Input = flags.input
	}
	if changed("output") {
		cfg.Files.Output = flags.output
	}
	if changed("headless") {
		cfg.Browser.Headless = flags.headless
	}
	if changed("pace") {
		cfg.Run.PaceMillis = int(flags.pace / time.Millisecond)
	}
	if changed("timeout") {
		cfg.Browser.WaitTimeoutSeconds = int(flags.timeout / time.Second)
	}
	if changed("dump-html") {
		cfg.Browser.DumpHTMLDir = flags.dumpHTML
	}
	if changed("log-level") {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(flags.logLevel))
	}
	if changed("log-format") {
		cfg.Log.Format = strings.ToLower(strings.TrimSpace(flags.logFormat))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
