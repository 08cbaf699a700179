package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"suaplinks/internal/batch"
	"suaplinks/internal/logger"
	"suaplinks/internal/resultcsv"
	"suaplinks/internal/suap"
)

var errRunInProgress = errors.New("outra execução já está gravando este arquivo")

func runBatch(cmd *cobra.Command, flags *runFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	baseLog, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Format,
		Output:   cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = baseLog.Sync() }()
	log := baseLog.With("run_id", uuid.NewString())

	unlock, err := lockOutput(cfg.Files.Output)
	if err != nil {
		return err
	}
	defer unlock()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !isTerminal(f) {
		log.Warn("A entrada padrão não é um terminal; o login será confirmado pela primeira linha recebida")
	}

	session := suap.New(cfg.SessionOptions(), suap.ConsoleGate{In: in, Out: cmd.OutOrStdout()}, log)
	runner := batch.Runner{
		Session: session,
		Writer:  resultcsv.Writer{BOM: cfg.Files.CSVBOM},
		Log:     log,
	}

	report, err := runner.Run(ctx, batch.Job{
		InputPath:  cfg.Files.Input,
		OutputPath: cfg.Files.Output,
		Pace:       cfg.Pace(),
	})
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			log.Info("Operação interrompida pelo usuário")
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Table())
	log.Info("🏁 Fim.")
	return nil
}

// lockOutput keeps two runs from writing the same CSV.
func lockOutput(output string) (func(), error) {
	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("criando pasta de saída: %w", err)
	}

	lockPath := output + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", errRunInProgress, lockPath)
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
