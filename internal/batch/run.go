package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"suaplinks/internal/logger"
	"suaplinks/internal/processo"
)

// Fatal run errors.
var (
	ErrNoIdentifiers = errors.New("nenhum processo foi carregado")
	ErrSessionOpen   = errors.New("falha ao abrir a sessão do navegador")
)

// Session is the browser handle a run owns from Open to Close.
type Session interface {
	Searcher
	Open(ctx context.Context) error
	Close() error
}

// ResultWriter persists the outcomes of a run.
type ResultWriter interface {
	WriteFile(path string, outcomes []processo.Outcome) error
}

// Job names the files of one run.
type Job struct {
	InputPath  string
	OutputPath string
	Pace       time.Duration
}

// Runner wires a session and a writer around a Driver.
type Runner struct {
	Session Session
	Writer  ResultWriter
	Log     logger.Interface
	Sleep   SleepFunc
}

// Run executes job. The session is closed exactly once on every path. No
// CSV is written when the list cannot be loaded, the session fails to open,
// or ctx is cancelled mid-run. An empty list skips the browser and writes a
// header-only CSV.
func (r *Runner) Run(ctx context.Context, job Job) (*Report, error) {
	log := r.Log
	if log == nil {
		log = logger.NewNoOp()
	}
	log = log.WithComponent("batch")
	start := time.Now()

	closed := false
	closeSession := func() {
		if closed {
			return
		}
		closed = true
		if err := r.Session.Close(); err != nil {
			log.Warn("Falha ao fechar o navegador", "error", err)
		}
	}
	defer closeSession()

	ids, err := processo.LoadList(job.InputPath)
	if err != nil {
		log.Error("Nenhum processo foi carregado. Verifique o arquivo", "arquivo", job.InputPath, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNoIdentifiers, err)
	}
	log.Info(fmt.Sprintf("Carregados %d processos do arquivo %s", len(ids), job.InputPath))

	var outcomes []processo.Outcome
	if len(ids) == 0 {
		log.Warn("Lista de processos vazia; nenhuma busca será feita")
	} else {
		if err := r.Session.Open(ctx); err != nil {
			log.Error("Falha ao abrir o navegador", "error", err)
			return nil, fmt.Errorf("%w: %w", ErrSessionOpen, err)
		}

		log.Info(fmt.Sprintf("Iniciando processamento de %d processos", len(ids)))
		d := Driver{Searcher: r.Session, Pace: job.Pace, Log: log, Sleep: r.Sleep}
		outcomes, err = d.Process(ctx, ids)
		if err != nil {
			log.Warn("Operação interrompida; o CSV não será gravado",
				"processados", len(outcomes), "total", len(ids), "error", err)
			return nil, err
		}
	}

	closeSession()

	if err := r.Writer.WriteFile(job.OutputPath, outcomes); err != nil {
		return nil, fmt.Errorf("salvando CSV em %s: %w", job.OutputPath, err)
	}

	report := &Report{
		OutputPath: job.OutputPath,
		Outcomes:   outcomes,
		Total:      len(outcomes),
		Found:      processo.CountFound(outcomes),
		Elapsed:    time.Since(start),
	}
	log.Info("Dados salvos em "+job.OutputPath, "linhas", report.Total)
	log.Info(fmt.Sprintf("Estatísticas: %d/%d processos encontrados", report.Found, report.Total))
	return report, nil
}
