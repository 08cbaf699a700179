// Package batch runs the search loop: load the list, open the session,
// search every identifier at a fixed pace, close the session and write the
// CSV.
package batch

import (
	"context"
	"fmt"
	"time"

	"suaplinks/internal/logger"
	"suaplinks/internal/processo"
)

// Searcher resolves one identifier. Implementations absorb their own
// failures and report them as processo.NotFound.
type Searcher interface {
	SearchOne(ctx context.Context, id string) processo.Outcome
}

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Driver searches identifiers one at a time, in order.
type Driver struct {
	Searcher Searcher
	// Pace is slept after every search, successful or not.
	Pace  time.Duration
	Log   logger.Interface
	Sleep SleepFunc
}

// Process returns one outcome per identifier, in input order. It stops early
// only when ctx is done, returning the outcomes gathered so far and the
// context error.
func (d *Driver) Process(ctx context.Context, ids []string) ([]processo.Outcome, error) {
	log := d.Log
	if log == nil {
		log = logger.NewNoOp()
	}
	sleep := d.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	outcomes := make([]processo.Outcome, 0, len(ids))
	found := 0
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		o := d.searchOne(ctx, id, log)
		o.Identifier = id
		if !o.Found() {
			o.Link = processo.NotFound
		} else {
			found++
		}
		outcomes = append(outcomes, o)

		log.Info(fmt.Sprintf("Processando %d/%d: %s", i+1, len(ids), id),
			"resultado", o.Link,
			"encontrados", found,
		)

		if err := sleep(ctx, d.Pace); err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

// searchOne keeps a panicking searcher from ending the batch.
func (d *Driver) searchOne(ctx context.Context, id string, log logger.Interface) (o processo.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Erro inesperado ao buscar processo", "processo", id, "panic", fmt.Sprint(r))
			o = processo.Missing(id)
		}
	}()
	return d.Searcher.SearchOne(ctx, id)
}

// SleepContext sleeps d, returning early with ctx's error if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
