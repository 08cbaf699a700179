package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suaplinks/internal/batch"
	"suaplinks/internal/processo"
	"suaplinks/internal/resultcsv"
)

type fakeSession struct {
	links   map[string]string
	panics  map[string]bool
	openErr error
	onCall  func(id string)

	opens  int
	closes int
	calls  []string
}

func (f *fakeSession) Open(context.Context) error {
	f.opens++
	return f.openErr
}

func (f *fakeSession) Close() error {
	f.closes++
	return nil
}

func (f *fakeSession) SearchOne(_ context.Context, id string) processo.Outcome {
	f.calls = append(f.calls, id)
	if f.onCall != nil {
		f.onCall(id)
	}
	if f.panics[id] {
		panic("elemento obsoleto: " + id)
	}
	if link, ok := f.links[id]; ok {
		return processo.Outcome{Identifier: id, Link: link}
	}
	return processo.Missing(id)
}

type recordingSleep struct {
	calls []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return ctx.Err()
}

func writeList(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "lista.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_Scenario(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	session := &fakeSession{links: map[string]string{"A-1": "https://portal.example/admin/case/1/"}}
	sleeper := &recordingSleep{}
	runner := batch.Runner{Session: session, Writer: resultcsv.Writer{}, Sleep: sleeper.sleep}

	job := batch.Job{
		InputPath:  writeList(t, dir, `{"processos": ["A-1", "A-2"]}`),
		OutputPath: filepath.Join(dir, "processos_links.csv"),
		Pace:       time.Second,
	}
	report, err := runner.Run(context.Background(), job)
	require.NoError(t, err)

	got, err := os.ReadFile(job.OutputPath)
	require.NoError(t, err)
	assert.Equal(t,
		"NumeroProcesso,LinkProcesso\nA-1,https://portal.example/admin/case/1/\nA-2,Não encontrado\n",
		string(got))

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Found)
	assert.Equal(t, 1, report.Missing())
	assert.Equal(t, 1, session.opens)
	assert.Equal(t, 1, session.closes)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.calls, "pacing follows every item")
}

func TestRun_EmptyListWritesHeaderOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	session := &fakeSession{}
	runner := batch.Runner{Session: session, Writer: resultcsv.Writer{}}

	job := batch.Job{
		InputPath:  writeList(t, dir, `{"processos": []}`),
		OutputPath: filepath.Join(dir, "out.csv"),
	}
	report, err := runner.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Zero(t, report.Total)

	got, err := os.ReadFile(job.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "NumeroProcesso,LinkProcesso\n", string(got))
	assert.Zero(t, session.opens, "no browser is needed for an empty list")
	assert.Equal(t, 1, session.closes)
}

func TestRun_MissingInputAbortsWithoutCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	session := &fakeSession{}
	runner := batch.Runner{Session: session, Writer: resultcsv.Writer{}}

	job := batch.Job{
		InputPath:  filepath.Join(dir, "lista.json"),
		OutputPath: filepath.Join(dir, "out.csv"),
	}
	report, err := runner.Run(context.Background(), job)
	require.ErrorIs(t, err, batch.ErrNoIdentifiers)
	require.ErrorIs(t, err, processo.ErrListUnavailable)
	assert.Nil(t, report)
	assert.NoFileExists(t, job.OutputPath)
	assert.Zero(t, session.opens)
	assert.Equal(t, 1, session.closes)
}

func TestRun_OpenFailureAbortsWithoutCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	session := &fakeSession{openErr: errors.New("chrome não encontrado")}
	runner := batch.Runner{Session: session, Writer: resultcsv.Writer{}}

	job := batch.Job{
		InputPath:  writeList(t, dir, `{"processos": ["A-1"]}`),
		OutputPath: filepath.Join(dir, "out.csv"),
	}
	_, err := runner.Run(context.Background(), job)
	require.ErrorIs(t, err, batch.ErrSessionOpen)
	assert.NoFileExists(t, job.OutputPath)
	assert.Empty(t, session.calls)
	assert.Equal(t, 1, session.closes)
}

func TestRun_CancelledMidRunClosesAndSkipsCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := &fakeSession{onCall: func(id string) {
		if id == "A-2" {
			cancel()
		}
	}}
	runner := batch.Runner{Session: session, Writer: resultcsv.Writer{}, Sleep: batch.SleepContext}

	job := batch.Job{
		InputPath:  writeList(t, dir, `{"processos": ["A-1", "A-2", "A-3"]}`),
		OutputPath: filepath.Join(dir, "out.csv"),
	}
	_, err := runner.Run(ctx, job)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"A-1", "A-2"}, session.calls)
	assert.NoFileExists(t, job.OutputPath)
	assert.Equal(t, 1, session.closes)
}

type failingWriter struct{}

func (failingWriter) WriteFile(string, []processo.Outcome) error {
	return errors.New("disco cheio")
}

func TestRun_WriterFailureIsReported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	session := &fakeSession{}
	runner := batch.Runner{Session: session, Writer: failingWriter{}, Sleep: (&recordingSleep{}).sleep}

	_, err := runner.Run(context.Background(), batch.Job{
		InputPath:  writeList(t, dir, `{"processos": ["A-1"]}`),
		OutputPath: filepath.Join(dir, "out.csv"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disco cheio")
	assert.Equal(t, 1, session.closes)
}

func TestDriver_PanickingItemDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		links:  map[string]string{"A-3": "https://portal.example/admin/case/3/"},
		panics: map[string]bool{"A-2": true},
	}
	sleeper := &recordingSleep{}
	d := batch.Driver{Searcher: session, Pace: time.Millisecond, Sleep: sleeper.sleep}

	ids := []string{"A-1", "A-2", "A-3", "A-1"}
	outcomes, err := d.Process(context.Background(), ids)
	require.NoError(t, err)

	require.Len(t, outcomes, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, outcomes[i].Identifier, "order and duplicates are preserved")
	}
	assert.False(t, outcomes[1].Found())
	assert.Equal(t, processo.NotFound, outcomes[1].Link)
	assert.Equal(t, "https://portal.example/admin/case/3/", outcomes[2].Link)
	assert.Len(t, sleeper.calls, len(ids))
}

type sloppySearcher struct{}

func (sloppySearcher) SearchOne(_ context.Context, id string) processo.Outcome {
	return processo.Outcome{Identifier: strings.ToLower(id)}
}

func TestDriver_NormalizesSearcherOutcomes(t *testing.T) {
	t.Parallel()

	d := batch.Driver{Searcher: sloppySearcher{}, Sleep: (&recordingSleep{}).sleep}
	outcomes, err := d.Process(context.Background(), []string{"A-1"})
	require.NoError(t, err)
	assert.Equal(t, []processo.Outcome{processo.Missing("A-1")}, outcomes)
}

func TestDriver_PacingIsNeverSkipped(t *testing.T) {
	t.Parallel()

	const pace = 20 * time.Millisecond
	ids := []string{"A-1", "A-2", "A-3"}
	d := batch.Driver{Searcher: &fakeSession{}, Pace: pace}

	start := time.Now()
	outcomes, err := d.Process(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, outcomes, len(ids))
	assert.GreaterOrEqual(t, time.Since(start), time.Duration(len(ids))*pace)
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, batch.SleepContext(ctx, time.Hour), context.Canceled)
	require.NoError(t, batch.SleepContext(context.Background(), 0))
}

func TestReportTable(t *testing.T) {
	t.Parallel()

	r := &batch.Report{OutputPath: "processos_links.csv", Total: 3, Found: 2, Elapsed: 4 * time.Second}
	out := r.Table()
	for _, want := range []string{"Processos", "Encontrados", processo.NotFound, "4s", "processos_links.csv"} {
		assert.Contains(t, out, want)
	}
}
