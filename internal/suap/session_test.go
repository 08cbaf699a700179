package suap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suaplinks/internal/logger"
	"suaplinks/internal/processo"
)

func TestScopeSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		list string
		want string
	}{
		{list: "#result_list", want: "P #result_list"},
		{list: "#a, .b", want: "P #a, P .b"},
		{list: `a[href*=","], td`, want: `P a[href*=","], P td`},
		{list: "li:is(.x, .y) , p", want: "P li:is(.x, .y), P p"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scopeSelector("P", tt.list), tt.list)
	}
}

func TestOutcomeSelectorOnlyMatchesFreshDocument(t *testing.T) {
	t.Parallel()

	got := DefaultSelectors().outcomeSelector()
	assert.Equal(t,
		"html:not([data-suaplinks-stale]) #result_list, html:not([data-suaplinks-stale]) #changelist .paginator",
		got)
	assert.Contains(t, markStaleJS, staleAttr)
}

func TestConsoleGate_ConfirmsOnEnter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	gate := ConsoleGate{In: strings.NewReader("\n"), Out: &out}

	require.NoError(t, gate.Confirm(context.Background()))
	assert.Contains(t, out.String(), "FAÇA SEU LOGIN NO NAVEGADOR")
	assert.Contains(t, out.String(), "Pressione ENTER após fazer o login: ")
}

func TestConsoleGate_EOFWithoutInput(t *testing.T) {
	t.Parallel()

	gate := ConsoleGate{In: strings.NewReader(""), Out: io.Discard}
	require.ErrorIs(t, gate.Confirm(context.Background()), ErrNoConfirmation)
}

func TestConsoleGate_BlocksUntilCancelled(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ConsoleGate{In: r, Out: io.Discard}.Confirm(ctx)
	}()

	select {
	case err := <-errCh:
		t.Fatalf("gate returned before confirmation: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("gate did not return after cancellation")
	}
}

func TestGateFunc(t *testing.T) {
	t.Parallel()

	want := errors.New("recusado")
	assert.Equal(t, want, GateFunc(func(context.Context) error { return want }).Confirm(context.Background()))
}

func TestOpenRejectsHeadlessBeforeLaunching(t *testing.T) {
	t.Parallel()

	called := false
	gate := GateFunc(func(context.Context) error {
		called = true
		return nil
	})
	s := New(Options{Headless: true}, gate, logger.NewNoOp())

	require.ErrorIs(t, s.Open(context.Background()), ErrHeadlessLogin)
	assert.False(t, called)
	assert.Nil(t, s.browserCtx)
	require.NoError(t, s.Close())
}

func TestCloseIsIdempotentOnUnopenedSession(t *testing.T) {
	t.Parallel()

	s := New(Options{}, nil, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestSearchOneWithoutOpenIsNotFound(t *testing.T) {
	t.Parallel()

	s := New(Options{}, nil, nil)
	got := s.SearchOne(context.Background(), "A-1")
	assert.Equal(t, processo.Missing("A-1"), got)

	_, err := s.search(context.Background(), "A-1")
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestNewFillsDefaultSelectors(t *testing.T) {
	t.Parallel()

	s := New(Options{}, nil, nil)
	assert.Equal(t, DefaultSelectors(), s.opts.Selectors)

	custom := DefaultSelectors()
	custom.SearchInput = "input[name=q]"
	s = New(Options{Selectors: custom}, nil, nil)
	assert.Equal(t, "input[name=q]", s.opts.Selectors.SearchInput)
}

func TestDumpFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "23305.000123_2024-11.html", dumpFileName("23305.000123/2024-11"))
	assert.Equal(t, "_.html", dumpFileName(""))
	assert.Equal(t, "A_1.html", dumpFileName("A 1"))
}

func TestDumpHTML(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "dump")
	s := New(Options{DumpHTMLDir: dir}, nil, nil)
	s.dumpHTML("A/1", "<html></html>")

	data, err := os.ReadFile(filepath.Join(dir, "A_1.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}
