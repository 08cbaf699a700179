package suap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoConfirmation is returned when input ends before the user confirms.
var ErrNoConfirmation = errors.New("entrada encerrada antes da confirmação do login")

// Gate blocks until a human confirms the browser session is logged in.
type Gate interface {
	Confirm(ctx context.Context) error
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context) error

// Confirm calls f.
func (f GateFunc) Confirm(ctx context.Context) error {
	return f(ctx)
}

// ConsoleGate prints login instructions to Out and waits for one line on In.
// There is no timeout; only ctx cancellation ends the wait early.
type ConsoleGate struct {
	In  io.Reader
	Out io.Writer
}

const loginBanner = `
============================================================
🔐 FAÇA SEU LOGIN NO NAVEGADOR
============================================================
1. O navegador foi aberto com a página do SUAP
2. Faça seu login normalmente
3. Navegue até estar logado no sistema
4. Pressione ENTER aqui para continuar...
============================================================
`

// Confirm implements Gate.
func (g ConsoleGate) Confirm(ctx context.Context) error {
	if _, err := fmt.Fprint(g.Out, loginBanner, "Pressione ENTER após fazer o login: "); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(g.In).ReadString('\n')
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			err = nil
		}
		if errors.Is(err, io.EOF) {
			err = ErrNoConfirmation
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
