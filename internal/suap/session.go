// Package suap drives a Chrome session against the SUAP admin portal:
// launch, manual login, one search per process number, and shutdown.
package suap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"suaplinks/internal/logger"
	"suaplinks/internal/processo"
)

// Session errors.
var (
	ErrHeadlessLogin = errors.New("modo headless ativo: o login manual não é possível")
	ErrNotOpen       = errors.New("sessão do navegador não está aberta")
	ErrAlreadyOpen   = errors.New("sessão do navegador já foi aberta")
)

// Options configures a Session.
type Options struct {
	EntryURL          string
	SearchURL         string
	Headless          bool
	ChromePath        string
	UserAgent         string
	Lang              string
	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
	SettleDelay       time.Duration
	// DumpHTMLDir, when set, receives the page HTML of every search that
	// produced no link.
	DumpHTMLDir string
	Selectors   Selectors
}

// Session owns one browser. It is not safe for concurrent use.
type Session struct {
	opts Options
	gate Gate
	log  logger.Interface

	opened        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// New returns an unopened session.
func New(opts Options, gate Gate, log logger.Interface) *Session {
	if log == nil {
		log = logger.NewNoOp()
	}
	if opts.Selectors.Rows == "" {
		opts.Selectors = DefaultSelectors()
	}
	return &Session{opts: opts, gate: gate, log: log.WithComponent("suap")}
}

// Open launches Chrome, loads the entry page and blocks on the login gate.
// Close must be called even when Open fails.
func (s *Session) Open(ctx context.Context) error {
	if s.opened {
		return ErrAlreadyOpen
	}
	if s.opts.Headless {
		return ErrHeadlessLogin
	}
	s.opened = true

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if s.opts.Lang != "" {
		allocOpts = append(allocOpts, chromedp.Flag("lang", s.opts.Lang))
	}
	if s.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(s.opts.UserAgent))
	}
	if s.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(s.opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	s.allocCancel = allocCancel
	s.browserCtx, s.browserCancel = chromedp.NewContext(allocCtx)

	// The first Run on the browser context starts Chrome and ties its
	// lifetime to that context, so it must not carry a timeout.
	if err := chromedp.Run(s.browserCtx); err != nil {
		return fmt.Errorf("inicializando chrome: %w", err)
	}
	s.log.Info("Navegador iniciado")

	s.log.Info("Abrindo página de login do SUAP", "url", s.opts.EntryURL)
	navCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.NavigationTimeout)
	err := chromedp.Run(navCtx, chromedp.Navigate(s.opts.EntryURL))
	cancel()
	if err != nil {
		return fmt.Errorf("abrindo %s: %w", s.opts.EntryURL, err)
	}

	if err := s.gate.Confirm(ctx); err != nil {
		return fmt.Errorf("aguardando login: %w", err)
	}
	s.log.Info("Continuando com a automação")
	return nil
}

// SearchOne searches id and returns its outcome. Every failure is logged
// and recorded as processo.NotFound.
func (s *Session) SearchOne(ctx context.Context, id string) processo.Outcome {
	link, err := s.search(ctx, id)
	if err != nil {
		s.log.Warn("Processo sem link", "processo", id, "motivo", err.Error())
		return processo.Missing(id)
	}
	s.log.Debug("Link encontrado", "processo", id, "link", link)
	return processo.Outcome{Identifier: id, Link: link}
}

func (s *Session) search(ctx context.Context, id string) (string, error) {
	if s.browserCtx == nil {
		return "", ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	sel := s.opts.Selectors

	navCtx, navCancel := context.WithTimeout(runCtx, s.opts.NavigationTimeout)
	err := chromedp.Run(navCtx,
		chromedp.Navigate(s.opts.SearchURL),
		chromedp.WaitReady(sel.SearchInput, chromedp.ByQuery),
	)
	navCancel()
	if err != nil {
		return "", fmt.Errorf("abrindo página de busca: %w", err)
	}

	var marked bool
	if err := chromedp.Run(runCtx,
		chromedp.Evaluate(markStaleJS, &marked),
		chromedp.Clear(sel.SearchInput, chromedp.ByQuery),
		chromedp.SendKeys(sel.SearchInput, id, chromedp.ByQuery),
		chromedp.Click(sel.SubmitButton, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("enviando busca: %w", err)
	}

	waitCtx, waitCancel := context.WithTimeout(runCtx, s.opts.WaitTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitReady(sel.outcomeSelector(), chromedp.ByQuery))
	waitCancel()
	if err != nil {
		return "", fmt.Errorf("aguardando resultados (%s): %w", s.opts.WaitTimeout, err)
	}

	var html, location string
	if err := chromedp.Run(runCtx,
		chromedp.Sleep(s.opts.SettleDelay),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("lendo página de resultados: %w", err)
	}

	link, err := ExtractLink(html, location, id, sel)
	if err != nil {
		s.dumpHTML(id, html)
		return "", err
	}
	return link, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func dumpFileName(id string) string {
	name := unsafeFileChars.ReplaceAllString(id, "_")
	if name == "" {
		name = "_"
	}
	return name + ".html"
}

func (s *Session) dumpHTML(id, html string) {
	if s.opts.DumpHTMLDir == "" {
		return
	}
	path := filepath.Join(s.opts.DumpHTMLDir, dumpFileName(id))
	if err := os.MkdirAll(s.opts.DumpHTMLDir, 0o755); err != nil {
		s.log.Warn("Falha ao salvar HTML", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		s.log.Warn("Falha ao salvar HTML", "path", path, "error", err)
		return
	}
	s.log.Debug("HTML salvo", "path", path)
}

// Close shuts the browser down. It is idempotent and safe on a session that
// was never opened or failed to open.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.browserCtx != nil {
			if err := chromedp.Cancel(s.browserCtx); err != nil && !errors.Is(err, context.Canceled) {
				s.closeErr = fmt.Errorf("fechando navegador: %w", err)
			}
			s.browserCancel()
			s.browserCtx = nil
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
		if s.opened {
			s.log.Info("Navegador fechado")
		}
	})
	return s.closeErr
}
