// Package renderer turns composed HTML documents into PDF bytes with a
// headless browser. Every render opens its own browser session and closes
// it before returning.
package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrEngineUnavailable means no browser session could be started
	ErrEngineUnavailable = errors.New("rendering engine unavailable")
	// ErrRenderFailed means a session started but loading or printing failed
	ErrRenderFailed = errors.New("render failed")
)

// State is the phase of a single render
type State int

const (
	StateIdle State = iota
	StateExecutableResolving
	StateExecutableReady
	StateSessionOpen
	StateContentLoaded
	StateRendered
	StateClosed
	StateFailed
)

var stateNames = [...]string{
	"idle",
	"executable_resolving",
	"executable_ready",
	"session_open",
	"content_loaded",
	"rendered",
	"closed",
	"failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Document is one page-flow to print
type Document struct {
	HTML string
	// Footer is a print footer template; it may use the pageNumber and
	// totalPages placeholder classes
	Footer string
}

// PageSetup is the fixed page geometry of a print
type PageSetup struct {
	WidthInch       float64
	HeightInch      float64
	MarginTopMM     float64
	MarginBottomMM  float64
	MarginLeftMM    float64
	MarginRightMM   float64
	PrintBackground bool
}

// A4 returns portrait A4 with 5mm margins (6mm at the bottom) and
// backgrounds printed
func A4() PageSetup {
	return PageSetup{
		WidthInch:       8.27,
		HeightInch:      11.69,
		MarginTopMM:     5,
		MarginBottomMM:  6,
		MarginLeftMM:    5,
		MarginRightMM:   5,
		PrintBackground: true,
	}
}

// Session is one open browser session
type Session interface {
	Load(ctx context.Context, html string) error
	WaitReady(ctx context.Context) error
	PrintPDF(ctx context.Context, page PageSetup, footer string) ([]byte, error)
	Close() error
}

// Launcher starts browser sessions. An empty executable leaves discovery to
// the launcher itself; the Engine only passes one when downloads are allowed.
type Launcher interface {
	Open(ctx context.Context, executable string) (Session, error)
}

// Acquirer finds an installed browser or downloads one
type Acquirer interface {
	LookPath() (string, bool)
	Download(ctx context.Context) (string, error)
}

// Options configures an Engine
type Options struct {
	BrowserPath    string
	AllowDownload  bool
	Timeout        time.Duration
	LaunchAttempts int
	RetryInterval  time.Duration
	Page           PageSetup
	// OnStateChange, when set, observes every state of every render
	OnStateChange func(State)
}

// Engine renders documents to PDF
type Engine struct {
	launcher Launcher
	acquirer Acquirer
	opts     Options
	logger   *zap.Logger

	resolving  singleflight.Group
	mu         sync.Mutex
	executable string
}

// NewEngine creates an Engine
func NewEngine(launcher Launcher, acquirer Acquirer, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LaunchAttempts < 1 {
		opts.LaunchAttempts = 1
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 200 * time.Millisecond
	}
	if opts.Page == (PageSetup{}) {
		opts.Page = A4()
	}
	return &Engine{
		launcher: launcher,
		acquirer: acquirer,
		opts:     opts,
		logger:   logger,
	}
}

// Render prints doc to PDF. The session is closed on every return path and
// the returned bytes always validate as a PDF.
func (e *Engine) Render(ctx context.Context, doc Document) (pdf []byte, err error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	e.transition(StateExecutableResolving)
	executable := e.ResolveExecutable(ctx)
	if executable == "" && !e.opts.AllowDownload {
		e.transition(StateFailed)
		return nil, fmt.Errorf("%w: no browser executable found and downloads are disabled", ErrEngineUnavailable)
	}
	e.transition(StateExecutableReady)

	session, err := e.open(ctx, executable)
	if err != nil {
		e.transition(StateFailed)
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	e.transition(StateSessionOpen)

	defer func() {
		if cerr := session.Close(); cerr != nil {
			e.logger.Warn("renderer.session.close_failed", zap.Error(cerr))
		}
		if err != nil {
			e.transition(StateFailed)
			return
		}
		e.transition(StateClosed)
	}()

	if err := session.Load(ctx, doc.HTML); err != nil {
		return nil, fmt.Errorf("%w: load content: %v", ErrRenderFailed, err)
	}
	if err := session.WaitReady(ctx); err != nil {
		return nil, fmt.Errorf("%w: wait for content: %v", ErrRenderFailed, err)
	}
	e.transition(StateContentLoaded)

	pdf, err = session.PrintPDF(ctx, e.opts.Page, doc.Footer)
	if err != nil {
		return nil, fmt.Errorf("%w: print: %v", ErrRenderFailed, err)
	}

	pages, err := verifyPDF(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid output: %v", ErrRenderFailed, err)
	}
	e.transition(StateRendered)

	e.logger.Debug("renderer.render.done",
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", pages),
	)
	return pdf, nil
}

// open starts a session, retrying launch failures with exponential backoff
func (e *Engine) open(ctx context.Context, executable string) (Session, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.opts.RetryInterval
	bo.MaxInterval = 10 * e.opts.RetryInterval

	var session Session
	attempt := 0
	launch := func() error {
		attempt++
		s, err := e.launcher.Open(ctx, executable)
		if err != nil {
			e.logger.Warn("renderer.session.launch_failed",
				zap.Int("attempt", attempt),
				zap.String("executable", executable),
				zap.Error(err),
			)
			return err
		}
		session = s
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(e.opts.LaunchAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(launch, policy); err != nil {
		return nil, err
	}
	return session, nil
}

func (e *Engine) transition(s State) {
	e.logger.Debug("renderer.state", zap.Stringer("state", s))
	if e.opts.OnStateChange != nil {
		e.opts.OnStateChange(s)
	}
}

// verifyPDF validates b and returns its page count
func verifyPDF(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, errors.New("empty output")
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(b), conf); err != nil {
		return 0, err
	}
	pages, err := api.PageCount(bytes.NewReader(b), conf)
	if err != nil {
		return 0, err
	}
	return pages, nil
}
