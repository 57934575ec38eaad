package renderer

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

const mmPerInch = 25.4

// browser flags for containerised, headless printing
var chromeFlags = []flags.Flag{
	"disable-dev-shm-usage",
	"disable-gpu",
	"disable-software-rasterizer",
	"no-first-run",
	"no-default-browser-check",
}

// RodLauncher starts a fresh headless Chromium per session with go-rod
type RodLauncher struct {
	logger *zap.Logger
}

// NewRodLauncher creates a RodLauncher
func NewRodLauncher(logger *zap.Logger) *RodLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodLauncher{logger: logger}
}

// Open launches the browser and connects to it
func (l *RodLauncher) Open(ctx context.Context, executable string) (Session, error) {
	ln := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)
	if executable != "" {
		ln = ln.Bin(executable)
	}
	for _, f := range chromeFlags {
		ln = ln.Set(f)
	}

	controlURL, err := ln.Launch()
	if err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &rodSession{launcher: ln, browser: browser, page: page, logger: l.logger}, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   *zap.Logger
}

func (s *rodSession) Load(ctx context.Context, html string) error {
	return s.page.Context(ctx).SetDocumentContent(html)
}

// WaitReady waits for the load event and for embedded fonts to be decoded
func (s *rodSession) WaitReady(ctx context.Context) error {
	page := s.page.Context(ctx)
	if err := page.WaitLoad(); err != nil {
		return err
	}
	_, err := page.Eval(`() => document.fonts.ready.then(() => true)`)
	return err
}

func (s *rodSession) PrintPDF(ctx context.Context, setup PageSetup, footer string) ([]byte, error) {
	req := &proto.PagePrintToPDF{
		PaperWidth:      gson.Num(setup.WidthInch),
		PaperHeight:     gson.Num(setup.HeightInch),
		MarginTop:       gson.Num(setup.MarginTopMM / mmPerInch),
		MarginBottom:    gson.Num(setup.MarginBottomMM / mmPerInch),
		MarginLeft:      gson.Num(setup.MarginLeftMM / mmPerInch),
		MarginRight:     gson.Num(setup.MarginRightMM / mmPerInch),
		PrintBackground: setup.PrintBackground,
	}
	if footer != "" {
		req.DisplayHeaderFooter = true
		req.HeaderTemplate = "<span></span>"
		req.FooterTemplate = footer
	}

	stream, err := s.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return io.ReadAll(stream)
}

// Close shuts the browser down and removes its profile directory
func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	if err != nil {
		s.logger.Debug("renderer.browser.close_failed", zap.Error(err))
	}
	return err
}

// RodAcquirer finds or downloads a Chromium build through go-rod
type RodAcquirer struct{}

// LookPath returns an installed Chrome or Chromium
func (RodAcquirer) LookPath() (string, bool) {
	return launcher.LookPath()
}

// Download fetches go-rod's pinned Chromium revision when it is not cached
func (RodAcquirer) Download(ctx context.Context) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	path, err := b.Get()
	if err != nil {
		return "", fmt.Errorf("failed to download browser: %w", err)
	}
	return path, nil
}
