package coa2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-coa2pdf/internal/fileutil"
	"github.com/alnah/go-coa2pdf/internal/process"
)

// Engine turns one HTML document into PDF bytes. An Engine is owned by a
// single export call and must be closed by it.
type Engine interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// EngineLauncher starts an Engine. The Converter launches exactly one
// engine per call.
type EngineLauncher interface {
	Launch(ctx context.Context) (Engine, error)
}

// EngineConfig configures the headless browser.
type EngineConfig struct {
	// BrowserBin is a Chrome/Chromium binary. Empty falls back to
	// ROD_BROWSER_BIN, then to rod's managed download.
	BrowserBin string `json:"browserBin" yaml:"browserBin"`
	// NoSandbox is required in most containers and CI runners.
	NoSandbox bool `json:"noSandbox" yaml:"noSandbox"`
	// Flags are extra chromium switches ("--name" or "--name=value").
	Flags []string `json:"flags" yaml:"flags"`
}

// Viewport of a fresh page: A4 at 96 DPI.
const (
	viewportWidth  = 794
	viewportHeight = 1123
)

// chromiumFlags keep Chrome lean in constrained containers.
var chromiumFlags = []flags.Flag{
	"disable-dev-shm-usage",
	"disable-gpu",
	"no-first-run",
	"disable-accelerated-2d-canvas",
}

// resolve applies the ROD_* environment fallbacks.
func (ec EngineConfig) resolve() EngineConfig {
	if ec.BrowserBin == "" {
		ec.BrowserBin = os.Getenv("ROD_BROWSER_BIN")
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		ec.NoSandbox = true
	}
	return ec
}

// rodLauncher starts headless Chrome through go-rod.
type rodLauncher struct {
	cfg     EngineConfig
	timeout time.Duration
	margins PageMargins
}

// Compile-time interface checks
var (
	_ EngineLauncher = (*rodLauncher)(nil)
	_ Engine         = (*rodEngine)(nil)
)

func newRodLauncher(cfg EngineConfig, timeout time.Duration, margins PageMargins) *rodLauncher {
	return &rodLauncher{cfg: cfg.resolve(), timeout: timeout, margins: margins}
}

// Launch starts a browser process and connects to it.
func (l *rodLauncher) Launch(ctx context.Context) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ln := launcher.New().Context(ctx).Headless(true)
	if l.cfg.BrowserBin != "" {
		ln = ln.Bin(l.cfg.BrowserBin)
	}
	if l.cfg.NoSandbox {
		ln = ln.NoSandbox(true)
	}
	for _, f := range chromiumFlags {
		ln = ln.Set(f)
	}
	for _, raw := range l.cfg.Flags {
		name, val, hasVal := strings.Cut(strings.TrimLeft(raw, "-"), "=")
		if hasVal {
			ln = ln.Set(flags.Flag(name), val)
		} else {
			ln = ln.Set(flags.Flag(name))
		}
	}

	u, err := ln.Launch()
	if err != nil {
		return nil, launchErr(ctx, err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(ln.PID())
		ln.Kill()
		ln.Cleanup()
		return nil, launchErr(ctx, err)
	}
	// Renders carry their own deadlines.
	browser = browser.Context(context.Background())

	return &rodEngine{
		launcher: ln,
		browser:  browser,
		timeout:  l.timeout,
		margins:  l.margins,
	}, nil
}

// launchErr reports cancellation as the context error and anything else
// as ErrBrowserConnect.
func launchErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
}

// rodEngine renders documents sequentially in one browser process.
type rodEngine struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
	margins  PageMargins
	closed   bool
}

// Render writes html to a temp file, loads it in a fresh page and prints it.
// The page is closed on every path.
func (e *rodEngine) Render(ctx context.Context, html string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	renderCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	page, err := e.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	pdf, err := e.print(page.Context(renderCtx), "file://"+tmpPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(renderCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %v", ErrRenderTimeout, e.timeout, err)
		}
		return nil, err
	}
	return pdf, nil
}

// print prepares the page, navigates and waits for DOMContentLoaded only:
// documents are self-contained and the optional web font may never settle.
func (e *rodEngine) print(page *rod.Page, url string) ([]byte, error) {
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: viewport: %v", ErrPageCreate, err)
	}
	if err := (proto.NetworkSetCacheDisabled{CacheDisabled: true}).Call(page); err != nil {
		return nil, fmt.Errorf("%w: cache: %v", ErrPageCreate, err)
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	wait()
	if err := page.GetContext().Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(e.printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

// printOptions is A4 with the configured margins. Every path uses the same
// margins so single and batch output are identical.
func (e *rodEngine) printOptions() *proto.PagePrintToPDF {
	top, right, bottom, left := e.margins.inches()
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(A4WidthInches),
		PaperHeight:       floatPtr(A4HeightInches),
		MarginTop:         floatPtr(top),
		MarginRight:       floatPtr(right),
		MarginBottom:      floatPtr(bottom),
		MarginLeft:        floatPtr(left),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

// Close shuts the browser down and kills its process group as a fallback.
// Safe to call more than once.
func (e *rodEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if e.browser != nil {
		err = e.browser.Close()
	}
	if e.launcher != nil {
		process.KillProcessGroup(e.launcher.PID())
		e.launcher.Kill()
		e.launcher.Cleanup()
	}
	return err
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
