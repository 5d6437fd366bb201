// Package render_service drives a headless Chromium instance to paginate
// HTML into A4 PDF pages. Each render owns its own browser process: the
// process is launched for the request and torn down on every exit path, so
// a failed render can never leak a browser.
package render_service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// A4 paper size in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69

	// How long the network must stay quiet before the page counts as idle.
	requestIdleWindow = time.Second
)

// browserPage is one live page in a dedicated browser process. Close tears
// down the whole process, not just the tab.
type browserPage interface {
	SetDocumentContent(html string) error
	WaitLoad() error
	WaitRequestIdle(d time.Duration) func()
	PDF(req *proto.PagePrintToPDF) ([]byte, error)
	Close() error
}

// browserFactory opens a fresh browser process with a single page. The
// production factory launches Chromium; tests substitute a fake to account
// for open/close pairing.
type browserFactory interface {
	Open(ctx context.Context, timeout time.Duration) (browserPage, error)
}

// Engine renders HTML to PDF bytes via headless Chromium.
type Engine struct {
	timeout time.Duration
	logger  *slog.Logger
	factory browserFactory
}

func New(timeout time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		timeout: timeout,
		logger:  logger,
		factory: rodFactory{},
	}
}

// Render launches a browser, loads the fragment, waits for the network to go
// idle (mail and DOCX bodies may reference remote images that must finish
// loading before pagination), and prints to PDF. The browser process is
// closed before Render returns, on success and on every failure path.
func (e *Engine) Render(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := e.factory.Open(ctx, e.timeout)
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			e.logger.Warn("Failed to close browser cleanly",
				slog.String("error", err.Error()))
		}
	}()

	if err := page.SetDocumentContent(html); err != nil {
		e.logger.Error("Failed to set page content",
			slog.Int("html_length", len(html)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("setting page content: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		e.logger.Error("Page load wait failed",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("waiting for page load: %w", err)
	}
	page.WaitRequestIdle(requestIdleWindow)()

	pdfBytes, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		PrintBackground: true,
	})
	if err != nil {
		e.logger.Error("PDF pagination failed",
			slog.Int("html_length", len(html)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("printing to PDF: %w", err)
	}

	e.logger.Info("Rendered HTML to PDF",
		slog.Int("html_length", len(html)),
		slog.Int("pdf_length", len(pdfBytes)))

	return pdfBytes, nil
}

// rodFactory launches a real Chromium process per call.
type rodFactory struct{}

func (rodFactory) Open(ctx context.Context, timeout time.Duration) (browserPage, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("single-process").
		Set("no-zygote").
		Set("renderer-process-limit", "1")
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, err
	}
	page = page.Context(ctx).Timeout(timeout)

	return &rodPage{launcher: l, browser: browser, page: page}, nil
}

// rodPage couples the page with the launcher and browser that own it so one
// Close reaches all three.
type rodPage struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (p *rodPage) SetDocumentContent(html string) error {
	return p.page.SetDocumentContent(html)
}

func (p *rodPage) WaitLoad() error {
	return p.page.WaitLoad()
}

func (p *rodPage) WaitRequestIdle(d time.Duration) func() {
	return p.page.WaitRequestIdle(d, nil, nil, nil)
}

func (p *rodPage) PDF(req *proto.PagePrintToPDF) ([]byte, error) {
	reader, err := p.page.PDF(req)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}

func (p *rodPage) Close() error {
	pageErr := p.page.Close()
	browserErr := p.browser.Close()
	p.launcher.Kill()
	p.launcher.Cleanup()

	if pageErr != nil {
		return pageErr
	}
	return browserErr
}

func floatPtr(v float64) *float64 {
	return &v
}
