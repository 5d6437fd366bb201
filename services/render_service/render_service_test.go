package render_service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// fakeFactory counts how many browser processes were opened; each fakePage
// it hands out counts its own closes.
type fakeFactory struct {
	opens   int
	openErr error
	pages   []*fakePage

	setContentErr error
	waitLoadErr   error
	pdfErr        error
	pdf           []byte
}

func (f *fakeFactory) Open(ctx context.Context, timeout time.Duration) (browserPage, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens++
	p := &fakePage{
		setContentErr: f.setContentErr,
		waitLoadErr:   f.waitLoadErr,
		pdfErr:        f.pdfErr,
		pdf:           f.pdf,
	}
	f.pages = append(f.pages, p)
	return p, nil
}

func (f *fakeFactory) closes() int {
	n := 0
	for _, p := range f.pages {
		n += p.closes
	}
	return n
}

type fakePage struct {
	closes        int
	setContentErr error
	waitLoadErr   error
	pdfErr        error
	pdf           []byte
}

func (p *fakePage) SetDocumentContent(html string) error { return p.setContentErr }

func (p *fakePage) WaitLoad() error { return p.waitLoadErr }

func (p *fakePage) WaitRequestIdle(d time.Duration) func() { return func() {} }

func (p *fakePage) PDF(req *proto.PagePrintToPDF) ([]byte, error) {
	if p.pdfErr != nil {
		return nil, p.pdfErr
	}
	return p.pdf, nil
}

func (p *fakePage) Close() error {
	p.closes++
	return nil
}

func newTestEngine(f *fakeFactory) *Engine {
	return &Engine{
		timeout: time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		factory: f,
	}
}

func TestRenderClosesBrowserOnSuccess(t *testing.T) {
	f := &fakeFactory{pdf: []byte("%PDF-...")}
	e := newTestEngine(f)

	out, err := e.Render(context.Background(), "<p>hello</p>")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.Equal(out, f.pdf) {
		t.Errorf("Render returned %q, want the paginated bytes", out)
	}
	if f.opens != 1 || f.closes() != 1 {
		t.Errorf("Expected one open matched by one close, got opens=%d closes=%d", f.opens, f.closes())
	}
}

func TestRenderClosesBrowserOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		factory *fakeFactory
	}{
		{"set content fails", &fakeFactory{setContentErr: errors.New("content rejected")}},
		{"page load fails", &fakeFactory{waitLoadErr: errors.New("load timed out")}},
		{"pagination fails", &fakeFactory{pdfErr: errors.New("print failed")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(tt.factory)

			if _, err := e.Render(context.Background(), "<p>x</p>"); err == nil {
				t.Fatal("Expected Render to return an error")
			}
			if tt.factory.opens != tt.factory.closes() {
				t.Errorf("Browser process leaked: opens=%d closes=%d",
					tt.factory.opens, tt.factory.closes())
			}
			if tt.factory.opens != 1 {
				t.Errorf("Expected exactly one open, got %d", tt.factory.opens)
			}
		})
	}
}

func TestRenderLaunchFailure(t *testing.T) {
	f := &fakeFactory{openErr: errors.New("no chromium binary")}
	e := newTestEngine(f)

	if _, err := e.Render(context.Background(), "<p>x</p>"); err == nil {
		t.Fatal("Expected Render to return an error")
	}
	if f.opens != 0 || f.closes() != 0 {
		t.Errorf("Expected no session when launch fails, got opens=%d closes=%d", f.opens, f.closes())
	}
}

func TestRenderCancelledContext(t *testing.T) {
	f := &fakeFactory{pdf: []byte("%PDF-...")}
	e := newTestEngine(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Render(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if f.opens != 0 {
		t.Errorf("Expected no browser launched for a cancelled context, got %d opens", f.opens)
	}
}
