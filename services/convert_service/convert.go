package convert_service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// SourceDocument is one inbound file as received at the request boundary.
type SourceDocument struct {
	Bytes    []byte
	MimeType string
	Filename string
}

// FilenameBase returns the filename without its extension, used for the
// stamped PDF title and attachment names.
func (d SourceDocument) FilenameBase() string {
	return strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename))
}

// ConversionResult carries both derived artifacts. Both slices are always
// non-nil after a successful Convert, even when the content is trivial.
type ConversionResult struct {
	PDFBytes  []byte
	TextBytes []byte
}

// RenderEngine paginates an HTML fragment to PDF bytes. The production
// implementation drives a headless browser; tests substitute a fake.
type RenderEngine interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Converter dispatches an inbound document to the extractor/renderer pair
// for its detected format.
type Converter struct {
	engine   RenderEngine
	maxBytes int64
	logger   *slog.Logger
}

func NewConverter(engine RenderEngine, maxBytes int64, logger *slog.Logger) *Converter {
	return &Converter{
		engine:   engine,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Convert produces the (PDF, text) pair for a document. The size ceiling is
// enforced before any format-specific work so oversized inputs never reach
// the render engine. userID, when present, is stamped as the PDF author.
func (c *Converter) Convert(ctx context.Context, doc SourceDocument, userID string) (*ConversionResult, error) {
	if int64(len(doc.Bytes)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrSizeLimitExceeded, len(doc.Bytes), c.maxBytes)
	}

	format := DetectFormat(doc.MimeType, doc.Filename)
	c.logger.Info("Converting document",
		slog.String("filename", doc.Filename),
		slog.String("format", format.String()),
		slog.Int("size", len(doc.Bytes)))

	switch format {
	case FormatPDF:
		return c.convertPDF(doc)
	case FormatDocx:
		return c.convertDocx(ctx, doc, userID)
	case FormatEML, FormatMSG:
		return c.convertMail(ctx, doc, userID)
	case FormatImage:
		return c.convertImage(ctx, doc, userID)
	case FormatHEIC:
		return c.convertHEIC(ctx, doc, userID)
	case FormatUnknown:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, doc.Filename, doc.MimeType)
	default:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, doc.Filename, doc.MimeType)
	}
}

// convertPDF keeps the input bytes as the PDF half untouched; only the text
// half is derived.
func (c *Converter) convertPDF(doc SourceDocument) (*ConversionResult, error) {
	text, err := ExtractPDFText(doc.Bytes, c.logger)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{
		PDFBytes:  doc.Bytes,
		TextBytes: []byte(text),
	}, nil
}

func (c *Converter) convertDocx(ctx context.Context, doc SourceDocument, userID string) (*ConversionResult, error) {
	text, err := ExtractDocxText(doc.Bytes, c.logger)
	if err != nil {
		return nil, err
	}

	html, err := RenderDocxHTML(doc.Bytes)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := c.renderAndStamp(ctx, html, doc.FilenameBase(), userID)
	if err != nil {
		return nil, err
	}

	return &ConversionResult{
		PDFBytes:  pdfBytes,
		TextBytes: []byte(text),
	}, nil
}

func (c *Converter) convertMail(ctx context.Context, doc SourceDocument, userID string) (*ConversionResult, error) {
	msg, err := ParseMail(doc.Bytes)
	if err != nil {
		return nil, err
	}

	text, err := RenderMailText(msg)
	if err != nil {
		return nil, err
	}

	html, err := RenderMailHTML(msg)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := c.renderAndStamp(ctx, html, doc.FilenameBase(), userID)
	if err != nil {
		return nil, err
	}

	return &ConversionResult{
		PDFBytes:  pdfBytes,
		TextBytes: []byte(text),
	}, nil
}

func (c *Converter) convertImage(ctx context.Context, doc SourceDocument, userID string) (*ConversionResult, error) {
	html := RenderImageHTML(doc.MimeType, doc.Bytes)

	pdfBytes, err := c.renderAndStamp(ctx, html, doc.FilenameBase(), userID)
	if err != nil {
		return nil, err
	}

	return &ConversionResult{
		PDFBytes:  pdfBytes,
		TextBytes: []byte("Filename: " + doc.Filename),
	}, nil
}

// convertHEIC re-encodes the image as JPEG first, then delegates to the
// image path. Text extraction has no semantics for photos, so the text half
// stays a filename placeholder.
func (c *Converter) convertHEIC(ctx context.Context, doc SourceDocument, userID string) (*ConversionResult, error) {
	jpegDoc, err := ConvertHEICToJPEG(doc)
	if err != nil {
		return nil, err
	}

	result, err := c.convertImage(ctx, jpegDoc, userID)
	if err != nil {
		return nil, err
	}
	result.TextBytes = []byte("Filename: " + doc.Filename)
	return result, nil
}

func (c *Converter) renderAndStamp(ctx context.Context, html, title, author string) ([]byte, error) {
	pdfBytes, err := c.engine.Render(ctx, html)
	if err != nil {
		c.logger.Error("Render engine failed",
			slog.String("title", title),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	stamped, err := StampMetadata(pdfBytes, title, author)
	if err != nil {
		c.logger.Error("PDF metadata stamping failed",
			slog.String("title", title),
			slog.String("error", err.Error()))
		return nil, err
	}
	return stamped, nil
}
