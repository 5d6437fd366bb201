package convert_service

import (
	"mime"
	"path/filepath"
	"strings"
)

// Format identifies a supported input document type. The set is closed:
// the orchestrator switches over every value so that adding a format is a
// compile-visible change instead of a silent fallthrough.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDocx
	FormatEML
	FormatMSG
	FormatImage
	FormatHEIC
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDocx:
		return "docx"
	case FormatEML:
		return "eml"
	case FormatMSG:
		return "msg"
	case FormatImage:
		return "image"
	case FormatHEIC:
		return "heic"
	default:
		return "unknown"
	}
}

// DetectFormat classifies a file from its declared content type and filename.
// The MIME type wins for PDFs, the extension for the office and mail formats,
// and anything under image/ lands on the image path, with image/heic kept
// apart because it needs re-encoding before it can be rendered.
func DetectFormat(mimeType, filename string) Format {
	mt := normalizeMimeType(mimeType)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	if mt == "application/pdf" || ext == "pdf" {
		return FormatPDF
	}

	switch ext {
	case "docx":
		return FormatDocx
	case "eml":
		return FormatEML
	case "msg":
		return FormatMSG
	}

	if mt == "image/heic" {
		return FormatHEIC
	}
	if strings.HasPrefix(mt, "image/") {
		return FormatImage
	}

	return FormatUnknown
}

func normalizeMimeType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}
