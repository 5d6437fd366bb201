package convert_service

import "errors"

// Failure taxonomy for the conversion pipeline. Handlers map the first two
// to 4xx responses since the caller can correct them; everything else is a
// server-side failure.
var (
	ErrSizeLimitExceeded = errors.New("file size exceeds limit")
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrExtraction        = errors.New("text extraction failed")
	ErrRender            = errors.New("pdf rendering failed")
	ErrUpstreamFetch     = errors.New("failed to fetch remote document")
)
