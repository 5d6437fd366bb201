package convert_service

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/gen2brain/heic"
)

const jpegQuality = 90

// ConvertHEICToJPEG re-encodes a HEIC photo as JPEG so the image render
// path can handle it. The returned document carries the adjusted filename
// and content type.
func ConvertHEICToJPEG(doc SourceDocument) (SourceDocument, error) {
	img, err := heic.Decode(bytes.NewReader(doc.Bytes))
	if err != nil {
		return SourceDocument{}, fmt.Errorf("%w: decoding HEIC image: %v", ErrExtraction, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return SourceDocument{}, fmt.Errorf("%w: encoding JPEG: %v", ErrExtraction, err)
	}

	return SourceDocument{
		Bytes:    buf.Bytes(),
		MimeType: "image/jpeg",
		Filename: jpegFilename(doc.Filename),
	}, nil
}

// jpegFilename swaps a .heic extension for .jpg regardless of case.
func jpegFilename(name string) string {
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".heic") {
		name = strings.TrimSuffix(name, ext)
	}
	return name + ".jpg"
}
