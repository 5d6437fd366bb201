package convert_service

import (
	"bytes"
	"strings"
	"testing"
)

func TestStampMetadata(t *testing.T) {
	pdfBytes := loadFixturePDF(t)

	stamped, err := StampMetadata(pdfBytes, "Quarterly Report", "user-1")
	if err != nil {
		t.Fatalf("StampMetadata returned error: %v", err)
	}

	if len(stamped) == 0 {
		t.Fatal("Expected non-empty output")
	}
	if !bytes.Contains(stamped, []byte("/Title")) {
		t.Error("Expected a Title entry in the stamped document")
	}
	if !bytes.Contains(stamped, []byte("/Author")) {
		t.Error("Expected an Author entry in the stamped document")
	}

	// The stamped document must still be a readable PDF with its content
	// intact.
	text, err := ExtractPDFText(stamped, testLogger())
	if err != nil {
		t.Fatalf("Stamped PDF no longer parses: %v", err)
	}
	if !strings.Contains(text, "Hello World") {
		t.Errorf("Stamped PDF lost page content, extracted %q", text)
	}
}

func TestStampMetadataNoAuthor(t *testing.T) {
	stamped, err := StampMetadata(loadFixturePDF(t), "Untitled", "")
	if err != nil {
		t.Fatalf("StampMetadata returned error: %v", err)
	}
	if !bytes.Contains(stamped, []byte("/Title")) {
		t.Error("Expected a Title entry in the stamped document")
	}
}

func TestStampMetadataRejectsGarbage(t *testing.T) {
	if _, err := StampMetadata([]byte("not a pdf"), "t", "a"); err == nil {
		t.Fatal("Expected error for malformed input")
	}
}

func TestExtractPDFTextGarbage(t *testing.T) {
	if _, err := ExtractPDFText([]byte("junk"), testLogger()); err == nil {
		t.Fatal("Expected error for malformed input")
	}
}
