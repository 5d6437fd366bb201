package convert_service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"code.sajari.com/docconv/v2"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ExtractDocxText converts a DOCX document to plain text, preserving
// paragraph breaks.
func ExtractDocxText(data []byte, logger *slog.Logger) (string, error) {
	logger.Debug("Starting DOCX text extraction",
		slog.Int("data_size", len(data)))

	result, err := docconv.Convert(bytes.NewReader(data), docxMimeType, false)
	if err != nil {
		logger.Error("Failed to convert DOCX document",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("%w: converting DOCX: %v", ErrExtraction, err)
	}

	logger.Info("Extracted text from DOCX document",
		slog.Int("text_length", len(result.Body)))

	return result.Body, nil
}

// RenderDocxHTML turns the document body into an HTML fragment suitable for
// print rendering. It walks word/document.xml directly, mapping heading
// styles to h1-h6, list paragraphs to li items, and bold/italic runs to
// strong/em.
func RenderDocxHTML(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: opening DOCX archive: %v", ErrExtraction, err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: word/document.xml not found in archive", ErrExtraction)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: opening document.xml: %v", ErrExtraction, err)
	}
	defer rc.Close()

	var (
		out            strings.Builder
		para           strings.Builder
		inParagraph    bool
		inRun          bool
		runBold        bool
		runItalic      bool
		paragraphStyle string
		isListItem     bool
		listOpen       bool
	)

	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				para.Reset()
				paragraphStyle = ""
				isListItem = false
			case "pStyle":
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							paragraphStyle = attr.Value
						}
					}
				}
			case "numPr":
				if inParagraph {
					isListItem = true
				}
			case "r":
				inRun = true
				runBold = false
				runItalic = false
			case "b":
				if inRun {
					runBold = docxOnOff(t.Attr)
				}
			case "i":
				if inRun {
					runItalic = docxOnOff(t.Attr)
				}
			case "br":
				if inParagraph {
					para.WriteString("<br/>")
				}
			}

		case xml.CharData:
			if inParagraph {
				text := html.EscapeString(string(t))
				switch {
				case runBold && runItalic:
					para.WriteString("<strong><em>" + text + "</em></strong>")
				case runBold:
					para.WriteString("<strong>" + text + "</strong>")
				case runItalic:
					para.WriteString("<em>" + text + "</em>")
				default:
					para.WriteString(text)
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
				runBold = false
				runItalic = false
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				content := strings.TrimSpace(para.String())
				if content == "" {
					continue
				}

				if isListItem {
					if !listOpen {
						out.WriteString("<ul>")
						listOpen = true
					}
					out.WriteString("<li>" + content + "</li>")
					continue
				}
				if listOpen {
					out.WriteString("</ul>")
					listOpen = false
				}

				if level := docxHeadingLevel(paragraphStyle); level > 0 {
					fmt.Fprintf(&out, "<h%d>%s</h%d>", level, content, level)
				} else {
					out.WriteString("<p>" + content + "</p>")
				}
			}
		}
	}
	if listOpen {
		out.WriteString("</ul>")
	}

	return out.String(), nil
}

// docxOnOff reads a run property's boolean val attribute. A bare property
// element means on; an explicit "0"/"false"/"off"/"none" turns it off.
func docxOnOff(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Local != "val" {
			continue
		}
		switch strings.ToLower(a.Value) {
		case "0", "false", "off", "none":
			return false
		}
	}
	return true
}

// docxHeadingLevel maps a paragraph style name to a heading level,
// e.g. "Heading1" -> 1. Returns 0 for body paragraphs.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)

	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}

	if strings.HasPrefix(lower, "heading") {
		rest := lower[len("heading"):]
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
			return int(rest[0] - '0')
		}
	}
	return 0
}
