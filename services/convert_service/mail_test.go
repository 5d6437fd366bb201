package convert_service

import (
	"strings"
	"testing"
)

func mustParseMail(t *testing.T, raw string) *MailMessage {
	t.Helper()
	msg, err := ParseMail([]byte(raw))
	if err != nil {
		t.Fatalf("ParseMail returned error: %v", err)
	}
	return msg
}

func TestParseMailHeaders(t *testing.T) {
	msg := mustParseMail(t, testEML)

	if msg.Subject != "Quarterly numbers" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.From != "Alice <alice@example.com>" {
		t.Errorf("From = %q", msg.From)
	}
	if msg.To != "Bob <bob@example.com>" {
		t.Errorf("To = %q", msg.To)
	}
	// Dates normalize to UTC in RFC 1123 form.
	if msg.Date != "Mon, 02 Jan 2006 22:04:05 GMT" {
		t.Errorf("Date = %q", msg.Date)
	}
}

func TestParseMailMissingHeaders(t *testing.T) {
	raw := "Content-Type: text/plain\r\n\r\nhello\r\n"
	msg := mustParseMail(t, raw)

	if msg.Subject != "No Subject" {
		t.Errorf("Expected subject placeholder, got %q", msg.Subject)
	}
	if msg.Date != "No Date" {
		t.Errorf("Expected date placeholder, got %q", msg.Date)
	}
}

func TestParseMailMultipleRecipients(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"To: Bob <bob@example.com>, carol@example.com\r\n" +
		"Subject: x\r\n\r\nbody\r\n"
	msg := mustParseMail(t, raw)

	if msg.To != "Bob <bob@example.com>, carol@example.com" {
		t.Errorf("To = %q", msg.To)
	}
}

func TestRenderMailTextHeaderBlock(t *testing.T) {
	msg := mustParseMail(t, testEML)

	text, err := RenderMailText(msg)
	if err != nil {
		t.Fatalf("RenderMailText returned error: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 6 {
		t.Fatalf("Expected header block plus body, got %d lines: %q", len(lines), text)
	}
	expectedPrefixes := []string{"Subject: ", "From: ", "To: ", "Date: "}
	for i, prefix := range expectedPrefixes {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("Line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if lines[4] != "" {
		t.Errorf("Expected blank line between headers and body, got %q", lines[4])
	}
	if !strings.Contains(text, "Please find the figures attached.") {
		t.Error("Expected body text in rendition")
	}
}

func TestRenderMailTextEmptyBody(t *testing.T) {
	msg := &MailMessage{Subject: "No Subject", From: "a@example.com", To: "b@example.com", Date: "No Date"}

	text, err := RenderMailText(msg)
	if err != nil {
		t.Fatalf("RenderMailText returned error: %v", err)
	}
	if !strings.Contains(text, "No Text Content") {
		t.Errorf("Expected body placeholder, got %q", text)
	}
}

func TestRenderMailTextHTMLOnlyBody(t *testing.T) {
	msg := &MailMessage{
		Subject:  "s",
		From:     "a@example.com",
		To:       "b@example.com",
		Date:     "No Date",
		HTMLBody: "<p>First paragraph.</p><p>Second <b>paragraph</b>.</p>",
	}

	text, err := RenderMailText(msg)
	if err != nil {
		t.Fatalf("RenderMailText returned error: %v", err)
	}
	if strings.Contains(text, "<p>") || strings.Contains(text, "<b>") {
		t.Errorf("Expected markup stripped, got %q", text)
	}
	if !strings.Contains(text, "First paragraph.") {
		t.Errorf("Expected body content preserved, got %q", text)
	}
}

func TestRenderMailHTMLSanitizesBody(t *testing.T) {
	msg := &MailMessage{
		Subject: "s",
		From:    "a@example.com",
		To:      "b@example.com",
		Date:    "No Date",
		HTMLBody: `<p style="color: #ff0000; position: absolute">ok</p>` +
			`<script>alert(1)</script>` +
			`<img src="x.png" onerror="alert(2)" alt="pic">`,
	}

	out, err := RenderMailHTML(msg)
	if err != nil {
		t.Fatalf("RenderMailHTML returned error: %v", err)
	}

	if strings.Contains(out, "<script") || strings.Contains(out, "alert(1)") {
		t.Errorf("Script content survived sanitization: %q", out)
	}
	if strings.Contains(out, "onerror") {
		t.Errorf("Event handler attribute survived sanitization: %q", out)
	}
	if !strings.Contains(out, "color: #ff0000") {
		t.Errorf("Expected allowlisted color style kept: %q", out)
	}
	if strings.Contains(out, "position") {
		t.Errorf("Non-allowlisted style property survived: %q", out)
	}
	if !strings.Contains(out, `alt="pic"`) {
		t.Errorf("Expected img alt attribute kept: %q", out)
	}
}

func TestRenderMailHTMLHeaderBlock(t *testing.T) {
	msg := &MailMessage{
		Subject:  "Budget & <plans>",
		From:     "a@example.com",
		To:       "b@example.com",
		Date:     "No Date",
		TextBody: "line one\n\nline two",
	}

	out, err := RenderMailHTML(msg)
	if err != nil {
		t.Fatalf("RenderMailHTML returned error: %v", err)
	}

	if !strings.Contains(out, "<h2>Budget &amp; &lt;plans&gt;</h2>") {
		t.Errorf("Expected escaped subject heading, got %q", out)
	}
	if !strings.Contains(out, "<h3>From: a@example.com</h3>") {
		t.Errorf("Expected From line, got %q", out)
	}
	if !strings.Contains(out, "<p>line one</p>") {
		t.Errorf("Expected text body promoted to paragraphs, got %q", out)
	}
}

func TestRenderMailHTMLRTFBody(t *testing.T) {
	msg := &MailMessage{
		Subject:  "s",
		From:     "a@example.com",
		To:       "b@example.com",
		Date:     "No Date",
		TextBody: `{\rtf1\ansi some rtf noise}`,
		HTMLBody: "",
	}

	out, err := RenderMailHTML(msg)
	if err != nil {
		t.Fatalf("RenderMailHTML returned error: %v", err)
	}
	// The raw RTF text part is flattened rather than rendered as markup.
	if strings.Contains(out, `{\rtf`) && !strings.Contains(out, "<p>") {
		t.Errorf("Expected RTF body flattened into paragraphs, got %q", out)
	}
}

func TestFormatMailDate(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"Mon, 02 Jan 2006 15:04:05 -0700", "Mon, 02 Jan 2006 22:04:05 GMT"},
		{"not a date", "No Date"},
		{"", "No Date"},
	}
	for _, tt := range tests {
		if got := formatMailDate(tt.raw); got != tt.expected {
			t.Errorf("formatMailDate(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}

func TestTextToHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"single paragraph", "hello", "<p>hello</p>"},
		{"paragraph split", "a\n\nb", "<p>a</p><p>b</p>"},
		{"soft break", "a\nb", "<p>a<br/>b</p>"},
		{"escaping", "1 < 2", "<p>1 &lt; 2</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textToHTML(tt.in); got != tt.expected {
				t.Errorf("textToHTML(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}
