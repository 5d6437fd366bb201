package convert_service

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mitchellh/go-wordwrap"
)

const (
	mailWrapWidth = 130

	noSubjectPlaceholder = "No Subject"
	noDatePlaceholder    = "No Date"
	noTextPlaceholder    = "No Text Content"

	// Outlook messages sometimes carry a raw RTF body in the text part.
	rtfMarker = `{\rtf`
)

// MailMessage is the parsed intermediate for EML and MSG inputs. Address
// lists are already joined to display strings.
type MailMessage struct {
	Subject  string
	From     string
	To       string
	Date     string
	HTMLBody string
	TextBody string
}

// ParseMail parses a raw EML or MSG payload into a MailMessage. Missing
// subject and date collapse to literal placeholders so the rendered header
// block always has all four lines.
func ParseMail(data []byte) (*MailMessage, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing mail: %v", ErrExtraction, err)
	}

	subject := strings.TrimSpace(env.GetHeader("Subject"))
	if subject == "" {
		subject = noSubjectPlaceholder
	}

	return &MailMessage{
		Subject:  subject,
		From:     joinAddresses(env, "From"),
		To:       joinAddresses(env, "To"),
		Date:     formatMailDate(env.GetHeader("Date")),
		HTMLBody: env.HTML,
		TextBody: env.Text,
	}, nil
}

// joinAddresses renders an address header as a single ", "-joined display
// string, falling back to the raw header when it does not parse.
func joinAddresses(env *enmime.Envelope, header string) string {
	addrs, err := env.AddressList(header)
	if err != nil || len(addrs) == 0 {
		return strings.TrimSpace(env.GetHeader(header))
	}

	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Name != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.Name, a.Address))
		} else {
			parts = append(parts, a.Address)
		}
	}
	return strings.Join(parts, ", ")
}

func formatMailDate(raw string) string {
	t, err := mail.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return noDatePlaceholder
	}
	return t.UTC().Format(http.TimeFormat)
}

// RenderMailText produces the plain-text rendition: four header lines in
// fixed order, a blank line, then the body. An HTML-only message is
// stripped of markup and wrapped at 130 columns.
func RenderMailText(msg *MailMessage) (string, error) {
	body := msg.TextBody
	if strings.TrimSpace(body) == "" {
		if msg.HTMLBody != "" {
			stripped := bluemonday.StrictPolicy().Sanitize(msg.HTMLBody)
			wrapped, err := htmlToWrappedText(stripped)
			if err != nil {
				return "", err
			}
			body = wrapped
		} else {
			body = noTextPlaceholder
		}
	}

	var b strings.Builder
	b.WriteString("Subject: " + msg.Subject + "\n")
	b.WriteString("From: " + msg.From + "\n")
	b.WriteString("To: " + msg.To + "\n")
	b.WriteString("Date: " + msg.Date + "\n")
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}

// RenderMailHTML builds the printable HTML document for a message: subject
// heading, From/To/Date lines, and the sanitized body. The body prefers the
// HTML part; a text-only message is escaped into markup, and a text part
// carrying raw RTF is flattened to wrapped text instead.
func RenderMailHTML(msg *MailMessage) (string, error) {
	body := msg.HTMLBody
	if body == "" {
		body = textToHTML(msg.TextBody)
	}

	if strings.Contains(msg.TextBody, rtfMarker) {
		wrapped, err := htmlToWrappedText(msg.TextBody)
		if err != nil {
			return "", err
		}
		body = textToHTML(wrapped)
	}

	body = mailBodyPolicy().Sanitize(body)

	var b strings.Builder
	b.WriteString("<div>")
	b.WriteString("<h2>" + html.EscapeString(msg.Subject) + "</h2>")
	b.WriteString("<h3>From: " + html.EscapeString(msg.From) + "</h3>")
	b.WriteString("<h3>To: " + html.EscapeString(msg.To) + "</h3>")
	b.WriteString("<h3>Date: " + html.EscapeString(msg.Date) + "</h3>")
	b.WriteString("<div>" + body + "</div>")
	b.WriteString("</div>")
	return b.String(), nil
}

var (
	styleColorRe    = regexp.MustCompile(`(?i)^(#(0x)?[0-9a-f]+|rgb\(\d+,\s*\d+,\s*\d+\))$`)
	styleAlignRe    = regexp.MustCompile(`^(left|right|center)$`)
	styleFontSizeRe = regexp.MustCompile(`^\d+(px|em|%)$`)
)

// mailBodyPolicy is the allowlist applied to mail bodies before they reach
// the render engine: a safe default tag set plus img/p/div/br, link and
// image attributes, and a narrow set of inline style values. Script tags
// and event-handler attributes never survive it.
func mailBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img", "p", "div", "br")
	p.AllowAttrs("href", "name", "target").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("style").Globally()
	p.AllowStyles("color").Matching(styleColorRe).Globally()
	p.AllowStyles("text-align").Matching(styleAlignRe).Globally()
	p.AllowStyles("font-size").Matching(styleFontSizeRe).Globally()
	return p
}

// htmlToWrappedText flattens markup to plain text word-wrapped at the mail
// wrap width.
func htmlToWrappedText(s string) (string, error) {
	text, err := html2text.FromString(s, html2text.Options{})
	if err != nil {
		return "", fmt.Errorf("%w: flattening HTML body: %v", ErrExtraction, err)
	}
	return wordwrap.WrapString(text, mailWrapWidth), nil
}

// textToHTML escapes a plain-text body into minimal paragraph markup.
func textToHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	var b strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br/>"))
		b.WriteString("</p>")
	}
	return b.String()
}
