package mail

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"regexp"
	"strings"
	"time"
)

var (
	blockTags  = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6]|/tr)\s*/?>`)
	anyTag     = regexp.MustCompile(`(?s)<[^>]*>`)
	styleBlock = regexp.MustCompile(`(?is)<(style|script)[^>]*>.*?</(style|script)>`)
	blankLines = regexp.MustCompile(`\n\s*\n+`)
)

func buildMessage(s Settings, to []string, subject, htmlBody, plain string, now time.Time) ([]byte, error) {
	if plain == "" {
		plain = plainFromHTML(htmlBody)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := writePart(w, "text/plain", plain); err != nil {
		return nil, err
	}
	if err := writePart(w, "text/html", htmlBody); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	from := (&mail.Address{Name: s.FromName, Address: s.User}).String()

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", now.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func writePart(w *multipart.Writer, contentType, content string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType+"; charset=utf-8")
	header.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	return qp.Close()
}

// plainFromHTML is the text fallback for clients that skip the HTML part.
func plainFromHTML(s string) string {
	s = styleBlock.ReplaceAllString(s, "")
	s = blockTags.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
