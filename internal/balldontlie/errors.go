package balldontlie

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// RemoteError is returned for any failed gateway read: a non-success
// status, a malformed body, or a transport failure (Status 0).
type RemoteError struct {
	Status   int
	Resource string
	Detail   string
	Err      error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	if e.Status > 0 {
		fmt.Fprintf(&b, "%s: status %d", e.Resource, e.Status)
	} else {
		fmt.Fprintf(&b, "%s: request failed", e.Resource)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NotFound reports a 404 response.
func (e *RemoteError) NotFound() bool { return e.Status == 404 }

// errorDetail extracts a short human-readable reason from an error body.
// Proxies and CDNs in front of the API answer with HTML pages, so those are
// reduced to their title or heading.
func errorDetail(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if strings.Contains(contentType, "html") || trimmed[0] == '<' {
		return htmlDetail(trimmed)
	}

	if trimmed[0] == '{' {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			switch {
			case payload.Message != "":
				return payload.Message
			case payload.Error != "":
				return payload.Error
			}
		}
	}
	return truncate(string(trimmed), 200)
}

func htmlDetail(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return truncate(string(body), 200)
	}
	for _, sel := range []string{"title", "h1", "h2"} {
		if text := collapse(doc.Find(sel).First().Text()); text != "" {
			return truncate(text, 200)
		}
	}
	return truncate(collapse(doc.Find("body").Text()), 200)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
