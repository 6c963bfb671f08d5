package balldontlie

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Envelope is a decoded response body. Bare-list responses have a nil Meta.
type Envelope struct {
	Data json.RawMessage
	Meta *Meta
}

// Meta carries the pagination state of a list response. Depending on the
// endpoint the API reports either a cursor or page numbers.
type Meta struct {
	NextCursor  Cursor `json:"next_cursor"`
	PerPage     int    `json:"per_page"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	NextPage    *int   `json:"next_page"`
	TotalCount  int    `json:"total_count"`
}

// Cursor is an opaque continuation token. The API sends it as a number,
// a string, or null; the empty Cursor means there are no further pages.
type Cursor string

func (c *Cursor) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cursor(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("cursor: %w", err)
		}
		*c = Cursor(n.String())
	}
	return nil
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}

	switch body[0] {
	case '[':
		if !json.Valid(body) {
			return nil, errors.New("invalid JSON list")
		}
		return &Envelope{Data: json.RawMessage(body)}, nil
	case '{':
		var raw struct {
			Data json.RawMessage `json:"data"`
			Meta *Meta           `json:"meta"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decoding envelope: %w", err)
		}
		if raw.Data == nil {
			return nil, errors.New("envelope has no data field")
		}
		return &Envelope{Data: raw.Data, Meta: raw.Meta}, nil
	}
	return nil, fmt.Errorf("unexpected body (starts with %q)", truncate(string(body), 20))
}

// DecodeList decodes the envelope's data array.
func DecodeList[T any](env *Envelope, resource string) ([]T, error) {
	var out []T
	if isNull(env.Data) {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, &RemoteError{Status: 200, Resource: resource, Err: fmt.Errorf("decoding data: %w", err)}
	}
	return out, nil
}

// DecodeOne decodes a single-object data payload.
func DecodeOne[T any](env *Envelope, resource string) (*T, error) {
	if isNull(env.Data) {
		return nil, &RemoteError{Status: 200, Resource: resource, Err: errors.New("empty data object")}
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, &RemoteError{Status: 200, Resource: resource, Err: fmt.Errorf("decoding data: %w", err)}
	}
	return &out, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// Page returns the page number the caller should request after this one, or
// 0 when the meta does not describe a following page.
func (m *Meta) Page() int {
	if m == nil {
		return 0
	}
	if m.TotalPages > 0 && m.CurrentPage > 0 {
		if m.CurrentPage < m.TotalPages {
			return m.CurrentPage + 1
		}
		return 0
	}
	if m.NextPage != nil && *m.NextPage > 0 {
		return *m.NextPage
	}
	return 0
}

func (c Cursor) String() string { return string(c) }

// Int returns the cursor as an integer when it is numeric.
func (c Cursor) Int() (int, bool) {
	n, err := strconv.Atoi(string(c))
	return n, err == nil
}
