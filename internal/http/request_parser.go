// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of create requests. API clients send JSON while
// the HTML form sends url-encoded data; both land in the same lookup API.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"solde/internal/core"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse decodes the body as JSON when the content type or the first
// character says so, and as form data otherwise. JSON numbers are kept as
// json.Number so amounts never pass through a float64.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.ExpectsJSON() || trimmed[0] == '{' || trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Lookup returns the sanitized value for key and whether the key was present.
func (p *RequestBodyParser) Lookup(key string) (string, bool) {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		if !ok {
			return "", false
		}
		return sanitizeInput(stringValue(val)), true
	}
	if p.formData != nil && p.formData.Has(key) {
		return sanitizeInput(p.formData.Get(key)), true
	}
	return "", false
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

// ExpectsJSON reports whether the client declared a JSON body.
func (p *RequestBodyParser) ExpectsJSON() bool {
	return strings.HasPrefix(p.contentType, "application/json")
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// newTransactionFrom builds the create payload from a parsed body. Every
// failing field is reported; client supplied id and created_at are ignored.
func newTransactionFrom(p *RequestBodyParser) (core.NewTransaction, error) {
	fe := core.FieldErrors{}
	var n core.NewTransaction

	if text, ok := p.Lookup("text"); ok {
		n.Text = text
	} else {
		fe.Add(core.ErrMissingText)
	}

	if amount, ok := p.Lookup("amount"); !ok {
		fe.Add(core.ErrMissingAmount)
	} else if d, err := core.ParseAmount(amount); err != nil {
		fe.Add(err)
	} else {
		n.Amount = d
	}

	for field, msgs := range n.Problems() {
		if _, seen := fe[field]; !seen {
			fe[field] = msgs
		}
	}
	return n, fe.OrNil()
}

// isBodyTooLarge reports whether err came from http.MaxBytesReader.
func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
