// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses.
// It provides a type-safe, fluent API for building HX-Trigger headers and
// consistent response formatting.

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

type trigger struct {
	name string
	data any
}

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
// Triggers fire on the client in the order they were added.
type HTMXResponseBuilder struct {
	triggers   []trigger
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
// Adding a name twice replaces its data in place.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	for i := range b.triggers {
		if b.triggers[i].name == name {
			b.triggers[i].data = data
			return b
		}
	}
	b.triggers = append(b.triggers, trigger{name: name, data: data})
	return b
}

// TriggerTransactionCreated makes listeners reload the ledger.
func (b *HTMXResponseBuilder) TriggerTransactionCreated(id string) *HTMXResponseBuilder {
	return b.Trigger("transaction:created", map[string]string{"id": id})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification adds a show-notification trigger with the specified parameters.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// triggerHeader encodes the triggers as one JSON object, keeping insertion
// order (encoding a map would sort the keys).
func (b *HTMXResponseBuilder) triggerHeader() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range b.triggers {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(t.name)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(t.data)
		if err != nil {
			return "", err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return asciiJSON(buf.String()), nil
}

// asciiJSON escapes non-ASCII runes as \uXXXX. Browsers read header values as
// Latin-1, so raw UTF-8 would reach the page garbled.
func asciiJSON(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, "\\u%04x\\u%04x", r1, r2)
		default:
			fmt.Fprintf(&b, "\\u%04x", r)
		}
	}
	return b.String()
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if header, err := b.triggerHeader(); err == nil {
			w.Header().Set("HX-Trigger", header)
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + escapedMsg + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
