// Package http serves the server-rendered ledger pages and HTMX partials.
//
// This file turns request bodies into ledger input. Bodies may be
// form-encoded (plain forms, default htmx) or JSON (htmx json-enc).

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finanzas/internal/core"
)

// maxBodyBytes bounds what a ledger form may send.
const maxBodyBytes = 16 << 10

var errInvalidID = errors.New("invalid transaction id")

// RequestBodyParser reads the body once and serves values from JSON or
// form data, whichever it holds.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads up to maxBodyBytes of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	return p
}

// Parse detects JSON by its first byte and falls back to form decoding.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
		}
		return p.err
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns the sanitized value for key.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// ParseTransactionInput builds ledger input from the date, description,
// amount and type fields. Errors are *core.ValidationError.
func ParseTransactionInput(p *RequestBodyParser) (core.TransactionInput, error) {
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.TransactionInput{}, err
	}
	typ, err := core.ParseType(p.Get("type"))
	if err != nil {
		return core.TransactionInput{}, &core.ValidationError{Field: "type", Err: err}
	}
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.TransactionInput{}, err
	}
	return core.TransactionInput{
		Date:        date,
		Description: p.Get("description"),
		Magnitude:   amount,
		Type:        typ,
	}, nil
}

// ParseID parses a positive transaction id from a path segment.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
