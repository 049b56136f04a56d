// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies are decoded once into a field map so handlers can tell an absent
// field from a zero value, which partial updates depend on.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"utang/internal/core"
)

const maxBodyBytes = 1 << 20

// errInvalidField is wrapped by fieldError for values of the wrong shape.
var errInvalidField = errors.New("invalid value")

// fieldError names the request field a validation error came from.
type fieldError struct {
	Field string
	Err   error
}

func (e *fieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *fieldError) Unwrap() error { return e.Err }

// RequestBodyParser handles JSON and form-encoded request bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	}
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
	return p
}

// Parse decodes the body. JSON must be an object; anything else that is not
// JSON is read as a form.
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

	if trimmed[0] == '{' || trimmed[0] == '[' || strings.Contains(p.contentType, "json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		return nil
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

// Has reports whether key was sent, even with an empty or null value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Raw returns the value of key as sent, without trimming or sanitizing.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// Get returns a trimmed, sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.Raw(key))
}

// GetBool accepts JSON booleans and the strings true/false/1/0/on.
func (p *RequestBodyParser) GetBool(key string) (bool, error) {
	if p.jsonData != nil {
		if b, ok := p.jsonData[key].(bool); ok {
			return b, nil
		}
	}
	switch strings.ToLower(p.Get(key)) {
	case "true", "1", "on", "yes":
		return true, nil
	case "false", "0", "off", "no", "":
		return false, nil
	}
	return false, &fieldError{Field: key, Err: errInvalidField}
}

// GetInt reads a whole number sent as a JSON number or a string.
func (p *RequestBodyParser) GetInt(key string) (int, error) {
	n, err := strconv.Atoi(p.Get(key))
	if err != nil {
		return 0, &fieldError{Field: key, Err: errInvalidField}
	}
	return n, nil
}

// GetMoney normalizes a peso amount such as 1234.5, "1,234.50" or "₱ 12,5".
func (p *RequestBodyParser) GetMoney(key string) (core.Money, error) {
	m, err := core.ParseAmount(p.Get(key))
	if err != nil {
		return core.Money{}, &fieldError{Field: key, Err: err}
	}
	return m, nil
}

// GetRate reads an annual percentage such as 18.5 or "18.50%".
func (p *RequestBodyParser) GetRate(key string) (core.Rate, error) {
	r, err := core.ParseRate(p.Get(key))
	if err != nil {
		return core.Rate{}, &fieldError{Field: key, Err: err}
	}
	return r, nil
}

// GetDueDay reads a day of the month.
func (p *RequestBodyParser) GetDueDay(key string) (int, error) {
	d, err := core.ParseDueDay(p.Get(key))
	if err != nil {
		return 0, &fieldError{Field: key, Err: err}
	}
	return d, nil
}

// GetDate reads YYYY-MM-DD or an RFC 3339 timestamp.
func (p *RequestBodyParser) GetDate(key string) (core.Date, error) {
	d, err := core.ParseDate(p.Get(key))
	if err != nil {
		return core.Date{}, &fieldError{Field: key, Err: err}
	}
	return d, nil
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody reads and decodes the request body, leaving the error for the caller.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p, nil
}

// queryInt reads an optional integer query parameter; def is returned when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &fieldError{Field: key, Err: errInvalidField}
	}
	return n, nil
}
