// Package jsonapi encodes and decodes JSON:API documents.
package jsonapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Resource is a single resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id,omitempty"`
	Attributes    map[string]interface{}  `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         map[string]string       `json:"links,omitempty"`
}

// Relationship exposes a related resource by link only.
type Relationship struct {
	Links map[string]string `json:"links"`
}

// Document is a top-level response document.
type Document struct {
	Data    interface{}            `json:"data"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
	Links   map[string]string      `json:"links,omitempty"`
	JSONAPI map[string]string      `json:"jsonapi"`
}

// MetaDocument is a response carrying only meta, used for deletions.
type MetaDocument struct {
	Meta    map[string]interface{} `json:"meta"`
	JSONAPI map[string]string      `json:"jsonapi"`
}

// ErrorObject describes one failure.
type ErrorObject struct {
	Status string       `json:"status"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points at the offending request member.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

var version = map[string]string{"version": "1.0"}

// Dasherize turns snake_case attribute names into dash-case.
func Dasherize(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// Attributes builds an attribute map from snake_case names.
func Attributes(pairs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(pairs))
	for k, v := range pairs {
		out[Dasherize(k)] = v
	}
	return out
}

// One wraps a single resource.
func One(res Resource) Document {
	return Document{Data: res, JSONAPI: version}
}

// Many wraps a collection. A nil slice is sent as [].
func Many(items []Resource, meta map[string]interface{}, links map[string]string) Document {
	if items == nil {
		items = []Resource{}
	}
	return Document{Data: items, Meta: meta, Links: links, JSONAPI: version}
}

// Deleted is the document returned after a successful deletion.
func Deleted() MetaDocument {
	return MetaDocument{
		Meta:    map[string]interface{}{"message": "Object successfully deleted"},
		JSONAPI: version,
	}
}

// Write sends a document with the JSON:API media type.
func Write(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteErrors sends an error document; the HTTP status is taken from the first error.
func WriteErrors(w http.ResponseWriter, status int, errs ...ErrorObject) {
	for i := range errs {
		if errs[i].Status == "" {
			errs[i].Status = fmt.Sprint(status)
		}
		if errs[i].Title == "" {
			errs[i].Title = http.StatusText(status)
		}
	}
	Write(w, status, map[string]interface{}{
		"errors":  errs,
		"jsonapi": version,
	})
}

// Request decoding errors.
var (
	ErrMalformed    = errors.New("malformed JSON:API document")
	ErrTypeMismatch = errors.New("resource type mismatch")
	ErrIDMismatch   = errors.New("resource id mismatch")
)

type requestDocument struct {
	Data *requestResource `json:"data"`
}

type requestResource struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

// DecodeResource reads a single-resource request body, checks its type and,
// when wantID is not empty, its id, then decodes the attributes into dst.
func DecodeResource(body io.Reader, wantType, wantID string, dst interface{}) error {
	var doc requestDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Data == nil {
		return fmt.Errorf("%w: missing data", ErrMalformed)
	}
	if doc.Data.Type != wantType {
		return fmt.Errorf("%w: expected %q, got %q", ErrTypeMismatch, wantType, doc.Data.Type)
	}
	if wantID != "" && doc.Data.ID != wantID {
		return fmt.Errorf("%w: expected %q, got %q", ErrIDMismatch, wantID, doc.Data.ID)
	}
	attrs := bytes.TrimSpace(doc.Data.Attributes)
	if len(attrs) == 0 || bytes.Equal(attrs, []byte("null")) {
		attrs = []byte("{}")
	}
	if err := json.Unmarshal(attrs, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
