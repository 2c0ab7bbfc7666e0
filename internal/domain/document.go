package domain

import (
	"encoding/json"
	"fmt"
)

// Field names shared by every document.
const (
	FieldID        = "id"
	FieldActive    = "active"
	FieldCreatedAt = "createdAt"
	FieldCreatedBy = "createdBy"
	FieldUpdatedBy = "updatedBy"
)

// Document is the field-value form of an entity as stored in a collection.
type Document map[string]any

// ID returns the document identifier or "" when unset.
func (d Document) ID() string {
	return d.String(FieldID)
}

// String returns the field formatted as a string, "" when missing or null.
func (d Document) String(field string) string {
	v, ok := d[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Active reports the soft-delete flag; a missing flag counts as active.
func (d Document) Active() bool {
	v, ok := d[FieldActive]
	if !ok || v == nil {
		return true
	}
	b, ok := v.(bool)
	return !ok || b
}

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Without returns a copy with the given fields removed.
func (d Document) Without(fields ...string) Document {
	out := d.Clone()
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

// ToDocument converts a struct (or map) into its JSON field-value form.
func ToDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Normalize round-trips a document through JSON so every backend sees the same value types.
func Normalize(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}
	return ToDocument(map[string]any(doc))
}

// FromDocument decodes a document into a typed entity.
func FromDocument[T any](doc Document) (*T, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
