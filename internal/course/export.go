package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedDocument is returned when an imported document cannot be
// decoded or fails validation. The caller's local state is left untouched.
var ErrMalformedDocument = errors.New("malformed progress document")

// Encode writes the document as indented JSON, the export file format.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode progress document: %w", err)
	}
	return nil
}

// Decode reads an exported document. Unlike the store's load path, imports
// are strict: unknown fields and invariant violations are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &d, nil
}
