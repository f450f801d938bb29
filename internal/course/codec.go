package course

import "encoding/json"

// legacyDocument carries the pre-rename "days" field alongside the current
// schema so old documents decode transparently. The rename is forward-only:
// encoders always write "units".
type legacyDocument struct {
	Document
	Days map[int]*UnitRecord `json:"days,omitempty"`
}

// DecodeLenient decodes a document the way the load path does: unknown
// fields are ignored, the legacy "days" field is adopted as "units", and a
// missing version is assumed current. Invariant violations still fail.
func DecodeLenient(data []byte) (*Document, error) {
	var stored legacyDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	doc := stored.Document
	if len(doc.Units) == 0 && len(stored.Days) > 0 {
		doc.Units = stored.Days
	}
	if doc.Version == 0 {
		doc.Version = SchemaVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
