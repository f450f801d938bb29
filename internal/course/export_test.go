package course

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := New("go-in-30", 5, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	score := 85
	completedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	doc.Units[1].Status = StatusCompleted
	doc.Units[1].QuizScore = &score
	doc.Units[1].QuizAttempts = 2
	doc.Units[1].CompletedAt = &completedAt
	doc.Units[2].Status = StatusAvailable
	doc.Settings.DarkMode = true

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", "{{{"},
		{"unknown field", `{"version":1,"courseId":"c","units":{"1":{"status":"available"}},"extra":true}`},
		{"unknown status", `{"version":1,"courseId":"c","units":{"1":{"status":"finished"}}}`},
		{"missing course id", `{"version":1,"units":{"1":{"status":"available"}}}`},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("err = %v, want ErrMalformedDocument", err)
			}
		})
	}
}

func TestDecodeLenientAdoptsLegacyDays(t *testing.T) {
	raw := []byte(`{
		"courseId": "go-in-30",
		"lastUpdated": "2026-01-05T00:00:00Z",
		"days": {
			"1": {"status": "completed", "quizScore": 90, "quizAttempts": 1},
			"2": {"status": "available"}
		}
	}`)

	doc, err := DecodeLenient(raw)
	if err != nil {
		t.Fatalf("DecodeLenient: %v", err)
	}
	if doc.Version != SchemaVersion {
		t.Errorf("version = %d, want defaulted to %d", doc.Version, SchemaVersion)
	}
	if len(doc.Units) != 2 {
		t.Fatalf("units = %d, want 2 adopted from legacy days", len(doc.Units))
	}
	if doc.Units[1].Status != StatusCompleted || *doc.Units[1].QuizScore != 90 {
		t.Errorf("unit 1 = %+v, want completed with score 90", doc.Units[1])
	}
}

func TestDecodeLenientIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{
		"courseId": "c",
		"units": {"1": {"status": "available", "streak": 4}},
		"theme": "solarized"
	}`)

	doc, err := DecodeLenient(raw)
	if err != nil {
		t.Fatalf("DecodeLenient: %v", err)
	}
	if doc.Units[1].Status != StatusAvailable {
		t.Errorf("unit 1 status = %q, want available", doc.Units[1].Status)
	}
}
