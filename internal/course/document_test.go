package course

import (
	"testing"
	"time"
)

func TestNewDocumentDefaults(t *testing.T) {
	now := time.Now().UTC()
	doc := New("go-in-30", 30, now)

	if doc.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", doc.Version, SchemaVersion)
	}
	if len(doc.Units) != 30 {
		t.Fatalf("units = %d, want 30", len(doc.Units))
	}
	if doc.Units[1].Status != StatusAvailable {
		t.Errorf("unit 1 status = %q, want available", doc.Units[1].Status)
	}
	for i := 2; i <= 30; i++ {
		if doc.Units[i].Status != StatusLocked {
			t.Errorf("unit %d status = %q, want locked", i, doc.Units[i].Status)
		}
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("default document failed validation: %v", err)
	}
}

func TestStats(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		completed int
		percent   int
	}{
		{"empty course", 0, 0, 0},
		{"none completed", 30, 0, 0},
		{"one third", 3, 1, 33},
		{"two thirds", 3, 2, 67},
		{"all", 10, 10, 100},
		{"rounds half up", 8, 1, 13}, // 12.5 -> 13
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New("c", tt.total, time.Now())
			for i := 1; i <= tt.completed; i++ {
				doc.Units[i].Status = StatusCompleted
			}
			got := doc.Stats()
			if got.Completed != tt.completed || got.Total != tt.total || got.Percent != tt.percent {
				t.Errorf("Stats() = %+v, want completed=%d total=%d percent=%d",
					got, tt.completed, tt.total, tt.percent)
			}
		})
	}
}

func TestNextUnit(t *testing.T) {
	doc := New("c", 5, time.Now())
	if got := doc.NextUnit(); got != 1 {
		t.Errorf("NextUnit on fresh doc = %d, want 1", got)
	}

	doc.Units[1].Status = StatusCompleted
	doc.Units[2].Status = StatusCompleted
	if got := doc.NextUnit(); got != 3 {
		t.Errorf("NextUnit = %d, want 3", got)
	}

	for i := 1; i <= 5; i++ {
		doc.Units[i].Status = StatusCompleted
	}
	if got := doc.NextUnit(); got != 5 {
		t.Errorf("NextUnit on finished course = %d, want 5", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := New("c", 3, time.Now())
	score := 90
	completedAt := time.Now().UTC()
	doc.Units[1].Status = StatusCompleted
	doc.Units[1].QuizScore = &score
	doc.Units[1].CompletedAt = &completedAt

	cp := doc.Clone()
	*cp.Units[1].QuizScore = 10
	cp.Units[2].Status = StatusCompleted

	if *doc.Units[1].QuizScore != 90 {
		t.Error("mutating clone's quiz score changed the original")
	}
	if doc.Units[2].Status != StatusLocked {
		t.Error("mutating clone's unit status changed the original")
	}
}

func TestValidate(t *testing.T) {
	badScore := 150

	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"missing course id", func(d *Document) { d.CourseID = "" }},
		{"gap in units", func(d *Document) { delete(d.Units, 2) }},
		{"unknown status", func(d *Document) { d.Units[1].Status = "done" }},
		{"score out of range", func(d *Document) { d.Units[1].QuizScore = &badScore }},
		{"negative attempts", func(d *Document) { d.Units[1].QuizAttempts = -1 }},
		{"future schema version", func(d *Document) { d.Version = SchemaVersion + 1 }},
		{"no units", func(d *Document) { d.Units = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New("c", 3, time.Now())
			tt.mutate(doc)
			if err := doc.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
