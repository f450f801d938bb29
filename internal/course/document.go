package course

import (
	"fmt"
	"time"
)

// SchemaVersion is the current progress document schema version.
// Documents with older versions are migrated forward on load.
const SchemaVersion = 1

// Status is the lifecycle state of a single unit.
type Status string

const (
	StatusLocked     Status = "locked"
	StatusAvailable  Status = "available"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the four known unit states.
func (s Status) Valid() bool {
	switch s {
	case StatusLocked, StatusAvailable, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// UnitRecord tracks a learner's state for one unit of a course.
type UnitRecord struct {
	Status       Status     `json:"status"`
	QuizScore    *int       `json:"quizScore"`
	QuizAttempts int        `json:"quizAttempts"`
	CompletedAt  *time.Time `json:"completedAt"`

	// TimeSpent is accumulated seconds on the unit, maintained by the host
	// UI. The core carries it but never interprets it.
	TimeSpent int64 `json:"timeSpent"`
}

// Settings is the display-preference bag. Persisted and synced opaquely;
// nothing in the core reads these fields.
type Settings struct {
	DarkMode       bool   `json:"darkMode"`
	FocusMode      bool   `json:"focusMode"`
	FocusModeSepia bool   `json:"focusModeSepia"`
	FontSize       string `json:"fontSize"`
}

// Document is the full per-learner, per-course progress record.
type Document struct {
	Version     int       `json:"version"`
	CourseID    string    `json:"courseId"`
	LastUpdated time.Time `json:"lastUpdated"`

	// LastSyncedAt is set only by the sync engine on a successful push.
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`

	// UserID is the opaque remote identity; empty until one is established.
	UserID      string `json:"userId"`
	SyncEnabled bool   `json:"syncEnabled"`

	// Units maps unit index (1..N, dense) to the unit's record.
	Units map[int]*UnitRecord `json:"units"`

	Settings Settings `json:"settings"`
}

// New builds a default document for a course of totalUnits units:
// unit 1 available, the rest locked.
func New(courseID string, totalUnits int, now time.Time) *Document {
	units := make(map[int]*UnitRecord, totalUnits)
	for i := 1; i <= totalUnits; i++ {
		status := StatusLocked
		if i == 1 {
			status = StatusAvailable
		}
		units[i] = &UnitRecord{Status: status}
	}
	return &Document{
		Version:     SchemaVersion,
		CourseID:    courseID,
		LastUpdated: now,
		Units:       units,
		Settings:    Settings{FontSize: "normal"},
	}
}

// Stats is the derived aggregate completion summary.
type Stats struct {
	Completed int
	Total     int
	Percent   int
}

// CompletedCount returns the number of units in state completed.
func (d *Document) CompletedCount() int {
	n := 0
	for _, u := range d.Units {
		if u.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Stats derives the completion summary. Percent is 0 for an empty course.
func (d *Document) Stats() Stats {
	completed := d.CompletedCount()
	total := len(d.Units)
	percent := 0
	if total > 0 {
		percent = int(float64(completed)/float64(total)*100 + 0.5)
	}
	return Stats{Completed: completed, Total: total, Percent: percent}
}

// NextUnit returns the lowest-indexed unit that is not completed, for
// "resume where you left off". Returns totalUnits if everything is done.
func (d *Document) NextUnit() int {
	next := 1
	for i := 1; i <= len(d.Units); i++ {
		u, ok := d.Units[i]
		if !ok {
			break
		}
		next = i
		if u.Status != StatusCompleted {
			return i
		}
	}
	return next
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	cp := *d
	if d.LastSyncedAt != nil {
		t := *d.LastSyncedAt
		cp.LastSyncedAt = &t
	}
	cp.Units = make(map[int]*UnitRecord, len(d.Units))
	for i, u := range d.Units {
		uc := *u
		if u.QuizScore != nil {
			s := *u.QuizScore
			uc.QuizScore = &s
		}
		if u.CompletedAt != nil {
			t := *u.CompletedAt
			uc.CompletedAt = &t
		}
		cp.Units[i] = &uc
	}
	return &cp
}

// Validate checks the document invariants: a non-empty course id, a dense
// 1..N unit mapping, known statuses, and scores within 0-100.
func (d *Document) Validate() error {
	if d.CourseID == "" {
		return fmt.Errorf("missing courseId")
	}
	if d.Version < 1 || d.Version > SchemaVersion {
		return fmt.Errorf("unsupported schema version %d", d.Version)
	}
	if len(d.Units) == 0 {
		return fmt.Errorf("document has no units")
	}
	for i := 1; i <= len(d.Units); i++ {
		u, ok := d.Units[i]
		if !ok {
			return fmt.Errorf("units are not contiguous: missing unit %d", i)
		}
		if !u.Status.Valid() {
			return fmt.Errorf("unit %d: unknown status %q", i, u.Status)
		}
		if u.QuizScore != nil && (*u.QuizScore < 0 || *u.QuizScore > 100) {
			return fmt.Errorf("unit %d: quiz score %d out of range", i, *u.QuizScore)
		}
		if u.QuizAttempts < 0 {
			return fmt.Errorf("unit %d: negative quiz attempts", i)
		}
	}
	return nil
}
