package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anupam/lessontrack/internal/course"
)

// SaveOptions controls the save path. SkipSync marks a save that applies a
// pull result; the sync engine must not push in response, or two devices
// would re-trigger each other indefinitely.
type SaveOptions struct {
	SkipSync bool
}

// Load returns the progress document for courseID. It fails soft: a missing
// or corrupt row yields a fresh default document for the declared unit count.
// Corruption is logged, never surfaced.
func (s *Store) Load(ctx context.Context, courseID string, totalUnits int) *course.Document {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM progress_documents WHERE course_id = ?`, courseID).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Warn("load progress document failed, starting fresh",
				zap.String("course", courseID), zap.Error(err))
		}
		return course.New(courseID, totalUnits, time.Now().UTC())
	}

	doc, err := course.DecodeLenient(data)
	if err != nil {
		s.log.Warn("stored progress document is corrupt, starting fresh",
			zap.String("course", courseID), zap.Error(err))
		return course.New(courseID, totalUnits, time.Now().UTC())
	}

	ensureUnits(doc, totalUnits)
	return doc
}

// Save persists the document atomically under its course id, stamps
// LastUpdated, and notifies change listeners.
func (s *Store) Save(ctx context.Context, doc *course.Document, opts SaveOptions) error {
	doc.LastUpdated = time.Now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal progress document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progress_documents (course_id, updated_at, data)
		 VALUES (?, ?, ?)
		 ON CONFLICT(course_id) DO UPDATE SET updated_at = excluded.updated_at, data = excluded.data`,
		doc.CourseID, doc.LastUpdated.Format(time.RFC3339Nano), data)
	if err != nil {
		return fmt.Errorf("save progress document: %w", err)
	}

	s.notify(doc, opts.SkipSync)
	return nil
}

// OnChange registers a listener invoked after every successful save.
// Listeners receive a private copy of the document.
func (s *Store) OnChange(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(doc *course.Document, skipSync bool) {
	s.mu.Lock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(doc.Clone(), skipSync)
	}
}

// ensureUnits backfills locked records when the declared course length has
// grown since the document was written. Unit 1 is made available if the
// document somehow has no unlocked entry point.
func ensureUnits(doc *course.Document, totalUnits int) {
	if doc.Units == nil {
		doc.Units = make(map[int]*course.UnitRecord, totalUnits)
	}
	for i := 1; i <= totalUnits; i++ {
		if _, ok := doc.Units[i]; !ok {
			doc.Units[i] = &course.UnitRecord{Status: course.StatusLocked}
		}
	}
	if u, ok := doc.Units[1]; ok && u.Status == course.StatusLocked {
		u.Status = course.StatusAvailable
	}
}
