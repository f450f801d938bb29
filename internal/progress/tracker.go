package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anupam/lessontrack/internal/course"
	"github.com/anupam/lessontrack/internal/store"
)

// timeNow is a seam for tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// Tracker enforces the unit unlock/start/complete state machine for one
// course. All mutations read-modify-write the whole document through the
// store, which is the serialization point; the mutex keeps one mutation in
// flight at a time.
type Tracker struct {
	store      *store.Store
	log        *zap.Logger
	courseID   string
	totalUnits int

	mu           sync.Mutex
	completedFns []func(unit, score int)
}

// New creates a Tracker for the given course.
func New(st *store.Store, courseID string, totalUnits int, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{store: st, log: log, courseID: courseID, totalUnits: totalUnits}
}

// OnUnitCompleted registers a callback fired after a unit transitions to
// completed, carrying the unit index and quiz score.
func (t *Tracker) OnUnitCompleted(fn func(unit, score int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completedFns = append(t.completedFns, fn)
}

// Document returns the current progress document.
func (t *Tracker) Document(ctx context.Context) *course.Document {
	return t.store.Load(ctx, t.courseID, t.totalUnits)
}

// Stats returns the aggregate completion summary.
func (t *Tracker) Stats(ctx context.Context) course.Stats {
	return t.Document(ctx).Stats()
}

// NextUnit returns the first unit that is not yet completed.
func (t *Tracker) NextUnit(ctx context.Context) int {
	return t.Document(ctx).NextUnit()
}

// Start moves unit n from available to in-progress. Any other current state
// makes this a no-op, not an error.
func (t *Tracker) Start(ctx context.Context, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc := t.store.Load(ctx, t.courseID, t.totalUnits)
	u, ok := doc.Units[n]
	if !ok || u.Status != course.StatusAvailable {
		return
	}
	u.Status = course.StatusInProgress
	t.save(ctx, doc)
}

// Complete marks unit n completed with the given quiz score, records the
// attempt, and unlocks unit n+1 if it is locked. Completing an already
// completed unit updates score and attempts but never rewrites CompletedAt.
func (t *Tracker) Complete(ctx context.Context, n, score int) {
	t.mu.Lock()
	changed := t.updateStatus(ctx, n, course.StatusCompleted, &score)
	fns := make([]func(int, int), len(t.completedFns))
	copy(fns, t.completedFns)
	t.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range fns {
		fn(n, score)
	}
}

// UpdateStatus is the general-purpose setter behind Start and Complete.
// Unknown unit indices are ignored: the caller never sees an error.
func (t *Tracker) UpdateStatus(ctx context.Context, n int, status course.Status, score *int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updateStatus(ctx, n, status, score)
}

// updateStatus applies the transition and persists. Caller holds t.mu.
func (t *Tracker) updateStatus(ctx context.Context, n int, status course.Status, score *int) bool {
	doc := t.store.Load(ctx, t.courseID, t.totalUnits)
	u, ok := doc.Units[n]
	if !ok {
		t.log.Debug("ignoring status update for unknown unit",
			zap.Int("unit", n), zap.String("status", string(status)))
		return false
	}

	u.Status = status
	if score != nil {
		s := *score
		u.QuizScore = &s
		u.QuizAttempts++
	}

	if status == course.StatusCompleted {
		if u.CompletedAt == nil {
			completedAt := timeNow()
			u.CompletedAt = &completedAt
		}
		// Completing unit n is the only operation that unlocks content.
		if next, ok := doc.Units[n+1]; ok && next.Status == course.StatusLocked {
			next.Status = course.StatusAvailable
		}
	}

	t.save(ctx, doc)
	return true
}

// Reset replaces the document with a fresh default one.
func (t *Tracker) Reset(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.save(ctx, course.New(t.courseID, t.totalUnits, timeNow()))
}

// Export writes the current document as indented JSON.
func (t *Tracker) Export(ctx context.Context, w io.Writer) error {
	return t.Document(ctx).Encode(w)
}

// Import replaces local progress with a previously exported document.
// A malformed document is rejected and local state is left untouched.
func (t *Tracker) Import(ctx context.Context, r io.Reader) error {
	doc, err := course.Decode(r)
	if err != nil {
		return err
	}
	if doc.CourseID != t.courseID {
		return fmt.Errorf("%w: document is for course %q, not %q",
			course.ErrMalformedDocument, doc.CourseID, t.courseID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.save(ctx, doc)
	return nil
}

// save persists and logs failures instead of raising them: local progress
// tracking keeps functioning on a broken disk, it just stops being durable.
func (t *Tracker) save(ctx context.Context, doc *course.Document) {
	if err := t.store.Save(ctx, doc, store.SaveOptions{}); err != nil {
		t.log.Error("persist progress failed", zap.String("course", t.courseID), zap.Error(err))
	}
}
