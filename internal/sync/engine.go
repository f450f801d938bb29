package sync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/anupam/lessontrack/internal/config"
	"github.com/anupam/lessontrack/internal/course"
	"github.com/anupam/lessontrack/internal/store"
)

// Host readiness polling while waiting for required modules: bounded, then
// the engine falls back to disabled for the session.
var (
	hostReadyAttempts = 10
	hostReadyInterval = 500 * time.Millisecond
)

// Engine reconciles the local progress document with the remote store.
// One reconciliation pass (pull or push) holds the engine's single
// outstanding-operation slot at a time; a trigger arriving while the slot is
// held is dropped — both operations are idempotent and the merge policy
// decides on whatever state the next pass observes.
type Engine struct {
	st         *store.Store
	remote     Remote
	log        *zap.Logger
	courseID   string
	totalUnits int

	busy atomic.Bool // the outstanding-operation slot

	mu          sync.Mutex
	status      Status
	enabled     bool
	online      bool
	sess        *Session
	statusFns   []func(Status)
	restoredFns []func(*course.Document)
	lastErr     error
}

// New creates the engine. Sync starts disabled when the privacy preference
// opts out or the remote project is unconfigured (placeholder apiKey); that
// is terminal for the session.
func New(st *store.Store, remote Remote, cfg *config.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		st:         st,
		remote:     remote,
		log:        log,
		courseID:   cfg.Course.ID,
		totalUnits: cfg.Course.Units,
		status:     StatusDisabled,
		online:     true,
	}

	if cfg.Privacy.Sync && cfg.Remote.Configured() && remote != nil {
		e.enabled = true
		e.status = StatusOffline
	}

	// Every local mutation triggers a push, unless the save applies a pull
	// result (skipSync) — that guard is what prevents two devices from
	// re-triggering each other forever.
	st.OnChange(func(_ *course.Document, skipSync bool) {
		if skipSync {
			return
		}
		go e.Push(context.Background())
	})

	return e
}

// Status returns the engine's current state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Enabled reports whether sync can run this session.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// LastError returns the most recent remote failure, if any.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// OnStatusChanged registers a status notification callback.
func (e *Engine) OnStatusChanged(fn func(Status)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statusFns = append(e.statusFns, fn)
}

// OnProgressRestored registers a callback fired when a pull overwrites
// local progress with the remote document, so the UI can tell the learner.
func (e *Engine) OnProgressRestored(fn func(*course.Document)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoredFns = append(e.restoredFns, fn)
}

// AwaitHost polls the host readiness probe a bounded number of times.
// If the host never becomes ready the engine disables itself for the
// session and reports false.
func (e *Engine) AwaitHost(ctx context.Context, ready func() bool) bool {
	if !e.Enabled() {
		return false
	}
	for attempt := 0; attempt < hostReadyAttempts; attempt++ {
		if ready() {
			return true
		}
		select {
		case <-ctx.Done():
			e.disable()
			return false
		case <-time.After(hostReadyInterval):
		}
	}
	e.log.Warn("host never became ready, disabling sync for this session")
	e.disable()
	return false
}

// SetIdentity supplies the learner identity and runs the initial
// reconciliation. The resolved identity is adopted into the local document
// afterwards, saved with skipSync so adoption itself does not push.
func (e *Engine) SetIdentity(ctx context.Context, sess Session) error {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return nil
	}
	e.sess = &sess
	e.mu.Unlock()

	err := e.Pull(ctx)

	doc := e.st.Load(ctx, e.courseID, e.totalUnits)
	if doc.UserID != sess.UID || !doc.SyncEnabled {
		doc.UserID = sess.UID
		doc.SyncEnabled = true
		if saveErr := e.st.Save(ctx, doc, store.SaveOptions{SkipSync: true}); saveErr != nil {
			e.log.Error("adopt identity into document failed", zap.Error(saveErr))
		}
	}
	return err
}

// SetOnline records a connectivity change. Reconnecting from offline
// triggers a push; losing connectivity degrades the status.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	was := e.online
	e.online = online
	e.mu.Unlock()

	if !online {
		e.setStatus(StatusOffline)
		return
	}
	if !was {
		go e.Push(ctx)
	}
}

// Pull runs one reconciliation pass: fetch the remote document, decide a
// winner, and republish the outcome to whichever side is stale. A missing
// remote document bootstraps it from local.
func (e *Engine) Pull(ctx context.Context) error {
	if !e.ready() {
		return nil
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil
	}
	defer e.busy.Store(false)

	e.setStatus(StatusSyncing)
	uid := e.uid()
	local := e.st.Load(ctx, e.courseID, e.totalUnits)

	remoteDoc, err := e.remote.Fetch(ctx, uid, e.courseID)
	if errors.Is(err, ErrNotFound) {
		return e.push(ctx, local)
	}
	if err != nil {
		return e.fail("pull", err)
	}

	switch Decide(local, remoteDoc) {
	case WinnerRemote:
		if err := e.st.Save(ctx, remoteDoc, store.SaveOptions{SkipSync: true}); err != nil {
			return e.fail("apply pull result", err)
		}
		e.notifyRestored(remoteDoc)
		e.setStatus(StatusSynced)
		e.log.Info("remote progress restored",
			zap.String("course", e.courseID),
			zap.Int("completed", remoteDoc.CompletedCount()))
		return nil

	case WinnerLocal:
		return e.push(ctx, local)

	default:
		// Tie on both fields: neither side pushes.
		e.setStatus(StatusSynced)
		return nil
	}
}

// Push writes the local document to the remote store.
func (e *Engine) Push(ctx context.Context) error {
	if !e.ready() {
		return nil
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil
	}
	defer e.busy.Store(false)

	return e.push(ctx, e.st.Load(ctx, e.courseID, e.totalUnits))
}

// ForcePull adopts the remote document unconditionally, bypassing the merge
// policy. Returns ErrNotFound when the remote has nothing for this learner.
func (e *Engine) ForcePull(ctx context.Context) error {
	if !e.ready() {
		return nil
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil
	}
	defer e.busy.Store(false)

	e.setStatus(StatusSyncing)
	remoteDoc, err := e.remote.Fetch(ctx, e.uid(), e.courseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.setStatus(StatusSynced)
			return ErrNotFound
		}
		return e.fail("force pull", err)
	}

	if err := e.st.Save(ctx, remoteDoc, store.SaveOptions{SkipSync: true}); err != nil {
		return e.fail("apply force pull", err)
	}
	e.notifyRestored(remoteDoc)
	e.setStatus(StatusSynced)
	return nil
}

// push writes doc to the remote and records the server's lastSyncedAt in
// the local copy (saved with skipSync). Caller holds the operation slot.
func (e *Engine) push(ctx context.Context, doc *course.Document) error {
	e.setStatus(StatusSyncing)
	uid := e.uid()

	syncedAt, err := e.remote.Push(ctx, uid, e.courseID, doc)
	if err != nil {
		return e.fail("push", err)
	}

	doc.LastSyncedAt = &syncedAt
	doc.UserID = uid
	doc.SyncEnabled = true
	if err := e.st.Save(ctx, doc, store.SaveOptions{SkipSync: true}); err != nil {
		e.log.Error("record lastSyncedAt failed", zap.Error(err))
	}

	e.setStatus(StatusSynced)
	return nil
}

func (e *Engine) ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled && e.online && e.sess != nil
}

func (e *Engine) uid() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return ""
	}
	return e.sess.UID
}

func (e *Engine) disable() {
	e.mu.Lock()
	e.enabled = false
	e.mu.Unlock()
	e.setStatus(StatusDisabled)
}

// fail degrades to offline and remembers the error. An identity conflict is
// reported by name and never retried here.
func (e *Engine) fail(op string, err error) error {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()

	if errors.Is(err, ErrIdentityConflict) {
		e.log.Warn("identity conflict, not retrying", zap.String("op", op), zap.Error(err))
	} else {
		e.log.Warn("remote operation failed, going offline", zap.String("op", op), zap.Error(err))
	}
	e.setStatus(StatusOffline)
	return err
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	if e.status == s {
		e.mu.Unlock()
		return
	}
	e.status = s
	fns := make([]func(Status), len(e.statusFns))
	copy(fns, e.statusFns)
	e.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (e *Engine) notifyRestored(doc *course.Document) {
	e.mu.Lock()
	fns := make([]func(*course.Document), len(e.restoredFns))
	copy(fns, e.restoredFns)
	e.mu.Unlock()

	for _, fn := range fns {
		fn(doc.Clone())
	}
}
