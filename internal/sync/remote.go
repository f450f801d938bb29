package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/anupam/lessontrack/internal/config"
	"github.com/anupam/lessontrack/internal/course"
)

// Remote is the opaque key-value document service holding one progress
// document per (identity, course). Writes have merge semantics and the
// server stamps lastSyncedAt.
type Remote interface {
	// Fetch returns the stored document, or ErrNotFound.
	Fetch(ctx context.Context, uid, courseID string) (*course.Document, error)

	// Push writes the full document (merged server-side) and returns the
	// server-set lastSyncedAt timestamp.
	Push(ctx context.Context, uid, courseID string, doc *course.Document) (time.Time, error)
}

// restRemote talks to the document service over its REST surface.
type restRemote struct {
	client *resty.Client
	log    *zap.Logger
}

// NewRemote builds the HTTP remote from the hosting environment's project
// configuration.
func NewRemote(cfg config.Remote, log *zap.Logger) Remote {
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(fmt.Sprintf("https://%s/v1", cfg.AuthDomain)).
		SetHeader("X-Api-Key", cfg.APIKey).
		SetQueryParam("project", cfg.ProjectID).
		SetTimeout(15 * time.Second)
	return &restRemote{client: client, log: log}
}

func documentPath(uid, courseID string) string {
	return fmt.Sprintf("/identities/%s/courses/%s", uid, courseID)
}

func (r *restRemote) Fetch(ctx context.Context, uid, courseID string) (*course.Document, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		Get(documentPath(uid, courseID))
	if err != nil {
		return nil, fmt.Errorf("fetch remote document: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch remote document: HTTP %d", resp.StatusCode())
	}

	doc, err := course.DecodeLenient(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode remote document: %w", err)
	}
	return doc, nil
}

// pushResponse is the service's acknowledgement of a merge write.
type pushResponse struct {
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

func (r *restRemote) Push(ctx context.Context, uid, courseID string, doc *course.Document) (time.Time, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc).
		Patch(documentPath(uid, courseID))
	if err != nil {
		return time.Time{}, fmt.Errorf("push remote document: %w", err)
	}
	if resp.StatusCode() == http.StatusConflict {
		return time.Time{}, fmt.Errorf("push remote document: %w", ErrIdentityConflict)
	}
	if !resp.IsSuccess() {
		return time.Time{}, fmt.Errorf("push remote document: HTTP %d", resp.StatusCode())
	}

	var ack pushResponse
	if err := json.Unmarshal(resp.Body(), &ack); err != nil || ack.LastSyncedAt.IsZero() {
		// The write landed; an unreadable acknowledgement only costs us the
		// server's idea of the timestamp.
		return time.Now().UTC(), nil
	}
	return ack.LastSyncedAt, nil
}
