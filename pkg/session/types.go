package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	wizard "github.com/goliatone/go-wizard"
)

var ErrSessionNotFound = errors.New("session: not found")

var ErrETagMismatch = errors.New("session: etag mismatch")

// Ref identifies one persisted session of one questionnaire.
type Ref struct {
	Questionnaire string
	SessionID     string
}

// Identifier returns the canonical storage key for the session.
func (r Ref) Identifier() (string, error) {
	questionnaire := strings.TrimSpace(r.Questionnaire)
	id := strings.TrimSpace(r.SessionID)
	if questionnaire == "" {
		return "", fmt.Errorf("session: questionnaire is required")
	}
	if id == "" {
		return "", fmt.Errorf("session: session id is required")
	}
	if strings.Contains(id, "/") {
		return "", fmt.Errorf("session: session id %q must not contain '/'", id)
	}
	return questionnaire + "/" + id, nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	CreatedAt  time.Time         `json:"created_at,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one control-state snapshot per Ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (state wizard.ControlState, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, state wizard.ControlState, meta Meta) (Meta, error)
}

// Session is a snapshot of one session's state and metadata.
type Session struct {
	ID    string              `json:"id"`
	State wizard.ControlState `json:"state"`
	Meta  Meta                `json:"meta"`
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra != nil {
		out.Extra = maps.Clone(meta.Extra)
	}
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.CreatedAt.IsZero() {
		out.CreatedAt = override.CreatedAt
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = maps.Clone(override.Extra)
	}
	return out
}
