package activity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Actor identifies who caused an event. IDs are plain strings so call sites
// are not tied to a UUID type.
type Actor struct {
	ID       string
	UserID   string
	TenantID string
}

// Event describes a change to one wizard session.
type Event struct {
	Verb          string
	SessionID     string
	Questionnaire string
	Channel       string
	Actor         Actor

	// ETag is the session revision after the change.
	ETag string
	// Changed lists the controls the operation modified.
	Changed []string
	// Warnings carries restore warnings rendered as text.
	Warnings []string
	// PayloadVersion is the schema version of the payload involved, if any.
	PayloadVersion int
	OccurredAt     time.Time
}

// Valid reports whether the event names a verb and a session.
func (e Event) Valid() bool {
	return e.Verb != "" && e.SessionID != ""
}

// Fields flattens the optional session details into a map for sinks that
// store free-form data. Unset details are left out; the result is nil when
// nothing is set.
func (e Event) Fields() map[string]any {
	fields := map[string]any{}
	if e.Questionnaire != "" {
		fields["questionnaire"] = e.Questionnaire
	}
	if e.ETag != "" {
		fields["etag"] = e.ETag
	}
	if len(e.Changed) > 0 {
		fields["changed"] = slices.Clone(e.Changed)
		fields["changed_count"] = len(e.Changed)
	}
	if len(e.Warnings) > 0 {
		fields["warnings"] = slices.Clone(e.Warnings)
	}
	if e.PayloadVersion != 0 {
		fields["payload_version"] = e.PayloadVersion
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and forwards it to every hook. Invalid events are
// dropped silently. Every hook runs; failures are joined and name the verb
// and the hook position.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, fmt.Errorf("activity: %s hook %d: %w", normalized.Verb, i, err))
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, copies the control and warning lists,
// and stamps OccurredAt when missing.
func NormalizeEvent(event Event) Event {
	out := event
	for _, field := range []*string{
		&out.Verb, &out.SessionID, &out.Questionnaire, &out.Channel, &out.ETag,
		&out.Actor.ID, &out.Actor.UserID, &out.Actor.TenantID,
	} {
		*field = strings.TrimSpace(*field)
	}
	out.Changed = cloneList(event.Changed)
	out.Warnings = cloneList(event.Warnings)
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

func cloneList(src []string) []string {
	if len(src) == 0 {
		return nil
	}
	return slices.Clone(src)
}
