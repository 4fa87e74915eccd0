// Package usersink forwards wizard activity events to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/goliatone/go-wizard/pkg/activity"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

var _ activity.ActivityHook = Hook{}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// Identifiers that are not UUIDs map to uuid.Nil.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, Record(normalized))
}

// Record converts a normalized event into a go-users activity record. The
// session becomes the record object; the other session details travel in
// Data.
func Record(event activity.Event) usertypes.ActivityRecord {
	return usertypes.ActivityRecord{
		ActorID:    parseUUID(event.Actor.ID),
		UserID:     parseUUID(event.Actor.UserID),
		TenantID:   parseUUID(event.Actor.TenantID),
		Verb:       event.Verb,
		ObjectType: activity.ObjectSession,
		ObjectID:   event.SessionID,
		Channel:    event.Channel,
		Data:       event.Fields(),
		OccurredAt: event.OccurredAt,
	}
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
