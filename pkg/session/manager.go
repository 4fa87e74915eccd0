package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/layering"
	"github.com/goliatone/go-wizard/pkg/activity"
	"github.com/google/uuid"
)

// DefaultQuestionnaire names the questionnaire when WithQuestionnaire is not used.
const DefaultQuestionnaire = "naf"

// Actor identifies who performs a session operation. It only feeds activity
// events.
type Actor struct {
	ID       string
	UserID   string
	TenantID string
}

type actorKey struct{}

// WithActor returns a context carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore replaces the default MemoryStore.
func WithStore(store Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithDefaults sets the state new sessions start from.
func WithDefaults(defaults wizard.ControlState) Option {
	return func(m *Manager) {
		m.defaults = defaults.Clone()
	}
}

// WithEmitter reports session changes to emitter.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(m *Manager) {
		m.emitter = emitter
	}
}

// WithQuestionnaire names the questionnaire used in storage keys.
func WithQuestionnaire(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.questionnaire = name
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides the uuid-based session id and ETag generator.
func WithIDGenerator(next func() string) Option {
	return func(m *Manager) {
		if next != nil {
			m.newID = next
		}
	}
}

// Manager orchestrates session state around a Store and a Wizard.
type Manager struct {
	wizard        *wizard.Wizard
	store         Store
	defaults      wizard.ControlState
	emitter       *activity.Emitter
	questionnaire string
	now           func() time.Time
	newID         func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager constructs a Manager for w.
func NewManager(w *wizard.Wizard, opts ...Option) (*Manager, error) {
	if w == nil {
		return nil, fmt.Errorf("session: wizard is required")
	}
	m := &Manager{
		wizard:        w,
		store:         NewMemoryStore(),
		defaults:      wizard.ControlState{},
		questionnaire: DefaultQuestionnaire,
		now:           time.Now,
		newID:         func() string { return uuid.NewString() },
		locks:         map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Wizard returns the wizard the manager builds and restores with.
func (m *Manager) Wizard() *wizard.Wizard {
	return m.wizard
}

func (m *Manager) ref(id string) Ref {
	return Ref{Questionnaire: m.questionnaire, SessionID: id}
}

// Start creates a session seeded with the defaults layered under initial.
func (m *Manager) Start(ctx context.Context, initial wizard.ControlState) (Session, error) {
	id := m.newID()
	now := m.now()
	state := wizard.ControlState(layering.MergeStates(initial, m.defaults))
	meta := Meta{SnapshotID: m.newID(), ETag: m.newID(), CreatedAt: now, UpdatedAt: now}

	saved, err := m.store.Save(ctx, m.ref(id), state, meta)
	if err != nil {
		return Session{}, fmt.Errorf("session: save %q: %w", id, err)
	}
	m.emit(ctx, activity.SessionStarted(id, saved.ETag))
	return Session{ID: id, State: state, Meta: saved}, nil
}

// Snapshot returns the current state of a session.
func (m *Manager) Snapshot(ctx context.Context, id string) (Session, error) {
	state, meta, ok, err := m.store.Load(ctx, m.ref(id))
	if err != nil {
		return Session{}, fmt.Errorf("session: load %q: %w", id, err)
	}
	if !ok {
		return Session{}, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return Session{ID: id, State: state, Meta: meta}, nil
}

// Apply lays updates over the session state. A non-empty etag must match the
// stored one. The returned list names the controls that changed.
func (m *Manager) Apply(ctx context.Context, id, etag string, updates []wizard.Update) (Session, []string, error) {
	session, changed, err := m.mutate(ctx, id, etag, func(state wizard.ControlState) (wizard.ControlState, error) {
		return wizard.ApplyUpdates(state, updates), nil
	})
	if err != nil {
		return Session{}, nil, err
	}
	m.emit(ctx, activity.SessionUpdated(id, session.Meta.ETag, changed))
	return session, changed, nil
}

// Export builds the payload for a session.
func (m *Manager) Export(ctx context.Context, id string) (wizard.Payload, Meta, error) {
	session, err := m.Snapshot(ctx, id)
	if err != nil {
		return nil, Meta{}, err
	}
	payload := m.wizard.Build(session.State)
	m.emit(ctx, activity.PayloadExported(id, session.Meta.ETag, wizard.PayloadVersion))
	return payload, session.Meta, nil
}

// Import restores payload into a session. On a shape error nothing is saved.
// Warnings are returned in the result and do not fail the import.
func (m *Manager) Import(ctx context.Context, id, etag string, payload any) (Session, wizard.Result, error) {
	var result wizard.Result
	session, changed, err := m.mutate(ctx, id, etag, func(state wizard.ControlState) (wizard.ControlState, error) {
		next, restored, err := m.wizard.Load(state, payload)
		result = restored
		return next, err
	})
	if err != nil {
		return Session{}, result, err
	}

	warnings := make([]string, 0, len(result.Warnings))
	for _, warning := range result.Warnings {
		warnings = append(warnings, warning.String())
	}
	m.emit(ctx, activity.PayloadImported(id, session.Meta.ETag, changed, warnings, wizard.PayloadVersion))
	return session, result, nil
}

// lock serializes changes to one session. Only changes made through this
// Manager are covered; a Store shared between processes needs its own guard.
func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// mutate loads a session, checks etag, applies fn and saves the result with a
// fresh ETag. Load, check and save run under the session lock.
func (m *Manager) mutate(ctx context.Context, id, etag string, fn func(wizard.ControlState) (wizard.ControlState, error)) (Session, []string, error) {
	defer m.lock(id)()
	ref := m.ref(id)
	state, loaded, ok, err := m.store.Load(ctx, ref)
	if err != nil {
		return Session{}, nil, fmt.Errorf("session: load %q: %w", id, err)
	}
	if !ok {
		return Session{}, nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	if etag != "" && loaded.ETag != "" && etag != loaded.ETag {
		return Session{}, nil, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, etag, loaded.ETag)
	}

	next, err := fn(state)
	if err != nil {
		return Session{}, nil, err
	}

	meta := mergeMeta(loaded, Meta{SnapshotID: m.newID(), ETag: m.newID(), UpdatedAt: m.now()})
	saved, err := m.store.Save(ctx, ref, next, meta)
	if err != nil {
		return Session{}, nil, fmt.Errorf("session: save %q: %w", id, err)
	}
	return Session{ID: id, State: next, Meta: saved}, wizard.Changed(state, next), nil
}

func (m *Manager) emit(ctx context.Context, event activity.Event) {
	if !m.emitter.Enabled() {
		return
	}
	if actor, ok := ActorFrom(ctx); ok {
		event.Actor = activity.Actor{ID: actor.ID, UserID: actor.UserID, TenantID: actor.TenantID}
	}
	event.Questionnaire = m.questionnaire
	event.OccurredAt = m.now()
	// Hook failures never fail a session change.
	_ = m.emitter.Emit(ctx, event)
}
