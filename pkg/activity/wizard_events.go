package activity

// Session event verbs.
const (
	VerbSessionStarted  = "wizard.session.started"
	VerbSessionUpdated  = "wizard.session.updated"
	VerbPayloadExported = "wizard.payload.exported"
	VerbPayloadImported = "wizard.payload.imported"
)

// ObjectSession is the object type sinks record for session events.
const ObjectSession = "wizard.session"

// SessionStarted is emitted once a new session is first saved.
func SessionStarted(sessionID, etag string) Event {
	return Event{Verb: VerbSessionStarted, SessionID: sessionID, ETag: etag}
}

// SessionUpdated is emitted after updates are laid over a session.
func SessionUpdated(sessionID, etag string, changed []string) Event {
	return Event{Verb: VerbSessionUpdated, SessionID: sessionID, ETag: etag, Changed: cloneList(changed)}
}

// PayloadExported is emitted when a payload is built from a session.
func PayloadExported(sessionID, etag string, version int) Event {
	return Event{Verb: VerbPayloadExported, SessionID: sessionID, ETag: etag, PayloadVersion: version}
}

// PayloadImported is emitted when a payload is restored into a session.
// Restore warnings ride along as text.
func PayloadImported(sessionID, etag string, changed, warnings []string, version int) Event {
	return Event{
		Verb:           VerbPayloadImported,
		SessionID:      sessionID,
		ETag:           etag,
		Changed:        cloneList(changed),
		Warnings:       cloneList(warnings),
		PayloadVersion: version,
	}
}
