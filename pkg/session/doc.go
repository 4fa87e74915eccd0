// Package session keeps per-operator questionnaire state between requests and
// exchanges it with payloads through a wizard.Wizard.
//
// Responsibilities:
//   - Store only loads and saves one ControlState snapshot for one Ref.
//   - Manager starts sessions from defaults, applies updates under optimistic
//     concurrency (ETags), and exports or imports payloads.
//   - Every successful change is reported through an activity.Emitter.
//
// Data flow:
//
//	Store -> Manager.Import(payload) -> wizard.Restore -> wizard.ApplyUpdates -> Store
//	Store -> Manager.Export -> wizard.Build -> payload
//
// Deterministic keys:
//
//	Ref.Identifier() returns "<questionnaire>/<session id>".
package session
