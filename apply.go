package wizard

import "github.com/goliatone/go-wizard/layering"

// ApplyUpdates returns a new state with updates laid over state. Later updates
// for the same control win. Controls without an update keep their value, and
// neither input is modified.
func ApplyUpdates(state ControlState, updates []Update) ControlState {
	overlay := make(map[string]any, len(updates))
	for _, update := range updates {
		overlay[update.Control] = update.Value
	}
	return ControlState(layering.MergeStates(overlay, state))
}

// Changed lists the controls whose values differ between before and after.
func Changed(before, after ControlState) []string {
	return layering.Diff(before, after)
}
