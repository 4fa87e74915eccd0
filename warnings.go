package wizard

import "fmt"

// WarningCode classifies a recoverable restore anomaly.
type WarningCode string

const (
	// WarningMalformedField marks a field skipped because its value has the
	// wrong type for its kind.
	WarningMalformedField WarningCode = "malformed_field"
	// WarningMalformedSection marks a section skipped because it is not a mapping.
	WarningMalformedSection WarningCode = "malformed_section"
	// WarningUnknownOption marks a checkbox label that matches no declared option.
	WarningUnknownOption WarningCode = "unknown_option"
	// WarningPhaseOrder marks timeline phases listed out of start-date order.
	WarningPhaseOrder WarningCode = "phase_order"
	// WarningVersionMismatch marks a payload stamped with a newer schema version.
	WarningVersionMismatch WarningCode = "version_mismatch"
)

// Warning is surfaced to the caller next to the updates that did parse.
type Warning struct {
	Section string      `json:"section,omitempty"`
	Field   string      `json:"field,omitempty"`
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	path := w.Section
	if w.Field != "" {
		path = joinPath(path, w.Field)
	}
	if path == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, path, w.Message)
}

func newWarning(code WarningCode, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}
