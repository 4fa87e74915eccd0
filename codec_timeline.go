package wizard

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-wizard/internal/calendar"
	"github.com/goliatone/go-wizard/internal/hydrate"
)

// Schedule record keys.
const (
	scheduleStartDate          = "start_date"
	scheduleTotalBusinessDays  = "total_business_days"
	scheduleProjected          = "projected_completion"
	scheduleStaffCount         = "staff_count"
	scheduleExternalStaffCount = "external_staff_count"
	scheduleItems              = "items"
)

// MaxPhaseDuration caps the business days of a single phase.
const MaxPhaseDuration = 10000

// Phase is one row of a timeline.
type Phase struct {
	Name     string
	Duration int
	Notes    string
}

// PlannedPhase is a phase with its computed business-day window. Dates are
// empty when the timeline has no start date.
type PlannedPhase struct {
	Phase
	Start string
	End   string
}

// PlanTimeline lays phases end to end from start, skipping weekends.
// Negative durations count as zero. A zero start leaves every date empty.
func PlanTimeline(start time.Time, phases []Phase) (planned []PlannedPhase, total int, completion string) {
	durations := make([]int, len(phases))
	for i, phase := range phases {
		durations[i] = min(max(phase.Duration, 0), MaxPhaseDuration)
		total += durations[i]
	}

	planned = make([]PlannedPhase, len(phases))
	var spans []calendar.Span
	if !start.IsZero() {
		spans = calendar.Schedule(start, durations)
	}
	for i, phase := range phases {
		phase.Duration = durations[i]
		planned[i] = PlannedPhase{Phase: phase}
		if spans != nil {
			planned[i].Start = FormatDate(spans[i].Start)
			planned[i].End = FormatDate(spans[i].End)
		}
	}
	if len(planned) > 0 {
		completion = planned[len(planned)-1].End
	}
	return planned, total, completion
}

// timelineCodec derives phase dates from a start date and business-day
// durations. Decoding keeps stored dates verbatim in display controls.
type timelineCodec struct{}

func (timelineCodec) Empty(FieldDescriptor) any {
	return scheduleRecord(nil, 0, "", "", 0, 0)
}

func (timelineCodec) Encode(field FieldDescriptor, state ControlState) any {
	tl := timelineControls(field)

	start, _ := dateValue(state[tl.StartDate])
	staff, _ := intValue(state[tl.StaffCount])
	external, _ := intValue(state[tl.ExternalStaffCount])

	planned, total, completion := PlanTimeline(start, readPhases(tl, state))
	return scheduleRecord(planned, total, FormatDate(start), completion, staff, external)
}

// readPhases collects rows until the first missing name control. A phase
// count control only caps the rows read.
func readPhases(tl *TimelineControls, state ControlState) []Phase {
	limit, bounded := intValue(state[tl.PhaseCount])
	var phases []Phase
	for i := 0; !bounded || i < limit; i++ {
		raw, exists := state[rowControl(tl.PhaseName, i)]
		if !exists {
			break
		}
		name, _ := stringValue(raw)
		duration, _ := intValue(state[rowControl(tl.PhaseDuration, i)])
		notes, _ := stringValue(state[rowControl(tl.PhaseNotes, i)])
		phases = append(phases, Phase{Name: name, Duration: duration, Notes: notes})
	}
	return phases
}

func scheduleRecord(planned []PlannedPhase, total int, start, completion string, staff, external int) map[string]any {
	items := make([]map[string]any, 0, len(planned))
	for _, phase := range planned {
		items = append(items, map[string]any{
			"name":        phase.Name,
			"duration_bd": phase.Duration,
			"start":       phase.Start,
			"end":         phase.End,
			"notes":       phase.Notes,
		})
	}
	return map[string]any{
		scheduleStartDate:          start,
		scheduleTotalBusinessDays:  total,
		scheduleProjected:          completion,
		scheduleStaffCount:         staff,
		scheduleExternalStaffCount: external,
		scheduleItems:              items,
	}
}

type storedSchedule struct {
	StartDate           string        `json:"start_date"`
	TotalBusinessDays   int           `json:"total_business_days"`
	ProjectedCompletion string        `json:"projected_completion"`
	StaffCount          int           `json:"staff_count"`
	ExternalStaffCount  int           `json:"external_staff_count"`
	Items               []storedPhase `json:"items"`
}

type storedPhase struct {
	Name       string `json:"name"`
	DurationBD int    `json:"duration_bd"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Notes      string `json:"notes"`
}

var scheduleDecoder = hydrate.NewDecoder[storedSchedule](
	hydrate.Rewriting[storedSchedule](legacyPhaseDuration),
	hydrate.Checking[storedSchedule](phaseDurationsInRange),
)

// phaseDurationsInRange rejects durations Build could never have written.
func phaseDurationsInRange(_ hydrate.Context, schedule storedSchedule) error {
	for i, item := range schedule.Items {
		if item.DurationBD < 0 || item.DurationBD > MaxPhaseDuration {
			return fmt.Errorf("phase %d duration %d outside 0..%d", i, item.DurationBD, MaxPhaseDuration)
		}
	}
	return nil
}

// legacyPhaseDuration maps the older "duration" row key onto duration_bd.
func legacyPhaseDuration(_ hydrate.Context, record map[string]any) error {
	items, ok := record[scheduleItems].([]any)
	if !ok {
		return nil
	}
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := row["duration_bd"]; ok {
			continue
		}
		if legacy, ok := row["duration"]; ok {
			row["duration_bd"] = legacy
		}
	}
	return nil
}

func (timelineCodec) Decode(_ DecodeContext, field FieldDescriptor, value any) (Decoded, error) {
	record, ok := asRecord(value)
	if !ok {
		return Decoded{}, malformed("schedule mapping", value)
	}
	stored, err := scheduleDecoder.Decode(hydrate.Context{Field: field.Name}, record)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}

	var start any
	if stored.StartDate != "" {
		parsed, err := ParseDate(stored.StartDate)
		if err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", ErrMalformedValue, err)
		}
		start = parsed
	}

	tl := timelineControls(field)
	var out Decoded
	out.set(tl.StartDate, start)
	out.set(tl.StaffCount, stored.StaffCount)
	out.set(tl.ExternalStaffCount, stored.ExternalStaffCount)
	out.set(tl.PhaseCount, len(stored.Items))

	var previous time.Time
	outOfOrder := false
	for i, item := range stored.Items {
		out.set(rowControl(tl.PhaseName, i), item.Name)
		out.set(rowControl(tl.PhaseDuration, i), item.DurationBD)
		out.set(rowControl(tl.PhaseNotes, i), item.Notes)
		out.set(rowControl(tl.PhaseStart, i), item.Start)
		out.set(rowControl(tl.PhaseEnd, i), item.End)

		began, err := ParseDate(item.Start)
		if err != nil {
			continue
		}
		if !outOfOrder && !previous.IsZero() && began.Before(previous) {
			outOfOrder = true
			out.warn(WarningPhaseOrder, "phase %d (%q) starts %s, before the previous phase", i+1, item.Name, item.Start)
		}
		previous = began
	}
	out.set(tl.Completion, stored.ProjectedCompletion)
	return out, nil
}

// asRecord accepts the mapping shapes a payload arrives in: decoded JSON
// objects, Payload values and string-valued maps.
func asRecord(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Payload:
		return map[string]any(typed), true
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func timelineControls(field FieldDescriptor) *TimelineControls {
	if field.Timeline != nil {
		return field.Timeline
	}
	return DefaultTimelineControls()
}

func rowControl(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}
