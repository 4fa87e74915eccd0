package wizard

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var nafSections = []string{
	"initiative", "role", "stakeholders", "presentation", "intent", "observability",
	"orchestration", "collector", "executor", "dependencies", "timeline",
}

func TestBuildCoversEveryDeclaredSection(t *testing.T) {
	w := newNAF(t)
	q := NAFQuestionnaire()

	for _, state := range []ControlState{nil, {}, NAFDefaults(), fullState(t)} {
		payload := w.Build(state)
		if got := payload[VersionKey]; got != PayloadVersion {
			t.Fatalf("expected version %d, got %#v", PayloadVersion, got)
		}
		for _, name := range nafSections {
			sec := section(t, payload, name)
			for _, s := range q.Sections {
				if s.Name != name {
					continue
				}
				for _, field := range s.Fields {
					if _, ok := sec[field.Name]; !ok {
						t.Fatalf("section %q missing field %q", name, field.Name)
					}
				}
			}
		}
	}
}

func TestBuildEmptyStateUsesKindDefaults(t *testing.T) {
	payload := newNAF(t).Build(nil)

	initiative := section(t, payload, "initiative")
	if got := initiative["title"]; got != "" {
		t.Fatalf("expected empty title, got %#v", got)
	}
	if got := initiative["deployment_strategy"]; got != "" {
		t.Fatalf("expected no strategy selected, got %#v", got)
	}
	if got := initiative["no_move_forward_reasons"]; !reflect.DeepEqual(got, []string{}) {
		t.Fatalf("expected empty reasons list, got %#v", got)
	}
	if got := section(t, payload, "stakeholders")["choices"]; !reflect.DeepEqual(got, map[string]string{}) {
		t.Fatalf("expected empty choices map, got %#v", got)
	}
	schedule := section(t, payload, "timeline")["schedule"].(map[string]any)
	if schedule["start_date"] != "" || schedule["total_business_days"] != 0 {
		t.Fatalf("expected zero schedule, got %#v", schedule)
	}
}

func TestRoundTripIsIdempotent(t *testing.T) {
	w := newNAF(t)
	cases := map[string]ControlState{
		"empty":    {},
		"defaults": NAFDefaults(),
		"full":     fullState(t),
		"custom text spelled like a member": {
			"orch_choice":                       DefaultOtherLabel,
			"orch_choice_other":                 "No",
			"orch_details_text":                 "custom scripts",
			"_wizard_deployment_strategy":       DefaultOtherLabel,
			"_wizard_deployment_strategy_other": "Canary",
		},
	}

	for name, state := range cases {
		t.Run(name, func(t *testing.T) {
			first := w.Build(state)
			result, err := w.Restore(first)
			if err != nil {
				t.Fatalf("restore failed: %v", err)
			}
			if len(result.Warnings) > 0 {
				t.Fatalf("unexpected warnings: %v", result.Warnings)
			}
			second := w.Build(ApplyUpdates(nil, result.Updates))
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("round trip drifted (-first +second):\n%s", diff)
			}
		})
	}
}

func TestRoundTripThroughJSON(t *testing.T) {
	w := newNAF(t)
	first := w.Build(fullState(t))

	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	state, result, err := w.Load(nil, decoded)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
	if diff := cmp.Diff(first, w.Build(state)); diff != "" {
		t.Fatalf("JSON round trip drifted (-first +second):\n%s", diff)
	}
}

func TestSingleControlChangeTouchesOneField(t *testing.T) {
	w := newNAF(t)
	base := fullState(t)
	baseline := w.Build(base)

	cases := []struct {
		control string
		value   any
		want    string
	}{
		{control: "_wizard_automation_title", value: "Another title", want: "initiative.title"},
		{control: "_wizard_deployment_strategy_other", value: "Rolling by region", want: "initiative.deployment_strategy"},
		{control: "pres_user_IT", value: true, want: "presentation.users"},
		{control: "collector_handle_Retries", value: true, want: "collector.handling"},
		{control: "stakeholders_choice_Technical Stakeholders", value: "NetDevOps", want: "stakeholders.choices"},
		{control: "timeline_phase_duration_3", value: 20, want: "timeline.schedule"},
		{control: "my_role_skills_other", value: "Go and Python", want: "role.skills"},
		{control: "orch_choice", value: "No", want: "orchestration.choice"},
		{control: "obs_add_logic_choice", value: "No", want: "observability.additional_logic"},
	}

	for _, tc := range cases {
		t.Run(tc.control, func(t *testing.T) {
			changed := base.Clone()
			changed[tc.control] = tc.value
			got := changedPaths(baseline, w.Build(changed))
			if !reflect.DeepEqual(got, []string{tc.want}) {
				t.Fatalf("unexpected changed fields\nwant: %#v\n got: %#v", []string{tc.want}, got)
			}
		})
	}
}

func TestUnknownStrategyRoundTripsThroughOther(t *testing.T) {
	w := newNAF(t)
	payload := Payload{"initiative": map[string]any{"deployment_strategy": "My own Strategy"}}

	result, err := w.Restore(payload)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	updates := updatesByControl(result.Updates)
	if got := updates["_wizard_deployment_strategy"]; got != DefaultOtherLabel {
		t.Fatalf("expected selector %q, got %#v", DefaultOtherLabel, got)
	}
	if got := updates["_wizard_deployment_strategy_other"]; got != "My own Strategy" {
		t.Fatalf("expected custom text preserved, got %#v", got)
	}

	rebuilt := w.Build(ApplyUpdates(nil, result.Updates))
	if got := section(t, rebuilt, "initiative")["deployment_strategy"]; got != "My own Strategy" {
		t.Fatalf("expected rebuilt strategy %q, got %#v", "My own Strategy", got)
	}
}

func TestKnownStrategyClearsCustomText(t *testing.T) {
	w := newNAF(t)
	live := ControlState{"_wizard_deployment_strategy_other": "stale text"}

	state, _, err := w.Load(live, Payload{"initiative": map[string]any{"deployment_strategy": "Canary"}})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if state["_wizard_deployment_strategy"] != "Canary" || state["_wizard_deployment_strategy_other"] != "" {
		t.Fatalf("unexpected enum controls: %#v", state)
	}
}

func TestNoneSelectionIsDistinctFromEmpty(t *testing.T) {
	w := newNAF(t)
	none := w.Build(ControlState{"collector_handle_None": true})
	empty := w.Build(ControlState{})

	handlingNone := section(t, none, "collector")["handling"]
	handlingEmpty := section(t, empty, "collector")["handling"]
	if !reflect.DeepEqual(handlingNone, []string{"None"}) {
		t.Fatalf("expected [None], got %#v", handlingNone)
	}
	if !reflect.DeepEqual(handlingEmpty, []string{}) {
		t.Fatalf("expected empty list, got %#v", handlingEmpty)
	}

	for name, payload := range map[string]Payload{"none": none, "empty": empty} {
		result, err := w.Restore(payload)
		if err != nil {
			t.Fatalf("%s: restore failed: %v", name, err)
		}
		rebuilt := section(t, w.Build(ApplyUpdates(nil, result.Updates)), "collector")["handling"]
		if !reflect.DeepEqual(rebuilt, section(t, payload, "collector")["handling"]) {
			t.Fatalf("%s: handling drifted to %#v", name, rebuilt)
		}
	}
}

func TestCategoriesPreservedVerbatim(t *testing.T) {
	w := newNAF(t)
	weird := "  Lab-only    Experiments (beta)  "
	payload := Payload{
		"initiative": map[string]any{"category": weird},
		"stakeholders": map[string]any{"choices": map[string]any{
			"Unlisted Category":      "Some team",
			"technical stakeholders": "lower-case key",
		}},
	}

	result, err := w.Restore(payload)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	rebuilt := w.Build(ApplyUpdates(nil, result.Updates))

	if got := section(t, rebuilt, "initiative")["category"]; got != weird {
		t.Fatalf("category changed\nwant: %q\n got: %q", weird, got)
	}
	want := map[string]string{"Unlisted Category": "Some team", "technical stakeholders": "lower-case key"}
	if diff := cmp.Diff(want, section(t, rebuilt, "stakeholders")["choices"]); diff != "" {
		t.Fatalf("stakeholder choices changed (-want +got):\n%s", diff)
	}
}

func TestTimelineExampleSchedule(t *testing.T) {
	w := newNAF(t)
	state := ControlState{
		"timeline_start_date":  "2025-12-12",
		"timeline_phase_count": 6,
	}
	phases := []Phase{
		{Name: "Planning", Duration: 5},
		{Name: "Design", Duration: 10},
		{Name: "Build", Duration: 15},
		{Name: "Test", Duration: 10},
		{Name: "Pilot", Duration: 5},
		{Name: "Production Rollout", Duration: 30},
	}
	for i, phase := range phases {
		state[rowControl("timeline_phase_name_", i)] = phase.Name
		state[rowControl("timeline_phase_duration_", i)] = phase.Duration
	}

	schedule := section(t, w.Build(state), "timeline")["schedule"].(map[string]any)
	items := schedule["items"].([]map[string]any)
	if got := items[0]["end"]; got != "2025-12-19" {
		t.Fatalf("expected Planning to end 2025-12-19, got %#v", got)
	}
	last := items[len(items)-1]
	if schedule["projected_completion"] != last["end"] {
		t.Fatalf("completion %#v differs from last phase end %#v", schedule["projected_completion"], last["end"])
	}
	if schedule["projected_completion"] != "2026-03-27" {
		t.Fatalf("unexpected completion %#v", schedule["projected_completion"])
	}
	if schedule["total_business_days"] != 75 {
		t.Fatalf("expected 75 business days, got %#v", schedule["total_business_days"])
	}
	for i := 1; i < len(items); i++ {
		if items[i]["start"] != items[i-1]["end"] {
			t.Fatalf("phase %d does not start where phase %d ends: %#v", i, i-1, items)
		}
	}
}

func TestMissingSectionLeavesControlsUntouched(t *testing.T) {
	w := newNAF(t)
	payload := w.Build(fullState(t))
	delete(payload, "orchestration")

	live := ControlState{
		"orch_choice":       "No",
		"orch_details_text": "keep me",
		"_wizard_author":    "someone else",
	}
	result, err := w.Restore(payload)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	for _, update := range result.Updates {
		if strings.HasPrefix(update.Control, "orch_") {
			t.Fatalf("unexpected orchestration update %#v", update)
		}
	}

	next := ApplyUpdates(live, result.Updates)
	if next["orch_choice"] != "No" || next["orch_details_text"] != "keep me" {
		t.Fatalf("orchestration controls changed: %#v", next)
	}
	if next["_wizard_author"] != "Jordan Lee" {
		t.Fatalf("expected author restored, got %#v", next["_wizard_author"])
	}
	if live["_wizard_author"] != "someone else" {
		t.Fatalf("live state mutated: %#v", live)
	}
}

func TestNonMappingPayloadIsShapeError(t *testing.T) {
	w := newNAF(t)
	for _, payload := range []any{nil, "payload", 42, []any{map[string]any{}}, []string{"initiative"}} {
		result, err := w.Restore(payload)
		if err == nil {
			t.Fatalf("expected shape error for %#v", payload)
		}
		var shapeErr *ShapeError
		if !errors.As(err, &shapeErr) || !errors.Is(err, ErrPayloadShape) {
			t.Fatalf("expected ShapeError, got %T: %v", err, err)
		}
		if len(result.Updates) != 0 {
			t.Fatalf("expected zero updates, got %#v", result.Updates)
		}
	}
}

func TestLoadShapeErrorKeepsState(t *testing.T) {
	w := newNAF(t)
	live := ControlState{"_wizard_automation_title": "keep"}
	state, _, err := w.Load(live, "not a mapping")
	if err == nil {
		t.Fatalf("expected error")
	}
	if diff := cmp.Diff(live, state); diff != "" {
		t.Fatalf("state changed on shape error (-want +got):\n%s", diff)
	}
}

func TestOrchestrationDetailsSurviveCustomChoice(t *testing.T) {
	w := newNAF(t)
	state := ControlState{
		"orch_choice":       DefaultOtherLabel,
		"orch_choice_other": "No",
		"orch_details_text": "custom scripts",
	}
	want := map[string]any{"choice": "No", "details": "custom scripts"}
	if diff := cmp.Diff(want, section(t, w.Build(state), "orchestration")); diff != "" {
		t.Fatalf("first build (-want +got):\n%s", diff)
	}

	result, err := w.Restore(normalizeJSON(t, w.Build(state)))
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if diff := cmp.Diff(want, section(t, w.Build(ApplyUpdates(nil, result.Updates)), "orchestration")); diff != "" {
		t.Fatalf("rebuild (-want +got):\n%s", diff)
	}
}
