package wizard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"testing"
	"time"
)

var testEnums = StaticEnumerations{
	EnumDeploymentStrategies: {"Canary", "Blue/Green", "Big Bang", "Phased by site"},
	EnumUseCaseCategories:    {"Configuration Management", "Compliance", "Provisioning", "Troubleshooting"},
}

func newNAF(t *testing.T, opts ...Option) *Wizard {
	t.Helper()
	opts = append([]Option{WithEnumerations(testEnums)}, opts...)
	w, err := NewNAF(opts...)
	if err != nil {
		t.Fatalf("NewNAF failed: %v", err)
	}
	return w
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := ParseDate(value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

// fullState touches every field of the NAF questionnaire.
func fullState(t *testing.T) ControlState {
	t.Helper()
	state := NAFDefaults()
	set := map[string]any{
		"_wizard_author":                             "Jordan Lee",
		"_wizard_automation_title":                   "Automated VLAN provisioning",
		"_wizard_automation_description":             "Provision VLANs across campus switches",
		"_wizard_category":                           "Provisioning",
		"_wizard_problem_statement":                  "Manual VLAN changes take days",
		"_wizard_expected_use":                       "- weekly changes\n- emergency fixes",
		"_wizard_error_conditions":                   "Device unreachable",
		"_wizard_assumptions":                        "Inventory is current",
		"_wizard_deployment_strategy":                DefaultOtherLabel,
		"_wizard_deployment_strategy_other":          "My own Strategy",
		"_wizard_deployment_strategy_description":    "Start in the lab",
		"_wizard_out_of_scope":                       "Firewalls",
		"no_move_forward":                            "Outages continue",
		"no_move_forward_reasons":                    []string{RiskPlaceholder, riskReasons[2], riskReasons[0]},
		"my_role_who":                                roleWho[0],
		"my_role_skills":                             RoleOtherLabel,
		"my_role_skills_other":                       "Ten years of Perl",
		"my_role_dev":                                roleDeveloper[1],
		"stakeholders_choice_Technical Stakeholders": "Network Operations",
		"stakeholders_choice_Quantum Stakeholders":   "Entangled team",
		"stakeholders_other_text":                    "Facilities",
		"pres_user_Network Engineers":                true,
		"pres_user_Help Desk":                        true,
		"pres_user_custom_enable":                    true,
		"pres_user_custom":                           "Field techs",
		"pres_interact_API":                          true,
		"pres_tool_REST API":                         true,
		"pres_auth_Repository authorization/sharing": true,
		"pres_auth_other_enable":                     false,
		"pres_auth_other_text":                       "hidden while disabled",
		"intent_dev_Templates":                       true,
		"intent_dev_GitOps workflow (PRs/Reviews)":   true,
		"intent_prov_Serialized format (JSON, YAML)": true,
		"obs_state_API call":                         true,
		"obs_tool_Open Source Software":              true,
		"obs_tool_other_enable":                      true,
		"obs_tool_other_text":                        "SuzieQ",
		"obs_go_no_go":                               "All pre-checks pass",
		"obs_add_logic_choice":                       "Yes",
		"obs_add_logic_text":                         "Change window is open",
		"orch_choice":                                orchestrationChoices[2],
		"orch_details_text":                          "Nautobot jobs",
		"collector_method_gNMI":                      true,
		"collector_auth_mTLS":                        true,
		"collector_handle_None":                      true,
		"collector_norm_Timestamping":                true,
		"collection_tool_In-house Software":          true,
		"collection_tools_other_enable":              true,
		"collection_tools_other":                     "Telegraf",
		"collector_devices":                          "500",
		"collector_metrics":                          "2000",
		"collector_cadence":                          "60s",
		"exec_method_" + executorMethods[1]:          true,
		"exec_custom_enable":                         true,
		"exec_custom_text":                           "Salt",
		"dep_Network Controllers":                    true,
		"dep_details_Revision Control system":        "GitHub",
		"dep_details_Network Controllers":            "Cisco Catalyst Center",
		"timeline_build_buy":                         "Hybrid",
		"timeline_staffing_plan":                     "# Team\n2 engineers",
		"timeline_holiday_region":                    "Canada",
		"timeline_start_date":                        mustDate(t, "2025-12-12"),
		"timeline_staff_count":                       2,
		"timeline_external_staff_count":              1,
		"timeline_phase_notes_2":                     "includes lab",
	}
	for key, value := range set {
		state[key] = value
	}
	return state
}

func section(t *testing.T, p Payload, name string) map[string]any {
	t.Helper()
	s, ok := p.Section(name)
	if !ok {
		t.Fatalf("payload missing section %q: %#v", name, p)
	}
	return s
}

func updatesByControl(updates []Update) map[string]any {
	out := make(map[string]any, len(updates))
	for _, update := range updates {
		out[update.Control] = update.Value
	}
	return out
}

// changedPaths lists section.field entries that differ between two payloads.
func changedPaths(a, b Payload) []string {
	var paths []string
	for name, raw := range a {
		left, ok := raw.(map[string]any)
		if !ok {
			if !reflect.DeepEqual(raw, b[name]) {
				paths = append(paths, name)
			}
			continue
		}
		right, _ := b[name].(map[string]any)
		for field, value := range left {
			if !reflect.DeepEqual(value, right[field]) {
				paths = append(paths, name+"."+field)
			}
		}
	}
	sort.Strings(paths)
	return paths
}

func normalizeJSON(t *testing.T, value any) any {
	t.Helper()
	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal fixture %q: %v", path, err)
	}
	return out
}
