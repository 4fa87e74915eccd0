package wizard

import (
	"slices"
	"strconv"
)

// Placeholders shown by selectors before the operator picks a value.
const (
	CategoryPlaceholder   = "— Select a category —"
	StrategyPlaceholder   = "— Select a deployment strategy —"
	SelectOnePlaceholder  = "— Select one —"
	RiskPlaceholder       = "— Select one or more risks —"
	RoleOtherLabel        = "Other (fill in)"
	DefaultBuildBuyChoice = "Build In-House"
)

var (
	riskReasons = []string{
		"We are not improving the way our customers interact with us for service provisioning",
		"We are not improving the speed and quality of our service provisioning",
		"We are not meeting feature or service demands from our customers",
		"We will continue to pay for 3rd party support for this task",
		"This task will continue to be executed individually in an inconsistent and ad-hoc manner with varying degrees of success and documentation",
		"This task will continue to take far longer than it should resulting in poor customer satisfaction",
		"We risk continuing to add technical debt to the logical infrastructure",
	}
	roleWho = []string{
		"I’m a network engineer.",
		"I’m a security engineer.",
		"I’m a software developer.",
		"I manage technical projects or teams.",
	}
	roleSkills = []string{
		"I have some scripting skills and basic software development experience.",
		"I am an advanced software developer.",
		"I provide techncial management on network and automation projects.",
	}
	roleDeveloper = []string{
		"I’ll do it myself.",
		"My in-house team and I will build it.",
		"We will have outside experts build it, but I’ll provide technical oversight.",
	}
	presentationUsers = []string{
		"Network Engineers",
		"IT",
		"Operations",
		"Help Desk",
		"Other IT Organizations",
		"Any User",
		"Authorized Users",
	}
	presentationInteractions = []string{
		"CLI",
		"Purpose-built Web GUI",
		"Other GUI",
		"API",
		"Commercial Product/GUI",
		"Open Source Product/GUI",
	}
	presentationTools = []string{
		"Python",
		"Python Web Framework (Streamlit, Flask, etc.)",
		"General Web Framework",
		"Automation Framework",
		"REST API",
		"GraphQL API",
		"Custom API",
	}
	presentationAuth = []string{
		"No Authentication (suitable only for demos and very specific use cases)",
		"Repository authorization/sharing",
		"Built-in (to the automation) Authentication via Username/Password or TOKEN",
		"Custom Authentication to external system (AD, SSH Keys, OAUTH2)",
	}
	intentDevelopment = []string{
		"Templates",
		"Policies",
		"Service Profiles",
		"Model-driven (data models)",
		"Declarative (YAML/JSON)",
		"Forms/GUI",
		"Domain-specific language (DSL)",
		"GitOps workflow (PRs/Reviews)",
		"API-driven",
		"Import from Source of Truth (CMDB/IPAM/Inventory/Git)",
	}
	intentProvided = []string{
		"Text file",
		"Serialized format (JSON, YAML)",
		"CSV",
		"Excel",
		"API",
	}
	observabilityMethods = []string{
		"Manual",
		"Purpose-built Python Script",
		"API call",
	}
	observabilityTools = []string{
		"Open Source Software",
		"Commercial/Enterprise Product",
		"Network Vendor Product (Cisco Catalyst Center, Arista CVP, etc.)",
		"Custom Python Scripts",
	}
	orchestrationChoices = []string{
		"No",
		"Yes – internal via custom scripts and logic",
		"Yes – provide details",
	}
	collectorMethods = []string{
		"SNMP",
		"CLI/SSH",
		"NETCONF",
		"gNMI",
		"REST API",
		"Webhooks",
		"Syslog",
		"Streaming Telemetry",
	}
	collectorAuth = []string{
		"Username/Password",
		"SSH Keys",
		"OAuth2",
		"API Token",
		"mTLS",
	}
	collectorHandling = []string{
		"None",
		"Rate limiting",
		"Retries",
		"Exponential backoff",
		"Buffering/Queue",
	}
	collectorNormalization = []string{
		"None",
		"Timestamping",
		"Tagging/labels",
		"Topology enrichment",
		"Schema mapping",
	}
	collectionTools = []string{
		"None",
		"Open Source Software",
		"Commercial/Enterprise Product",
		"In-house Software",
	}
	executorMethods = []string{
		"Automating CLI interaction with Python automation frameworks (Netmiko, Napalm, Nornir, PyATS)",
		"Using Open Source Software (Ansible, Terraform, etc.)",
		"Using Custom Python scripts",
		"Using Network Vendor Product (Cisco DNA Center, Arista CVP)",
		"Using a Commercial/Enterprise Product",
	}
	dependencyLabels = []string{
		"Network Infrastructure",
		"Network Controllers",
		"Revision Control system",
		"ITSM/Change Management System",
		"Authentication System",
		"IPAMS Systems",
		"Inventory Systems",
		"Design Data/Intent Systems",
		"Observability System",
		"Vendor Tool/Management System",
	}
	defaultDependencies = []string{"Network Infrastructure", "Revision Control system"}
)

// StakeholderCategories lists the stakeholder categories offered by the
// questionnaire UI. Payloads may carry others; they are kept verbatim.
var StakeholderCategories = []string{
	"Technical Stakeholders",
	"User and Customer Stakeholders",
	"Governance and Risk Stakeholders",
	"Business and Leadership Stakeholders",
	"External/Vendor/Partner Stakeholders",
}

// DefaultPhases is the timeline a new session starts with.
var DefaultPhases = []Phase{
	{Name: "Planning", Duration: 5},
	{Name: "Design", Duration: 10},
	{Name: "Build", Duration: 10},
	{Name: "Test", Duration: 5},
	{Name: "Pilot", Duration: 5},
	{Name: "Production Rollout", Duration: 10},
}

func text(name, control string) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: KindFreeText, Control: control}
}

func toggledText(name, control, toggle string) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: KindFreeText, Control: control, Toggle: toggle}
}

func checkboxes(name, prefix string, options []string) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: KindCheckboxGroup, Prefix: prefix, Options: slices.Clone(options)}
}

func roleChoice(name, control string, options []string) FieldDescriptor {
	return FieldDescriptor{
		Name:        name,
		Kind:        KindEnumWithCustom,
		Control:     control,
		Custom:      control + "_other",
		Options:     slices.Clone(options),
		OtherLabel:  RoleOtherLabel,
		Placeholder: SelectOnePlaceholder,
	}
}

// NAFQuestionnaire returns the NAF solution wizard questionnaire. Each call
// returns a fresh value.
func NAFQuestionnaire() Questionnaire {
	return Questionnaire{Sections: []Section{
		{Name: "initiative", Fields: []FieldDescriptor{
			text("author", "_wizard_author"),
			text("title", "_wizard_automation_title"),
			text("description", "_wizard_automation_description"),
			{
				Name:        "category",
				Kind:        KindEnumWithCustom,
				Control:     "_wizard_category",
				Custom:      "_wizard_category_other",
				Enumeration: EnumUseCaseCategories,
				Placeholder: CategoryPlaceholder,
			},
			text("problem_statement", "_wizard_problem_statement"),
			text("expected_use", "_wizard_expected_use"),
			text("error_conditions", "_wizard_error_conditions"),
			text("assumptions", "_wizard_assumptions"),
			{
				Name:        "deployment_strategy",
				Kind:        KindEnumWithCustom,
				Control:     "_wizard_deployment_strategy",
				Custom:      "_wizard_deployment_strategy_other",
				Enumeration: EnumDeploymentStrategies,
				Placeholder: StrategyPlaceholder,
			},
			text("deployment_strategy_description", "_wizard_deployment_strategy_description"),
			text("out_of_scope", "_wizard_out_of_scope"),
			text("no_move_forward", "no_move_forward"),
			{
				Name:    "no_move_forward_reasons",
				Kind:    KindCheckboxGroup,
				Control: "no_move_forward_reasons",
				Options: slices.Clone(riskReasons),
			},
		}},
		{Name: "role", Fields: []FieldDescriptor{
			roleChoice("who", "my_role_who", roleWho),
			roleChoice("skills", "my_role_skills", roleSkills),
			roleChoice("developer", "my_role_dev", roleDeveloper),
		}},
		{Name: "stakeholders", Fields: []FieldDescriptor{
			{Name: "choices", Kind: KindVerbatimString, Prefix: "stakeholders_choice_"},
			text("other", "stakeholders_other_text"),
		}},
		{Name: "presentation", Fields: []FieldDescriptor{
			checkboxes("users", "pres_user_", presentationUsers),
			toggledText("users_custom", "pres_user_custom", "pres_user_custom_enable"),
			checkboxes("interactions", "pres_interact_", presentationInteractions),
			toggledText("interactions_custom", "pres_interact_custom", "pres_interact_custom_enable"),
			checkboxes("tools", "pres_tool_", presentationTools),
			toggledText("tools_custom", "pres_tool_custom", "pres_tool_custom_enable"),
			checkboxes("auth", "pres_auth_", presentationAuth),
			toggledText("auth_other", "pres_auth_other_text", "pres_auth_other_enable"),
		}},
		{Name: "intent", Fields: []FieldDescriptor{
			checkboxes("development", "intent_dev_", intentDevelopment),
			toggledText("development_custom", "intent_dev_custom", "intent_dev_custom_enable"),
			checkboxes("provided", "intent_prov_", intentProvided),
			toggledText("provided_custom", "intent_prov_custom", "intent_prov_custom_enable"),
		}},
		{Name: "observability", Fields: []FieldDescriptor{
			checkboxes("methods", "obs_state_", observabilityMethods),
			checkboxes("tools", "obs_tool_", observabilityTools),
			toggledText("tools_other", "obs_tool_other_text", "obs_tool_other_enable"),
			text("go_no_go", "obs_go_no_go"),
			{Name: "additional_logic", Kind: KindVerbatimString, Control: "obs_add_logic_choice"},
			text("additional_logic_text", "obs_add_logic_text"),
		}},
		{Name: "orchestration", Fields: []FieldDescriptor{
			{
				Name:        "choice",
				Kind:        KindEnumWithCustom,
				Control:     "orch_choice",
				Custom:      "orch_choice_other",
				Options:     slices.Clone(orchestrationChoices),
				Placeholder: SelectOnePlaceholder,
			},
			text("details", "orch_details_text"),
		}},
		{Name: "collector", Fields: []FieldDescriptor{
			checkboxes("methods", "collector_method_", collectorMethods),
			toggledText("methods_other", "collector_methods_other", "collector_methods_other_enable"),
			checkboxes("auth", "collector_auth_", collectorAuth),
			toggledText("auth_other", "collector_auth_other", "collector_auth_other_enable"),
			checkboxes("handling", "collector_handle_", collectorHandling),
			toggledText("handling_other", "collector_handling_other", "collector_handling_other_enable"),
			checkboxes("normalization", "collector_norm_", collectorNormalization),
			toggledText("normalization_other", "collector_norm_other", "collector_norm_other_enable"),
			checkboxes("tools", "collection_tool_", collectionTools),
			toggledText("tools_other", "collection_tools_other", "collection_tools_other_enable"),
			text("devices", "collector_devices"),
			text("metrics_per_sec", "collector_metrics"),
			text("cadence", "collector_cadence"),
		}},
		{Name: "executor", Fields: []FieldDescriptor{
			checkboxes("methods", "exec_method_", executorMethods),
			toggledText("methods_custom", "exec_custom_text", "exec_custom_enable"),
		}},
		{Name: "dependencies", Fields: []FieldDescriptor{
			checkboxes("selected", "dep_", dependencyLabels),
			{Name: "details", Kind: KindVerbatimString, Prefix: "dep_details_"},
		}},
		{Name: "timeline", Fields: []FieldDescriptor{
			text("build_buy", "timeline_build_buy"),
			text("staffing_plan_md", "timeline_staffing_plan"),
			text("holiday_region", "timeline_holiday_region"),
			{Name: "schedule", Kind: KindDerivedTimeline, Timeline: DefaultTimelineControls()},
		}},
	}}
}

// NAFDefaults returns the control state a new NAF session starts with.
func NAFDefaults() ControlState {
	state := ControlState{
		"_wizard_category":              CategoryPlaceholder,
		"_wizard_deployment_strategy":   StrategyPlaceholder,
		"my_role_who":                   SelectOnePlaceholder,
		"my_role_skills":                SelectOnePlaceholder,
		"my_role_dev":                   SelectOnePlaceholder,
		"orch_choice":                   SelectOnePlaceholder,
		"obs_add_logic_choice":          "No",
		"no_move_forward_reasons":       []string{RiskPlaceholder},
		"timeline_build_buy":            DefaultBuildBuyChoice,
		"timeline_holiday_region":       "None",
		"timeline_staff_count":          1,
		"timeline_external_staff_count": 0,
	}
	for _, label := range dependencyLabels {
		state["dep_"+label] = slices.Contains(defaultDependencies, label)
	}
	tl := DefaultTimelineControls()
	state[tl.PhaseCount] = len(DefaultPhases)
	for i, phase := range DefaultPhases {
		index := strconv.Itoa(i)
		state[tl.PhaseName+index] = phase.Name
		state[tl.PhaseDuration+index] = phase.Duration
		state[tl.PhaseNotes+index] = phase.Notes
	}
	return state
}
