package enums

import (
	"os"
	"path/filepath"
	"testing"

	wizard "github.com/goliatone/go-wizard"
	"github.com/google/go-cmp/cmp"
)

func TestLoadListMappingKeepsDocumentOrder(t *testing.T) {
	got, err := LoadList(filepath.Join("testdata", "deployment_strategies.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"Canary", "Blue/Green", "Big Bang", "Phased by site"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected members (-want +got):\n%s", diff)
	}
}

func TestLoadFiles(t *testing.T) {
	set, err := LoadFiles(map[string]string{
		wizard.EnumDeploymentStrategies: filepath.Join("testdata", "deployment_strategies.yaml"),
		wizard.EnumUseCaseCategories:    filepath.Join("testdata", "use_case_categories.yaml"),
		"unused":                        "",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	members, ok := set.Members(wizard.EnumUseCaseCategories)
	if !ok || len(members) != 4 || members[2] != "Provisioning" {
		t.Fatalf("unexpected categories %v", members)
	}
	if _, ok := set.Members("unused"); ok {
		t.Fatalf("empty path should be skipped")
	}

	if _, err := LoadFiles(map[string]string{"x": filepath.Join("testdata", "missing.yaml")}); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestParseSet(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "set.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	set, err := ParseSet(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Set{
		wizard.EnumDeploymentStrategies: {"Canary", "Big Bang"},
		wizard.EnumUseCaseCategories:    {"Provisioning", "Compliance"},
		"empty":                         {},
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("unexpected set (-want +got):\n%s", diff)
	}
}

func TestParseListRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"scalar":      "Canary",
		"nested":      "- [a, b]",
		"duplicate":   "- a\n- a",
		"empty entry": "- ''",
		"syntax":      "a: [",
	}
	for name, doc := range cases {
		if _, err := ParseList([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	got, err := ParseList([]byte("  \n"))
	if err != nil || len(got) != 0 {
		t.Fatalf("blank document should be an empty list, got %v %v", got, err)
	}
}

func TestSetFeedsWizardRestore(t *testing.T) {
	w, err := wizard.NewNAF(wizard.WithEnumerations(Set{wizard.EnumDeploymentStrategies: {"Canary"}}))
	if err != nil {
		t.Fatalf("NewNAF: %v", err)
	}
	result, err := w.Restore(map[string]any{"initiative": map[string]any{"deployment_strategy": "Canary"}})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	for _, update := range result.Updates {
		if update.Control == "_wizard_deployment_strategy" && update.Value != "Canary" {
			t.Fatalf("expected known member, got %#v", update.Value)
		}
	}
}

func TestMergeAndSplit(t *testing.T) {
	merged := Merge(Set{"a": {"1"}, "b": {"2"}}, Set{"a": {"3"}})
	if diff := cmp.Diff(Set{"a": {"3"}, "b": {"2"}}, merged); diff != "" {
		t.Fatalf("unexpected merge (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Canary", "Big Bang"}, SplitList(" Canary, ,Big Bang,Canary ")); diff != "" {
		t.Fatalf("unexpected split (-want +got):\n%s", diff)
	}
}
