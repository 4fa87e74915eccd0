package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/pkg/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildThenRestore(t *testing.T) {
	t.Setenv(envStrategies, "Canary, Big Bang")

	out, err := run(t, `{"_wizard_author":"Ada","_wizard_deployment_strategy":"Canary"}`, "build")
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, float64(wizard.PayloadVersion), payload[wizard.VersionKey])
	assert.Equal(t, "Canary", payload["initiative"].(map[string]any)["deployment_strategy"])

	out, err = run(t, out, "restore")
	require.NoError(t, err)
	var result wizard.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Empty(t, result.Warnings)
	assert.Contains(t, result.Updates, wizard.Update{Control: "_wizard_deployment_strategy", Value: "Canary"})
}

func TestRestoreOverState(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte(`{"_wizard_author":"Ada","untouched":true}`), 0o600))

	out, err := run(t, `{"initiative":{"author":"Grace"}}`, "restore", "--state", statePath)
	require.NoError(t, err)
	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, "Grace", state["_wizard_author"])
	assert.Equal(t, true, state["untouched"])
}

func TestRestoreRejectsNonMapping(t *testing.T) {
	_, err := run(t, `[1, 2]`, "restore")
	assert.ErrorIs(t, err, wizard.ErrPayloadShape)

	_, err = run(t, ``, "restore")
	assert.ErrorContains(t, err, "no JSON input")
}

func TestSchedule(t *testing.T) {
	out, err := run(t, "", "schedule", "--start", "2025-12-12")
	require.NoError(t, err)
	assert.Regexp(t, `Planning\s+5\s+2025-12-12\s+2025-12-19`, out)
	assert.Regexp(t, `TOTAL\s+45\s+2026-02-13`, out)

	out, err = run(t, "", "schedule", "--start", "2025-12-12", "--phase", "Planning:5", "--holiday", "2025-12-17")
	require.NoError(t, err)
	assert.Regexp(t, `Planning\s+5\s+2025-12-12\s+2025-12-22`, out)

	_, err = run(t, "", "schedule", "--start", "2025-12-12", "--phase", "Planning")
	assert.ErrorContains(t, err, "expected name:days")

	_, err = run(t, "", "schedule", "--start", "12/12/2025")
	assert.Error(t, err)
}

func TestSchemaListsEnumerations(t *testing.T) {
	t.Setenv(envCategories, "Provisioning,Compliance")
	out, err := run(t, "", "schema", "--id", "https://example.com/naf.json")
	require.NoError(t, err)
	assert.Contains(t, out, `"$id": "https://example.com/naf.json"`)
	assert.Contains(t, out, "Provisioning")
}

func TestConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "strategies.yaml")
	require.NoError(t, os.WriteFile(listPath, []byte("- Canary\n- Blue Green\n"), 0o600))

	env := map[string]string{
		envStrategies: listPath,
		envCategories: "Provisioning, Provisioning, Compliance",
		envRuleEngine: "CEL",
	}
	cfg, err := configFromEnv(func(key string) string { return env[key] })
	require.NoError(t, err)
	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, []string{"Canary", "Blue Green"}, cfg.Enumerations[wizard.EnumDeploymentStrategies])
	assert.Equal(t, []string{"Provisioning", "Compliance"}, cfg.Enumerations[wizard.EnumUseCaseCategories])

	evaluator, err := cfg.evaluator()
	require.NoError(t, err)
	assert.NotNil(t, evaluator)

	cfg.RuleEngine = "lua"
	_, err = cfg.evaluator()
	assert.ErrorContains(t, err, "unknown rule engine")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(envAddr+"=:9999\n"), 0o600))
	t.Setenv(envAddr, "")
	require.NoError(t, os.Unsetenv(envAddr))

	loaded, err := loadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, ":9999", os.Getenv(envAddr))

	loaded, err = loadEnvFile(filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestActivityLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	hook := activityLogger(zap.New(core))

	event := activity.SessionUpdated("s-1", "etag-2", []string{"orch_choice"})
	event.Questionnaire = "naf"
	err := hook.Notify(context.Background(), event)
	require.NoError(t, err)

	entries := logs.FilterMessage("session activity").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, activity.VerbSessionUpdated, fields["verb"])
	assert.Equal(t, "s-1", fields["session"])
	assert.Equal(t, "naf", fields["questionnaire"])
	assert.Equal(t, []any{"orch_choice"}, fields["changed"])
}
