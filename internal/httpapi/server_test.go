package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	w, err := wizard.NewNAF(wizard.WithEnumerations(wizard.StaticEnumerations{
		wizard.EnumDeploymentStrategies: {"Canary"},
	}))
	require.NoError(t, err)
	manager, err := session.NewManager(w, session.WithDefaults(wizard.NAFDefaults()))
	require.NoError(t, err)
	s, err := NewServer(manager, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewServerRequiresManager(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSchema(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/v1/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeBody[map[string]any](t, rec)
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema properties missing: %v", doc)
	assert.Contains(t, props, "initiative")
	assert.Contains(t, props, "timeline")
}

func TestBuildAndRestore(t *testing.T) {
	s := newServer(t)

	rec := do(t, s, http.MethodPost, "/v1/payload", `{"state":{"_wizard_author":"Ada","_wizard_deployment_strategy":"Canary"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payload := decodeBody[map[string]any](t, rec)
	initiative, ok := payload["initiative"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", initiative["author"])
	assert.Equal(t, "Canary", initiative["deployment_strategy"])

	rec = do(t, s, http.MethodPost, "/v1/restore", rec.Body.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeBody[wizard.Result](t, rec)
	assert.Empty(t, result.Warnings)
	updates := map[string]any{}
	for _, update := range result.Updates {
		updates[update.Control] = update.Value
	}
	assert.Equal(t, "Ada", updates["_wizard_author"])
	assert.Equal(t, "Canary", updates["_wizard_deployment_strategy"])
}

func TestRestoreRejectsBadInput(t *testing.T) {
	s := newServer(t)

	rec := do(t, s, http.MethodPost, "/v1/restore", `[1, 2]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec)["error"], "payload root")

	rec = do(t, s, http.MethodPost, "/v1/restore", `{"broken"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/payload", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	s := newServer(t)

	rec := do(t, s, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	started := decodeBody[session.Session](t, rec)
	require.NotEmpty(t, started.ID)
	assert.Equal(t, "/v1/sessions/"+started.ID, rec.Header().Get("Location"))
	assert.Equal(t, `"`+started.Meta.ETag+`"`, rec.Header().Get("ETag"))

	path := "/v1/sessions/" + started.ID
	rec = do(t, s, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, started.Meta.ETag, decodeBody[session.Session](t, rec).Meta.ETag)

	rec = do(t, s, http.MethodPatch, path, `{"updates":[{"control":"_wizard_author","value":"Ada"}]}`, "If-Match", "stale")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = do(t, s, http.MethodPatch, path, `{"updates":[{"control":"_wizard_author","value":"Ada"}]}`, "If-Match", `"`+started.Meta.ETag+`"`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[session.Session](t, rec)
	assert.Equal(t, "Ada", updated.State["_wizard_author"])
	assert.NotEqual(t, started.Meta.ETag, updated.Meta.ETag)

	rec = do(t, s, http.MethodGet, path+"/payload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"`+updated.Meta.ETag+`"`, rec.Header().Get("ETag"))
	exported := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Ada", exported["initiative"].(map[string]any)["author"])

	rec = do(t, s, http.MethodPut, path+"/payload", `{"initiative":{"author":"Grace","deployment_strategy":"Rolling"}}`, "If-Match", updated.Meta.ETag)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	imported := decodeBody[importResponse](t, rec)
	assert.Equal(t, "Grace", imported.Session.State["_wizard_author"])
	assert.Equal(t, "Rolling", imported.Session.State["_wizard_deployment_strategy_other"])
	assert.NotNil(t, imported.Warnings)

	rec = do(t, s, http.MethodPut, path+"/payload", `"scalar"`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	s := newServer(t)
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/v1/sessions/missing", ""},
		{http.MethodGet, "/v1/sessions/missing/payload", ""},
		{http.MethodPatch, "/v1/sessions/missing", `{"updates":[]}`},
		{http.MethodPut, "/v1/sessions/missing/payload", `{}`},
	} {
		rec := do(t, s, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}
}
