package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orchestratorx "github.com/tanpawarit/contact-assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/contact-assistant/agent/contact"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

type fakeAgent struct {
	result  orchestratorx.TurnResult
	prompts []string
}

func (f *fakeAgent) RunAgentTurn(_ context.Context, prompt string) orchestratorx.TurnResult {
	f.prompts = append(f.prompts, prompt)
	return f.result
}

type failingStore struct {
	contact.Store
}

func (failingStore) List(context.Context, contact.ListFilter) ([]contact.Contact, error) {
	return nil, assert.AnError
}

func newTestServer(t *testing.T, store contact.Store, agent AgentRunner) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(store, agent, Config{}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, contact.NewMemoryStore(), &fakeAgent{})
	status, body := do(t, http.MethodGet, srv.URL+"/api/health", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestContactsLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, contact.NewMemoryStore(), &fakeAgent{})
	base := srv.URL + "/api/contacts"

	status, body := do(t, http.MethodPost, base, `{"name":"Jane Doe","email":"jane@x.com","phone":""}`)
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Jane Doe", data["name"])
	assert.Nil(t, data["phone"])
	assert.Nil(t, data["lastContactedAt"])
	id := int(data["id"].(float64))

	status, body = do(t, http.MethodPost, base, `{"name":"Other","email":"jane@x.com"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "A contact with this email already exists", body["error"])

	status, body = do(t, http.MethodGet, base+"?q=JANE", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = do(t, http.MethodPut, base+"/"+strconv.Itoa(id), `{"phone":"555-0100","notes":null}`)
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]any)
	assert.Equal(t, "555-0100", data["phone"])
	assert.Equal(t, "Jane Doe", data["name"])

	status, body = do(t, http.MethodDelete, base+"/"+strconv.Itoa(id), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = do(t, http.MethodDelete, base+"/"+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Contact not found", body["error"])
}

func TestContactsValidation(t *testing.T) {
	t.Parallel()

	store := contact.NewMemoryStore()
	srv := newTestServer(t, store, &fakeAgent{})
	base := srv.URL + "/api/contacts"

	status, body := do(t, http.MethodPost, base, `{"phone":"555"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, identityRequiredMessage, body["error"])

	status, _ = do(t, http.MethodPost, base, `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, http.MethodPut, base+"/abc", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid contact ID", body["error"])

	status, _ = do(t, http.MethodPut, base+"/99", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, status)

	name := "Solo"
	created, err := store.Insert(context.Background(), contact.NewContact{Name: &name})
	require.NoError(t, err)
	status, body = do(t, http.MethodPut, base+"/"+strconv.Itoa(int(created.ID)), `{"name":null}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, identityRequiredMessage, body["error"])
}

func TestContactsUpdateConflict(t *testing.T) {
	t.Parallel()

	store := contact.NewMemoryStore()
	a, b := "a@x.com", "b@x.com"
	_, err := store.Insert(context.Background(), contact.NewContact{Email: &a})
	require.NoError(t, err)
	second, err := store.Insert(context.Background(), contact.NewContact{Email: &b})
	require.NoError(t, err)

	srv := newTestServer(t, store, &fakeAgent{})
	status, _ := do(t, http.MethodPut, srv.URL+"/api/contacts/"+strconv.Itoa(int(second.ID)), `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusConflict, status)
}

func TestContactsListFailure(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, failingStore{Store: contact.NewMemoryStore()}, &fakeAgent{})
	status, body := do(t, http.MethodGet, srv.URL+"/api/contacts", "")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to fetch contacts", body["error"])
	assert.Equal(t, assert.AnError.Error(), body["message"])
}

func TestAgentEndpoint(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{result: orchestratorx.TurnResult{Success: true, Response: "Hi"}}
	srv := newTestServer(t, contact.NewMemoryStore(), agent)

	status, body := do(t, http.MethodPost, srv.URL+"/api/agent", `{"prompt":"hello"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Hi", body["response"])
	assert.Equal(t, []any{}, body["toolsUsed"])
	assert.Equal(t, []string{"hello"}, agent.prompts)
}

func TestAgentEndpointRejectsNonStringPrompt(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{}
	srv := newTestServer(t, contact.NewMemoryStore(), agent)

	for _, body := range []string{`{"prompt":42}`, `{}`, `[]`, ``} {
		status, resp := do(t, http.MethodPost, srv.URL+"/api/agent", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, invalidPromptMessage, resp["error"], body)
	}
	assert.Empty(t, agent.prompts)
}

func TestAgentEndpointFailureStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind contractx.ErrorKind
		want int
	}{
		{contractx.KindValidation, http.StatusBadRequest},
		{contractx.KindServiceUnavailable, http.StatusServiceUnavailable},
		{contractx.KindUpstream, http.StatusInternalServerError},
		{contractx.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		agent := &fakeAgent{result: orchestratorx.TurnResult{
			Error:   "Failed to process agent request",
			Message: "boom",
			Kind:    tc.kind,
		}}
		srv := newTestServer(t, contact.NewMemoryStore(), agent)

		status, body := do(t, http.MethodPost, srv.URL+"/api/agent", `{"prompt":"hello"}`)
		assert.Equal(t, tc.want, status, string(tc.kind))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, string(tc.kind), body["kind"])
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, contact.NewMemoryStore(), &fakeAgent{})
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/agent", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
