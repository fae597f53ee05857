package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerybot/internal/catalog"
	"bakerybot/internal/handler"
	"bakerybot/internal/model"
	"bakerybot/internal/oracle"
	"bakerybot/internal/repository"
	"bakerybot/internal/router"
	"bakerybot/internal/service"
	"bakerybot/internal/store"
)

type env struct {
	server *httptest.Server
	engine *service.Engine
	repo   *repository.MemoryDocumentRepository
	now    time.Time
}

// keyword oracle: "status" asks for the report, "ignore" is ignored and
// anything else is "<item> is <status>".
func keywordOracle(_ context.Context, req oracle.Request) (*model.Intent, error) {
	switch req.Text {
	case "status":
		return &model.Intent{Kind: model.IntentStatus}, nil
	case "ignore":
		return &model.Intent{Kind: model.IntentIgnore}, nil
	}
	item, status, ok := strings.Cut(req.Text, " is ")
	if !ok {
		return nil, oracle.ErrUnparseable
	}
	return &model.Intent{
		Kind:    model.IntentUpdate,
		Updates: []model.ItemUpdate{{Item: item, Status: oracle.NormalizeStatus(status)}},
	}, nil
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		repo: repository.NewMemoryDocumentRepository(),
		now:  time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	cat := catalog.Default()
	st := store.New(e.repo, store.Options{Categories: cat.Categories()})
	e.engine = service.NewEngine(st, cat, service.Options{Location: time.UTC})
	e.engine.Now = func() time.Time { return e.now }
	reporter := service.NewReporter(st, cat, time.UTC)
	reporter.Now = e.engine.Now
	assistant := service.NewAssistant(oracle.Func(keywordOracle), e.engine, reporter, nil, nil)

	r := router.New(router.Config{
		Handler: handler.New("bakerybot", "test", handler.ReadinessCheck{
			Name:  "store",
			Check: func(ctx context.Context) error { _, err := st.Stats(ctx); return err },
		}),
		MessageHandler:   handler.NewMessageHandler(assistant),
		InventoryHandler: handler.NewInventoryHandler(reporter),
		PendingHandler:   handler.NewPendingHandler(e.engine),
		AdminHandler:     handler.NewAdminHandler(st, assistant, "memory", "none"),
	})
	e.server = httptest.NewServer(r)
	t.Cleanup(e.server.Close)
	return e
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Limit int `json:"limit"`
	} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *env) do(t *testing.T, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func (e *env) send(t *testing.T, text, requester string) handler.MessageResponse {
	t.Helper()
	body, _ := json.Marshal(handler.MessageRequest{Text: text, RequesterID: requester})
	resp, env := e.do(t, http.MethodPost, "/api/v1/messages", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out handler.MessageResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestPostMessage(t *testing.T) {
	e := newEnv(t)

	out := e.send(t, "Flour is out", "u1")
	assert.True(t, out.Replied)
	assert.Equal(t, "Got it, updated Flour (out).", out.Reply)

	out = e.send(t, "ignore", "u1")
	assert.False(t, out.Replied)
	assert.Empty(t, out.Reply)

	out = e.send(t, "gibberish", "u1")
	assert.False(t, out.Replied)
}

func TestPostMessageValidation(t *testing.T) {
	e := newEnv(t)

	resp, env := e.do(t, http.MethodPost, "/api/v1/messages", `{"text":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	resp, env = e.do(t, http.MethodPost, "/api/v1/messages", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)

	huge := `{"requester_id":"u1","text":"` + strings.Repeat("a", 17<<10) + `"}`
	resp, env = e.do(t, http.MethodPost, "/api/v1/messages", huge)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "message too large", env.Error.Message)
}

func TestInventoryEndpoints(t *testing.T) {
	e := newEnv(t)
	e.send(t, "Flour is out", "u1")
	e.now = e.now.Add(time.Minute)
	e.send(t, "Lids is low", "u1")

	resp, env := e.do(t, http.MethodGet, "/api/v1/inventory", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, []string{"Flour"}, snap.Out)
	assert.Equal(t, []string{"Lids"}, snap.Low)

	resp, env = e.do(t, http.MethodGet, "/api/v1/inventory/history?limit=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []model.HistoryEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Lids", entries[0].Item)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Limit)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/inventory/history?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = e.do(t, http.MethodGet, "/api/v1/inventory/predictions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestInventoryReportIsPlainText(t *testing.T) {
	e := newEnv(t)
	e.send(t, "Flour is out", "u1")

	resp, err := http.Get(e.server.URL + "/api/v1/inventory/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "🔴 Out: Flour")
}

func TestClarificationEndpoints(t *testing.T) {
	e := newEnv(t)

	resp, env := e.do(t, http.MethodGet, "/api/v1/clarifications/u1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	out := e.send(t, "cups is low", "u1")
	assert.Contains(t, out.Reply, "Which cups do you mean")

	resp, env = e.do(t, http.MethodGet, "/api/v1/clarifications/u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var c model.PendingClarification
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "cups", c.RawPhrase)
	assert.Len(t, c.Options, 4)

	resp, env = e.do(t, http.MethodDelete, "/api/v1/clarifications/u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"resolved":true}`, string(env.Data))

	resp, env = e.do(t, http.MethodDelete, "/api/v1/clarifications/u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"resolved":false}`, string(env.Data))
}

func TestReminderEndpoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tonight, err := e.engine.Pending.AddReminder(ctx, "u1", "count the till", "tonight")
	require.NoError(t, err)
	tomorrow, err := e.engine.Pending.AddReminder(ctx, "u1", "order flour", "tomorrow")
	require.NoError(t, err)

	_, env := e.do(t, http.MethodGet, "/api/v1/reminders/due", "")
	assert.JSONEq(t, `[]`, string(env.Data))

	e.now = time.Date(2025, 3, 10, 20, 15, 0, 0, time.UTC)
	_, env = e.do(t, http.MethodGet, "/api/v1/reminders/due", "")
	var due []model.Reminder
	require.NoError(t, json.Unmarshal(env.Data, &due))
	require.Len(t, due, 1)
	assert.Equal(t, tonight.ID, due[0].ID)

	// querying does not resolve
	_, env = e.do(t, http.MethodGet, "/api/v1/reminders/due", "")
	require.NoError(t, json.Unmarshal(env.Data, &due))
	assert.Len(t, due, 1)

	resp, env := e.do(t, http.MethodPost, "/api/v1/reminders/due/resolve", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &due))
	require.Len(t, due, 1)
	assert.True(t, due[0].Resolved)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/reminders/"+strings.ToUpper(tomorrow.ID)+"/resolve", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, "/api/v1/reminders/"+tomorrow.ID+"/resolve", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, "/api/v1/reminders/not-a-uuid/resolve", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpsEndpoints(t *testing.T) {
	e := newEnv(t)

	resp, env := e.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, _ = e.do(t, http.MethodGet, "/api/v1/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = e.do(t, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status handler.StatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "bakerybot", status.Service)
	assert.Equal(t, "ok", status.Status)

	e.send(t, "Flour is out", "u1")
	resp, env = e.do(t, http.MethodGet, "/api/v1/admin/stats", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, "memory", stats["db_type"])
	inv := stats["inventory"].(map[string]interface{})
	assert.EqualValues(t, 1, inv["tracked_items"])
}

func TestReadyReportsFailingCheck(t *testing.T) {
	h := handler.New("bakerybot", "test", handler.ReadinessCheck{
		Name:  "store",
		Check: func(context.Context) error { return errors.New("unreachable") },
	})
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")
}

func TestRequestIDIsPropagated(t *testing.T) {
	e := newEnv(t)
	req, err := http.NewRequest(http.MethodGet, e.server.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "bridge-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "bridge-42", resp.Header.Get("X-Request-ID"))
}
