package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/lightguard-core/internal/auth"
	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/logging"
	"github.com/nerrad567/lightguard-core/internal/journal"
	"github.com/nerrad567/lightguard-core/internal/lighting"
)

const (
	testSecret = "api-test-secret"
	testIssuer = "lightguard-test"
)

// ─── Mocks ─────────────────────────────────────────────────────────────

type mockStatus struct {
	out control.Output
	ok  bool
}

func (m *mockStatus) Latest() (control.Output, bool) { return m.out, m.ok }

type mockOverride struct {
	mu   sync.Mutex
	mode *lighting.BeamMode
	sets int
}

func (m *mockOverride) SetManual(mode *lighting.BeamMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	m.sets++
}

func (m *mockOverride) Manual() *lighting.BeamMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

type mockFaults struct {
	filter journal.Filter
	result *journal.ListResult
	err    error
}

func (m *mockFaults) List(_ context.Context, f journal.Filter) (*journal.ListResult, error) {
	m.filter = f
	return m.result, m.err
}

type checkFunc func(context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// ─── Helpers ───────────────────────────────────────────────────────────

type testEnv struct {
	srv      *Server
	handler  http.Handler
	status   *mockStatus
	override *mockOverride
	faults   *mockFaults
}

func testServer(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		status:   &mockStatus{},
		override: &mockOverride{},
		faults:   &mockFaults{result: &journal.ListResult{Entries: []journal.Entry{}, Limit: 50}},
	}
	srv, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Port: 0},
		WS:       config.WebSocketConfig{MaxMessageSize: 4096, PingInterval: 30, PongTimeout: 10},
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret, Issuer: testIssuer}},
		Logger:   logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", io.Discard),
		Status:   env.status,
		Override: env.override,
		Faults:   env.faults,
		Version:  "test",
	})
	require.NoError(t, err)
	env.srv = srv
	env.handler = srv.buildRouter()
	return env
}

func token(t *testing.T, role auth.Role) string {
	t.Helper()
	tok, err := auth.GenerateToken("tester", role, testSecret, testIssuer, time.Minute)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// ─── Construction ──────────────────────────────────────────────────────

func TestNew_RequiresDeps(t *testing.T) {
	logger := logging.NewWithWriter(config.LoggingConfig{Level: "error"}, "test", io.Discard)

	tests := []struct {
		name string
		deps Deps
	}{
		{name: "no logger", deps: Deps{Status: &mockStatus{}, Override: &mockOverride{}}},
		{name: "no status", deps: Deps{Logger: logger, Override: &mockOverride{}}},
		{name: "no override", deps: Deps{Logger: logger, Status: &mockStatus{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.deps)
			assert.Error(t, err)
		})
	}
}

// ─── Health and status ─────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := testServer(t)
	env.status.out = control.Output{Tick: 7, SystemState: failsafe.StateNormal}
	env.status.ok = true
	env.srv.checks = map[string]HealthChecker{
		"database": checkFunc(func(context.Context) error { return nil }),
	}

	rec := env.do(t, http.MethodGet, "/api/v1/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "NORMAL", body["system_state"])
	assert.EqualValues(t, 7, body["tick"])
	assert.Equal(t, map[string]any{"database": "ok"}, body["components"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealth_Degraded(t *testing.T) {
	env := testServer(t)
	env.srv.checks = map[string]HealthChecker{
		"mqtt": checkFunc(func(context.Context) error { return errors.New("mqtt: not connected") }),
	}

	rec := env.do(t, http.MethodGet, "/api/v1/health", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"mqtt": "mqtt: not connected"}, body["components"])
	assert.NotContains(t, body, "system_state")
}

func TestStatus(t *testing.T) {
	env := testServer(t)

	rec := env.do(t, http.MethodGet, "/api/v1/status", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "before the first tick")

	env.status.out = control.Output{Tick: 3, BeamMode: lighting.BeamHigh, SystemState: failsafe.StateNormal, Rule: control.RuleBaseline}
	env.status.ok = true

	rec = env.do(t, http.MethodGet, "/api/v1/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "HIGH", body["beam_mode"])
	assert.Equal(t, string(control.RuleBaseline), body["rule"])
	assert.EqualValues(t, 3, body["tick"])
}

// ─── Faults ────────────────────────────────────────────────────────────

func TestFaults_RequiresToken(t *testing.T) {
	env := testServer(t)

	tests := []struct {
		name   string
		bearer string
		want   int
	}{
		{name: "missing", bearer: "", want: http.StatusUnauthorized},
		{name: "garbage", bearer: "not.a.jwt", want: http.StatusUnauthorized},
		{name: "viewer", bearer: token(t, auth.RoleViewer), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/faults", "", tt.bearer)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestFaults_Filters(t *testing.T) {
	env := testServer(t)
	tok := token(t, auth.RoleViewer)

	rec := env.do(t, http.MethodGet,
		"/api/v1/faults?type=fault&kind=timing_fault&severity=critical&since=2026-03-01T10:00:00Z&limit=10&offset=20", "", tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	want := journal.Filter{
		Type:     journal.EntryFault,
		Kind:     failsafe.KindTiming,
		Severity: failsafe.SeverityCritical,
		Since:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Limit:    10,
		Offset:   20,
	}
	assert.Equal(t, want, env.faults.filter)
}

func TestFaults_BadQuery(t *testing.T) {
	env := testServer(t)
	tok := token(t, auth.RoleViewer)

	for _, q := range []string{
		"type=NOTE",
		"kind=BROWNOUT",
		"severity=INFO",
		"since=yesterday",
		"limit=-1",
		"offset=ten",
	} {
		t.Run(q, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/faults?"+q, "", tok)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, ErrCodeBadRequest, decode[Error](t, rec).Code)
		})
	}
}

func TestFaults_StoreError(t *testing.T) {
	env := testServer(t)
	env.faults.err = errors.New("disk gone")

	rec := env.do(t, http.MethodGet, "/api/v1/faults", "", token(t, auth.RoleViewer))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFaults_NotConfigured(t *testing.T) {
	env := testServer(t)
	env.srv.faults = nil

	rec := env.do(t, http.MethodGet, "/api/v1/faults", "", token(t, auth.RoleViewer))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// ─── Override ──────────────────────────────────────────────────────────

func TestOverride_SetAndClear(t *testing.T) {
	env := testServer(t)
	tok := token(t, auth.RoleDriver)

	rec := env.do(t, http.MethodPut, "/api/v1/override", `{"mode":"high_beam"}`, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, env.override.Manual())
	assert.Equal(t, lighting.BeamHigh, *env.override.Manual())
	assert.Equal(t, `{"mode":"HIGH"}`, strings.TrimSpace(rec.Body.String()))

	rec = env.do(t, http.MethodGet, "/api/v1/override", "", tok)
	assert.Equal(t, `{"mode":"HIGH"}`, strings.TrimSpace(rec.Body.String()))

	for _, body := range []string{`{"mode":null}`, `{"mode":""}`, `{"mode":"auto"}`, `{}`} {
		env.override.SetManual(&[]lighting.BeamMode{lighting.BeamLow}[0])
		rec = env.do(t, http.MethodPut, "/api/v1/override", body, tok)
		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.Nil(t, env.override.Manual(), body)
		assert.Equal(t, `{"mode":null}`, strings.TrimSpace(rec.Body.String()), body)
	}
}

func TestOverride_Rejects(t *testing.T) {
	env := testServer(t)

	tests := []struct {
		name   string
		body   string
		bearer string
		want   int
	}{
		{name: "no token", body: `{"mode":"HIGH"}`, want: http.StatusUnauthorized},
		{name: "viewer cannot write", body: `{"mode":"HIGH"}`, bearer: token(t, auth.RoleViewer), want: http.StatusForbidden},
		{name: "unknown mode", body: `{"mode":"FOG"}`, bearer: token(t, auth.RoleDriver), want: http.StatusBadRequest},
		{name: "unknown field", body: `{"beam":"HIGH"}`, bearer: token(t, auth.RoleDriver), want: http.StatusBadRequest},
		{name: "not json", body: `HIGH`, bearer: token(t, auth.RoleService), want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/api/v1/override", tt.body, tt.bearer)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Zero(t, env.override.sets, "rejected requests must not touch the inbox")
}

// ─── Middleware ────────────────────────────────────────────────────────

func TestCORS(t *testing.T) {
	env := testServer(t)
	env.srv.cfg.CORS.AllowedOrigins = []string{"http://dash.local"}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://dash.local")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://dash.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowedMethods, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	env := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	env := testServer(t)
	h := env.srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ─── Lifecycle and WebSocket ───────────────────────────────────────────

func TestServer_StartStreamsCommands(t *testing.T) {
	env := testServer(t)
	env.status.out = control.Output{Tick: 41, BeamMode: lighting.BeamLow}
	env.status.ok = true

	assert.Error(t, env.srv.HealthCheck(context.Background()), "before Start")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, env.srv.Start(ctx))
	t.Cleanup(func() { _ = env.srv.Close() })
	require.NoError(t, env.srv.HealthCheck(ctx))

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+env.srv.Addr()+"/api/v1/ws", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": WSTypeSubscribe, "id": "1", "payload": map[string]any{"channels": []string{"command"}},
	}))

	var ack WSMessage
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, WSTypeResponse, ack.Type)
	assert.Equal(t, "1", ack.ID)

	var snap struct {
		Type      string         `json:"type"`
		EventType string         `json:"event_type"`
		Payload   control.Output `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, WSTypeEvent, snap.Type)
	assert.Equal(t, "command", snap.EventType)
	assert.Equal(t, uint64(41), snap.Payload.Tick)

	env.srv.Hub().Broadcast("command", control.Output{Tick: 42})
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, uint64(42), snap.Payload.Tick)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "shout"}))
	var errMsg WSMessage
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, WSTypeError, errMsg.Type)
}
