package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/points-backend/internal/auth"
	"github.com/baharkarakas/points-backend/internal/config"
	"github.com/baharkarakas/points-backend/internal/repository/memory"
	"github.com/baharkarakas/points-backend/internal/services"
)

type testServer struct {
	t   *testing.T
	h   http.Handler
	now time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repos := memory.New().Repositories()
	ts := &testServer{t: t, now: time.Now().UTC()}
	tm := auth.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	ts.h = NewRouter(RouterDeps{
		Cfg:        config.Config{RateRPS: 0},
		TM:         tm,
		UserSvc:    services.NewUserService(repos.Users, 500),
		BalanceSvc: services.NewBalanceService(repos.Accounts),
		TransferSvc: services.NewTransferService(repos, services.NewLocalLocker(), services.TransferOptions{
			Window:           10 * time.Minute,
			RecheckOnConfirm: true,
			Now:              func() time.Time { return ts.now },
		}),
	})
	return ts
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

// register returns the user id and access token.
func (s *testServer) register(name, email string) (string, string) {
	s.t.Helper()
	rec, out := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "password1",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	user := out["user"].(map[string]any)
	tokens := out["tokens"].(map[string]any)
	return user["id"].(string), tokens["access_token"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestTransferFlow(t *testing.T) {
	s := newTestServer(t)
	aID, aTok := s.register("Alice", "alice@example.com")
	bID, bTok := s.register("Bob", "bob@example.com")

	rec, out := s.do(http.MethodPost, "/api/v1/transfers", aTok, map[string]any{
		"receiverEmail": "Bob@Example.com", "points": 200,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Transfer created", out["message"])
	tr := out["transfer"].(map[string]any)
	assert.Equal(t, "pending", tr["status"])
	assert.Equal(t, aID, tr["sender_id"])
	assert.Equal(t, bID, tr["receiver_id"])
	id := tr["id"].(string)

	// Only the sender may confirm.
	rec, out = s.do(http.MethodPost, "/api/v1/transfers/"+id+"/confirm", bTok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "you are not the sender", out["error"])

	rec, out = s.do(http.MethodPost, "/api/v1/transfers/"+id+"/confirm", aTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Transfer confirmed", out["message"])
	assert.Equal(t, "confirmed", out["transfer"].(map[string]any)["status"])

	rec, out = s.do(http.MethodPost, "/api/v1/transfers/"+id+"/confirm", aTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid or already confirmed transfer", out["error"])

	rec, out = s.do(http.MethodGet, "/api/v1/users/me", aTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 300, out["points"])

	rec, out = s.do(http.MethodGet, "/api/v1/balances/current", bTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 700, out["points"])

	rec, out = s.do(http.MethodGet, "/api/v1/transfers/"+id, bTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, out["id"])

	rec, out = s.do(http.MethodGet, "/api/v1/transfers?page=1&limit=5&sortBy=createdAt:desc", bTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, out["total_items"])
	assert.EqualValues(t, 1, out["total_pages"])
	assert.EqualValues(t, 5, out["page_size"])
	assert.Len(t, out["data"], 1)
}

func TestTransferErrors(t *testing.T) {
	s := newTestServer(t)
	_, aTok := s.register("Alice", "alice@example.com")
	s.register("Bob", "bob@example.com")
	_, cTok := s.register("Carol", "carol@example.com")

	rec, out := s.do(http.MethodPost, "/api/v1/transfers", aTok, map[string]any{
		"receiverEmail": "bob@example.com", "points": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := out["transfer"].(map[string]any)["id"].(string)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		msg    string
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/transfers", status: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/v1/transfers", token: "nope", status: http.StatusUnauthorized},
		{name: "missing points", method: http.MethodPost, path: "/api/v1/transfers", token: aTok,
			body: map[string]any{"receiverEmail": "bob@example.com"}, status: http.StatusBadRequest},
		{name: "fractional points", method: http.MethodPost, path: "/api/v1/transfers", token: aTok,
			body: map[string]any{"receiverEmail": "bob@example.com", "points": 1.5}, status: http.StatusBadRequest},
		{name: "zero points", method: http.MethodPost, path: "/api/v1/transfers", token: aTok,
			body: map[string]any{"receiverEmail": "bob@example.com", "points": 0}, status: http.StatusBadRequest},
		{name: "bad email", method: http.MethodPost, path: "/api/v1/transfers", token: aTok,
			body: map[string]any{"receiverEmail": "bob", "points": 1}, status: http.StatusBadRequest},
		{name: "unknown receiver", method: http.MethodPost, path: "/api/v1/transfers", token: aTok,
			body: map[string]any{"receiverEmail": "zed@example.com", "points": 1}, status: http.StatusNotFound, msg: "receiver not found"},
		{name: "self transfer", method: http.MethodPost, path: "/api/v1/transfers", token: aTok,
			body: map[string]any{"receiverEmail": "alice@example.com", "points": 1}, status: http.StatusBadRequest, msg: "cannot transfer to yourself"},
		{name: "insufficient", method: http.MethodPost, path: "/api/v1/transfers", token: aTok,
			body: map[string]any{"receiverEmail": "bob@example.com", "points": 501}, status: http.StatusBadRequest, msg: "insufficient points"},
		{name: "unknown transfer", method: http.MethodGet, path: "/api/v1/transfers/does-not-exist", token: aTok,
			status: http.StatusNotFound, msg: "transfer not found"},
		{name: "outsider view", method: http.MethodGet, path: "/api/v1/transfers/" + id, token: cTok,
			status: http.StatusUnauthorized},
		{name: "bad page", method: http.MethodGet, path: "/api/v1/transfers?page=0", token: aTok, status: http.StatusBadRequest},
		{name: "bad sort", method: http.MethodGet, path: "/api/v1/transfers?sortBy=password:asc", token: aTok, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := s.do(tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.msg != "" {
				assert.Equal(t, tc.msg, out["error"])
			}
		})
	}
}

func TestConfirmExpiredOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, aTok := s.register("Alice", "alice@example.com")
	s.register("Bob", "bob@example.com")

	_, out := s.do(http.MethodPost, "/api/v1/transfers", aTok, map[string]any{
		"receiverEmail": "bob@example.com", "points": 10,
	})
	id := out["transfer"].(map[string]any)["id"].(string)

	s.now = s.now.Add(11 * time.Minute)
	rec, out := s.do(http.MethodPost, "/api/v1/transfers/"+id+"/confirm", aTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "transfer has expired", out["error"])
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")

	rec, _ := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice2", "email": "alice@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, out := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ALICE@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	refresh := out["tokens"].(map[string]any)["refresh_token"].(string)

	rec, out = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := out["tokens"].(map[string]any)["access_token"].(string)

	rec, _ = s.do(http.MethodGet, "/api/v1/users/me", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A refresh token is not an access token.
	rec, _ = s.do(http.MethodGet, "/api/v1/users/me", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
