package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/ws"
)

type createResponse struct {
	MatchID     string        `json:"match_id"`
	PlayerToken string        `json:"player_token"`
	Snapshot    game.Snapshot `json:"snapshot"`
}

func setupRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:           "development",
		ArenaWidth:            game.DefaultArenaWidth,
		ArenaHeight:           game.DefaultArenaHeight,
		TickRate:              1000,
		SnapshotEveryTicks:    30,
		MaxActiveMatches:      2,
		JWTSecret:             "routes-test-secret",
		PlayerTokenTTLMinutes: 60,
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	go hub.Run(ctx)

	matches := session.NewManager(nil, nil, cfg)
	matches.SetBroadcaster(hub)
	t.Cleanup(func() {
		matches.Shutdown()
		cancel()
	})

	router := gin.New()
	SetupRoutes(router, nil, nil, cfg, matches, hub)
	return router, matches
}

func do(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createMatch(t *testing.T, router *gin.Engine) createResponse {
	t.Helper()
	w := do(router, http.MethodPost, "/api/v1/matches", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var resp createResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)
	w := do(router, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["status"] != "ok" || body["database"] != "disabled" || body["redis"] != "disabled" {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestCreateMatch(t *testing.T) {
	router, _ := setupRouter(t)
	resp := createMatch(t, router)

	if resp.MatchID == "" || resp.PlayerToken == "" {
		t.Fatalf("missing id or token: %+v", resp)
	}
	if resp.Snapshot.Match.Phase != game.PhaseIdle || resp.Snapshot.Prompt != "Start Game" {
		t.Errorf("new match should be idle with a start prompt, got %+v", resp.Snapshot.Match)
	}

	w := do(router, http.MethodGet, "/api/v1/matches", "")
	if !strings.Contains(w.Body.String(), resp.MatchID) {
		t.Errorf("list should include %s: %s", resp.MatchID, w.Body.String())
	}
	if got := w.Header().Get("X-Active-Matches"); got != "1" {
		t.Errorf("expected X-Active-Matches 1, got %q", got)
	}
}

func TestStartAndRestartRequireToken(t *testing.T) {
	router, _ := setupRouter(t)
	resp := createMatch(t, router)
	base := "/api/v1/matches/" + resp.MatchID

	if w := do(router, http.MethodPost, base+"/start", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("start without token: expected 401, got %d", w.Code)
	}

	if w := do(router, http.MethodPost, base+"/start", resp.PlayerToken); w.Code != http.StatusAccepted {
		t.Fatalf("start: expected 202, got %d (%s)", w.Code, w.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	var snap struct {
		Snapshot game.Snapshot `json:"snapshot"`
	}
	for time.Now().Before(deadline) {
		w := do(router, http.MethodGet, base, "")
		json.Unmarshal(w.Body.Bytes(), &snap)
		if snap.Snapshot.Match.Phase == game.PhaseRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Snapshot.Match.Phase != game.PhaseRunning {
		t.Fatalf("match never started, phase %s", snap.Snapshot.Match.Phase)
	}

	if w := do(router, http.MethodPost, base+"/start", resp.PlayerToken); w.Code != http.StatusConflict {
		t.Errorf("second start: expected 409, got %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/restart", resp.PlayerToken); w.Code != http.StatusConflict {
		t.Errorf("restart while running: expected 409, got %d", w.Code)
	}
}

func TestEndMatch(t *testing.T) {
	router, _ := setupRouter(t)
	resp := createMatch(t, router)
	base := "/api/v1/matches/" + resp.MatchID

	if w := do(router, http.MethodDelete, base, resp.PlayerToken); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	// Without Redis nothing remembers a stopped match.
	if w := do(router, http.MethodGet, base, ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestMaxActiveMatches(t *testing.T) {
	router, _ := setupRouter(t)
	createMatch(t, router)
	createMatch(t, router)

	if w := do(router, http.MethodPost, "/api/v1/matches", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 past the limit, got %d", w.Code)
	}
}

func TestMatchLookupAndHistory(t *testing.T) {
	router, _ := setupRouter(t)

	testCases := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown match", "/api/v1/matches/6f1c1f1e-0000-4000-8000-000000000000", http.StatusNotFound},
		{"malformed id", "/api/v1/matches/not-a-uuid", http.StatusNotFound},
		{"history", "/api/v1/matches/history", http.StatusOK},
		{"history with limit", "/api/v1/matches/history?limit=5", http.StatusOK},
		{"history bad limit", "/api/v1/matches/history?limit=abc", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(router, http.MethodGet, tc.path, "")
			if w.Code != tc.status {
				t.Errorf("expected %d, got %d (%s)", tc.status, w.Code, w.Body.String())
			}
		})
	}

	w := do(router, http.MethodGet, "/api/v1/matches/history", "")
	var body struct {
		Results   []interface{} `json:"results"`
		Persisted bool          `json:"persisted"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Persisted || len(body.Results) != 0 {
		t.Errorf("history without a database should be empty and unpersisted, got %+v", body)
	}
}

func TestRestartRequiresEndedMatch(t *testing.T) {
	router, matches := setupRouter(t)
	resp := createMatch(t, router)

	w := do(router, http.MethodPost, "/api/v1/matches/"+resp.MatchID+"/restart", resp.PlayerToken)
	if w.Code != http.StatusConflict {
		t.Fatalf("restart while idle: expected 409, got %d (%s)", w.Code, w.Body.String())
	}

	s, err := matches.Get(resp.MatchID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if phase := s.Snapshot().Match.Phase; phase != game.PhaseIdle {
		t.Errorf("rejected restart changed the phase to %s", phase)
	}
}
