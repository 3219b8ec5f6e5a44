package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/molubot/molubot/internal/admin"
	"github.com/molubot/molubot/internal/bookmark"
	"github.com/molubot/molubot/internal/config"
	"github.com/molubot/molubot/internal/prompt"
	"github.com/molubot/molubot/internal/provider"
	"github.com/molubot/molubot/internal/router"
	"github.com/molubot/molubot/internal/stats"
	"github.com/molubot/molubot/internal/usage"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	last := req.Messages[len(req.Messages)-1]
	return &provider.ChatResponse{
		Content: "echo: " + last.Content,
		Usage:   provider.Usage{InputTokens: 1, OutputTokens: 1},
	}, nil
}

func newTestGateway(t *testing.T) (*Gateway, *stats.Ledger) {
	t.Helper()
	dir := t.TempDir()

	admins := admin.New(filepath.Join(dir, "admins.json"))
	guides := bookmark.New(filepath.Join(dir, "guides.json"), admins.IsAdmin)
	sites := bookmark.New(filepath.Join(dir, "sites.json"), nil)
	statsLedger := stats.New(filepath.Join(dir, "stats.json"))
	usageLedger := usage.New(filepath.Join(dir, "usage.json"), usage.LeastSquares{})
	prompts := prompt.New("기본", 0.3)

	cfg := config.BotConfig{CommandPrefix: "*", AdminRoom: "관리방", AIChatEnabled: true, HistoryWindow: 8}
	r := router.New(cfg, admins, guides, sites, statsLedger, usageLedger, prompts, echoCompleter{}, nil)
	return New(config.GatewayConfig{}, r, statsLedger), statsLedger
}

func postMessage(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMessageEndpoint(t *testing.T) {
	g, _ := newTestGateway(t)
	h := g.Handler()

	rec := postMessage(t, h, `{"user_id":"u1","room":"방","message":"*ping"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response == nil || *resp.Response != "pong!" {
		t.Errorf("unexpected response %v", resp.Response)
	}
}

func TestMessageEndpointRejectsBadBody(t *testing.T) {
	g, _ := newTestGateway(t)
	h := g.Handler()

	if rec := postMessage(t, h, `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", rec.Code)
	}
	if rec := postMessage(t, h, `{"user_id":"u1"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing fields, got %d", rec.Code)
	}
}

func TestMessageEndpointNullResponse(t *testing.T) {
	// AI chat disabled: a non-command message yields a null response.
	dir := t.TempDir()
	admins := admin.New(filepath.Join(dir, "admins.json"))
	guides := bookmark.New(filepath.Join(dir, "guides.json"), admins.IsAdmin)
	sites := bookmark.New(filepath.Join(dir, "sites.json"), nil)
	statsLedger := stats.New(filepath.Join(dir, "stats.json"))
	usageLedger := usage.New(filepath.Join(dir, "usage.json"), usage.LeastSquares{})
	cfg := config.BotConfig{CommandPrefix: "*", AdminRoom: "관리방", AIChatEnabled: false}
	r := router.New(cfg, admins, guides, sites, statsLedger, usageLedger, prompt.New("기본", 0.3), echoCompleter{}, nil)
	g := New(config.GatewayConfig{}, r, statsLedger)
	h := g.Handler()

	rec := postMessage(t, h, `{"user_id":"u1","room":"방","message":"안녕하세요"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"response":null`) {
		t.Errorf("expected null response, got %s", rec.Body.String())
	}
}

func TestRoomStatsEndpoint(t *testing.T) {
	g, statsLedger := newTestGateway(t)
	h := g.Handler()

	statsLedger.Record("스터디방", "u1", "안녕")
	statsLedger.Record("스터디방", "u1", "반가워")

	req := httptest.NewRequest("GET", "/chat_stats/스터디방", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary stats.RoomSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.TotalMessages != 2 || summary.ActiveUsers != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestRoomStatsNotFound(t *testing.T) {
	g, _ := newTestGateway(t)
	h := g.Handler()

	req := httptest.NewRequest("GET", "/chat_stats/없는방", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	g, _ := newTestGateway(t)
	h := g.Handler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
