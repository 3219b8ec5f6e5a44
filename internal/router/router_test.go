package router

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/molubot/molubot/internal/admin"
	"github.com/molubot/molubot/internal/bookmark"
	"github.com/molubot/molubot/internal/bus"
	"github.com/molubot/molubot/internal/config"
	"github.com/molubot/molubot/internal/prompt"
	"github.com/molubot/molubot/internal/provider"
	"github.com/molubot/molubot/internal/stats"
	"github.com/molubot/molubot/internal/usage"
)

const adminRoom = "프로젝트 아로나"

type fakeCompleter struct {
	lastReq *provider.ChatRequest
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &provider.ChatResponse{
		Content: f.reply,
		Usage:   provider.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

type fixture struct {
	router    *Router
	completer *fakeCompleter
	admins    *admin.Registry
	prompts   *prompt.Registry
	stats     *stats.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	admins := admin.New(filepath.Join(dir, "admins.json"))
	if err := admins.EnsureSeeds([]string{"admin1"}); err != nil {
		t.Fatalf("EnsureSeeds: %v", err)
	}
	guides := bookmark.New(filepath.Join(dir, "guides.json"), admins.IsAdmin)
	sites := bookmark.New(filepath.Join(dir, "sites.json"), nil)
	statsLedger := stats.New(filepath.Join(dir, "stats.json"))
	usageLedger := usage.New(filepath.Join(dir, "usage.json"), usage.LeastSquares{})
	prompts := prompt.New("기본 프롬프트", 0.3)
	completer := &fakeCompleter{reply: "AI 응답"}

	cfg := config.BotConfig{
		CommandPrefix: "*",
		AdminRoom:     adminRoom,
		AIChatEnabled: true,
		HistoryWindow: 8,
	}
	r := New(cfg, admins, guides, sites, statsLedger, usageLedger, prompts, completer, nil)
	return &fixture{router: r, completer: completer, admins: admins, prompts: prompts, stats: statsLedger}
}

func (f *fixture) handle(t *testing.T, senderID, room, content string) *string {
	t.Helper()
	return f.router.Handle(context.Background(), &bus.InboundMessage{
		SenderID: senderID,
		Room:     room,
		Content:  content,
	})
}

func mustText(t *testing.T, resp *string) string {
	t.Helper()
	if resp == nil {
		t.Fatal("expected a response, got nil")
	}
	return *resp
}

func TestHelpNonAdminRoomExcludesAdminSection(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*도움말"))
	if !strings.Contains(text, "사용 가능한 명령어") {
		t.Errorf("missing base help in %q", text)
	}
	if strings.Contains(text, "프롬프트 관리") {
		t.Errorf("admin section leaked into non-admin room help")
	}
}

func TestHelpAdminRoomIncludesAdminSection(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", adminRoom, "*도움말"))
	if !strings.Contains(text, "프롬프트 관리") {
		t.Errorf("expected admin section in %q", text)
	}
}

func TestTemperatureOutOfRangeLeavesValue(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "admin1", adminRoom, "*temperature 1.5"))
	if !strings.Contains(text, "0.0에서 1.0 사이") {
		t.Errorf("expected rejection, got %q", text)
	}
	if f.prompts.Temperature() != 0.3 {
		t.Errorf("temperature changed to %v", f.prompts.Temperature())
	}
}

func TestTemperatureSetAndGet(t *testing.T) {
	f := newFixture(t)
	mustText(t, f.handle(t, "admin1", adminRoom, "*temperature 0.8"))
	if f.prompts.Temperature() != 0.8 {
		t.Fatalf("expected 0.8, got %v", f.prompts.Temperature())
	}
	text := mustText(t, f.handle(t, "admin1", adminRoom, "*temperature"))
	if !strings.Contains(text, "0.8") {
		t.Errorf("expected current value in %q", text)
	}
}

func TestTemperatureGatedToAdminRoom(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "admin1", "일반방", "*temperature 0.5"))
	if !strings.Contains(text, "관리자 방") {
		t.Errorf("expected room gate, got %q", text)
	}
	if f.prompts.Temperature() != 0.3 {
		t.Errorf("temperature mutated despite gate")
	}
}

func TestUnknownCommandFallsThroughToChat(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*이것은알수없는명령입니다"))
	if text != "AI 응답" {
		t.Errorf("expected LLM reply verbatim, got %q", text)
	}
	if f.completer.lastReq == nil {
		t.Fatal("completer not called")
	}
	msgs := f.completer.lastReq.Messages
	if msgs[len(msgs)-1].Content != "이것은알수없는명령입니다" {
		t.Errorf("expected stripped text forwarded, got %q", msgs[len(msgs)-1].Content)
	}
}

func TestNonCommandSilentWhenAIDisabled(t *testing.T) {
	f := newFixture(t)
	f.router.cfg.AIChatEnabled = false
	if resp := f.handle(t, "user1", "일반방", "안녕하세요"); resp != nil {
		t.Errorf("expected silence, got %q", *resp)
	}
}

func TestNonCommandChatsWhenAIEnabled(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "안녕하세요"))
	if text != "AI 응답" {
		t.Errorf("expected LLM reply, got %q", text)
	}
}

func TestChatFailureReturnsApology(t *testing.T) {
	f := newFixture(t)
	f.completer.err = errors.New("timeout")
	text := mustText(t, f.handle(t, "user1", "일반방", "안녕하세요"))
	if !strings.Contains(text, "죄송합니다") {
		t.Errorf("expected apology, got %q", text)
	}
}

func TestStatsRecordedOncePerMessage(t *testing.T) {
	f := newFixture(t)
	f.handle(t, "user1", "일반방", "*ping")
	f.handle(t, "user1", "일반방", "안녕하세요")
	f.handle(t, "user1", "일반방", "*없는명령어123")

	s, err := f.stats.UserSummary("일반방", "user1")
	if err != nil {
		t.Fatalf("UserSummary: %v", err)
	}
	if s.MessageCount != 3 {
		t.Errorf("expected 3 recorded messages, got %d", s.MessageCount)
	}
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	if text := mustText(t, f.handle(t, "user1", "일반방", "*ping")); text != "pong!" {
		t.Errorf("expected pong!, got %q", text)
	}
}

func TestGuideSaveRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*공략저장 보스 https://example.com/boss"))
	if !strings.Contains(text, "관리자만") {
		t.Errorf("expected admin gate, got %q", text)
	}
	text = mustText(t, f.handle(t, "user1", "일반방", "*공략 보스"))
	if !strings.Contains(text, "찾을 수 없습니다") {
		t.Errorf("gate must not have saved, got %q", text)
	}
}

func TestGuideSaveAndGet(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "admin1", "일반방", "*공략저장 보스 https://example.com/boss"))
	if !strings.Contains(text, "저장되었습니다") {
		t.Errorf("unexpected save response %q", text)
	}
	text = mustText(t, f.handle(t, "user1", "일반방", "*공략 보스"))
	if !strings.Contains(text, "https://example.com/boss") {
		t.Errorf("expected guide URL, got %q", text)
	}
}

func TestGuideGetWithoutKeyword(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*공략"))
	if !strings.Contains(text, "키워드를 입력") {
		t.Errorf("expected usage hint, got %q", text)
	}
}

func TestSiteLifecycle(t *testing.T) {
	f := newFixture(t)

	text := mustText(t, f.handle(t, "user1", "일반방", "*저장 위키 https://example.com/wiki"))
	if !strings.Contains(text, "저장되었습니다") {
		t.Errorf("unexpected save response %q", text)
	}

	text = mustText(t, f.handle(t, "user2", "일반방", "*저장 위키 https://example.com/wiki2"))
	if !strings.Contains(text, "수정되었습니다") {
		t.Errorf("expected update message, got %q", text)
	}

	text = mustText(t, f.handle(t, "user1", "일반방", "*사이트 위키"))
	if !strings.Contains(text, "https://example.com/wiki2") {
		t.Errorf("expected updated URL, got %q", text)
	}

	text = mustText(t, f.handle(t, "user1", "일반방", "*목록"))
	if !strings.Contains(text, "위키") {
		t.Errorf("expected keyword in list, got %q", text)
	}

	text = mustText(t, f.handle(t, "user1", "일반방", "*삭제 위키"))
	if !strings.Contains(text, "삭제되었습니다") {
		t.Errorf("unexpected delete response %q", text)
	}

	text = mustText(t, f.handle(t, "user1", "일반방", "*사이트 위키"))
	if !strings.Contains(text, "등록되지 않은") {
		t.Errorf("expected not-found after delete, got %q", text)
	}
}

func TestAdminAddRemoveCommands(t *testing.T) {
	f := newFixture(t)

	text := mustText(t, f.handle(t, "user1", adminRoom, "*관리자추가 user2"))
	if !strings.Contains(text, "기존 관리자만") {
		t.Errorf("expected gate for non-admin, got %q", text)
	}

	text = mustText(t, f.handle(t, "admin1", adminRoom, "*관리자추가 user2"))
	if !strings.Contains(text, "추가했습니다") {
		t.Errorf("unexpected add response %q", text)
	}
	if !f.admins.IsAdmin("user2") {
		t.Error("user2 not added")
	}

	text = mustText(t, f.handle(t, "admin1", adminRoom, "*관리자추가 user2"))
	if !strings.Contains(text, "이미 관리자") {
		t.Errorf("expected duplicate message, got %q", text)
	}

	text = mustText(t, f.handle(t, "user3", adminRoom, "*관리자삭제 user2"))
	if !strings.Contains(text, "권한이 없습니다") {
		t.Errorf("expected authorization failure, got %q", text)
	}

	text = mustText(t, f.handle(t, "admin1", adminRoom, "*관리자삭제 user2"))
	if !strings.Contains(text, "삭제했습니다") {
		t.Errorf("unexpected remove response %q", text)
	}
	if f.admins.IsAdmin("user2") {
		t.Error("user2 still admin after removal")
	}
}

func TestAdminCheckListsAdmins(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*관리자확인"))
	if !strings.Contains(text, "admin1") {
		t.Errorf("expected admin listed, got %q", text)
	}
}

func TestPromptManagementOutsideAdminRoom(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "admin1", "일반방", "*프롬프트 목록"))
	if !strings.Contains(text, "관리자 방에서만") {
		t.Errorf("expected room gate, got %q", text)
	}
}

func TestPromptLifecycle(t *testing.T) {
	f := newFixture(t)

	text := mustText(t, f.handle(t, "admin1", adminRoom, "*프롬프트 추가 공손한 매우 공손하게 답하세요."))
	if !strings.Contains(text, "추가됨") {
		t.Errorf("unexpected add response %q", text)
	}

	text = mustText(t, f.handle(t, "admin1", adminRoom, "*프롬프트 사용 공손한"))
	if !strings.Contains(text, "변경했습니다") {
		t.Errorf("unexpected select response %q", text)
	}

	text = mustText(t, f.handle(t, "admin1", adminRoom, "*프롬프트 보기"))
	if !strings.Contains(text, "매우 공손하게 답하세요.") {
		t.Errorf("expected prompt body, got %q", text)
	}

	text = mustText(t, f.handle(t, "admin1", adminRoom, "*프롬프트 목록"))
	if !strings.Contains(text, "* 공손한") {
		t.Errorf("expected current marker, got %q", text)
	}

	// The selected prompt drives the next completion.
	f.handle(t, "user1", "일반방", "아무 질문")
	if f.completer.lastReq.System != "매우 공손하게 답하세요." {
		t.Errorf("selected prompt not forwarded, got %q", f.completer.lastReq.System)
	}
}

func TestPromptUsageHint(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "admin1", adminRoom, "*프롬프트"))
	if !strings.Contains(text, "[목록/보기/추가/사용/수정]") {
		t.Errorf("expected usage hint, got %q", text)
	}
}

func TestTokensWithoutHistory(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*토큰"))
	if !strings.Contains(text, "이번 달 토큰 사용량") {
		t.Errorf("expected usage header, got %q", text)
	}
	if !strings.Contains(text, "데이터가 부족") {
		t.Errorf("expected insufficient-data note, got %q", text)
	}
}

func TestBirthdayAppendsShopReset(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*생일"))
	if !strings.Contains(text, "상점 초기화") {
		t.Errorf("expected shop reset notice appended, got %q", text)
	}
}

func TestStrokingAppendsShopReset(t *testing.T) {
	f := newFixture(t)
	text := mustText(t, f.handle(t, "user1", "일반방", "*쓰담"))
	if !strings.Contains(text, "쓰다듬기") || !strings.Contains(text, "상점 초기화") {
		t.Errorf("unexpected stroking response %q", text)
	}
}

func TestStatsCommandRendersRoomSummary(t *testing.T) {
	f := newFixture(t)
	f.handle(t, "user1", "일반방", "첫 메시지")
	f.handle(t, "user1", "일반방", "둘째 메시지")
	f.handle(t, "user2", "일반방", "셋째 메시지")

	text := mustText(t, f.handle(t, "user1", "일반방", "*통계"))
	if !strings.Contains(text, "총 메시지: 4개") {
		t.Errorf("unexpected total in %q", text)
	}
	if !strings.Contains(text, "활성 사용자: 2명") {
		t.Errorf("unexpected active count in %q", text)
	}
	if !strings.Contains(text, "1위: user1") {
		t.Errorf("expected user1 ranked first in %q", text)
	}
}

func TestStatsCommandUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.handle(t, "user1", "일반방", "메시지")
	text := mustText(t, f.handle(t, "user1", "일반방", "*통계 없는사람"))
	if !strings.Contains(text, "해당 사용자의 통계가 없습니다") {
		t.Errorf("expected not-found message, got %q", text)
	}
}

func TestParseLongestLiteralFirst(t *testing.T) {
	cmd, ok := Parse("*공략저장 보스 https://example.com", "*")
	if !ok || cmd.Kind != KindGuideSave {
		t.Errorf("expected KindGuideSave, got %v", cmd.Kind)
	}
	cmd, ok = Parse("*공략 보스", "*")
	if !ok || cmd.Kind != KindGuideGet {
		t.Errorf("expected KindGuideGet, got %v", cmd.Kind)
	}
	cmd, ok = Parse("*관리자확인", "*")
	if !ok || cmd.Kind != KindAdminCheck {
		t.Errorf("expected KindAdminCheck, got %v", cmd.Kind)
	}
	if _, ok := Parse("그냥 메시지", "*"); ok {
		t.Error("non-prefixed text must not parse as command")
	}
}
