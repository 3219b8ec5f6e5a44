// Package router dispatches inbound chat messages to command handlers
// or the LLM fallback.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/molubot/molubot/internal/admin"
	"github.com/molubot/molubot/internal/bookmark"
	"github.com/molubot/molubot/internal/bus"
	"github.com/molubot/molubot/internal/chatlog"
	"github.com/molubot/molubot/internal/config"
	"github.com/molubot/molubot/internal/notice"
	"github.com/molubot/molubot/internal/prompt"
	"github.com/molubot/molubot/internal/provider"
	"github.com/molubot/molubot/internal/stats"
	"github.com/molubot/molubot/internal/store"
	"github.com/molubot/molubot/internal/usage"
)

// Router is the command dispatch core. It owns no persistent state of
// its own; every handler works through the injected stores.
type Router struct {
	cfg       config.BotConfig
	admins    *admin.Registry
	guides    *bookmark.Store
	sites     *bookmark.Store
	stats     *stats.Ledger
	usage     *usage.Ledger
	prompts   *prompt.Registry
	completer provider.Completer
	chatlog   *chatlog.Service

	now func() time.Time
}

func New(
	cfg config.BotConfig,
	admins *admin.Registry,
	guides, sites *bookmark.Store,
	statsLedger *stats.Ledger,
	usageLedger *usage.Ledger,
	prompts *prompt.Registry,
	completer provider.Completer,
	log *chatlog.Service,
) *Router {
	return &Router{
		cfg:       cfg,
		admins:    admins,
		guides:    guides,
		sites:     sites,
		stats:     statsLedger,
		usage:     usageLedger,
		prompts:   prompts,
		completer: completer,
		chatlog:   log,
		now:       time.Now,
	}
}

// Handle processes one inbound message and returns the response text.
// nil means the bot intentionally stays silent. Every failure is mapped
// to a user-visible Korean message; Handle never returns an error.
func (r *Router) Handle(ctx context.Context, msg *bus.InboundMessage) *string {
	// Exactly once, before dispatch, regardless of the branch taken.
	r.stats.Record(msg.Room, msg.SenderID, msg.Content)

	cmd, isCommand := Parse(msg.Content, r.cfg.CommandPrefix)
	if !isCommand {
		if !r.cfg.AIChatEnabled {
			return nil
		}
		return r.chat(ctx, msg.SenderID, msg.Room, msg.Content)
	}

	resp, err := r.dispatch(ctx, cmd, msg)
	if err != nil {
		slog.Warn("command failed", "room", msg.Room, "sender", msg.SenderID, "error", err)
		return ptr(errorMessage(err))
	}
	return resp
}

func (r *Router) dispatch(ctx context.Context, cmd Command, msg *bus.InboundMessage) (*string, error) {
	switch cmd.Kind {
	case KindHelp:
		return ptr(helpText(msg.Room == r.cfg.AdminRoom)), nil

	case KindPromptList, KindPromptShow, KindPromptAdd, KindPromptUse, KindPromptEdit, KindPromptUsage:
		if msg.Room != r.cfg.AdminRoom {
			return ptr("프롬프트 관리는 관리자 방에서만 가능합니다."), nil
		}
		return r.handlePrompt(cmd)

	case KindTemperature:
		if msg.Room != r.cfg.AdminRoom {
			return ptr("temperature 설정은 관리자 방에서만 가능합니다."), nil
		}
		return r.handleTemperature(cmd)

	case KindAdminCheck:
		admins, err := r.admins.List()
		if err != nil {
			return nil, err
		}
		if len(admins) == 0 {
			return ptr("등록된 관리자가 없습니다."), nil
		}
		return ptr("현재 관리자: " + strings.Join(admins, ", ")), nil

	case KindAdminAdd:
		if !r.admins.IsAdmin(msg.SenderID) {
			return ptr("기존 관리자만 새 관리자를 추가할 수 있습니다."), nil
		}
		if len(cmd.Args) < 1 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "관리자추가 사용자ID"), nil
		}
		target := cmd.Args[0]
		if err := r.admins.Add(target); err != nil {
			if errors.Is(err, store.ErrExists) {
				return ptr("이미 관리자로 등록되어 있습니다."), nil
			}
			return nil, err
		}
		return ptr(fmt.Sprintf("'%s'님을 관리자로 추가했습니다.", target)), nil

	case KindAdminRemove:
		if len(cmd.Args) < 1 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "관리자삭제 사용자ID"), nil
		}
		target := cmd.Args[0]
		if err := r.admins.Remove(target, msg.SenderID); err != nil {
			switch {
			case errors.Is(err, store.ErrNotAuthorized):
				return ptr("관리자 권한이 없습니다."), nil
			case errors.Is(err, store.ErrNotFound):
				return ptr(fmt.Sprintf("'%s'은(는) 관리자가 아닙니다.", target)), nil
			}
			return nil, err
		}
		return ptr(fmt.Sprintf("'%s'님을 관리자에서 삭제했습니다.", target)), nil

	case KindGuideSave:
		if !r.admins.IsAdmin(msg.SenderID) {
			return ptr("관리자만 공략을 저장할 수 있습니다."), nil
		}
		if len(cmd.Args) < 2 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "공략저장 키워드 URL"), nil
		}
		keyword, url := cmd.Args[0], cmd.Args[1]
		isUpdate, err := r.guides.Save(keyword, url, msg.SenderID)
		if err != nil {
			return nil, err
		}
		return ptr(fmt.Sprintf("'%s' 공략이 %s되었습니다.", keyword, saveVerb(isUpdate))), nil

	case KindGuideGet:
		if len(cmd.Args) < 1 {
			return ptr("검색할 키워드를 입력해주세요."), nil
		}
		keyword := cmd.Args[0]
		entry, found, err := r.guides.Get(keyword)
		if err != nil {
			return nil, err
		}
		if !found {
			return ptr(fmt.Sprintf("'%s' 공략을 찾을 수 없습니다.", keyword)), nil
		}
		return ptr(fmt.Sprintf("'%s' 공략: %s", keyword, entry.URL)), nil

	case KindSiteSave:
		if len(cmd.Args) < 2 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "저장 키워드 URL"), nil
		}
		keyword, url := cmd.Args[0], cmd.Args[1]
		isUpdate, err := r.sites.Save(keyword, url, msg.SenderID)
		if err != nil {
			return nil, err
		}
		return ptr(fmt.Sprintf("'%s' 사이트가 %s되었습니다.", keyword, saveVerb(isUpdate))), nil

	case KindSiteDelete:
		if len(cmd.Args) < 1 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "삭제 키워드"), nil
		}
		keyword := cmd.Args[0]
		if err := r.sites.Delete(keyword, msg.SenderID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ptr(fmt.Sprintf("'%s' 사이트를 찾을 수 없습니다.", keyword)), nil
			}
			return nil, err
		}
		return ptr(fmt.Sprintf("'%s' 사이트가 삭제되었습니다.", keyword)), nil

	case KindSiteList:
		items, err := r.sites.List()
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return ptr("저장된 사이트가 없습니다."), nil
		}
		var b strings.Builder
		b.WriteString("=== 저장된 사이트 목록 ===")
		for _, item := range items {
			fmt.Fprintf(&b, "\n- %s: %s", item.Keyword, item.URL)
		}
		return ptr(b.String()), nil

	case KindSiteGet:
		if len(cmd.Args) < 1 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "사이트 키워드"), nil
		}
		keyword := cmd.Args[0]
		entry, found, err := r.sites.Get(keyword)
		if err != nil {
			return nil, err
		}
		if !found {
			return ptr("등록되지 않은 사이트 주소입니다."), nil
		}
		return ptr(fmt.Sprintf("'%s' 사이트: %s", keyword, entry.URL)), nil

	case KindStats:
		return r.handleStats(cmd, msg.Room)

	case KindTokens:
		return r.handleTokens()

	case KindBirthday:
		now := r.now().In(config.KST)
		body := notice.Birthday(now)
		if body == "" {
			body = "오늘 생일인 캐릭터가 없습니다."
		}
		return ptr(body + "\n\n" + notice.ShopReset(now)), nil

	case KindStroking:
		now := r.now().In(config.KST)
		return ptr(notice.Stroking() + "\n\n" + notice.ShopReset(now)), nil

	case KindPing:
		return ptr("pong!"), nil

	default: // KindChat: unmatched command word falls through to the LLM
		if !r.cfg.AIChatEnabled {
			return nil, nil
		}
		return r.chat(ctx, msg.SenderID, msg.Room, cmd.Raw), nil
	}
}

func (r *Router) handlePrompt(cmd Command) (*string, error) {
	switch cmd.Kind {
	case KindPromptList:
		var b strings.Builder
		b.WriteString("=== 프롬프트 목록 ===")
		for _, item := range r.prompts.List() {
			marker := "  "
			if item.Current {
				marker = "* "
			}
			b.WriteString("\n" + marker + item.Name)
		}
		return ptr(b.String()), nil

	case KindPromptShow:
		name, text := r.prompts.Current()
		return ptr(fmt.Sprintf("=== 현재 프롬프트 (%s) ===\n%s", name, text)), nil

	case KindPromptAdd:
		if len(cmd.Args) < 2 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "프롬프트 추가 [이름] [내용]"), nil
		}
		name := cmd.Args[0]
		content := strings.TrimSpace(strings.TrimPrefix(cmd.Tail, name))
		if err := r.prompts.Add(name, content); err != nil {
			if errors.Is(err, store.ErrExists) {
				return ptr("이미 존재하는 프롬프트 이름입니다."), nil
			}
			return nil, err
		}
		return ptr(fmt.Sprintf("프롬프트 '%s' 추가됨", name)), nil

	case KindPromptUse:
		if len(cmd.Args) < 1 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "프롬프트 사용 [이름]"), nil
		}
		name := cmd.Args[0]
		if err := r.prompts.Select(name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ptr("존재하지 않는 프롬프트입니다."), nil
			}
			return nil, err
		}
		return ptr(fmt.Sprintf("프롬프트를 '%s'으로 변경했습니다.", name)), nil

	case KindPromptEdit:
		if len(cmd.Args) < 2 {
			return ptr("사용법: " + r.cfg.CommandPrefix + "프롬프트 수정 [이름] [내용]"), nil
		}
		name := cmd.Args[0]
		content := strings.TrimSpace(strings.TrimPrefix(cmd.Tail, name))
		if err := r.prompts.Update(name, content); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ptr("존재하지 않는 프롬프트입니다."), nil
			}
			return nil, err
		}
		return ptr(fmt.Sprintf("프롬프트 '%s' 수정됨", name)), nil

	default:
		return ptr("사용법: " + r.cfg.CommandPrefix + "프롬프트 [목록/보기/추가/사용/수정]"), nil
	}
}

func (r *Router) handleTemperature(cmd Command) (*string, error) {
	if len(cmd.Args) == 0 {
		return ptr(fmt.Sprintf("현재 temperature: %.1f", r.prompts.Temperature())), nil
	}
	value, err := strconv.ParseFloat(cmd.Args[0], 64)
	if err != nil {
		return ptr("사용법: " + r.cfg.CommandPrefix + "temperature [0.0~1.0]"), nil
	}
	if err := r.prompts.SetTemperature(value); err != nil {
		if errors.Is(err, prompt.ErrOutOfRange) {
			return ptr("temperature는 0.0에서 1.0 사이여야 합니다."), nil
		}
		return nil, err
	}
	return ptr(fmt.Sprintf("temperature를 %.1f(으)로 설정했습니다.", value)), nil
}

func (r *Router) handleStats(cmd Command, room string) (*string, error) {
	if len(cmd.Args) >= 1 {
		userID := cmd.Args[0]
		s, err := r.stats.UserSummary(room, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ptr("해당 사용자의 통계가 없습니다."), nil
			}
			return nil, err
		}
		return ptr(fmt.Sprintf(
			"=== %s님의 채팅 통계 ===\n총 메시지: %d개\n하루 평균: %.1f개\n첫 활동일: %s\n마지막 활동: %s",
			userID, s.MessageCount, s.PerActiveDay,
			s.FirstSeen.In(config.KST).Format("2006-01-02"),
			s.LastActive.In(config.KST).Format("2006-01-02 15:04"),
		)), nil
	}

	s, err := r.stats.RoomSummary(room)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ptr("해당 채팅방의 통계가 없습니다."), nil
		}
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "=== 채팅방 전체 통계 ===\n총 메시지: %d개\n활성 사용자: %d명\n\n📊 채팅 순위 (상위 10명)",
		s.TotalMessages, s.ActiveUsers)
	for _, entry := range s.Top {
		fmt.Fprintf(&b, "\n%d위: %s (%d개)", entry.Rank, entry.UserID, entry.MessageCount)
	}
	return ptr(b.String()), nil
}

func (r *Router) handleTokens() (*string, error) {
	s, err := r.usage.MonthlySummary()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "=== 이번 달 토큰 사용량 ===\n입력: %d 토큰\n출력: %d 토큰\n합계: %d 토큰\n비용: $%.2f",
		s.InputTokens, s.OutputTokens, s.TotalTokens, s.TotalCost)

	p, err := r.usage.Predict()
	switch {
	case err == nil:
		fmt.Fprintf(&b, "\n\n=== 월말 예상 사용량 ===\n예상 토큰: %d\n예상 비용: $%.2f\n신뢰도: %.0f%%",
			p.Tokens, p.Cost, p.Confidence*100)
	case errors.Is(err, usage.ErrInsufficientData):
		b.WriteString("\n\n예측에 필요한 데이터가 부족합니다. (최소 7일)")
	default:
		return nil, err
	}
	return ptr(b.String()), nil
}

// chat forwards text to the completion backend with recent room history.
// The exchange is archived only after a successful completion.
func (r *Router) chat(ctx context.Context, senderID, room, text string) *string {
	var history []provider.Message
	if r.chatlog != nil {
		entries, err := r.chatlog.History(ctx, room, r.cfg.HistoryWindow)
		if err != nil {
			slog.Warn("chatlog history failed", "room", room, "error", err)
		}
		for _, e := range entries {
			history = append(history, provider.Message{Role: e.Role, Content: e.Content})
		}
	}

	_, system := r.prompts.Current()
	resp, err := r.completer.Complete(ctx, &provider.ChatRequest{
		System:      system,
		Messages:    append(history, provider.Message{Role: "user", Content: text}),
		Temperature: r.prompts.Temperature(),
	})
	if err != nil {
		slog.Warn("completion failed", "room", room, "error", err)
		return ptr("죄송합니다. 응답을 생성하는 중에 오류가 발생했습니다.")
	}

	r.usage.Record(room, "chat", resp.Usage.InputTokens, resp.Usage.OutputTokens)
	if r.chatlog != nil {
		if err := r.chatlog.Append(ctx, room, senderID, "user", text); err != nil {
			slog.Warn("chatlog append failed", "room", room, "error", err)
		} else if err := r.chatlog.Append(ctx, room, "bot", "assistant", resp.Content); err != nil {
			slog.Warn("chatlog append failed", "room", room, "error", err)
		}
	}
	return ptr(resp.Content)
}

func errorMessage(err error) string {
	if store.IsCorrupt(err) {
		return "데이터를 불러오는 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	}
	return "오류가 발생했습니다: " + err.Error()
}

func saveVerb(isUpdate bool) string {
	if isUpdate {
		return "수정"
	}
	return "저장"
}

func ptr(s string) *string {
	return &s
}
