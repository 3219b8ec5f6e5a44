package router

import "strings"

// Kind discriminates the parsed command families.
type Kind int

const (
	KindChat Kind = iota // non-command or unmatched, goes to the LLM
	KindHelp
	KindPromptList
	KindPromptShow
	KindPromptAdd
	KindPromptUse
	KindPromptEdit
	KindPromptUsage // bare or unknown 프롬프트 subcommand
	KindTemperature
	KindAdminCheck
	KindAdminAdd
	KindAdminRemove
	KindGuideGet
	KindGuideSave
	KindSiteSave
	KindSiteDelete
	KindSiteList
	KindSiteGet
	KindStats
	KindTokens
	KindBirthday
	KindStroking
	KindPing
)

// Command is the parsed form of one inbound message. Args holds the
// whitespace-split arguments; Tail is the raw remainder after the first
// argument, preserved for values that may contain spaces.
type Command struct {
	Kind Kind
	Args []string
	Tail string
	// Raw is the prefix-stripped text, used for the LLM fallback.
	Raw string
}

// Parse splits raw into a Command. The second return is false when raw
// does not start with the command prefix at all.
func Parse(raw, prefix string) (Command, bool) {
	if !strings.HasPrefix(raw, prefix) {
		return Command{Kind: KindChat, Raw: raw}, false
	}
	stripped := strings.TrimSpace(strings.TrimPrefix(raw, prefix))
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return Command{Kind: KindChat, Raw: stripped}, true
	}

	word := fields[0]
	args := fields[1:]
	tail := strings.TrimSpace(strings.TrimPrefix(stripped, word))

	cmd := Command{Args: args, Tail: tail, Raw: stripped}
	// Longer literals first so 공략저장 never routes as 공략 plus garbage.
	switch {
	case word == "도움말":
		cmd.Kind = KindHelp
	case word == "프롬프트":
		cmd.Kind = parsePromptSub(args)
		if cmd.Kind != KindPromptUsage {
			cmd.Tail = strings.TrimSpace(strings.TrimPrefix(tail, args[0]))
			cmd.Args = args[1:]
		}
	case strings.EqualFold(word, "temperature"):
		cmd.Kind = KindTemperature
	case word == "관리자확인":
		cmd.Kind = KindAdminCheck
	case word == "관리자추가":
		cmd.Kind = KindAdminAdd
	case word == "관리자삭제":
		cmd.Kind = KindAdminRemove
	case word == "공략저장":
		cmd.Kind = KindGuideSave
	case word == "공략":
		cmd.Kind = KindGuideGet
	case word == "저장":
		cmd.Kind = KindSiteSave
	case word == "삭제":
		cmd.Kind = KindSiteDelete
	case word == "목록":
		cmd.Kind = KindSiteList
	case word == "사이트":
		cmd.Kind = KindSiteGet
	case word == "통계":
		cmd.Kind = KindStats
	case word == "토큰":
		cmd.Kind = KindTokens
	case word == "생일":
		cmd.Kind = KindBirthday
	case word == "쓰담":
		cmd.Kind = KindStroking
	case strings.EqualFold(word, "ping"):
		cmd.Kind = KindPing
	default:
		cmd.Kind = KindChat
	}
	return cmd, true
}

func parsePromptSub(args []string) Kind {
	if len(args) == 0 {
		return KindPromptUsage
	}
	switch args[0] {
	case "목록":
		return KindPromptList
	case "보기":
		return KindPromptShow
	case "추가":
		return KindPromptAdd
	case "사용":
		return KindPromptUse
	case "수정":
		return KindPromptEdit
	default:
		return KindPromptUsage
	}
}
