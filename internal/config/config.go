package config

import "time"

// KST is the zone every user-facing timestamp and schedule uses.
var KST = time.FixedZone("KST", 9*60*60)

// Config is the full runtime configuration. Values come from the JSON
// config file and may be overridden per-group via environment variables.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Bot       BotConfig       `json:"bot"`
	Provider  ProviderConfig  `json:"provider"`
	Gateway   GatewayConfig   `json:"gateway"`
	Channels  ChannelsConfig  `json:"channels"`
	Scheduler SchedulerConfig `json:"scheduler"`
}

type PathsConfig struct {
	DataDir string `json:"data_dir" envconfig:"DATA_DIR"`
}

type BotConfig struct {
	CommandPrefix string   `json:"command_prefix" envconfig:"COMMAND_PREFIX"`
	AdminRoom     string   `json:"admin_room" envconfig:"ADMIN_ROOM"`
	AllowedRooms  []string `json:"allowed_rooms" envconfig:"ALLOWED_ROOMS"`
	NoticeRooms   []string `json:"notice_rooms" envconfig:"NOTICE_ROOMS"`
	SeedAdmins    []string `json:"seed_admins" envconfig:"SEED_ADMINS"`
	AIChatEnabled bool     `json:"ai_chat_enabled" envconfig:"AI_CHAT_ENABLED"`
	HistoryWindow int      `json:"history_window" envconfig:"HISTORY_WINDOW"`
	SystemPrompt  string   `json:"system_prompt" envconfig:"SYSTEM_PROMPT"`
	Temperature   float64  `json:"temperature" envconfig:"TEMPERATURE"`
}

type ProviderConfig struct {
	APIKey    string        `json:"api_key" envconfig:"API_KEY"`
	APIBase   string        `json:"api_base" envconfig:"API_BASE"`
	Model     string        `json:"model" envconfig:"MODEL"`
	MaxTokens int           `json:"max_tokens" envconfig:"MAX_TOKENS"`
	Timeout   time.Duration `json:"timeout" envconfig:"TIMEOUT"`
}

type GatewayConfig struct {
	Host string `json:"host" envconfig:"HOST"`
	Port int    `json:"port" envconfig:"PORT"`
}

type ChannelsConfig struct {
	Kafka KafkaConfig `json:"kafka"`
	Slack SlackConfig `json:"slack"`
}

type KafkaConfig struct {
	Enabled       bool     `json:"enabled" envconfig:"ENABLED"`
	Brokers       []string `json:"brokers" envconfig:"BROKERS"`
	ConsumerGroup string   `json:"consumer_group" envconfig:"CONSUMER_GROUP"`
	InboundTopic  string   `json:"inbound_topic" envconfig:"INBOUND_TOPIC"`
	OutboundTopic string   `json:"outbound_topic" envconfig:"OUTBOUND_TOPIC"`
}

type SlackConfig struct {
	Enabled  bool   `json:"enabled" envconfig:"ENABLED"`
	BotToken string `json:"bot_token" envconfig:"BOT_TOKEN"`
	AppToken string `json:"app_token" envconfig:"APP_TOKEN"`
}

type SchedulerConfig struct {
	Enabled       bool          `json:"enabled" envconfig:"ENABLED"`
	TickInterval  time.Duration `json:"tick_interval" envconfig:"TICK_INTERVAL"`
	RetentionDays int           `json:"retention_days" envconfig:"RETENTION_DAYS"`
}

const defaultSystemPrompt = "당신은 블루 아카이브의 아로나입니다. " +
	"샬레 소속의 밝고 상냥한 AI 조수로, 선생님을 돕는 것이 가장 큰 기쁨입니다. " +
	"존댓말을 사용하고 대답은 간결하게 합니다."

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			DataDir: "~/.molubot/data",
		},
		Bot: BotConfig{
			CommandPrefix: "*",
			AdminRoom:     "프로젝트 아로나",
			AIChatEnabled: true,
			HistoryWindow: 8,
			SystemPrompt:  defaultSystemPrompt,
			Temperature:   0.3,
		},
		Provider: ProviderConfig{
			APIBase:   "https://api.anthropic.com",
			Model:     "claude-3-sonnet-20240229",
			MaxTokens: 1000,
			Timeout:   30 * time.Second,
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 8001,
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			TickInterval:  time.Minute,
			RetentionDays: 30,
		},
	}
}
