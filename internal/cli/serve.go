package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/molubot/molubot/internal/admin"
	"github.com/molubot/molubot/internal/bookmark"
	"github.com/molubot/molubot/internal/botloop"
	"github.com/molubot/molubot/internal/bus"
	"github.com/molubot/molubot/internal/channels"
	"github.com/molubot/molubot/internal/chatlog"
	"github.com/molubot/molubot/internal/config"
	"github.com/molubot/molubot/internal/gateway"
	"github.com/molubot/molubot/internal/notice"
	"github.com/molubot/molubot/internal/prompt"
	"github.com/molubot/molubot/internal/provider"
	"github.com/molubot/molubot/internal/router"
	"github.com/molubot/molubot/internal/scheduler"
	"github.com/molubot/molubot/internal/stats"
	"github.com/molubot/molubot/internal/usage"
)

var serveWorkers int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot: gateway, channels and scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 4, "Message handling worker count")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.EnsureDir(cfg.Paths.DataDir); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataPath := func(name string) string { return filepath.Join(cfg.Paths.DataDir, name) }

	admins := admin.New(dataPath("admins.json"))
	if err := admins.EnsureSeeds(cfg.Bot.SeedAdmins); err != nil {
		return fmt.Errorf("seed admins: %w", err)
	}
	guides := bookmark.New(dataPath("guides.json"), admins.IsAdmin)
	sites := bookmark.New(dataPath("sites.json"), nil)
	statsLedger := stats.New(dataPath("chat_stats.json"))
	usageLedger := usage.New(dataPath("token_usage.json"), usage.LeastSquares{})
	prompts := prompt.New(cfg.Bot.SystemPrompt, cfg.Bot.Temperature)

	log, err := chatlog.New(dataPath("chatlog.db"))
	if err != nil {
		return fmt.Errorf("open chatlog: %w", err)
	}
	defer log.Close()

	completer := provider.NewAnthropicProvider(
		cfg.Provider.APIKey,
		cfg.Provider.APIBase,
		cfg.Provider.Model,
		cfg.Provider.MaxTokens,
		cfg.Provider.Timeout,
	)

	r := router.New(cfg.Bot, admins, guides, sites, statsLedger, usageLedger, prompts, completer, log)
	messageBus := bus.NewMessageBus()

	var active []channels.Channel
	if cfg.Channels.Kafka.Enabled {
		active = append(active, channels.NewKafkaChannel(cfg.Channels.Kafka, messageBus))
	}
	if cfg.Channels.Slack.Enabled {
		active = append(active, channels.NewSlackChannel(cfg.Channels.Slack, messageBus))
	}
	for _, ch := range active {
		if err := ch.Start(ctx); err != nil {
			return fmt.Errorf("start %s channel: %w", ch.Name(), err)
		}
		slog.Info("channel started", "channel", ch.Name())
	}
	defer func() {
		for _, ch := range active {
			if err := ch.Stop(); err != nil {
				slog.Warn("channel stop failed", "channel", ch.Name(), "error", err)
			}
		}
	}()

	go messageBus.DispatchOutbound(ctx)
	go botloop.New(messageBus, r, serveWorkers).Run(ctx)

	sched := scheduler.New(cfg.Scheduler)
	if err := registerJobs(sched, cfg, messageBus, active, log); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	go sched.Run(ctx)

	gw := gateway.New(cfg.Gateway, r, statsLedger)
	slog.Info("molubot starting", "version", version, "data_dir", cfg.Paths.DataDir)
	return gw.Start(ctx)
}

// registerJobs wires the periodic notifications and maintenance tasks.
// Notice jobs broadcast to every configured notice room on every
// active channel.
func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	messageBus *bus.MessageBus,
	active []channels.Channel,
	log *chatlog.Service,
) error {
	broadcast := func(text string) {
		if text == "" {
			return
		}
		for _, room := range cfg.Bot.NoticeRooms {
			for _, ch := range active {
				messageBus.PublishOutbound(&bus.OutboundMessage{
					Channel: ch.Name(),
					Room:    room,
					Content: text,
				})
			}
		}
	}

	jobs := []struct {
		name string
		expr string
		run  func(ctx context.Context)
	}{
		{"stroking", "0 16 * * *", func(context.Context) {
			broadcast(notice.Stroking())
		}},
		{"birthday", "0 8 * * *", func(context.Context) {
			broadcast(notice.Birthday(time.Now().In(config.KST)))
		}},
		{"shop-reset", "0 5 * * *", func(context.Context) {
			broadcast(notice.ShopReset(time.Now().In(config.KST)))
		}},
		{"coupon", "58 10 * * 1,5", func(context.Context) {
			broadcast(notice.Coupon())
		}},
		{"chatlog-cleanup", "0 3 * * *", func(ctx context.Context) {
			retention := time.Duration(cfg.Scheduler.RetentionDays) * 24 * time.Hour
			removed, err := log.Cleanup(ctx, retention)
			if err != nil {
				slog.Warn("chatlog cleanup failed", "error", err)
				return
			}
			slog.Info("chatlog cleanup done", "removed", removed)
		}},
	}
	for _, j := range jobs {
		if err := sched.Add(j.name, j.expr, j.run); err != nil {
			return err
		}
	}
	return nil
}
