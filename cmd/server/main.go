package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/agenda"
	"github.com/Zanvi/lacasabarber/internal/assistant"
	"github.com/Zanvi/lacasabarber/internal/auth"
	botdispatch "github.com/Zanvi/lacasabarber/internal/bot"
	"github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/internal/booking"
	"github.com/Zanvi/lacasabarber/internal/chat"
	"github.com/Zanvi/lacasabarber/internal/config"
	"github.com/Zanvi/lacasabarber/internal/events"
	"github.com/Zanvi/lacasabarber/internal/middleware"
	"github.com/Zanvi/lacasabarber/internal/repository"
	schedmemory "github.com/Zanvi/lacasabarber/internal/scheduler/memory"
	"github.com/Zanvi/lacasabarber/internal/server"
	"github.com/Zanvi/lacasabarber/internal/storage"
	"github.com/Zanvi/lacasabarber/internal/storage/memory"
	"github.com/Zanvi/lacasabarber/internal/storage/postgres"
	"github.com/Zanvi/lacasabarber/internal/storage/redis"
	"github.com/Zanvi/lacasabarber/internal/storage/sqlite"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	log.Info("Starting LA CASA BARBER", logger.String("shop", cfg.Shop.Name))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Application stopped with error", logger.Error(err))
	}
	log.Info("Application stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", logger.Error(err))
		}
	}()
	log.Info("Storage initialized", logger.String("driver", cfg.Storage.Driver))

	repo, err := repository.New(ctx, store, repository.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	publisher, err := openPublisher(cfg.Events, log)
	if err != nil {
		return err
	}
	defer publisher.Close()
	notifier := events.NewNotifier(publisher, log)

	gemini, err := assistant.NewGemini(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model, log)
	if err != nil {
		return err
	}

	processor := booking.NewProcessor(repo, notifier, log)
	shop := assistant.Shop{
		Name:     cfg.Shop.Name,
		Owner:    cfg.Shop.Owner,
		WhatsApp: cfg.Shop.WhatsApp,
		Address:  cfg.Shop.Address,
	}
	chats := chat.NewManager(gemini, repo, processor, shop, log)
	adminAgenda := agenda.New(repo, notifier, log)

	deps := server.Deps{
		Catalog:      repo,
		Users:        repo,
		Appointments: adminAgenda,
		Chats:        chats,
		Tokens:       auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Store:        store,
	}

	if cfg.Telegram.Enabled() {
		telegram, err := startTelegram(ctx, cfg, log, service.Deps{
			Users:   repo,
			Chats:   chats,
			Catalog: repo,
			Agenda:  adminAgenda,
		})
		if err != nil {
			return err
		}
		defer telegram.close()
		if cfg.Telegram.WebhookURL != "" {
			deps.Updates = telegram.dispatcher
		}
	} else {
		log.Warn("TELEGRAM_TOKEN is not set, Telegram bot disabled")
	}

	srv := server.New(cfg, log, deps)
	return srv.Start(ctx)
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		return sqlite.New(cfg.Path)
	case config.DriverRedis:
		return redis.New(ctx, redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openPublisher(cfg config.EventsConfig, log *logger.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		log.Info("NATS_URL is not set, appointment events are not published")
		return events.NopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL, cfg.SubjectPrefix, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return pub, nil
}

type telegramRuntime struct {
	dispatcher *botdispatch.Dispatcher
	limiter    *middleware.ChatRateLimiter
	reminders  *schedmemory.MemoryScheduler
}

func (t *telegramRuntime) close() {
	t.reminders.Stop()
	t.limiter.Close()
}

// startTelegram создает бота. С WEBHOOK_URL обновления приходят через
// HTTP сервер, без него бот работает в режиме long polling.
func startTelegram(ctx context.Context, cfg *config.Config, log *logger.Logger, deps service.Deps) (*telegramRuntime, error) {
	var dispatcher *botdispatch.Dispatcher
	b, err := tgbot.New(cfg.Telegram.Token, tgbot.WithDefaultHandler(func(ctx context.Context, _ *tgbot.Bot, update *tgmodels.Update) {
		dispatcher.HandleUpdate(ctx, update)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	deps.Sender = b
	svc := service.NewService(deps, cfg, log)
	reminders := schedmemory.NewMemoryScheduler(svc, log)
	svc.WithReminders(reminders)

	limiter := middleware.NewChatRateLimiter(20, 30, log)
	dispatcher = botdispatch.NewDispatcher(svc, limiter, log)

	if cfg.Telegram.WebhookURL != "" {
		setupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if _, err := b.SetWebhook(setupCtx, &tgbot.SetWebhookParams{
			URL:         cfg.Telegram.WebhookURL,
			SecretToken: cfg.Telegram.SecretToken,
		}); err != nil {
			return nil, fmt.Errorf("failed to set webhook: %w", err)
		}
		log.Info("Webhook configured", logger.String("url", cfg.Telegram.WebhookURL))
	} else {
		if _, err := b.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
			log.Warn("Failed to delete existing webhook", logger.Error(err))
		}
		go b.Start(ctx)
		log.Info("Telegram bot started in long polling mode")
	}

	return &telegramRuntime{dispatcher: dispatcher, limiter: limiter, reminders: reminders}, nil
}
