package bot

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/bot/handlers"
	"github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/internal/middleware"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

const rateLimitedText = "Muitas mensagens seguidas. Aguarde um instante."

// Dispatcher управляет обработкой входящих обновлений от Telegram
type Dispatcher struct {
	service         *service.Service
	limiter         *middleware.ChatRateLimiter
	logger          *logger.Logger
	startHandler    *handlers.StartHandler
	contactHandler  *handlers.ContactHandler
	chatHandler     *handlers.ChatHandler
	servicesHandler *handlers.ServicesHandler
	adminHandler    *handlers.AdminHandler
	callbackHandler *handlers.CallbackHandler
}

// NewDispatcher создает новый диспетчер обновлений. limiter может быть nil.
func NewDispatcher(svc *service.Service, limiter *middleware.ChatRateLimiter, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		service:         svc,
		limiter:         limiter,
		logger:          log,
		startHandler:    handlers.NewStartHandler(svc),
		contactHandler:  handlers.NewContactHandler(svc),
		chatHandler:     handlers.NewChatHandler(svc),
		servicesHandler: handlers.NewServicesHandler(svc),
		adminHandler:    handlers.NewAdminHandler(svc),
		callbackHandler: handlers.NewCallbackHandler(svc),
	}
}

// Handler адаптер для tgbot.WithDefaultHandler в режиме long polling
func (d *Dispatcher) Handler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	d.HandleUpdate(ctx, update)
}

// HandleUpdate обрабатывает входящее обновление от Telegram
func (d *Dispatcher) HandleUpdate(ctx context.Context, update *models.Update) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordError("telegram", "panic")
			d.logger.Error("Panic while handling update",
				logger.Int64("update_id", update.ID),
				logger.Any("panic", r),
			)
		}
	}()

	if update.CallbackQuery != nil {
		d.logger.Debug("Received callback query",
			logger.Int64("chat_id", update.CallbackQuery.From.ID),
			logger.String("data", update.CallbackQuery.Data),
		)
		d.callbackHandler.Handle(ctx, update)
		return
	}

	if update.Message == nil {
		d.logger.Debug("Received unsupported update", logger.Int64("update_id", update.ID))
		return
	}

	chatID := update.Message.Chat.ID
	d.logger.Debug("Received message", logger.Int64("chat_id", chatID))

	if d.limiter != nil && !d.limiter.AllowUser(chatID) {
		d.service.SendError(ctx, chatID, rateLimitedText)
		return
	}

	if update.Message.Contact != nil {
		d.contactHandler.Handle(ctx, update)
		return
	}

	cmd, args := handlers.ParseCommand(update.Message.Text)
	switch cmd {
	case "":
		d.chatHandler.Handle(ctx, update)
	case "/start", "/reiniciar":
		d.startHandler.Handle(ctx, update)
	case "/servicos":
		d.servicesHandler.Handle(ctx, update)
	case "/agenda":
		d.adminHandler.HandleAgenda(ctx, update, args)
	case "/reagendar":
		d.adminHandler.HandleReschedule(ctx, update, args)
	default:
		d.chatHandler.Handle(ctx, update)
	}
}
