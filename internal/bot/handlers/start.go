package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/bot/keyboard"
	botservice "github.com/Zanvi/lacasabarber/internal/bot/service"
	storagemodels "github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// StartHandler обрабатывает команды /start и /reiniciar
type StartHandler struct {
	service *botservice.Service
}

// NewStartHandler создает новый обработчик команды /start
func NewStartHandler(service *botservice.Service) *StartHandler {
	return &StartHandler{service: service}
}

// Handle открывает новый диалог для известного чата или запрашивает контакт
func (h *StartHandler) Handle(ctx context.Context, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, ok := h.service.UserForChat(chatID)
	if !ok {
		askForContact(ctx, h.service, chatID)
		return
	}

	openConversation(ctx, h.service, chatID, user, keyboard.CreateRemoveKeyboard())
}

func askForContact(ctx context.Context, s *botservice.Service, chatID int64) {
	if err := s.SendMessage(ctx, chatID, askContactText, keyboard.CreateContactKeyboard()); err != nil {
		s.Logger().Error("Failed to ask for contact", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}

// openConversation открывает новый диалог и отправляет приветствие
func openConversation(ctx context.Context, s *botservice.Service, chatID int64, user storagemodels.User, markup models.ReplyMarkup) {
	session, err := s.OpenChat(ctx, user)
	if err != nil {
		s.Logger().Error("Failed to open chat session",
			logger.Int64("chat_id", chatID),
			logger.String("user_id", user.ID),
			logger.Error(err),
		)
		s.SendError(ctx, chatID, genericErrorText)
		return
	}

	messages := session.Messages()
	welcome := messages[0].Text
	if err := s.SendMessage(ctx, chatID, welcome, markup); err != nil {
		s.Logger().Error("Failed to send welcome", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}
