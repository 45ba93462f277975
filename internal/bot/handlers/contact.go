package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/bot/keyboard"
	botservice "github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// ContactHandler обрабатывает получение контактной информации от пользователя
type ContactHandler struct {
	service *botservice.Service
}

// NewContactHandler создает новый обработчик контактов
func NewContactHandler(service *botservice.Service) *ContactHandler {
	return &ContactHandler{service: service}
}

// Handle выполняет вход по контакту и начинает диалог
func (h *ContactHandler) Handle(ctx context.Context, update *models.Update) {
	if update.Message == nil || update.Message.Contact == nil {
		return
	}

	chatID := update.Message.Chat.ID
	contact := update.Message.Contact

	if update.Message.From != nil && contact.UserID != 0 && contact.UserID != update.Message.From.ID {
		h.service.SendError(ctx, chatID, foreignContact)
		return
	}

	name := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	user, err := h.service.Register(ctx, chatID, name, contact.PhoneNumber)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidPhoneNumber) || errors.Is(err, errors.ErrInvalidUserName) {
			h.service.SendError(ctx, chatID, invalidPhoneText)
			return
		}
		h.service.Logger().Error("Failed to register contact", logger.Int64("chat_id", chatID), logger.Error(err))
		h.service.SendError(ctx, chatID, genericErrorText)
		return
	}

	openConversation(ctx, h.service, chatID, user, keyboard.CreateRemoveKeyboard())
}
