package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/bot/keyboard"
	botservice "github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// ChatHandler передает текст клиента ассистенту
type ChatHandler struct {
	service *botservice.Service
}

// NewChatHandler создает обработчик диалога
func NewChatHandler(service *botservice.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Handle отправляет сообщение в диалог и пересылает ответ
func (h *ChatHandler) Handle(ctx context.Context, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, ok := h.service.UserForChat(chatID)
	if !ok {
		askForContact(ctx, h.service, chatID)
		return
	}

	session, err := h.service.Chat(ctx, user)
	if err != nil {
		h.service.Logger().Error("Failed to get chat session", logger.Int64("chat_id", chatID), logger.Error(err))
		h.service.SendError(ctx, chatID, genericErrorText)
		return
	}

	if session.Busy() {
		h.service.SendError(ctx, chatID, busyText)
		return
	}
	h.service.SendTyping(ctx, chatID)

	reply, err := session.Send(ctx, update.Message.Text)
	switch {
	case errors.Is(err, errors.ErrChatBusy):
		h.service.SendError(ctx, chatID, busyText)
		return
	case errors.Is(err, errors.ErrEmptyMessage):
		return
	case err != nil:
		h.service.Logger().Error("Chat message failed", logger.Int64("chat_id", chatID), logger.Error(err))
		h.service.SendError(ctx, chatID, genericErrorText)
		return
	}

	if reply.Text != "" {
		if err := h.service.SendSimpleMessage(ctx, chatID, reply.Text); err != nil {
			h.service.Logger().Error("Failed to send reply", logger.Int64("chat_id", chatID), logger.Error(err))
			return
		}
	}

	if reply.IsBookingConfirmation && reply.Appointment != nil {
		shop := h.service.Shop()
		card := formatConfirmation(*reply.Appointment, shop.Owner)
		markup := keyboard.CreateBookingConfirmationKeyboard(shop.WhatsApp, *reply.Appointment)
		if err := h.service.SendMessage(ctx, chatID, card, markup); err != nil {
			h.service.Logger().Error("Failed to send booking card", logger.Int64("chat_id", chatID), logger.Error(err))
		}
		h.service.ScheduleReminder(ctx, *reply.Appointment)
	}
}
