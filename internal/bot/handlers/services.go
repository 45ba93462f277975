package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"

	botservice "github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// ServicesHandler обрабатывает /servicos
type ServicesHandler struct {
	service *botservice.Service
}

// NewServicesHandler создает обработчик /servicos
func NewServicesHandler(service *botservice.Service) *ServicesHandler {
	return &ServicesHandler{service: service}
}

// Handle отправляет список активных услуг
func (h *ServicesHandler) Handle(ctx context.Context, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	text := formatServices(h.service.ActiveServices())
	if err := h.service.SendSimpleMessage(ctx, chatID, text); err != nil {
		h.service.Logger().Error("Failed to send services", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}
