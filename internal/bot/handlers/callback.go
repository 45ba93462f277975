package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/bot/keyboard"
	botservice "github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// CallbackHandler обрабатывает callback query от inline кнопок
type CallbackHandler struct {
	service *botservice.Service
}

// NewCallbackHandler создает новый обработчик callback query
func NewCallbackHandler(service *botservice.Service) *CallbackHandler {
	return &CallbackHandler{service: service}
}

// Handle обрабатывает нажатия "Concluir" и "Cancelar"
func (h *CallbackHandler) Handle(ctx context.Context, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery
	chatID := cb.From.ID
	if cb.Message.Message != nil {
		chatID = cb.Message.Message.Chat.ID
	}

	if !h.service.IsAdmin(cb.From.ID) {
		h.answer(ctx, cb.ID, adminOnlyText)
		return
	}

	id, status, ok := keyboard.ParseStatusCallback(cb.Data)
	if !ok {
		h.answer(ctx, cb.ID, "Opção inválida")
		return
	}

	apt, found, err := h.service.ChangeStatus(ctx, id, status)
	switch {
	case errors.Is(err, errors.ErrInvalidTransition):
		h.answer(ctx, cb.ID, cancelledText)
		return
	case err != nil:
		h.service.Logger().Error("Failed to change status",
			logger.String("appointment_id", id),
			logger.String("status", string(status)),
			logger.Error(err),
		)
		h.answer(ctx, cb.ID, genericErrorText)
		return
	case !found:
		h.answer(ctx, cb.ID, notFoundText)
		return
	}

	h.answer(ctx, cb.ID, "Status: "+apt.Status.Label())
	h.service.CancelReminder(ctx, apt.ID)

	var markup models.ReplyMarkup
	if kb := keyboard.CreateAppointmentActionsKeyboard(apt); kb != nil {
		markup = kb
	}
	if err := h.service.SendMessage(ctx, chatID, formatAppointmentCard(apt), markup); err != nil {
		h.service.Logger().Error("Failed to send updated card", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}

func (h *CallbackHandler) answer(ctx context.Context, id, text string) {
	if err := h.service.AnswerCallbackQuery(ctx, id, text); err != nil {
		h.service.Logger().Warn("Failed to answer callback query", logger.Error(err))
	}
}
