package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/bot/keyboard"
	botservice "github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/internal/validation"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// AdminHandler обрабатывает команды администратора /agenda и /reagendar
type AdminHandler struct {
	service *botservice.Service
}

// NewAdminHandler создает обработчик команд администратора
func NewAdminHandler(service *botservice.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// HandleAgenda отправляет записи на дату (по умолчанию сегодня), по
// одному сообщению с кнопками на запись
func (h *AdminHandler) HandleAgenda(ctx context.Context, update *models.Update, args []string) {
	chatID := update.Message.Chat.ID
	if !h.service.IsAdmin(chatID) {
		h.service.SendError(ctx, chatID, adminOnlyText)
		return
	}

	date := h.service.Today()
	if len(args) > 0 {
		date = args[0]
	}
	if _, err := validation.ValidateDate(date); err != nil {
		h.service.SendError(ctx, chatID, "Data inválida. Use AAAA-MM-DD.")
		return
	}

	apts := h.service.AgendaForDate(date)
	header := fmt.Sprintf("📅 Agenda de %s: %d agendamento(s)", keyboard.FormatDate(date), len(apts))
	if err := h.service.SendSimpleMessage(ctx, chatID, header); err != nil {
		h.service.Logger().Error("Failed to send agenda header", logger.Int64("chat_id", chatID), logger.Error(err))
		return
	}

	for _, apt := range apts {
		var markup models.ReplyMarkup
		if kb := keyboard.CreateAppointmentActionsKeyboard(apt); kb != nil {
			markup = kb
		}
		if err := h.service.SendMessage(ctx, chatID, formatAppointmentCard(apt), markup); err != nil {
			h.service.Logger().Error("Failed to send appointment card",
				logger.Int64("chat_id", chatID),
				logger.String("appointment_id", apt.ID),
				logger.Error(err),
			)
		}
	}
}

// HandleReschedule переносит запись: /reagendar <id> <YYYY-MM-DD> <HH:mm>
func (h *AdminHandler) HandleReschedule(ctx context.Context, update *models.Update, args []string) {
	chatID := update.Message.Chat.ID
	if !h.service.IsAdmin(chatID) {
		h.service.SendError(ctx, chatID, adminOnlyText)
		return
	}
	if len(args) != 3 {
		h.service.SendError(ctx, chatID, rescheduleUsage)
		return
	}

	apt, found, err := h.service.Reschedule(ctx, args[0], args[1], args[2])
	switch {
	case errors.Is(err, errors.ErrInvalidDate), errors.Is(err, errors.ErrInvalidTime):
		h.service.SendError(ctx, chatID, rescheduleUsage)
		return
	case errors.Is(err, errors.ErrInvalidTransition):
		h.service.SendError(ctx, chatID, cancelledText)
		return
	case err != nil:
		h.service.Logger().Error("Failed to reschedule", logger.String("appointment_id", args[0]), logger.Error(err))
		h.service.SendError(ctx, chatID, genericErrorText)
		return
	case !found:
		h.service.SendError(ctx, chatID, notFoundText)
		return
	}

	h.service.ScheduleReminder(ctx, apt)

	text := "🔁 Agendamento reagendado.\n\n" + formatAppointmentCard(apt)
	var markup models.ReplyMarkup
	if kb := keyboard.CreateAppointmentActionsKeyboard(apt); kb != nil {
		markup = kb
	}
	if err := h.service.SendMessage(ctx, chatID, text, markup); err != nil {
		h.service.Logger().Error("Failed to send reschedule result", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}

// ParseCommand делит текст на команду и аргументы; суффикс @bot отбрасывается
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd), fields[1:]
}
