package keyboard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/agenda"
	"github.com/Zanvi/lacasabarber/internal/repository"
	storagemodels "github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/internal/validation"
)

const statusPrefix = "ST:"

// CreateContactKeyboard создает клавиатуру для запроса контакта
func CreateContactKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{
					Text:           "📱 Compartilhar telefone",
					RequestContact: true,
				},
			},
		},
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
}

// CreateRemoveKeyboard создает объект для удаления клавиатуры
func CreateRemoveKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{
		RemoveKeyboard: true,
	}
}

// WhatsAppURL ссылка wa.me с подготовленным текстом
func WhatsAppURL(number, text string) string {
	u := "https://wa.me/" + validation.DigitsOnly(number)
	if text != "" {
		u += "?text=" + url.QueryEscape(text)
	}
	return u
}

// CreateBookingConfirmationKeyboard кнопка для отправки записи барбершопу в WhatsApp
func CreateBookingConfirmationKeyboard(shopWhatsApp string, apt storagemodels.Appointment) *models.InlineKeyboardMarkup {
	text := fmt.Sprintf("Olá! Agendei %s para %s às %s.", apt.ServiceName, FormatDate(apt.Date), apt.Time)
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "💬 WhatsApp", URL: WhatsAppURL(shopWhatsApp, text)},
			},
		},
	}
}

var actionLabels = map[storagemodels.AppointmentStatus]string{
	storagemodels.StatusCompleted: "✅ Concluir",
	storagemodels.StatusCancelled: "❌ Cancelar",
}

// CreateAppointmentActionsKeyboard кнопки действий над записью. Для
// отмененной записи клавиатура не нужна и возвращается nil.
func CreateAppointmentActionsKeyboard(apt storagemodels.Appointment) *models.InlineKeyboardMarkup {
	var row []models.InlineKeyboardButton
	for _, status := range agenda.Actions(apt) {
		row = append(row, models.InlineKeyboardButton{
			Text:         actionLabels[status],
			CallbackData: StatusCallbackData(apt.ID, status),
		})
	}

	var rows [][]models.InlineKeyboardButton
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if phone := validation.DigitsOnly(apt.UserPhone); apt.UserPhone != repository.UnknownPhone && len(phone) >= validation.MinPhoneDigits {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "📞 Chamar no Zap", URL: WhatsAppURL("55"+phone, "")},
		})
	}
	if len(rows) == 0 {
		return nil
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// StatusCallbackData кодирует смену статуса в callback data
func StatusCallbackData(id string, status storagemodels.AppointmentStatus) string {
	return statusPrefix + id + ":" + string(status)
}

// ParseStatusCallback разбирает callback data, созданную StatusCallbackData
func ParseStatusCallback(data string) (string, storagemodels.AppointmentStatus, bool) {
	rest, ok := strings.CutPrefix(data, statusPrefix)
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], storagemodels.AppointmentStatus(rest[i+1:]), true
}

// FormatDate переводит YYYY-MM-DD в DD/MM/YYYY
func FormatDate(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
