package validation

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Zanvi/lacasabarber/pkg/errors"
)

// Регулярные выражения для валидации
var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Форматы даты и времени записи
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const (
	// MinPhoneDigits минимальное количество цифр в телефоне клиента
	MinPhoneDigits = 10
	maxNameLength  = 100
)

// ValidateDate проверяет дату в формате YYYY-MM-DD. Даты в прошлом допустимы.
func ValidateDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, errors.ErrInvalidDate.WithContext("a data não pode ser vazia")
	}

	if !dateRegex.MatchString(dateStr) {
		return time.Time{}, errors.ErrInvalidDate.WithContext(map[string]interface{}{
			"date":   dateStr,
			"reason": "formato esperado YYYY-MM-DD",
		})
	}

	date, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, errors.ErrInvalidDate.WithError(err).WithContext(map[string]interface{}{
			"date": dateStr,
		})
	}

	return date, nil
}

// ValidateTime проверяет время в формате HH:mm
func ValidateTime(timeStr string) (time.Time, error) {
	if timeStr == "" {
		return time.Time{}, errors.ErrInvalidTime.WithContext("o horário não pode ser vazio")
	}

	if !timeRegex.MatchString(timeStr) {
		return time.Time{}, errors.ErrInvalidTime.WithContext(map[string]interface{}{
			"time":   timeStr,
			"reason": "formato esperado HH:mm",
		})
	}

	parsed, err := time.Parse(TimeLayout, timeStr)
	if err != nil {
		return time.Time{}, errors.ErrInvalidTime.WithError(err).WithContext(map[string]interface{}{
			"time": timeStr,
		})
	}

	return parsed, nil
}

// ValidatePhoneNumber проверяет, что в телефоне не меньше MinPhoneDigits цифр
func ValidatePhoneNumber(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.ErrInvalidPhoneNumber.WithContext("o telefone não pode ser vazio")
	}

	if n := len(DigitsOnly(phone)); n < MinPhoneDigits {
		return errors.ErrInvalidPhoneNumber.WithContext(map[string]interface{}{
			"phone":  phone,
			"digits": n,
			"reason": "informe DDD + número",
		})
	}

	return nil
}

// DigitsOnly оставляет в строке только цифры
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// ValidateUserName валидирует имя пользователя
func ValidateUserName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.ErrInvalidUserName.WithContext("o nome não pode ser vazio")
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return errors.ErrInvalidUserName.WithContext(map[string]interface{}{
			"length": utf8.RuneCountInString(name),
			"max":    maxNameLength,
		})
	}

	return nil
}

// ValidateServiceName проверяет название услуги
func ValidateServiceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.ErrInvalidService.WithContext("o nome do serviço é obrigatório")
	}
	return nil
}

// ValidatePrice проверяет, что цена положительна и конечна
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return errors.ErrInvalidService.WithContext(map[string]interface{}{
			"price":  price,
			"reason": "o preço deve ser maior que zero",
		})
	}
	return nil
}

// ValidateChatID валидирует Telegram Chat ID
func ValidateChatID(chatID int64) error {
	if chatID == 0 {
		return errors.New("INVALID_CHAT_ID", "chat ID não pode ser zero")
	}
	return nil
}
