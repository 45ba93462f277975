package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError представляет ошибку приложения с кодом и контекстом
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap позволяет использовать errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, поэтому копии из WithContext/WithError
// совпадают с предопределенными значениями.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(ctx interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError добавляет underlying ошибку
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Предопределенные ошибки
var (
	// Ошибки валидации
	ErrInvalidService = &AppError{
		Code:    "INVALID_SERVICE",
		Message: "serviço inválido",
	}

	ErrInvalidDate = &AppError{
		Code:    "INVALID_DATE",
		Message: "data inválida",
	}

	ErrInvalidTime = &AppError{
		Code:    "INVALID_TIME",
		Message: "horário inválido",
	}

	ErrInvalidPhoneNumber = &AppError{
		Code:    "INVALID_PHONE_NUMBER",
		Message: "telefone inválido",
	}

	ErrInvalidUserName = &AppError{
		Code:    "INVALID_USER_NAME",
		Message: "nome inválido",
	}

	ErrInvalidStatus = &AppError{
		Code:    "INVALID_STATUS",
		Message: "status de agendamento inválido",
	}

	// Ошибки бизнес-логики
	ErrInvalidTransition = &AppError{
		Code:    "INVALID_TRANSITION",
		Message: "mudança de status não permitida",
	}

	ErrMalformedDirective = &AppError{
		Code:    "MALFORMED_DIRECTIVE",
		Message: "diretiva de agendamento malformada",
	}

	ErrChatBusy = &AppError{
		Code:    "CHAT_BUSY",
		Message: "aguarde a resposta anterior",
	}

	ErrEmptyMessage = &AppError{
		Code:    "EMPTY_MESSAGE",
		Message: "mensagem vazia",
	}

	ErrSessionNotFound = &AppError{
		Code:    "SESSION_NOT_FOUND",
		Message: "sessão de chat não encontrada",
	}

	// Системные ошибки
	ErrAssistantUnavailable = &AppError{
		Code:    "ASSISTANT_UNAVAILABLE",
		Message: "assistente indisponível",
	}

	ErrStorage = &AppError{
		Code:    "STORAGE",
		Message: "erro de armazenamento",
	}

	ErrCorruptCollection = &AppError{
		Code:    "CORRUPT_COLLECTION",
		Message: "coleção armazenada corrompida",
	}

	ErrConfigurationInvalid = &AppError{
		Code:    "CONFIGURATION_INVALID",
		Message: "configuração inválida",
	}

	ErrTelegramAPI = &AppError{
		Code:    "TELEGRAM_API",
		Message: "erro da API do Telegram",
	}

	// Ошибки доступа
	ErrUnauthorized = &AppError{
		Code:    "UNAUTHORIZED",
		Message: "não autenticado",
	}

	ErrForbidden = &AppError{
		Code:    "FORBIDDEN",
		Message: "acesso negado",
	}
)

// New создает новую ошибку приложения
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает обычную ошибку в AppError
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// As извлекает AppError из цепочки ошибок
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is повторяет errors.Is, чтобы не импортировать оба пакета
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
