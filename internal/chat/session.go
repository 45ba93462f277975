// Package chat ведет диалоги клиентов с ассистентом и передает ответы
// в конвейер записи.
package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Zanvi/lacasabarber/internal/assistant"
	"github.com/Zanvi/lacasabarber/internal/booking"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// Тексты, которые видит клиент вместо ответа модели
const (
	RetryMessage    = "Tive um erro de conexão. Pode tentar novamente?"
	NotUnderstood   = "Desculpe, não consegui entender. Pode repetir?"
	welcomeTemplate = "Olá %s, seja bem-vindo à %s! ✂️ Eu sou o assistente virtual do %s. Como posso te ajudar hoje?"
)

// Role автор сообщения
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message сообщение в истории диалога
type Message struct {
	ID                    string              `json:"id"`
	Role                  Role                `json:"role"`
	Text                  string              `json:"text"`
	Timestamp             time.Time           `json:"timestamp"`
	IsBookingConfirmation bool                `json:"isBookingConfirmation,omitempty"`
	Appointment           *models.Appointment `json:"appointment,omitempty"`
	Failed                bool                `json:"failed,omitempty"`
}

// Processor обрабатывает ответ модели
type Processor interface {
	Process(ctx context.Context, user models.User, response string) (booking.Result, error)
}

// Session диалог одного клиента. В каждый момент выполняется не больше
// одного запроса к ассистенту.
type Session struct {
	user      models.User
	conv      assistant.Conversation
	processor Processor
	logger    *logger.Logger
	now       func() time.Time

	inFlight atomic.Bool
	closed   atomic.Bool

	mu       sync.Mutex
	messages []Message
}

// User возвращает владельца сессии
func (s *Session) User() models.User {
	return s.user
}

// Messages возвращает копию истории
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Busy сообщает, ждет ли сессия ответа ассистента
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// Send отправляет сообщение клиента. Пока предыдущий запрос не завершен,
// возвращается ErrChatBusy. Сбой ассистента не является ошибкой: клиент
// получает RetryMessage.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		metrics.RecordChatMessage("empty")
		return Message{}, errors.ErrEmptyMessage
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.RecordChatMessage("busy")
		return Message{}, errors.ErrChatBusy
	}
	defer s.inFlight.Store(false)

	log := s.logger.WithContext(ctx).With(logger.String("user_id", s.user.ID))
	s.append(Message{Role: RoleUser, Text: text})

	response, err := s.conv.Send(ctx, text)
	if err != nil {
		metrics.RecordChatMessage("failed")
		log.Error("Assistant request failed", logger.Error(err))
		return s.append(Message{Role: RoleModel, Text: RetryMessage, Failed: true}), nil
	}
	if strings.TrimSpace(response) == "" {
		response = NotUnderstood
	}

	result, err := s.processor.Process(ctx, s.user, response)
	if err != nil {
		metrics.RecordChatMessage("failed")
		return s.append(Message{Role: RoleModel, Text: RetryMessage, Failed: true}), nil
	}

	reply := Message{Role: RoleModel, Text: result.Text}
	if result.Booked() {
		reply.IsBookingConfirmation = true
		reply.Appointment = result.Appointment
		metrics.RecordChatMessage("booked")
	} else {
		metrics.RecordChatMessage("replied")
	}

	if s.closed.Load() {
		log.Debug("Response arrived after session was closed")
		return reply, nil
	}
	return s.append(reply), nil
}

func (s *Session) append(m Message) Message {
	m.ID = uuid.NewString()
	m.Timestamp = s.now()

	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	return m
}
