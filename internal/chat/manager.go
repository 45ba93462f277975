package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zanvi/lacasabarber/internal/assistant"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// ServiceCatalog отдает активные услуги для системной инструкции
type ServiceCatalog interface {
	ListActiveServices() []models.Service
}

// Manager хранит открытые сессии по id пользователя
type Manager struct {
	client    assistant.Client
	catalog   ServiceCatalog
	processor Processor
	shop      assistant.Shop
	logger    *logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager создает Manager
func NewManager(client assistant.Client, catalog ServiceCatalog, processor Processor, shop assistant.Shop, log *logger.Logger) *Manager {
	return &Manager{
		client:    client,
		catalog:   catalog,
		processor: processor,
		shop:      shop,
		logger:    log,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// WithClock задает источник времени для инструкции и меток сообщений
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Open открывает новый диалог, заменяя предыдущий. Первое сообщение в
// истории всегда приветствие.
func (m *Manager) Open(ctx context.Context, user models.User) (*Session, error) {
	prompt := assistant.BuildSystemPrompt(assistant.PromptData{
		Shop:         m.shop,
		Services:     m.catalog.ListActiveServices(),
		Now:          m.now(),
		CustomerName: user.Name,
	})

	conv, err := m.client.StartChat(ctx, prompt)
	if err != nil {
		metrics.RecordError("chat", "start_chat")
		return nil, errors.ErrAssistantUnavailable.WithError(err)
	}

	s := &Session{
		user:      user,
		conv:      conv,
		processor: m.processor,
		logger:    m.logger,
		now:       m.now,
	}
	s.append(Message{Role: RoleModel, Text: m.Welcome(user)})

	m.mu.Lock()
	if prev, ok := m.sessions[user.ID]; ok {
		prev.closed.Store(true)
	}
	m.sessions[user.ID] = s
	metrics.ActiveChatSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.Info("Chat session opened", logger.String("user_id", user.ID))
	return s, nil
}

// Get возвращает открытую сессию пользователя
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// GetOrOpen возвращает открытую сессию или открывает новую
func (m *Manager) GetOrOpen(ctx context.Context, user models.User) (*Session, error) {
	if s, ok := m.Get(user.ID); ok {
		return s, nil
	}
	return m.Open(ctx, user)
}

// Close закрывает сессию; ответ на уже отправленный запрос будет отброшен
func (m *Manager) Close(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.closed.Store(true)
		delete(m.sessions, userID)
		metrics.ActiveChatSessions.Set(float64(len(m.sessions)))
	}
}

// Welcome возвращает приветствие для пользователя
func (m *Manager) Welcome(user models.User) string {
	return fmt.Sprintf(welcomeTemplate, user.Name, m.shop.Name, m.shop.Owner)
}
