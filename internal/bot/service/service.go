package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/chat"
	"github.com/Zanvi/lacasabarber/internal/config"
	"github.com/Zanvi/lacasabarber/internal/scheduler"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/internal/validation"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// Sender подмножество методов Telegram Bot API; *bot.Bot удовлетворяет ему
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Users вход и поиск пользователей
type Users interface {
	Login(ctx context.Context, name, phone string, isAdmin bool) (models.User, bool, error)
	GetUser(id string) (models.User, bool)
}

// Chats диалоги с ассистентом
type Chats interface {
	Open(ctx context.Context, user models.User) (*chat.Session, error)
	GetOrOpen(ctx context.Context, user models.User) (*chat.Session, error)
	Close(userID string)
}

// Catalog активные услуги
type Catalog interface {
	ListActiveServices() []models.Service
}

// Agenda операции администратора с записями
type Agenda interface {
	Get(id string) (models.Appointment, bool)
	ForDate(date string) []models.Appointment
	ChangeStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, bool, error)
	Reschedule(ctx context.Context, id, date, time string) (models.Appointment, bool, error)
}

// Deps зависимости сервиса бота
type Deps struct {
	Sender  Sender
	Users   Users
	Chats   Chats
	Catalog Catalog
	Agenda  Agenda
}

// Service представляет основной сервис Telegram бота
type Service struct {
	sender  Sender
	users   Users
	chats   Chats
	catalog Catalog
	agenda  Agenda
	config  *config.Config
	logger  *logger.Logger
	now     func() time.Time

	reminders scheduler.ReminderScheduler

	mu    sync.RWMutex
	links map[int64]string
}

// NewService создает новый экземпляр сервиса бота
func NewService(deps Deps, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		sender:  deps.Sender,
		users:   deps.Users,
		chats:   deps.Chats,
		catalog: deps.Catalog,
		agenda:  deps.Agenda,
		config:  cfg,
		logger:  log,
		now:     time.Now,
		links:   make(map[int64]string),
	}
}

// WithClock задает источник времени
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithReminders включает напоминания о записях
func (s *Service) WithReminders(r scheduler.ReminderScheduler) *Service {
	s.reminders = r
	return s
}

// Logger возвращает логгер сервиса
func (s *Service) Logger() *logger.Logger {
	return s.logger
}

// Shop возвращает данные барбершопа
func (s *Service) Shop() config.ShopConfig {
	return s.config.Shop
}

// IsAdmin проверяет, является ли чат администраторским
func (s *Service) IsAdmin(chatID int64) bool {
	return s.config.Telegram.IsAdmin(chatID)
}

// Today возвращает сегодняшнюю дату в часовом поясе барбершопа
func (s *Service) Today() string {
	return s.now().In(s.config.Shop.Location()).Format(validation.DateLayout)
}

// UserForChat возвращает пользователя, привязанного к чату
func (s *Service) UserForChat(chatID int64) (models.User, bool) {
	s.mu.RLock()
	id, ok := s.links[chatID]
	s.mu.RUnlock()
	if !ok {
		return models.User{}, false
	}
	return s.users.GetUser(id)
}

// Register выполняет вход по контакту и привязывает чат к пользователю
func (s *Service) Register(ctx context.Context, chatID int64, name, phone string) (models.User, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateUserName(name); err != nil {
		return models.User{}, err
	}
	if err := validation.ValidatePhoneNumber(phone); err != nil {
		return models.User{}, err
	}

	user, created, err := s.users.Login(ctx, name, validation.DigitsOnly(phone), false)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	s.links[chatID] = user.ID
	s.mu.Unlock()

	s.logger.WithContext(ctx).Info("Telegram chat linked",
		logger.Int64("chat_id", chatID),
		logger.String("user_id", user.ID),
		logger.Bool("created", created),
	)
	return user, nil
}

// OpenChat начинает новый диалог
func (s *Service) OpenChat(ctx context.Context, user models.User) (*chat.Session, error) {
	return s.chats.Open(ctx, user)
}

// Chat возвращает текущий диалог или открывает новый
func (s *Service) Chat(ctx context.Context, user models.User) (*chat.Session, error) {
	return s.chats.GetOrOpen(ctx, user)
}

// CloseChat закрывает диалог пользователя
func (s *Service) CloseChat(userID string) {
	s.chats.Close(userID)
}

// ActiveServices возвращает активные услуги
func (s *Service) ActiveServices() []models.Service {
	return s.catalog.ListActiveServices()
}

// AgendaForDate возвращает записи на дату
func (s *Service) AgendaForDate(date string) []models.Appointment {
	return s.agenda.ForDate(date)
}

// ChangeStatus меняет статус записи
func (s *Service) ChangeStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, bool, error) {
	return s.agenda.ChangeStatus(ctx, id, status)
}

// Reschedule переносит запись
func (s *Service) Reschedule(ctx context.Context, id, date, time string) (models.Appointment, bool, error) {
	return s.agenda.Reschedule(ctx, id, date, time)
}

// SendMessage отправляет сообщение пользователю
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, replyMarkup tgmodels.ReplyMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: replyMarkup,
	}

	if _, err := s.sender.SendMessage(ctx, params); err != nil {
		metrics.RecordError("telegram", "send_message")
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// SendSimpleMessage отправляет простое текстовое сообщение
func (s *Service) SendSimpleMessage(ctx context.Context, chatID int64, text string) error {
	return s.SendMessage(ctx, chatID, text, nil)
}

// SendError отправляет сообщение об ошибке пользователю
func (s *Service) SendError(ctx context.Context, chatID int64, message string) {
	if err := s.SendSimpleMessage(ctx, chatID, message); err != nil {
		s.logger.Error("Failed to send error message",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}

// SendTyping показывает индикатор набора текста
func (s *Service) SendTyping(ctx context.Context, chatID int64) {
	_, err := s.sender.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: tgmodels.ChatActionTyping,
	})
	if err != nil {
		s.logger.Debug("Failed to send chat action", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}

// AnswerCallbackQuery отвечает на callback query
func (s *Service) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	params := &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}

	if _, err := s.sender.AnswerCallbackQuery(ctx, params); err != nil {
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// chatForUser ищет чат, привязанный к пользователю
func (s *Service) chatForUser(userID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for chatID, id := range s.links {
		if id == userID {
			return chatID, true
		}
	}
	return 0, false
}

// ScheduleReminder планирует напоминание клиенту за час до записи.
// Если клиент не писал боту, напоминание не планируется.
func (s *Service) ScheduleReminder(ctx context.Context, apt models.Appointment) {
	if s.reminders == nil {
		return
	}
	chatID, ok := s.chatForUser(apt.UserID)
	if !ok {
		return
	}

	notifyAt, err := scheduler.NotifyAt(apt.Date, apt.Time, s.config.Shop.Location(), scheduler.DefaultLead)
	if err != nil {
		s.logger.Warn("Cannot compute reminder time", logger.String("appointment_id", apt.ID), logger.Error(err))
		return
	}

	err = s.reminders.Schedule(ctx, scheduler.Reminder{
		AppointmentID: apt.ID,
		ChatID:        chatID,
		Date:          apt.Date,
		Time:          apt.Time,
		NotifyAt:      notifyAt,
	})
	if err != nil {
		s.logger.Warn("Failed to schedule reminder", logger.String("appointment_id", apt.ID), logger.Error(err))
	}
}

// CancelReminder отменяет напоминание о записи
func (s *Service) CancelReminder(ctx context.Context, appointmentID string) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.Cancel(ctx, appointmentID); err != nil {
		s.logger.Warn("Failed to cancel reminder", logger.String("appointment_id", appointmentID), logger.Error(err))
	}
}

// SendReminder отправляет напоминание, если запись все еще активна и не
// была перенесена на другое время
func (s *Service) SendReminder(ctx context.Context, r scheduler.Reminder) error {
	apt, ok := s.agenda.Get(r.AppointmentID)
	if !ok || apt.Status == models.StatusCancelled || apt.Status == models.StatusCompleted {
		return nil
	}
	if apt.Date != r.Date || apt.Time != r.Time {
		return nil
	}

	text := fmt.Sprintf("⏰ Lembrete: seu horário de %s na %s é hoje às %s. Até já!", apt.ServiceName, s.config.Shop.Name, apt.Time)
	return s.SendSimpleMessage(ctx, r.ChatID, text)
}
