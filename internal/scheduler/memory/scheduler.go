package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zanvi/lacasabarber/internal/scheduler"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// MemoryScheduler реализует планировщик напоминаний в памяти. После
// перезапуска процесса напоминания теряются.
type MemoryScheduler struct {
	timers   map[string]*reminderTimer
	mu       sync.RWMutex
	sender   scheduler.ReminderSender
	logger   *logger.Logger
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  bool
	stopOnce sync.Once
}

var _ scheduler.ReminderScheduler = (*MemoryScheduler)(nil)

// reminderTimer отдельная запись на каждый вызов Schedule: сработавший
// таймер удаляет из карты только свою запись
type reminderTimer struct {
	timer *time.Timer
}

// NewMemoryScheduler создает новый планировщик в памяти
func NewMemoryScheduler(sender scheduler.ReminderSender, log *logger.Logger) *MemoryScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &MemoryScheduler{
		timers: make(map[string]*reminderTimer),
		sender: sender,
		logger: log,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// WithClock задает источник времени
func (s *MemoryScheduler) WithClock(now func() time.Time) *MemoryScheduler {
	s.now = now
	return s
}

// Schedule планирует напоминание. Если момент уже прошел, напоминание
// не отправляется.
func (s *MemoryScheduler) Schedule(ctx context.Context, r scheduler.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("scheduler is stopped")
	}

	if entry, exists := s.timers[r.AppointmentID]; exists {
		entry.timer.Stop()
		delete(s.timers, r.AppointmentID)
	}

	delay := r.NotifyAt.Sub(s.now())
	if delay <= 0 {
		s.logger.Debug("Reminder time already passed",
			logger.String("appointment_id", r.AppointmentID),
			logger.String("notify_at", r.NotifyAt.Format(time.RFC3339)),
		)
		return nil
	}

	entry := &reminderTimer{}
	entry.timer = time.AfterFunc(delay, func() {
		s.handleReminder(entry, r)
	})
	s.timers[r.AppointmentID] = entry

	s.logger.Info("Reminder scheduled",
		logger.String("appointment_id", r.AppointmentID),
		logger.Int64("chat_id", r.ChatID),
		logger.Duration("in", delay),
	)
	return nil
}

// Cancel отменяет запланированное напоминание
func (s *MemoryScheduler) Cancel(ctx context.Context, appointmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.timers[appointmentID]; exists {
		entry.timer.Stop()
		delete(s.timers, appointmentID)
	}

	return nil
}

// Stop останавливает планировщик
func (s *MemoryScheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.stopped = true
		for id, entry := range s.timers {
			entry.timer.Stop()
			delete(s.timers, id)
		}
		s.cancel()
	})

	return nil
}

func (s *MemoryScheduler) handleReminder(entry *reminderTimer, r scheduler.Reminder) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.timers[r.AppointmentID] != entry {
		s.mu.Unlock()
		s.logger.Debug("Reminder superseded", logger.String("appointment_id", r.AppointmentID))
		return
	}
	delete(s.timers, r.AppointmentID)
	s.mu.Unlock()

	if err := s.sender.SendReminder(s.ctx, r); err != nil {
		metrics.RecordError("scheduler", "send_reminder")
		s.logger.Error("Failed to send reminder",
			logger.String("appointment_id", r.AppointmentID),
			logger.Int64("chat_id", r.ChatID),
			logger.Error(err),
		)
	}
}

// ActiveCount возвращает количество активных таймеров
func (s *MemoryScheduler) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.timers)
}
