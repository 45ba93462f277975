package scheduler

import (
	"context"
	"time"
)

// DefaultLead за сколько до записи отправляется напоминание
const DefaultLead = time.Hour

// Reminder напоминание клиенту о записи
type Reminder struct {
	AppointmentID string
	ChatID        int64
	Date          string
	Time          string
	NotifyAt      time.Time
}

// ReminderScheduler определяет интерфейс для планирования напоминаний
type ReminderScheduler interface {
	// Schedule планирует напоминание; прежнее напоминание той же записи заменяется
	Schedule(ctx context.Context, r Reminder) error

	// Cancel отменяет запланированное напоминание
	Cancel(ctx context.Context, appointmentID string) error

	// Stop останавливает планировщик
	Stop() error
}

// ReminderSender определяет интерфейс для отправки напоминаний
type ReminderSender interface {
	SendReminder(ctx context.Context, r Reminder) error
}

// NotifyAt вычисляет момент напоминания для записи на date и clock в часовом поясе loc
func NotifyAt(date, clock string, loc *time.Location, lead time.Duration) (time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(-lead), nil
}
