// Package agenda реализует действия администратора над записями
package agenda

import (
	"context"

	"github.com/Zanvi/lacasabarber/internal/events"
	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/internal/validation"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// Store операции репозитория, которые использует агенда
type Store interface {
	ListAppointments() []models.Appointment
	GetAppointment(id string) (models.Appointment, bool)
	UpdateAppointment(ctx context.Context, id string, patch repository.AppointmentPatch) (models.Appointment, bool, error)
}

// Agenda управляет статусами и переносом записей
type Agenda struct {
	store    Store
	notifier *events.Notifier
	logger   *logger.Logger
}

// New создает Agenda
func New(store Store, notifier *events.Notifier, log *logger.Logger) *Agenda {
	if notifier == nil {
		notifier = events.NewNotifier(nil, log)
	}
	return &Agenda{store: store, notifier: notifier, logger: log}
}

// ForDate возвращает записи на дату, включая перенесенные с этой даты
func (a *Agenda) ForDate(date string) []models.Appointment {
	all := a.store.ListAppointments()
	out := make([]models.Appointment, 0, len(all))
	for _, apt := range all {
		if MatchesDate(apt, date) {
			out = append(out, apt)
		}
	}
	return out
}

// Get возвращает запись по id
func (a *Agenda) Get(id string) (models.Appointment, bool) {
	return a.store.GetAppointment(id)
}

// MatchesDate: запись назначена на date или перенесена с date
func MatchesDate(apt models.Appointment, date string) bool {
	return apt.Date == date || (apt.OriginalDate == date && apt.Status == models.StatusRescheduled)
}

// Actions возвращает статусы, которые администратор может выставить записи
func Actions(apt models.Appointment) []models.AppointmentStatus {
	switch apt.Status {
	case models.StatusCancelled:
		return nil
	case models.StatusCompleted:
		return []models.AppointmentStatus{models.StatusCancelled}
	default:
		return []models.AppointmentStatus{models.StatusCompleted, models.StatusCancelled}
	}
}

// CanReschedule сообщает, можно ли перенести запись
func CanReschedule(apt models.Appointment) bool {
	return apt.Status != models.StatusCancelled
}

// ChangeStatus выставляет статус. Отмененная запись не меняется;
// повторная установка текущего статуса ничего не делает.
func (a *Agenda) ChangeStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, bool, error) {
	if !status.Valid() {
		return models.Appointment{}, false, errors.ErrInvalidStatus.WithContext(map[string]string{"status": string(status)})
	}

	current, ok := a.store.GetAppointment(id)
	if !ok {
		return models.Appointment{}, false, nil
	}
	if current.Status == status {
		return current, true, nil
	}
	if current.Status == models.StatusCancelled {
		return current, true, errors.ErrInvalidTransition.WithContext(map[string]string{
			"from": string(current.Status),
			"to":   string(status),
		})
	}

	updated, found, err := a.store.UpdateAppointment(ctx, id, repository.AppointmentPatch{Status: &status})
	if err != nil || !found {
		return updated, found, err
	}

	metrics.RecordStatusChange(string(status))
	a.logger.WithContext(ctx).Info("Appointment status changed",
		logger.String("appointment_id", id),
		logger.String("from", string(current.Status)),
		logger.String("to", string(status)),
	)
	a.notifier.StatusChanged(ctx, updated, current.Status)
	return updated, true, nil
}

// Reschedule переносит запись. Если дата и время не меняются, запись
// остается как есть. originalDate/originalTime получают значения, которые
// заменяются, поэтому при повторном переносе сохраняется только предыдущее.
func (a *Agenda) Reschedule(ctx context.Context, id, date, time string) (models.Appointment, bool, error) {
	if _, err := validation.ValidateDate(date); err != nil {
		return models.Appointment{}, false, err
	}
	if _, err := validation.ValidateTime(time); err != nil {
		return models.Appointment{}, false, err
	}

	current, ok := a.store.GetAppointment(id)
	if !ok {
		return models.Appointment{}, false, nil
	}
	if current.Date == date && current.Time == time {
		return current, true, nil
	}
	if !CanReschedule(current) {
		return current, true, errors.ErrInvalidTransition.WithContext(map[string]string{
			"from": string(current.Status),
			"to":   string(models.StatusRescheduled),
		})
	}

	status := models.StatusRescheduled
	updated, found, err := a.store.UpdateAppointment(ctx, id, repository.AppointmentPatch{
		Date:         &date,
		Time:         &time,
		OriginalDate: &current.Date,
		OriginalTime: &current.Time,
		Status:       &status,
	})
	if err != nil || !found {
		return updated, found, err
	}

	metrics.RecordStatusChange(string(status))
	a.logger.WithContext(ctx).Info("Appointment rescheduled",
		logger.String("appointment_id", id),
		logger.String("from", current.Date+" "+current.Time),
		logger.String("to", date+" "+time),
	)
	a.notifier.Rescheduled(ctx, updated, current.Status)
	return updated, true, nil
}
