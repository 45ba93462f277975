package repository

import (
	"context"
	"sort"

	"github.com/Zanvi/lacasabarber/internal/storage"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// UnknownPhone подставляется, если у пользователя нет телефона
const UnknownPhone = "Não informado"

// BookingRequest содержит данные записи, извлеченные из ответа ассистента
type BookingRequest struct {
	UserID      string
	UserName    string
	ServiceName string
	Date        string
	Time        string
}

// AppointmentPatch описывает частичное изменение записи
type AppointmentPatch struct {
	Date         *string
	Time         *string
	OriginalDate *string
	OriginalTime *string
	Status       *models.AppointmentStatus
	Notes        *string
}

// ListAppointments возвращает записи, новые первыми. Порядок записей
// с одинаковым createdAt сохраняется.
func (r *Repository) ListAppointments() []models.Appointment {
	r.mu.Lock()
	list := append([]models.Appointment(nil), r.appointments...)
	r.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt > list[j].CreatedAt
	})
	return list
}

// GetAppointment возвращает запись по id
func (r *Repository) GetAppointment(id string) (models.Appointment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// CreateAppointmentFromBooking создает подтвержденную запись. Телефон берется
// из пользователя, цена и длительность из услуги с тем же именем; если услуга
// не найдена, записываются нулевая цена и длительность по умолчанию.
func (r *Repository) CreateAppointmentFromBooking(ctx context.Context, req BookingRequest) (models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	phone := UnknownPhone
	if u, ok := r.userByID(req.UserID); ok && u.Phone != "" {
		phone = u.Phone
	}

	price := 0.0
	duration := DefaultServiceDuration
	if svc, ok := r.serviceByName(req.ServiceName); ok {
		price = svc.Price
		duration = svc.Duration
	} else {
		r.logger.Warn("Booked service not found in catalog", logger.String("service", req.ServiceName))
	}

	apt := models.Appointment{
		ID:              r.newID(),
		UserID:          req.UserID,
		UserName:        req.UserName,
		UserPhone:       phone,
		ServiceName:     req.ServiceName,
		ServicePrice:    price,
		ServiceDuration: duration,
		Date:            req.Date,
		Time:            req.Time,
		Status:          models.StatusConfirmed,
		CreatedAt:       r.millis(),
	}

	next := append(append(make([]models.Appointment, 0, len(r.appointments)+1), r.appointments...), apt)
	if err := save(ctx, r, storage.KeyAppointments, next); err != nil {
		return models.Appointment{}, err
	}
	r.appointments = next

	r.logger.Info("Appointment created",
		logger.String("appointment_id", apt.ID),
		logger.String("user_id", apt.UserID),
		logger.String("service", apt.ServiceName),
		logger.String("date", apt.Date),
		logger.String("time", apt.Time),
	)
	return apt, nil
}

// UpdateAppointment применяет patch и выставляет updatedAt. Неизвестный id: found=false.
func (r *Repository) UpdateAppointment(ctx context.Context, id string, patch AppointmentPatch) (models.Appointment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.logger.Debug("Appointment update ignored, unknown id", logger.String("appointment_id", id))
		return models.Appointment{}, false, nil
	}

	next := append([]models.Appointment(nil), r.appointments...)
	apt := next[idx]
	if patch.Date != nil {
		apt.Date = *patch.Date
	}
	if patch.Time != nil {
		apt.Time = *patch.Time
	}
	if patch.OriginalDate != nil {
		apt.OriginalDate = *patch.OriginalDate
	}
	if patch.OriginalTime != nil {
		apt.OriginalTime = *patch.OriginalTime
	}
	if patch.Status != nil {
		apt.Status = *patch.Status
	}
	if patch.Notes != nil {
		apt.Notes = *patch.Notes
	}
	apt.UpdatedAt = r.millis()
	next[idx] = apt

	if err := save(ctx, r, storage.KeyAppointments, next); err != nil {
		return models.Appointment{}, false, err
	}
	r.appointments = next

	r.logger.Info("Appointment updated",
		logger.String("appointment_id", apt.ID),
		logger.String("status", string(apt.Status)),
	)
	return apt, true, nil
}
