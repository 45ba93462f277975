package models

import (
	"encoding/json"
	"fmt"
)

// Role определяет роль пользователя
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// User представляет пользователя системы. ID совпадает с телефоном,
// для администратора без телефона используется AdminUserID.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Service представляет услугу барбершопа
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Active      bool    `json:"active"`
	UpdatedAt   int64   `json:"updatedAt,omitempty"`
}

// UnmarshalJSON считает услугу без поля active активной
func (s *Service) UnmarshalJSON(data []byte) error {
	type plain Service
	p := plain{Active: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Service(p)
	return nil
}

// Appointment представляет запись клиента
type Appointment struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	UserName        string            `json:"userName"`
	UserPhone       string            `json:"userPhone,omitempty"`
	ServiceName     string            `json:"serviceName"`
	ServicePrice    float64           `json:"servicePrice"`
	ServiceDuration string            `json:"serviceDuration,omitempty"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	OriginalDate    string            `json:"originalDate,omitempty"`
	OriginalTime    string            `json:"originalTime,omitempty"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       int64             `json:"createdAt"`
	UpdatedAt       int64             `json:"updatedAt,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// WasRescheduled проверяет, переносилась ли запись
func (a Appointment) WasRescheduled() bool {
	return a.Status == StatusRescheduled && a.OriginalDate != ""
}

// AppointmentStatus определяет статус записи
type AppointmentStatus string

const (
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusPending     AppointmentStatus = "pending"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// AllStatuses перечисляет все статусы записи
var AllStatuses = []AppointmentStatus{
	StatusConfirmed,
	StatusPending,
	StatusCancelled,
	StatusCompleted,
	StatusRescheduled,
}

// ParseAppointmentStatus разбирает статус из строки
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return status, nil
}

// Valid проверяет, что статус входит в перечисление
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled, StatusCompleted, StatusRescheduled:
		return true
	}
	return false
}

// Label возвращает подпись статуса для интерфейса
func (s AppointmentStatus) Label() string {
	switch s {
	case StatusConfirmed:
		return "Confirmado"
	case StatusPending:
		return "Pendente"
	case StatusCancelled:
		return "Cancelado"
	case StatusCompleted:
		return "Concluído"
	case StatusRescheduled:
		return "Reagendado"
	}
	return string(s)
}

// UnmarshalText отклоняет неизвестные статусы
func (s *AppointmentStatus) UnmarshalText(text []byte) error {
	status, err := ParseAppointmentStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
