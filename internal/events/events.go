package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// Темы событий записи; к ним добавляется префикс из конфигурации
const (
	AppointmentCreated       = "appointment.created"
	AppointmentStatusChanged = "appointment.status_changed"
	AppointmentRescheduled   = "appointment.rescheduled"
)

// Publisher публикует событие в шину
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// AppointmentEvent описывает изменение записи
type AppointmentEvent struct {
	Type           string                   `json:"type"`
	Appointment    models.Appointment       `json:"appointment"`
	PreviousStatus models.AppointmentStatus `json:"previousStatus,omitempty"`
	OccurredAt     time.Time                `json:"occurredAt"`
}

// NATSPublisher публикует JSON-события в NATS
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *logger.Logger
}

// NewNATSPublisher подключается к NATS
func NewNATSPublisher(url, prefix string, log *logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("lacasabarber"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix, logger: log}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	full := subject
	if n.prefix != "" {
		full = n.prefix + "." + subject
	}

	n.logger.WithContext(ctx).Debug("Publishing event", logger.String("subject", full))
	return n.conn.Publish(full, payload)
}

// Close отправляет буферизованные сообщения и закрывает соединение
func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// NopPublisher отбрасывает события, когда шина не настроена
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }

// MemoryPublisher сохраняет события в памяти
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Recorded
}

// Recorded опубликованное событие
type Recorded struct {
	Subject string
	Data    interface{}
}

func (m *MemoryPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	m.events = append(m.events, Recorded{Subject: subject, Data: data})
	m.mu.Unlock()
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Events возвращает копию опубликованных событий
func (m *MemoryPublisher) Events() []Recorded {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Recorded(nil), m.events...)
}

// Notifier публикует события записи. Ошибки публикации логируются
// и не прерывают операцию, которая их вызвала.
type Notifier struct {
	pub    Publisher
	logger *logger.Logger
	now    func() time.Time
}

// NewNotifier создает Notifier; nil publisher заменяется NopPublisher
func NewNotifier(pub Publisher, log *logger.Logger) *Notifier {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Notifier{pub: pub, logger: log, now: time.Now}
}

// Created публикует appointment.created
func (n *Notifier) Created(ctx context.Context, apt models.Appointment) {
	n.publish(ctx, AppointmentCreated, AppointmentEvent{Type: AppointmentCreated, Appointment: apt})
}

// StatusChanged публикует appointment.status_changed
func (n *Notifier) StatusChanged(ctx context.Context, apt models.Appointment, previous models.AppointmentStatus) {
	n.publish(ctx, AppointmentStatusChanged, AppointmentEvent{
		Type:           AppointmentStatusChanged,
		Appointment:    apt,
		PreviousStatus: previous,
	})
}

// Rescheduled публикует appointment.rescheduled
func (n *Notifier) Rescheduled(ctx context.Context, apt models.Appointment, previous models.AppointmentStatus) {
	n.publish(ctx, AppointmentRescheduled, AppointmentEvent{
		Type:           AppointmentRescheduled,
		Appointment:    apt,
		PreviousStatus: previous,
	})
}

func (n *Notifier) publish(ctx context.Context, subject string, ev AppointmentEvent) {
	ev.OccurredAt = n.now().UTC()
	if err := n.pub.Publish(ctx, subject, ev); err != nil {
		metrics.RecordEventPublished(subject, "error")
		n.logger.WithContext(ctx).Error("Failed to publish event",
			logger.String("subject", subject),
			logger.String("appointment_id", ev.Appointment.ID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordEventPublished(subject, "success")
}
