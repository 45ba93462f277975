package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики сервиса записи
var (
	// Метрики Telegram обработчиков
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_bot_requests_total",
			Help: "Total processed Telegram updates",
		},
		[]string{"handler", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barber_bot_request_duration_seconds",
			Help:    "Telegram update handling time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	// Метрики пользователей
	UserLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_user_logins_total",
			Help: "Total logins by role and whether the user was new",
		},
		[]string{"role", "new"},
	)

	// Метрики записи
	BookingsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barber_bookings_extracted_total",
			Help: "Booking directives successfully extracted from assistant responses",
		},
	)

	MalformedDirectives = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barber_booking_directives_malformed_total",
			Help: "Booking directives that could not be decoded",
		},
	)

	AppointmentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barber_appointments_created_total",
			Help: "Appointments created from chat bookings",
		},
	)

	AppointmentStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_appointment_status_changes_total",
			Help: "Appointment status changes made by the admin",
		},
		[]string{"status"},
	)

	// Метрики чата
	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_chat_messages_total",
			Help: "Chat messages by outcome",
		},
		[]string{"outcome"},
	)

	ActiveChatSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "barber_chat_sessions_active",
			Help: "Open chat sessions",
		},
	)

	AssistantRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barber_assistant_request_duration_seconds",
			Help:    "Conversational assistant round-trip time in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"status"},
	)

	// Метрики хранилища
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_storage_operations_total",
			Help: "Persistence store operations",
		},
		[]string{"operation", "key", "status"},
	)

	// Метрики событий
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_events_published_total",
			Help: "Domain events published",
		},
		[]string{"subject", "status"},
	)

	// Метрики производительности
	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "barber_memory_usage_bytes",
			Help: "Memory usage in bytes",
		},
	)

	GoroutinesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "barber_goroutines_count",
			Help: "Active goroutines",
		},
	)

	// Метрики ошибок
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_errors_total",
			Help: "Errors by component",
		},
		[]string{"component", "error_type"},
	)

	// Метрики HTTP сервера
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barber_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barber_http_request_duration_seconds",
			Help:    "HTTP request handling time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRequest записывает метрику обработки запроса
func RecordRequest(handler, status string) {
	RequestsTotal.WithLabelValues(handler, status).Inc()
}

// RecordLogin записывает метрику входа
func RecordLogin(role string, created bool) {
	newLabel := "false"
	if created {
		newLabel = "true"
	}
	UserLogins.WithLabelValues(role, newLabel).Inc()
}

func RecordBookingExtracted() {
	BookingsExtracted.Inc()
}

func RecordMalformedDirective() {
	MalformedDirectives.Inc()
}

func RecordAppointmentCreated() {
	AppointmentsCreated.Inc()
}

func RecordStatusChange(status string) {
	AppointmentStatusChanges.WithLabelValues(status).Inc()
}

// RecordChatMessage записывает исход сообщения: replied, booked, busy, failed, empty
func RecordChatMessage(outcome string) {
	ChatMessages.WithLabelValues(outcome).Inc()
}

// RecordStorageOperation записывает метрику операции с хранилищем
func RecordStorageOperation(operation, key, status string) {
	StorageOperations.WithLabelValues(operation, key, status).Inc()
}

func RecordEventPublished(subject, status string) {
	EventsPublished.WithLabelValues(subject, status).Inc()
}

// RecordError записывает метрику ошибки
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
