package booking

import (
	"context"

	"github.com/Zanvi/lacasabarber/internal/events"
	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// AppointmentCreator создает запись по данным директивы
type AppointmentCreator interface {
	CreateAppointmentFromBooking(ctx context.Context, req repository.BookingRequest) (models.Appointment, error)
}

// Result итог обработки ответа ассистента
type Result struct {
	Text        string
	Appointment *models.Appointment
}

// Booked сообщает, была ли создана запись
func (r Result) Booked() bool {
	return r.Appointment != nil
}

// Processor связывает разбор директивы с репозиторием
type Processor struct {
	creator  AppointmentCreator
	notifier *events.Notifier
	logger   *logger.Logger
}

// NewProcessor создает Processor
func NewProcessor(creator AppointmentCreator, notifier *events.Notifier, log *logger.Logger) *Processor {
	if notifier == nil {
		notifier = events.NewNotifier(nil, log)
	}
	return &Processor{creator: creator, notifier: notifier, logger: log}
}

// Process разбирает ответ ассистента. Некорректная директива только
// логируется: пользователь видит исходный текст, запись не создается.
// Ошибка возвращается лишь при сбое сохранения записи.
func (p *Processor) Process(ctx context.Context, user models.User, response string) (Result, error) {
	log := p.logger.WithContext(ctx).With(logger.String("user_id", user.ID))

	ex := Extract(response)
	if ex.Err != nil {
		metrics.RecordMalformedDirective()
		log.Warn("Malformed booking directive", logger.String("raw", ex.Raw), logger.Error(ex.Err))
		return Result{Text: ex.Text}, nil
	}
	if ex.Directive == nil {
		return Result{Text: ex.Text}, nil
	}

	metrics.RecordBookingExtracted()
	log.Info("Booking directive extracted",
		logger.String("service", ex.Directive.Service),
		logger.String("date", ex.Directive.Date),
		logger.String("time", ex.Directive.Time),
	)

	apt, err := p.creator.CreateAppointmentFromBooking(ctx, repository.BookingRequest{
		UserID:      user.ID,
		UserName:    user.Name,
		ServiceName: ex.Directive.Service,
		Date:        ex.Directive.Date,
		Time:        ex.Directive.Time,
	})
	if err != nil {
		metrics.RecordError("booking", "create_appointment")
		log.Error("Failed to create appointment", logger.Error(err))
		return Result{Text: ex.Text}, err
	}

	metrics.RecordAppointmentCreated()
	p.notifier.Created(ctx, apt)

	return Result{Text: ex.Text, Appointment: &apt}, nil
}
