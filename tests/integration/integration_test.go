package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zanvi/lacasabarber/internal/agenda"
	"github.com/Zanvi/lacasabarber/internal/assistant"
	"github.com/Zanvi/lacasabarber/internal/assistant/assistanttest"
	"github.com/Zanvi/lacasabarber/internal/booking"
	"github.com/Zanvi/lacasabarber/internal/chat"
	"github.com/Zanvi/lacasabarber/internal/events"
	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/tests/testutils"
)

var singleService = []models.Service{
	{ID: "1", Name: "Corte masculino", Price: 40.00, Duration: "30 min", Active: true},
}

// TestBookingFromAssistantResponse проходит путь от ответа модели до
// сохраненной записи и проверяет, что запись переживает перезагрузку
func TestBookingFromAssistantResponse(t *testing.T) {
	repo, store := testutils.SetupTestRepository(t, repository.WithSeedServices(singleService))
	ctx := testutils.TestContext()
	log := testutils.SetupTestLogger()
	pub := &events.MemoryPublisher{}
	processor := booking.NewProcessor(repo, events.NewNotifier(pub, log), log)

	user := testutils.CreateTestUser(t, repo, "Lucas", "11988887777")
	result, err := processor.Process(ctx, user,
		`Fechado! [BOOKING_CONFIRMED: {"service":"Corte masculino","date":"2024-06-01","time":"14:00"}]`)
	testutils.AssertNoError(t, err, "Should process response")

	testutils.AssertEqual(t, "Fechado!", result.Text, "Display text should drop the directive")
	require.True(t, result.Booked())

	apts := repo.ListAppointments()
	require.Len(t, apts, 1)
	apt := apts[0]
	testutils.AssertEqual(t, 40.00, apt.ServicePrice, "Price should be snapshotted")
	testutils.AssertEqual(t, "30 min", apt.ServiceDuration, "Duration should be snapshotted")
	testutils.AssertEqual(t, models.StatusConfirmed, apt.Status, "New appointment is confirmed")
	testutils.AssertEqual(t, "11988887777", apt.UserPhone, "Phone comes from the user record")

	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.AppointmentCreated, pub.Events()[0].Subject)

	reloaded, err := repository.New(ctx, store, repository.WithLogger(log))
	testutils.AssertNoError(t, err, "Should reload from storage")
	require.Len(t, reloaded.ListAppointments(), 1)
	testutils.AssertEqual(t, apt, reloaded.ListAppointments()[0], "Stored appointment should round-trip")
}

// TestRescheduleKeepsOriginalDateVisible проверяет, что перенесенная запись
// остается в агенде исходного дня
func TestRescheduleKeepsOriginalDateVisible(t *testing.T) {
	repo, _ := testutils.SetupTestRepository(t, repository.WithSeedServices(singleService))
	ctx := testutils.TestContext()
	log := testutils.SetupTestLogger()
	a := agenda.New(repo, nil, log)

	user := testutils.CreateTestUser(t, repo, "Lucas", "11988887777")
	moved := testutils.CreateTestAppointment(t, repo, user, "Corte masculino", "2024-06-01", "14:00")
	sameDay := testutils.CreateTestAppointment(t, repo, user, "Corte masculino", "2024-06-01", "16:00")

	updated, found, err := a.Reschedule(ctx, moved.ID, "2024-06-02", "09:00")
	testutils.AssertNoError(t, err, "Should reschedule")
	testutils.AssertTrue(t, found, "Appointment should exist")
	testutils.AssertEqual(t, models.StatusRescheduled, updated.Status, "Status should be rescheduled")
	testutils.AssertEqual(t, "2024-06-01", updated.OriginalDate, "Original date kept")
	testutils.AssertEqual(t, "14:00", updated.OriginalTime, "Original time kept")

	ids := func(apts []models.Appointment) []string {
		out := make([]string, 0, len(apts))
		for _, apt := range apts {
			out = append(out, apt.ID)
		}
		return out
	}
	assert.ElementsMatch(t, []string{moved.ID, sameDay.ID}, ids(a.ForDate("2024-06-01")))
	assert.ElementsMatch(t, []string{moved.ID}, ids(a.ForDate("2024-06-02")))
}

// TestChatSessionBooking проходит диалог целиком через chat.Manager
func TestChatSessionBooking(t *testing.T) {
	repo, _ := testutils.SetupTestRepository(t, repository.WithSeedServices(singleService))
	ctx := testutils.TestContext()
	log := testutils.SetupTestLogger()

	client := assistanttest.Replies(
		"Claro! Qual dia e horário?",
		`Fechado! [BOOKING_CONFIRMED: {"service":"Corte masculino","date":"2024-06-01","time":"14:00"}]`,
	)
	processor := booking.NewProcessor(repo, nil, log)
	manager := chat.NewManager(client, repo, processor, assistant.Shop{Name: "LA CASA BARBER", Owner: "Danilo"}, log)

	user := testutils.CreateTestUser(t, repo, "Lucas", "11988887777")
	session, err := manager.Open(ctx, user)
	testutils.AssertNoError(t, err, "Should open session")

	first, err := session.Send(ctx, "Quero cortar o cabelo")
	testutils.AssertNoError(t, err, "First message")
	assert.False(t, first.IsBookingConfirmation)

	second, err := session.Send(ctx, "Sábado às 14h")
	testutils.AssertNoError(t, err, "Second message")
	assert.True(t, second.IsBookingConfirmation)
	testutils.AssertEqual(t, "Fechado!", second.Text, "Directive removed from reply")

	assert.Len(t, session.Messages(), 5)
	assert.Len(t, repo.ListAppointments(), 1)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Corte masculino: R$ 40.00 (30 min)")
}
