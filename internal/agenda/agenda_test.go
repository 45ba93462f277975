package agenda

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zanvi/lacasabarber/internal/events"
	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/memory"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

func setup(t *testing.T) (*Agenda, *repository.Repository, *events.MemoryPublisher) {
	t.Helper()
	repo, err := repository.New(context.Background(), memory.New())
	require.NoError(t, err)
	pub := &events.MemoryPublisher{}
	return New(repo, events.NewNotifier(pub, logger.Discard()), logger.Discard()), repo, pub
}

func book(t *testing.T, repo *repository.Repository, date, time string) models.Appointment {
	t.Helper()
	apt, err := repo.CreateAppointmentFromBooking(context.Background(), repository.BookingRequest{
		UserID: "u1", UserName: "Lucas", ServiceName: "Barba", Date: date, Time: time,
	})
	require.NoError(t, err)
	return apt
}

func TestRescheduleKeepsOriginalSlot(t *testing.T) {
	a, repo, pub := setup(t)
	apt := book(t, repo, "2024-06-01", "10:00")

	updated, found, err := a.Reschedule(context.Background(), apt.ID, "2024-06-02", "11:00")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "2024-06-02", updated.Date)
	assert.Equal(t, "11:00", updated.Time)
	assert.Equal(t, "2024-06-01", updated.OriginalDate)
	assert.Equal(t, "10:00", updated.OriginalTime)
	assert.Equal(t, models.StatusRescheduled, updated.Status)

	// Запись видна и на старой, и на новой дате
	assert.Len(t, a.ForDate("2024-06-01"), 1)
	assert.Len(t, a.ForDate("2024-06-02"), 1)
	assert.Empty(t, a.ForDate("2024-06-03"))

	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.AppointmentRescheduled, pub.Events()[0].Subject)
}

func TestRescheduleSameSlotIsNoop(t *testing.T) {
	a, repo, pub := setup(t)
	apt := book(t, repo, "2024-06-01", "10:00")

	updated, found, err := a.Reschedule(context.Background(), apt.ID, "2024-06-01", "10:00")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, apt, updated)
	assert.Empty(t, pub.Events())
}

func TestSecondRescheduleOverwritesOriginal(t *testing.T) {
	a, repo, _ := setup(t)
	apt := book(t, repo, "2024-06-01", "10:00")
	ctx := context.Background()

	_, _, err := a.Reschedule(ctx, apt.ID, "2024-06-02", "11:00")
	require.NoError(t, err)
	updated, _, err := a.Reschedule(ctx, apt.ID, "2024-06-03", "12:00")
	require.NoError(t, err)

	assert.Equal(t, "2024-06-02", updated.OriginalDate)
	assert.Equal(t, "11:00", updated.OriginalTime)
	assert.Empty(t, a.ForDate("2024-06-01"))
}

func TestRescheduleValidatesInput(t *testing.T) {
	a, repo, _ := setup(t)
	apt := book(t, repo, "2024-06-01", "10:00")

	_, _, err := a.Reschedule(context.Background(), apt.ID, "amanhã", "10:00")
	assert.True(t, errors.Is(err, errors.ErrInvalidDate))

	_, _, err = a.Reschedule(context.Background(), apt.ID, "2024-06-02", "10h")
	assert.True(t, errors.Is(err, errors.ErrInvalidTime))
}

func TestChangeStatus(t *testing.T) {
	tests := []struct {
		name    string
		steps   []models.AppointmentStatus
		want    models.AppointmentStatus
		wantErr error
	}{
		{"завершение", []models.AppointmentStatus{models.StatusCompleted}, models.StatusCompleted, nil},
		{"отмена", []models.AppointmentStatus{models.StatusCancelled}, models.StatusCancelled, nil},
		{"отмена после завершения", []models.AppointmentStatus{models.StatusCompleted, models.StatusCancelled}, models.StatusCancelled, nil},
		{"отмененная не меняется", []models.AppointmentStatus{models.StatusCancelled, models.StatusCompleted}, models.StatusCancelled, errors.ErrInvalidTransition},
		{"неизвестный статус", []models.AppointmentStatus{"archived"}, models.StatusConfirmed, errors.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, repo, _ := setup(t)
			apt := book(t, repo, "2024-06-01", "10:00")

			var err error
			for _, s := range tt.steps {
				_, _, err = a.ChangeStatus(context.Background(), apt.ID, s)
			}

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			stored, _ := repo.GetAppointment(apt.ID)
			assert.Equal(t, tt.want, stored.Status)
		})
	}
}

func TestCancelledCannotBeRescheduled(t *testing.T) {
	a, repo, _ := setup(t)
	apt := book(t, repo, "2024-06-01", "10:00")
	ctx := context.Background()

	_, _, err := a.ChangeStatus(ctx, apt.ID, models.StatusCancelled)
	require.NoError(t, err)

	_, _, err = a.Reschedule(ctx, apt.ID, "2024-06-05", "10:00")
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
}

func TestUnknownIDIsNoop(t *testing.T) {
	a, _, pub := setup(t)

	_, found, err := a.ChangeStatus(context.Background(), "missing", models.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = a.Reschedule(context.Background(), "missing", "2024-06-02", "10:00")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, pub.Events())
}

func TestActions(t *testing.T) {
	assert.Nil(t, Actions(models.Appointment{Status: models.StatusCancelled}))
	assert.Equal(t, []models.AppointmentStatus{models.StatusCancelled}, Actions(models.Appointment{Status: models.StatusCompleted}))
	assert.Len(t, Actions(models.Appointment{Status: models.StatusRescheduled}), 2)
}

func TestMatchesDateIgnoresOriginalDateWhenNotRescheduled(t *testing.T) {
	apt := models.Appointment{Date: "2024-06-02", OriginalDate: "2024-06-01", Status: models.StatusCompleted}
	assert.False(t, MatchesDate(apt, "2024-06-01"))
	assert.True(t, MatchesDate(apt, "2024-06-02"))
}
