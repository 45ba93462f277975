package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/internal/storage/sqlite"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// SetupTestStore создает SQLite хранилище во временном каталоге теста
func SetupTestStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "barber.db"))
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// SetupTestRepository создает репозиторий поверх нового хранилища
func SetupTestRepository(t *testing.T, opts ...repository.Option) (*repository.Repository, *sqlite.SQLiteStorage) {
	t.Helper()
	store := SetupTestStore(t)
	opts = append([]repository.Option{repository.WithLogger(SetupTestLogger())}, opts...)
	repo, err := repository.New(TestContext(), store, opts...)
	require.NoError(t, err, "failed to create repository")
	return repo, store
}

// SetupTestLogger создает тестовый логгер
func SetupTestLogger() *logger.Logger {
	if testing.Verbose() {
		return logger.New(logger.LevelDebug)
	}
	return logger.Discard()
}

// TestContext создает контекст для тестов
func TestContext() context.Context {
	return context.Background()
}

// CreateTestUser регистрирует клиента
func CreateTestUser(t *testing.T, repo *repository.Repository, name, phone string) models.User {
	t.Helper()
	user, _, err := repo.Login(TestContext(), name, phone, false)
	require.NoError(t, err, "failed to create user")
	return user
}

// CreateTestAppointment создает запись как при подтверждении в чате
func CreateTestAppointment(t *testing.T, repo *repository.Repository, user models.User, service, date, time string) models.Appointment {
	t.Helper()
	apt, err := repo.CreateAppointmentFromBooking(TestContext(), repository.BookingRequest{
		UserID:      user.ID,
		UserName:    user.Name,
		ServiceName: service,
		Date:        date,
		Time:        time,
	})
	require.NoError(t, err, "failed to create appointment")
	return apt
}

// AssertNoError проверяет отсутствие ошибки
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	require.NoError(t, err, msg)
}

// AssertEqual проверяет равенство значений
func AssertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	assert.Equal(t, expected, actual, msg)
}

// AssertTrue проверяет истинность условия
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	assert.True(t, condition, msg)
}
