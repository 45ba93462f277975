// Package repository хранит услуги, записи и пользователей в памяти и
// синхронно записывает каждую изменённую коллекцию в storage.Store.
package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zanvi/lacasabarber/internal/storage"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// Repository является единственным источником истины для трёх коллекций
type Repository struct {
	mu     sync.Mutex
	store  storage.Store
	logger *logger.Logger
	now    func() time.Time
	newID  func() string
	seed   []models.Service

	services     []models.Service
	appointments []models.Appointment
	users        []models.User
}

// Option настраивает репозиторий
type Option func(*Repository)

// WithLogger задает логгер
func WithLogger(l *logger.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithClock задает источник времени для createdAt/updatedAt
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator задает генератор идентификаторов
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

// WithSeedServices заменяет каталог услуг по умолчанию
func WithSeedServices(services []models.Service) Option {
	return func(r *Repository) { r.seed = services }
}

// New загружает коллекции из хранилища. Отсутствующий ключ заменяется
// значением по умолчанию, испорченное значение дает ErrCorruptCollection.
func New(ctx context.Context, store storage.Store, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:  store,
		logger: logger.Discard(),
		now:    time.Now,
		newID:  uuid.NewString,
		seed:   DefaultServices(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := load(ctx, r, storage.KeyServices, &r.services, r.seed); err != nil {
		return nil, err
	}
	if err := load(ctx, r, storage.KeyAppointments, &r.appointments, []models.Appointment{}); err != nil {
		return nil, err
	}
	if err := load(ctx, r, storage.KeyUsers, &r.users, []models.User{}); err != nil {
		return nil, err
	}

	r.logger.Info("Repository hydrated",
		logger.Int("services", len(r.services)),
		logger.Int("appointments", len(r.appointments)),
		logger.Int("users", len(r.users)),
	)

	return r, nil
}

func load[T any](ctx context.Context, r *Repository, key string, dst *[]T, fallback []T) error {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		metrics.RecordStorageOperation("get", key, "error")
		return errors.ErrStorage.WithError(err).WithContext(map[string]string{"key": key})
	}
	metrics.RecordStorageOperation("get", key, "success")

	if !found || raw == "" {
		*dst = append([]T(nil), fallback...)
		return nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return errors.ErrCorruptCollection.WithError(err).WithContext(map[string]string{"key": key})
	}
	if items == nil {
		items = append([]T(nil), fallback...)
	}
	*dst = items
	return nil
}

// save сериализует коллекцию целиком; вызывается под r.mu
func save[T any](ctx context.Context, r *Repository, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.ErrStorage.WithError(err).WithContext(map[string]string{"key": key})
	}

	if err := r.store.Set(ctx, key, string(data)); err != nil {
		metrics.RecordStorageOperation("set", key, "error")
		r.logger.Error("Failed to persist collection", logger.String("key", key), logger.Error(err))
		return errors.ErrStorage.WithError(err).WithContext(map[string]string{"key": key})
	}
	metrics.RecordStorageOperation("set", key, "success")
	return nil
}

func (r *Repository) millis() int64 {
	return r.now().UnixMilli()
}
