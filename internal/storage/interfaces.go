package storage

import "context"

// Ключи коллекций в хранилище
const (
	KeyServices     = "lcb_services"
	KeyAppointments = "lcb_appointments"
	KeyUsers        = "lcb_users"
)

// Store определяет строковое key-value хранилище, в которое репозиторий
// сериализует коллекции целиком.
type Store interface {
	// Get возвращает значение ключа; found=false, если ключ не записывался.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set перезаписывает значение ключа.
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}
