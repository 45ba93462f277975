package repository

import (
	"context"
	"net/url"

	"github.com/Zanvi/lacasabarber/internal/storage"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// AdminUserID используется как id администратора без телефона
const AdminUserID = "admin-id"

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// Login возвращает пользователя с id=phone, создавая его при первом входе.
// Повторный вход возвращает сохраненную запись без изменений.
func (r *Repository) Login(ctx context.Context, name, phone string, isAdmin bool) (models.User, bool, error) {
	id := phone
	if id == "" {
		id = AdminUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.userByID(id); ok {
		metrics.RecordLogin(string(u.Role), false)
		return u, false, nil
	}

	role := models.RoleClient
	if isAdmin {
		role = models.RoleAdmin
	}

	user := models.User{
		ID:     id,
		Name:   name,
		Phone:  phone,
		Role:   role,
		Avatar: avatarBaseURL + url.QueryEscape(name),
	}

	next := append(append(make([]models.User, 0, len(r.users)+1), r.users...), user)
	if err := save(ctx, r, storage.KeyUsers, next); err != nil {
		return models.User{}, false, err
	}
	r.users = next

	metrics.RecordLogin(string(role), true)
	r.logger.Info("User registered", logger.String("user_id", user.ID), logger.String("role", string(role)))
	return user, true, nil
}

// GetUser возвращает пользователя по id
func (r *Repository) GetUser(id string) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userByID(id)
}

func (r *Repository) userByID(id string) (models.User, bool) {
	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
