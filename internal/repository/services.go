package repository

import (
	"context"
	"strings"

	"github.com/Zanvi/lacasabarber/internal/storage"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/internal/validation"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// DefaultServiceDuration используется, когда длительность не указана или услуга не найдена
const DefaultServiceDuration = "30 min"

// ServiceInput описывает новую услугу
type ServiceInput struct {
	Name        string
	Price       float64
	Duration    string
	Description string
	ImageURL    string
}

// ServicePatch описывает частичное изменение услуги; nil означает "не менять"
type ServicePatch struct {
	Name        *string
	Price       *float64
	Duration    *string
	Description *string
	ImageURL    *string
	Active      *bool
}

// ListActiveServices возвращает услуги с active=true в порядке хранения
func (r *Repository) ListActiveServices() []models.Service {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]models.Service, 0, len(r.services))
	for _, s := range r.services {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}

// ListAllServices возвращает все услуги, включая неактивные
func (r *Repository) ListAllServices() []models.Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Service(nil), r.services...)
}

// GetServiceByName ищет услугу по точному совпадению имени среди всех услуг
func (r *Repository) GetServiceByName(name string) (models.Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.serviceByName(name)
}

func (r *Repository) serviceByName(name string) (models.Service, bool) {
	for _, s := range r.services {
		if s.Name == name {
			return s, true
		}
	}
	return models.Service{}, false
}

// CreateService добавляет активную услугу в конец каталога
func (r *Repository) CreateService(ctx context.Context, in ServiceInput) (models.Service, error) {
	if err := validation.ValidateServiceName(in.Name); err != nil {
		return models.Service{}, err
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return models.Service{}, err
	}

	duration := strings.TrimSpace(in.Duration)
	if duration == "" {
		duration = DefaultServiceDuration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	svc := models.Service{
		ID:          r.newID(),
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Duration:    duration,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Active:      true,
		UpdatedAt:   r.millis(),
	}

	next := append(append(make([]models.Service, 0, len(r.services)+1), r.services...), svc)
	if err := save(ctx, r, storage.KeyServices, next); err != nil {
		return models.Service{}, err
	}
	r.services = next

	r.logger.Info("Service created", logger.String("service_id", svc.ID), logger.String("name", svc.Name))
	return svc, nil
}

// UpdateService применяет patch к услуге. Неизвестный id не является ошибкой: found=false.
func (r *Repository) UpdateService(ctx context.Context, id string, patch ServicePatch) (models.Service, bool, error) {
	if patch.Name != nil {
		if err := validation.ValidateServiceName(*patch.Name); err != nil {
			return models.Service{}, false, err
		}
	}
	if patch.Price != nil {
		if err := validation.ValidatePrice(*patch.Price); err != nil {
			return models.Service{}, false, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.services {
		if r.services[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.logger.Debug("Service update ignored, unknown id", logger.String("service_id", id))
		return models.Service{}, false, nil
	}

	next := append([]models.Service(nil), r.services...)
	svc := next[idx]
	if patch.Name != nil {
		svc.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		svc.Price = *patch.Price
	}
	if patch.Duration != nil {
		svc.Duration = *patch.Duration
	}
	if patch.Description != nil {
		svc.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		svc.ImageURL = *patch.ImageURL
	}
	if patch.Active != nil {
		svc.Active = *patch.Active
	}
	svc.UpdatedAt = r.millis()
	next[idx] = svc

	if err := save(ctx, r, storage.KeyServices, next); err != nil {
		return models.Service{}, false, err
	}
	r.services = next
	return svc, true, nil
}

// DeactivateService скрывает услугу из каталога; запись не удаляется
func (r *Repository) DeactivateService(ctx context.Context, id string) (bool, error) {
	inactive := false
	_, found, err := r.UpdateService(ctx, id, ServicePatch{Active: &inactive})
	return found, err
}
