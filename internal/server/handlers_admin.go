package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Zanvi/lacasabarber/internal/agenda"
	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/internal/validation"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

type serviceRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
}

type servicePatchRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Duration    *string  `json:"duration"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
	Active      *bool    `json:"active"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// updateResponse ответ на изменение по id; updated=false для неизвестного id
type updateResponse struct {
	Updated bool        `json:"updated"`
	Item    interface{} `json:"item,omitempty"`
}

type agendaItem struct {
	models.Appointment
	StatusLabel   string   `json:"statusLabel"`
	Actions       []string `json:"actions"`
	CanReschedule bool     `json:"canReschedule"`
}

func (s *Server) handleAllServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.ListAllServices())
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	svc, err := s.catalog.CreateService(r.Context(), repository.ServiceInput{
		Name:        req.Name,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	s.auditAdmin(r, "service_created", svc.ID)
	writeJSON(w, http.StatusCreated, svc)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	var req servicePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "id")
	svc, found, err := s.catalog.UpdateService(r.Context(), id, repository.ServicePatch{
		Name:        req.Name,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Active:      req.Active,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, updateResponse{})
		return
	}

	s.auditAdmin(r, "service_updated", id)
	writeJSON(w, http.StatusOK, updateResponse{Updated: true, Item: svc})
}

func (s *Server) handleDeactivateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := s.catalog.DeactivateService(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if found {
		s.auditAdmin(r, "service_deactivated", id)
	}
	writeJSON(w, http.StatusOK, updateResponse{Updated: found})
}

func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = s.today()
	}
	if _, err := validation.ValidateDate(date); err != nil {
		writeAppError(w, err)
		return
	}

	apts := s.appointments.ForDate(date)
	items := make([]agendaItem, 0, len(apts))
	for _, apt := range apts {
		items = append(items, newAgendaItem(apt))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "id")
	apt, found, err := s.appointments.ChangeStatus(r.Context(), id, models.AppointmentStatus(req.Status))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, updateResponse{})
		return
	}

	s.auditAdmin(r, "appointment_status_changed", id)
	writeJSON(w, http.StatusOK, updateResponse{Updated: true, Item: newAgendaItem(apt)})
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "id")
	apt, found, err := s.appointments.Reschedule(r.Context(), id, strings.TrimSpace(req.Date), strings.TrimSpace(req.Time))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, updateResponse{})
		return
	}

	s.auditAdmin(r, "appointment_rescheduled", id)
	writeJSON(w, http.StatusOK, updateResponse{Updated: true, Item: newAgendaItem(apt)})
}

func newAgendaItem(apt models.Appointment) agendaItem {
	actions := agenda.Actions(apt)
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}
	return agendaItem{
		Appointment:   apt,
		StatusLabel:   apt.Status.Label(),
		Actions:       names,
		CanReschedule: agenda.CanReschedule(apt),
	}
}

func (s *Server) today() string {
	return s.now().In(s.config.Shop.Location()).Format(validation.DateLayout)
}

func (s *Server) auditAdmin(r *http.Request, action, id string) {
	claims, _ := ClaimsFromContext(r.Context())
	s.securityLogger.LogUserAction(r, claims.UserID(), action, map[string]interface{}{"id": id})
	s.logger.WithContext(r.Context()).Debug("Admin action", logger.String("action", action))
}
