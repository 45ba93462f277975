package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/internal/validation"
	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

const adminDisplayName = "Barbeiro"

type loginRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	User    models.User `json:"user"`
	Token   string      `json:"token"`
	Created bool        `json:"created"`
}

type shopResponse struct {
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	WhatsApp string `json:"whatsapp"`
	Address  string `json:"address"`
}

func (s *Server) handleClientLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if err := validation.ValidateUserName(name); err != nil {
		writeAppError(w, err)
		return
	}
	if err := validation.ValidatePhoneNumber(phone); err != nil {
		writeAppError(w, err)
		return
	}

	s.login(w, r, name, phone, false)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	expected := s.config.Auth.AdminPassword
	if expected == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(expected)) != 1 {
		s.securityLogger.LogFailedAuth(r, "invalid admin password")
		writeError(w, http.StatusUnauthorized, errors.ErrUnauthorized)
		return
	}

	s.login(w, r, adminDisplayName, s.config.Auth.AdminPhone, true)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, name, phone string, isAdmin bool) {
	user, created, err := s.users.Login(r.Context(), name, phone, isAdmin)
	if err != nil {
		s.logger.WithContext(r.Context()).Error("Login failed", logger.Error(err))
		writeAppError(w, err)
		return
	}

	token, err := s.tokens.NewAccessToken(user)
	if err != nil {
		s.logger.WithContext(r.Context()).Error("Failed to issue token", logger.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.securityLogger.LogUserAction(r, user.ID, "login", map[string]interface{}{
		"role":    string(user.Role),
		"created": created,
	})
	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token, Created: created})
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	shop := s.config.Shop
	writeJSON(w, http.StatusOK, shopResponse{
		Name:     shop.Name,
		Owner:    shop.Owner,
		WhatsApp: shop.WhatsApp,
		Address:  shop.Address,
	})
}

func (s *Server) handleActiveServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.ListActiveServices())
}
