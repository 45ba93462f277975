package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	tgmodels "github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/pkg/logger"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler обрабатывает обновления Telegram
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *tgmodels.Update)
}

// telegramAuthMiddleware сверяет секретный токен webhook, если он задан
func (s *Server) telegramAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := s.config.Telegram.SecretToken
		if secret != "" {
			provided := r.Header.Get(secretTokenHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				s.securityLogger.LogFailedAuth(r, "invalid webhook secret token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// validUpdate проверяет базовую валидность update
func validUpdate(update *tgmodels.Update) bool {
	if update.ID <= 0 {
		return false
	}
	switch {
	case update.Message != nil:
		return update.Message.From == nil || !update.Message.From.IsBot
	case update.CallbackQuery != nil:
		return !update.CallbackQuery.From.IsBot
	}
	return false
}

// handleWebhook обрабатывает Telegram webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var update tgmodels.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.WithContext(r.Context()).Error("Failed to decode Telegram update", logger.Error(err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if !validUpdate(&update) {
		s.logger.Warn("Ignoring Telegram update", logger.Int64("update_id", update.ID))
		w.WriteHeader(http.StatusOK)
		return
	}

	if s.updates == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	s.updates.HandleUpdate(ctx, &update)

	s.securityLogger.LogTelegramUpdate(&update, time.Since(start))
	w.WriteHeader(http.StatusOK)
}
