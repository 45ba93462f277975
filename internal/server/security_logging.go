package server

import (
	"net/http"
	"strings"
	"time"

	tgmodels "github.com/go-telegram/bot/models"

	"github.com/Zanvi/lacasabarber/internal/middleware"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// SecurityLogger логирует события безопасности
type SecurityLogger struct {
	logger *logger.Logger
}

// NewSecurityLogger создает новый логгер безопасности
func NewSecurityLogger(log *logger.Logger) *SecurityLogger {
	return &SecurityLogger{logger: log}
}

// LogFailedAuth логирует неудачную попытку аутентификации
func (sl *SecurityLogger) LogFailedAuth(r *http.Request, reason string) {
	sl.logger.WithContext(r.Context()).Warn("Authentication failed",
		logger.String("reason", reason),
		logger.String("ip", middleware.RealIP(r)),
		logger.String("user_agent", r.UserAgent()),
		logger.String("path", r.URL.Path),
		logger.String("method", r.Method),
	)
}

// LogSuspiciousActivity логирует подозрительную активность
func (sl *SecurityLogger) LogSuspiciousActivity(r *http.Request, activity string, details map[string]interface{}) {
	fields := []logger.Field{
		logger.String("activity", activity),
		logger.String("ip", middleware.RealIP(r)),
		logger.String("user_agent", r.UserAgent()),
		logger.String("path", r.URL.Path),
		logger.String("method", r.Method),
	}
	for key, value := range details {
		fields = append(fields, logger.Any(key, value))
	}

	sl.logger.WithContext(r.Context()).Warn("Suspicious activity detected", fields...)
}

// LogUserAction логирует действия администратора и клиентов
func (sl *SecurityLogger) LogUserAction(r *http.Request, userID, action string, details map[string]interface{}) {
	fields := []logger.Field{
		logger.String("user_id", userID),
		logger.String("action", action),
	}
	for key, value := range details {
		fields = append(fields, logger.Any(key, value))
	}

	sl.logger.WithContext(r.Context()).Info("User action", fields...)
}

// LogTelegramUpdate логирует обработку Telegram update
func (sl *SecurityLogger) LogTelegramUpdate(update *tgmodels.Update, processingTime time.Duration) {
	var chatID int64
	var updateType string

	switch {
	case update.Message != nil:
		updateType = "message"
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil:
		updateType = "callback_query"
		chatID = update.CallbackQuery.From.ID
	default:
		updateType = "other"
	}

	sl.logger.Info("Telegram update processed",
		logger.Int64("update_id", update.ID),
		logger.String("type", updateType),
		logger.Int64("chat_id", chatID),
		logger.Int64("processing_time_ms", processingTime.Milliseconds()),
	)
}

// LogSystemEvent логирует системные события
func (sl *SecurityLogger) LogSystemEvent(event string, level string, details map[string]interface{}) {
	fields := []logger.Field{logger.String("event", event)}
	for key, value := range details {
		fields = append(fields, logger.Any(key, value))
	}

	switch strings.ToLower(level) {
	case "error":
		sl.logger.Error("System event", fields...)
	case "warn", "warning":
		sl.logger.Warn("System event", fields...)
	case "debug":
		sl.logger.Debug("System event", fields...)
	default:
		sl.logger.Info("System event", fields...)
	}
}

// securityAuditMiddleware логирует запросы к webhook и ответы с ошибками клиента
func (s *Server) securityAuditMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &middleware.ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		if wrapped.StatusCode == http.StatusUnauthorized || wrapped.StatusCode == http.StatusForbidden {
			s.securityLogger.LogSuspiciousActivity(r, "access_denied", map[string]interface{}{
				"status_code": wrapped.StatusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		}
	})
}
