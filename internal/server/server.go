package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zanvi/lacasabarber/internal/agenda"
	"github.com/Zanvi/lacasabarber/internal/auth"
	"github.com/Zanvi/lacasabarber/internal/chat"
	"github.com/Zanvi/lacasabarber/internal/config"
	"github.com/Zanvi/lacasabarber/internal/middleware"
	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

// Version версия API в health check
const Version = "1.0.0"

// Catalog операции с каталогом услуг
type Catalog interface {
	ListActiveServices() []models.Service
	ListAllServices() []models.Service
	CreateService(ctx context.Context, in repository.ServiceInput) (models.Service, error)
	UpdateService(ctx context.Context, id string, patch repository.ServicePatch) (models.Service, bool, error)
	DeactivateService(ctx context.Context, id string) (bool, error)
}

// Users вход пользователей
type Users interface {
	Login(ctx context.Context, name, phone string, isAdmin bool) (models.User, bool, error)
	GetUser(id string) (models.User, bool)
}

// Appointments рабочий процесс администратора
type Appointments interface {
	ForDate(date string) []models.Appointment
	ChangeStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, bool, error)
	Reschedule(ctx context.Context, id, date, time string) (models.Appointment, bool, error)
}

// Chats открытые диалоги клиентов
type Chats interface {
	Open(ctx context.Context, user models.User) (*chat.Session, error)
	Get(userID string) (*chat.Session, bool)
	GetOrOpen(ctx context.Context, user models.User) (*chat.Session, error)
	Close(userID string)
}

// Deps зависимости HTTP сервера
type Deps struct {
	Catalog      Catalog
	Users        Users
	Appointments Appointments
	Chats        Chats
	Tokens       *auth.Issuer
	Store        Pinger
	Updates      UpdateHandler
}

var (
	_ Catalog      = (*repository.Repository)(nil)
	_ Users        = (*repository.Repository)(nil)
	_ Appointments = (*agenda.Agenda)(nil)
	_ Chats        = (*chat.Manager)(nil)
)

// Server представляет HTTP сервер с middleware
type Server struct {
	httpServer     *http.Server
	config         *config.Config
	logger         *logger.Logger
	rateLimiter    *middleware.RateLimiter
	securityLogger *SecurityLogger
	healthChecker  *HealthChecker

	catalog      Catalog
	users        Users
	appointments Appointments
	chats        Chats
	tokens       *auth.Issuer
	updates      UpdateHandler
	now          func() time.Time
}

// New создает новый HTTP сервер
func New(cfg *config.Config, log *logger.Logger, deps Deps) *Server {
	s := &Server{
		config:         cfg,
		logger:         log,
		rateLimiter:    middleware.NewRateLimiter(cfg.Server.RateLimit, time.Minute, log),
		securityLogger: NewSecurityLogger(log),
		healthChecker:  NewHealthChecker(deps.Store, Version),
		catalog:        deps.Catalog,
		users:          deps.Users,
		appointments:   deps.Appointments,
		chats:          deps.Chats,
		tokens:         deps.Tokens,
		updates:        deps.Updates,
		now:            time.Now,
	}

	s.httpServer = &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        s.setupRoutes(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// WithClock задает источник времени для агенды по умолчанию
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// Handler возвращает корневой обработчик
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes настраивает маршруты с middleware
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.securityAuditMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.HTTPRateLimitMiddleware(s.rateLimiter))
	r.Use(middleware.PrometheusMiddleware)

	r.Get("/health", s.healthChecker.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.With(s.telegramAuthMiddleware).Post("/webhook", s.handleWebhook)

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBodyMiddleware)

		r.Post("/auth/login", s.handleClientLogin)
		r.Post("/auth/admin", s.handleAdminLogin)
		r.Get("/shop", s.handleShop)
		r.Get("/services", s.handleActiveServices)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/chat/session", s.handleOpenChat)
			r.Delete("/chat/session", s.handleCloseChat)
			r.Get("/chat/messages", s.handleChatMessages)
			r.Post("/chat/messages", s.handleSendMessage)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/services", s.handleAllServices)
				r.Post("/services", s.handleCreateService)
				r.Patch("/services/{id}", s.handleUpdateService)
				r.Delete("/services/{id}", s.handleDeactivateService)

				r.Get("/appointments", s.handleAgenda)
				r.Patch("/appointments/{id}/status", s.handleChangeStatus)
				r.Post("/appointments/{id}/reschedule", s.handleReschedule)
			})
		})
	})

	return r
}

// Start запускает сервер
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", logger.String("addr", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown корректно завершает работу сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	s.securityLogger.LogSystemEvent("server_shutdown", "info", map[string]interface{}{
		"initiated_at": time.Now().UTC().Unix(),
	})

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s.rateLimiter.Close()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error during server shutdown", logger.Error(err))
		return err
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
