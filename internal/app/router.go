package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aidar/project-tracker/internal/handler"
	"github.com/aidar/project-tracker/internal/middleware"
	"github.com/aidar/project-tracker/internal/service"
)

// Services объединяет сервисы бизнес-логики
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Projects *service.ProjectService
	Tasks    *service.TaskService
	Stats    *service.StatsService
}

// NewServices создает слой сервисов поверх репозиториев
func NewServices(repos Repositories, revocations service.RevocationStore, jwtSecret string, jwtExpiry time.Duration) *Services {
	auth := service.NewAuthService(repos.Users, revocations, jwtSecret, jwtExpiry)

	return &Services{
		Auth:     auth,
		Users:    service.NewUserService(repos.Users, auth),
		Projects: service.NewProjectService(repos.Projects, repos.Users, repos.Tasks),
		Tasks:    service.NewTaskService(repos.Tasks, repos.Projects, repos.Users),
		Stats:    service.NewStatsService(repos.Stats, repos.Projects),
	}
}

// NewRouter настраивает маршруты API
func NewRouter(services *Services, logger *slog.Logger) http.Handler {
	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(services.Auth)
	userHandler := handler.NewUserHandler(services.Users)
	projectHandler := handler.NewProjectHandler(services.Projects)
	taskHandler := handler.NewTaskHandler(services.Tasks)
	statsHandler := handler.NewStatsHandler(services.Stats)

	// Инициализируем middleware для JWT авторизации
	authMiddleware := middleware.AuthMiddleware(services.Auth, logger)

	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			logger.Error("Failed to write health check response", "error", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		// Публичные эндпоинты (без авторизации)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Защищенные эндпоинты (требуют JWT токен в заголовке Authorization)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Post("/logout", authHandler.Logout)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Route("/{userID}", func(r chi.Router) {
					r.Get("/", userHandler.Get)
					r.Put("/", userHandler.Update)
					r.Patch("/", userHandler.Update)
					r.Delete("/", userHandler.Delete)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.Put("/", projectHandler.Update)
					r.Patch("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)
					r.Get("/stats", statsHandler.GetProjectStats)

					r.Route("/tasks", func(r chi.Router) {
						r.Get("/", taskHandler.List)
						r.Post("/", taskHandler.Create)
						r.Route("/{taskID}", func(r chi.Router) {
							r.Get("/", taskHandler.Get)
							r.Put("/", taskHandler.Update)
							r.Patch("/", taskHandler.Update)
							r.Delete("/", taskHandler.Delete)
						})
					})
				})
			})
		})
	})

	return r
}
