package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fypms/internal/auth"
	"fypms/internal/config"
	"fypms/internal/model"
)

type Server struct {
	cfg    config.Config
	store  Store
	tokens *auth.TokenService
	redis  *redis.Client
	logger *zap.Logger
}

func NewServer(cfg config.Config, store Store, redisClient *redis.Client, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		tokens: auth.NewTokenService(cfg.AccessTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenSecret, cfg.RefreshTokenTTL),
		redis:  redisClient,
		logger: logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Welcome to the FYP MANAGEMENT SYSTEM API"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if s.cfg.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/login-admin", s.handleAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(model.RoleAdmin))
			r.Post("/add-supervisor", s.handleAddSupervisor)
			r.Get("/get-all-supervisors", s.handleGetAllSupervisors)
			r.Get("/search-supervisors", s.handleSearchSupervisors)
			r.Patch("/supervisor/{id}", s.handleUpdateSupervisor)
			r.Delete("/supervisor/{id}", s.handleDeleteSupervisor)
			r.Get("/get-all-projects", s.handleGetAllProjects)
			r.Get("/search-projects", s.handleSearchProjects)
			r.Post("/admin-logout", func(w http.ResponseWriter, r *http.Request) {
				s.handleLogout(w, r, "Admin logged out successfully")
			})
		})
	})

	r.Route("/api/v1/supervisor", func(r chi.Router) {
		r.Post("/login-supervisor", s.handleSupervisorLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(model.RoleSupervisor))
			r.Post("/add-student", s.handleAddStudent)
			r.Get("/get-all-students", s.handleGetAllStudents)
			r.Patch("/update-student/{id}", s.handleUpdateStudent)
			r.Delete("/delete-student/{id}", s.handleDeleteStudent)
			r.Get("/items/{type}", s.handleGetItems)
			r.Patch("/items/{type}/{id}", s.handleUpdateItemStatus)
			r.Post("/logout-supervisor", func(w http.ResponseWriter, r *http.Request) {
				s.handleLogout(w, r, "Supervisor logged out successfully")
			})
		})
	})

	r.Route("/api/v1/student", func(r chi.Router) {
		r.Post("/login-student", s.handleStudentLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(model.RoleStudent))
			r.Post("/submit-proposal", s.handleSubmitProposal)
			r.Get("/get-student-proposals", s.handleGetStudentProposals)
			r.Post("/submit-project", s.handleSubmitProject)
			r.Get("/get-student-projects", s.handleGetStudentProjects)
			r.Post("/student-logout", func(w http.ResponseWriter, r *http.Request) {
				s.handleLogout(w, r, "Student logged out successfully")
			})
		})
	})

	return r
}
