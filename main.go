package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/primetrade/taskapi/internal/auth"
	"github.com/primetrade/taskapi/internal/config"
	"github.com/primetrade/taskapi/internal/handler"
	"github.com/primetrade/taskapi/internal/models"
	"github.com/primetrade/taskapi/internal/ratelimit"
	"github.com/primetrade/taskapi/internal/repository"
)

func setupSlog() {
	//Json handler that writes to standard out
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug, //log debug and above
	})

	//Intialise new logger and set it as default for the server
	logger := slog.New(h)
	slog.SetDefault(logger)
}

func initDB(dburl string) *sql.DB {
	db, err := sql.Open("pgx", dburl)
	if err != nil {
		slog.Error("database_intialization_failed", "error", err)
		os.Exit(1)
	}

	//check if connection is alive
	err = db.Ping()
	if err != nil {
		slog.Error("database_connection_ping_failed", "error", err)
		os.Exit(1)
	}

	slog.Info("database_intialisation_success")

	return db
}

func loggerMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		//logging completion of a request
		slog.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"ip", r.RemoteAddr,
			//imp : how long does it take a req to complete
			"duration", time.Since(start).String(),
		)
	})
}

func bodyLimitMW(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ensureAdmin creates the bootstrap admin account as a synchronous
// startup step: skipped when the email already exists, and skipped with
// a warning when no password is configured.
func ensureAdmin(users *repository.UserRepo, cfg config.Config) error {
	if cfg.AdminPassword == "" {
		slog.Warn("admin_bootstrap_skipped", "reason", "no ADMIN_PASSWORD configured")
		return nil
	}

	_, err := users.FindByEmail(cfg.AdminEmail)
	if err == nil {
		return nil //already present
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	_, err = users.Create(cfg.AdminName, cfg.AdminEmail, hash, models.RoleAdmin)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil //lost a race with another instance, fine
	}
	if err != nil {
		return err
	}

	slog.Info("admin_bootstrap_success", "email", cfg.AdminEmail)
	return nil
}

func routing(cfg config.Config, authH *handler.AuthHandler, taskH *handler.TaskHandler, adminH *handler.AdminHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(loggerMW)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(ratelimit.New(cfg.RateLimit, cfg.RateWindow).Middleware)
	r.Use(bodyLimitMW(cfg.MaxBodyBytes))

	r.NotFound(handler.NotFound)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)

		//only callers with a valid token can reach these routes
		r.Group(func(r chi.Router) {
			r.Use(authH.Authenticate)

			r.Get("/profile", authH.GetProfile)
			r.Put("/profile", authH.UpdateProfile)

			r.Get("/tasks", taskH.List)
			r.Post("/tasks", taskH.Create)
			r.Put("/tasks/{id}", taskH.Update)
			r.Delete("/tasks/{id}", taskH.Delete)

			r.Route("/admin", func(r chi.Router) {
				r.Use(handler.RequireAdmin)

				r.Get("/users", adminH.ListUsers)
				r.Delete("/users/{id}", adminH.DeleteUser)
				r.Get("/tasks", adminH.ListTasks)
				r.Delete("/tasks/{id}", adminH.DeleteTask)
			})
		})
	})

	return r
}

func startServer(addr string, h http.Handler) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server_start", "addr", addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server_start_failed", "error", err)
			os.Exit(1)
		}
	}()

	//wait for interrupt and drain in-flight requests
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	slog.Info("server_shutdown_success")
}

func main() {

	//structured logging
	setupSlog()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}

	db := initDB(cfg.DBURL)
	defer db.Close()

	users, err := repository.NewUserRepo(db)
	if err != nil {
		slog.Error("repository_creation_failed", "error", err)
		os.Exit(1)
	}
	tasks, err := repository.NewTaskRepo(db)
	if err != nil {
		slog.Error("repository_creation_failed", "error", err)
		os.Exit(1)
	}

	if err := ensureAdmin(users, cfg); err != nil {
		slog.Error("admin_bootstrap_failed", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	authH := handler.NewAuthHandler(users, tokens)
	taskH := handler.NewTaskHandler(tasks)
	adminH := handler.NewAdminHandler(users, tasks)

	//routing + middleware
	mux := routing(cfg, authH, taskH, adminH)

	startServer(cfg.Addr, mux)
}
