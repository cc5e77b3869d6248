package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/elimu-hub/backend/docs"
	authMiddleware "github.com/elimu-hub/backend/internal/auth/middleware"
	authService "github.com/elimu-hub/backend/internal/auth/service"
	"github.com/elimu-hub/backend/internal/config"
	"github.com/elimu-hub/backend/internal/handlers"
	"github.com/elimu-hub/backend/internal/logger"
	"github.com/elimu-hub/backend/internal/middlewares"
	"github.com/elimu-hub/backend/internal/repositories"
	"github.com/elimu-hub/backend/internal/services"
	"github.com/elimu-hub/backend/internal/storage"
)

const maxRequestSize = 50 * 1024 * 1024 // 50MB for file uploads

// @title Elimu Hub Library API
// @version 1.0
// @description API for the CBC teaching-content library: sections, subfolders, uploads and the moderation gate.
// @termsOfService http://swagger.io/terms/

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Validate library base path is set
	if cfg.LibraryBasePath == "" {
		log.Fatalf("LIBRARY_BASE_PATH is required")
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Elimu Hub Library Service")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := authService.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Initialize storage
	fileStorage := storage.NewLocalStorage(cfg.LibraryBasePath)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	sectionRepo := repositories.NewSectionRepository(db)
	subfolderRepo := repositories.NewSubfolderRepository(db)
	fileRepo := repositories.NewFileRepository(db)

	// Base URL for generating download URLs
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	// Initialize services
	auth := services.NewAuthService(userRepo, tokenGenerator, logger.Logger)
	librarySvc := services.NewLibraryService(sectionRepo, subfolderRepo, fileRepo, baseURL)
	fileSvc := services.NewFileService(fileRepo, sectionRepo, subfolderRepo, fileStorage)

	// Initialize middleware
	authMw := authMiddleware.AuthMiddleware(tokenGenerator)
	optionalAuthMw := authMiddleware.OptionalAuthMiddleware(tokenGenerator)
	adminMw := authMiddleware.RoleMiddleware(tokenGenerator, 2) // Admin role = 2
	apiKeyMw := authMiddleware.APIKeyMiddleware(cfg.APIKey)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(auth, logger.Logger)
	libraryHandler := handlers.NewLibraryHandler(librarySvc, fileSvc, logger.Logger)
	fileHandler := handlers.NewFileHandler(fileSvc, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Get("/health", healthHandler.Health)

	// File downloads use the static path convention
	r.With(optionalAuthMw).Get("/uploads/library/{filename}", fileHandler.DownloadFile)

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Route("/library", func(r chi.Router) {
			// Listing endpoints work anonymously; identity only widens visibility
			r.Group(func(r chi.Router) {
				r.Use(optionalAuthMw)
				r.Get("/sections", libraryHandler.GetSections)
				r.Get("/files", libraryHandler.GetFiles)
				r.Get("/files/{id}", libraryHandler.GetFileMetadata)
			})

			// Uploads require an authenticated identity
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/upload", fileHandler.UploadFile)
			})

			// Moderation and authoring require the admin role
			r.Group(func(r chi.Router) {
				r.Use(adminMw)
				r.Post("/sections", libraryHandler.CreateSection)
				r.Post("/subfolders", libraryHandler.CreateSubfolder)
				r.Post("/files/{id}/approve", libraryHandler.ApproveFile)
				r.Post("/files/{id}/decline", libraryHandler.DeclineFile)
				r.Delete("/files/{id}", libraryHandler.DeleteFile)
			})

			// Stats are scraped by internal tooling with an API key
			r.Group(func(r chi.Router) {
				r.Use(apiKeyMw)
				r.Get("/stats", libraryHandler.GetStats)
			})
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second, // Longer timeout for file uploads
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "library_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
