package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/saniya177/satellisense-backend/charts"
	"github.com/saniya177/satellisense-backend/config"
	"github.com/saniya177/satellisense-backend/database"
	"github.com/saniya177/satellisense-backend/gemini"
	"github.com/saniya177/satellisense-backend/handlers"
	"github.com/saniya177/satellisense-backend/media"
	"github.com/saniya177/satellisense-backend/repository"
	"github.com/saniya177/satellisense-backend/session"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.UploadsPath, cfg.ChartsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to run database migrations: %v", err)
	}

	uploadStore, err := media.NewUploadStore(cfg.UploadsPath, cfg.PublicBaseURL, "/api/uploads")
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize upload store: %v", err)
	}
	chartRenderer := charts.NewRenderer(cfg.ChartsPath)

	userRepo := repository.NewGormUserRepository(db)
	analysisRepo := repository.NewMemoryAnalysisRepository()
	annotationRepo := repository.NewMemoryAnnotationRepository()
	sessions := session.NewStore()

	inference := gemini.NewHTTPClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL,
		time.Duration(cfg.GeminiTimeout)*time.Second)

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing uploads in: %s", cfg.UploadsPath)
	log.Printf("Storing charts in: %s", cfg.ChartsPath)
	log.Printf("Inference model: %s", cfg.GeminiModel)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(corsHandler.Handler)

	authHandler := handlers.NewAuthHandler(cfg, userRepo, sessions)
	analysisHandler := &handlers.AnalysisHandler{
		Cfg:         cfg,
		Records:     analysisRepo,
		Uploads:     uploadStore,
		Charts:      chartRenderer,
		Inference:   inference,
		Sessions:    sessions,
		Annotations: annotationRepo,
	}

	requireAuth := func(next http.Handler) http.Handler {
		return handlers.AuthMiddleware(cfg, userRepo, next)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.CurrentUser)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/analyze", analysisHandler.Analyze)
			r.Post("/analyze/batch", analysisHandler.BatchAnalyze)
			r.Post("/chat", analysisHandler.Chat)
			r.Get("/chart-data", analysisHandler.ChartData)
			r.Get("/history", analysisHandler.History)
			r.Get("/analytics", analysisHandler.Analytics)

			r.Post("/compare", analysisHandler.Compare)
			r.Post("/timeseries", analysisHandler.TimeSeries)
			r.Post("/changes", analysisHandler.DetectChanges)
			r.Post("/forecast", analysisHandler.Forecast)
			r.Post("/predict", analysisHandler.Predict)
			r.Post("/anomaly", analysisHandler.Anomaly)
			r.Post("/query", analysisHandler.Query)
			r.Get("/suggestions", analysisHandler.Suggestions)

			r.Route("/annotations", func(r chi.Router) {
				r.Post("/", analysisHandler.SaveAnnotation)
				r.Get("/", analysisHandler.ListAnnotations)
				r.Delete("/", analysisHandler.DeleteAnnotation)
			})

			r.Post("/preprocess", analysisHandler.Preprocess)
			r.Get("/uploads/list", analysisHandler.ListUploads)
		})

		uploadsSubDir := filepath.Base(cfg.UploadsPath)
		r.Get(fmt.Sprintf("/%s/*", uploadsSubDir), handlers.AssetServer(cfg.StoragePath, uploadsSubDir))
		log.Printf("Registered upload server at /api/%s/*", uploadsSubDir)

		chartsSubDir := filepath.Base(cfg.ChartsPath)
		r.Get(fmt.Sprintf("/%s/*", chartsSubDir), handlers.AssetServer(cfg.StoragePath, chartsSubDir))
		log.Printf("Registered chart server at /api/%s/*", chartsSubDir)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
