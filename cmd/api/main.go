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
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/bryanwahyu/ventur-api/internal/application"
	appauth "github.com/bryanwahyu/ventur-api/internal/application/auth"
	appdash "github.com/bryanwahyu/ventur-api/internal/application/dashboard"
	approom "github.com/bryanwahyu/ventur-api/internal/application/dataroom"
	appdecks "github.com/bryanwahyu/ventur-api/internal/application/decks"
	"github.com/bryanwahyu/ventur-api/internal/config"
	domroom "github.com/bryanwahyu/ventur-api/internal/domain/dataroom"
	domdecks "github.com/bryanwahyu/ventur-api/internal/domain/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/users"
	openaiClient "github.com/bryanwahyu/ventur-api/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/ventur-api/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/ventur-api/internal/infra/db/postgres"
	"github.com/bryanwahyu/ventur-api/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/ventur-api/internal/infra/storage"
	"github.com/bryanwahyu/ventur-api/internal/middleware"
)

func main() {
	// .env is optional, real deployments inject env directly
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB, pilih driver dari config
	var (
		userRepo users.Repository
		deckRepo domdecks.Repository
		docRepo  domroom.Repository
		db       *sql.DB
	)
	switch cfg.Database.Driver {
	case "postgres":
		pg, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		if err := postgresp.EnsureSchema(ctx, pg); err != nil {
			log.Fatalf("postgres schema error: %v", err)
		}
		userRepo = postgresp.NewUserRepository(pg)
		deckRepo = postgresp.NewDeckRepository(pg)
		docRepo = postgresp.NewDocumentRepository(pg)
		db = pg
	default:
		my, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		if err := mysqlp.EnsureSchema(ctx, my); err != nil {
			log.Fatalf("mysql schema error: %v", err)
		}
		userRepo = mysqlp.NewUserRepository(my)
		deckRepo = mysqlp.NewDeckRepository(my)
		docRepo = mysqlp.NewDocumentRepository(my)
		db = my
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init AI client
	ai := openaiClient.NewClient(cfg.AI.APIKey, cfg.AI.Model)

	aiTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	// init services
	authSvc := appauth.NewService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	deckSvc := &appdecks.Service{
		Repo:      deckRepo,
		Files:     store,
		AI:        ai,
		Clock:     application.SystemClock{},
		AITimeout: aiTimeout,
		OnAnalysisDone: func(domdecks.DeckID) {
			middleware.DecrementAnalysesRunning()
		},
	}
	roomSvc := &approom.Service{
		Repo:      docRepo,
		Files:     store,
		AI:        ai,
		Clock:     application.SystemClock{},
		AITimeout: aiTimeout,
		OnAnalysisDone: func(domroom.DocumentID) {
			middleware.DecrementAnalysesRunning()
		},
	}
	dashSvc := &appdash.Service{Decks: deckRepo, Documents: docRepo, Files: store}

	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  &middleware.PingHealthChecker{Ping: store.Ping},
	})

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(authSvc, deckSvc, roomSvc, dashSvc, cfg.MaxUploadBytes(), health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
