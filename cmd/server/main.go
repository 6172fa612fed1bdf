package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/newsphere/backend/internal/config"
	"github.com/newsphere/backend/internal/es"
	"github.com/newsphere/backend/internal/events"
	"github.com/newsphere/backend/internal/handlers"
	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/logging"
	authmw "github.com/newsphere/backend/internal/middleware/auth"
	loggingmw "github.com/newsphere/backend/internal/middleware/logging"
	"github.com/newsphere/backend/internal/newsapi"
	"github.com/newsphere/backend/internal/observability"
	"github.com/newsphere/backend/internal/session"
	"github.com/newsphere/backend/internal/tokens"
	httpserver "github.com/newsphere/backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	if err := observability.InitSentry(configuration.SENTRY_DSN, configuration.ENV); err != nil {
		log.Printf("sentry init failed: %v", err)
	}
	defer observability.FlushSentry()

	prod, err := events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Printf("kafka producer unavailable: %v", err)
		prod = nil
	}

	tokenSvc := &tokens.Service{Secret: []byte(configuration.JWT_SECRET)}
	sessions := &session.Service{DB: db, Tokens: tokenSvc}
	auth := &authmw.Middleware{DB: db, Tokens: tokenSvc}

	deps := &httpserver.Deps{
		DB:   db,
		Auth: auth,
		AuthHandler: &handlers.AuthHandler{
			DB:         db,
			Sessions:   sessions,
			Producer:   prod,
			Production: configuration.IsProduction(),
		},
		ArticleHandler:  &handlers.ArticleHandler{DB: db, Producer: prod},
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		CommentHandler:  &handlers.CommentHandler{DB: db},
		BookmarkHandler: &handlers.BookmarkHandler{DB: db},
		AdminHandler:    &handlers.AdminHandler{DB: db},
		NewsHandler: &handlers.NewsHandler{
			DB:     db,
			Client: newsapi.NewClient(configuration.NEWSDATA_API_KEY, configuration.THENEWS_API_KEY),
		},
	}

	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Printf("elasticsearch unavailable: %v", err)
		} else {
			deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: "articles"}
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(observability.CaptureErrors)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{configuration.FRONTEND_URL},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", configuration.PORT, "env", configuration.ENV)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
