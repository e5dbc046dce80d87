package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"cryptonews/internal/app"
	"cryptonews/internal/config"
	"cryptonews/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	agg, closeAgg, err := app.NewAggregator(context.Background(), cfg)
	if err != nil {
		log.Fatalf("error building aggregator: %v", err)
	}
	defer closeAgg()

	newsHandler := handler.NewNewsHandler(agg)

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID())
	handler.LoadTemplates(r)

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", handler.RequestIDHeader},
	}))

	r.GET("/", newsHandler.GetIndex)
	r.GET("/news", newsHandler.GetNews)
	r.GET("/health", newsHandler.GetHealth)

	slog.Info("server listening", "addr", cfg.ListenAddr)
	err = r.Run(cfg.ListenAddr)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
