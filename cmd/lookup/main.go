package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"cryptonews/internal/aggregator"
	"cryptonews/internal/app"
	"cryptonews/internal/config"
	"cryptonews/internal/handler"
)

func main() {
	query := flag.String("query", "", "ticker or keyword to look up, e.g. btc")
	flag.Parse()

	if *query == "" {
		*query = strings.Join(flag.Args(), " ")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// stdout carries the result, logs go to stderr.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	agg, closeAgg, err := app.NewAggregator(context.Background(), cfg)
	if err != nil {
		log.Fatalf("error building aggregator: %v", err)
	}
	defer closeAgg()

	result, err := agg.Handle(context.Background(), *query)
	if errors.Is(err, aggregator.ErrMissingQuery) {
		json.NewEncoder(os.Stderr).Encode(handler.ErrorResponse{Error: "Missing query"})
		closeAgg()
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(handler.ToNewsResponse(result)); err != nil {
		slog.Error("error writing result", "error", err)
	}
}
