package app

import (
	"context"
	"log/slog"
	"net/http"

	"cryptonews/db"
	"cryptonews/internal/aggregator"
	"cryptonews/internal/config"
	"cryptonews/pkg/news"
	"cryptonews/pkg/price"
	"cryptonews/pkg/upstream"
)

// NewAggregator wires the price client and the configured news sources. The
// returned close function releases the optional cache connection.
func NewAggregator(ctx context.Context, cfg config.Config) (*aggregator.Aggregator, func(), error) {
	for _, key := range cfg.MissingCredentials() {
		slog.Warn("upstream credential not configured, dependent sources will return nothing", "key", key)
	}

	httpClient := &http.Client{Timeout: upstream.DefaultTimeout}
	client := upstream.NewClient(httpClient)

	sources := Sources(cfg, client, httpClient)
	closeFn := func() {}

	if cfg.RedisURL != "" {
		rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis unavailable, news cache disabled", "error", err)
		} else {
			cache := db.NewRedisCache(rdb)
			for i, s := range sources {
				sources[i] = news.NewCachedSource(s, cache, cfg.CacheTTL)
			}
			closeFn = func() { rdb.Close() }
			slog.Info("news cache enabled", "ttl", cfg.CacheTTL.String())
		}
	}

	filter, err := aggregator.ParseFilterMode(cfg.FilterMode)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	agg := aggregator.New(
		price.NewCoinMarketCapClient(cfg.CMCAPIKey, cfg.CMCEndpoint, client),
		sources,
		aggregator.Options{Filter: filter, Timeout: cfg.UpstreamTimeout},
	)

	slog.Info("aggregator ready", "sources", agg.Sources(), "filter", string(filter), "timeout", cfg.UpstreamTimeout.String())
	return agg, closeFn, nil
}

// Sources builds the news sources in configured order.
func Sources(cfg config.Config, client *upstream.Client, httpClient *http.Client) []news.Source {
	sources := make([]news.Source, 0, len(cfg.NewsSources))
	for _, name := range cfg.NewsSources {
		switch name {
		case config.SourceCryptoDaily:
			sources = append(sources, news.NewCryptoDailyClient(cfg.RapidAPIKey, client))
		case config.SourceNewsAPI65:
			sources = append(sources, news.NewNewsAPI65Client(cfg.RapidAPIKey, cfg.NewsLimit, client))
		case config.SourceFinnhub:
			sources = append(sources, news.NewFinnHubClient(cfg.FinnhubAPIKey, httpClient))
		case config.SourceAlphaVantage:
			sources = append(sources, news.NewAlphaVantageClient(cfg.AlphaVantageAPIKey, cfg.NewsLimit, client))
		case config.SourceMassive:
			sources = append(sources, news.NewMassiveClient(cfg.MassiveAPIKey, cfg.NewsLimit, client))
		case config.SourceWordPress:
			sources = append(sources, news.NewWordPressClient(cfg.WordPressBaseURL, cfg.NewsLimit, client))
		default:
			slog.Warn("ignoring unknown news source", "source", name)
		}
	}
	return sources
}
