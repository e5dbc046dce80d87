package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cryptonews/internal/model"
	"cryptonews/pkg/news"
	"cryptonews/pkg/price"

	"golang.org/x/sync/errgroup"
)

var ErrMissingQuery = errors.New("missing query")

type Options struct {
	Filter FilterMode
	// Timeout bounds each upstream call on its own. Zero disables it.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Aggregator fans a query out to the price client and every news source and
// merges whatever succeeds. Failed branches contribute nothing.
type Aggregator struct {
	price   price.Client
	sources []news.Source
	filter  FilterMode
	timeout time.Duration
	log     *slog.Logger
}

func New(priceClient price.Client, sources []news.Source, opts Options) *Aggregator {
	if opts.Filter == "" {
		opts.Filter = FilterTitleDescription
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Aggregator{
		price:   priceClient,
		sources: sources,
		filter:  opts.Filter,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
}

// Sources lists the configured news sources in call order.
func (a *Aggregator) Sources() []string {
	names := make([]string, 0, len(a.sources))
	for _, s := range a.sources {
		names = append(names, s.Name())
	}
	return names
}

// Handle is the request boundary: a blank query returns ErrMissingQuery
// without touching any upstream.
func (a *Aggregator) Handle(ctx context.Context, query string) (model.AggregateResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.AggregateResult{}, ErrMissingQuery
	}
	return a.Aggregate(ctx, query), nil
}

// Aggregate never fails. Results are ordered by source, then by upstream
// order within each source.
func (a *Aggregator) Aggregate(ctx context.Context, query string) model.AggregateResult {
	var (
		g         errgroup.Group
		priceInfo *model.PriceInfo
		perSource = make([][]model.Article, len(a.sources))
	)

	if a.price != nil {
		g.Go(func() error {
			priceInfo = a.fetchPrice(ctx, query)
			return nil
		})
	}

	for i, src := range a.sources {
		g.Go(func() error {
			perSource[i] = a.fetchNews(ctx, src, query)
			return nil
		})
	}

	// Branches report failure through their own slot, never through the group.
	_ = g.Wait()

	merged := make([]model.Article, 0)
	for _, articles := range perSource {
		merged = append(merged, articles...)
	}

	return model.AggregateResult{
		Query:     query,
		PriceInfo: priceInfo,
		News:      merged,
	}
}

func (a *Aggregator) fetchPrice(ctx context.Context, query string) (info *model.PriceInfo) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("price lookup panicked", "source", a.price.Name(), "query", query, "panic", r)
			info = nil
		}
	}()

	ctx, cancel := a.branchContext(ctx)
	defer cancel()

	info, err := a.price.Quote(ctx, query)
	if errors.Is(err, price.ErrSymbolNotFound) {
		a.log.Info("no quote for query", "source", a.price.Name(), "query", query)
		return nil
	}
	if err != nil {
		a.log.Warn("price lookup failed", "source", a.price.Name(), "query", query, "error", err)
		return nil
	}
	return info
}

func (a *Aggregator) fetchNews(ctx context.Context, src news.Source, query string) (matched []model.Article) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("news source panicked", "source", src.Name(), "query", query, "panic", r)
			matched = nil
		}
	}()

	ctx, cancel := a.branchContext(ctx)
	defer cancel()

	candidates, err := src.Fetch(ctx, query)
	if err != nil {
		a.log.Warn("news source failed", "source", src.Name(), "query", query, "error", err)
		return nil
	}

	for _, c := range candidates {
		if !Matches(c, query, a.filter) {
			continue
		}
		matched = append(matched, model.Article{
			Title:  c.Title,
			URL:    c.URL,
			Source: c.Source,
		})
	}

	a.log.Debug("news source done", "source", src.Name(), "query", query, "fetched", len(candidates), "matched", len(matched))
	return matched
}

func (a *Aggregator) branchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
