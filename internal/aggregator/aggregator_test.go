package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cryptonews/internal/model"
	"cryptonews/pkg/news"
	"cryptonews/pkg/price"
	"cryptonews/pkg/upstream"

	"github.com/go-playground/assert/v2"
)

type fakePrice struct {
	quotes map[string]model.PriceInfo
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (f *fakePrice) Name() string { return "FakePrice" }

func (f *fakePrice) Quote(ctx context.Context, symbol string) (*model.PriceInfo, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.quotes[strings.ToUpper(symbol)]
	if !ok {
		return nil, price.ErrSymbolNotFound
	}
	return &q, nil
}

type fakeSource struct {
	name     string
	articles []news.Article
	err      error
	before   func(ctx context.Context) error
	calls    atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, query string) ([]news.Article, error) {
	f.calls.Add(1)
	if f.before != nil {
		if err := f.before(ctx); err != nil {
			return nil, err
		}
	}
	return f.articles, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func btcPrice() *fakePrice {
	return &fakePrice{quotes: map[string]model.PriceInfo{
		"BTC": {Price: 65000.0, Volume24h: 1.2e10, PercentChange24h: 2.5},
	}}
}

func TestAggregateScenario(t *testing.T) {
	src := &fakeSource{name: "Daily", articles: []news.Article{
		{Title: "Bitcoin surges past $65k", URL: "https://daily.example/btc", Source: "Daily", Description: "BTC broke through resistance overnight."},
		{Title: "Ether gas fees drop", URL: "https://daily.example/eth", Source: "Daily"},
	}}
	agg := New(btcPrice(), []news.Source{src}, Options{Logger: quietLogger()})

	result := agg.Aggregate(context.Background(), "btc")

	assert.Equal(t, "btc", result.Query)
	assert.Equal(t, &model.PriceInfo{Price: 65000.0, Volume24h: 1.2e10, PercentChange24h: 2.5}, result.PriceInfo)
	assert.Equal(t, []model.Article{
		{Title: "Bitcoin surges past $65k", URL: "https://daily.example/btc", Source: "Daily"},
	}, result.News)
}

func TestAggregateUnknownTicker(t *testing.T) {
	src := &fakeSource{name: "Daily", articles: []news.Article{
		{Title: "Bitcoin surges past $65k", URL: "https://daily.example/btc", Source: "Daily"},
	}}
	agg := New(btcPrice(), []news.Source{src}, Options{Filter: FilterTitle, Logger: quietLogger()})

	result := agg.Aggregate(context.Background(), "bitcoin")

	assert.Equal(t, true, result.PriceInfo == nil)
	assert.Equal(t, 1, len(result.News))
}

func TestAggregateAllUpstreamsFail(t *testing.T) {
	down := errors.New("connection refused")
	agg := New(
		&fakePrice{err: down},
		[]news.Source{
			&fakeSource{name: "Daily", err: down},
			&fakeSource{name: "Extra", err: upstream.ErrMissingCredential},
		},
		Options{Logger: quietLogger()},
	)

	result := agg.Aggregate(context.Background(), "btc")

	assert.Equal(t, "btc", result.Query)
	assert.Equal(t, true, result.PriceInfo == nil)
	assert.Equal(t, true, result.News != nil)
	assert.Equal(t, 0, len(result.News))
}

func TestAggregatePartialFailureIsolation(t *testing.T) {
	a := &fakeSource{name: "A", err: errors.New("timeout")}
	b := &fakeSource{name: "B", articles: []news.Article{
		{Title: "ETH one", URL: "https://b.example/1", Source: "B"},
		{Title: "unrelated", URL: "https://b.example/2", Source: "B"},
		{Title: "eth two", URL: "https://b.example/3", Source: "B"},
	}}
	agg := New(btcPrice(), []news.Source{a, b}, Options{Logger: quietLogger()})

	result := agg.Aggregate(context.Background(), "eth")

	assert.Equal(t, []model.Article{
		{Title: "ETH one", URL: "https://b.example/1", Source: "B"},
		{Title: "eth two", URL: "https://b.example/3", Source: "B"},
	}, result.News)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestAggregateOrderFollowsSourcesNotArrival(t *testing.T) {
	slow := &fakeSource{
		name:     "Slow",
		articles: []news.Article{{Title: "sol slow", URL: "https://slow.example", Source: "Slow"}},
		before: func(ctx context.Context) error {
			time.Sleep(30 * time.Millisecond)
			return nil
		},
	}
	fast := &fakeSource{name: "Fast", articles: []news.Article{{Title: "sol fast", URL: "https://fast.example", Source: "Fast"}}}
	agg := New(nil, []news.Source{slow, fast}, Options{Logger: quietLogger()})

	result := agg.Aggregate(context.Background(), "SOL")

	assert.Equal(t, 2, len(result.News))
	assert.Equal(t, "Slow", result.News[0].Source)
	assert.Equal(t, "Fast", result.News[1].Source)
}

func TestAggregateRunsBranchesConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	barrier := func(ctx context.Context) error {
		started.Done()
		done := make(chan struct{})
		go func() {
			started.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	sources := []news.Source{
		&fakeSource{name: "One", before: barrier, articles: []news.Article{{Title: "btc 1", URL: "https://1.example", Source: "One"}}},
		&fakeSource{name: "Two", before: barrier, articles: []news.Article{{Title: "btc 2", URL: "https://2.example", Source: "Two"}}},
		&fakeSource{name: "Three", before: barrier, articles: []news.Article{{Title: "btc 3", URL: "https://3.example", Source: "Three"}}},
	}
	agg := New(nil, sources, Options{Timeout: 2 * time.Second, Logger: quietLogger()})

	result := agg.Aggregate(context.Background(), "btc")

	assert.Equal(t, 3, len(result.News))
}

type panickingPrice struct{}

func (panickingPrice) Name() string { return "Broken" }

func (panickingPrice) Quote(ctx context.Context, symbol string) (*model.PriceInfo, error) {
	panic("nil quote map")
}

func TestAggregateRecoversPanickingBranches(t *testing.T) {
	sources := []news.Source{
		&fakeSource{name: "Broken", before: func(ctx context.Context) error { panic("bad payload") }},
		&fakeSource{name: "Healthy", articles: []news.Article{{Title: "BTC holds $60k", URL: "https://ok.example/btc", Source: "Healthy"}}},
	}
	agg := New(panickingPrice{}, sources, Options{Logger: quietLogger()})

	result := agg.Aggregate(context.Background(), "btc")

	assert.Equal(t, true, result.PriceInfo == nil)
	assert.Equal(t, []model.Article{
		{Title: "BTC holds $60k", URL: "https://ok.example/btc", Source: "Healthy"},
	}, result.News)
}

func TestAggregatePriceTimeoutLeavesNews(t *testing.T) {
	p := btcPrice()
	p.delay = time.Second
	src := &fakeSource{name: "Daily", articles: []news.Article{{Title: "BTC surges past $65k", URL: "https://daily.example/btc", Source: "Daily"}}}
	agg := New(p, []news.Source{src}, Options{Timeout: 50 * time.Millisecond, Logger: quietLogger()})

	start := time.Now()
	result := agg.Aggregate(context.Background(), "btc")

	assert.Equal(t, true, time.Since(start) < time.Second)
	assert.Equal(t, true, result.PriceInfo == nil)
	assert.Equal(t, 1, len(result.News))
}

func TestAggregateIdempotent(t *testing.T) {
	src := &fakeSource{name: "Daily", articles: []news.Article{
		{Title: "btc a", URL: "https://x.example/a", Source: "Daily"},
		{Title: "btc b", URL: "https://x.example/b", Source: "Daily"},
	}}
	agg := New(btcPrice(), []news.Source{src}, Options{Logger: quietLogger()})

	first := agg.Aggregate(context.Background(), "btc")
	second := agg.Aggregate(context.Background(), "btc")

	assert.Equal(t, first, second)
}

func TestAggregateTickerCaseInsensitive(t *testing.T) {
	agg := New(btcPrice(), nil, Options{Logger: quietLogger()})

	lower := agg.Aggregate(context.Background(), "btc")
	upper := agg.Aggregate(context.Background(), "BTC")

	assert.Equal(t, upper.PriceInfo, lower.PriceInfo)
	assert.Equal(t, true, lower.PriceInfo != nil)
}

func TestAggregateDescriptionPolicy(t *testing.T) {
	src := &fakeSource{name: "Daily", articles: []news.Article{
		{Title: "Market wrap", URL: "https://x.example/wrap", Source: "Daily", Description: "BTC led gains"},
	}}

	strict := New(nil, []news.Source{src}, Options{Filter: FilterTitle, Logger: quietLogger()})
	assert.Equal(t, 0, len(strict.Aggregate(context.Background(), "btc").News))

	wide := New(nil, []news.Source{src}, Options{Filter: FilterTitleDescription, Logger: quietLogger()})
	assert.Equal(t, 1, len(wide.Aggregate(context.Background(), "btc").News))
}

func TestHandleMissingQuery(t *testing.T) {
	p := btcPrice()
	src := &fakeSource{name: "Daily"}
	agg := New(p, []news.Source{src}, Options{Logger: quietLogger()})

	for _, q := range []string{"", "   "} {
		_, err := agg.Handle(context.Background(), q)
		assert.Equal(t, true, errors.Is(err, ErrMissingQuery))
	}

	assert.Equal(t, int32(0), p.calls.Load())
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestHandleTrimsQuery(t *testing.T) {
	agg := New(btcPrice(), nil, Options{Logger: quietLogger()})

	result, err := agg.Handle(context.Background(), "  btc ")

	assert.Equal(t, nil, err)
	assert.Equal(t, "btc", result.Query)
	assert.Equal(t, true, result.PriceInfo != nil)
}

func TestSources(t *testing.T) {
	agg := New(nil, []news.Source{&fakeSource{name: "Daily"}, &fakeSource{name: "Extra"}}, Options{})

	assert.Equal(t, []string{"Daily", "Extra"}, agg.Sources())
}
