package news

import (
	"context"
	"fmt"
	"net/http"

	"cryptonews/pkg/upstream"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnHubClient struct {
	apiKey string
	client *finnhub.DefaultApiService
}

// NewFinnHubClient reads the crypto market-news category. httpClient may be
// nil to use the SDK default.
func NewFinnHubClient(apiKey string, httpClient *http.Client) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{apiKey: apiKey, client: client}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

func (c *FinnHubClient) IgnoresQuery() bool {
	return true
}

func (c *FinnHubClient) Fetch(ctx context.Context, _ string) ([]Article, error) {
	if err := upstream.RequireCredential("FINNHUB_API_KEY", c.apiKey); err != nil {
		return nil, err
	}

	res, resp, err := c.client.MarketNews(ctx).Category("crypto").Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub fetch: %w", classifySDKError(resp, err))
	}

	return finnhubArticles(res, c.Name()), nil
}

func finnhubArticles(res []finnhub.MarketNews, label string) []Article {
	articles := make([]Article, 0, len(res))
	for _, news := range res {
		a, ok := NewArticle(
			deref(news.Headline),
			deref(news.Url),
			deref(news.Source),
			cleanText(deref(news.Summary)),
			label,
		)
		if !ok {
			continue
		}
		articles = append(articles, a)
	}
	return articles
}

// classifySDKError maps generated-client failures onto the upstream error
// classes: no response is transport, a non-2xx response is a status error and
// anything else failed while decoding.
func classifySDKError(resp *http.Response, err error) error {
	switch {
	case resp == nil:
		return fmt.Errorf("%w: %w", upstream.ErrTransport, err)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w %d: %w", upstream.ErrStatus, resp.StatusCode, err)
	default:
		return fmt.Errorf("%w: %w", upstream.ErrDecode, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
