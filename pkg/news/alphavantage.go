package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cryptonews/pkg/upstream"
)

const alphaVantageURL = "https://www.alphavantage.co/query?function=NEWS_SENTIMENT&topics=blockchain&limit=%d&sort=LATEST&apikey=%s"

type AlphaVantageClient struct {
	apiKey string
	limit  int
	http   *upstream.Client
}

func NewAlphaVantageClient(apiKey string, limit int, http *upstream.Client) *AlphaVantageClient {
	if http == nil {
		http = upstream.NewClient(nil)
	}
	if limit <= 0 {
		limit = 50
	}
	return &AlphaVantageClient{apiKey: apiKey, limit: limit, http: http}
}

func (c *AlphaVantageClient) Name() string {
	return "AlphaVantage"
}

func (c *AlphaVantageClient) IgnoresQuery() bool {
	return true
}

func (c *AlphaVantageClient) Fetch(ctx context.Context, _ string) ([]Article, error) {
	if err := upstream.RequireCredential("ALPHA_VANTAGE_API_KEY", c.apiKey); err != nil {
		return nil, err
	}

	var raw avResponse
	err := c.http.GetJSON(ctx, upstream.Request{URL: fmt.Sprintf(alphaVantageURL, c.limit, c.apiKey)}, &raw)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}

	// Quota and key problems come back as 200 with a note instead of a feed.
	if raw.Feed == nil && (raw.Information != "" || raw.Note != "") {
		return nil, fmt.Errorf("alphavantage fetch: %w: %s", upstream.ErrStatus, raw.Information+raw.Note)
	}

	items := decodeItems[avFeedItem](c.Name(), raw.Feed)
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		a, ok := NewArticle(item.Title.String(), item.URL, item.Source, item.Summary.String(), c.Name())
		if !ok {
			slog.Debug("skipping incomplete news item", "source", c.Name(), "url", item.URL)
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

type avResponse struct {
	Feed        []json.RawMessage `json:"feed"`
	Information string            `json:"Information"`
	Note        string            `json:"Note"`
}

type avFeedItem struct {
	Title         Text   `json:"title"`
	Summary       Text   `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}
