package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"cryptonews/pkg/upstream"
)

const massiveURL = "https://api.massive.com/v2/reference/news?ticker=%s&limit=%d&order=desc&sort=published_utc&apiKey=%s"

type MassiveClient struct {
	apiKey string
	limit  int
	http   *upstream.Client
}

func NewMassiveClient(apiKey string, limit int, http *upstream.Client) *MassiveClient {
	if http == nil {
		http = upstream.NewClient(nil)
	}
	if limit <= 0 {
		limit = 50
	}
	return &MassiveClient{apiKey: apiKey, limit: limit, http: http}
}

func (c *MassiveClient) Name() string {
	return "Massive"
}

// Fetch asks for news tagged with the query's USD crypto pair, e.g. X:BTCUSD.
func (c *MassiveClient) Fetch(ctx context.Context, query string) ([]Article, error) {
	if err := upstream.RequireCredential("MASSIVE_API_KEY", c.apiKey); err != nil {
		return nil, err
	}

	u := fmt.Sprintf(massiveURL, url.QueryEscape(cryptoTicker(query)), c.limit, c.apiKey)

	var raw massiveResponse
	if err := c.http.GetJSON(ctx, upstream.Request{URL: u}, &raw); err != nil {
		return nil, fmt.Errorf("massive fetch: %w", err)
	}

	items := decodeItems[massiveResult](c.Name(), raw.Results)
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		a, ok := NewArticle(item.Title.String(), item.ArticleURL, item.Publisher.Name, item.Description.String(), c.Name())
		if !ok {
			slog.Debug("skipping incomplete news item", "source", c.Name(), "id", item.ID)
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

func cryptoTicker(query string) string {
	return "X:" + strings.ToUpper(strings.TrimSpace(query)) + "USD"
}

type massiveResponse struct {
	Results []json.RawMessage `json:"results"`
}

type massiveResult struct {
	ID           string           `json:"id"`
	Title        Text             `json:"title"`
	Description  Text             `json:"description"`
	ArticleURL   string           `json:"article_url"`
	PublishedUTC string           `json:"published_utc"`
	Tickers      []string         `json:"tickers"`
	Publisher    massivePublisher `json:"publisher"`
}

type massivePublisher struct {
	Name string `json:"name"`
}
