package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cryptonews/pkg/upstream"
)

const (
	newsAPI65Host = "news-api65.p.rapidapi.com"
	newsAPI65URL  = "https://" + newsAPI65Host + "/api/v1/crypto/articles/search?format=json&time_frame=24h&page=1&limit=%d"
)

type NewsAPI65Client struct {
	apiKey string
	limit  int
	http   *upstream.Client
}

func NewNewsAPI65Client(apiKey string, limit int, http *upstream.Client) *NewsAPI65Client {
	if http == nil {
		http = upstream.NewClient(nil)
	}
	if limit <= 0 {
		limit = 10
	}
	return &NewsAPI65Client{apiKey: apiKey, limit: limit, http: http}
}

func (c *NewsAPI65Client) Name() string {
	return "Extra"
}

func (c *NewsAPI65Client) IgnoresQuery() bool {
	return true
}

func (c *NewsAPI65Client) Fetch(ctx context.Context, _ string) ([]Article, error) {
	if err := upstream.RequireCredential("RAPIDAPI_KEY", c.apiKey); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(newsAPI65URL, c.limit)

	var raw newsAPI65Response
	if err := c.http.GetJSON(ctx, rapidAPIRequest(url, newsAPI65Host, c.apiKey), &raw); err != nil {
		return nil, fmt.Errorf("newsapi65 fetch: %w", err)
	}

	items := decodeItems[newsAPI65Item](c.Name(), raw.Data)
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		// The feed has no per-item publisher, every article is labelled with the source name.
		a, ok := NewArticle(item.Title.String(), item.URL, "", item.Description.String(), c.Name())
		if !ok {
			slog.Debug("skipping incomplete news item", "source", c.Name(), "url", item.URL)
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

type newsAPI65Response struct {
	Data []json.RawMessage `json:"data"`
}

type newsAPI65Item struct {
	Title       Text   `json:"title"`
	URL         string `json:"url"`
	Description Text   `json:"description"`
	PublishedAt string `json:"published_at"`
}
