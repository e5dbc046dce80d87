package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cryptonews/pkg/upstream"
)

const (
	cryptoDailyHost = "cryptocurrency-news2.p.rapidapi.com"
	cryptoDailyURL  = "https://" + cryptoDailyHost + "/v1/cryptodaily"
)

type CryptoDailyClient struct {
	apiKey string
	http   *upstream.Client
}

func NewCryptoDailyClient(apiKey string, http *upstream.Client) *CryptoDailyClient {
	if http == nil {
		http = upstream.NewClient(nil)
	}
	return &CryptoDailyClient{apiKey: apiKey, http: http}
}

func (c *CryptoDailyClient) Name() string {
	return "Daily"
}

func (c *CryptoDailyClient) IgnoresQuery() bool {
	return true
}

func (c *CryptoDailyClient) Fetch(ctx context.Context, _ string) ([]Article, error) {
	if err := upstream.RequireCredential("RAPIDAPI_KEY", c.apiKey); err != nil {
		return nil, err
	}

	var raw cryptoDailyResponse
	err := c.http.GetJSON(ctx, rapidAPIRequest(cryptoDailyURL, cryptoDailyHost, c.apiKey), &raw)
	if err != nil {
		return nil, fmt.Errorf("cryptodaily fetch: %w", err)
	}

	items := decodeItems[cryptoDailyItem](c.Name(), raw.Data)
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		a, ok := NewArticle(item.Title.String(), item.URL, item.Source.String(), item.Description.String(), c.Name())
		if !ok {
			slog.Debug("skipping incomplete news item", "source", c.Name(), "url", item.URL)
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

func rapidAPIRequest(url, host, apiKey string) upstream.Request {
	return upstream.Request{
		URL: url,
		Headers: map[string]string{
			"x-rapidapi-key":  apiKey,
			"x-rapidapi-host": host,
		},
	}
}

type cryptoDailyResponse struct {
	Data []json.RawMessage `json:"data"`
}

type cryptoDailyItem struct {
	Title       Text   `json:"title"`
	URL         string `json:"url"`
	Source      Text   `json:"source"`
	Description Text   `json:"description"`
}
