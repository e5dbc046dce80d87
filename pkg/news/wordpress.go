package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"cryptonews/pkg/upstream"
)

// WordPressClient searches the posts of any site exposing the WordPress REST
// API. Titles and excerpts arrive as {"rendered": "..."} objects.
type WordPressClient struct {
	baseURL string
	site    string
	limit   int
	http    *upstream.Client
}

func NewWordPressClient(baseURL string, limit int, http *upstream.Client) *WordPressClient {
	if http == nil {
		http = upstream.NewClient(nil)
	}
	if limit <= 0 {
		limit = 20
	}

	baseURL = strings.TrimRight(baseURL, "/")
	site := ""
	if parsed, err := url.Parse(baseURL); err == nil {
		site = strings.TrimPrefix(parsed.Hostname(), "www.")
	}

	return &WordPressClient{baseURL: baseURL, site: site, limit: limit, http: http}
}

func (c *WordPressClient) Name() string {
	return "WordPress"
}

func (c *WordPressClient) Fetch(ctx context.Context, query string) ([]Article, error) {
	if err := upstream.RequireCredential("WORDPRESS_BASE_URL", c.baseURL); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", strconv.Itoa(c.limit))
	params.Set("_fields", "title,link,excerpt")

	var raw []json.RawMessage
	err := c.http.GetJSON(ctx, upstream.Request{URL: c.baseURL + "/wp-json/wp/v2/posts?" + params.Encode()}, &raw)
	if err != nil {
		return nil, fmt.Errorf("wordpress fetch: %w", err)
	}

	items := decodeItems[wpPost](c.Name(), raw)
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		a, ok := NewArticle(item.Title.String(), item.Link, c.site, item.Excerpt.String(), c.Name())
		if !ok {
			slog.Debug("skipping incomplete news item", "source", c.Name(), "url", item.Link)
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

type wpPost struct {
	Title   Text   `json:"title"`
	Link    string `json:"link"`
	Excerpt Text   `json:"excerpt"`
}
