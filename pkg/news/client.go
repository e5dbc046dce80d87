package news

import "context"

// Article is a normalized candidate produced by a source. Description is only
// used for relevance matching and is dropped from responses.
type Article struct {
	Title       string
	URL         string
	Source      string
	Description string
}

// Source is one upstream news API. Sources that support searching use query
// upstream; listing sources ignore it and rely on the relevance filter.
type Source interface {
	Fetch(ctx context.Context, query string) ([]Article, error)
	Name() string
}

// Listing is implemented by sources that return the same feed for every
// query.
type Listing interface {
	IgnoresQuery() bool
}
