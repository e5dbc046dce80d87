package model

// PriceInfo is the latest USD quote for a ticker.
type PriceInfo struct {
	Price            float64
	Volume24h        float64
	PercentChange24h float64
}

// Article is the canonical news item. Title and URL are never empty.
type Article struct {
	Title  string
	URL    string
	Source string
}

// AggregateResult combines the price lookup and the matching articles for
// one query. PriceInfo is nil when the lookup failed for any reason.
type AggregateResult struct {
	Query     string
	PriceInfo *PriceInfo
	News      []Article
}
