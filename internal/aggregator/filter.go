package aggregator

import (
	"fmt"
	"strings"

	"cryptonews/pkg/news"
)

type FilterMode string

const (
	FilterTitle            FilterMode = "title"
	FilterTitleDescription FilterMode = "title_description"
)

func ParseFilterMode(s string) (FilterMode, error) {
	switch mode := FilterMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case FilterTitle, FilterTitleDescription:
		return mode, nil
	case "":
		return FilterTitleDescription, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
}

// Matches reports whether the query occurs, ignoring case, in the article
// title or, in FilterTitleDescription mode, its description. An empty query
// matches nothing.
func Matches(a news.Article, query string, mode FilterMode) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}

	if strings.Contains(strings.ToLower(a.Title), q) {
		return true
	}

	return mode == FilterTitleDescription && strings.Contains(strings.ToLower(a.Description), q)
}
