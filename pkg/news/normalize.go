package news

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

// Text is a string field that some upstreams send as an object wrapping the
// value under "rendered". A plain string is kept as text with entities
// unescaped; a rendered value is HTML and has its markup stripped.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = ""
		return nil
	}

	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = Text(cleanText(html.UnescapeString(plain)))
		return nil
	}

	var wrapped struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}

	*t = Text(stripMarkup(wrapped.Rendered))
	return nil
}

func (t Text) String() string {
	return string(t)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripMarkup keeps the text nodes of an HTML fragment. Script and style
// bodies are dropped.
func stripMarkup(s string) string {
	var (
		b    strings.Builder
		skip bool
	)
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return cleanText(b.String())
		case html.TextToken:
			if !skip {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			skip = string(name) == "script" || string(name) == "style"
			b.WriteByte(' ')
		default:
			skip = false
			b.WriteByte(' ')
		}
	}
}

// NewArticle builds a candidate, defaulting source to label. ok is false when
// the title or URL is empty.
func NewArticle(title, url, source, description, label string) (Article, bool) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" || url == "" {
		return Article{}, false
	}

	source = strings.TrimSpace(source)
	if source == "" {
		source = label
	}

	return Article{
		Title:       title,
		URL:         url,
		Source:      source,
		Description: strings.TrimSpace(description),
	}, true
}

// decodeItems decodes each raw item on its own so one malformed entry does
// not discard the rest of the payload.
func decodeItems[T any](source string, raw []json.RawMessage) []T {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			slog.Debug("skipping malformed news item", "source", source, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}
