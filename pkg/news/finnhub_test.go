package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cryptonews/pkg/upstream"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/go-playground/assert/v2"
)

func strPtr(s string) *string { return &s }

func TestFinnhubArticles(t *testing.T) {
	res := []finnhub.MarketNews{
		{
			Headline: strPtr("Bitcoin tops $65,000"),
			Url:      strPtr("https://finnhub.example/1"),
			Source:   strPtr("Bloomberg"),
			Summary:  strPtr("Prices rose overnight."),
		},
		{
			Headline: strPtr("Ether slips"),
			Url:      strPtr("https://finnhub.example/2"),
		},
		{
			Headline: nil,
			Url:      strPtr("https://finnhub.example/3"),
		},
	}

	articles := finnhubArticles(res, "FinnHub")

	assert.Equal(t, 2, len(articles))
	assert.Equal(t, Article{
		Title:       "Bitcoin tops $65,000",
		URL:         "https://finnhub.example/1",
		Source:      "Bloomberg",
		Description: "Prices rose overnight.",
	}, articles[0])
	assert.Equal(t, "FinnHub", articles[1].Source)
}

func TestFinnHubFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/news", r.URL.Path)
		assert.Equal(t, "crypto", r.URL.Query().Get("category"))
		assert.Equal(t, "fh-key", r.Header.Get("X-Finnhub-Token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"headline": "Crypto funds see inflows", "url": "https://finnhub.example/9", "source": "Reuters", "summary": ""}]`))
	}))
	defer srv.Close()

	httpClient := srv.Client()
	httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	articles, err := NewFinnHubClient("fh-key", httpClient).Fetch(context.Background(), "crypto")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, "Reuters", articles[0].Source)
}

func TestFinnHubFetchMissingKey(t *testing.T) {
	_, err := NewFinnHubClient("", nil).Fetch(context.Background(), "btc")

	assert.Equal(t, true, errors.Is(err, upstream.ErrMissingCredential))
}

func TestClassifySDKError(t *testing.T) {
	base := errors.New("boom")

	err := classifySDKError(nil, base)
	assert.Equal(t, true, errors.Is(err, upstream.ErrTransport))
	assert.Equal(t, true, errors.Is(err, base))

	err = classifySDKError(&http.Response{StatusCode: http.StatusUnauthorized}, base)
	assert.Equal(t, true, errors.Is(err, upstream.ErrStatus))

	err = classifySDKError(&http.Response{StatusCode: http.StatusOK}, base)
	assert.Equal(t, true, errors.Is(err, upstream.ErrDecode))
	assert.Equal(t, false, errors.Is(err, upstream.ErrTransport))
}
