package price

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cryptonews/internal/model"
	"cryptonews/pkg/upstream"
)

const DefaultCoinMarketCapURL = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest"

var ErrSymbolNotFound = errors.New("symbol not found in quote response")

type Client interface {
	Quote(ctx context.Context, symbol string) (*model.PriceInfo, error)
	Name() string
}

type CoinMarketCapClient struct {
	apiKey   string
	endpoint string
	http     *upstream.Client
}

func NewCoinMarketCapClient(apiKey, endpoint string, http *upstream.Client) *CoinMarketCapClient {
	if endpoint == "" {
		endpoint = DefaultCoinMarketCapURL
	}
	if http == nil {
		http = upstream.NewClient(nil)
	}
	return &CoinMarketCapClient{apiKey: apiKey, endpoint: endpoint, http: http}
}

func (c *CoinMarketCapClient) Name() string {
	return "CoinMarketCap"
}

// Quote returns the USD quote for symbol. The symbol is uppercased before the
// request and before the lookup in the keyed response.
func (c *CoinMarketCapClient) Quote(ctx context.Context, symbol string) (*model.PriceInfo, error) {
	if err := upstream.RequireCredential("CMC_API_KEY", c.apiKey); err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var raw cmcResponse
	err := c.http.GetJSON(ctx, upstream.Request{
		URL:     c.endpoint + "?symbol=" + url.QueryEscape(symbol),
		Headers: map[string]string{"X-CMC_PRO_API_KEY": c.apiKey},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("coinmarketcap quote %s: %w", symbol, err)
	}

	coin, ok := raw.Data[symbol]
	if !ok || coin.Quote.USD == nil {
		return nil, fmt.Errorf("coinmarketcap quote %s: %w", symbol, ErrSymbolNotFound)
	}

	return &model.PriceInfo{
		Price:            coin.Quote.USD.Price,
		Volume24h:        coin.Quote.USD.Volume24h,
		PercentChange24h: coin.Quote.USD.PercentChange24h,
	}, nil
}

type cmcResponse struct {
	Data map[string]cmcCoin `json:"data"`
}

type cmcCoin struct {
	Symbol string   `json:"symbol"`
	Quote  cmcQuote `json:"quote"`
}

type cmcQuote struct {
	USD *cmcUSD `json:"USD"`
}

type cmcUSD struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
}
