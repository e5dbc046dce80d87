package handler

import "cryptonews/internal/model"

type PriceInfoResponse struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
}

type ArticleResponse struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

type NewsResponse struct {
	Query     string             `json:"query"`
	PriceInfo *PriceInfoResponse `json:"price_info"`
	News      []ArticleResponse  `json:"news"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string   `json:"status"`
	Sources []string `json:"sources"`
}

func ToNewsResponse(r model.AggregateResult) NewsResponse {
	res := NewsResponse{
		Query: r.Query,
		News:  make([]ArticleResponse, 0, len(r.News)),
	}

	if r.PriceInfo != nil {
		res.PriceInfo = &PriceInfoResponse{
			Price:            r.PriceInfo.Price,
			Volume24h:        r.PriceInfo.Volume24h,
			PercentChange24h: r.PriceInfo.PercentChange24h,
		}
	}

	for _, a := range r.News {
		res.News = append(res.News, ArticleResponse{
			Title:  a.Title,
			URL:    a.URL,
			Source: a.Source,
		})
	}

	return res
}
