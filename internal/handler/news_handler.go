package handler

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"cryptonews/internal/aggregator"
	"cryptonews/internal/model"

	"github.com/gin-gonic/gin"
)

const missingQueryMessage = "Missing query"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/index.html
var indexPage []byte

type Aggregator interface {
	Handle(ctx context.Context, query string) (model.AggregateResult, error)
	Sources() []string
}

type NewsHandler struct {
	aggregator Aggregator
}

func NewNewsHandler(aggregator Aggregator) *NewsHandler {
	return &NewsHandler{aggregator: aggregator}
}

// LoadTemplates installs the HTML templates used by GetNews on r.
func LoadTemplates(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(template.FuncMap{
		"signed": func(v float64) bool { return v >= 0 },
	}).ParseFS(templateFS, "templates/*.html")))
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	query := c.Query("query")
	html := wantsHTML(c)

	result, err := h.aggregator.Handle(c.Request.Context(), query)
	if errors.Is(err, aggregator.ErrMissingQuery) {
		slog.Info("rejected request without query", "request_id", RequestIDFrom(c))
		if html {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{"Message": missingQueryMessage})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: missingQueryMessage})
		return
	}
	if err != nil {
		slog.Error("error aggregating news", "request_id", RequestIDFrom(c), "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
		return
	}

	res := ToNewsResponse(result)
	slog.Info("news aggregated", "request_id", RequestIDFrom(c), "query", res.Query, "articles", len(res.News), "has_price", res.PriceInfo != nil)

	if html {
		c.HTML(http.StatusOK, "news.html", res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Sources: h.aggregator.Sources(),
	})
}

func (h *NewsHandler) GetIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func wantsHTML(c *gin.Context) bool {
	if format := c.Query("format"); format != "" {
		return format == "html"
	}
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}
