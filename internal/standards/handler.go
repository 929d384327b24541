package standards

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pmstandards/internal/auth"
	"pmstandards/internal/catalog"
	"pmstandards/internal/compare"
	"pmstandards/internal/dashboard"
	"pmstandards/internal/ingest"
	"pmstandards/internal/metrics"
	"pmstandards/internal/search"
	"pmstandards/internal/store"
)

type Handler struct {
	Catalog *catalog.Catalog
	Metrics *metrics.Metrics // optional
}

// NewEngine returns a gin engine that routes on the escaped path, so a
// topic such as "Risk/Opportunity" sent as Risk%2FOpportunity stays one
// :topic segment. Path values are still unescaped before handlers see them.
func NewEngine(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(middleware...)
	return r
}

func NewHandler(cat *catalog.Catalog, m *metrics.Metrics) *Handler {
	return &Handler{Catalog: cat, Metrics: m}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/standards", h.listStandards)     // GET /api/standards
	rg.GET("/comparison", h.listComparisons)  // GET /api/comparison
	rg.GET("/comparison/:topic", h.byTopic)   // GET /api/comparison/:topic
	rg.GET("/comparison/:topic/view", h.view) // GET /api/comparison/:topic/view
	rg.GET("/comparison-summary", h.summary)  // GET /api/comparison-summary
	rg.GET("/topics", h.topics)               // GET /api/topics
	rg.GET("/topics/resolve", h.resolveTopic) // GET /api/topics/resolve?q=
	rg.GET("/search", h.search)               // GET /api/search?q=&limit=
	rg.GET("/dashboard", h.dashboard)         // GET /api/dashboard
}

// RegisterAdminRoutes expects rg to be guarded by auth.AdminMiddleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/reload", h.reload) // POST /api/reload
}

func (h *Handler) listStandards(c *gin.Context) {
	items, err := h.Catalog.Store().Standards(c.Request.Context())
	if err != nil {
		h.fail(c, "list standards failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (h *Handler) listComparisons(c *gin.Context) {
	rows, err := h.Catalog.Store().Comparisons(c.Request.Context())
	if err != nil {
		h.fail(c, "list comparisons failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rows))
}

func (h *Handler) byTopic(c *gin.Context) {
	items, err := h.Catalog.Store().StandardsByTopic(c.Request.Context(), c.Param("topic"))
	if err != nil {
		h.fail(c, "topic lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (h *Handler) view(c *gin.Context) {
	topic := strings.TrimSpace(c.Param("topic"))
	rows, err := h.Catalog.Store().StandardsByTopic(c.Request.Context(), topic)
	if err != nil {
		h.fail(c, "topic lookup failed", err)
		return
	}
	// show the stored spelling rather than the one in the URL
	if len(rows) > 0 {
		topic = rows[0].Topic
	}
	c.JSON(http.StatusOK, compare.Build(topic, rows))
}

func (h *Handler) summary(c *gin.Context) {
	s, err := h.Catalog.Store().Summary(c.Request.Context())
	if err != nil {
		h.fail(c, "summary failed", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) topics(c *gin.Context) {
	topics, err := h.Catalog.Store().Topics(c.Request.Context())
	if err != nil {
		h.fail(c, "list topics failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(topics))
}

func (h *Handler) resolveTopic(c *gin.Context) {
	topics, err := h.Catalog.Store().Topics(c.Request.Context())
	if err != nil {
		h.fail(c, "list topics failed", err)
		return
	}
	topic, ok := compare.ResolveTopic(c.Query("q"), topics)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching topic"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic})
}

func (h *Handler) search(c *gin.Context) {
	limit := parseInt(c.Query("limit"), search.DefaultLimit)
	results := h.Catalog.Index().Search(c.Query("q"), limit)
	if h.Metrics != nil {
		h.Metrics.SearchQueries.Inc()
		h.Metrics.SearchResults.Observe(float64(len(results)))
	}
	c.JSON(http.StatusOK, nonNil(results))
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := h.Catalog.Store().Standards(ctx)
	if err != nil {
		h.fail(c, "dashboard failed", err)
		return
	}
	// comparisons are optional here
	rows, err := h.Catalog.Store().Comparisons(ctx)
	if err != nil && !errors.Is(err, store.ErrNotLoaded) {
		h.fail(c, "dashboard failed", err)
		return
	}
	c.JSON(http.StatusOK, dashboard.Compute(items, rows))
}

func (h *Handler) reload(c *gin.Context) {
	subject := ""
	if claims := auth.GetClaims(c); claims != nil {
		subject = claims.Subject
	}
	slog.Info("reload requested", "subject", subject, "remote", c.ClientIP())

	report, err := h.Catalog.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	if errors.Is(err, ingest.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "data not loaded"})
		return
	}
	slog.Error(msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
