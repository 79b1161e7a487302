package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/avolkov/offerhub/internal/aggregator"
	"github.com/avolkov/offerhub/internal/sources"
	"github.com/gin-gonic/gin"
)

type searchHandler struct {
	agg *aggregator.Aggregator
}

func newSearchHandler(agg *aggregator.Aggregator) *searchHandler {
	return &searchHandler{agg: agg}
}

func (h *searchHandler) searchJobs(c *gin.Context) {

	params := sources.JobParams{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		Country:  c.Query("country"),
		Page:     intQuery(c, "page"),
		Limit:    intQuery(c, "limit"),
		Sources:  listQuery(c, "sources"),
	}

	result, err := h.agg.SearchJobs(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *searchHandler) searchOffers(c *gin.Context) {

	params := sources.OfferParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     intQuery(c, "page"),
		Limit:    intQuery(c, "limit"),
		Sources:  listQuery(c, "sources"),
	}

	result, err := h.agg.SearchOffers(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// intQuery returns 0 for absent or malformed values, which the aggregator
// replaces with its defaults.
func intQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func listQuery(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
