package api

import (
	"github.com/avolkov/offerhub/internal/aggregator"
	"github.com/gin-gonic/gin"
)

// NewRouter exposes the aggregated search over HTTP. The only errors the
// aggregator surfaces are parameter validation errors, so handlers map
// every failure to 400.
func NewRouter(agg *aggregator.Aggregator) *gin.Engine {

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	searchHandler := newSearchHandler(agg)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/jobs", searchHandler.searchJobs)
		v1.GET("/offers", searchHandler.searchOffers)
	}

	return r
}
