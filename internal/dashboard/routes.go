package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zulandar/roadmapper/internal/ledger"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// registerRoutes sets up all routes on the Gin router.
func registerRoutes(router *gin.Engine, store RunStore, gatherer prometheus.Gatherer) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Pages.
	router.GET("/", handleIndex(store))
	router.GET("/runs/:id", handleRunPage(store))

	// JSON.
	api := router.Group("/api")
	api.GET("/runs", handleListRuns(store))
	api.GET("/runs/:id", handleGetRun(store))

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

func handleIndex(store RunStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		runs, err := store.List(c.Request.Context(), defaultLimit)
		if err != nil {
			c.String(http.StatusInternalServerError, "error: %v", err)
			return
		}
		c.HTML(http.StatusOK, "runs.html", gin.H{"runs": runs})
	}
}

func handleRunPage(store RunStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, err := store.Get(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ledger.ErrNotFound) {
			c.String(http.StatusNotFound, "run %s not found", c.Param("id"))
			return
		}
		if err != nil {
			c.String(http.StatusInternalServerError, "error: %v", err)
			return
		}
		c.HTML(http.StatusOK, "run.html", gin.H{"run": run})
	}
}

func handleListRuns(store RunStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxLimit)
		}
		runs, err := store.List(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]runJSON, len(runs))
		for i, r := range runs {
			out[i] = toRunJSON(r)
		}
		c.JSON(http.StatusOK, gin.H{"runs": out})
	}
}

func handleGetRun(store RunStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, err := store.Get(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toRunJSON(*run))
	}
}
