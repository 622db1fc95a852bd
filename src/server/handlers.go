package server

import (
	"errors"
	"net/http"
	"strconv"

	"secmaster/src/analysis"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	latest := ""
	if s.lastRun != nil {
		latest = s.lastRun.RunID
	}
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.connections.Load(),
		"latest_run":  latest,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSymbol(c *gin.Context) {
	id := c.Param("id")
	sym, err := s.Store.GetSymbol(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if sym == nil {
		notFound(c, "unknown symbol "+id)
		return
	}
	c.JSON(http.StatusOK, sym)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getClassification(c *gin.Context) {
	id := c.Param("id")
	cl, ok, err := s.Store.SymbolClassification(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		notFound(c, "unknown symbol "+id)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// -----------------------------------------------------------------------------

// getBars returns the bars of a symbol, oldest first. ?limit=N keeps the
// last N.
func (s *APIServer) getBars(c *gin.Context) {
	id := c.Param("id")
	limit, err := positiveQuery(c, "limit", 0)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	if !s.symbolExists(c, id) {
		return
	}

	bars, err := s.Store.LoadBars(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	c.JSON(http.StatusOK, gin.H{"symbol": id, "count": len(bars), "bars": bars})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPerformance(c *gin.Context) {
	id := c.Param("id")
	days, err := positiveQuery(c, "days", 1)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	if !s.symbolExists(c, id) {
		return
	}

	bars, err := s.Store.LoadBars(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	perf, err := analysis.Performance(bars, days)
	if err != nil {
		if errors.Is(err, analysis.ErrNoBars) || errors.Is(err, analysis.ErrZeroPrice) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		badRequest(c, err.Error())
		return
	}
	last, _ := analysis.LatestClose(bars)

	c.JSON(http.StatusOK, gin.H{
		"symbol":      id,
		"days":        days,
		"close":       last,
		"performance": perf,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getLatestRun(c *gin.Context) {
	s.stateMutex.RLock()
	run := s.lastRun
	s.stateMutex.RUnlock()

	if run == nil {
		notFound(c, "no run recorded")
		return
	}
	c.JSON(http.StatusOK, run)
}

// -----------------------------------------------------------------------------

func (s *APIServer) symbolExists(c *gin.Context, id string) bool {
	sym, err := s.Store.GetSymbol(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return false
	}
	if sym == nil {
		notFound(c, "unknown symbol "+id)
		return false
	}
	return true
}

// -----------------------------------------------------------------------------

func positiveQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return n, nil
}
