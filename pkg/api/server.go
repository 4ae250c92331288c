// Package api exposes the detector over HTTP.
package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/detector"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/graph"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// History stores recent opportunities. Both the in-memory ring and the
// MySQL dao satisfy it.
type History interface {
	SaveOpportunities(opportunities []*types.Opportunity) error
	Recent(limit int) ([]*types.Opportunity, error)
}

// Server wires the detector and opportunity history into HTTP handlers.
type Server struct {
	det     *detector.Detector
	history History
	log     *logrus.Entry
}

// NewServer creates an API server. history may be nil, disabling the
// opportunities endpoint's backing data.
func NewServer(det *detector.Detector, history History, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Server{
		det:     det,
		history: history,
		log:     log.WithField("component", "api"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/detect", s.detect)
	api.GET("/opportunities", s.opportunities)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func (s *Server) detect(c *gin.Context) {
	var observations []types.Observation
	if err := c.ShouldBindJSON(&observations); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON array of observations"})
		return
	}

	opportunities, err := s.det.Detect(observations)
	if err != nil {
		var inputErr *graph.InputError
		if errors.Is(err, graph.ErrEmptyInput) || errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.WithError(err).Error("detection failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
		return
	}

	if s.history != nil && len(opportunities) > 0 {
		if err := s.history.SaveOpportunities(opportunities); err != nil {
			s.log.WithError(err).Warn("failed to record opportunities")
		}
	}

	if opportunities == nil {
		opportunities = []*types.Opportunity{}
	}
	c.JSON(http.StatusOK, gin.H{
		"opportunities": opportunities,
		"count":         len(opportunities),
	})
}

func (s *Server) opportunities(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"opportunities": []*types.Opportunity{}})
		return
	}

	limit := 100
	if v, ok := c.GetQuery("limit"); ok {
		if parsed, err := parsePositiveInt(v); err == nil {
			limit = parsed
		}
	}

	recent, err := s.history.Recent(limit)
	if err != nil {
		s.log.WithError(err).Error("history lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history lookup failed"})
		return
	}
	if recent == nil {
		recent = []*types.Opportunity{}
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": recent})
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a positive integer")
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

// MemoryHistory is a bounded in-memory History for deployments without a
// database.
type MemoryHistory struct {
	mu    sync.Mutex
	items []*types.Opportunity
	max   int
}

// NewMemoryHistory creates a ring holding at most max opportunities.
func NewMemoryHistory(max int) *MemoryHistory {
	if max <= 0 {
		max = 1000
	}
	return &MemoryHistory{max: max}
}

// SaveOpportunities appends to the ring, evicting oldest entries.
func (m *MemoryHistory) SaveOpportunities(opportunities []*types.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, opportunities...)
	if excess := len(m.items) - m.max; excess > 0 {
		m.items = m.items[excess:]
	}
	return nil
}

// Recent returns up to limit opportunities, newest first.
func (m *MemoryHistory) Recent(limit int) ([]*types.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.items) {
		limit = len(m.items)
	}
	out := make([]*types.Opportunity, 0, limit)
	for i := len(m.items) - 1; i >= len(m.items)-limit; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}
