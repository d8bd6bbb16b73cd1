// Package server exposes a small read-only status API over the sync worker:
// health, last cycle outcome and recent report writes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/service/summary"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/state"
)

// Server is the status HTTP server.
type Server struct {
	router  *gin.Engine
	svc     *summary.Service
	history *state.History
	started time.Time
}

func NewServer(svc *summary.Service, history *state.History) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		svc:     svc,
		history: history,
		started: time.Now(),
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	api := s.router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/history", s.handleHistory)
	}
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleStatus(c *gin.Context) {
	resp := gin.H{
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"lastCycle": s.svc.LastCycle(),
	}

	if s.history != nil {
		if last, err := s.history.LastPerReport(); err == nil {
			resp["reports"] = last
		} else {
			resp["reportsError"] = err.Error()
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"entries": []state.HistoryEntry{}})
		return
	}

	entries, err := s.history.Recent(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
