// Package dashboard serves live training progress over HTTP. It consumes
// the core strictly through the reporting boundary: the trainer pushes
// episode reports and the server renders them as JSON.
package dashboard

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/plant"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
)

// defaultHistory bounds the number of reports kept in memory.
const defaultHistory = 500

// Server exposes the most recent episode reports of a training run.
type Server struct {
	addr   string
	server *http.Server

	lock    *sync.Mutex
	reports []types.EpisodeReport
	latest  *types.EpisodeReport
	history int
}

var _ types.Reporter = &Server{}

// NewServer builds a dashboard server listening on addr.
func NewServer(addr string) *Server {
	s := &Server{
		addr:    addr,
		lock:    new(sync.Mutex),
		reports: make([]types.EpisodeReport, 0, defaultHistory),
		history: defaultHistory,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/status", s.handleStatus)
	r.GET("/reports", s.handleReports)
	r.GET("/species", handleSpecies)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Report records an episode report. Called by the trainer between
// episodes; safe for concurrent readers on the HTTP side.
func (s *Server) Report(r types.EpisodeReport) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.reports) == s.history {
		copy(s.reports, s.reports[1:])
		s.reports = s.reports[:s.history-1]
	}
	s.reports = append(s.reports, r)
	s.latest = &r
}

// Start serves in the background until Stop.
func (s *Server) Start() {
	go func() {
		s.server.ListenAndServe()
	}()
}

// Stop shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleStatus(c *gin.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.latest == nil {
		c.JSON(http.StatusOK, gin.H{"episodes": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"episodes":    s.latest.Episode + 1,
		"species":     s.latest.Species,
		"avg_reward":  s.latest.AvgReward,
		"last_reward": s.latest.TotalReward,
		"final_state": s.latest.FinalState,
	})
}

func (s *Server) handleReports(c *gin.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]types.EpisodeReport, len(s.reports))
	copy(out, s.reports)
	c.JSON(http.StatusOK, out)
}

func handleSpecies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"species": plant.SpeciesNames()})
}
