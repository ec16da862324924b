// Package httpapi implements capability.Presenter and exposes it over
// HTTP, grounded on pkg/api/server.go's Server shape (services wired
// in, one setupRoutes call, Start/Shutdown lifecycle) but built on
// github.com/gin-gonic/gin — the HTTP framework the teacher's go.mod
// actually declares, where pkg/api/server.go's own echo/v5 import has
// no matching go.mod entry anywhere in the retrieval pack.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/execution"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/pipeline"
	"github.com/shun1423/sia/internal/presenter/wsfeed"
	"github.com/shun1423/sia/internal/problem"
	"github.com/shun1423/sia/internal/proposal"
)

// Server is the HTTP surface over a pipeline.Runtime. Unlike Runtime's
// own Decide/ComposeAgent methods, which take Proposal/Problem values
// directly (the Go analogue of run_demo's Streamlit session state),
// Server must resolve a proposal ID from a URL path segment — so it
// keeps its own cache of the latest RunCycle's proposals, populated by
// RunCycles and consumed by Approve/Reject/Snooze/Invoke.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	rt         *pipeline.Runtime
	feed       *wsfeed.Hub

	mu        sync.RWMutex
	proposals map[string]model.Proposal
}

var _ capability.Presenter = (*Server)(nil)

// NewServer wires a gin engine over rt. feed may be nil if no
// WebSocket audit stream is wanted.
func NewServer(rt *pipeline.Runtime, feed *wsfeed.Hub) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:    engine,
		rt:        rt,
		feed:      feed,
		proposals: map[string]model.Proposal{},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/cycles", s.runCycleHandler)
	v1.GET("/proposals", s.listProposalsHandler)
	v1.POST("/proposals/:id/approve", s.approveHandler)
	v1.POST("/proposals/:id/reject", s.rejectHandler)
	v1.POST("/proposals/:id/snooze", s.snoozeHandler)
	v1.POST("/agents/:id/invoke", s.invokeHandler)

	if s.feed != nil {
		v1.GET("/ws", func(c *gin.Context) { s.feed.HandleWS(c.Writer, c.Request) })
	}
}

// Start runs the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// StartWithListener runs the HTTP server on a pre-created listener,
// for tests that want a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type runCycleRequest struct {
	Domains []string `json:"domains"`
}

func (s *Server) runCycleHandler(c *gin.Context) {
	var req runCycleRequest
	_ = c.ShouldBindJSON(&req)

	report, err := s.rt.RunCycle(c.Request.Context(), req.Domains)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	for _, domain := range report.Domains {
		for _, p := range domain.Proposals {
			s.proposals[p.ID] = p
			if s.feed != nil {
				s.feed.Broadcast("proposal", p)
			}
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, report)
}

// Proposals implements capability.Presenter.
func (s *Server) Proposals(ctx context.Context) ([]model.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		out = append(out, p)
	}
	return out, nil
}

func (s *Server) listProposalsHandler(c *gin.Context) {
	props, _ := s.Proposals(c.Request.Context())
	c.JSON(http.StatusOK, props)
}

func (s *Server) lookupProposal(id string) (model.Proposal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proposals[id]
	return p, ok
}

func (s *Server) storeDecision(prop model.Proposal) {
	s.mu.Lock()
	s.proposals[prop.ID] = prop
	s.mu.Unlock()
	if s.feed != nil {
		s.feed.Broadcast("decision", prop)
	}
}

// Approve implements capability.Presenter.
func (s *Server) Approve(ctx context.Context, proposalID string) error {
	prop, ok := s.lookupProposal(proposalID)
	if !ok {
		return fmt.Errorf("httpapi: unknown proposal %q", proposalID)
	}
	if err := s.rt.Decide(&prop, &prop.Problem, proposal.DecisionApprove, "", problem.SnoozeDefault); err != nil {
		return err
	}
	s.storeDecision(prop)
	return nil
}

func (s *Server) approveHandler(c *gin.Context) {
	if err := s.Approve(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject implements capability.Presenter.
func (s *Server) Reject(ctx context.Context, proposalID string, reason string) error {
	prop, ok := s.lookupProposal(proposalID)
	if !ok {
		return fmt.Errorf("httpapi: unknown proposal %q", proposalID)
	}
	if err := s.rt.Decide(&prop, &prop.Problem, proposal.DecisionReject, reason, problem.SnoozeDefault); err != nil {
		return err
	}
	s.storeDecision(prop)
	return nil
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) rejectHandler(c *gin.Context) {
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)
	if err := s.Reject(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Snooze implements capability.Presenter. days is threaded straight
// through to problem.Snooze: 0 snoozes until now (immediately
// reversible by the next CheckSnoozed sweep, per the state machine's
// reversibility law), a positive count snoozes that many days, and
// problem.SnoozeDefault requests the usual 7-day snooze.
func (s *Server) Snooze(ctx context.Context, proposalID string, days int) error {
	prop, ok := s.lookupProposal(proposalID)
	if !ok {
		return fmt.Errorf("httpapi: unknown proposal %q", proposalID)
	}
	if err := s.rt.Decide(&prop, &prop.Problem, proposal.DecisionSnooze, "", days); err != nil {
		return err
	}
	s.storeDecision(prop)
	return nil
}

// snoozeRequest's Days has no JSON "omitted" state distinct from 0 —
// a request body without a "days" field snoozes until now, same as an
// explicit {"days": 0}. Callers wanting the default window must send
// it explicitly, e.g. {"days": 7}.
type snoozeRequest struct {
	Days int `json:"days"`
}

func (s *Server) snoozeHandler(c *gin.Context) {
	var req snoozeRequest
	_ = c.ShouldBindJSON(&req)
	if err := s.Snooze(c.Request.Context(), c.Param("id"), req.Days); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Invoke implements capability.Presenter.
func (s *Server) Invoke(ctx context.Context, agentConfigID string) (model.ExecutionResult, error) {
	result, err := s.rt.RunAgent(ctx, agentConfigID, execution.Input{}, nil)
	if err != nil {
		return model.ExecutionResult{}, err
	}
	if s.feed != nil {
		s.feed.Broadcast("execution", result)
	}
	return result, nil
}

func (s *Server) invokeHandler(c *gin.Context) {
	result, err := s.Invoke(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
