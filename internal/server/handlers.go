package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	stderrors "madsag-engine/internal/common/errors"
	"madsag-engine/internal/leads"
	"madsag-engine/internal/sections"
	"madsag-engine/internal/session"
)

// statusByCode maps the engine's error taxonomy onto HTTP statuses for
// the browser layer. Upstream CMS failures surface as gateway statuses.
var statusByCode = map[stderrors.ErrorCode]int{
	stderrors.ErrCodeLeadValidationFailed:    http.StatusUnprocessableEntity,
	stderrors.ErrCodeBackendValidationFailed: http.StatusUnprocessableEntity,
	stderrors.ErrCodeSchemaViolation:         http.StatusUnprocessableEntity,
	stderrors.ErrCodePermissionDenied:        http.StatusBadGateway,
	stderrors.ErrCodeServerFault:             http.StatusBadGateway,
	stderrors.ErrCodeNetworkUnreachable:      http.StatusGatewayTimeout,
	stderrors.ErrCodeSubmissionInFlight:      http.StatusConflict,
	stderrors.ErrCodeModalNotOpen:            http.StatusConflict,
	stderrors.ErrCodeSessionNotFound:         http.StatusNotFound,
}

func (s *Server) renderError(c *gin.Context, err error) {
	if se, ok := err.(*stderrors.StandardError); ok {
		status, found := statusByCode[se.Code]
		if !found {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": se})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": err.Error()}})
}

// lookupSession resolves the :id parameter or writes the error response.
func (s *Server) lookupSession(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.sessions.Create(c.Request.Context())
	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSnapshot(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type observationsRequest struct {
	Observations []sections.Observation `json:"observations" binding:"required"`
}

func (s *Server) handleObservations(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var req observationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	sess.Tracker.Observe(req.Observations)
	active, observed := sess.Tracker.ActiveSection()
	c.JSON(http.StatusOK, gin.H{
		"activeSection": active,
		"observed":      observed,
	})
}

func (s *Server) handleCTA(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"topic": sess.CTATopic(),
		"link":  sess.CTALink(),
	})
}

func (s *Server) handleEnquire(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sess.Enquire(c.Request.Context())
	c.JSON(http.StatusOK, sess.Snapshot())
}

type openQuoteRequest struct {
	Service string `json:"service"`
	Plan    string `json:"plan"`
}

func (s *Server) handleOpenQuote(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	// An empty body opens a blank quote modal.
	var req openQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	sess.Modals.OpenQuote(c.Request.Context(), req.Service, req.Plan)
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleCloseQuote(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sess.Modals.CloseQuote(c.Request.Context())
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleUpdateQuoteRecord(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var record leads.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	if err := sess.Modals.UpdateQuoteRecord(&record); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSubmitQuote(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	if err := sess.Modals.SubmitQuote(c.Request.Context()); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type openPortfolioRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

func (s *Server) handleOpenPortfolio(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var req openPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	sess.Modals.OpenPortfolio(req.ItemID)
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleClosePortfolio(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sess.Modals.ClosePortfolio()
	c.JSON(http.StatusOK, sess.Snapshot())
}

type openBlogRequest struct {
	PostID string `json:"postId" binding:"required"`
}

func (s *Server) handleOpenBlog(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var req openBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	sess.Modals.OpenBlog(req.PostID)
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleCloseBlog(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sess.Modals.CloseBlog()
	c.JSON(http.StatusOK, sess.Snapshot())
}

type openServiceDetailRequest struct {
	ServiceID string `json:"serviceId" binding:"required"`
}

func (s *Server) handleOpenServiceDetail(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var req openServiceDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	sess.Modals.OpenServiceDetail(req.ServiceID)
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleCloseServiceDetail(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sess.Modals.CloseServiceDetail()
	c.JSON(http.StatusOK, sess.Snapshot())
}

type enquireFromDetailRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) handleEnquireFromDetail(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var req enquireFromDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	if err := sess.Modals.EnquireFromServiceDetail(req.Plan); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}
