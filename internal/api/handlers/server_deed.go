package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"landledger.io/registry/internal/pkg/logger"
)

// CreateDeed handles POST /deeds. The response carries the sealed ledger entry.
func (s *Server) CreateDeed(c *gin.Context) {
	var req DeedRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.createInput()
	if err != nil {
		_ = c.Error(err)
		return
	}
	sealed, err := s.registry.CreateDeed(c.Request.Context(), in, actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, sealed)
}

// GetNextDeedID handles GET /deeds/next-id.
func (s *Server) GetNextDeedID(c *gin.Context) {
	next, err := s.registry.NextDeedNumber(c.Request.Context(), c.Query("previousDeedId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deedNumber": next})
}

// GetDeed handles GET /deeds/{deedNumber}.
func (s *Server) GetDeed(c *gin.Context) {
	deed, err := s.registry.GetDeed(c.Request.Context(), c.Param("deedNumber"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, deed)
}

// ListDeeds handles GET /deeds.
func (s *Server) ListDeeds(c *gin.Context) {
	deeds, err := s.registry.ListDeeds(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listOf(deeds))
}

// SearchDeeds handles GET /deeds/search?q=.
func (s *Server) SearchDeeds(c *gin.Context) {
	deeds, err := s.registry.Search(c.Request.Context(), c.Query("q"), actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listOf(deeds))
}

// UpdateDeed handles PUT /deeds/{deedNumber}. The ledger entry is left as
// sealed, so hashed edits show up on the next verification.
func (s *Server) UpdateDeed(c *gin.Context) {
	var req DeedRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.updateInput()
	if err != nil {
		_ = c.Error(err)
		return
	}
	deed, err := s.registry.UpdateDeed(c.Request.Context(), c.Param("deedNumber"), in, actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, deed)
}

// DeleteDeed handles DELETE /deeds/{deedNumber}.
func (s *Server) DeleteDeed(c *gin.Context) {
	deed, err := s.registry.DeleteDeed(c.Request.Context(), c.Param("deedNumber"), actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deed.DeedNumber})
}

// TransferDeed handles POST /deeds/{deedNumber}/transfer and returns the new deed.
func (s *Server) TransferDeed(c *gin.Context) {
	var req DeedRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.transferInput()
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()
	out, err := s.transfers.Transfer(ctx, c.Param("deedNumber"), in, actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	logger.FromContext(ctx).Debug("Transfer served",
		zap.String("old_deed_number", out.Previous.DeedNumber),
		zap.String("new_deed_number", out.Deed.DeedNumber),
	)
	c.JSON(http.StatusCreated, out.Deed)
}

// VerifyDeed handles GET /deeds/{deedNumber}/verify.
func (s *Server) VerifyDeed(c *gin.Context) {
	result, err := s.verifier.Verify(c.Request.Context(), c.Param("deedNumber"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
