package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "landledger.io/registry/internal/pkg/errors"
)

// DefaultAuditLimit bounds GET /audit-logs when no limit is given.
const DefaultAuditLimit = 100

// ListLedgerEntries handles GET /ledger.
func (s *Server) ListLedgerEntries(c *gin.Context) {
	entries, err := s.registry.LedgerEntries(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listOf(entries))
}

// GetLedgerEntry handles GET /ledger/{deedNumber}.
func (s *Server) GetLedgerEntry(c *gin.Context) {
	entry, err := s.registry.LedgerEntry(c.Request.Context(), c.Param("deedNumber"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// VerifyLedger handles POST /ledger/verify with a synchronous sweep.
func (s *Server) VerifyLedger(c *gin.Context) {
	report, err := s.verifier.VerifyAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListAuditLogs handles GET /audit-logs?limit=.
func (s *Server) ListAuditLogs(c *gin.Context) {
	limit := DefaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	entries, err := s.registry.ListAuditLogs(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listOf(entries))
}

// GetStats handles GET /stats.
func (s *Server) GetStats(c *gin.Context) {
	stats, err := s.registry.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
