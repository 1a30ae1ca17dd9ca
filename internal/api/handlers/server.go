// Package handlers implements the registry's JSON API.
//
// Handlers bind and check the request, call one service or workflow method,
// and hand failures to middleware.ErrorHandler via c.Error.
//
// Import Path: landledger.io/registry/internal/api/handlers
package handlers

import (
	"github.com/gin-gonic/gin"

	"landledger.io/registry/internal/api/middleware"
	"landledger.io/registry/internal/repository"
	"landledger.io/registry/internal/service"
	"landledger.io/registry/internal/usecase"
)

// Server holds everything the API handlers call into.
type Server struct {
	registry  *service.RegistryService
	transfers *usecase.TransferWorkflow
	verifier  *usecase.IntegrityVerifier
	store     repository.Store
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Registry  *service.RegistryService
	Transfers *usecase.TransferWorkflow
	Verifier  *usecase.IntegrityVerifier
	Store     repository.Store
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		registry:  deps.Registry,
		transfers: deps.Transfers,
		verifier:  deps.Verifier,
		store:     deps.Store,
	}
}

// RegisterRoutes mounts every API route on rg.
func (s *Server) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health/live", s.GetLiveness)
	rg.GET("/health/ready", s.GetReadiness)

	lands := rg.Group("/lands")
	lands.GET("", s.ListLands)
	lands.POST("", s.CreateLand)
	lands.GET("/:landNumber", s.GetLand)
	lands.GET("/:landNumber/history", s.GetLandHistory)

	owners := rg.Group("/owners")
	owners.GET("", s.ListOwners)
	owners.POST("", s.CreateOwner)
	owners.GET("/:nic", s.GetOwner)

	deeds := rg.Group("/deeds")
	deeds.GET("", s.ListDeeds)
	deeds.POST("", s.CreateDeed)
	deeds.GET("/next-id", s.GetNextDeedID)
	deeds.GET("/search", s.SearchDeeds)
	deeds.GET("/:deedNumber", s.GetDeed)
	deeds.PUT("/:deedNumber", s.UpdateDeed)
	deeds.DELETE("/:deedNumber", s.DeleteDeed)
	deeds.POST("/:deedNumber/transfer", s.TransferDeed)
	deeds.GET("/:deedNumber/verify", s.VerifyDeed)

	ledger := rg.Group("/ledger")
	ledger.GET("", s.ListLedgerEntries)
	ledger.POST("/verify", s.VerifyLedger)
	ledger.GET("/:deedNumber", s.GetLedgerEntry)

	rg.GET("/audit-logs", s.ListAuditLogs)
	rg.GET("/stats", s.GetStats)
}

// actorFromCtx returns the authenticated actor, or "" so the audit logger
// falls back to its default label.
func actorFromCtx(c *gin.Context) string {
	return middleware.GetActor(c.Request.Context())
}

// listOf keeps empty results encoding as [] rather than null.
func listOf[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
