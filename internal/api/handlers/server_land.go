package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateLand handles POST /lands.
func (s *Server) CreateLand(c *gin.Context) {
	var req LandRequest
	if !bindJSON(c, &req) {
		return
	}
	land, err := s.registry.CreateLand(c.Request.Context(), req.input(), actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, land)
}

// GetLand handles GET /lands/{landNumber}.
func (s *Server) GetLand(c *gin.Context) {
	land, err := s.registry.GetLand(c.Request.Context(), c.Param("landNumber"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, land)
}

// ListLands handles GET /lands.
func (s *Server) ListLands(c *gin.Context) {
	lands, err := s.registry.ListLands(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listOf(lands))
}

// GetLandHistory handles GET /lands/{landNumber}/history.
func (s *Server) GetLandHistory(c *gin.Context) {
	deeds, err := s.registry.History(c.Request.Context(), c.Param("landNumber"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listOf(deeds))
}

// CreateOwner handles POST /owners.
func (s *Server) CreateOwner(c *gin.Context) {
	var req OwnerRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, err := s.registry.CreateOwner(c.Request.Context(), req.input(), actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, owner)
}

// GetOwner handles GET /owners/{nic}.
func (s *Server) GetOwner(c *gin.Context) {
	owner, err := s.registry.GetOwner(c.Request.Context(), c.Param("nic"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, owner)
}

// ListOwners handles GET /owners.
func (s *Server) ListOwners(c *gin.Context) {
	owners, err := s.registry.ListOwners(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listOf(owners))
}
