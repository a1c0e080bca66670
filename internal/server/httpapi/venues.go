package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createVenueRequest struct {
	Name      string `json:"name" binding:"required"`
	OwnerID   string `json:"ownerId" binding:"required"`
	OwnerName string `json:"ownerName" binding:"required"`
}

func (a *API) handleCreateVenue(c *gin.Context) {
	var req createVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	venue, err := a.Coord.CreateVenue(c.Request.Context(), req.Name, req.OwnerID, req.OwnerName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, venue)
}

func (a *API) handleGetVenue(c *gin.Context) {
	venue, err := a.Coord.GetVenue(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, venue)
}

func (a *API) handleGetVenuesByOwner(c *gin.Context) {
	ownerID := c.Query("ownerId")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId query param is required"})
		return
	}
	venues, err := a.Coord.GetVenuesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, venues)
}

type updateVenueRequest struct {
	Name      string  `json:"name"`
	OwnerName string  `json:"ownerName"`
	LogoURL   *string `json:"logoUrl"`
}

func (a *API) handleUpdateVenue(c *gin.Context) {
	var req updateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	venue, err := a.Coord.UpdateVenue(c.Request.Context(), c.Param("id"), req.Name, req.OwnerName, req.LogoURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, venue)
}

func (a *API) handleDeleteVenue(c *gin.Context) {
	if err := a.Coord.DeleteVenue(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type claimTableRequest struct {
	ShortCode string `json:"shortCode" binding:"required"`
	Pin       string `json:"pin" binding:"required"`
}

func (a *API) handleClaimTable(c *gin.Context) {
	var req claimTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.ClaimTable(c.Request.Context(), c.Param("id"), req.ShortCode, req.Pin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}
