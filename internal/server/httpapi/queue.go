package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chalkitup/engine"
	"chalkitup/models"
)

type addToQueueRequest struct {
	PlayerNames []string          `json:"playerNames" binding:"required"`
	GameMode    models.GameMode   `json:"gameMode" binding:"required"`
	UserIDs     map[string]string `json:"userIds"`
}

func (a *API) handleAddToQueue(c *gin.Context) {
	var req addToQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	payload := engine.AddToQueuePayload{PlayerNames: req.PlayerNames, GameMode: req.GameMode, UserIDs: req.UserIDs}
	table, err := a.Coord.AddToQueue(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleRemoveFromQueue(c *gin.Context) {
	table, err := a.Coord.RemoveFromQueue(c.Request.Context(), c.Param("id"), c.Param("entryId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type reorderQueueRequest struct {
	NewIndex int `json:"newIndex"`
}

func (a *API) handleReorderQueue(c *gin.Context) {
	var req reorderQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.ReorderQueue(c.Request.Context(), c.Param("id"), c.Param("entryId"), req.NewIndex)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleHoldPosition(c *gin.Context) {
	table, err := a.Coord.HoldPosition(c.Request.Context(), c.Param("id"), c.Param("entryId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleUnholdPosition(c *gin.Context) {
	table, err := a.Coord.UnholdPosition(c.Request.Context(), c.Param("id"), c.Param("entryId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type claimQueueSpotRequest struct {
	PlayerName string `json:"playerName" binding:"required"`
	UserID     string `json:"userId" binding:"required"`
}

func (a *API) handleClaimQueueSpot(c *gin.Context) {
	var req claimQueueSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.ClaimQueueSpot(c.Request.Context(), c.Param("id"), c.Param("entryId"), req.PlayerName, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}
