package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chalkitup/engine"
	"chalkitup/models"
)

func (a *API) handleStartNextGame(c *gin.Context) {
	table, err := a.Coord.StartNextGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type registerGameRequest struct {
	HolderEntryID     string          `json:"holderEntryId" binding:"required"`
	ChallengerEntryID string          `json:"challengerEntryId" binding:"required"`
	Mode              models.GameMode `json:"mode" binding:"required"`
}

func (a *API) handleRegisterCurrentGame(c *gin.Context) {
	var req registerGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.RegisterCurrentGame(c.Request.Context(), c.Param("id"), req.HolderEntryID, req.ChallengerEntryID, req.Mode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type reportResultRequest struct {
	WinningSide models.Side `json:"winningSide" binding:"required"`
	WinnerNames []string    `json:"winnerNames" binding:"required"`
}

func (a *API) handleReportResult(c *gin.Context) {
	var req reportResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.ReportResult(c.Request.Context(), c.Param("id"), engine.Result{WinningSide: req.WinningSide, WinnerNames: req.WinnerNames})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type startKillerRequest struct {
	EntryIDs []string `json:"entryIds" binding:"required"`
}

func (a *API) handleStartKillerDirect(c *gin.Context) {
	var req startKillerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.StartKillerDirect(c.Request.Context(), c.Param("id"), req.EntryIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type eliminateKillerRequest struct {
	Name string `json:"name" binding:"required"`
}

func (a *API) handleEliminateKillerPlayer(c *gin.Context) {
	var req eliminateKillerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.EliminateKillerPlayer(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleFinishKillerGame(c *gin.Context) {
	table, err := a.Coord.FinishKillerGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleCancelGame(c *gin.Context) {
	table, err := a.Coord.CancelGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleDismissNoShow(c *gin.Context) {
	table, err := a.Coord.DismissNoShow(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type resolveNoShowsRequest struct {
	EntryIDs []string `json:"entryIds" binding:"required"`
}

func (a *API) handleResolveNoShows(c *gin.Context) {
	var req resolveNoShowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.ResolveNoShows(c.Request.Context(), c.Param("id"), req.EntryIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}
