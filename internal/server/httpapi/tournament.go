package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chalkitup/models"
)

type startTournamentRequest struct {
	Format      models.TournamentFormat `json:"format" binding:"required"`
	PlayerNames []string                `json:"playerNames" binding:"required"`
	RaceTo      int                     `json:"raceTo" binding:"required"`
}

func (a *API) handleStartTournament(c *gin.Context) {
	var req startTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.StartTournament(c.Request.Context(), c.Param("id"), req.Format, req.PlayerNames, req.RaceTo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type reportTournamentFrameRequest struct {
	Winner string `json:"winner" binding:"required"`
}

func (a *API) handleReportTournamentFrame(c *gin.Context) {
	var req reportTournamentFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.ReportTournamentFrame(c.Request.Context(), c.Param("id"), req.Winner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleCancelTournament(c *gin.Context) {
	table, err := a.Coord.CancelTournament(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}
