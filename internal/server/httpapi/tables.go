package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chalkitup/engine"
	"chalkitup/models"
)

type createTableRequest struct {
	VenueName string  `json:"venueName" binding:"required"`
	TableName string  `json:"tableName" binding:"required"`
	Pin       string  `json:"pin" binding:"required"`
	VenueID   *string `json:"venueId"`
}

func (a *API) handleCreateTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.CreateTable(c.Request.Context(), req.VenueName, req.TableName, req.Pin, req.VenueID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (a *API) handleGetTable(c *gin.Context) {
	table, err := a.Coord.GetTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleGetTableByCode(c *gin.Context) {
	table, err := a.Coord.GetTableByShortCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleDeleteTable(c *gin.Context) {
	if err := a.Coord.DeleteTable(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateSettingsRequest struct {
	TableName                 *string            `json:"tableName"`
	NoShowTimeoutSeconds      *int               `json:"noShowTimeoutSeconds"`
	HoldMaxMinutes            *int               `json:"holdMaxMinutes"`
	WinLimitEnabled           *bool              `json:"winLimitEnabled"`
	WinLimitCount             *int               `json:"winLimitCount"`
	AttractModeTimeoutMinutes *int               `json:"attractModeTimeoutMinutes"`
	SoundEnabled              *bool              `json:"soundEnabled"`
	SoundVolume               *float64           `json:"soundVolume"`
	Theme                     *models.Theme      `json:"theme"`
	HouseRules                *houseRulesRequest `json:"houseRules"`
}

type houseRulesRequest struct {
	BreakRule     *models.BreakRule `json:"breakRule"`
	FoulRule      *models.FoulRule  `json:"foulRule"`
	BlackSpotRule *bool             `json:"blackSpotRule"`
}

func (a *API) handleUpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	patch := engine.SettingsPatch{
		TableName:                 req.TableName,
		NoShowTimeoutSeconds:      req.NoShowTimeoutSeconds,
		HoldMaxMinutes:            req.HoldMaxMinutes,
		WinLimitEnabled:           req.WinLimitEnabled,
		WinLimitCount:             req.WinLimitCount,
		AttractModeTimeoutMinutes: req.AttractModeTimeoutMinutes,
		SoundEnabled:              req.SoundEnabled,
		SoundVolume:               req.SoundVolume,
		Theme:                     req.Theme,
	}
	if req.HouseRules != nil {
		patch.HouseRules = &engine.HouseRulesPatch{
			BreakRule:     req.HouseRules.BreakRule,
			FoulRule:      req.HouseRules.FoulRule,
			BlackSpotRule: req.HouseRules.BlackSpotRule,
		}
	}

	table, err := a.Coord.UpdateSettings(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleResetTable(c *gin.Context) {
	table, err := a.Coord.ResetTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type togglePrivateRequest struct {
	Enable       bool     `json:"enable"`
	AllowedNames []string `json:"allowedNames"`
}

func (a *API) handleTogglePrivateMode(c *gin.Context) {
	var req togglePrivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	table, err := a.Coord.TogglePrivateMode(c.Request.Context(), c.Param("id"), req.Enable, req.AllowedNames)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (a *API) handleHealth(c *gin.Context) {
	if err := a.Coord.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
