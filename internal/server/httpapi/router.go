// Package httpapi exposes the Coordinator's command API over HTTP using
// gin: each route is a thin function that binds JSON, calls one
// coordinator method,
// and renders the result or error.
package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chalkitup/internal/coordinator"
)

// API bundles the Coordinator every handler needs.
type API struct {
	Coord *coordinator.Coordinator
}

// NewRouter builds the gin engine with CORS configured for allowedOrigins.
func NewRouter(coord *coordinator.Coordinator, allowedOrigins []string) *gin.Engine {
	api := &API{Coord: coord}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	tables := r.Group("/tables")
	{
		tables.POST("", api.handleCreateTable)
		tables.GET("/by-code/:code", api.handleGetTableByCode)
		tables.GET("/:id", api.handleGetTable)
		tables.DELETE("/:id", api.handleDeleteTable)
		tables.PATCH("/:id/settings", api.handleUpdateSettings)
		tables.POST("/:id/reset", api.handleResetTable)
		tables.POST("/:id/private", api.handleTogglePrivateMode)

		tables.POST("/:id/queue", api.handleAddToQueue)
		tables.DELETE("/:id/queue/:entryId", api.handleRemoveFromQueue)
		tables.POST("/:id/queue/:entryId/reorder", api.handleReorderQueue)
		tables.POST("/:id/queue/:entryId/hold", api.handleHoldPosition)
		tables.POST("/:id/queue/:entryId/unhold", api.handleUnholdPosition)
		tables.POST("/:id/queue/:entryId/claim", api.handleClaimQueueSpot)

		tables.POST("/:id/game/start", api.handleStartNextGame)
		tables.POST("/:id/game/register", api.handleRegisterCurrentGame)
		tables.POST("/:id/game/result", api.handleReportResult)
		tables.POST("/:id/game/killer/start", api.handleStartKillerDirect)
		tables.POST("/:id/game/killer/eliminate", api.handleEliminateKillerPlayer)
		tables.POST("/:id/game/killer/finish", api.handleFinishKillerGame)
		tables.POST("/:id/game/cancel", api.handleCancelGame)
		tables.POST("/:id/game/no-show/dismiss", api.handleDismissNoShow)
		tables.POST("/:id/game/no-show/resolve", api.handleResolveNoShows)

		tables.POST("/:id/tournament/start", api.handleStartTournament)
		tables.POST("/:id/tournament/frame", api.handleReportTournamentFrame)
		tables.POST("/:id/tournament/cancel", api.handleCancelTournament)
	}

	venues := r.Group("/venues")
	{
		venues.POST("", api.handleCreateVenue)
		venues.GET("/:id", api.handleGetVenue)
		venues.GET("", api.handleGetVenuesByOwner)
		venues.PATCH("/:id", api.handleUpdateVenue)
		venues.DELETE("/:id", api.handleDeleteVenue)
		venues.POST("/:id/claim", api.handleClaimTable)
	}

	r.GET("/healthz", api.handleHealth)

	return r
}
