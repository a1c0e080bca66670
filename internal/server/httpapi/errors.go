package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chalkitup/engine"
)

// writeError maps an engine/coordinator error to the taxonomy-appropriate
// HTTP status, using a flat {"error": "..."} JSON envelope.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrConflict), errors.Is(err, engine.ErrShortCodeCollision), errors.Is(err, engine.ErrVenueNotEmpty):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, engine.ErrInvalidDoublesComposition),
		errors.Is(err, engine.ErrInvalidRaceTo),
		errors.Is(err, engine.ErrTooFewTournamentPlayers),
		errors.Is(err, engine.ErrTooManyTournamentPlayers):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrDuplicatePlayer), errors.Is(err, engine.ErrQueueFull):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrGameInProgress), errors.Is(err, engine.ErrNoActiveGame), errors.Is(err, engine.ErrInsufficientPlayers):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrAuthFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, engine.ErrPrivateSessionForbidden):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
