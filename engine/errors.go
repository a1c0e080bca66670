package engine

import "errors"

// Sentinel errors raised by the pure engine functions, classified into
// the error kinds the coordinator surfaces. Grouped by the operation
// family that raises them.
var (
	// Queue engine errors.
	ErrQueueFull               = errors.New("queue is full")
	ErrInvalidInput            = errors.New("invalid input")
	ErrDuplicatePlayer         = errors.New("player already in queue")
	ErrPrivateSessionForbidden = errors.New("name not allowed while table is private")

	// Game engine errors.
	ErrGameInProgress            = errors.New("a game is already in progress")
	ErrNoActiveGame              = errors.New("no active game")
	ErrInsufficientPlayers       = errors.New("not enough waiting players")
	ErrInvalidDoublesComposition = errors.New("doubles requires exactly two names per side")

	// Tournament engine errors.
	ErrInvalidRaceTo           = errors.New("raceTo out of range")
	ErrTooFewTournamentPlayers = errors.New("too few players for a tournament")
	ErrTooManyTournamentPlayers = errors.New("too many players for a tournament")
	ErrTournamentNotInGroupStage = errors.New("tournament is not in its group stage")
	ErrMatchNotFound             = errors.New("tournament match not found")
	ErrMatchAlreadyDecided       = errors.New("tournament match already has a winner")

	// Identity / coordinator errors.
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrShortCodeCollision  = errors.New("short code collision")
	ErrAuthFailed          = errors.New("authentication failed")
	ErrVenueNotEmpty       = errors.New("venue still owns tables")
	ErrUnavailable         = errors.New("storage unavailable")
)
