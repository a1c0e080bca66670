package models

// Process-wide engine defaults. These are immutable constants,
// not command flags; callers override the per-table copies via Settings.
const (
	DefaultNoShowTimeoutSeconds = 120
	DefaultHoldMaxMinutes       = 15
	DefaultWinLimitCount        = 3
	MaxQueueSize                = 30
	MaxRecentNames              = 50
	KillerDefaultLives          = 3
	KillerMinPlayers            = 3
	KillerMaxPlayers            = 8
	ShortCodeLength             = 4
	PinLength                   = 4
	TournamentRaceToMin         = 1
	TournamentRaceToMax         = 13
	MinTournamentPlayers        = 3
	MaxTournamentPlayers        = 16

	MaxNameLength = 30
)
