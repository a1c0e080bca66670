package models

// GameHistoryRecord is an append-only record of one completed game,
// written post-commit by the coordinator as a side effect of ReportResult,
// FinishKillerGame or ReportTournamentFrame.
type GameHistoryRecord struct {
	ID              string       `json:"id"`
	TableID         string       `json:"tableId"`
	Mode            GameMode     `json:"mode"`
	Players         []GamePlayer `json:"players"`
	Winner          string       `json:"winner"`
	WinnerSide      Side         `json:"winnerSide"`
	StartedAt       int64        `json:"startedAt"`
	EndedAt         int64        `json:"endedAt"`
	DurationMs      int64        `json:"duration"`
	ConsecutiveWins int          `json:"consecutiveWins"`
	KillerState     *KillerState     `json:"killerState,omitempty"`
	TournamentState *TournamentState `json:"tournamentState,omitempty"`
	PlayerUIDs      map[string]string `json:"playerUids,omitempty"`
	PlayerUIDList   []string          `json:"playerUidList,omitempty"`
	VenueName       string            `json:"venueName"`
}

// ModeStats is a per-game-mode breakdown of a user's lifetime record.
type ModeStats struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	GamesPlayed int `json:"gamesPlayed"`
}

// LifetimeStats is the cross-table, cross-session record attached to a
// known user id. Updated in a single batched write after a game commits.
type LifetimeStats struct {
	GamesPlayed   int                  `json:"gamesPlayed"`
	Wins          int                  `json:"wins"`
	Losses        int                  `json:"losses"`
	CurrentStreak int                  `json:"currentStreak"`
	BestStreak    int                  `json:"bestStreak"`
	LastGameAt    int64                `json:"lastGameAt"`
	ByMode        map[GameMode]ModeStats `json:"byMode"`
}

// LifetimeStatsUpdate is one user's delta to apply in a BatchUpdateUsers call.
type LifetimeStatsUpdate struct {
	UserID string
	Mode   GameMode
	Won    bool
	At     int64
}

// Venue groups tables under a single owner.
type Venue struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	OwnerID   string   `json:"ownerId"`
	OwnerName string   `json:"ownerName"`
	CreatedAt int64    `json:"createdAt"`
	TableIDs  []string `json:"tableIds"`
	LogoURL   *string  `json:"logoUrl,omitempty"`
}
