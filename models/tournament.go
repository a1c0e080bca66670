package models

// TournamentFormat is the bracket shape a tournament runs under.
type TournamentFormat string

const (
	FormatKnockout      TournamentFormat = "knockout"
	FormatRoundRobin    TournamentFormat = "round_robin"
	FormatGroupKnockout TournamentFormat = "group_knockout"
)

// TournamentStage is the coarse phase a tournament is in.
type TournamentStage string

const (
	StageGroup    TournamentStage = "group"
	StageKnockout TournamentStage = "knockout"
	StageComplete TournamentStage = "complete"
)

// FeedSlot identifies which half of a downstream match a completed match's
// winner is written into.
type FeedSlot int

const (
	FeedSlotNone FeedSlot = 0
	FeedSlot1    FeedSlot = 1
	FeedSlot2    FeedSlot = 2
)

// Frame is a single rack within a race-to-N tournament match.
type Frame struct {
	Winner     string `json:"winner"`
	ReportedAt int64  `json:"reportedAt"`
}

// TournamentMatch is one node of the bracket or one round-robin pairing.
type TournamentMatch struct {
	ID         string  `json:"id"`
	Player1    *string `json:"player1"`
	Player2    *string `json:"player2"`
	IsBye      bool    `json:"isBye"`
	Frames     []Frame `json:"frames"`
	Winner     *string `json:"winner"`
	RaceTo     int     `json:"raceTo"`
	Stage      TournamentStage `json:"stage"`
	GroupIndex int     `json:"groupIndex"`
	RoundIndex int     `json:"roundIndex"`
	MatchIndex int     `json:"matchIndex"`
	FeedsInto  *string `json:"feedsInto"`
	FeedsSlot  FeedSlot `json:"feedsSlot"`
}

// Clone returns a deep copy of the match.
func (m TournamentMatch) Clone() TournamentMatch {
	c := m
	c.Frames = append([]Frame(nil), m.Frames...)
	if m.Player1 != nil {
		v := *m.Player1
		c.Player1 = &v
	}
	if m.Player2 != nil {
		v := *m.Player2
		c.Player2 = &v
	}
	if m.Winner != nil {
		v := *m.Winner
		c.Winner = &v
	}
	if m.FeedsInto != nil {
		v := *m.FeedsInto
		c.FeedsInto = &v
	}
	return c
}

// GroupStanding is one player's computed position within a round-robin group.
type GroupStanding struct {
	Name       string `json:"name"`
	Played     int    `json:"played"`
	Won        int    `json:"won"`
	Lost       int    `json:"lost"`
	FramesWon  int    `json:"framesWon"`
	FramesLost int    `json:"framesLost"`
	Points     int    `json:"points"`
}

// TournamentGroup is one round-robin pool feeding a knockout stage.
type TournamentGroup struct {
	Index     int      `json:"index"`
	Players   []string `json:"players"`
	MatchIDs  []string `json:"matchIds"`
}

// TournamentState is the full bracket/group schedule and progress for a
// tournament-mode current game.
type TournamentState struct {
	Format             TournamentFormat  `json:"format"`
	RaceTo             int               `json:"raceTo"`
	PlayerNames        []string          `json:"playerNames"`
	Matches            []TournamentMatch `json:"matches"`
	Groups             []TournamentGroup `json:"groups,omitempty"`
	CurrentMatchID     string            `json:"currentMatchId"`
	Stage              TournamentStage   `json:"stage"`
	Winner             string            `json:"winner"`
	CompletedMatchCount int              `json:"completedMatchCount"`
	TotalMatchCount     int              `json:"totalMatchCount"`
}

// Clone returns a deep copy of the tournament state.
func (s TournamentState) Clone() TournamentState {
	c := s
	c.PlayerNames = append([]string(nil), s.PlayerNames...)
	c.Matches = make([]TournamentMatch, len(s.Matches))
	for i, m := range s.Matches {
		c.Matches[i] = m.Clone()
	}
	c.Groups = make([]TournamentGroup, len(s.Groups))
	for i, g := range s.Groups {
		gc := g
		gc.Players = append([]string(nil), g.Players...)
		gc.MatchIDs = append([]string(nil), g.MatchIDs...)
		c.Groups[i] = gc
	}
	return c
}

// MatchByID returns a pointer into state.Matches, or nil.
func (s *TournamentState) MatchByID(id string) *TournamentMatch {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return &s.Matches[i]
		}
	}
	return nil
}
