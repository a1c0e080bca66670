package engine

import (
	"errors"
	"testing"

	"chalkitup/models"
)

func TestNewTournament_RejectsTooFewPlayers(t *testing.T) {
	_, err := NewTournament(models.FormatKnockout, []string{"Alice", "Bob"}, 3, 1000)
	if !errors.Is(err, ErrTooFewTournamentPlayers) {
		t.Fatalf("expected ErrTooFewTournamentPlayers, got %v", err)
	}
}

func TestNewTournament_RejectsInvalidRaceTo(t *testing.T) {
	_, err := NewTournament(models.FormatKnockout, []string{"Alice", "Bob", "Carol"}, 0, 1000)
	if !errors.Is(err, ErrInvalidRaceTo) {
		t.Fatalf("expected ErrInvalidRaceTo, got %v", err)
	}
}

func TestNewTournament_Knockout4PlayersHasNoByes(t *testing.T) {
	state, err := NewTournament(models.FormatKnockout, []string{"Alice", "Bob", "Carol", "Dave"}, 3, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Matches) != 3 {
		t.Fatalf("expected 3 matches in a 4-player knockout bracket, got %d", len(state.Matches))
	}
	if state.CurrentMatchID == "" {
		t.Fatalf("expected a current match to be selected")
	}
}

func TestNewTournament_Knockout3PlayersGivesTopSeedABye(t *testing.T) {
	state, err := NewTournament(models.FormatKnockout, []string{"Alice", "Bob", "Carol"}, 3, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byeCount := 0
	for _, m := range state.Matches {
		if m.IsBye {
			byeCount++
		}
	}
	if byeCount == 0 {
		t.Fatalf("expected at least one bye in an odd-seeded bracket")
	}
}

func TestReportTournamentFrame_PlaysOutKnockoutToCompletion(t *testing.T) {
	state, err := NewTournament(models.FormatKnockout, []string{"Alice", "Bob", "Carol", "Dave"}, 1, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	for i := 0; i < 10 && state.Stage != models.StageComplete; i++ {
		match := state.MatchByID(state.CurrentMatchID)
		if match == nil {
			t.Fatalf("no current match at step %d", i)
		}
		winner := *match.Player1
		state, err = ReportTournamentFrame(state, winner, int64(2000+i))
		if err != nil {
			t.Fatalf("unexpected error reporting frame: %v", err)
		}
	}

	if state.Stage != models.StageComplete {
		t.Fatalf("expected tournament to complete, stuck at stage %v", state.Stage)
	}
	if state.Winner == "" {
		t.Fatalf("expected a winner recorded on completion")
	}
}

func TestReportTournamentFrame_RejectsUnknownMatch(t *testing.T) {
	state, err := NewTournament(models.FormatKnockout, []string{"Alice", "Bob", "Carol", "Dave"}, 3, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	state.CurrentMatchID = "does-not-exist"

	_, err = ReportTournamentFrame(state, "Alice", 2000)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestReportTournamentFrame_DoesNotMutateInputState(t *testing.T) {
	state, err := NewTournament(models.FormatKnockout, []string{"Alice", "Bob", "Carol", "Dave"}, 1, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	match := state.MatchByID(state.CurrentMatchID)
	winner := *match.Player1

	_, err = ReportTournamentFrame(state, winner, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	original := state.MatchByID(state.CurrentMatchID)
	if original.Winner != nil {
		t.Fatalf("expected the original state left untouched by ReportTournamentFrame")
	}
}

func TestReportTournamentFrame_RoundRobinCompletesByStandings(t *testing.T) {
	state, err := NewTournament(models.FormatRoundRobin, []string{"Alice", "Bob", "Carol"}, 1, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	for i := 0; i < 20 && state.Stage != models.StageComplete; i++ {
		match := state.MatchByID(state.CurrentMatchID)
		if match == nil {
			t.Fatalf("no current match at step %d (completed %d/%d)", i, state.CompletedMatchCount, state.TotalMatchCount)
		}
		state, err = ReportTournamentFrame(state, *match.Player1, int64(2000+i))
		if err != nil {
			t.Fatalf("unexpected error reporting frame: %v", err)
		}
	}

	if state.Stage != models.StageComplete {
		t.Fatalf("expected round robin to complete, stuck at stage %v after %d/%d matches", state.Stage, state.CompletedMatchCount, state.TotalMatchCount)
	}
}

func TestReportTournamentFrame_GroupKnockoutCrossoverSeeding(t *testing.T) {
	players := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"}
	state, err := NewTournament(models.FormatGroupKnockout, players, 1, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if len(state.Groups) != 2 {
		t.Fatalf("expected 2 groups for 8 players, got %d", len(state.Groups))
	}

	// Rank players within their own group by a fixed priority so every
	// group match has a deterministic winner and the standings come out
	// strictly ordered (no ties to break arbitrarily).
	priority := make(map[string]int)
	for _, g := range state.Groups {
		for i, name := range g.Players {
			priority[name] = i
		}
	}

	for i := 0; i < 50 && state.Stage == models.StageGroup; i++ {
		match := state.MatchByID(state.CurrentMatchID)
		if match == nil {
			t.Fatalf("no current match at step %d while still in group stage", i)
		}
		winner := *match.Player1
		if priority[*match.Player2] < priority[winner] {
			winner = *match.Player2
		}
		state, err = ReportTournamentFrame(state, winner, int64(2000+i))
		if err != nil {
			t.Fatalf("unexpected error reporting frame: %v", err)
		}
	}

	if state.Stage != models.StageKnockout {
		t.Fatalf("expected stage to flip to knockout once both groups complete, got %v", state.Stage)
	}

	standingsA := GroupStandings(state, state.Groups[0].Index)
	standingsB := GroupStandings(state, state.Groups[1].Index)
	if len(standingsA) < 2 || len(standingsB) < 2 {
		t.Fatalf("expected at least 2 ranked finishers per group")
	}
	a1, a2 := standingsA[0].Name, standingsA[1].Name
	b1, b2 := standingsB[0].Name, standingsB[1].Name

	var round0 []*models.TournamentMatch
	for i := range state.Matches {
		if state.Matches[i].Stage == models.StageKnockout && state.Matches[i].RoundIndex == 0 {
			round0 = append(round0, &state.Matches[i])
		}
	}
	if len(round0) != 2 {
		t.Fatalf("expected 2 round-0 knockout matches for 4 qualifiers, got %d", len(round0))
	}
	if round0[0].MatchIndex > round0[1].MatchIndex {
		round0[0], round0[1] = round0[1], round0[0]
	}

	deref := func(s *string) string {
		if s == nil {
			return "<nil>"
		}
		return *s
	}

	m0, m1 := round0[0], round0[1]
	if deref(m0.Player1) != a1 || deref(m0.Player2) != b2 {
		t.Fatalf("expected first KO match to be %s vs %s (crossover A1/B2), got %s vs %s", a1, b2, deref(m0.Player1), deref(m0.Player2))
	}
	if deref(m1.Player1) != b1 || deref(m1.Player2) != a2 {
		t.Fatalf("expected second KO match to be %s vs %s (crossover B1/A2), got %s vs %s", b1, a2, deref(m1.Player1), deref(m1.Player2))
	}
	if m0.IsBye || m1.IsBye {
		t.Fatalf("expected both round-0 KO matches to have two real players, not auto-byes")
	}
}

func TestGroupStandings_RanksByPointsThenFrameDifferential(t *testing.T) {
	state, err := NewTournament(models.FormatRoundRobin, []string{"Alice", "Bob", "Carol"}, 2, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	for i := 0; i < 20 && state.Stage != models.StageComplete; i++ {
		match := state.MatchByID(state.CurrentMatchID)
		if match == nil {
			break
		}
		winner := *match.Player1
		state, err = ReportTournamentFrame(state, winner, int64(2000+i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	standings := GroupStandings(state, 0)
	if len(standings) != 3 {
		t.Fatalf("expected 3 standings rows, got %d", len(standings))
	}
	for i := 1; i < len(standings); i++ {
		if standings[i].Points > standings[i-1].Points {
			t.Fatalf("expected standings sorted by points desc, got %+v", standings)
		}
	}
}
