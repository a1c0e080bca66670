package coordinator

import (
	"context"

	"github.com/google/uuid"

	"chalkitup/engine"
	"chalkitup/models"
)

// StartTournament implements the StartTournament command: it
// builds the bracket/group schedule for the requested format and installs
// it as the table's CurrentGame, refusing to start over an in-progress game.
func (c *Coordinator) StartTournament(ctx context.Context, tableID string, format models.TournamentFormat, playerNames []string, raceTo int) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		if t.CurrentGame != nil {
			return models.Table{}, engine.ErrGameInProgress
		}
		now := c.now()
		state, err := engine.NewTournament(format, playerNames, raceTo, now)
		if err != nil {
			return models.Table{}, err
		}
		t.CurrentGame = &models.CurrentGame{
			ID:              uuid.NewString(),
			Mode:            models.ModeTournament,
			StartedAt:       now,
			TournamentState: state,
		}
		return t, nil
	})
}

// ReportTournamentFrame feeds one frame result into the active tournament's
// current match, finalizing and recording history once the tournament
// completes.
func (c *Coordinator) ReportTournamentFrame(ctx context.Context, tableID, winner string) (models.Table, error) {
	var startedAt int64
	var game models.CurrentGame
	var finished bool

	table, err := c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		if t.CurrentGame == nil || t.CurrentGame.TournamentState == nil {
			return models.Table{}, engine.ErrNoActiveGame
		}
		next, err := engine.ReportTournamentFrame(t.CurrentGame.TournamentState, winner, c.now())
		if err != nil {
			return models.Table{}, err
		}

		if next.Stage == models.StageComplete {
			finished = true
			game = *t.CurrentGame
			game.TournamentState = next
			startedAt = game.StartedAt
			t.CurrentGame = nil
			return t, nil
		}

		t.CurrentGame.TournamentState = next
		return t, nil
	})
	if err != nil {
		return models.Table{}, err
	}

	if finished {
		c.recordGameHistory(ctx, table, &game, []string{game.TournamentState.Winner}, startedAt, nil, game.TournamentState)
	}
	return table, nil
}

// CancelTournament implements the CancelTournament command: it abandons the
// in-progress bracket without recording history, mirroring CancelGame.
func (c *Coordinator) CancelTournament(ctx context.Context, tableID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		if t.CurrentGame == nil || t.CurrentGame.TournamentState == nil {
			return models.Table{}, engine.ErrNoActiveGame
		}
		t.CurrentGame = nil
		return t, nil
	})
}
