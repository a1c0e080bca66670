package coordinator

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chalkitup/engine"
	"chalkitup/internal/storage/sqlstore"
	"chalkitup/models"
)

// StartNextGame implements the StartNextGame command: it expires any
// stale holds before delegating to the pure engine.
func (c *Coordinator) StartNextGame(ctx context.Context, tableID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		now := c.now()
		expired := engine.ExpireHeldEntries(t.Queue, now)
		queue, game, err := engine.StartNextGame(expired, t.CurrentGame, t.Settings, t.SessionStats, now)
		if err != nil {
			return models.Table{}, err
		}
		t.Queue = queue
		t.CurrentGame = game
		return t, nil
	})
}

// RegisterCurrentGame implements the RegisterCurrentGame command.
func (c *Coordinator) RegisterCurrentGame(ctx context.Context, tableID, holderEntryID, challengerEntryID string, mode models.GameMode) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		queue, game, err := engine.RegisterCurrentGame(t.Queue, t.CurrentGame, holderEntryID, challengerEntryID, mode, t.Settings, c.now())
		if err != nil {
			return models.Table{}, err
		}
		t.Queue = queue
		t.CurrentGame = game
		return t, nil
	})
}

// ReportResult implements the ReportResult command.
// On success it appends a GameHistoryRecord and batches lifetime-stats
// deltas for players with known userIds as post-commit side effects; a
// failure in either is logged, not surfaced.
func (c *Coordinator) ReportResult(ctx context.Context, tableID string, result engine.Result) (models.Table, error) {
	var startedAt int64
	var game models.CurrentGame
	var outcome engine.ResultOutcome
	var priorQueue []models.QueueEntry

	table, err := c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		if t.CurrentGame == nil {
			return models.Table{}, engine.ErrNoActiveGame
		}
		game = *t.CurrentGame
		startedAt = game.StartedAt
		priorQueue = t.Queue

		var procErr error
		outcome, procErr = engine.ProcessResult(t.CurrentGame, t.Queue, result)
		if procErr != nil {
			return models.Table{}, procErr
		}

		queue := outcome.Queue
		winLimitReached := t.Settings.WinLimitEnabled && outcome.NewConsecutiveWins >= t.Settings.WinLimitCount
		if winLimitReached {
			queue = engine.ApplyWinLimit(queue, outcome.WinnerEntryID)
		}

		t.Queue = queue
		t.SessionStats = engine.UpdateStatsAfterGame(t.SessionStats, t.CurrentGame, result, c.now())
		t.CurrentGame = nil
		return t, nil
	})
	if err != nil {
		return models.Table{}, err
	}

	// The loser's queue entry is gone after ProcessResult; resolve userIds
	// against the queue as it was before the result.
	histTable := table
	histTable.Queue = priorQueue
	c.recordGameHistory(ctx, histTable, &game, result.WinnerNames, startedAt, nil, nil)
	return table, nil
}

// StartKillerDirect lets a caller declare a killer game's roster directly
// rather than drawing from the queue's killer-tagged entries.
func (c *Coordinator) StartKillerDirect(ctx context.Context, tableID string, entryIDs []string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		if t.CurrentGame != nil {
			return models.Table{}, engine.ErrGameInProgress
		}
		wanted := make(map[string]bool, len(entryIDs))
		for _, id := range entryIDs {
			wanted[id] = true
		}
		var taken []models.QueueEntry
		for _, e := range t.Queue {
			if wanted[e.ID] {
				taken = append(taken, e)
			}
		}
		if len(taken) < models.KillerMinPlayers {
			return models.Table{}, engine.ErrInsufficientPlayers
		}
		for i := range taken {
			taken[i].GameMode = models.ModeKiller
		}
		queue, game, err := engine.StartNextGame(taken, nil, t.Settings, t.SessionStats, c.now())
		if err != nil {
			return models.Table{}, err
		}
		byID := make(map[string]models.QueueEntry, len(queue))
		for _, e := range queue {
			byID[e.ID] = e
		}
		next := make([]models.QueueEntry, len(t.Queue))
		for i, e := range t.Queue {
			if updated, ok := byID[e.ID]; ok {
				updated.GameMode = e.GameMode
				next[i] = updated
			} else {
				next[i] = e
			}
		}
		t.Queue = next
		t.CurrentGame = game
		return t, nil
	})
}

// EliminateKillerPlayer implements the EliminateKillerPlayer command.
func (c *Coordinator) EliminateKillerPlayer(ctx context.Context, tableID, name string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		game, err := engine.EliminateKillerPlayer(t.CurrentGame, name)
		if err != nil {
			return models.Table{}, err
		}
		t.CurrentGame = game
		return t, nil
	})
}

// FinishKillerGame implements the FinishKillerGame command: it requires
// the killer game already be down to at most one survivor (with none left,
// the winner is empty).
func (c *Coordinator) FinishKillerGame(ctx context.Context, tableID string) (models.Table, error) {
	var startedAt int64
	var game models.CurrentGame
	var winner string
	var priorQueue []models.QueueEntry

	table, err := c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		if t.CurrentGame == nil || t.CurrentGame.KillerState == nil {
			return models.Table{}, engine.ErrNoActiveGame
		}
		if !engine.IsKillerGameOver(t.CurrentGame.KillerState) {
			return models.Table{}, engine.ErrInsufficientPlayers
		}
		winner = engine.KillerWinner(t.CurrentGame.KillerState)
		game = *t.CurrentGame
		startedAt = game.StartedAt
		priorQueue = t.Queue

		t.Queue = engine.ProcessKillerResult(t.CurrentGame, t.Queue, winner)
		t.SessionStats = engine.UpdateStatsAfterKillerGame(t.SessionStats, t.CurrentGame.KillerState, winner, c.now())
		t.CurrentGame = nil
		return t, nil
	})
	if err != nil {
		return models.Table{}, err
	}

	histTable := table
	histTable.Queue = priorQueue
	c.recordGameHistory(ctx, histTable, &game, []string{winner}, startedAt, game.KillerState, nil)
	return table, nil
}

// CancelGame implements the CancelGame command.
func (c *Coordinator) CancelGame(ctx context.Context, tableID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Queue = engine.CancelCurrentGame(t.CurrentGame, t.Queue)
		t.CurrentGame = nil
		return t, nil
	})
}

// DismissNoShow implements the DismissNoShow command.
func (c *Coordinator) DismissNoShow(ctx context.Context, tableID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Queue = engine.DismissNoShow(t.CurrentGame, t.Queue)
		return t, nil
	})
}

// ResolveNoShows implements the ResolveNoShows command.
func (c *Coordinator) ResolveNoShows(ctx context.Context, tableID string, noShowEntryIDs []string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Queue = engine.ResolveNoShows(t.CurrentGame, t.Queue, noShowEntryIDs)
		t.CurrentGame = nil
		return t, nil
	})
}

// recordGameHistory appends a GameHistoryRecord and, for every player with
// a known userId, batches a lifetime-stats delta. Both run post-commit in
// their own transaction; failures are logged, never surfaced.
func (c *Coordinator) recordGameHistory(ctx context.Context, table models.Table, game *models.CurrentGame, winnerNames []string, startedAt int64, killerState *models.KillerState, tournamentState *models.TournamentState) {
	winners := make(map[string]bool, len(winnerNames))
	for _, n := range winnerNames {
		winners[n] = true
	}

	winnerSide := models.SideHolder
	winnerName := ""
	if len(winnerNames) > 0 {
		winnerName = winnerNames[0]
	}
	for _, p := range game.Players {
		if p.Name == winnerName {
			winnerSide = p.Side
		}
	}

	now := c.now()
	uidMap := map[string]string{}
	uidList := []string{}
	var updates []models.LifetimeStatsUpdate
	for _, p := range game.Players {
		if uid, ok := findUserID(table, p); ok {
			uidMap[p.Name] = uid
			uidList = append(uidList, uid)
			updates = append(updates, models.LifetimeStatsUpdate{UserID: uid, Mode: game.Mode, Won: winners[p.Name], At: now})
		}
	}

	record := models.GameHistoryRecord{
		ID:              uuid.NewString(),
		TableID:         table.ID,
		Mode:            game.Mode,
		Players:         game.Players,
		Winner:          winnerName,
		WinnerSide:      winnerSide,
		StartedAt:       startedAt,
		EndedAt:         now,
		DurationMs:      now - startedAt,
		ConsecutiveWins: game.ConsecutiveWins,
		KillerState:     killerState,
		TournamentState: tournamentState,
		PlayerUIDs:      uidMap,
		PlayerUIDList:   uidList,
		VenueName:       table.VenueName,
	}

	_, err := sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (struct{}, error) {
		if err := txn.AppendHistory(record); err != nil {
			return struct{}{}, err
		}
		if len(updates) > 0 {
			if err := txn.BatchUpdateUsers(updates); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		c.log.Warn("post-commit side effect failed", zap.String("tableId", table.ID), zap.Error(err))
	}
}

// findUserID looks up the stored userId for a game player by name, only
// among the entries the player's queueEntryId still resolves to.
func findUserID(table models.Table, p models.GamePlayer) (string, bool) {
	for _, e := range table.Queue {
		if e.ID == p.QueueEntryID {
			if uid, ok := e.UserIDs[p.Name]; ok {
				return uid, true
			}
		}
	}
	return "", false
}
