package engine

import (
	"github.com/google/uuid"

	"chalkitup/models"
)

// startKillerGame builds a killer game from the oldest waiting entries.
// Called by StartNextGame once it has determined at least one waiting
// entry requests killer mode.
func startKillerGame(queue []models.QueueEntry, waiting []models.QueueEntry, settings models.Settings, now int64) ([]models.QueueEntry, *models.CurrentGame, error) {
	if len(waiting) < models.KillerMinPlayers {
		return nil, nil, ErrInsufficientPlayers
	}

	n := len(waiting)
	if n > models.KillerMaxPlayers {
		n = models.KillerMaxPlayers
	}
	taken := waiting[:n]

	killerPlayers := make([]models.KillerPlayer, 0, n)
	gamePlayers := make([]models.GamePlayer, 0, n)
	entryByName := make(map[string]string, n)
	for _, e := range taken {
		name := ""
		if len(e.PlayerNames) > 0 {
			name = e.PlayerNames[0]
		}
		killerPlayers = append(killerPlayers, models.KillerPlayer{Name: name, Lives: models.KillerDefaultLives, IsEliminated: false})
		gamePlayers = append(gamePlayers, models.GamePlayer{Name: name, Side: models.SideChallenger, QueueEntryID: e.ID})
		entryByName[name] = e.ID
	}

	deadline := now + int64(settings.NoShowTimeoutSeconds)*1000
	nextQueue := cloneQueue(queue)
	for _, e := range taken {
		nextQueue = mapEntry(nextQueue, e.ID, func(e models.QueueEntry) models.QueueEntry {
			e.Status = models.QueueCalled
			e.NoShowDeadline = &deadline
			return e
		})
	}

	game := &models.CurrentGame{
		ID:        uuid.NewString(),
		Mode:      models.ModeKiller,
		StartedAt: now,
		Players:   gamePlayers,
		KillerState: &models.KillerState{
			Players:      killerPlayers,
			QueueEntryID: entryByName,
			Round:        1,
		},
	}
	return nextQueue, game, nil
}

// EliminateKillerPlayer decrements the named player's lives, eliminating
// them at zero, and advances the round counter. The queue is untouched.
func EliminateKillerPlayer(game *models.CurrentGame, name string) (*models.CurrentGame, error) {
	if game == nil || game.KillerState == nil {
		return nil, ErrNoActiveGame
	}
	next := *game
	ks := *game.KillerState
	ks.Players = append([]models.KillerPlayer(nil), game.KillerState.Players...)
	for i, p := range ks.Players {
		if p.Name == name {
			if p.Lives > 0 {
				ks.Players[i].Lives--
			}
			if ks.Players[i].Lives <= 0 {
				ks.Players[i].IsEliminated = true
			}
			break
		}
	}
	ks.Round++
	next.KillerState = &ks
	return &next, nil
}

// Survivors returns the still-in players of a killer game.
func Survivors(ks *models.KillerState) []models.KillerPlayer {
	if ks == nil {
		return nil
	}
	out := make([]models.KillerPlayer, 0, len(ks.Players))
	for _, p := range ks.Players {
		if !p.IsEliminated {
			out = append(out, p)
		}
	}
	return out
}

// IsKillerGameOver reports whether at most one player remains standing.
func IsKillerGameOver(ks *models.KillerState) bool {
	return len(Survivors(ks)) <= 1
}

// KillerWinner returns the sole survivor's name, or "" if the game isn't
// over or ended in a wipeout with no survivor.
func KillerWinner(ks *models.KillerState) string {
	survivors := Survivors(ks)
	if len(survivors) == 1 {
		return survivors[0].Name
	}
	return ""
}

// ProcessKillerResult removes every participant's queue entry, then
// re-inserts the winner's original entry at the front as waiting.
func ProcessKillerResult(game *models.CurrentGame, queue []models.QueueEntry, winnerName string) []models.QueueEntry {
	if game == nil || game.KillerState == nil {
		return cloneQueue(queue)
	}

	var winnerEntry *models.QueueEntry
	if id, ok := game.KillerState.QueueEntryID[winnerName]; ok {
		winnerEntry = findEntry(queue, id)
	}

	participantIDs := make(map[string]bool, len(game.Players))
	for _, p := range game.Players {
		participantIDs[p.QueueEntryID] = true
	}

	remaining := make([]models.QueueEntry, 0, len(queue))
	for _, e := range queue {
		if participantIDs[e.ID] {
			continue
		}
		remaining = append(remaining, e)
	}

	if winnerEntry == nil {
		return remaining
	}

	restored := winnerEntry.Clone()
	restored.Status = models.QueueWaiting
	restored.NoShowDeadline = nil
	restored.HoldUntil = nil
	return append([]models.QueueEntry{restored}, remaining...)
}
