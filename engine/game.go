package engine

import (
	"fmt"

	"github.com/google/uuid"

	"chalkitup/models"
)

// StartNextGame picks the next game off the queue and returns the
// updated queue and the freshly started game. The caller is expected to
// have already run ExpireHeldEntries on queue.
func StartNextGame(queue []models.QueueEntry, current *models.CurrentGame, settings models.Settings, stats models.SessionStats, now int64) ([]models.QueueEntry, *models.CurrentGame, error) {
	if current != nil {
		return nil, nil, ErrGameInProgress
	}

	waiting := waitingEntries(queue)

	if killerIdx := firstIndexWithMode(waiting, models.ModeKiller); killerIdx >= 0 {
		return startKillerGame(queue, waiting, settings, now)
	}

	var holder, challenger models.QueueEntry
	if challengeIdx := firstIndexWithMode(waiting, models.ModeChallenge); challengeIdx >= 0 {
		challenger = waiting[challengeIdx]
		holder = firstOtherEntry(waiting, challengeIdx)
		if len(waiting) < 2 {
			return nil, nil, fmt.Errorf("%w: challenge mode needs at least 2 waiting entries", ErrInsufficientPlayers)
		}
	} else {
		if len(waiting) < 2 {
			return nil, nil, fmt.Errorf("%w: need at least 2 waiting entries", ErrInsufficientPlayers)
		}
		holder = waiting[0]
		challenger = waiting[1]
	}

	mode := models.ModeSingles
	if holder.GameMode == models.ModeDoubles && challenger.GameMode == models.ModeDoubles {
		if len(holder.PlayerNames) != 2 || len(challenger.PlayerNames) != 2 {
			return nil, nil, ErrInvalidDoublesComposition
		}
		mode = models.ModeDoubles
	}

	players := buildPlayers(holder, challenger)

	consecutiveWins := 0
	if len(queue) > 0 && queue[0].ID == holder.ID && len(holder.PlayerNames) > 0 {
		if ps, ok := stats.PlayerStats[holder.PlayerNames[0]]; ok {
			consecutiveWins = ps.CurrentStreak
		}
	}

	breaker := selectBreaker(settings.HouseRules.BreakRule, holder, challenger)

	deadline := now + int64(settings.NoShowTimeoutSeconds)*1000
	nextQueue := mapEntry(queue, holder.ID, func(e models.QueueEntry) models.QueueEntry {
		e.Status = models.QueueCalled
		e.NoShowDeadline = &deadline
		return e
	})
	nextQueue = mapEntry(nextQueue, challenger.ID, func(e models.QueueEntry) models.QueueEntry {
		e.Status = models.QueueCalled
		e.NoShowDeadline = &deadline
		return e
	})

	game := &models.CurrentGame{
		ID:              uuid.NewString(),
		Mode:            mode,
		StartedAt:       now,
		Players:         players,
		ConsecutiveWins: consecutiveWins,
		BreakingPlayer:  breaker,
	}

	return nextQueue, game, nil
}

// RegisterCurrentGame lets an external caller (e.g. a TV operator
// recording a game that started off-app) directly declare the players for
// a new CurrentGame without consulting the queue's front two entries. The
// named entries are still marked called with a no-show deadline.
func RegisterCurrentGame(queue []models.QueueEntry, current *models.CurrentGame, holderEntryID, challengerEntryID string, mode models.GameMode, settings models.Settings, now int64) ([]models.QueueEntry, *models.CurrentGame, error) {
	if current != nil {
		return nil, nil, ErrGameInProgress
	}

	holder := findEntry(queue, holderEntryID)
	challenger := findEntry(queue, challengerEntryID)
	if holder == nil || challenger == nil {
		return nil, nil, fmt.Errorf("%w: queue entry", ErrNotFound)
	}

	players := buildPlayers(*holder, *challenger)
	breaker := selectBreaker(settings.HouseRules.BreakRule, *holder, *challenger)

	deadline := now + int64(settings.NoShowTimeoutSeconds)*1000
	nextQueue := mapEntry(queue, holder.ID, func(e models.QueueEntry) models.QueueEntry {
		e.Status = models.QueueCalled
		e.NoShowDeadline = &deadline
		return e
	})
	nextQueue = mapEntry(nextQueue, challenger.ID, func(e models.QueueEntry) models.QueueEntry {
		e.Status = models.QueueCalled
		e.NoShowDeadline = &deadline
		return e
	})

	game := &models.CurrentGame{
		ID:             uuid.NewString(),
		Mode:           mode,
		StartedAt:      now,
		Players:        players,
		BreakingPlayer: breaker,
	}
	return nextQueue, game, nil
}

// Result describes the outcome of a singles/doubles/challenge game, as
// reported by whoever is running the table.
type Result struct {
	WinningSide models.Side
	WinnerNames []string
}

// ResultOutcome is the full return value of ProcessResult: the updated
// queue plus the facts the coordinator and stats engine need but that
// don't belong in the queue shape itself.
type ResultOutcome struct {
	Queue              []models.QueueEntry
	NewConsecutiveWins int
	WinnerEntryID      string
}

// ProcessResult applies a reported game result to the queue. NewConsecutiveWins
// feeds the win-limit check and the stats/king-of-table computation;
// WinnerEntryID is what the caller passes to ApplyWinLimit when the limit fires.
func ProcessResult(game *models.CurrentGame, queue []models.QueueEntry, result Result) (ResultOutcome, error) {
	if game == nil {
		return ResultOutcome{}, ErrNoActiveGame
	}

	winnerEntryID := entryIDForSide(game, result.WinningSide)
	loserSide := models.SideChallenger
	if result.WinningSide == models.SideChallenger {
		loserSide = models.SideHolder
	}
	loserEntryID := entryIDForSide(game, loserSide)

	newConsecutiveWins := 1
	if result.WinningSide == models.SideHolder {
		newConsecutiveWins = game.ConsecutiveWins + 1
	}

	next := RemoveFromQueue(queue, loserEntryID)
	if winnerEntryID != "" {
		next = mapEntry(next, winnerEntryID, func(e models.QueueEntry) models.QueueEntry {
			e.Status = models.QueueWaiting
			e.NoShowDeadline = nil
			return e
		})
	}

	return ResultOutcome{Queue: next, NewConsecutiveWins: newConsecutiveWins, WinnerEntryID: winnerEntryID}, nil
}

// ApplyWinLimit moves the winner's queue entry to the back once the win
// limit has been reached; called by the coordinator after ProcessResult
// when settings.WinLimitEnabled && newConsecutiveWins >= settings.WinLimitCount.
func ApplyWinLimit(queue []models.QueueEntry, winnerEntryID string) []models.QueueEntry {
	return MoveToBack(queue, winnerEntryID)
}

// CancelCurrentGame returns every called entry belonging to game's players
// to waiting with cleared deadlines. Stats are untouched.
func CancelCurrentGame(game *models.CurrentGame, queue []models.QueueEntry) []models.QueueEntry {
	if game == nil {
		return cloneQueue(queue)
	}
	next := cloneQueue(queue)
	for _, p := range game.Players {
		next = mapEntry(next, p.QueueEntryID, func(e models.QueueEntry) models.QueueEntry {
			if e.Status == models.QueueCalled {
				e.Status = models.QueueWaiting
				e.NoShowDeadline = nil
			}
			return e
		})
	}
	return next
}

// DismissNoShow clears the no-show deadline on every called entry
// belonging to game, without ending the game or touching the queue order.
func DismissNoShow(game *models.CurrentGame, queue []models.QueueEntry) []models.QueueEntry {
	if game == nil {
		return cloneQueue(queue)
	}
	next := cloneQueue(queue)
	for _, p := range game.Players {
		next = mapEntry(next, p.QueueEntryID, func(e models.QueueEntry) models.QueueEntry {
			if e.Status == models.QueueCalled {
				e.NoShowDeadline = nil
			}
			return e
		})
	}
	return next
}

// ResolveNoShows removes the named entries from the queue as forfeits,
// ends the game, and returns the remaining called entries belonging to
// the game to waiting.
func ResolveNoShows(game *models.CurrentGame, queue []models.QueueEntry, noShowEntryIDs []string) []models.QueueEntry {
	next := cloneQueue(queue)
	noShow := make(map[string]bool, len(noShowEntryIDs))
	for _, id := range noShowEntryIDs {
		noShow[id] = true
	}
	filtered := make([]models.QueueEntry, 0, len(next))
	for _, e := range next {
		if noShow[e.ID] {
			continue
		}
		filtered = append(filtered, e)
	}
	return CancelCurrentGame(game, filtered)
}

func waitingEntries(queue []models.QueueEntry) []models.QueueEntry {
	out := make([]models.QueueEntry, 0, len(queue))
	for _, e := range queue {
		if e.Status == models.QueueWaiting {
			out = append(out, e)
		}
	}
	return out
}

func firstIndexWithMode(entries []models.QueueEntry, mode models.GameMode) int {
	for i, e := range entries {
		if e.GameMode == mode {
			return i
		}
	}
	return -1
}

// firstOtherEntry returns the first waiting entry other than the one at
// excludeIdx, falling back to entries[0] (including excludeIdx itself) if
// there is no other entry.
func firstOtherEntry(entries []models.QueueEntry, excludeIdx int) models.QueueEntry {
	for i, e := range entries {
		if i != excludeIdx {
			return e
		}
	}
	return entries[0]
}

func buildPlayers(holder, challenger models.QueueEntry) []models.GamePlayer {
	players := make([]models.GamePlayer, 0, len(holder.PlayerNames)+len(challenger.PlayerNames))
	for _, name := range holder.PlayerNames {
		players = append(players, models.GamePlayer{Name: name, Side: models.SideHolder, QueueEntryID: holder.ID})
	}
	for _, name := range challenger.PlayerNames {
		players = append(players, models.GamePlayer{Name: name, Side: models.SideChallenger, QueueEntryID: challenger.ID})
	}
	return players
}

func selectBreaker(rule models.BreakRule, holder, challenger models.QueueEntry) string {
	switch rule {
	case models.BreakWinnerBreaks:
		if len(holder.PlayerNames) > 0 {
			return holder.PlayerNames[0]
		}
	case models.BreakLoserBreaks, models.BreakAlternate:
		if len(challenger.PlayerNames) > 0 {
			return challenger.PlayerNames[0]
		}
	}
	return ""
}

func findEntry(queue []models.QueueEntry, id string) *models.QueueEntry {
	for i := range queue {
		if queue[i].ID == id {
			e := queue[i].Clone()
			return &e
		}
	}
	return nil
}

func entryIDForSide(game *models.CurrentGame, side models.Side) string {
	for _, p := range game.Players {
		if p.Side == side {
			return p.QueueEntryID
		}
	}
	return ""
}
