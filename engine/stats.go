package engine

import "chalkitup/models"

// kingOfTableThreshold is the minimum consecutive-win streak before a
// player can be crowned king of the table.
const kingOfTableThreshold = 3

// UpdateStatsAfterGame updates gamesPlayed/wins/losses/streak for every
// named player on both sides and recomputes the king of table. King of
// table is judged on the table-continuity figure (a challenger win always
// resets it to 1, a holder win extends game.ConsecutiveWins), not on the
// winner's own personal currentStreak bookkeeping, which survives a
// win-limit move-to-back and would otherwise stay inflated across an
// unrelated later game. A new king is only crowned on a strictly greater
// count than the incumbent; ties leave the incumbent in place.
func UpdateStatsAfterGame(stats models.SessionStats, game *models.CurrentGame, result Result, now int64) models.SessionStats {
	next := stats
	next.PlayerStats = make(map[string]models.PlayerStats, len(stats.PlayerStats))
	for k, v := range stats.PlayerStats {
		next.PlayerStats[k] = v
	}
	if stats.KingOfTable != nil {
		king := *stats.KingOfTable
		next.KingOfTable = &king
	}

	winners := make(map[string]bool, len(result.WinnerNames))
	for _, n := range result.WinnerNames {
		winners[n] = true
	}

	firstWinner := ""
	if game != nil {
		for _, p := range game.Players {
			ps := next.PlayerStats[p.Name]
			ps.GamesPlayed++
			if winners[p.Name] {
				ps.Wins++
				ps.CurrentStreak++
				if ps.CurrentStreak > ps.BestStreak {
					ps.BestStreak = ps.CurrentStreak
				}
				if firstWinner == "" {
					firstWinner = p.Name
				}
			} else {
				ps.Losses++
				ps.CurrentStreak = 0
			}
			next.PlayerStats[p.Name] = ps
		}

		consecutiveWins := 1
		if result.WinningSide == models.SideHolder {
			consecutiveWins = game.ConsecutiveWins + 1
		}
		if consecutiveWins >= kingOfTableThreshold {
			winnerName := firstWinner
			if len(result.WinnerNames) > 0 {
				winnerName = result.WinnerNames[0]
			}
			if winnerName != "" && (next.KingOfTable == nil || consecutiveWins > next.KingOfTable.ConsecutiveWins) {
				next.KingOfTable = &models.KingOfTable{
					Name:            winnerName,
					ConsecutiveWins: consecutiveWins,
					CrownedAt:       now,
				}
			}
		}
	}

	next.GamesPlayed++
	return next
}

// UpdateStatsAfterKillerGame counts the finished round as a game for every
// participant and resets everyone else's streak to zero. King of table is
// left untouched, per spec: killer has no holder/challenger continuity
// figure to crown against.
func UpdateStatsAfterKillerGame(stats models.SessionStats, ks *models.KillerState, winnerName string, now int64) models.SessionStats {
	next := stats
	next.PlayerStats = make(map[string]models.PlayerStats, len(stats.PlayerStats))
	for k, v := range stats.PlayerStats {
		next.PlayerStats[k] = v
	}
	if stats.KingOfTable != nil {
		king := *stats.KingOfTable
		next.KingOfTable = &king
	}

	if ks == nil {
		return next
	}

	for _, p := range ks.Players {
		ps := next.PlayerStats[p.Name]
		ps.GamesPlayed++
		if p.Name == winnerName {
			ps.Wins++
			ps.CurrentStreak++
			if ps.CurrentStreak > ps.BestStreak {
				ps.BestStreak = ps.CurrentStreak
			}
		} else {
			ps.Losses++
			ps.CurrentStreak = 0
		}
		next.PlayerStats[p.Name] = ps
	}

	next.GamesPlayed++
	return next
}

// LeaderboardRow is one ranked line of a session leaderboard.
type LeaderboardRow struct {
	Name        string
	Wins        int
	Losses      int
	GamesPlayed int
	WinRate     float64
}

// Leaderboard ranks players by wins desc, then win rate desc, then games
// played desc.
func Leaderboard(stats models.SessionStats) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(stats.PlayerStats))
	for name, ps := range stats.PlayerStats {
		rate := 0.0
		if ps.GamesPlayed > 0 {
			rate = float64(ps.Wins) / float64(ps.GamesPlayed)
		}
		rows = append(rows, LeaderboardRow{
			Name:        name,
			Wins:        ps.Wins,
			Losses:      ps.Losses,
			GamesPlayed: ps.GamesPlayed,
			WinRate:     rate,
		})
	}

	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && lessRow(rows[j], rows[j-1]); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	return rows
}

// lessRow reports whether a ranks strictly ahead of b.
func lessRow(a, b LeaderboardRow) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.WinRate != b.WinRate {
		return a.WinRate > b.WinRate
	}
	return a.GamesPlayed > b.GamesPlayed
}

// LifetimeAggregate folds a batch of per-game deltas into a per-user
// lifetime record. Deltas for user ids not present in knownUserNames are
// silently skipped.
func LifetimeAggregate(existing map[string]models.LifetimeStats, deltas []models.LifetimeStatsUpdate, knownUserNames map[string]string) map[string]models.LifetimeStats {
	next := make(map[string]models.LifetimeStats, len(existing))
	for k, v := range existing {
		byMode := make(map[models.GameMode]models.ModeStats, len(v.ByMode))
		for m, ms := range v.ByMode {
			byMode[m] = ms
		}
		v.ByMode = byMode
		next[k] = v
	}

	for _, d := range deltas {
		if _, known := knownUserNames[d.UserID]; !known {
			continue
		}
		ls := next[d.UserID]
		if ls.ByMode == nil {
			ls.ByMode = make(map[models.GameMode]models.ModeStats)
		}
		ms := ls.ByMode[d.Mode]
		ms.GamesPlayed++
		ls.GamesPlayed++
		if d.Won {
			ms.Wins++
			ls.Wins++
			ls.CurrentStreak++
			if ls.CurrentStreak > ls.BestStreak {
				ls.BestStreak = ls.CurrentStreak
			}
		} else {
			ms.Losses++
			ls.Losses++
			ls.CurrentStreak = 0
		}
		ls.ByMode[d.Mode] = ms
		ls.LastGameAt = d.At
		next[d.UserID] = ls
	}
	return next
}
