package engine

import (
	"fmt"

	"chalkitup/models"
)

// NewTournament validates the player count and race-to, then builds the
// bracket/group schedule for the requested format.
func NewTournament(format models.TournamentFormat, playerNames []string, raceTo int, now int64) (*models.TournamentState, error) {
	if len(playerNames) < models.MinTournamentPlayers {
		return nil, fmt.Errorf("%w: need at least %d players", ErrTooFewTournamentPlayers, models.MinTournamentPlayers)
	}
	if len(playerNames) > models.MaxTournamentPlayers {
		return nil, fmt.Errorf("%w: at most %d players", ErrTooManyTournamentPlayers, models.MaxTournamentPlayers)
	}
	if raceTo < models.TournamentRaceToMin || raceTo > models.TournamentRaceToMax {
		return nil, fmt.Errorf("%w: raceTo must be %d..%d", ErrInvalidRaceTo, models.TournamentRaceToMin, models.TournamentRaceToMax)
	}

	players := append([]string(nil), playerNames...)

	var matches []models.TournamentMatch
	var groups []models.TournamentGroup
	stage := models.StageKnockout

	switch format {
	case models.FormatKnockout:
		matches = buildKnockoutBracket(players, raceTo, models.StageKnockout, 0)
		propagateByes(matches)
	case models.FormatRoundRobin:
		matches, groups = buildRoundRobin(players, raceTo, 0)
		stage = models.StageGroup
	case models.FormatGroupKnockout:
		groupCount, advance := groupKnockoutSizing(len(players))
		grouped := snakeSeed(players, groupCount)
		for gi, gPlayers := range grouped {
			gMatches, group := buildRoundRobin(gPlayers, raceTo, gi)
			matches = append(matches, gMatches...)
			groups = append(groups, group)
		}
		koSize := nextPowerOfTwo(groupCount * advance)
		koPlaceholders := make([]string, koSize)
		koMatches := buildKnockoutBracket(koPlaceholders, raceTo, models.StageKnockout, len(matches))
		matches = append(matches, koMatches...)
		stage = models.StageGroup
	default:
		return nil, fmt.Errorf("%w: unknown tournament format %q", ErrInvalidInput, format)
	}

	total := 0
	for _, m := range matches {
		if !m.IsBye {
			total++
		}
	}

	state := &models.TournamentState{
		Format:      format,
		RaceTo:      raceTo,
		PlayerNames: players,
		Matches:     matches,
		Groups:      groups,
		Stage:       stage,
		TotalMatchCount: total,
	}
	state.CurrentMatchID = nextPendingMatchID(state)
	return state, nil
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// seedOrder returns the standard single-elimination seeding permutation for
// a bracket of size n (a power of two): seed 1 vs seed n, seed 2 vs seed
// n-1, and so on, computed recursively so that top seeds only meet late.
func seedOrder(n int) []int {
	if n == 1 {
		return []int{1}
	}
	half := seedOrder(n / 2)
	out := make([]int, 0, n)
	for _, s := range half {
		out = append(out, s, n+1-s)
	}
	return out
}

// buildKnockoutBracket builds every round of a single-elimination bracket
// for players (nil/empty slots indicate the partner gets an auto-bye). IDs
// are namespaced by idOffset so multiple brackets can coexist in one
// tournament's Matches slice without collision.
func buildKnockoutBracket(players []string, raceTo int, stage models.TournamentStage, idOffset int) []models.TournamentMatch {
	size := nextPowerOfTwo(len(players))
	if size < 2 {
		size = 2
	}
	order := seedOrder(size)

	slots := make([]*string, size)
	for i, seed := range order {
		idx := seed - 1
		if idx < len(players) && players[idx] != "" {
			name := players[idx]
			slots[i] = &name
		}
	}

	var matches []models.TournamentMatch
	rounds := 0
	for s := size; s > 1; s /= 2 {
		rounds++
	}

	roundStart := make([]int, rounds)
	matchIdx := 0
	for r := 0; r < rounds; r++ {
		roundStart[r] = matchIdx
		count := size / (1 << (r + 1))
		for i := 0; i < count; i++ {
			id := matchID(idOffset, r, i, r == rounds-1)
			m := models.TournamentMatch{
				ID:         id,
				RaceTo:     raceTo,
				Stage:      stage,
				RoundIndex: r,
				MatchIndex: i,
			}
			if r == 0 {
				p1, p2 := slots[2*i], slots[2*i+1]
				m.Player1, m.Player2 = p1, p2
				if (p1 == nil) != (p2 == nil) {
					m.IsBye = true
				}
			}
			if r < rounds-1 {
				feedsInto := matchID(idOffset, r+1, i/2, r+1 == rounds-1)
				m.FeedsInto = &feedsInto
				if i%2 == 0 {
					m.FeedsSlot = models.FeedSlot1
				} else {
					m.FeedsSlot = models.FeedSlot2
				}
			}
			matches = append(matches, m)
			matchIdx++
		}
	}
	return matches
}

func matchID(offset, round, idx int, isFinal bool) string {
	id := fmt.Sprintf("B%d-R%d-M%d", offset, round, idx)
	if isFinal {
		id += "-FINAL"
	}
	return id
}

// propagateByes resolves every auto-bye in matches, feeding the lone
// present player forward, and repeats until no new byes are discovered —
// a completed bye can itself complete the next match if that match's other
// slot was also a bye.
func propagateByes(matches []models.TournamentMatch) {
	for {
		changed := false
		byID := make(map[string]*models.TournamentMatch, len(matches))
		for i := range matches {
			byID[matches[i].ID] = &matches[i]
		}
		for i := range matches {
			m := &matches[i]
			if !m.IsBye || m.Winner != nil {
				continue
			}
			var winner *string
			if m.Player1 != nil {
				winner = m.Player1
			} else {
				winner = m.Player2
			}
			if winner == nil {
				continue
			}
			m.Winner = winner
			changed = true
			if m.FeedsInto != nil {
				if next, ok := byID[*m.FeedsInto]; ok {
					w := *winner
					if m.FeedsSlot == models.FeedSlot1 {
						next.Player1 = &w
					} else {
						next.Player2 = &w
					}
					if next.Player1 != nil && next.Player2 != nil && (*next.Player1 == "" || *next.Player2 == "") {
						next.IsBye = true
					}
				}
			}
		}
		if !changed {
			return
		}
	}
}

// buildRoundRobin implements the circle method: if the player count is
// odd a placeholder seat is added and every pairing involving it is
// dropped, leaving |players|-1 (even) or |players| (odd, pre-placeholder)
// rounds of floor(|players|/2) matches.
func buildRoundRobin(players []string, raceTo int, groupIndex int) ([]models.TournamentMatch, models.TournamentGroup) {
	names := append([]string(nil), players...)
	hasPlaceholder := len(names)%2 == 1
	if hasPlaceholder {
		names = append(names, "")
	}
	n := len(names)
	rounds := n - 1

	arr := make([]string, n)
	copy(arr, names)

	var matches []models.TournamentMatch
	group := models.TournamentGroup{Index: groupIndex, Players: append([]string(nil), players...)}

	matchIdx := 0
	for r := 0; r < rounds; r++ {
		for i := 0; i < n/2; i++ {
			a, b := arr[i], arr[n-1-i]
			if a == "" || b == "" {
				continue
			}
			p1, p2 := a, b
			id := fmt.Sprintf("G%d-R%d-M%d", groupIndex, r, matchIdx)
			matches = append(matches, models.TournamentMatch{
				ID:         id,
				Player1:    &p1,
				Player2:    &p2,
				RaceTo:     raceTo,
				Stage:      models.StageGroup,
				GroupIndex: groupIndex,
				RoundIndex: r,
				MatchIndex: matchIdx,
			})
			group.MatchIDs = append(group.MatchIDs, id)
			matchIdx++
		}
		// rotate all but the first seat
		fixed := arr[0]
		rest := append([]string{arr[n-1]}, arr[1:n-1]...)
		arr = append([]string{fixed}, rest...)
	}
	return matches, group
}

// groupKnockoutSizing picks the group count and per-group advance count
// for a given player count.
func groupKnockoutSizing(n int) (groups, advance int) {
	switch {
	case n <= 4:
		return 1, 2
	case n <= 6:
		return 2, 2
	case n <= 8:
		return 2, 2
	case n <= 10:
		return 3, 2
	default:
		return 4, 2
	}
}

// snakeSeed distributes players into groupCount groups, alternating
// direction each pass (1,2,3...,groupCount,groupCount,...,1,1,2,...).
func snakeSeed(players []string, groupCount int) [][]string {
	groups := make([][]string, groupCount)
	forward := true
	g := 0
	for _, p := range players {
		groups[g] = append(groups[g], p)
		if forward {
			g++
			if g == groupCount {
				g--
				forward = false
			}
		} else {
			g--
			if g < 0 {
				g = 0
				forward = true
			}
		}
	}
	return groups
}

// ReportTournamentFrame records a single frame result against the
// tournament's current match. winner must name one of that match's two
// players.
func ReportTournamentFrame(state *models.TournamentState, winner string, now int64) (*models.TournamentState, error) {
	if state == nil {
		return nil, ErrNoActiveGame
	}
	next := state.Clone()
	match := next.MatchByID(next.CurrentMatchID)
	if match == nil || match.Winner != nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, next.CurrentMatchID)
	}

	match.Frames = append(match.Frames, models.Frame{Winner: winner, ReportedAt: now})

	wins := 0
	for _, f := range match.Frames {
		if f.Winner == winner {
			wins++
		}
	}
	if wins < match.RaceTo {
		return &next, nil
	}

	w := winner
	match.Winner = &w
	next.CompletedMatchCount++

	if match.FeedsInto != nil {
		target := next.MatchByID(*match.FeedsInto)
		if target != nil {
			if match.FeedsSlot == models.FeedSlot1 {
				target.Player1 = &w
			} else {
				target.Player2 = &w
			}
			if target.Player1 != nil && target.Player2 != nil {
				if *target.Player1 == "" || *target.Player2 == "" {
					target.IsBye = true
				}
			}
		}
	}

	matchSlice := next.Matches
	propagateByes(matchSlice)
	recountCompleted(&next)

	if next.Stage == models.StageGroup && allGroupMatchesComplete(&next) {
		advanceGroupsToKnockout(&next)
	}

	if finalMatch := findFinalMatch(&next); finalMatch != nil && finalMatch.Winner != nil {
		next.Stage = models.StageComplete
		next.Winner = *finalMatch.Winner
	} else if next.Format == models.FormatRoundRobin && next.CompletedMatchCount >= next.TotalMatchCount {
		standings := GroupStandings(&next, 0)
		if len(standings) > 0 {
			next.Stage = models.StageComplete
			next.Winner = standings[0].Name
		}
	}

	if next.Stage != models.StageComplete {
		next.CurrentMatchID = nextPendingMatchID(&next)
	} else {
		next.CurrentMatchID = ""
	}

	return &next, nil
}

func recountCompleted(state *models.TournamentState) {
	completed := 0
	for _, m := range state.Matches {
		if m.Winner != nil && !m.IsBye {
			completed++
		}
	}
	state.CompletedMatchCount = completed
}

func allGroupMatchesComplete(state *models.TournamentState) bool {
	for _, m := range state.Matches {
		if m.Stage == models.StageGroup && m.Winner == nil {
			return false
		}
	}
	return len(state.Groups) > 0
}

// advanceGroupsToKnockout crossover-seeds each group's top finishers into
// the pre-built (null-slotted) knockout matches and flips the stage.
func advanceGroupsToKnockout(state *models.TournamentState) {
	_, advance := groupKnockoutSizing(len(state.PlayerNames))

	qualifiers := make([]string, 0, len(state.Groups)*advance)
	for rank := 0; rank < advance; rank++ {
		for gi := range state.Groups {
			standings := GroupStandings(state, gi)
			if rank < len(standings) {
				qualifiers = append(qualifiers, standings[rank].Name)
			}
		}
	}

	round0 := make([]*models.TournamentMatch, 0)
	for i := range state.Matches {
		if state.Matches[i].Stage == models.StageKnockout && state.Matches[i].RoundIndex == 0 {
			round0 = append(round0, &state.Matches[i])
		}
	}
	size := nextPowerOfTwo(len(round0) * 2)
	order := seedOrder(size)

	slots := make([]*string, size)
	for i, seed := range order {
		idx := seed - 1
		if idx < len(qualifiers) {
			name := qualifiers[idx]
			slots[i] = &name
		}
	}
	for i, m := range round0 {
		if 2*i < len(slots) {
			m.Player1 = slots[2*i]
		}
		if 2*i+1 < len(slots) {
			m.Player2 = slots[2*i+1]
		}
		if (m.Player1 == nil) != (m.Player2 == nil) {
			m.IsBye = true
		}
	}

	propagateByes(state.Matches)
	state.Stage = models.StageKnockout
}

func findFinalMatch(state *models.TournamentState) *models.TournamentMatch {
	for i := range state.Matches {
		if len(state.Matches[i].ID) > 6 && state.Matches[i].ID[len(state.Matches[i].ID)-6:] == "-FINAL" {
			return &state.Matches[i]
		}
	}
	return nil
}

func nextPendingMatchID(state *models.TournamentState) string {
	for _, m := range state.Matches {
		if m.Winner == nil && !m.IsBye && m.Player1 != nil && m.Player2 != nil {
			return m.ID
		}
	}
	return ""
}

// GroupStandings ranks players in groupIndex by (points desc, frame
// differential desc, frames won desc). Head-to-head is a documented hook
// that currently always compares equal.
func GroupStandings(state *models.TournamentState, groupIndex int) []models.GroupStanding {
	var group *models.TournamentGroup
	for i := range state.Groups {
		if state.Groups[i].Index == groupIndex {
			group = &state.Groups[i]
			break
		}
	}
	if group == nil {
		return nil
	}

	rows := make(map[string]*models.GroupStanding, len(group.Players))
	for _, p := range group.Players {
		rows[p] = &models.GroupStanding{Name: p}
	}

	for _, id := range group.MatchIDs {
		m := state.MatchByID(id)
		if m == nil || m.Winner == nil || m.Player1 == nil || m.Player2 == nil {
			continue
		}
		p1wins, p2wins := 0, 0
		for _, f := range m.Frames {
			if f.Winner == *m.Player1 {
				p1wins++
			} else if f.Winner == *m.Player2 {
				p2wins++
			}
		}
		r1, r2 := rows[*m.Player1], rows[*m.Player2]
		if r1 == nil || r2 == nil {
			continue
		}
		r1.Played++
		r2.Played++
		r1.FramesWon += p1wins
		r1.FramesLost += p2wins
		r2.FramesWon += p2wins
		r2.FramesLost += p1wins
		if *m.Winner == *m.Player1 {
			r1.Won++
			r1.Points += 2
			r2.Lost++
		} else {
			r2.Won++
			r2.Points += 2
			r1.Lost++
		}
	}

	out := make([]models.GroupStanding, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && lessStanding(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func lessStanding(a, b models.GroupStanding) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	da, db := a.FramesWon-a.FramesLost, b.FramesWon-b.FramesLost
	if da != db {
		return da > db
	}
	if a.FramesWon != b.FramesWon {
		return a.FramesWon > b.FramesWon
	}
	return headToHead(a.Name, b.Name) > 0
}

// headToHead is a documented tiebreak hook: it always
// returns 0 today, leaving standings order to the preceding keys.
func headToHead(a, b string) int {
	return 0
}
