package engine

import (
	"testing"

	"chalkitup/models"
)

func TestUpdateStatsAfterGame_TracksWinsLossesAndStreak(t *testing.T) {
	game := &models.CurrentGame{
		Players: []models.GamePlayer{
			{Name: "Alice", Side: models.SideHolder},
			{Name: "Bob", Side: models.SideChallenger},
		},
	}
	stats := models.SessionStats{PlayerStats: map[string]models.PlayerStats{}}

	stats = UpdateStatsAfterGame(stats, game, Result{WinningSide: models.SideHolder, WinnerNames: []string{"Alice"}}, 1000)

	alice := stats.PlayerStats["Alice"]
	if alice.Wins != 1 || alice.CurrentStreak != 1 || alice.GamesPlayed != 1 {
		t.Fatalf("unexpected Alice stats: %+v", alice)
	}
	bob := stats.PlayerStats["Bob"]
	if bob.Losses != 1 || bob.CurrentStreak != 0 {
		t.Fatalf("unexpected Bob stats: %+v", bob)
	}
	if stats.GamesPlayed != 1 {
		t.Fatalf("expected 1 game played, got %d", stats.GamesPlayed)
	}
}

func TestUpdateStatsAfterGame_CrownsKingAtThreshold(t *testing.T) {
	game := &models.CurrentGame{
		ConsecutiveWins: 2,
		Players: []models.GamePlayer{
			{Name: "Alice", Side: models.SideHolder},
			{Name: "Bob", Side: models.SideChallenger},
		},
	}
	stats := models.SessionStats{PlayerStats: map[string]models.PlayerStats{
		"Alice": {CurrentStreak: 2},
	}}

	stats = UpdateStatsAfterGame(stats, game, Result{WinningSide: models.SideHolder, WinnerNames: []string{"Alice"}}, 5000)

	if stats.KingOfTable == nil || stats.KingOfTable.Name != "Alice" || stats.KingOfTable.ConsecutiveWins != 3 {
		t.Fatalf("expected Alice crowned king at streak 3, got %+v", stats.KingOfTable)
	}
}

func TestUpdateStatsAfterGame_ChallengerWinNeverCrownsOnStalePersonalStreak(t *testing.T) {
	// Alice previously won the table as holder repeatedly (personal
	// CurrentStreak climbed to 4) but was then moved to the back of the
	// queue by the win limit. She now wins again, this time re-entering as
	// challenger. Per spec.md:185 a challenger win is always table-
	// continuity 1 and must not crown, even though her own CurrentStreak
	// bookkeeping is still high.
	game := &models.CurrentGame{
		ConsecutiveWins: 0,
		Players: []models.GamePlayer{
			{Name: "Dave", Side: models.SideHolder},
			{Name: "Alice", Side: models.SideChallenger},
		},
	}
	stats := models.SessionStats{PlayerStats: map[string]models.PlayerStats{
		"Alice": {CurrentStreak: 4},
	}}

	stats = UpdateStatsAfterGame(stats, game, Result{WinningSide: models.SideChallenger, WinnerNames: []string{"Alice"}}, 5000)

	if stats.KingOfTable != nil {
		t.Fatalf("expected no king crowned on a challenger win, got %+v", stats.KingOfTable)
	}
}

func TestUpdateStatsAfterGame_TieDoesNotDethroneIncumbent(t *testing.T) {
	game := &models.CurrentGame{
		ConsecutiveWins: 2,
		Players: []models.GamePlayer{
			{Name: "Bob", Side: models.SideHolder},
			{Name: "Carol", Side: models.SideChallenger},
		},
	}
	stats := models.SessionStats{
		PlayerStats: map[string]models.PlayerStats{"Bob": {CurrentStreak: 2}},
		KingOfTable: &models.KingOfTable{Name: "Alice", ConsecutiveWins: 3, CrownedAt: 1000},
	}

	stats = UpdateStatsAfterGame(stats, game, Result{WinningSide: models.SideHolder, WinnerNames: []string{"Bob"}}, 5000)

	if stats.KingOfTable.Name != "Alice" {
		t.Fatalf("expected incumbent king to remain on a tied streak, got %+v", stats.KingOfTable)
	}
}

func TestUpdateStatsAfterKillerGame_WinnerStreaksEveryoneElseResets(t *testing.T) {
	ks := &models.KillerState{
		Players: []models.KillerPlayer{
			{Name: "Alice", IsEliminated: false},
			{Name: "Bob", IsEliminated: true},
			{Name: "Carol", IsEliminated: true},
		},
	}
	stats := models.SessionStats{PlayerStats: map[string]models.PlayerStats{
		"Bob": {CurrentStreak: 4},
	}}

	stats = UpdateStatsAfterKillerGame(stats, ks, "Alice", 1000)

	if stats.PlayerStats["Alice"].Wins != 1 || stats.PlayerStats["Alice"].CurrentStreak != 1 {
		t.Fatalf("unexpected winner stats: %+v", stats.PlayerStats["Alice"])
	}
	if stats.PlayerStats["Bob"].CurrentStreak != 0 {
		t.Fatalf("expected Bob's streak reset, got %+v", stats.PlayerStats["Bob"])
	}
}

func TestLeaderboard_RanksByWinsThenRateThenGames(t *testing.T) {
	stats := models.SessionStats{PlayerStats: map[string]models.PlayerStats{
		"Alice": {Wins: 5, Losses: 5, GamesPlayed: 10},
		"Bob":   {Wins: 5, Losses: 1, GamesPlayed: 6},
		"Carol": {Wins: 2, Losses: 0, GamesPlayed: 2},
	}}

	rows := Leaderboard(stats)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Name != "Bob" {
		t.Fatalf("expected Bob ranked first on win rate, got %s", rows[0].Name)
	}
	if rows[1].Name != "Alice" {
		t.Fatalf("expected Alice ranked second, got %s", rows[1].Name)
	}
	if rows[2].Name != "Carol" {
		t.Fatalf("expected Carol ranked third with fewer wins, got %s", rows[2].Name)
	}
}

func TestLifetimeAggregate_SkipsUnknownUsersAndAccumulates(t *testing.T) {
	known := map[string]string{"u1": "Alice"}
	deltas := []models.LifetimeStatsUpdate{
		{UserID: "u1", Mode: models.ModeSingles, Won: true, At: 1000},
		{UserID: "u1", Mode: models.ModeSingles, Won: false, At: 2000},
		{UserID: "ghost", Mode: models.ModeSingles, Won: true, At: 3000},
	}

	result := LifetimeAggregate(nil, deltas, known)

	if _, ok := result["ghost"]; ok {
		t.Fatalf("expected unknown user id to be skipped")
	}
	u1 := result["u1"]
	if u1.GamesPlayed != 2 || u1.Wins != 1 || u1.Losses != 1 {
		t.Fatalf("unexpected aggregate for u1: %+v", u1)
	}
	if u1.CurrentStreak != 0 {
		t.Fatalf("expected streak reset by the trailing loss, got %d", u1.CurrentStreak)
	}
	if u1.ByMode[models.ModeSingles].GamesPlayed != 2 {
		t.Fatalf("expected per-mode breakdown tracked, got %+v", u1.ByMode[models.ModeSingles])
	}
}

func TestLifetimeAggregate_DoesNotMutateExisting(t *testing.T) {
	existing := map[string]models.LifetimeStats{
		"u1": {GamesPlayed: 1, ByMode: map[models.GameMode]models.ModeStats{models.ModeSingles: {GamesPlayed: 1}}},
	}
	known := map[string]string{"u1": "Alice"}
	deltas := []models.LifetimeStatsUpdate{{UserID: "u1", Mode: models.ModeSingles, Won: true, At: 1000}}

	result := LifetimeAggregate(existing, deltas, known)

	if existing["u1"].GamesPlayed != 1 {
		t.Fatalf("expected original map left untouched, got %+v", existing["u1"])
	}
	if result["u1"].GamesPlayed != 2 {
		t.Fatalf("expected result reflecting the new delta, got %+v", result["u1"])
	}
}
