package models

import "testing"

func TestTableClone_MutatingCloneLeavesOriginalUntouched(t *testing.T) {
	idleSince := int64(500)
	original := Table{
		ID:    "t1",
		Queue: []QueueEntry{{ID: "e1", PlayerNames: []string{"Alice"}}},
		CurrentGame: &CurrentGame{
			ID:          "g1",
			Players:     []GamePlayer{{Name: "Alice", Side: SideHolder}},
			KillerState: &KillerState{Players: []KillerPlayer{{Name: "Alice", Lives: 3}}},
		},
		SessionStats: SessionStats{PlayerStats: map[string]PlayerStats{"Alice": {Wins: 1}}},
		IdleSince:    &idleSince,
	}

	clone := original.Clone()
	clone.Queue[0].PlayerNames[0] = "Mutated"
	clone.CurrentGame.KillerState.Players[0].Lives = 0
	clone.SessionStats.PlayerStats["Alice"] = PlayerStats{Wins: 99}
	*clone.IdleSince = 999

	if original.Queue[0].PlayerNames[0] != "Alice" {
		t.Fatalf("expected original queue entry untouched, got %q", original.Queue[0].PlayerNames[0])
	}
	if original.CurrentGame.KillerState.Players[0].Lives != 3 {
		t.Fatalf("expected original killer state untouched, got %d", original.CurrentGame.KillerState.Players[0].Lives)
	}
	if original.SessionStats.PlayerStats["Alice"].Wins != 1 {
		t.Fatalf("expected original stats untouched, got %+v", original.SessionStats.PlayerStats["Alice"])
	}
	if *original.IdleSince != 500 {
		t.Fatalf("expected original idleSince untouched, got %d", *original.IdleSince)
	}
}

func TestTableClone_CopiesTournamentStateDeeply(t *testing.T) {
	original := Table{
		CurrentGame: &CurrentGame{
			TournamentState: &TournamentState{
				PlayerNames: []string{"Alice", "Bob"},
				Matches:     []TournamentMatch{{ID: "m1"}},
			},
		},
	}

	clone := original.Clone()
	clone.CurrentGame.TournamentState.PlayerNames[0] = "Mutated"

	if original.CurrentGame.TournamentState.PlayerNames[0] != "Alice" {
		t.Fatalf("expected original tournament state untouched, got %q", original.CurrentGame.TournamentState.PlayerNames[0])
	}
}

func TestQueueEntryClone_DeepCopiesOptionalFields(t *testing.T) {
	hold := int64(100)
	original := QueueEntry{
		ID:          "e1",
		PlayerNames: []string{"Alice"},
		HoldUntil:   &hold,
		UserIDs:     map[string]string{"Alice": "u1"},
	}

	clone := original.Clone()
	clone.PlayerNames[0] = "Mutated"
	*clone.HoldUntil = 999
	clone.UserIDs["Alice"] = "mutated"

	if original.PlayerNames[0] != "Alice" {
		t.Fatalf("expected original player names untouched, got %v", original.PlayerNames)
	}
	if *original.HoldUntil != 100 {
		t.Fatalf("expected original hold deadline untouched, got %d", *original.HoldUntil)
	}
	if original.UserIDs["Alice"] != "u1" {
		t.Fatalf("expected original user id map untouched, got %v", original.UserIDs)
	}
}
