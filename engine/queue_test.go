package engine

import (
	"errors"
	"testing"

	"chalkitup/models"
)

func TestAddToQueue_Basic(t *testing.T) {
	queue, recent, err := AddToQueue(nil, AddToQueuePayload{
		PlayerNames: []string{"Alice"},
		GameMode:    models.ModeSingles,
	}, nil, models.SessionState{}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(queue))
	}
	if queue[0].Status != models.QueueWaiting {
		t.Errorf("expected waiting status, got %v", queue[0].Status)
	}
	if len(recent) != 1 || recent[0] != "Alice" {
		t.Errorf("expected recent names [Alice], got %v", recent)
	}
}

func TestAddToQueue_RejectsDuplicateName(t *testing.T) {
	existing, _, err := AddToQueue(nil, AddToQueuePayload{PlayerNames: []string{"Bob"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	_, _, err = AddToQueue(existing, AddToQueuePayload{PlayerNames: []string{"Bob"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 2000)
	if !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("expected ErrDuplicatePlayer, got %v", err)
	}
}

func TestAddToQueue_RejectsWhenFull(t *testing.T) {
	var queue []models.QueueEntry
	for i := 0; i < models.MaxQueueSize; i++ {
		var err error
		queue, _, err = AddToQueue(queue, AddToQueuePayload{
			PlayerNames: []string{uniqueName(i)},
			GameMode:    models.ModeSingles,
		}, nil, models.SessionState{}, int64(i))
		if err != nil {
			t.Fatalf("unexpected error filling queue: %v", err)
		}
	}
	_, _, err := AddToQueue(queue, AddToQueuePayload{PlayerNames: []string{"Overflow"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 9999)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestAddToQueue_DoublesRequiresTwoNames(t *testing.T) {
	_, _, err := AddToQueue(nil, AddToQueuePayload{PlayerNames: []string{"Solo"}, GameMode: models.ModeDoubles}, nil, models.SessionState{}, 1000)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddToQueue_PrivateSessionForbidsUnlistedPlayer(t *testing.T) {
	session := models.SessionState{IsPrivate: true, PrivatePlayerNames: []string{"Alice"}}
	_, _, err := AddToQueue(nil, AddToQueuePayload{PlayerNames: []string{"Mallory"}, GameMode: models.ModeSingles}, nil, session, 1000)
	if !errors.Is(err, ErrPrivateSessionForbidden) {
		t.Fatalf("expected ErrPrivateSessionForbidden, got %v", err)
	}
}

func TestAddToQueue_DoesNotMutateInput(t *testing.T) {
	original, _, err := AddToQueue(nil, AddToQueuePayload{PlayerNames: []string{"Alice"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 1000)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	snapshot := append([]models.QueueEntry(nil), original...)

	if _, _, err := AddToQueue(original, AddToQueuePayload{PlayerNames: []string{"Bob"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 2000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(original) != len(snapshot) || original[0].ID != snapshot[0].ID {
		t.Fatalf("AddToQueue mutated its input slice")
	}
}

func TestRemoveFromQueue_Idempotent(t *testing.T) {
	queue, _, _ := AddToQueue(nil, AddToQueuePayload{PlayerNames: []string{"Alice"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 1000)
	id := queue[0].ID

	once := RemoveFromQueue(queue, id)
	twice := RemoveFromQueue(once, id)
	if len(once) != 0 || len(twice) != 0 {
		t.Fatalf("expected empty queue after removal, got %d then %d", len(once), len(twice))
	}
}

func TestReorderQueue_ClampsOutOfRange(t *testing.T) {
	var queue []models.QueueEntry
	for i := 0; i < 3; i++ {
		queue, _, _ = AddToQueue(queue, AddToQueuePayload{PlayerNames: []string{uniqueName(i)}, GameMode: models.ModeSingles}, nil, models.SessionState{}, int64(i))
	}
	firstID := queue[0].ID

	moved := ReorderQueue(queue, firstID, 999)
	if moved[len(moved)-1].ID != firstID {
		t.Fatalf("expected entry moved to the end when newIndex overshoots, got order %v", ids(moved))
	}
}

func TestHoldAndUnholdPosition(t *testing.T) {
	queue, _, _ := AddToQueue(nil, AddToQueuePayload{PlayerNames: []string{"Alice"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 1000)
	id := queue[0].ID

	held := HoldPosition(queue, id, 10, 1000)
	if held[0].Status != models.QueueOnHold || held[0].HoldUntil == nil {
		t.Fatalf("expected entry on hold with a deadline, got %+v", held[0])
	}

	unheld := UnholdPosition(held, id)
	if unheld[0].Status != models.QueueWaiting || unheld[0].HoldUntil != nil {
		t.Fatalf("expected entry waiting with no deadline, got %+v", unheld[0])
	}
}

func TestExpireHeldEntries_DropsPastDeadline(t *testing.T) {
	queue, _, _ := AddToQueue(nil, AddToQueuePayload{PlayerNames: []string{"Alice"}, GameMode: models.ModeSingles}, nil, models.SessionState{}, 1000)
	held := HoldPosition(queue, queue[0].ID, 1, 1000)

	stillHeld := ExpireHeldEntries(held, 1000)
	if len(stillHeld) != 1 {
		t.Fatalf("expected hold not yet expired, got %d entries", len(stillHeld))
	}

	expired := ExpireHeldEntries(held, 1000+2*60*1000)
	if len(expired) != 0 {
		t.Fatalf("expected hold expired and dropped, got %d entries", len(expired))
	}
}

func TestMoveToBack_ClearsDeadlinesAndReordersToEnd(t *testing.T) {
	var queue []models.QueueEntry
	for i := 0; i < 2; i++ {
		queue, _, _ = AddToQueue(queue, AddToQueuePayload{PlayerNames: []string{uniqueName(i)}, GameMode: models.ModeSingles}, nil, models.SessionState{}, int64(i))
	}
	firstID := queue[0].ID
	queue = HoldPosition(queue, firstID, 5, 1000)

	moved := MoveToBack(queue, firstID)
	if moved[len(moved)-1].ID != firstID {
		t.Fatalf("expected %s moved to the back, got order %v", firstID, ids(moved))
	}
	if moved[len(moved)-1].Status != models.QueueWaiting || moved[len(moved)-1].HoldUntil != nil {
		t.Fatalf("expected moved entry reset to waiting with no deadlines, got %+v", moved[len(moved)-1])
	}
}

func uniqueName(i int) string {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Heidi"}
	return names[i%len(names)] + string(rune('A'+i/len(names)))
}

func ids(queue []models.QueueEntry) []string {
	out := make([]string, len(queue))
	for i, e := range queue {
		out[i] = e.ID
	}
	return out
}
