package engine

import (
	"fmt"

	"github.com/google/uuid"

	"chalkitup/models"
)

// AddToQueuePayload describes a party joining the queue.
type AddToQueuePayload struct {
	PlayerNames []string
	GameMode    models.GameMode
	UserIDs     map[string]string
}

// AddToQueue appends a new waiting entry to queue, enforcing size, name,
// duplicate, and private-session constraints. It returns the
// new queue and the updated recentNames list; both are fresh slices, the
// inputs are never mutated.
func AddToQueue(queue []models.QueueEntry, payload AddToQueuePayload, recentNames []string, session models.SessionState, now int64) ([]models.QueueEntry, []string, error) {
	if len(queue) >= models.MaxQueueSize {
		return nil, nil, fmt.Errorf("%w: queue at capacity (%d)", ErrQueueFull, models.MaxQueueSize)
	}

	if err := validateAddPayload(payload); err != nil {
		return nil, nil, err
	}

	for _, name := range payload.PlayerNames {
		if nameInQueue(queue, name) {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, name)
		}
	}

	if session.IsPrivate {
		for _, name := range payload.PlayerNames {
			if !containsName(session.PrivatePlayerNames, name) {
				return nil, nil, fmt.Errorf("%w: %q", ErrPrivateSessionForbidden, name)
			}
		}
	}

	entry := models.QueueEntry{
		ID:          uuid.NewString(),
		PlayerNames: append([]string(nil), payload.PlayerNames...),
		JoinedAt:    now,
		Status:      models.QueueWaiting,
		GameMode:    payload.GameMode,
		UserIDs:     payload.UserIDs,
	}

	next := append(cloneQueue(queue), entry)
	return next, pushRecentNames(recentNames, payload.PlayerNames), nil
}

func validateAddPayload(payload AddToQueuePayload) error {
	if len(payload.PlayerNames) == 0 {
		return fmt.Errorf("%w: at least one player name is required", ErrInvalidInput)
	}
	if payload.GameMode == models.ModeDoubles && len(payload.PlayerNames) != 2 {
		return fmt.Errorf("%w: doubles requires exactly two names", ErrInvalidInput)
	}
	for _, name := range payload.PlayerNames {
		if name == "" {
			return fmt.Errorf("%w: player name cannot be empty", ErrInvalidInput)
		}
		if len(name) > models.MaxNameLength {
			return fmt.Errorf("%w: player name exceeds %d characters", ErrInvalidInput, models.MaxNameLength)
		}
	}
	return nil
}

// RemoveFromQueue drops entryId if present; idempotent.
func RemoveFromQueue(queue []models.QueueEntry, entryID string) []models.QueueEntry {
	next := make([]models.QueueEntry, 0, len(queue))
	for _, e := range queue {
		if e.ID == entryID {
			continue
		}
		next = append(next, e)
	}
	return next
}

// ReorderQueue moves entryId to newIndex, clamped to [0, len-1]. Idempotent
// when entryId is already at newIndex or absent.
func ReorderQueue(queue []models.QueueEntry, entryID string, newIndex int) []models.QueueEntry {
	idx := indexOf(queue, entryID)
	if idx < 0 {
		return cloneQueue(queue)
	}

	target := newIndex
	if target < 0 {
		target = 0
	}
	if target > len(queue)-1 {
		target = len(queue) - 1
	}
	if target == idx {
		return cloneQueue(queue)
	}

	next := make([]models.QueueEntry, 0, len(queue))
	moved := queue[idx]
	for i, e := range queue {
		if i == idx {
			continue
		}
		next = append(next, e)
	}
	// next now has len(queue)-1 entries; target is an index into the
	// original queue, so insert at min(target, len(next)).
	insertAt := target
	if insertAt > len(next) {
		insertAt = len(next)
	}
	next = append(next[:insertAt], append([]models.QueueEntry{moved}, next[insertAt:]...)...)
	return next
}

// HoldPosition marks entryId on_hold with a deadline holdMaxMinutes from
// now. No-op if the entry is absent.
func HoldPosition(queue []models.QueueEntry, entryID string, holdMaxMinutes int, now int64) []models.QueueEntry {
	return mapEntry(queue, entryID, func(e models.QueueEntry) models.QueueEntry {
		deadline := now + int64(holdMaxMinutes)*60*1000
		e.Status = models.QueueOnHold
		e.HoldUntil = &deadline
		e.NoShowDeadline = nil
		return e
	})
}

// UnholdPosition returns entryId to waiting, clearing its hold deadline.
func UnholdPosition(queue []models.QueueEntry, entryID string) []models.QueueEntry {
	return mapEntry(queue, entryID, func(e models.QueueEntry) models.QueueEntry {
		e.Status = models.QueueWaiting
		e.HoldUntil = nil
		return e
	})
}

// ExpireHeldEntries drops any on_hold entry whose holdUntil has passed.
// The engine never schedules this itself; callers invoke it
// synchronously, e.g. at the top of StartNextGame.
func ExpireHeldEntries(queue []models.QueueEntry, now int64) []models.QueueEntry {
	next := make([]models.QueueEntry, 0, len(queue))
	for _, e := range queue {
		if e.Status == models.QueueOnHold && e.HoldUntil != nil && *e.HoldUntil < now {
			continue
		}
		next = append(next, e)
	}
	return next
}

// MoveToBack pulls entryId to the end of the queue as a fresh waiting
// entry, clearing any deadlines.
func MoveToBack(queue []models.QueueEntry, entryID string) []models.QueueEntry {
	idx := indexOf(queue, entryID)
	if idx < 0 {
		return cloneQueue(queue)
	}

	entry := queue[idx].Clone()
	entry.Status = models.QueueWaiting
	entry.HoldUntil = nil
	entry.NoShowDeadline = nil

	next := make([]models.QueueEntry, 0, len(queue))
	for i, e := range queue {
		if i == idx {
			continue
		}
		next = append(next, e)
	}
	return append(next, entry)
}

func mapEntry(queue []models.QueueEntry, entryID string, fn func(models.QueueEntry) models.QueueEntry) []models.QueueEntry {
	next := make([]models.QueueEntry, len(queue))
	for i, e := range queue {
		if e.ID == entryID {
			next[i] = fn(e.Clone())
		} else {
			next[i] = e.Clone()
		}
	}
	return next
}

func indexOf(queue []models.QueueEntry, entryID string) int {
	for i, e := range queue {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}

func nameInQueue(queue []models.QueueEntry, name string) bool {
	for _, e := range queue {
		if containsName(e.PlayerNames, name) {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func cloneQueue(queue []models.QueueEntry) []models.QueueEntry {
	next := make([]models.QueueEntry, len(queue))
	for i, e := range queue {
		next[i] = e.Clone()
	}
	return next
}

func pushRecentNames(recentNames []string, newNames []string) []string {
	next := make([]string, 0, len(recentNames)+len(newNames))
	seen := make(map[string]bool, len(recentNames)+len(newNames))
	for _, n := range newNames {
		if !seen[n] {
			seen[n] = true
			next = append(next, n)
		}
	}
	for _, n := range recentNames {
		if !seen[n] {
			seen[n] = true
			next = append(next, n)
		}
	}
	if len(next) > models.MaxRecentNames {
		next = next[:models.MaxRecentNames]
	}
	return next
}
