package coordinator

import (
	"context"

	"chalkitup/engine"
	"chalkitup/models"
)

// AddToQueue implements the AddToQueue command.
func (c *Coordinator) AddToQueue(ctx context.Context, tableID string, payload engine.AddToQueuePayload) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		queue, recent, err := engine.AddToQueue(t.Queue, payload, t.RecentNames, t.Session, c.now())
		if err != nil {
			return models.Table{}, err
		}
		t.Queue = queue
		t.RecentNames = recent
		return t, nil
	})
}

// RemoveFromQueue implements the RemoveFromQueue command.
func (c *Coordinator) RemoveFromQueue(ctx context.Context, tableID, entryID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Queue = engine.RemoveFromQueue(t.Queue, entryID)
		return t, nil
	})
}

// ReorderQueue implements the ReorderQueue command.
func (c *Coordinator) ReorderQueue(ctx context.Context, tableID, entryID string, newIndex int) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Queue = engine.ReorderQueue(t.Queue, entryID, newIndex)
		return t, nil
	})
}

// HoldPosition implements the HoldPosition command.
func (c *Coordinator) HoldPosition(ctx context.Context, tableID, entryID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Queue = engine.HoldPosition(t.Queue, entryID, t.Settings.HoldMaxMinutes, c.now())
		return t, nil
	})
}

// UnholdPosition implements the UnholdPosition command.
func (c *Coordinator) UnholdPosition(ctx context.Context, tableID, entryID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		t.Queue = engine.UnholdPosition(t.Queue, entryID)
		return t, nil
	})
}

// ClaimQueueSpot attaches a known user id to one of the names on an
// existing queue entry, for lifetime-stats attribution.
func (c *Coordinator) ClaimQueueSpot(ctx context.Context, tableID, entryID, playerName, userID string) (models.Table, error) {
	return c.withTable(ctx, tableID, func(t models.Table) (models.Table, error) {
		found := false
		queue := make([]models.QueueEntry, len(t.Queue))
		for i, e := range t.Queue {
			ec := e.Clone()
			if ec.ID == entryID {
				for _, name := range ec.PlayerNames {
					if name == playerName {
						if ec.UserIDs == nil {
							ec.UserIDs = map[string]string{}
						}
						ec.UserIDs[playerName] = userID
						found = true
					}
				}
			}
			queue[i] = ec
		}
		if !found {
			return models.Table{}, engine.ErrNotFound
		}
		t.Queue = queue
		return t, nil
	})
}
