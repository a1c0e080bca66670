package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chalkitup/engine"
	"chalkitup/internal/storage/sqlstore"
	"chalkitup/models"
)

// maxShortCodeAttempts bounds short-code generation retries on collision.
const maxShortCodeAttempts = 5

// CreateTable allocates an id, a unique short code (retried on index
// collision), hashes the pin, and
// writes the table plus its short-code index atomically. If venueID is
// non-empty the new table id is also linked into that venue's tableIds.
func (c *Coordinator) CreateTable(ctx context.Context, venueName, tableName, pin string, venueID *string) (models.Table, error) {
	table := models.Table{
		ID:           uuid.NewString(),
		Name:         tableName,
		VenueName:    venueName,
		VenueID:      venueID,
		Status:       models.StatusIdle,
		CreatedAt:    c.now(),
		LastActiveAt: c.now(),
		Settings:     models.DefaultSettings(engine.HashPin(pin), tableName),
		SessionStats: models.SessionStats{PlayerStats: map[string]models.PlayerStats{}},
		Session:      models.SessionState{StartedAt: c.now()},
	}
	now := c.now()
	table.IdleSince = &now

	var created models.Table
	var lastErr error

	for attempt := 0; attempt < maxShortCodeAttempts; attempt++ {
		code, err := engine.GenerateShortCode()
		if err != nil {
			return models.Table{}, fmt.Errorf("generate short code: %w", err)
		}
		table.ShortCode = code

		result, err := sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Table, error) {
			if writeErr := txn.WriteIndex(code, table.ID); writeErr != nil {
				return models.Table{}, writeErr
			}
			if writeErr := txn.WriteTable(table, 0); writeErr != nil {
				return models.Table{}, writeErr
			}
			if venueID != nil {
				venue, readErr := txn.ReadVenue(*venueID)
				if readErr != nil {
					return models.Table{}, readErr
				}
				venue.TableIDs = append(venue.TableIDs, table.ID)
				if writeErr := txn.WriteVenue(venue); writeErr != nil {
					return models.Table{}, writeErr
				}
			}
			return table, nil
		})

		if err == nil {
			created = result
			lastErr = nil
			break
		}
		if errors.Is(err, engine.ErrConflict) {
			lastErr = err
			continue
		}
		return models.Table{}, err
	}

	if lastErr != nil {
		return models.Table{}, fmt.Errorf("%w: short code generation failed after %d attempts", engine.ErrShortCodeCollision, maxShortCodeAttempts)
	}

	c.publish(ctx, created)
	return created, nil
}

// GetTableByShortCode resolves a user-typed code to its current Table.
func (c *Coordinator) GetTableByShortCode(ctx context.Context, code string) (models.Table, error) {
	normalized := engine.NormalizeShortCode(code)
	if !engine.ValidateShortCode(normalized) {
		return models.Table{}, fmt.Errorf("%w: malformed short code", engine.ErrInvalidInput)
	}

	return sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Table, error) {
		tableID, err := txn.ReadIndex(normalized)
		if err != nil {
			return models.Table{}, err
		}
		table, _, err := txn.ReadTable(tableID)
		if err != nil {
			return models.Table{}, mapStoreError(err)
		}
		return table, nil
	})
}

// GetTable fetches a Table by id without opening a mutating transaction.
func (c *Coordinator) GetTable(ctx context.Context, id string) (models.Table, error) {
	return sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Table, error) {
		table, _, err := txn.ReadTable(id)
		return table, err
	})
}

// DeleteTable removes a table and its short-code index; fails if a game
// is in progress, matching the venue-delete safety rule.
func (c *Coordinator) DeleteTable(ctx context.Context, id string) error {
	_, err := sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (struct{}, error) {
		table, _, readErr := txn.ReadTable(id)
		if readErr != nil {
			return struct{}{}, readErr
		}
		if table.CurrentGame != nil {
			return struct{}{}, fmt.Errorf("%w: game in progress", engine.ErrConflict)
		}
		if delErr := txn.DeleteIndex(table.ShortCode); delErr != nil {
			return struct{}{}, delErr
		}
		if delErr := txn.DeleteTable(id); delErr != nil {
			return struct{}{}, delErr
		}
		return struct{}{}, nil
	})
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.ErrNotFound
	}
	return err
}
