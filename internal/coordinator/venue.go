package coordinator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"chalkitup/engine"
	"chalkitup/internal/storage/sqlstore"
	"chalkitup/models"
)

// CreateVenue implements the CreateVenue command.
func (c *Coordinator) CreateVenue(ctx context.Context, name, ownerID, ownerName string) (models.Venue, error) {
	venue := models.Venue{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		CreatedAt: c.now(),
	}
	return sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Venue, error) {
		if err := txn.WriteVenue(venue); err != nil {
			return models.Venue{}, err
		}
		return venue, nil
	})
}

// GetVenue fetches a Venue by id.
func (c *Coordinator) GetVenue(ctx context.Context, id string) (models.Venue, error) {
	return sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Venue, error) {
		venue, err := txn.ReadVenue(id)
		return venue, mapStoreError(err)
	})
}

// GetVenuesByOwner lists every venue owned by ownerID.
func (c *Coordinator) GetVenuesByOwner(ctx context.Context, ownerID string) ([]models.Venue, error) {
	return sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) ([]models.Venue, error) {
		return txn.VenuesByOwner(ownerID)
	})
}

// UpdateVenue rewrites a venue's display fields; tableIds is managed only
// by CreateTable/ClaimTable, never here.
func (c *Coordinator) UpdateVenue(ctx context.Context, id string, name, ownerName string, logoURL *string) (models.Venue, error) {
	return sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Venue, error) {
		venue, err := txn.ReadVenue(id)
		if err != nil {
			return models.Venue{}, mapStoreError(err)
		}
		if name != "" {
			venue.Name = name
		}
		if ownerName != "" {
			venue.OwnerName = ownerName
		}
		if logoURL != nil {
			venue.LogoURL = logoURL
		}
		if err := txn.WriteVenue(venue); err != nil {
			return models.Venue{}, err
		}
		return venue, nil
	})
}

// DeleteVenue implements the DeleteVenue command: fails VenueNotEmpty if
// the venue still owns any tables.
func (c *Coordinator) DeleteVenue(ctx context.Context, id string) error {
	_, err := sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (struct{}, error) {
		venue, readErr := txn.ReadVenue(id)
		if readErr != nil {
			return struct{}{}, mapStoreError(readErr)
		}
		if len(venue.TableIDs) > 0 {
			return struct{}{}, fmt.Errorf("%w: venue %s owns %d tables", engine.ErrVenueNotEmpty, id, len(venue.TableIDs))
		}
		return struct{}{}, txn.DeleteVenue(id)
	})
	return err
}

// ClaimTable implements the ClaimTable command: a venue owner
// links an existing, unclaimed table to their venue by proving PIN
// knowledge. The link is written atomically in both directions
// (venue.tableIds and table.venueId) inside a single transaction — no
// distributed lock is required because both documents are touched by the
// same RunTransaction call.
func (c *Coordinator) ClaimTable(ctx context.Context, venueID, shortCode, pin string) (models.Table, error) {
	normalized := engine.NormalizeShortCode(shortCode)
	if !engine.ValidateShortCode(normalized) {
		return models.Table{}, fmt.Errorf("%w: malformed short code", engine.ErrInvalidInput)
	}

	table, err := sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Table, error) {
		tableID, err := txn.ReadIndex(normalized)
		if err != nil {
			return models.Table{}, mapStoreError(err)
		}
		table, version, err := txn.ReadTable(tableID)
		if err != nil {
			return models.Table{}, mapStoreError(err)
		}
		if !engine.VerifyPin(pin, table.Settings.PinHash) {
			return models.Table{}, engine.ErrAuthFailed
		}
		if table.VenueID != nil && *table.VenueID != venueID {
			return models.Table{}, fmt.Errorf("%w: table already claimed by another venue", engine.ErrConflict)
		}

		venue, err := txn.ReadVenue(venueID)
		if err != nil {
			return models.Table{}, mapStoreError(err)
		}

		if table.VenueID == nil {
			venue.TableIDs = append(venue.TableIDs, table.ID)
			if err := txn.WriteVenue(venue); err != nil {
				return models.Table{}, err
			}
		}

		table.VenueID = &venueID
		if err := txn.WriteTable(table, version); err != nil {
			return models.Table{}, err
		}
		return table, nil
	})
	if err != nil {
		return models.Table{}, err
	}

	c.publish(ctx, table)
	return table, nil
}
