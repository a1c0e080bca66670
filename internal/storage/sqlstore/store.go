package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chalkitup/engine"
	"chalkitup/models"
)

// Store is the concrete PersistenceAdapter the coordinator is built
// against. Any gorm dialect works; cmd/server wires sqlite for local runs
// and mysql in production.
type Store struct {
	db *gorm.DB
}

// New opens a Store against an already-migrated *gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// HealthCheck verifies the underlying database connection is reachable,
// used by the /healthz surface.
func (s *Store) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates or updates every table this package owns.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&TableRecord{},
		&ShortCodeIndex{},
		&HistoryRecord{},
		&HistoryParticipant{},
		&VenueRecord{},
		&UserLifetimeRecord{},
	)
}

// Txn is the per-call handle RunTransaction hands to its callback; every
// read/write method below takes one so a whole command body runs inside a
// single database transaction.
type Txn struct {
	db  *gorm.DB
	ctx context.Context
}

// RunTransaction implements the adapter's `RunTransaction(ctx, fn) →
// result` contract. fn may be re-invoked by callers that wrap
// this in their own bounded retry loop on ErrConflict; gorm's Transaction
// does not itself retry — conflict detection happens via the expected
// version check in WriteTable.
func RunTransaction[T any](ctx context.Context, s *Store, fn func(txn *Txn) (T, error)) (T, error) {
	var result T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := &Txn{db: tx, ctx: ctx}
		r, err := fn(t)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// ReadTable reads the current Table and its version, row-locking it so
// concurrent writers in other transactions block until this one commits.
func (t *Txn) ReadTable(id string) (models.Table, int64, error) {
	var row TableRecord
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Table{}, 0, engine.ErrNotFound
	}
	if err != nil {
		return models.Table{}, 0, fmt.Errorf("read table: %w", err)
	}
	var table models.Table
	if err := json.Unmarshal(row.Data, &table); err != nil {
		return models.Table{}, 0, fmt.Errorf("decode table %s: %w", id, err)
	}
	table.Version = row.Version
	return table, row.Version, nil
}

// WriteTable persists table under id if its row is still at
// expectedVersion, bumping the version; zero rows affected means a
// concurrent writer won the race and the caller should surface Conflict.
func (t *Txn) WriteTable(table models.Table, expectedVersion int64) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode table %s: %w", table.ID, err)
	}

	if expectedVersion == 0 {
		row := TableRecord{ID: table.ID, ShortCode: table.ShortCode, VenueID: table.VenueID, Data: data, Version: 1}
		if err := t.db.Create(&row).Error; err != nil {
			return fmt.Errorf("create table %s: %w", table.ID, err)
		}
		return nil
	}

	res := t.db.Model(&TableRecord{}).
		Where("id = ? AND version = ?", table.ID, expectedVersion).
		Updates(map[string]any{
			"short_code": table.ShortCode,
			"venue_id":   table.VenueID,
			"data":       data,
			"version":    expectedVersion + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("write table %s: %w", table.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return engine.ErrConflict
	}
	return nil
}

// DeleteTable removes a table row outright; callers must have already
// verified no current game is in progress.
func (t *Txn) DeleteTable(id string) error {
	return t.db.Delete(&TableRecord{}, "id = ?", id).Error
}

// ReadIndex resolves a short code to a table id.
func (t *Txn) ReadIndex(code string) (string, error) {
	var row ShortCodeIndex
	err := t.db.First(&row, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", engine.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read index %s: %w", code, err)
	}
	return row.TableID, nil
}

// WriteIndex inserts a fresh code→table mapping; a unique-constraint
// violation surfaces as Conflict so CreateTable can retry with a new code.
func (t *Txn) WriteIndex(code, tableID string) error {
	if err := t.db.Create(&ShortCodeIndex{Code: code, TableID: tableID}).Error; err != nil {
		return fmt.Errorf("%w: %v", engine.ErrConflict, err)
	}
	return nil
}

// DeleteIndex removes a short-code mapping.
func (t *Txn) DeleteIndex(code string) error {
	return t.db.Delete(&ShortCodeIndex{}, "code = ?", code).Error
}

// AppendHistory writes a completed-game record plus its participant join
// rows, used for the "games played by uid" index query.
func (t *Txn) AppendHistory(record models.GameHistoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode history %s: %w", record.ID, err)
	}
	if err := t.db.Create(&HistoryRecord{ID: record.ID, TableID: record.TableID, EndedAt: record.EndedAt, Data: data}).Error; err != nil {
		return fmt.Errorf("append history %s: %w", record.ID, err)
	}
	for _, uid := range record.PlayerUIDList {
		row := HistoryParticipant{HistoryID: record.ID, UserID: uid, TableID: record.TableID, EndedAt: record.EndedAt}
		if err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("append history participant %s/%s: %w", record.ID, uid, err)
		}
	}
	return nil
}

// BatchUpdateUsers applies a batch of lifetime-stat deltas, one row read
// and rewritten per known user; unknown user ids are skipped silently.
func (t *Txn) BatchUpdateUsers(updates []models.LifetimeStatsUpdate) error {
	byUser := make(map[string][]models.LifetimeStatsUpdate, len(updates))
	for _, u := range updates {
		byUser[u.UserID] = append(byUser[u.UserID], u)
	}

	for uid, deltas := range byUser {
		var row UserLifetimeRecord
		err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "user_id = ?", uid).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read lifetime stats %s: %w", uid, err)
		}

		var current models.LifetimeStats
		if err := json.Unmarshal(row.Data, &current); err != nil {
			return fmt.Errorf("decode lifetime stats %s: %w", uid, err)
		}

		existing := map[string]models.LifetimeStats{uid: current}
		merged := engine.LifetimeAggregate(existing, deltas, map[string]string{uid: uid})

		data, err := json.Marshal(merged[uid])
		if err != nil {
			return fmt.Errorf("encode lifetime stats %s: %w", uid, err)
		}
		if err := t.db.Model(&UserLifetimeRecord{}).Where("user_id = ?", uid).Update("data", data).Error; err != nil {
			return fmt.Errorf("write lifetime stats %s: %w", uid, err)
		}
	}
	return nil
}

// ReadVenue reads a Venue by id.
func (t *Txn) ReadVenue(id string) (models.Venue, error) {
	var row VenueRecord
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Venue{}, engine.ErrNotFound
	}
	if err != nil {
		return models.Venue{}, fmt.Errorf("read venue %s: %w", id, err)
	}
	var venue models.Venue
	if err := json.Unmarshal(row.Data, &venue); err != nil {
		return models.Venue{}, fmt.Errorf("decode venue %s: %w", id, err)
	}
	return venue, nil
}

// WriteVenue upserts a Venue document.
func (t *Txn) WriteVenue(venue models.Venue) error {
	data, err := json.Marshal(venue)
	if err != nil {
		return fmt.Errorf("encode venue %s: %w", venue.ID, err)
	}
	row := VenueRecord{ID: venue.ID, OwnerID: venue.OwnerID, Data: data}
	return t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "data", "updated_at"}),
	}).Create(&row).Error
}

// DeleteVenue removes a Venue document.
func (t *Txn) DeleteVenue(id string) error {
	return t.db.Delete(&VenueRecord{}, "id = ?", id).Error
}

// VenuesByOwner lists every venue owned by ownerID.
func (t *Txn) VenuesByOwner(ownerID string) ([]models.Venue, error) {
	var rows []VenueRecord
	if err := t.db.Find(&rows, "owner_id = ?", ownerID).Error; err != nil {
		return nil, fmt.Errorf("list venues for %s: %w", ownerID, err)
	}
	out := make([]models.Venue, 0, len(rows))
	for _, r := range rows {
		var v models.Venue
		if err := json.Unmarshal(r.Data, &v); err != nil {
			return nil, fmt.Errorf("decode venue %s: %w", r.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
