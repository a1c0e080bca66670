package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chalkitup/engine"
	"chalkitup/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?mode=memory"), &gorm.Config{})
	require.NoError(t, err)

	store := New(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func sampleTable(id string) models.Table {
	return models.Table{
		ID:           id,
		ShortCode:    "CHALK-" + id,
		Name:         "Table " + id,
		Status:       models.StatusIdle,
		Settings:     models.DefaultSettings("hash", "Table "+id),
		SessionStats: models.SessionStats{PlayerStats: map[string]models.PlayerStats{}},
	}
}

func TestWriteAndReadTable_RoundTrips(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	table := sampleTable("t1")

	_, err := RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteTable(table, 0)
	})
	require.NoError(t, err)

	got, err := RunTransaction(ctx, store, func(txn *Txn) (models.Table, error) {
		read, _, readErr := txn.ReadTable("t1")
		return read, readErr
	})
	require.NoError(t, err)
	require.Equal(t, table.Name, got.Name)
	require.Equal(t, int64(1), got.Version)
}

func TestReadTable_NotFoundMapsToEngineError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := RunTransaction(ctx, store, func(txn *Txn) (models.Table, error) {
		read, _, readErr := txn.ReadTable("missing")
		return read, readErr
	})
	require.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestWriteTable_StaleVersionIsConflict(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	table := sampleTable("t1")

	_, err := RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteTable(table, 0)
	})
	require.NoError(t, err)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteTable(table, 1)
	})
	require.NoError(t, err)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteTable(table, 1)
	})
	require.True(t, errors.Is(err, engine.ErrConflict))
}

func TestShortCodeIndex_WriteReadDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteIndex("CHALK-ABCD", "t1")
	})
	require.NoError(t, err)

	id, err := RunTransaction(ctx, store, func(txn *Txn) (string, error) {
		return txn.ReadIndex("CHALK-ABCD")
	})
	require.NoError(t, err)
	require.Equal(t, "t1", id)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.DeleteIndex("CHALK-ABCD")
	})
	require.NoError(t, err)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (string, error) {
		return txn.ReadIndex("CHALK-ABCD")
	})
	require.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestWriteIndex_DuplicateCodeIsConflict(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteIndex("CHALK-ABCD", "t1")
	})
	require.NoError(t, err)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteIndex("CHALK-ABCD", "t2")
	})
	require.True(t, errors.Is(err, engine.ErrConflict))
}

func TestVenueRecord_WriteReadListByOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	venue := models.Venue{ID: "v1", Name: "Main Street", OwnerID: "owner-1"}

	_, err := RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.WriteVenue(venue)
	})
	require.NoError(t, err)

	got, err := RunTransaction(ctx, store, func(txn *Txn) (models.Venue, error) {
		return txn.ReadVenue("v1")
	})
	require.NoError(t, err)
	require.Equal(t, "Main Street", got.Name)

	list, err := RunTransaction(ctx, store, func(txn *Txn) ([]models.Venue, error) {
		return txn.VenuesByOwner("owner-1")
	})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.DeleteVenue("v1")
	})
	require.NoError(t, err)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (models.Venue, error) {
		return txn.ReadVenue("v1")
	})
	require.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestAppendHistory_WritesParticipantRows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	record := models.GameHistoryRecord{
		ID:            "h1",
		TableID:       "t1",
		Mode:          models.ModeSingles,
		Winner:        "Alice",
		EndedAt:       1000,
		PlayerUIDList: []string{"u1", "u2"},
	}

	_, err := RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		return struct{}{}, txn.AppendHistory(record)
	})
	require.NoError(t, err)

	var participants []HistoryParticipant
	require.NoError(t, store.db.Find(&participants, "history_id = ?", "h1").Error)
	require.Len(t, participants, 2)
}

func TestBatchUpdateUsers_SkipsUnknownUserSkipsUnprovisionedRow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	existing := models.LifetimeStats{GamesPlayed: 2, Wins: 1, ByMode: map[models.GameMode]models.ModeStats{}}
	data, err := json.Marshal(existing)
	require.NoError(t, err)
	require.NoError(t, store.db.Create(&UserLifetimeRecord{UserID: "u1", Data: data}).Error)

	_, err = RunTransaction(ctx, store, func(txn *Txn) (struct{}, error) {
		updates := []models.LifetimeStatsUpdate{
			{UserID: "u1", Mode: models.ModeSingles, Won: true, At: 5000},
			{UserID: "ghost", Mode: models.ModeSingles, Won: true, At: 5000},
		}
		return struct{}{}, txn.BatchUpdateUsers(updates)
	})
	require.NoError(t, err)

	var row UserLifetimeRecord
	require.NoError(t, store.db.First(&row, "user_id = ?", "u1").Error)
	var updated models.LifetimeStats
	require.NoError(t, json.Unmarshal(row.Data, &updated))
	require.Equal(t, 3, updated.GamesPlayed)
	require.Equal(t, 2, updated.Wins)

	var ghostCount int64
	require.NoError(t, store.db.Model(&UserLifetimeRecord{}).Where("user_id = ?", "ghost").Count(&ghostCount).Error)
	require.Equal(t, int64(0), ghostCount)
}
