// Package coordinator binds the pure engine packages to the persistence
// adapter: every mutating command runs inside a bounded,
// retrying optimistic transaction, and successful table commits are
// published to subscribers and logged as post-commit side effects.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chalkitup/engine"
	"chalkitup/internal/storage/locks"
	"chalkitup/internal/storage/pubsub"
	"chalkitup/internal/storage/sqlstore"
	"chalkitup/models"
)

// maxTransactionRetries bounds the read-compute-CAS-write retry loop on
// version conflicts; retries run immediately, with no backoff delay.
const maxTransactionRetries = 5

// Clock abstracts wall-clock time so commands are deterministic in tests.
type Clock func() int64

// Coordinator is the single entrypoint for every table/venue command.
type Coordinator struct {
	store  *sqlstore.Store
	bus    *pubsub.Client
	lock   *locks.Manager
	log    *zap.Logger
	now    Clock
}

// New builds a Coordinator over an already-migrated store.
func New(store *sqlstore.Store, bus *pubsub.Client, lock *locks.Manager, log *zap.Logger, now Clock) *Coordinator {
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Coordinator{store: store, bus: bus, lock: lock, log: log, now: now}
}

// withTable runs fn against the current Table for id inside a bounded,
// retrying optimistic transaction, publishes the resulting state on
// success, and returns the new Table to the caller.
func (c *Coordinator) withTable(ctx context.Context, id string, fn func(models.Table) (models.Table, error)) (models.Table, error) {
	var result models.Table
	var err error

	for attempt := 0; attempt < maxTransactionRetries; attempt++ {
		result, err = sqlstore.RunTransaction(ctx, c.store, func(txn *sqlstore.Txn) (models.Table, error) {
			current, version, readErr := txn.ReadTable(id)
			if readErr != nil {
				return models.Table{}, readErr
			}
			next, fnErr := fn(current)
			if fnErr != nil {
				return models.Table{}, fnErr
			}
			next = settleLifecycle(next, c.now())
			if writeErr := txn.WriteTable(next, version); writeErr != nil {
				return models.Table{}, writeErr
			}
			return next, nil
		})

		if err == nil {
			c.publish(ctx, result)
			return result, nil
		}
		if !errors.Is(err, engine.ErrConflict) {
			return models.Table{}, err
		}
	}
	return models.Table{}, fmt.Errorf("%w: exceeded %d retries", engine.ErrConflict, maxTransactionRetries)
}

// settleLifecycle implements Idle transitions: an empty
// queue with no current game marks the table idle (stamping idleSince the
// first time it happens); any queue entry or a live game clears it.
func settleLifecycle(table models.Table, now int64) models.Table {
	if len(table.Queue) == 0 && table.CurrentGame == nil {
		if table.Status != models.StatusPrivate {
			table.Status = models.StatusIdle
		}
		if table.IdleSince == nil {
			table.IdleSince = &now
		}
	} else {
		table.IdleSince = nil
		if table.Status == models.StatusIdle {
			table.Status = models.StatusActive
		}
	}
	table.LastActiveAt = now
	return table
}

func (c *Coordinator) publish(ctx context.Context, table models.Table) {
	data, err := json.Marshal(table)
	if err != nil {
		c.log.Error("encode table for publish", zap.String("tableId", table.ID), zap.Error(err))
		return
	}
	if err := c.bus.PublishTable(ctx, table.ID, data); err != nil {
		c.log.Warn("publish table update failed", zap.String("tableId", table.ID), zap.Error(err))
	}
}

// SubscribeTable streams whole-Table snapshots to onUpdate as they are
// published; onError fires when a published payload cannot be decoded.
// Only a cancel func is returned: no connection-state is reported, and a
// broken subscription ends delivery without calling onError.
func (c *Coordinator) SubscribeTable(ctx context.Context, id string, onUpdate func(models.Table), onError func(error)) (cancel func()) {
	return c.bus.SubscribeTable(ctx, id, func(payload []byte) {
		var table models.Table
		if err := json.Unmarshal(payload, &table); err != nil {
			onError(fmt.Errorf("decode published table: %w", err))
			return
		}
		onUpdate(table)
	}, onError)
}

// HealthCheck reports whether both the store and the pub/sub backend are
// reachable, backing the /healthz route.
func (c *Coordinator) HealthCheck(ctx context.Context) error {
	if err := c.store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: store unreachable: %v", engine.ErrUnavailable, err)
	}
	if err := c.bus.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: pubsub unreachable: %v", engine.ErrUnavailable, err)
	}
	return nil
}

// mapStoreError translates gorm's not-found sentinel (should already be
// handled by sqlstore, kept here as a defensive backstop) into the
// coordinator's error taxonomy.
func mapStoreError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.ErrNotFound
	}
	return err
}
