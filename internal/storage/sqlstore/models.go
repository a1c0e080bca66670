// Package sqlstore is the gorm-backed PersistenceAdapter: one
// row per Table keyed by id, a secondary short-code index, an append-only
// history table with a participant join table for uid lookups, and one
// row per known user's lifetime stats.
package sqlstore

import "time"

// TableRecord is the Table document, marshaled to JSON in Data. Version is
// the optimistic-concurrency token bumped on every successful write.
type TableRecord struct {
	ID        string `gorm:"primaryKey"`
	ShortCode string `gorm:"uniqueIndex"`
	VenueID   *string `gorm:"index"`
	Data      []byte
	Version   int64
	UpdatedAt time.Time
}

func (TableRecord) TableName() string { return "tables" }

// ShortCodeIndex maps a short code to a table id, enforced unique at the
// database level independently of TableRecord.ShortCode so a stale index
// row is detectable.
type ShortCodeIndex struct {
	Code    string `gorm:"primaryKey"`
	TableID string `gorm:"index"`
}

func (ShortCodeIndex) TableName() string { return "short_code_index" }

// HistoryRecord is one completed game, append-only.
type HistoryRecord struct {
	ID        string `gorm:"primaryKey"`
	TableID   string `gorm:"index"`
	EndedAt   int64  `gorm:"index"`
	Data      []byte
	CreatedAt time.Time
}

func (HistoryRecord) TableName() string { return "history" }

// HistoryParticipant indexes HistoryRecord by participant user id so
// "history where playerUidList contains uid, ordered by endedAt desc" is a
// plain indexed join instead of a JSON scan.
type HistoryParticipant struct {
	HistoryID string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey;index"`
	TableID   string `gorm:"index"`
	EndedAt   int64  `gorm:"index"`
}

func (HistoryParticipant) TableName() string { return "history_participants" }

// VenueRecord is a Venue document.
type VenueRecord struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"index"`
	Data      []byte
	UpdatedAt time.Time
}

func (VenueRecord) TableName() string { return "venues" }

// UserLifetimeRecord holds a known user's LifetimeStats. Rows are
// provisioned by the identity system outside this package's scope; a
// BatchUpdateUsers delta for an unknown user id is silently skipped.
type UserLifetimeRecord struct {
	UserID    string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (UserLifetimeRecord) TableName() string { return "user_lifetime_stats" }
