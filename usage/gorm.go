package usage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/voiceingest/database"
)

// AttemptRecord is the persisted form of an Attempt.
type AttemptRecord struct {
	Identity       string `gorm:"primaryKey;size:191"`
	IdempotencyKey string `gorm:"primaryKey;size:191"`
	Kind           string `gorm:"size:32;not null"`
	Day            string `gorm:"size:10;not null"`
	CreatedAt      time.Time
}

// TableName implements gorm's Tabler.
func (AttemptRecord) TableName() string { return "usage_attempts" }

// CounterRecord is a per-identity, per-day, per-kind counter.
type CounterRecord struct {
	Identity  string `gorm:"primaryKey;size:191"`
	Day       string `gorm:"primaryKey;size:10"`
	Kind      string `gorm:"primaryKey;size:32"`
	Used      int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName implements gorm's Tabler.
func (CounterRecord) TableName() string { return "usage_counters" }

// Models lists the tables GormStore needs, for auto-migration.
func Models() []any {
	return []any{&AttemptRecord{}, &CounterRecord{}}
}

const gormMaxAttempts = 3

// GormStore is a Store on a SQL database.
type GormStore struct {
	db *database.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a GormStore. The tables from Models must exist.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

// Record inserts the attempt and bumps the counter in one transaction.
// A conflicting attempt insert affects no rows and ends the transaction
// without touching the counter. Lock contention is retried.
func (s *GormStore) Record(ctx context.Context, a Attempt) (bool, error) {
	var recorded bool
	var err error
	for attempt := 1; attempt <= gormMaxAttempts; attempt++ {
		recorded, err = s.record(ctx, a)
		if err == nil || !database.IsRetryableError(err) || ctx.Err() != nil {
			break
		}
	}
	return recorded, err
}

func (s *GormStore) record(ctx context.Context, a Attempt) (bool, error) {
	recorded := false
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		day := a.Day()
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&AttemptRecord{
			Identity:       a.Identity,
			IdempotencyKey: a.IdempotencyKey,
			Kind:           a.Kind,
			Day:            day,
			CreatedAt:      a.At.UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("insert attempt: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		counter := CounterRecord{Identity: a.Identity, Day: day, Kind: a.Kind}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
			return fmt.Errorf("ensure counter: %w", err)
		}
		upd := tx.Model(&CounterRecord{}).
			Where("identity = ? AND day = ? AND kind = ?", a.Identity, day, a.Kind).
			Updates(map[string]any{
				"used":       gorm.Expr("used + ?", 1),
				"updated_at": time.Now().UTC(),
			})
		if upd.Error != nil {
			return fmt.Errorf("increment counter: %w", upd.Error)
		}
		if upd.RowsAffected != 1 {
			return fmt.Errorf("increment counter: %d rows affected", upd.RowsAffected)
		}
		recorded = true
		return nil
	})
	return recorded, err
}

// Count implements Store.
func (s *GormStore) Count(ctx context.Context, identity string, day time.Time, kind string) (int64, error) {
	var rec CounterRecord
	err := s.db.WithContext(ctx).
		Where("identity = ? AND day = ? AND kind = ?", identity, Day(day), kind).
		Take(&rec).Error
	if database.IsNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return rec.Used, nil
}
