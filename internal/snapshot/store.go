// Package snapshot persists the last successfully fetched record list
// per entity type, so the daemon can serve explicitly stale data when
// the tool is unavailable. Stale reads are always labeled with their
// capture time; nothing here is served silently.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// Row is one stored batch, keyed by entity type.
type Row struct {
	ID         int64          `gorm:"primaryKey"`
	Entity     string         `gorm:"uniqueIndex;size:32"`
	Data       datatypes.JSON `gorm:"not null"`
	CapturedAt time.Time      `gorm:"not null"`
}

func (Row) TableName() string { return "entity_snapshots" }

// Store reads and writes snapshot rows.
type Store struct {
	db    *gorm.DB
	genID *snowflake.Node
	clock clock.Clock
	log   *zap.Logger
}

type Params struct {
	fx.In

	DB    *gorm.DB
	GenID *snowflake.Node
	Clock clock.Clock
	Log   *zap.Logger
}

func NewStore(p Params) (*Store, error) {
	if err := p.DB.AutoMigrate(&Row{}); err != nil {
		return nil, err
	}
	return &Store{
		db:    p.DB,
		genID: p.GenID,
		clock: p.Clock,
		log:   p.Log.Named("snapshot"),
	}, nil
}

// Save upserts the batch for one entity type.
func (s *Store) Save(ctx context.Context, entity domain.EntityType, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	row := Row{
		ID:         s.genID.Generate().Int64(),
		Entity:     string(entity),
		Data:       datatypes.JSON(data),
		CapturedAt: s.clock.Now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "captured_at"}),
		}).
		Create(&row).Error
}

// Load returns the stored batch for one entity type as raw JSON plus
// its capture time.
func (s *Store) Load(ctx context.Context, entity domain.EntityType) (json.RawMessage, time.Time, error) {
	var row Row
	err := s.db.WithContext(ctx).Where("entity = ?", string(entity)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, domain.ErrNoSnapshotAvailable
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return json.RawMessage(row.Data), row.CapturedAt, nil
}
