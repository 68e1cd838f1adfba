package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObservationRecord represents one app's snapshot state stored in the database.
type ObservationRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	AppID      int64     `gorm:"not null;index:idx_obs_app;index:idx_app_snapshot,unique"`
	SnapshotAt time.Time `gorm:"not null;index:idx_obs_snapshot;index:idx_app_snapshot,unique"`

	Name        string `gorm:"type:text;not null"`
	Genres      string `gorm:"type:text"`
	ReleaseDate string `gorm:"type:text"`

	Price decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	Rank     int  `gorm:"column:rank_position;not null"`
	PrevRank *int `gorm:"column:prev_rank"`

	Peak int64 `gorm:"column:peak_in_game;not null"`

	RankStatus string `gorm:"type:varchar(8);not null"`
	RankDelta  int    `gorm:"not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (ObservationRecord) TableName() string {
	return "observation_record"
}
