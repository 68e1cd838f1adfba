package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"playstats/internal/snapshot"

	"gorm.io/gorm/clause"
)

// InsertBatch appends one snapshot batch. The unique (app_id, snapshot_at)
// index makes re-runs idempotent: rows that already exist are skipped, the
// store is never updated in place.
func (p *PostgresClient) InsertBatch(ctx context.Context, records []ObservationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "app_id"},
			{Name: "snapshot_at"},
		},
		DoNothing: true,
	}).Create(&records)

	return tx.Error
}

// LatestSnapshotTime returns the maximum stored snapshot timestamp
// strictly before the given instant. The zero time means no prior
// snapshot exists.
func (p *PostgresClient) LatestSnapshotTime(ctx context.Context, before time.Time) (time.Time, error) {
	var latest sql.NullTime
	err := p.DB.WithContext(ctx).
		Model(&ObservationRecord{}).
		Select("MAX(snapshot_at)").
		Where("snapshot_at < ?", before).
		Scan(&latest).Error

	if err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

// GetSnapshot returns all records sharing the given snapshot timestamp,
// in rank order.
func (p *PostgresClient) GetSnapshot(ctx context.Context, at time.Time) ([]ObservationRecord, error) {
	var records []ObservationRecord
	err := p.DB.WithContext(ctx).
		Where("snapshot_at = ?", at).
		Order("rank_position ASC").
		Find(&records).Error

	if err != nil {
		return nil, err
	}
	return records, nil
}

// PreviousRanks derives the app id → rank mapping from the latest
// snapshot strictly before the given instant. An empty map means every
// current observation is NEW.
func (p *PostgresClient) PreviousRanks(ctx context.Context, before time.Time) (map[int64]int, error) {
	latest, err := p.LatestSnapshotTime(ctx, before)
	if err != nil {
		return nil, err
	}

	ranks := make(map[int64]int)
	if latest.IsZero() {
		return ranks, nil
	}

	records, err := p.GetSnapshot(ctx, latest)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		ranks[r.AppID] = r.Rank
	}
	return ranks, nil
}

// ToObservationRecord converts an Observation into an ObservationRecord for DB insertion.
func ToObservationRecord(obs snapshot.Observation) ObservationRecord {
	return ObservationRecord{
		AppID:       obs.AppID,
		SnapshotAt:  obs.SnapshotAt.UTC(),
		Name:        obs.Name,
		Genres:      obs.GenreString(),
		ReleaseDate: obs.ReleaseDate,
		Price:       obs.Price,
		Rank:        obs.Rank,
		PrevRank:    obs.PrevRank,
		Peak:        obs.Peak,
		RankStatus:  string(obs.Status),
		RankDelta:   obs.Delta,
	}
}

// Observation converts a stored record back into the domain form.
func (r ObservationRecord) Observation() snapshot.Observation {
	return snapshot.Observation{
		AppID:       r.AppID,
		Name:        r.Name,
		Genres:      splitGenres(r.Genres),
		Price:       r.Price,
		ReleaseDate: r.ReleaseDate,
		Rank:        r.Rank,
		PrevRank:    r.PrevRank,
		Peak:        r.Peak,
		SnapshotAt:  r.SnapshotAt.UTC(),
		Status:      snapshot.RankStatus(r.RankStatus),
		Delta:       r.RankDelta,
	}
}

func splitGenres(joined string) []string {
	var out []string
	for _, token := range strings.Split(joined, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}
