package postgres_test

import (
	"testing"
	"time"

	"playstats/internal/snapshot"
	"playstats/pkg/storage/postgres"

	"github.com/shopspring/decimal"
)

// go test -v --run TestObservationRecordRoundTrip
func TestObservationRecordRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	prev := 3

	obs := snapshot.Observation{
		AppID:       730,
		Name:        "Counter-Strike 2",
		Genres:      []string{"action", "free to play"},
		Price:       decimal.New(1499, -2),
		ReleaseDate: "21 Aug, 2012",
		Rank:        1,
		PrevRank:    &prev,
		Peak:        1500000,
		SnapshotAt:  at,
		Status:      snapshot.StatusUp,
		Delta:       2,
	}

	record := postgres.ToObservationRecord(obs)
	if record.AppID != 730 || record.Rank != 1 || record.RankStatus != "UP" || record.RankDelta != 2 {
		t.Errorf("unexpected record: %+v", record)
	}
	if record.Genres != "action, free to play" {
		t.Errorf("genres = %q", record.Genres)
	}
	if record.PrevRank == nil || *record.PrevRank != 3 {
		t.Errorf("prev rank = %v, want 3", record.PrevRank)
	}

	back := record.Observation()
	if back.AppID != obs.AppID || back.Rank != obs.Rank || back.Status != obs.Status || back.Delta != obs.Delta {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if !back.Price.Equal(obs.Price) {
		t.Errorf("price = %s, want %s", back.Price, obs.Price)
	}
	if len(back.Genres) != 2 || back.Genres[0] != "action" || back.Genres[1] != "free to play" {
		t.Errorf("genres = %v", back.Genres)
	}
	if !back.SnapshotAt.Equal(at) {
		t.Errorf("snapshot time = %v, want %v", back.SnapshotAt, at)
	}
}

// go test -v --run TestObservationRecordNewItem
func TestObservationRecordNewItem(t *testing.T) {
	obs := snapshot.Observation{
		AppID:      40,
		Name:       "Fresh Game",
		Price:      decimal.Zero,
		Rank:       4,
		SnapshotAt: time.Now().UTC(),
		Status:     snapshot.StatusNew,
	}

	record := postgres.ToObservationRecord(obs)
	if record.PrevRank != nil {
		t.Errorf("NEW item must keep prev_rank NULL, got %d", *record.PrevRank)
	}
	if record.RankStatus != "NEW" || record.RankDelta != 0 {
		t.Errorf("unexpected record: %+v", record)
	}
}
