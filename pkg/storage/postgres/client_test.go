package postgres_test

import (
	"context"
	"testing"
	"time"

	"playstats/config"
	"playstats/internal/snapshot"
	"playstats/pkg/storage/postgres"

	"github.com/shopspring/decimal"
)

// go test -v --run ^TestPostgresInvalidDSN$
func TestPostgresInvalidDSN(t *testing.T) {
	invalidDSN := "host=invalid port=5432 user=fail password=fail dbname=fail sslmode=disable"

	_, err := postgres.NewClient(invalidDSN)
	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}
}

// localClient connects to a local dev database, skipping the test when
// none is running.
func localClient(t *testing.T) *postgres.PostgresClient {
	t.Helper()

	cfg := config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "yourpw",
		DBName:   "playstats",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	client, err := postgres.NewClient(cfg.DSN("dev"))
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if !client.IsHealthy(ctx) {
		t.Skip("postgres not healthy")
	}

	return client
}

// go test -v --run TestObservationBatchLifecycle
func TestObservationBatchLifecycle(t *testing.T) {
	client := localClient(t)
	defer client.Close()

	ctx := context.Background()

	if err := client.AutoMigrateObservationRecord(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	batch := []postgres.ObservationRecord{
		postgres.ToObservationRecord(snapshot.Observation{
			AppID: 730, Name: "Counter-Strike 2", Genres: []string{"action"},
			Price: decimal.New(1499, -2), ReleaseDate: "21 Aug, 2012",
			Rank: 1, Peak: 1500000, SnapshotAt: at, Status: snapshot.StatusNew,
		}),
		postgres.ToObservationRecord(snapshot.Observation{
			AppID: 570, Name: "Dota 2", Genres: []string{"action", "strategy"},
			Price: decimal.Zero, ReleaseDate: "9 Jul, 2013",
			Rank: 2, Peak: 700000, SnapshotAt: at, Status: snapshot.StatusNew,
		}),
	}

	if err := client.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Re-inserting the same batch is a no-op, not an error.
	if err := client.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("idempotent re-insert failed: %v", err)
	}

	got, err := client.GetSnapshot(ctx, at)
	if err != nil {
		t.Fatalf("get snapshot failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].AppID != 730 || got[1].AppID != 570 {
		t.Errorf("records not in rank order: %+v", got)
	}

	ranks, err := client.PreviousRanks(ctx, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("previous ranks failed: %v", err)
	}
	if ranks[730] != 1 || ranks[570] != 2 {
		t.Errorf("unexpected previous ranks: %v", ranks)
	}
}
