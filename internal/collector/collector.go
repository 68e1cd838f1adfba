package collector

import (
	"context"
	"fmt"
	"time"

	"playstats/config"
	"playstats/internal/snapshot"
	"playstats/pkg/steam"
	"playstats/pkg/storage/postgres"

	"go.uber.org/zap"
)

// Store is the append-only record sink the collector writes to and reads
// prior snapshots back from.
type Store interface {
	Append(batch []snapshot.Observation) error
	ReadAll() ([]snapshot.Observation, error)
}

// Collector runs the fetch → ingest → delta → append pipeline. Each run
// is sequential and single-threaded: read the store, compute, append.
type Collector struct {
	cfg    *config.Config
	client *steam.RESTClient
	store  Store
	mirror *postgres.PostgresClient // optional DB mirror, nil when disabled
	logger *zap.Logger

	now func() time.Time
}

func New(cfg *config.Config, client *steam.RESTClient, store Store, mirror *postgres.PostgresClient, logger *zap.Logger) *Collector {
	return &Collector{
		cfg:    cfg,
		client: client,
		store:  store,
		mirror: mirror,
		logger: logger,
		now:    time.Now,
	}
}

// Run performs one collection pass. A whole-batch fetch failure aborts
// the run with nothing written; per-app failures only shrink the batch.
func (c *Collector) Run(ctx context.Context) error {
	entries, err := c.client.GetMostPlayed(ctx, c.cfg.Collector.TopN)
	if err != nil {
		return fmt.Errorf("fetch most played: %w", err)
	}
	if len(entries) == 0 {
		c.logger.Info("ranking source returned no entries")
		return nil
	}

	snapshotTime := c.now().UTC().Truncate(time.Second)

	exclusions := make(map[string]bool, len(c.cfg.Collector.Exclusions))
	for _, name := range c.cfg.Collector.Exclusions {
		exclusions[name] = true
	}

	lookup := func(appID int64) (*steam.AppDetails, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Steam.Timeout)
		defer cancel()
		return c.client.GetAppDetails(reqCtx, appID)
	}

	observations, skips := snapshot.Ingest(entries, lookup, snapshotTime, exclusions)
	for _, skip := range skips {
		c.logger.Warn("skipping ranked app",
			zap.Int64("app_id", skip.AppID),
			zap.String("reason", string(skip.Reason)),
			zap.Error(skip.Err),
		)
	}

	if len(observations) == 0 {
		c.logger.Info("nothing to persist after filtering",
			zap.Int("entries", len(entries)), zap.Int("skipped", len(skips)))
		return nil
	}

	stored, err := c.store.ReadAll()
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	previousRanks := snapshot.PreviousRanks(stored, snapshotTime)

	observations = snapshot.ComputeDeltas(observations, previousRanks)

	if err := c.store.Append(observations); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	if c.mirror != nil {
		c.mirrorBatch(ctx, observations)
	}

	sum := snapshot.Summarize(observations)
	logSummary(c.logger, sum)

	return nil
}

// mirrorBatch copies the appended batch into Postgres. Mirror failures
// are logged, not fatal: the CSV store already holds the batch.
func (c *Collector) mirrorBatch(ctx context.Context, observations []snapshot.Observation) {
	records := make([]postgres.ObservationRecord, 0, len(observations))
	for _, obs := range observations {
		records = append(records, postgres.ToObservationRecord(obs))
	}

	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.mirror.InsertBatch(dbCtx, records); err != nil {
		c.logger.Warn("failed to mirror snapshot to postgres",
			zap.Int("records", len(records)), zap.Error(err))
	}
}

func logSummary(logger *zap.Logger, sum snapshot.Summary) {
	fields := []zap.Field{
		zap.Time("snapshot_time", sum.SnapshotAt),
		zap.Int("count", sum.Count),
		zap.String("most_popular", sum.MostPopular),
		zap.String("top_genre", sum.TopGenre),
		zap.String("mean_price", sum.MeanPrice.StringFixed(2)),
		zap.Int("new_count", sum.NewCount),
	}
	if sum.BiggestClimb != nil {
		fields = append(fields,
			zap.String("biggest_climb", sum.BiggestClimb.Name),
			zap.Int("climb_delta", sum.BiggestClimb.Delta))
	}
	if sum.BiggestDrop != nil {
		fields = append(fields,
			zap.String("biggest_drop", sum.BiggestDrop.Name),
			zap.Int("drop_delta", sum.BiggestDrop.Delta))
	}

	logger.Info("snapshot saved", fields...)
}
