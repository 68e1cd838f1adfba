package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"playstats/internal/snapshot"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// header is the fixed column schema; it is written once when a store file
// is created and never changes across appends.
var header = []string{
	"app_id",
	"name",
	"genre",
	"price",
	"release_date",
	"rank_position",
	"prev_rank",
	"peak_in_game",
	"snapshot_time",
	"rank_status",
	"rank_delta",
}

// Store is an append-only CSV record sink. A primary file holds new
// batches; an optional backup file is merged in on read, last-seen wins
// per (app id, snapshot time).
type Store struct {
	path       string
	backupPath string
	logger     *zap.Logger
}

func New(path, backupPath string, logger *zap.Logger) *Store {
	return &Store{
		path:       path,
		backupPath: backupPath,
		logger:     logger,
	}
}

// Append writes one batch of observations to the primary file, creating
// it (with header) on first use. Appended rows are never rewritten.
func (s *Store) Append(batch []snapshot.Observation) error {
	if len(batch) == 0 {
		return nil // nothing to persist
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat store file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, obs := range batch {
		if err := w.Write(toRow(obs)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush store file: %w", err)
	}
	return nil
}

// ReadAll loads every stored observation from the primary and backup
// files, dropping malformed rows, and merges the two sets. A missing file
// yields an empty set, not an error.
func (s *Store) ReadAll() ([]snapshot.Observation, error) {
	primary, err := s.readFile(s.path)
	if err != nil {
		return nil, err
	}

	if s.backupPath == "" {
		return snapshot.Merge(primary), nil
	}

	backup, err := s.readFile(s.backupPath)
	if err != nil {
		return nil, err
	}

	return snapshot.Merge(primary, backup), nil
}

func (s *Store) readFile(path string) ([]snapshot.Observation, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row length is validated in fromRow

	var out []snapshot.Observation
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// A syntax-corrupt row (e.g. a bare quote) only poisons itself;
			// the reader resumes at the next line.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.logger.Warn("dropping malformed store row",
					zap.String("file", path), zap.Int("line", line), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("read store file: %w", err)
		}
		if line == 1 && len(row) > 0 && row[0] == header[0] {
			continue // header
		}
		obs, err := fromRow(row)
		if err != nil {
			s.logger.Warn("dropping malformed store row",
				zap.String("file", path), zap.Int("line", line), zap.Error(err))
			continue
		}
		out = append(out, obs)
	}

	return out, nil
}

func toRow(obs snapshot.Observation) []string {
	prevRank := ""
	if obs.PrevRank != nil {
		prevRank = strconv.Itoa(*obs.PrevRank)
	}

	return []string{
		strconv.FormatInt(obs.AppID, 10),
		obs.Name,
		obs.GenreString(),
		obs.Price.StringFixed(2),
		obs.ReleaseDate,
		strconv.Itoa(obs.Rank),
		prevRank,
		strconv.FormatInt(obs.Peak, 10),
		obs.SnapshotAt.UTC().Format(time.RFC3339),
		string(obs.Status),
		strconv.Itoa(obs.Delta),
	}
}

// fromRow is the strict parse step at the store boundary: it returns a
// typed Observation or an error describing which field was malformed.
func fromRow(row []string) (snapshot.Observation, error) {
	if len(row) != len(header) {
		return snapshot.Observation{}, fmt.Errorf("expected %d fields, got %d", len(header), len(row))
	}

	appID, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return snapshot.Observation{}, fmt.Errorf("app_id: %w", err)
	}
	price, err := decimal.NewFromString(row[3])
	if err != nil {
		return snapshot.Observation{}, fmt.Errorf("price: %w", err)
	}
	rank, err := strconv.Atoi(row[5])
	if err != nil {
		return snapshot.Observation{}, fmt.Errorf("rank_position: %w", err)
	}

	var prevRank *int
	if row[6] != "" {
		p, err := strconv.Atoi(row[6])
		if err != nil {
			return snapshot.Observation{}, fmt.Errorf("prev_rank: %w", err)
		}
		prevRank = &p
	}

	peak, err := strconv.ParseInt(row[7], 10, 64)
	if err != nil {
		return snapshot.Observation{}, fmt.Errorf("peak_in_game: %w", err)
	}
	snapshotAt, err := time.Parse(time.RFC3339, row[8])
	if err != nil {
		return snapshot.Observation{}, fmt.Errorf("snapshot_time: %w", err)
	}

	status := snapshot.RankStatus(row[9])
	if !status.IsValid() {
		return snapshot.Observation{}, fmt.Errorf("rank_status: invalid value %q", row[9])
	}

	delta, err := strconv.Atoi(row[10])
	if err != nil {
		return snapshot.Observation{}, fmt.Errorf("rank_delta: %w", err)
	}

	return snapshot.Observation{
		AppID:       appID,
		Name:        row[1],
		Genres:      parseGenreString(row[2]),
		Price:       price,
		ReleaseDate: row[4],
		Rank:        rank,
		PrevRank:    prevRank,
		Peak:        peak,
		SnapshotAt:  snapshotAt.UTC(),
		Status:      status,
		Delta:       delta,
	}, nil
}

func parseGenreString(joined string) []string {
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
