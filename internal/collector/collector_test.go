package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"playstats/config"
	"playstats/internal/snapshot"
	"playstats/pkg/steam"
	"playstats/pkg/storage/csvstore"

	"go.uber.org/zap"
)

// fakeSteam serves both the charts and storefront endpoints with
// swappable rankings.
type fakeSteam struct {
	mu    sync.Mutex
	ranks string
}

func (f *fakeSteam) setRanks(ranks string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranks = ranks
}

func (f *fakeSteam) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/ISteamChartsService/GetMostPlayedGames/v1/" {
			f.mu.Lock()
			ranks := f.ranks
			f.mu.Unlock()
			fmt.Fprintf(w, `{"response": {"ranks": %s}}`, ranks)
			return
		}

		appID := r.URL.Query().Get("appids")
		fmt.Fprintf(w, `{%q: {"success": true, "data": {
			"type": "game",
			"name": "Game %s",
			"genres": [{"id": "1", "description": "Action"}],
			"price_overview": {"currency": "USD", "initial": 999, "final": 999},
			"release_date": {"coming_soon": false, "date": "1 Jan, 2020"}
		}}}`, appID, appID)
	})
}

func testConfig(csvPath string) *config.Config {
	return &config.Config{
		Steam: config.SteamConfig{
			CountryCode: "us",
			Timeout:     5 * time.Second,
		},
		Collector: config.CollectorConfig{TopN: 25},
		Store:     config.StoreConfig{CSVPath: csvPath},
	}
}

// go test -v --run TestRunComputesDeltasAcrossSnapshots
func TestRunComputesDeltasAcrossSnapshots(t *testing.T) {
	fake := &fakeSteam{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	cfg := testConfig(filepath.Join(t.TempDir(), "steam_data.csv"))
	client := steam.NewRESTClient(server.URL, server.URL, cfg.Steam.CountryCode, cfg.Steam.Timeout)
	store := csvstore.New(cfg.Store.CSVPath, "", zap.NewNop())

	c := New(cfg, client, store, nil, zap.NewNop())

	// First pass: everything is NEW.
	runAt := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return runAt }

	fake.setRanks(`[
		{"appid": 10, "rank": 1, "peak_in_game": 1000},
		{"appid": 20, "rank": 2, "peak_in_game": 800},
		{"appid": 30, "rank": 3, "peak_in_game": 500}
	]`)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	stored, err := store.ReadAll()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 records after first run, got %d", len(stored))
	}
	for _, obs := range stored {
		if obs.Status != snapshot.StatusNew {
			t.Errorf("app %d: status = %s, want NEW on first run", obs.AppID, obs.Status)
		}
	}

	// Second pass a day later: 30 climbs, 10 falls, 20 holds, 40 is new.
	runAt = runAt.Add(24 * time.Hour)
	fake.setRanks(`[
		{"appid": 30, "rank": 1, "peak_in_game": 1200},
		{"appid": 20, "rank": 2, "peak_in_game": 700},
		{"appid": 10, "rank": 3, "peak_in_game": 600},
		{"appid": 40, "rank": 4, "peak_in_game": 400}
	]`)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	stored, err = store.ReadAll()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	latest := snapshot.Latest(stored)
	if len(latest) != 4 {
		t.Fatalf("expected 4 records in latest snapshot, got %d", len(latest))
	}

	want := map[int64]struct {
		status snapshot.RankStatus
		delta  int
	}{
		30: {snapshot.StatusUp, 2},
		20: {snapshot.StatusSame, 0},
		10: {snapshot.StatusDown, -2},
		40: {snapshot.StatusNew, 0},
	}
	for _, obs := range latest {
		w := want[obs.AppID]
		if obs.Status != w.status || obs.Delta != w.delta {
			t.Errorf("app %d: got (%s, %d), want (%s, %d)",
				obs.AppID, obs.Status, obs.Delta, w.status, w.delta)
		}
	}
}

// go test -v --run TestRunAbortsOnBatchFetchFailure
func TestRunAbortsOnBatchFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	csvPath := filepath.Join(t.TempDir(), "steam_data.csv")
	cfg := testConfig(csvPath)
	client := steam.NewRESTClient(server.URL, server.URL, "", cfg.Steam.Timeout)
	store := csvstore.New(csvPath, "", zap.NewNop())

	c := New(cfg, client, store, nil, zap.NewNop())
	if err := c.Run(context.Background()); err == nil {
		t.Fatal("expected error when the whole batch fetch fails")
	}

	stored, err := store.ReadAll()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("aborted run must write nothing, found %d records", len(stored))
	}
}

// go test -v --run TestRunNothingToPersist
func TestRunNothingToPersist(t *testing.T) {
	// Ranking comes back fine but every detail lookup says "no data".
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/ISteamChartsService/GetMostPlayedGames/v1/" {
			fmt.Fprint(w, `{"response": {"ranks": [{"appid": 10, "rank": 1, "peak_in_game": 100}]}}`)
			return
		}
		fmt.Fprint(w, `{"10": {"success": false}}`)
	}))
	defer server.Close()

	csvPath := filepath.Join(t.TempDir(), "steam_data.csv")
	cfg := testConfig(csvPath)
	client := steam.NewRESTClient(server.URL, server.URL, "", cfg.Steam.Timeout)
	store := csvstore.New(csvPath, "", zap.NewNop())

	c := New(cfg, client, store, nil, zap.NewNop())
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("empty post-filter result is a normal no-op, got %v", err)
	}

	stored, err := store.ReadAll()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("no-op run must write nothing, found %d records", len(stored))
	}
}

// go test -v --run TestRunHonorsExclusions
func TestRunHonorsExclusions(t *testing.T) {
	fake := &fakeSteam{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	csvPath := filepath.Join(t.TempDir(), "steam_data.csv")
	cfg := testConfig(csvPath)
	cfg.Collector.Exclusions = []string{"Game 20"}

	client := steam.NewRESTClient(server.URL, server.URL, "", cfg.Steam.Timeout)
	store := csvstore.New(csvPath, "", zap.NewNop())
	c := New(cfg, client, store, nil, zap.NewNop())

	fake.setRanks(`[
		{"appid": 10, "rank": 1, "peak_in_game": 1000},
		{"appid": 20, "rank": 2, "peak_in_game": 800}
	]`)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, err := store.ReadAll()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if len(stored) != 1 || stored[0].Name != "Game 10" {
		t.Errorf("exclusion list not applied, got %+v", stored)
	}
}
