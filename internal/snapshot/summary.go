package snapshot

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the derived record consumed by the reporting layer. All
// figures describe one snapshot.
type Summary struct {
	SnapshotAt  time.Time
	Count       int
	MostPopular string          // name of the rank-1 app
	TopGenre    string          // most common genre across the snapshot
	MeanPrice   decimal.Decimal // mean price over the snapshot, 2dp
	NewCount    int             // apps absent from the prior snapshot

	BiggestClimb *Observation // max positive delta, nil when nothing climbed
	BiggestDrop  *Observation // max negative delta, nil when nothing fell

	TopRevenue []RevenueEntry // top 5 by price x peak
	GenrePeaks []GenrePeak    // top 5 genres by mean peak
}

// RevenueEntry pairs an app with its price x peak revenue proxy.
type RevenueEntry struct {
	Name    string
	Revenue decimal.Decimal
}

// GenrePeak pairs a genre with the mean peak usage of its apps.
type GenrePeak struct {
	Genre    string
	MeanPeak decimal.Decimal
}

// Summarize computes the reporting summary for one snapshot's
// observations. An empty input yields a zero Summary.
func Summarize(observations []Observation) Summary {
	var sum Summary
	if len(observations) == 0 {
		return sum
	}

	sum.SnapshotAt = observations[0].SnapshotAt
	sum.Count = len(observations)

	bestRank := observations[0].Rank
	priceTotal := decimal.Zero
	genreCounts := map[string]int{}

	for i, obs := range observations {
		if obs.Rank <= bestRank {
			if obs.Rank < bestRank || sum.MostPopular == "" {
				sum.MostPopular = obs.Name
			}
			bestRank = obs.Rank
		}

		priceTotal = priceTotal.Add(obs.Price)

		for _, genre := range obs.Genres {
			genreCounts[genre]++
		}

		if obs.Status == StatusNew {
			sum.NewCount++
			continue // NEW observations carry no meaningful delta
		}

		if obs.Delta > 0 && (sum.BiggestClimb == nil || obs.Delta > sum.BiggestClimb.Delta) {
			sum.BiggestClimb = &observations[i]
		}
		if obs.Delta < 0 && (sum.BiggestDrop == nil || obs.Delta < sum.BiggestDrop.Delta) {
			sum.BiggestDrop = &observations[i]
		}
	}

	sum.MeanPrice = priceTotal.Div(decimal.NewFromInt(int64(len(observations)))).Round(2)
	sum.TopGenre = topGenre(genreCounts)
	sum.TopRevenue = topRevenue(observations, 5)
	sum.GenrePeaks = genrePeaks(observations, 5)

	return sum
}

// topGenre picks the most common genre; ties break lexicographically so
// the result is deterministic.
func topGenre(counts map[string]int) string {
	best := ""
	bestCount := 0
	for genre, count := range counts {
		if count > bestCount || (count == bestCount && genre < best) {
			best = genre
			bestCount = count
		}
	}
	return best
}

func topRevenue(observations []Observation, n int) []RevenueEntry {
	entries := make([]RevenueEntry, 0, len(observations))
	for _, obs := range observations {
		entries = append(entries, RevenueEntry{
			Name:    obs.Name,
			Revenue: obs.Price.Mul(decimal.NewFromInt(obs.Peak)),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Revenue.GreaterThan(entries[j].Revenue)
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func genrePeaks(observations []Observation, n int) []GenrePeak {
	totals := map[string]int64{}
	counts := map[string]int64{}
	for _, obs := range observations {
		for _, genre := range obs.Genres {
			totals[genre] += obs.Peak
			counts[genre]++
		}
	}

	peaks := make([]GenrePeak, 0, len(totals))
	for genre, total := range totals {
		mean := decimal.NewFromInt(total).Div(decimal.NewFromInt(counts[genre])).Round(2)
		peaks = append(peaks, GenrePeak{Genre: genre, MeanPeak: mean})
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].MeanPeak.Equal(peaks[j].MeanPeak) {
			return peaks[i].Genre < peaks[j].Genre
		}
		return peaks[i].MeanPeak.GreaterThan(peaks[j].MeanPeak)
	})

	if len(peaks) > n {
		peaks = peaks[:n]
	}
	return peaks
}
