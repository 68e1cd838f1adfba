package snapshot

import "time"

// ComputeDeltas enriches each observation with its movement relative to
// previousRanks (app id → rank in the prior snapshot). Apps absent from
// previousRanks are NEW; their PrevRank stays nil and Delta stays 0 — a
// NEW status always takes precedence over the zero delta, so consumers
// must branch on Status before reading Delta.
//
// Rank 1 is best: a smaller current rank is UP, a larger one is DOWN.
// Delta = previous - current, so positive means the app climbed.
//
// Pure function: deterministic, no I/O, never fails.
func ComputeDeltas(observations []Observation, previousRanks map[int64]int) []Observation {
	out := make([]Observation, len(observations))

	for i, obs := range observations {
		prev, ok := previousRanks[obs.AppID]
		if !ok {
			obs.Status = StatusNew
			out[i] = obs
			continue
		}

		p := prev
		obs.PrevRank = &p
		obs.Delta = prev - obs.Rank

		switch {
		case obs.Rank < prev:
			obs.Status = StatusUp
		case obs.Rank > prev:
			obs.Status = StatusDown
		default:
			obs.Status = StatusSame
		}

		out[i] = obs
	}

	return out
}

// PreviousRanks derives the app id → rank mapping from the stored
// observation set at the maximum timestamp strictly before the given
// instant. With no prior snapshot the map is empty and every current
// observation will come out NEW.
func PreviousRanks(stored []Observation, before time.Time) map[int64]int {
	var latest time.Time
	for _, obs := range stored {
		if obs.SnapshotAt.Before(before) && obs.SnapshotAt.After(latest) {
			latest = obs.SnapshotAt
		}
	}

	ranks := make(map[int64]int)
	if latest.IsZero() {
		return ranks
	}

	for _, obs := range stored {
		if obs.SnapshotAt.Equal(latest) {
			ranks[obs.AppID] = obs.Rank
		}
	}
	return ranks
}
