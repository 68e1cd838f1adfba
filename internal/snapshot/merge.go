package snapshot

import "time"

type mergeKey struct {
	appID int64
	at    time.Time
}

// Merge unions record batches from multiple store files into one set,
// keyed by (app id, snapshot time). The last-seen record wins for each
// key; first-seen order is preserved otherwise. Used when a primary and
// a backup store file coexist.
func Merge(batches ...[]Observation) []Observation {
	var out []Observation
	pos := map[mergeKey]int{}

	for _, batch := range batches {
		for _, obs := range batch {
			key := mergeKey{appID: obs.AppID, at: obs.SnapshotAt.UTC()}
			if i, ok := pos[key]; ok {
				out[i] = obs
				continue
			}
			pos[key] = len(out)
			out = append(out, obs)
		}
	}

	return out
}

// Latest filters the observation set down to the snapshot with the
// maximum timestamp. Returns nil when the set is empty.
func Latest(observations []Observation) []Observation {
	var latest time.Time
	for _, obs := range observations {
		if obs.SnapshotAt.After(latest) {
			latest = obs.SnapshotAt
		}
	}
	if latest.IsZero() {
		return nil
	}

	var out []Observation
	for _, obs := range observations {
		if obs.SnapshotAt.Equal(latest) {
			out = append(out, obs)
		}
	}
	return out
}
