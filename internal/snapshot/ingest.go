package snapshot

import (
	"strings"
	"time"

	"playstats/pkg/steam"

	"github.com/shopspring/decimal"
)

// DetailLookup resolves one app id to its storefront detail record.
// A nil record with a nil error means the source has no data for the id.
// The collector binds this to the REST client; tests bind it to fixtures.
type DetailLookup func(appID int64) (*steam.AppDetails, error)

// Ingest turns raw rank entries plus their detail records into normalized
// Observations tagged with snapshotTime. Entries without usable detail
// data, non-game entries, and excluded names are dropped and reported in
// the returned Skip list. Per-entry failures never fail the batch.
//
// Output order follows the input ranking. Within the batch each app id
// appears at most once; on duplicates the last-seen entry wins.
func Ingest(entries []steam.RankEntry, lookup DetailLookup, snapshotTime time.Time, exclusions map[string]bool) ([]Observation, []Skip) {
	var out []Observation
	var skips []Skip

	// position of an app id already in out, for last-seen-wins dedup
	seen := map[int64]int{}

	for _, entry := range entries {
		detail, err := lookup(entry.AppID)
		if err != nil {
			skips = append(skips, Skip{AppID: entry.AppID, Reason: SkipLookupFailed, Err: err})
			continue
		}
		if detail == nil {
			skips = append(skips, Skip{AppID: entry.AppID, Reason: SkipNoDetail})
			continue
		}
		if detail.Type != "game" {
			skips = append(skips, Skip{AppID: entry.AppID, Reason: SkipNotGame})
			continue
		}
		if exclusions[detail.Name] {
			skips = append(skips, Skip{AppID: entry.AppID, Reason: SkipExcluded})
			continue
		}

		obs := Observation{
			AppID:       entry.AppID,
			Name:        detail.Name,
			Genres:      parseGenres(detail.Genres),
			Price:       parsePrice(detail.PriceOverview),
			ReleaseDate: parseReleaseDate(detail.ReleaseDate),
			Rank:        entry.Rank,
			Peak:        entry.PeakInGame,
			SnapshotAt:  snapshotTime,
		}

		if pos, ok := seen[entry.AppID]; ok {
			out[pos] = obs
			continue
		}
		seen[entry.AppID] = len(out)
		out = append(out, obs)
	}

	return out, skips
}

// parseGenres splits the comma-joined genre descriptions into trimmed,
// lower-cased tokens, discarding empties.
func parseGenres(genres []steam.Genre) []string {
	var descriptions []string
	for _, g := range genres {
		descriptions = append(descriptions, g.Description)
	}

	var out []string
	for _, token := range strings.Split(strings.Join(descriptions, ","), ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}

// parsePrice converts the minor-unit storefront price to major units with
// two decimal places. Free or unpriced apps yield 0.
func parsePrice(price *steam.PriceOverview) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	return decimal.New(price.Final, -2)
}

func parseReleaseDate(release *steam.ReleaseDate) string {
	if release == nil || release.Date == "" {
		return "Unknown"
	}
	return release.Date
}
