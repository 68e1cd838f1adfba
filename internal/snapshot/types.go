package snapshot

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RankStatus classifies an app's movement relative to the prior snapshot.
type RankStatus string

const (
	StatusNew  RankStatus = "NEW"
	StatusUp   RankStatus = "UP"
	StatusDown RankStatus = "DOWN"
	StatusSame RankStatus = "SAME"
)

// IsValid checks if the RankStatus is one of the predefined values.
func (s RankStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusUp, StatusDown, StatusSame:
		return true
	}
	return false
}

// Observation is one app's recorded state within a snapshot. Records are
// append-only: once created they are never mutated or deleted.
type Observation struct {
	AppID       int64
	Name        string
	Genres      []string // trimmed, lower-cased, order irrelevant
	Price       decimal.Decimal
	ReleaseDate string
	Rank        int  // 1 = most popular
	PrevRank    *int // nil when the app was absent from the prior snapshot
	Peak        int64
	SnapshotAt  time.Time
	Status      RankStatus
	Delta       int // previous rank minus current rank; positive = climbed
}

// GenreString renders the genre list as the comma-joined form used by the
// persistent store.
func (o Observation) GenreString() string {
	return strings.Join(o.Genres, ", ")
}

// SkipReason explains why a ranked entry produced no Observation.
type SkipReason string

const (
	SkipNoDetail     SkipReason = "no_detail"     // storefront has no record for the app
	SkipLookupFailed SkipReason = "lookup_failed" // transport or decode failure on the detail lookup
	SkipNotGame      SkipReason = "not_game"      // detail record is a dlc/demo/etc.
	SkipExcluded     SkipReason = "excluded"      // display name is on the exclusion list
)

// Skip records one dropped rank entry so callers can audit drop reasons
// instead of scraping logs.
type Skip struct {
	AppID  int64
	Reason SkipReason
	Err    error // set only for SkipLookupFailed
}
