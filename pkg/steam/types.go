package steam

import "encoding/json"

// ChartsResponse represents the generic envelope returned by the Steam
// charts web API. The payload shape varies per endpoint, so decoding of
// the inner object is delayed.
type ChartsResponse struct {
	Response json.RawMessage `json:"response"` // Delay decoding // Main response payload (varies per endpoint)
}

// MostPlayedResult is the payload of ISteamChartsService/GetMostPlayedGames.
type MostPlayedResult struct {
	RollupDate int64       `json:"rollup_date"` // Unix timestamp the ranking was rolled up at
	Ranks      []RankEntry `json:"ranks"`
}

// RankEntry is one row of the "most played" ranking. Rank 1 is the most
// popular app.
type RankEntry struct {
	AppID        int64 `json:"appid"`
	Rank         int   `json:"rank"`
	Concurrent   int64 `json:"concurrent_in_game"`
	PeakInGame   int64 `json:"peak_in_game"`
	LastWeekRank int   `json:"last_week_rank"`
}

// appDetailsEnvelope is the outer object of the storefront appdetails
// endpoint: a map keyed by the requested appid rendered as a string.
type appDetailsEnvelope map[string]AppDetailsResult

// AppDetailsResult wraps one appdetails lookup. Success=false with no data
// is a frequent, expected outcome for delisted or region-locked apps.
type AppDetailsResult struct {
	Success bool        `json:"success"`
	Data    *AppDetails `json:"data,omitempty"`
}

// AppDetails is the subset of the storefront detail record the collector
// consumes.
type AppDetails struct {
	Type          string         `json:"type"` // "game", "dlc", "demo", ...
	Name          string         `json:"name"`
	Genres        []Genre        `json:"genres,omitempty"`
	PriceOverview *PriceOverview `json:"price_overview,omitempty"`
	ReleaseDate   *ReleaseDate   `json:"release_date,omitempty"`
}

type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// PriceOverview carries prices in currency minor units (cents).
type PriceOverview struct {
	Currency string `json:"currency"`
	Initial  int64  `json:"initial"`
	Final    int64  `json:"final"`
}

type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}
