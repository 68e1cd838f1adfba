package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

type RESTClient struct {
	chartsBaseURL string
	storeBaseURL  string
	countryCode   string
	httpClient    *http.Client
}

func NewRESTClient(chartsBaseURL, storeBaseURL, countryCode string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		chartsBaseURL: chartsBaseURL,
		storeBaseURL:  storeBaseURL,
		countryCode:   countryCode,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// GetMostPlayed fetches the current "most played" ranking and returns at
// most topN entries in ranking order. topN <= 0 returns the full list.
func (c *RESTClient) GetMostPlayed(ctx context.Context, topN int) ([]RankEntry, error) {
	endpoint := c.chartsBaseURL + "/ISteamChartsService/GetMostPlayedGames/v1/"

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("steam charts error: %s", body)
	}

	var rawResp ChartsResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Decode result into MostPlayedResult
	var result MostPlayedResult
	if err := json.Unmarshal(rawResp.Response, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	ranks := result.Ranks
	if topN > 0 && len(ranks) > topN {
		ranks = ranks[:topN]
	}

	return ranks, nil
}

// GetAppDetails fetches the storefront detail record for one app.
// A nil record with a nil error means the storefront has no data for the
// app (success=false), which callers treat as a skippable entry rather
// than a failure.
func (c *RESTClient) GetAppDetails(ctx context.Context, appID int64) (*AppDetails, error) {
	endpoint := fmt.Sprintf("%s/api/appdetails?appids=%d", c.storeBaseURL, appID)
	if c.countryCode != "" {
		endpoint += "&cc=" + c.countryCode
	}

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("steam store error: %s", body)
	}

	var envelope appDetailsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result, ok := envelope[strconv.FormatInt(appID, 10)]
	if !ok || !result.Success || result.Data == nil {
		return nil, nil // no store data for this app
	}

	return result.Data, nil
}
