package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// NewsAPIClient fetches top headlines per category from a NewsAPI-compatible endpoint.
type NewsAPIClient struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	country  string
	pageSize int
	limiter  *rate.Limiter
}

// NewNewsAPIClient builds a client; rps <= 0 disables throttling.
func NewNewsAPIClient(baseURL, apiKey, country string, rps float64) *NewsAPIClient {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &NewsAPIClient{
		client:   &http.Client{Timeout: 20 * time.Second},
		baseURL:  baseURL,
		apiKey:   apiKey,
		country:  country,
		pageSize: 100,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

type newsAPIResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

func (c *NewsAPIClient) Fetch(ctx context.Context, category string) ([]Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Category: category, Err: err}
	}

	q := url.Values{}
	q.Set("category", category)
	q.Set("pageSize", fmt.Sprint(c.pageSize))
	if c.country != "" {
		q.Set("country", c.country)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Category: category, Err: err}
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Category: category, Err: err}
	}
	defer resp.Body.Close()

	var body newsAPIResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode >= 300 {
		msg := body.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &FetchError{Category: category, Err: fmt.Errorf("http %d: %s", resp.StatusCode, msg)}
	}
	if decodeErr != nil {
		return nil, &FetchError{Category: category, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if body.Status != "ok" {
		return nil, &FetchError{Category: category, Err: fmt.Errorf("status %q: %s %s", body.Status, body.Code, body.Message)}
	}
	return body.Articles, nil
}
