package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"deal_hunter/config"
	"deal_hunter/models"
)

// maxPerCall is the endpoint's page size limit.
const maxPerCall = 10

// Client calls a Custom Search JSON endpoint.
type Client struct {
	endpoint string
	apiKey   string
	engineID string
	client   *http.Client
}

func NewClient(cfg config.SearchConfig, client *http.Client) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		client:   client,
	}
}

type cseResponse struct {
	Items []cseItem `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type cseItem struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
}

// Query runs one search. A non-200 status or an error payload is returned as
// a *QueryError; a response with no items is an empty, successful result.
func (c *Client) Query(ctx context.Context, q string) ([]models.RawResult, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", q)
	params.Set("num", strconv.Itoa(maxPerCall))
	params.Set("gl", "us")
	params.Set("lr", "lang_en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, truncateBody(body))
	}

	var result cseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &QueryError{Kind: Upstream, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	if result.Error != nil {
		return nil, &QueryError{Kind: Upstream, Status: result.Error.Code, Err: fmt.Errorf("api error: %s", result.Error.Message)}
	}

	out := make([]models.RawResult, 0, len(result.Items))
	for _, item := range result.Items {
		out = append(out, models.RawResult{
			Title:   strings.TrimSpace(item.Title),
			Snippet: strings.TrimSpace(item.Snippet),
			Link:    item.Link,
			Domain:  strings.TrimPrefix(strings.ToLower(item.DisplayLink), "www."),
		})
	}
	return out, nil
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
