// Package acoustid looks up audio fingerprints against the AcoustID web
// service.
package acoustid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Match is a scored recording candidate for a fingerprint.
type Match struct {
	Score       float64
	RecordingID string
	Title       string
	Artist      string
}

type lookupResponse struct {
	Status  string `json:"status"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
	Results []struct {
		ID         string  `json:"id"`
		Score      float64 `json:"score"`
		Recordings []struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"recordings"`
	} `json:"results"`
}

// Client provides access to the AcoustID lookup API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an AcoustID client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("acoustid api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("acoustid base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup submits a fingerprint and duration and returns recording matches
// ordered by descending score. Matches without a recording are dropped.
func (c *Client) Lookup(ctx context.Context, fp string, durationSeconds float64) ([]Match, error) {
	fp = strings.TrimSpace(fp)
	if fp == "" {
		return nil, errors.New("fingerprint must not be empty")
	}
	if durationSeconds <= 0 {
		return nil, errors.New("duration must be positive")
	}

	form := url.Values{}
	form.Set("client", c.apiKey)
	form.Set("fingerprint", fp)
	form.Set("duration", strconv.Itoa(int(durationSeconds+0.5)))
	form.Set("meta", "recordings")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lookup", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("acoustid lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode acoustid response: %w", err)
	}
	if payload.Status != "ok" {
		if payload.Error.Message != "" {
			return nil, fmt.Errorf("acoustid error: %s", payload.Error.Message)
		}
		return nil, fmt.Errorf("acoustid status %q", payload.Status)
	}

	var matches []Match
	for _, result := range payload.Results {
		for _, rec := range result.Recordings {
			if rec.ID == "" {
				continue
			}
			artist := ""
			if len(rec.Artists) > 0 {
				names := make([]string, 0, len(rec.Artists))
				for _, a := range rec.Artists {
					if a.Name != "" {
						names = append(names, a.Name)
					}
				}
				artist = strings.Join(names, "; ")
			}
			matches = append(matches, Match{
				Score:       result.Score,
				RecordingID: rec.ID,
				Title:       rec.Title,
				Artist:      artist,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}
