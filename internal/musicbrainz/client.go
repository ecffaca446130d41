// Package musicbrainz fetches recording metadata from the MusicBrainz web
// service.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dropzone/internal/media"
)

type recordingPayload struct {
	Title        string `json:"title"`
	ArtistCredit []struct {
		Name       string `json:"name"`
		JoinPhrase string `json:"joinphrase"`
	} `json:"artist-credit"`
	Releases []struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"releases"`
}

type searchPayload struct {
	Recordings []recordingPayload `json:"recordings"`
}

// Client provides access to the MusicBrainz API.
type Client struct {
	baseURL    string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
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

// WithRetryDelay overrides the initial backoff delay (primarily for tests).
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// New creates a MusicBrainz client. MusicBrainz requires a descriptive
// User-Agent, so userAgent must not be empty.
func New(baseURL, userAgent string, maxRetries int, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		maxRetries: maxRetries,
		retryDelay: time.Second,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetRecording fetches metadata for a recording MBID, retrying transient
// failures with exponential backoff.
func (c *Client) GetRecording(ctx context.Context, recordingID string) (media.Metadata, error) {
	recordingID = strings.TrimSpace(recordingID)
	if recordingID == "" {
		return media.Metadata{}, errors.New("recording id required")
	}

	endpoint := fmt.Sprintf("%s/recording/%s?inc=artists+releases&fmt=json", c.baseURL, url.PathEscape(recordingID))

	var payload recordingPayload
	if err := c.getWithRetry(ctx, endpoint, &payload); err != nil {
		return media.Metadata{}, err
	}
	return payload.metadata(), nil
}

// SearchRecording searches by whatever metadata fields are set and returns
// the best match, or a zero Metadata when nothing was found.
func (c *Client) SearchRecording(ctx context.Context, query media.Metadata) (media.Metadata, error) {
	var terms []string
	if query.Title != "" {
		terms = append(terms, fmt.Sprintf("recording:%q", query.Title))
	}
	if query.Artist != "" {
		terms = append(terms, fmt.Sprintf("artist:%q", query.Artist))
	}
	if query.Album != "" {
		terms = append(terms, fmt.Sprintf("release:%q", query.Album))
	}
	if len(terms) == 0 {
		return media.Metadata{}, errors.New("search needs at least one field")
	}

	params := url.Values{}
	params.Set("query", strings.Join(terms, " AND "))
	params.Set("limit", "5")
	params.Set("fmt", "json")
	endpoint := c.baseURL + "/recording?" + params.Encode()

	var payload searchPayload
	if err := c.getWithRetry(ctx, endpoint, &payload); err != nil {
		return media.Metadata{}, err
	}
	if len(payload.Recordings) == 0 {
		return media.Metadata{}, nil
	}
	return payload.Recordings[0].metadata(), nil
}

func (c *Client) getWithRetry(ctx context.Context, endpoint string, out any) error {
	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		lastErr = c.get(ctx, endpoint, out)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) || attempt == c.maxRetries-1 {
			return lastErr
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return lastErr
}

type transientError struct {
	err error
}

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var transient transientError
	if errors.As(err, &transient) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection-level failures are worth retrying.
		return transientError{fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusServiceUnavailable:
		return transientError{fmt.Errorf("musicbrainz returned %d", resp.StatusCode)}
	default:
		return fmt.Errorf("musicbrainz returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode musicbrainz response: %w", err)
	}
	return nil
}

func (p recordingPayload) metadata() media.Metadata {
	meta := media.Metadata{Title: p.Title}

	var artist strings.Builder
	for _, credit := range p.ArtistCredit {
		artist.WriteString(credit.Name)
		artist.WriteString(credit.JoinPhrase)
	}
	meta.Artist = artist.String()

	if len(p.Releases) > 0 {
		meta.Album = p.Releases[0].Title
		meta.Date = p.Releases[0].Date
	}
	return meta
}
