package playcount

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Style selects how HTTPSink addresses the game.
type Style int

const (
	// BodyStyle POSTs {"game_id": id} to /api/game/play-count.
	BodyStyle Style = iota
	// PathStyle POSTs to /api/game/{id}/play-count with no body.
	PathStyle
)

// HTTPSink reports plays to the platform API.
type HTTPSink struct {
	BaseURL string
	Style   Style
	Client  *http.Client
}

// NewHTTPSink returns a sink for baseURL.
func NewHTTPSink(baseURL string, style Style, timeout time.Duration) *HTTPSink {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSink{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Style:   style,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSink) Notify(ctx context.Context, gameID string) error {
	if gameID == "" {
		return ErrNoGameID
	}

	var (
		endpoint string
		body     io.Reader
	)
	switch s.Style {
	case PathStyle:
		endpoint = s.BaseURL + "/api/game/" + url.PathEscape(gameID) + "/play-count"
	default:
		payload, err := json.Marshal(map[string]string{"game_id": gameID})
		if err != nil {
			return err
		}
		endpoint = s.BaseURL + "/api/game/play-count"
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build play count request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post play count: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post play count: unexpected status %d", resp.StatusCode)
	}
	return nil
}
