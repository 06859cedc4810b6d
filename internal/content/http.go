package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single content fetch.
const DefaultTimeout = 5 * time.Second

// HTTPSource fetches pair sets from the content backend.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source for baseURL with its own client timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type pairsResponse struct {
	Items []MatchPair `json:"items"`
}

// Pairs GETs the public play payload for gameID. An empty item list is ErrNoContent.
func (s *HTTPSource) Pairs(ctx context.Context, gameID string) ([]MatchPair, error) {
	if s.BaseURL == "" || strings.TrimSpace(gameID) == "" {
		return nil, ErrNoContent
	}
	endpoint := s.BaseURL + "/api/game/game-type/pair-or-no-pair/" + url.PathEscape(gameID) + "/play/public"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("content request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content fetch: unexpected status %d", resp.StatusCode)
	}
	var body pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("content decode: %w", err)
	}
	if len(body.Items) == 0 {
		return nil, ErrNoContent
	}
	return body.Items, nil
}
