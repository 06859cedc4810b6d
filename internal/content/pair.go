package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedContent is returned when a content set cannot be played.
var ErrMalformedContent = errors.New("malformed content")

// MatchPair is one authored pair. Its ID is shared by both display cards.
type MatchPair struct {
	ID           string `json:"id"`
	FrontContent string `json:"left_content"`
	BackContent  string `json:"right_content"`
}

// DefaultPairs is the built-in set used when no remote content is available.
func DefaultPairs() []MatchPair {
	return []MatchPair{
		{ID: "1", FrontContent: "Apple", BackContent: "🍎"},
		{ID: "2", FrontContent: "Banana", BackContent: "🍌"},
		{ID: "3", FrontContent: "Orange", BackContent: "🍊"},
		{ID: "4", FrontContent: "Grape", BackContent: "🍇"},
		{ID: "5", FrontContent: "Cherry", BackContent: "🍒"},
	}
}

// ValidatePairs rejects empty sets, blank ids or sides, and duplicate ids.
func ValidatePairs(pairs []MatchPair) error {
	if len(pairs) == 0 {
		return fmt.Errorf("%w: no pairs", ErrMalformedContent)
	}
	seen := make(map[string]struct{}, len(pairs))
	for i, p := range pairs {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("%w: pair %d has no id", ErrMalformedContent, i)
		}
		if strings.TrimSpace(p.FrontContent) == "" || strings.TrimSpace(p.BackContent) == "" {
			return fmt.Errorf("%w: pair %q has an empty side", ErrMalformedContent, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate pair id %q", ErrMalformedContent, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// IsImageURL reports whether a card's content should render as an image.
func IsImageURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "http") || strings.HasPrefix(s, "data:image/") {
		return true
	}
	if !strings.HasPrefix(s, "/") {
		return false
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"} {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}
