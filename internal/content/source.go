package content

import (
	"context"
	"errors"

	"matchplay/internal/logger"
	"matchplay/internal/metrics"
)

// ErrNoContent means the source had nothing to offer for the game id.
var ErrNoContent = errors.New("no content")

// Source loads the pair set for a game.
type Source interface {
	Pairs(ctx context.Context, gameID string) ([]MatchPair, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, gameID string) ([]MatchPair, error)

func (f SourceFunc) Pairs(ctx context.Context, gameID string) ([]MatchPair, error) {
	return f(ctx, gameID)
}

// Static serves the same pair set for every game id.
type Static []MatchPair

func (s Static) Pairs(context.Context, string) ([]MatchPair, error) {
	if len(s) == 0 {
		return nil, ErrNoContent
	}
	return append([]MatchPair(nil), s...), nil
}

type fallback struct {
	src      Source
	defaults []MatchPair
}

// WithFallback serves defaults whenever src fails. Malformed content is
// passed through so the caller can refuse it.
func WithFallback(src Source, defaults []MatchPair) Source {
	return &fallback{src: src, defaults: defaults}
}

func (f *fallback) Pairs(ctx context.Context, gameID string) ([]MatchPair, error) {
	if f.src == nil {
		return append([]MatchPair(nil), f.defaults...), nil
	}
	pairs, err := f.src.Pairs(ctx, gameID)
	if err == nil {
		return pairs, nil
	}
	if errors.Is(err, ErrMalformedContent) {
		return nil, err
	}
	logger.Warn("content unavailable, using built-in pairs", "game_id", gameID, "err", err)
	metrics.ContentFallbacks.Inc()
	return append([]MatchPair(nil), f.defaults...), nil
}
