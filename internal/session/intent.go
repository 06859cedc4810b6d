package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Intent kinds accepted from the browser.
const (
	IntentStart       = "start"
	IntentRestart     = "restart"
	IntentPause       = "pause"
	IntentResume      = "resume"
	IntentTogglePause = "toggle-pause"
	IntentAbandon     = "abandon"
	IntentExit        = "exit"
	IntentAnswer      = "answer"
	IntentSelect      = "select"
	IntentSubmit      = "submit"
	IntentNext        = "next"
)

var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrWrongVariant  = errors.New("intent not supported by this game")
	ErrBadIntent     = errors.New("bad intent")
)

// Intent is one user action. Claims is "pair" or "nopair" for answers, ID
// is the option for selections.
type Intent struct {
	Type   string `json:"type"`
	Claims string `json:"claims,omitempty"`
	ID     string `json:"id,omitempty"`
}

// ParseClaims reads an answer value.
func ParseClaims(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pair", "true", "yes":
		return true, nil
	case "nopair", "no-pair", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: claims %q", ErrBadIntent, s)
}

// Apply runs an intent against c. The bool reports whether state changed;
// intents that policy ignores return false with a nil error.
func Apply(c Controller, in Intent, now time.Time) (bool, error) {
	switch in.Type {
	case IntentStart:
		err := c.Start(now)
		if errors.Is(err, ErrAlreadyStarted) || errors.Is(err, ErrEnded) {
			return false, nil
		}
		return err == nil, err
	case IntentRestart:
		if errors.Is(c.Restart(now), ErrEnded) {
			return false, nil
		}
		return true, nil
	case IntentPause:
		return c.Pause(now), nil
	case IntentResume:
		return c.Resume(now), nil
	case IntentTogglePause:
		return c.TogglePause(now), nil
	case IntentAbandon:
		return c.AbandonRound(now), nil
	case IntentExit:
		return c.Exit(now), nil
	case IntentAnswer:
		p, ok := c.(*Pairs)
		if !ok {
			return false, ErrWrongVariant
		}
		claims, err := ParseClaims(in.Claims)
		if err != nil {
			return false, err
		}
		_, accepted := p.Submit(claims, now)
		return accepted, nil
	case IntentSelect, IntentSubmit, IntentNext:
		m, ok := c.(*Memorize)
		if !ok {
			return false, ErrWrongVariant
		}
		switch in.Type {
		case IntentSelect:
			return m.Toggle(in.ID, now), nil
		case IntentSubmit:
			_, accepted := m.SubmitSelection(now)
			return accepted, nil
		default:
			return m.NextRound(now), nil
		}
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
}
