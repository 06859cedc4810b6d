package handlers

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"matchplay/internal/content"
	"matchplay/internal/session"
	"matchplay/internal/viewmodel"
)

func sessionPath(id string) string { return "/session/" + id }

func toBoard(view session.View, play bool) viewmodel.Board {
	b := viewmodel.Board{
		SessionID:  view.ID,
		Variant:    string(view.Variant),
		Lifecycle:  string(view.Session.Lifecycle),
		Score:      view.Session.Score,
		RoundIndex: view.Session.RoundIndex,
		Clock:      formatClock(view.Session.Clock),
		Paused:     view.Session.Paused,
		Ended:      view.Session.Ended,
		CanPlay:    play && !view.Session.Ended,
	}
	if view.Pairs != nil {
		b.Pairs = toPairsBoard(view.Pairs)
	}
	if view.Memorize != nil {
		b.Memorize = toMemorizeBoard(view.Memorize)
	}
	b.BoardKey = boardKey(view)
	return b
}

func toPairsBoard(p *session.PairsView) *viewmodel.PairsBoard {
	pb := &viewmodel.PairsBoard{
		Phase:      string(p.Round.Phase),
		SubPhase:   p.Round.SubPhase,
		Remaining:  len(p.Left),
		TotalPairs: p.TotalPairs,
		Correct:    p.Round.CorrectCount,
		Feedback:   string(p.Feedback),
		CanAnswer:  p.CanAnswer,
	}
	if len(p.Left) > 0 && len(p.Right) > 0 {
		pb.Left = toCard(p.Left[0].ID, p.Left[0].Content)
		pb.Right = toCard(p.Right[0].ID, p.Right[0].Content)
	}
	return pb
}

func toCard(id, value string) *viewmodel.Card {
	return &viewmodel.Card{ID: id, Content: value, IsImage: content.IsImageURL(value)}
}

func toMemorizeBoard(m *session.MemorizeView) *viewmodel.MemorizeBoard {
	mb := &viewmodel.MemorizeBoard{
		Phase:       string(m.Phase),
		ShowCount:   m.ShowCount,
		Selected:    len(m.Selected),
		CanSubmit:   m.CanSubmit,
		CanContinue: m.CanContinue,
	}
	if m.Result != nil {
		mb.HasResult = true
		mb.Correct = m.Result.Correct
		mb.Wrong = m.Result.Wrong
		mb.Delta = m.Result.Delta
	}

	targets := make(map[string]bool, len(m.Targets))
	for _, img := range m.Targets {
		targets[img.ID] = true
	}
	tiles := m.Options
	if len(tiles) == 0 {
		tiles = m.Targets
	}
	for _, img := range tiles {
		mb.Tiles = append(mb.Tiles, viewmodel.Tile{
			ID:       img.ID,
			Src:      img.Src,
			Label:    img.Label,
			Selected: slices.Contains(m.Selected, img.ID),
			Target:   targets[img.ID],
		})
	}
	return mb
}

func formatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func boardKey(view session.View) string {
	parts := []string{
		string(view.Session.Lifecycle),
		strconv.Itoa(view.Session.RoundIndex),
		strconv.FormatUint(view.Version, 10),
	}
	if view.Pairs != nil {
		parts = append(parts, string(view.Pairs.Round.Phase), view.Pairs.Round.SubPhase)
	}
	if view.Memorize != nil {
		parts = append(parts, string(view.Memorize.Phase), strconv.FormatUint(view.Memorize.Generation, 10))
	}
	return strings.Join(parts, "|")
}
