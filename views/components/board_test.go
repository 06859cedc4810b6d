package components

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchplay/internal/viewmodel"
)

func renderBoard(t *testing.T, data viewmodel.Board) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, Board(data).Render(context.Background(), &b))
	return b.String()
}

func TestBoardSanitizesImageSources(t *testing.T) {
	html := renderBoard(t, viewmodel.Board{
		SessionID: "s1",
		Lifecycle: "playing",
		CanPlay:   true,
		Pairs: &viewmodel.PairsBoard{
			Phase:     "play",
			Left:      &viewmodel.Card{ID: "a", Content: "javascript:alert(1)", IsImage: true},
			Right:     &viewmodel.Card{ID: "b", Content: "data:image/png;base64,AAAA", IsImage: true},
			CanAnswer: true,
		},
	})

	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, `src="about:invalid#TemplFailedSanitizationURL"`)
	assert.Contains(t, html, `src="data:image/png;base64,AAAA"`)
	assert.Contains(t, html, `data-intent="answer"`)
	assert.Contains(t, html, `value="nopair"`)
}

func TestBoardEscapesTextCards(t *testing.T) {
	html := renderBoard(t, viewmodel.Board{
		SessionID: "s1",
		Lifecycle: "playing",
		Pairs: &viewmodel.PairsBoard{
			Left:     &viewmodel.Card{ID: "a", Content: `<script>alert("x")</script>`},
			Feedback: "correct",
		},
	})

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Correct!")
	assert.Contains(t, html, `<div class="card card-empty"></div>`)
	assert.NotContains(t, html, "data-intent", "spectators get no controls")
}

func TestBoardIntentPathsAreEscaped(t *testing.T) {
	html := renderBoard(t, viewmodel.Board{
		SessionID: "a b",
		Lifecycle: "intro",
		CanPlay:   true,
	})

	assert.Contains(t, html, `action="/session/a%20b/start"`)
	assert.Contains(t, html, `hx-post="/session/a%20b/start"`)
}

func TestBoardMemorizeSelection(t *testing.T) {
	board := viewmodel.Board{
		SessionID: "s1",
		Lifecycle: "playing",
		CanPlay:   true,
		Memorize: &viewmodel.MemorizeBoard{
			Phase: "select",
			Tiles: []viewmodel.Tile{
				{ID: "t1", Src: "https://img.example/1.png", Label: "one", Selected: true},
				{ID: "t2", Src: "https://img.example/2.png", Label: "two"},
			},
			Selected:  1,
			CanSubmit: true,
		},
	}

	html := renderBoard(t, board)
	assert.Equal(t, 2, strings.Count(html, `action="/session/s1/select"`))
	assert.Equal(t, 1, strings.Count(html, "data-selected"))
	assert.Contains(t, html, "(1 selected)")
	assert.Contains(t, html, `data-intent="submit"`)

	board.Memorize.Phase = "result"
	board.Memorize.HasResult = true
	board.Memorize.Tiles[1].Target = true
	board.Memorize.Correct, board.Memorize.Wrong, board.Memorize.Delta = 1, 1, 0
	html = renderBoard(t, board)
	assert.NotContains(t, html, "/select")
	assert.Contains(t, html, "data-target")
	assert.Contains(t, html, "1 correct, 1 wrong, +0 points")
}
