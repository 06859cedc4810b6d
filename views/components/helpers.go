package components

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"matchplay/internal/viewmodel"
)

// imageURL passes inline image data through and sanitizes everything else.
func imageURL(src string) templ.SafeURL {
	if strings.HasPrefix(src, "data:image/") {
		return templ.SafeURL(src)
	}
	return templ.URL(src)
}

func intentPath(sessionID, intent string) string {
	return "/session/" + url.PathEscape(sessionID) + "/" + intent
}

func feedbackText(feedback string) string {
	if feedback == "correct" {
		return "Correct!"
	}
	return "Wrong"
}

func resultText(m *viewmodel.MemorizeBoard) string {
	return fmt.Sprintf("%d correct, %d wrong, %+d points", m.Correct, m.Wrong, m.Delta)
}
