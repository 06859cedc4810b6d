package content

import (
	"fmt"
	"strings"
)

// Image is one picture used by Watch-and-Memorize.
type Image struct {
	ID    string `json:"id"`
	Src   string `json:"src"`
	Label string `json:"label"`
}

const imageRoot = "/images/watch-and-memorize/"

// DefaultImages is the built-in image pool.
func DefaultImages() []Image {
	labels := []struct{ id, label string }{
		{"kucing", "Kucing"},
		{"anjing", "Anjing"},
		{"bunga", "Bunga"},
		{"pohon", "Pohon"},
		{"gunung", "Gunung"},
		{"pantai", "Pantai"},
		{"jalan", "Jalan"},
		{"mobil", "Mobil"},
	}
	out := make([]Image, 0, len(labels))
	for i, l := range labels {
		out = append(out, Image{
			ID:    l.id,
			Src:   fmt.Sprintf("%simg%d.jpg", imageRoot, i+1),
			Label: l.label,
		})
	}
	return out
}

// ValidateImages rejects pools too small for showCount targets or with duplicate ids.
func ValidateImages(images []Image, showCount int) error {
	if showCount < 1 {
		return fmt.Errorf("%w: show count %d", ErrMalformedContent, showCount)
	}
	if len(images) < showCount {
		return fmt.Errorf("%w: %d images for %d targets", ErrMalformedContent, len(images), showCount)
	}
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.ID) == "" {
			return fmt.Errorf("%w: image without id", ErrMalformedContent)
		}
		if _, dup := seen[img.ID]; dup {
			return fmt.Errorf("%w: duplicate image id %q", ErrMalformedContent, img.ID)
		}
		seen[img.ID] = struct{}{}
	}
	return nil
}
