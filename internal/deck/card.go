package deck

import (
	"sort"

	"matchplay/internal/content"
)

// Card is one side of a pair as shown on a stack.
type Card struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Stacks are the left and right piles. Both carry the same multiset of ids.
type Stacks struct {
	Left  []Card `json:"left"`
	Right []Card `json:"right"`
}

// FromPairs builds unshuffled stacks, fronts on the left and backs on the right.
func FromPairs(pairs []content.MatchPair) Stacks {
	st := Stacks{
		Left:  make([]Card, 0, len(pairs)),
		Right: make([]Card, 0, len(pairs)),
	}
	for _, p := range pairs {
		st.Left = append(st.Left, Card{ID: p.ID, Content: p.FrontContent})
		st.Right = append(st.Right, Card{ID: p.ID, Content: p.BackContent})
	}
	return st
}

// Len is the number of pairs left.
func (s Stacks) Len() int { return len(s.Left) }

// Empty reports whether every pair has been removed.
func (s Stacks) Empty() bool { return len(s.Left) == 0 }

// At returns the two cards at index i.
func (s Stacks) At(i int) (Card, Card, bool) {
	if i < 0 || i >= len(s.Left) || i >= len(s.Right) {
		return Card{}, Card{}, false
	}
	return s.Left[i], s.Right[i], true
}

// IsPairAt reports whether the cards at index i belong to the same pair.
func (s Stacks) IsPairAt(i int) bool {
	l, r, ok := s.At(i)
	return ok && l.ID == r.ID
}

// Without returns copies of both stacks with the pair id removed.
func (s Stacks) Without(id string) Stacks {
	out := Stacks{
		Left:  make([]Card, 0, len(s.Left)),
		Right: make([]Card, 0, len(s.Right)),
	}
	for _, c := range s.Left {
		if c.ID != id {
			out.Left = append(out.Left, c)
		}
	}
	for _, c := range s.Right {
		if c.ID != id {
			out.Right = append(out.Right, c)
		}
	}
	return out
}

// Clone copies both stacks.
func (s Stacks) Clone() Stacks {
	return Stacks{
		Left:  append([]Card(nil), s.Left...),
		Right: append([]Card(nil), s.Right...),
	}
}

// Balanced reports whether both stacks hold the same multiset of ids.
func (s Stacks) Balanced() bool {
	if len(s.Left) != len(s.Right) {
		return false
	}
	return equalIDs(ids(s.Left), ids(s.Right))
}

func ids(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	sort.Strings(out)
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
