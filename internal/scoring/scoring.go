// Package scoring computes Watch-and-Memorize round deltas.
package scoring

const (
	CorrectPoints = 10
	WrongPenalty  = 5
	// TimeBonusDivisor turns seconds left into bonus points: floor(t * 0.1).
	TimeBonusDivisor = 10
)

// Result is the breakdown of one submitted selection.
type Result struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Delta   int `json:"delta"`
}

// Score compares selected against targets. Duplicate selections count once.
// Delta may be negative.
func Score(selected, targets []string, timeRemaining int) Result {
	want := make(map[string]struct{}, len(targets))
	for _, id := range targets {
		want[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(selected))
	var res Result
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := want[id]; ok {
			res.Correct++
		} else {
			res.Wrong++
		}
	}
	res.Delta = res.Correct*CorrectPoints - res.Wrong*WrongPenalty + TimeBonus(timeRemaining)
	return res
}

// TimeBonus is floor(max(t, 0) * 0.1) computed on integers.
func TimeBonus(timeRemaining int) int {
	if timeRemaining <= 0 {
		return 0
	}
	return timeRemaining / TimeBonusDivisor
}
