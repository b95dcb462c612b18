package engine

import "fmt"

// Score is a head-to-head result from the first player's perspective.
type Score struct {
	WinsFirst  int
	Draws      int
	WinsSecond int
}

func (s Score) Games() int {
	return s.WinsFirst + s.Draws + s.WinsSecond
}

func (s Score) String() string {
	return fmt.Sprintf("%d wins, %d draws, %d losses", s.WinsFirst, s.Draws, s.WinsSecond)
}

// Comparator reports whether candidate improves on best.
type Comparator func(candidate, best Score) bool

// MoreWinsFewerLosses ranks by wins, then by fewer losses.
func MoreWinsFewerLosses(candidate, best Score) bool {
	if candidate.WinsFirst != best.WinsFirst {
		return candidate.WinsFirst > best.WinsFirst
	}
	return candidate.WinsSecond < best.WinsSecond
}

// Lexicographic orders (wins, draws, losses) as a tuple.
func Lexicographic(candidate, best Score) bool {
	if candidate.WinsFirst != best.WinsFirst {
		return candidate.WinsFirst > best.WinsFirst
	}
	if candidate.Draws != best.Draws {
		return candidate.Draws > best.Draws
	}
	return candidate.WinsSecond > best.WinsSecond
}
