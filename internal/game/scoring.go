package game

import (
	"strings"

	"example.com/wordle-duel/internal/words"
)

// Status is the per-letter verdict for a guess.
type Status string

const (
	Hit     Status = "Hit"
	Present Status = "Present"
	Miss    Status = "Miss"
)

// Guess is one scored attempt. Round is 1-based.
type Guess struct {
	Word   string   `json:"word"`
	Result []Status `json:"result"`
	Round  int      `json:"round"`
}

// Evaluate scores guess against answer.
//
// Exact matches are marked first and their answer positions consumed. The
// remaining answer letters form a multiset; non-hit guess positions are then
// resolved left to right, each Present using up one copy of its letter.
// Both arguments must already be 5 ASCII letters (any case).
func Evaluate(guess, answer string) []Status {
	g := strings.ToLower(guess)
	a := strings.ToLower(answer)

	res := make([]Status, words.WordLength)
	var counts [26]int

	for i := 0; i < words.WordLength; i++ {
		if g[i] == a[i] {
			res[i] = Hit
		} else {
			counts[a[i]-'a']++
		}
	}

	for i := 0; i < words.WordLength; i++ {
		if res[i] == Hit {
			continue
		}
		j := g[i] - 'a'
		if counts[j] > 0 {
			res[i] = Present
			counts[j]--
		} else {
			res[i] = Miss
		}
	}
	return res
}

// IsCorrect reports whether every status is Hit.
func IsCorrect(result []Status) bool {
	if len(result) != words.WordLength {
		return false
	}
	for _, s := range result {
		if s != Hit {
			return false
		}
	}
	return true
}

// NormalizeGuess checks that raw is exactly five ASCII letters and lowercases it.
func NormalizeGuess(raw string) (string, error) {
	if len(raw) != words.WordLength {
		return "", ErrInvalidFormat
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return "", ErrInvalidFormat
		}
	}
	return strings.ToLower(raw), nil
}
