// Package words holds the answer dictionary and picks secret words from it.
package words

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// WordLength is the number of letters in every answer.
const WordLength = 5

//go:embed words.txt
var embedded []byte

var ErrEmptyDictionary = errors.New("dictionary is empty")

// Selector draws answers uniformly at random, with replacement.
type Selector struct {
	words []string

	mu  sync.Mutex
	rng *rand.Rand // nil => package-level source
}

// NewSelector builds a selector over list. A nil rng uses the global source.
func NewSelector(list []string, rng *rand.Rand) (*Selector, error) {
	if len(list) == 0 {
		return nil, ErrEmptyDictionary
	}
	cp := make([]string, len(list))
	for i, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if !isWord(w) {
			return nil, fmt.Errorf("invalid dictionary word %q", list[i])
		}
		cp[i] = w
	}
	return &Selector{words: cp, rng: rng}, nil
}

// SelectAnswer returns a random lowercase 5-letter word.
func (s *Selector) SelectAnswer() string {
	if s.rng == nil {
		return s.words[rand.IntN(len(s.words))]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words[s.rng.IntN(len(s.words))]
}

func (s *Selector) Len() int { return len(s.words) }

// Load reads the dictionary from path, or the embedded list when path is empty.
// Files ending in .json must hold a JSON array of strings; anything else is
// read one word per line, skipping blanks and # comments.
func Load(path string) ([]string, error) {
	if path == "" {
		return parseLines(bytes.NewReader(embedded))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSON(f)
	}
	return parseLines(f)
}

func parseJSON(r io.Reader) ([]string, error) {
	var list []string
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if !isWord(w) {
			return nil, fmt.Errorf("invalid dictionary word %q", w)
		}
		out = append(out, w)
	}
	return out, nil
}

func parseLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		s = strings.ToLower(s)
		if !isWord(s) {
			return nil, fmt.Errorf("invalid dictionary word %q", s)
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

func isWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
