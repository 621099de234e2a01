package ui

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// SearchState holds the text being edited on the search/jump line.
type SearchState struct {
	query     string
	cursorPos int
}

// NewSearchState creates an empty search state.
func NewSearchState() *SearchState {
	return &SearchState{}
}

// Query returns the current input.
func (s *SearchState) Query() string { return s.query }

// Clear resets the input.
func (s *SearchState) Clear() {
	s.query = ""
	s.cursorPos = 0
}

// InsertChar inserts a character at the cursor position.
func (s *SearchState) InsertChar(ch rune) {
	if s.cursorPos >= len(s.query) {
		s.query += string(ch)
	} else {
		s.query = s.query[:s.cursorPos] + string(ch) + s.query[s.cursorPos:]
	}
	s.cursorPos += len(string(ch))
}

// DeleteChar deletes the character before the cursor.
func (s *SearchState) DeleteChar() {
	if s.cursorPos > 0 {
		_, size := lastRune(s.query[:s.cursorPos])
		s.query = s.query[:s.cursorPos-size] + s.query[s.cursorPos:]
		s.cursorPos -= size
	}
}

func lastRune(str string) (rune, int) {
	runes := []rune(str)
	r := runes[len(runes)-1]
	return r, len(string(r))
}

// FuzzyScore scores text against the query with the fzf v2 algorithm.
// Returns a negative score when the text does not match.
func (s *SearchState) FuzzyScore(text string) int {
	if s.query == "" {
		return 0
	}

	algo.Init("default")

	chars := util.ToChars([]byte(strings.ToLower(text)))
	pattern := []rune(strings.ToLower(s.query))

	slab := util.MakeSlab(16384, 1024)
	result, _ := algo.FuzzyMatchV2(false, false, true, &chars, pattern, false, slab)
	if result.Start < 0 {
		return -1
	}
	return result.Score
}
