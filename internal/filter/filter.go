// Package filter computes the visible subset of the catalog for a free-text
// search term and/or an active topic. It always returns the complete matching
// set in catalog order; pagination is a presentation concern.
package filter

import (
	"strconv"
	"strings"

	"github.com/olekv/utl-player/internal/catalog"
	"github.com/olekv/utl-player/internal/models"
)

// Match pairs an episode with its position in the unfiltered catalog and its
// absolute number. The number is always derived from the catalog index, never
// from the filtered list's position.
type Match struct {
	Episode models.Episode
	Index   int
	Number  int
}

// Visible applies the search term and the active topic (either may be empty)
// to the catalog, case-insensitively. Both predicates must hold when both are
// set.
func Visible(c *catalog.Catalog, term string, topic *Topic) []Match {
	term = strings.ToLower(strings.TrimSpace(term))

	matches := make([]Match, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		ep := c.Episode(i)
		num := c.Number(i)
		if !matchesSearch(ep, num, term) {
			continue
		}
		if topic != nil && !matchesTopic(ep, *topic) {
			continue
		}
		matches = append(matches, Match{Episode: ep, Index: i, Number: num})
	}
	return matches
}

func matchesSearch(ep models.Episode, num int, term string) bool {
	if term == "" {
		return true
	}

	title := strings.ToLower(ep.Title)

	if strings.HasPrefix(term, "#") {
		// Strict "#N" query: exact number, or the literal term in the title.
		return "#"+strconv.Itoa(num) == term || strings.Contains(title, term)
	}

	if strconv.Itoa(num) == term || "#"+strconv.Itoa(num) == term {
		return true
	}
	if strings.Contains(title, term) {
		return true
	}
	return ep.Description != "" && strings.Contains(strings.ToLower(ep.Description), term)
}

func matchesTopic(ep models.Episode, topic Topic) bool {
	text := strings.ToLower(ep.Title + " " + ep.Description)
	keywords := topic.Keywords
	if len(keywords) == 0 {
		keywords = []string{strings.ToLower(topic.Label)}
	}
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
