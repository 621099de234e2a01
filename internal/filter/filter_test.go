package filter

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/olekv/utl-player/internal/catalog"
)

// testCatalog builds a 10-episode catalog whose newest entry carries
// number 10. Titles and descriptions are distinct per episode.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	type enclosure struct {
		Link string `json:"link"`
	}
	type entry struct {
		GUID        string    `json:"guid"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		PubDate     string    `json:"pubDate"`
		Enclosure   enclosure `json:"enclosure"`
	}

	base := time.Date(2025, 12, 18, 0, 0, 0, 0, time.UTC)
	entries := make([]entry, 0, 10)
	for i := 1; i <= 10; i++ {
		entries = append(entries, entry{
			GUID:        fmt.Sprintf("ep-%d", i),
			Title:       fmt.Sprintf("Episode %d: фронт і переговори", i),
			Description: fmt.Sprintf("Опис випуску %d", i),
			PubDate:     base.AddDate(0, 0, i).Format(time.RFC3339),
			Enclosure:   enclosure{Link: fmt.Sprintf("https://example.com/%d.mp3", i)},
		})
	}
	entries[2].Title = "Спецвипуск: санкції проти росії"
	entries[2].Description = "Нові обмеження та ембарго"

	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	c, err := catalog.Load(data)
	if err != nil {
		t.Fatalf("catalog.Load failed: %v", err)
	}
	return c
}

func guids(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Episode.GUID)
	}
	return out
}

func TestVisibleNoFilters(t *testing.T) {
	c := testCatalog(t)
	matches := Visible(c, "", nil)
	if len(matches) != c.Len() {
		t.Fatalf("Expected all %d episodes, got %d", c.Len(), len(matches))
	}
	for i, m := range matches {
		if m.Index != i {
			t.Errorf("Match %d has index %d, catalog order not preserved", i, m.Index)
		}
		if m.Number != c.Number(i) {
			t.Errorf("Match %d has number %d, want %d", i, m.Number, c.Number(i))
		}
	}
}

func TestHashSearchIsStrict(t *testing.T) {
	c := testCatalog(t)

	matches := Visible(c, "#7", nil)
	if len(matches) != 1 {
		t.Fatalf("Expected exactly 1 match for #7, got %d: %v", len(matches), guids(matches))
	}
	if matches[0].Number != 7 {
		t.Errorf("Expected episode number 7, got %d", matches[0].Number)
	}

	// "#70" etc. must not match via substring of the number.
	if got := Visible(c, "#70", nil); len(got) != 0 {
		t.Errorf("Expected no matches for #70, got %v", guids(got))
	}
}

func TestPlainNumberSearch(t *testing.T) {
	c := testCatalog(t)

	// A bare number matches the exact episode number; "7" also appears in
	// the titles/descriptions of episode 7 itself only.
	matches := Visible(c, "3", nil)
	found := false
	for _, m := range matches {
		if m.Number == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected episode number 3 among matches, got %v", guids(matches))
	}
}

func TestTextSearchCaseInsensitive(t *testing.T) {
	c := testCatalog(t)

	matches := Visible(c, "СПЕЦВИПУСК", nil)
	if len(matches) != 1 || matches[0].Episode.GUID != "ep-3" {
		t.Fatalf("Expected only ep-3 for title search, got %v", guids(matches))
	}

	// Description is searched too.
	matches = Visible(c, "ембарго", nil)
	if len(matches) != 1 || matches[0].Episode.GUID != "ep-3" {
		t.Fatalf("Expected only ep-3 for description search, got %v", guids(matches))
	}
}

func TestTopicFilter(t *testing.T) {
	c := testCatalog(t)

	sanctions, ok := TopicByID("sanctions")
	if !ok {
		t.Fatal("sanctions topic missing")
	}

	matches := Visible(c, "", &sanctions)
	if len(matches) != 1 || matches[0].Episode.GUID != "ep-3" {
		t.Fatalf("Expected only ep-3 for sanctions topic, got %v", guids(matches))
	}
}

func TestSearchAndTopicCombine(t *testing.T) {
	c := testCatalog(t)

	front, ok := TopicByID("front")
	if !ok {
		t.Fatal("front topic missing")
	}

	// Every regular episode mentions the front; the search term narrows it
	// to one.
	matches := Visible(c, "episode 5", &front)
	if len(matches) != 1 || matches[0].Episode.GUID != "ep-5" {
		t.Fatalf("Expected only ep-5, got %v", guids(matches))
	}

	// ep-5 matches the search term but not the sanctions topic, so the
	// combination yields nothing.
	sanctions, _ := TopicByID("sanctions")
	if got := Visible(c, "episode 5", &sanctions); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", guids(got))
	}
}

func TestVisibleIdempotent(t *testing.T) {
	c := testCatalog(t)

	first := Visible(c, "фронт", nil)
	second := Visible(c, "фронт", nil)
	if len(first) != len(second) {
		t.Fatalf("Repeated filtering changed result size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Episode.GUID != second[i].Episode.GUID {
			t.Errorf("Repeated filtering changed result at %d", i)
		}
	}
}

func TestTopicTableIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, topic := range Topics {
		if topic.ID == "" {
			t.Errorf("Topic %q has empty ID", topic.Label)
		}
		if seen[topic.ID] {
			t.Errorf("Duplicate topic ID %q", topic.ID)
		}
		seen[topic.ID] = true
		if len(topic.Keywords) == 0 {
			t.Errorf("Topic %q has no keywords", topic.ID)
		}
	}
}
