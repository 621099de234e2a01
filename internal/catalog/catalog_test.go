package catalog

import (
	"encoding/json"
	"testing"
	"time"
)

func rawEntry(guid, title, pubDate string) map[string]interface{} {
	return map[string]interface{}{
		"guid":      guid,
		"title":     title,
		"pubDate":   pubDate,
		"enclosure": map[string]string{"link": "https://example.com/" + guid + ".mp3"},
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return data
}

func TestLoadSortsNewestFirst(t *testing.T) {
	data := mustJSON(t, []interface{}{
		rawEntry("a", "Episode A", "2025-12-18T10:00:00Z"),
		rawEntry("c", "Episode C", "2025-12-20T10:00:00Z"),
		rawEntry("b", "Episode B", "2025-12-19T10:00:00Z"),
	})

	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Len() != 3 {
		t.Fatalf("Expected 3 episodes, got %d", c.Len())
	}
	for i := 0; i < c.Len()-1; i++ {
		if !c.Episode(i).PubDate.After(c.Episode(i + 1).PubDate) {
			t.Errorf("Episodes not sorted descending at index %d", i)
		}
	}
	if c.Episode(0).GUID != "c" {
		t.Errorf("Expected newest episode 'c' first, got %q", c.Episode(0).GUID)
	}
}

func TestLoadRejectsBadDates(t *testing.T) {
	data := mustJSON(t, []interface{}{
		rawEntry("ok", "Kept", "2025-12-18T10:00:00Z"),
		rawEntry("old", "Too old", "2025-11-01T10:00:00Z"),
		rawEntry("bad", "Unparseable", "not a date"),
		map[string]interface{}{"guid": "none", "title": "Missing date"},
	})

	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Expected 1 episode after filtering, got %d", c.Len())
	}
	if c.Episode(0).GUID != "ok" {
		t.Errorf("Expected 'ok' to survive, got %q", c.Episode(0).GUID)
	}
}

func TestLoadFallbackChains(t *testing.T) {
	data := mustJSON(t, []interface{}{
		map[string]interface{}{
			"isoDate":  "2025-12-18T10:00:00Z",
			"audioUrl": "https://example.com/legacy.mp3",
			"image":    "https://example.com/cover.jpg",
		},
	})

	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ep := c.Episode(0)
	if ep.Title != PlaceholderTitle {
		t.Errorf("Expected placeholder title, got %q", ep.Title)
	}
	if ep.GUID != PlaceholderTitle {
		t.Errorf("Expected guid to fall back to title, got %q", ep.GUID)
	}
	if ep.AudioURL != "https://example.com/legacy.mp3" {
		t.Errorf("Expected audioUrl fallback, got %q", ep.AudioURL)
	}
	if ep.ThumbnailURL != "https://example.com/cover.jpg" {
		t.Errorf("Expected image fallback, got %q", ep.ThumbnailURL)
	}
}

func TestLoadFailures(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"malformed", `{"not":"a list"}`},
		{"empty", `[]`},
		{"all filtered", `[{"guid":"x","title":"x","pubDate":"2020-01-01T00:00:00Z"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.data))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if _, ok := err.(*FetchError); !ok {
				t.Errorf("Expected *FetchError, got %T", err)
			}
		})
	}
}

func TestAbsoluteNumbers(t *testing.T) {
	entries := make([]interface{}, 0, 5)
	base := time.Date(2025, 12, 18, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entries = append(entries, rawEntry(
			string(rune('a'+i)),
			"Episode",
			base.AddDate(0, 0, i).Format(time.RFC3339),
		))
	}

	c, err := Load(mustJSON(t, entries))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Numbers are contiguous 1..N, strictly decreasing with index, newest
	// (index 0) highest.
	seen := make(map[int]bool)
	for i := 0; i < c.Len(); i++ {
		n := c.Number(i)
		if n != c.Len()-i {
			t.Errorf("Number(%d) = %d, want %d", i, n, c.Len()-i)
		}
		if seen[n] {
			t.Errorf("Duplicate number %d", n)
		}
		seen[n] = true
	}
	if c.Number(0) != c.Len() {
		t.Errorf("Newest episode number = %d, want %d", c.Number(0), c.Len())
	}
}

func TestAdjacency(t *testing.T) {
	data := mustJSON(t, []interface{}{
		rawEntry("new", "Newest", "2025-12-20T10:00:00Z"),
		rawEntry("mid", "Middle", "2025-12-19T10:00:00Z"),
		rawEntry("old", "Oldest", "2025-12-18T10:00:00Z"),
	})
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := c.Older(0); got != 1 {
		t.Errorf("Older(0) = %d, want 1", got)
	}
	if got := c.Older(2); got != -1 {
		t.Errorf("Older(oldest) = %d, want -1", got)
	}
	if got := c.Newer(2); got != 1 {
		t.Errorf("Newer(2) = %d, want 1", got)
	}
	if got := c.Newer(0); got != -1 {
		t.Errorf("Newer(newest) = %d, want -1", got)
	}
}

func TestIndexByGUID(t *testing.T) {
	data := mustJSON(t, []interface{}{
		rawEntry("x", "X", "2025-12-20T10:00:00Z"),
		rawEntry("y", "Y", "2025-12-19T10:00:00Z"),
	})
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if idx, ok := c.IndexByGUID("y"); !ok || idx != 1 {
		t.Errorf("IndexByGUID(y) = %d, %v; want 1, true", idx, ok)
	}
	if _, ok := c.IndexByGUID("missing"); ok {
		t.Error("Expected missing guid to not resolve")
	}
}

func TestParsePubDateLayouts(t *testing.T) {
	cases := []string{
		"2025-12-18T10:00:00Z",
		"Thu, 18 Dec 2025 10:00:00 +0000",
		"Thu, 18 Dec 2025 10:00:00 GMT",
	}
	for _, dateStr := range cases {
		if _, err := ParsePubDate(dateStr); err != nil {
			t.Errorf("ParsePubDate(%q) failed: %v", dateStr, err)
		}
	}
	if _, err := ParsePubDate("yesterday"); err == nil {
		t.Error("Expected an error for an unparseable date")
	}
}
