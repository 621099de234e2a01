// Package feed turns the upstream RSS feed into the episodes.json catalog
// consumed by the player. It applies the same cutoff-date and normalization
// rules as the catalog store, so the interactive session never re-derives
// them.
package feed

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/olekv/utl-player/internal/catalog"
)

// DefaultFeedURL is the upstream show feed.
const DefaultFeedURL = "https://feeds.acast.com/public/shows/67a60b513ef0b176eae6a5d0"

const maxDescriptionRunes = 500

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Items []item `xml:"item"`
}

type item struct {
	Title          string    `xml:"title"`
	GUID           string    `xml:"guid"`
	PubDate        string    `xml:"pubDate"`
	Description    string    `xml:"description"`
	ITunesSummary  string    `xml:"summary"`
	ContentEncoded string    `xml:"encoded"`
	Duration       string    `xml:"duration"`
	Enclosure      enclosure `xml:"enclosure"`
	Image          image     `xml:"image"`
}

type enclosure struct {
	URL string `xml:"url,attr"`
}

type image struct {
	Href string `xml:"href,attr"`
}

// Item is one normalized catalog entry as written to episodes.json.
type Item struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PubDate     string    `json:"pubDate"`
	GUID        string    `json:"guid"`
	Duration    string    `json:"duration,omitempty"`
	Enclosure   encClause `json:"enclosure"`
	Thumbnail   string    `json:"thumbnail,omitempty"`

	pubDate time.Time
}

type encClause struct {
	Link string `json:"link"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Fetch downloads and parses the feed, returning the normalized items newer
// than the catalog cutoff, sorted newest first.
func Fetch(url string) ([]Item, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return Parse(data)
}

// Parse parses raw RSS into normalized catalog items.
func Parse(data []byte) ([]Item, error) {
	var doc rss
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse RSS: %w", err)
	}

	items := make([]Item, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		pubDate, err := catalog.ParsePubDate(strings.TrimSpace(it.PubDate))
		if err != nil || pubDate.Before(catalog.CutoffDate) {
			continue
		}

		description := it.Description
		if description == "" {
			description = it.ITunesSummary
		}
		if description == "" {
			description = it.ContentEncoded
		}

		items = append(items, Item{
			Title:       strings.TrimSpace(it.Title),
			Description: cleanDescription(description),
			PubDate:     strings.TrimSpace(it.PubDate),
			GUID:        strings.TrimSpace(it.GUID),
			Duration:    strings.TrimSpace(it.Duration),
			Enclosure:   encClause{Link: it.Enclosure.URL},
			Thumbnail:   it.Image.Href,
			pubDate:     pubDate,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].pubDate.After(items[j].pubDate)
	})
	return items, nil
}

// WriteCatalog writes the items to path as the episodes.json array.
func WriteCatalog(path string, items []Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// cleanDescription strips markup and caps the text so episodes.json stays
// search-sized rather than article-sized.
func cleanDescription(s string) string {
	s = strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
	runes := []rune(s)
	if len(runes) > maxDescriptionRunes {
		return string(runes[:maxDescriptionRunes])
	}
	return s
}
