package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekv/utl-player/internal/models"
)

// CutoffDate is the first publish date admitted into the catalog. Entries
// older than this (or with unparseable dates) are filtered out.
var CutoffDate = time.Date(2025, time.December, 17, 0, 0, 0, 0, time.UTC)

// PlaceholderTitle substitutes for a missing episode title.
const PlaceholderTitle = "Без назви"

// FetchError means the catalog source was unreachable, malformed, or empty.
// It is fatal to startup: no partial catalog is ever shown, and the only
// retry is an explicit user action.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog fetch failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog fetch failed: %s", e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Catalog is the normalized, date-filtered episode list sorted newest first.
// Read-only after Load.
type Catalog struct {
	episodes []models.Episode
	byGUID   map[string]int
}

// rawEpisode mirrors one element of the episodes.json array, with the legacy
// field aliases the feed exporter has produced over time.
type rawEpisode struct {
	GUID        string `json:"guid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	ISODate     string `json:"isoDate"`
	AudioURL    string `json:"audioUrl"`
	Enclosure   struct {
		Link string `json:"link"`
		URL  string `json:"url"`
	} `json:"enclosure"`
	Thumbnail string `json:"thumbnail"`
	Image     string `json:"image"`
	ITunes    struct {
		Image string `json:"image"`
	} `json:"itunes"`
}

// Load parses a JSON episode array into a Catalog. Each entry is normalized
// through the fallback chains, entries outside the cutoff window are dropped,
// and the remainder is sorted by publish date descending.
func Load(data []byte) (*Catalog, error) {
	var raw []rawEpisode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FetchError{Reason: "malformed episode list", Err: err}
	}
	if len(raw) == 0 {
		return nil, &FetchError{Reason: "empty episode list"}
	}

	episodes := make([]models.Episode, 0, len(raw))
	for _, r := range raw {
		ep, ok := normalize(r)
		if !ok {
			continue
		}
		episodes = append(episodes, ep)
	}
	if len(episodes) == 0 {
		return nil, &FetchError{Reason: "no episodes after date filter"}
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].PubDate.After(episodes[j].PubDate)
	})

	c := &Catalog{
		episodes: episodes,
		byGUID:   make(map[string]int, len(episodes)),
	}
	for i, ep := range episodes {
		if _, exists := c.byGUID[ep.GUID]; !exists {
			c.byGUID[ep.GUID] = i
		}
	}
	return c, nil
}

// LoadSource reads the episode list from a local path or an http(s) URL.
func LoadSource(src string) (*Catalog, error) {
	data, err := readSource(src)
	if err != nil {
		return nil, &FetchError{Reason: "source unreachable", Err: err}
	}
	return Load(data)
}

func readSource(src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := http.Get(src)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(src)
}

func normalize(r rawEpisode) (models.Episode, bool) {
	dateStr := r.PubDate
	if dateStr == "" {
		dateStr = r.ISODate
	}
	pubDate, err := ParsePubDate(dateStr)
	if err != nil || pubDate.Before(CutoffDate) {
		return models.Episode{}, false
	}

	title := r.Title
	if title == "" {
		title = PlaceholderTitle
	}

	guid := r.GUID
	if guid == "" {
		guid = title
	}

	audio := r.Enclosure.Link
	if audio == "" {
		audio = r.Enclosure.URL
	}
	if audio == "" {
		audio = r.AudioURL
	}

	thumb := r.Thumbnail
	if thumb == "" {
		thumb = r.Image
	}
	if thumb == "" {
		thumb = r.ITunes.Image
	}

	return models.Episode{
		GUID:         guid,
		Title:        title,
		Description:  r.Description,
		PubDate:      pubDate,
		AudioURL:     audio,
		ThumbnailURL: thumb,
	}, true
}

// ParsePubDate tries the date layouts the feed has used over time.
func ParsePubDate(dateStr string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 02 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// Len returns the number of episodes in the catalog.
func (c *Catalog) Len() int { return len(c.episodes) }

// Episode returns the episode at index i (0 = newest).
func (c *Catalog) Episode(i int) models.Episode { return c.episodes[i] }

// Episodes returns the full list, newest first. Callers must not mutate it.
func (c *Catalog) Episodes() []models.Episode { return c.episodes }

// Number is the absolute episode number: 1-based, counting up from the
// oldest episode. Index 0 (newest) has the highest number. Always computed
// from the unfiltered catalog index.
func (c *Catalog) Number(i int) int { return len(c.episodes) - i }

// IndexByGUID resolves a GUID to its catalog index.
func (c *Catalog) IndexByGUID(guid string) (int, bool) {
	i, ok := c.byGUID[guid]
	return i, ok
}

// Older returns the index of the next older episode, or -1 at the oldest.
// Older means one position down the newest-first ordering.
func (c *Catalog) Older(i int) int {
	if i < 0 || i+1 >= len(c.episodes) {
		return -1
	}
	return i + 1
}

// Newer returns the index of the next newer episode, or -1 at the newest.
func (c *Catalog) Newer(i int) int {
	if i <= 0 || i >= len(c.episodes) {
		return -1
	}
	return i - 1
}
