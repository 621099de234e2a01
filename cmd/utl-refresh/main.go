// utl-refresh re-derives episodes.json from the upstream RSS feed, applying
// the same cutoff-date and normalization rules as the player's catalog
// store. Run it once, or on a cron schedule with -every.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/olekv/utl-player/internal/feed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	feedURL := flag.String("feed", envOr("FEED_URL", feed.DefaultFeedURL), "upstream RSS feed URL")
	outFile := flag.String("out", envOr("EPISODES_FILE", "episodes.json"), "output catalog file")
	every := flag.String("every", "", "cron schedule (e.g. \"@every 1h\"); empty runs once")
	flag.Parse()

	if *every == "" {
		if err := refresh(*feedURL, *outFile); err != nil {
			log.Fatalf("refresh failed: %v", err)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*every, func() {
		if err := refresh(*feedURL, *outFile); err != nil {
			log.Printf("refresh failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("invalid schedule %q: %v", *every, err)
	}

	log.Printf("refreshing %s on schedule %q", *outFile, *every)
	c.Run()
}

func refresh(feedURL, outFile string) error {
	log.Printf("fetching feed %s", feedURL)
	items, err := feed.Fetch(feedURL)
	if err != nil {
		return err
	}
	if err := feed.WriteCatalog(outFile, items); err != nil {
		return err
	}
	log.Printf("wrote %d episodes to %s", len(items), outFile)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
