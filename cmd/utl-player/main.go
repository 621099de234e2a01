package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/olekv/utl-player/internal/catalog"
	"github.com/olekv/utl-player/internal/history"
	"github.com/olekv/utl-player/internal/player"
	"github.com/olekv/utl-player/internal/queue"
	"github.com/olekv/utl-player/internal/session"
	"github.com/olekv/utl-player/internal/store"
	"github.com/olekv/utl-player/internal/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// A .env file is optional.
		log.Println("no .env file loaded")
	}

	episodesSrc := flag.String("episodes", envOr("EPISODES_FILE", "episodes.json"), "episode catalog file or URL")
	deepLinkEp := flag.String("ep", "", "episode guid to open")
	deepLinkTime := flag.Float64("t", 0, "start-time offset in seconds for -ep")
	flag.Parse()

	stateDir, err := store.DefaultDir()
	if err != nil {
		log.Printf("failed to resolve state directory: %v", err)
		stateDir = ".utl-player"
	}

	// Send logs to a file; the terminal belongs to the UI.
	if f, err := os.OpenFile(filepath.Join(os.TempDir(), "utl-player.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	cat, err := catalog.LoadSource(*episodesSrc)
	if err != nil {
		// Catalog failure is the one fatal, user-visible error. Retry is an
		// explicit re-run, never an automatic backoff.
		fmt.Fprintf(os.Stderr, "Не вдалося завантажити випуски: %v\nСпробуйте ще раз пізніше.\n", err)
		os.Exit(1)
	}

	st := store.New(stateDir)
	queueMgr := queue.NewManager(st)
	historyMgr := history.NewManager(st)

	backend := player.New()
	if err := backend.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Не вдалося запустити аудіо: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	sess := session.New(cat, queueMgr, historyMgr, st, backend)

	// Deep link: select (without autoplay) and seek after load. Otherwise
	// preload the newest episode so a single play keystroke starts it.
	initial := 0
	if *deepLinkEp != "" {
		if idx, ok := cat.IndexByGUID(*deepLinkEp); ok {
			initial = idx
		} else {
			log.Printf("deep link guid %q not in catalog", *deepLinkEp)
		}
	}
	if err := sess.SelectEpisode(initial, false); err != nil {
		log.Printf("initial episode selection failed: %v", err)
	}
	if *deepLinkEp != "" && *deepLinkTime > 0 {
		sess.SeekOnceReady(*deepLinkTime)
	}

	app := ui.NewApp(cat, sess, queueMgr, historyMgr, st, backend.Events())
	if err := app.Run(); err != nil {
		backend.Close()
		fmt.Fprintf(os.Stderr, "UI error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
