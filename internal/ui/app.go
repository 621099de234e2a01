// Package ui is the terminal presentation layer. It owns no playback logic:
// every keystroke maps onto a typed session, queue, or history operation, and
// the screen is redrawn from those components' current state.
package ui

import (
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"

	"github.com/olekv/utl-player/internal/catalog"
	"github.com/olekv/utl-player/internal/filter"
	"github.com/olekv/utl-player/internal/history"
	"github.com/olekv/utl-player/internal/queue"
	"github.com/olekv/utl-player/internal/session"
	"github.com/olekv/utl-player/internal/store"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeJump
)

type Panel int

const (
	PanelNone Panel = iota
	PanelQueue
	PanelHistory
)

// App drives the event loop: terminal input, audio-backend events, and
// session notifications all arrive on one goroutine.
type App struct {
	screen tcell.Screen
	quit   chan struct{}

	catalog       *catalog.Catalog
	sess          *session.Session
	queueMgr      *queue.Manager
	historyMgr    *history.Manager
	stateStore    *store.Store
	backendEvents <-chan session.BackendEvent

	mode        Mode
	panel       Panel
	search      *SearchState
	jump        *SearchState
	jumpMatches []jumpMatch
	jumpCursor  int
	activeTopic int // index into filter.Topics, -1 when none
	visible     []filter.Match
	selected    int
	offset      int

	statusMessage string
}

type jumpMatch struct {
	index int
	score int
	label string
}

// NewApp wires the presentation layer to its collaborators.
func NewApp(c *catalog.Catalog, sess *session.Session, q *queue.Manager, h *history.Manager, st *store.Store, events <-chan session.BackendEvent) *App {
	a := &App{
		quit:          make(chan struct{}),
		catalog:       c,
		sess:          sess,
		queueMgr:      q,
		historyMgr:    h,
		stateStore:    st,
		backendEvents: events,
		search:        NewSearchState(),
		jump:          NewSearchState(),
		activeTopic:   -1,
	}
	a.refilter()
	return a
}

// Run takes over the terminal until the user quits.
func (a *App) Run() error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	a.screen = s
	defer s.Fini()

	s.SetStyle(tcell.StyleDefault.Background(ColorBg).Foreground(ColorFg))
	s.Clear()

	a.sess.SetNotify(a.onSessionEvent)

	screenEvents := make(chan tcell.Event, 16)
	go s.ChannelEvents(screenEvents, a.quit)

	a.draw()
	for {
		select {
		case <-a.quit:
			return nil
		case ev := <-screenEvents:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if a.handleKey(ev) {
					close(a.quit)
					return nil
				}
			case *tcell.EventResize:
				s.Sync()
			}
			a.draw()
		case ev := <-a.backendEvents:
			a.sess.HandleBackendEvent(ev)
			a.draw()
		}
	}
}

func (a *App) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventEpisodeChanged:
		if ep, ok := a.sess.CurrentEpisode(); ok {
			a.statusMessage = ep.Title
		}
	case session.EventQueueChanged, session.EventPlayedChanged:
		// List markers are recomputed on the next draw.
	}
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch a.mode {
	case ModeSearch:
		a.handleSearchKey(ev)
		return false
	case ModeJump:
		a.handleJumpKey(ev)
		return false
	}

	if ev.Key() == tcell.KeyCtrlC {
		return true
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		a.playSelected()
		return false
	case tcell.KeyLeft:
		a.sess.SeekBackward()
		return false
	case tcell.KeyRight:
		a.sess.SeekForward()
		return false
	case tcell.KeyUp:
		a.moveSelection(-1)
		return false
	case tcell.KeyDown:
		a.moveSelection(1)
		return false
	case tcell.KeyTab:
		a.togglePanel(PanelQueue)
		return false
	case tcell.KeyEscape:
		a.clearFilters()
		a.panel = PanelNone
		return false
	}

	switch ev.Rune() {
	case 'Q':
		return true
	case ' ':
		a.sess.TogglePlayback()
	case 'j':
		a.moveSelection(1)
	case 'k':
		a.moveSelection(-1)
	case 'g':
		a.selected = 0
		a.ensureVisible()
	case 'G':
		a.selected = len(a.visible) - 1
		a.ensureVisible()
	case 'l':
		a.playSelected()
	case 'n':
		a.sess.PlayNext()
	case 'p':
		a.sess.PlayPrevious()
	case 'a':
		a.enqueueSelected()
	case 'd':
		a.dequeueSelected()
	case '/':
		a.mode = ModeSearch
	case 't':
		a.cycleTopic()
	case 'f':
		a.openJump()
	case 'c':
		a.continueListening()
	case 'm':
		a.sess.ToggleMute()
	case '+', '=':
		a.sess.SetVolume(a.sess.Volume() + 0.1)
	case '-':
		a.sess.SetVolume(a.sess.Volume() - 0.1)
	case '[':
		a.sess.SetPlaybackRate(a.sess.PlaybackRate() - 0.25)
	case ']':
		a.sess.SetPlaybackRate(a.sess.PlaybackRate() + 0.25)
	case 'H':
		a.togglePanel(PanelHistory)
	}
	return false
}

func (a *App) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		a.mode = ModeNormal
	case tcell.KeyEscape:
		a.search.Clear()
		a.mode = ModeNormal
		a.refilter()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.search.DeleteChar()
		a.refilter()
	case tcell.KeyRune:
		a.search.InsertChar(ev.Rune())
		// Typing a search term clears the active topic.
		a.activeTopic = -1
		a.refilter()
	}
}

func (a *App) handleJumpKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.mode = ModeNormal
		a.jump.Clear()
	case tcell.KeyEnter:
		if a.jumpCursor < len(a.jumpMatches) {
			idx := a.jumpMatches[a.jumpCursor].index
			if err := a.sess.SelectEpisode(idx, true); err != nil {
				log.Printf("ui: jump select failed: %v", err)
			}
		}
		a.mode = ModeNormal
		a.jump.Clear()
	case tcell.KeyUp:
		if a.jumpCursor > 0 {
			a.jumpCursor--
		}
	case tcell.KeyDown:
		if a.jumpCursor < len(a.jumpMatches)-1 {
			a.jumpCursor++
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.jump.DeleteChar()
		a.rescoreJump()
	case tcell.KeyRune:
		a.jump.InsertChar(ev.Rune())
		a.rescoreJump()
	}
}

func (a *App) playSelected() {
	if a.selected < 0 || a.selected >= len(a.visible) {
		return
	}
	idx := a.visible[a.selected].Index
	if idx == a.sess.CurrentIndex() {
		a.sess.TogglePlayback()
		return
	}
	if err := a.sess.SelectEpisode(idx, true); err != nil {
		log.Printf("ui: select failed: %v", err)
	}
}

func (a *App) enqueueSelected() {
	if a.selected < 0 || a.selected >= len(a.visible) {
		return
	}
	ep := a.visible[a.selected].Episode
	if a.queueMgr.Enqueue(ep) {
		a.statusMessage = "Додано до черги"
	} else {
		a.statusMessage = "Вже у черзі"
	}
}

func (a *App) dequeueSelected() {
	if a.selected < 0 || a.selected >= len(a.visible) {
		return
	}
	ep := a.visible[a.selected].Episode
	if a.queueMgr.Contains(ep.GUID) {
		a.queueMgr.Remove(ep.GUID)
		a.statusMessage = "Видалено з черги"
	}
}

func (a *App) cycleTopic() {
	a.activeTopic++
	if a.activeTopic >= len(filter.Topics) {
		a.activeTopic = -1
	}
	// Selecting a topic clears the text search.
	a.search.Clear()
	a.refilter()
}

func (a *App) clearFilters() {
	a.search.Clear()
	a.activeTopic = -1
	a.refilter()
}

func (a *App) continueListening() {
	resume, ok := a.stateStore.Resume()
	if !ok || resume.Time < history.PlayedThreshold {
		return
	}
	idx, found := a.catalog.IndexByGUID(resume.GUID)
	if !found {
		return
	}
	if err := a.sess.SelectEpisode(idx, true); err != nil {
		log.Printf("ui: continue failed: %v", err)
	}
}

func (a *App) togglePanel(p Panel) {
	if a.panel == p {
		a.panel = PanelNone
	} else {
		a.panel = p
	}
}

func (a *App) openJump() {
	a.mode = ModeJump
	a.jump.Clear()
	a.jumpCursor = 0
	a.rescoreJump()
}

func (a *App) rescoreJump() {
	a.jumpMatches = a.jumpMatches[:0]
	for i := 0; i < a.catalog.Len(); i++ {
		label := fmt.Sprintf("#%d %s", a.catalog.Number(i), a.catalog.Episode(i).Title)
		score := a.jump.FuzzyScore(label)
		if score < 0 {
			continue
		}
		a.jumpMatches = append(a.jumpMatches, jumpMatch{index: i, score: score, label: label})
	}
	// Highest score first; catalog order breaks ties.
	for i := 1; i < len(a.jumpMatches); i++ {
		for j := i; j > 0 && a.jumpMatches[j].score > a.jumpMatches[j-1].score; j-- {
			a.jumpMatches[j], a.jumpMatches[j-1] = a.jumpMatches[j-1], a.jumpMatches[j]
		}
	}
	a.jumpCursor = 0
}

func (a *App) refilter() {
	var topic *filter.Topic
	if a.activeTopic >= 0 && a.activeTopic < len(filter.Topics) {
		topic = &filter.Topics[a.activeTopic]
	}
	a.visible = filter.Visible(a.catalog, a.search.Query(), topic)
	if a.selected >= len(a.visible) {
		a.selected = len(a.visible) - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
	a.offset = 0
	a.ensureVisible()
}

func (a *App) moveSelection(delta int) {
	a.selected += delta
	if a.selected < 0 {
		a.selected = 0
	}
	if a.selected >= len(a.visible) {
		a.selected = len(a.visible) - 1
	}
	a.ensureVisible()
}

func (a *App) ensureVisible() {
	rows := a.listHeight()
	if rows <= 0 {
		return
	}
	if a.selected < a.offset {
		a.offset = a.selected
	}
	if a.selected >= a.offset+rows {
		a.offset = a.selected - rows + 1
	}
	if a.offset < 0 {
		a.offset = 0
	}
}
