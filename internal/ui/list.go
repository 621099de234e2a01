package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/olekv/utl-player/internal/filter"
	"github.com/olekv/utl-player/internal/history"
	"github.com/olekv/utl-player/internal/session"
)

const panelWidth = 44
const listTop = 3

func (a *App) listHeight() int {
	if a.screen == nil {
		return 20
	}
	_, h := a.screen.Size()
	return h - listTop - 1
}

func (a *App) draw() {
	if a.screen == nil {
		return
	}
	s := a.screen
	s.Clear()
	w, h := s.Size()

	a.drawHeader(w)
	a.drawTopicBar(w)
	a.drawContinueBanner(w)
	a.drawList(w, h)

	switch a.panel {
	case PanelQueue:
		a.drawQueuePanel(w, h)
	case PanelHistory:
		a.drawHistoryPanel(w, h)
	}

	if a.mode == ModeJump {
		a.drawJumpOverlay(w, h)
	}

	a.drawStatusBar(w, h)
	s.Show()
}

func (a *App) drawHeader(w int) {
	style := tcell.StyleDefault.Background(ColorBg).Foreground(ColorHeader).Bold(true)
	drawText(a.screen, 0, 0, style, "Ukraine: The Latest")

	count := fmt.Sprintf("%d випусків", a.catalog.Len())
	if a.search.Query() != "" || a.activeTopic >= 0 {
		count = fmt.Sprintf("Знайдено: %d", len(a.visible))
	}
	countStyle := tcell.StyleDefault.Background(ColorBg).Foreground(ColorDimmed)
	drawText(a.screen, w-len([]rune(count))-1, 0, countStyle, count)

	if a.queueMgr.Size() > 0 {
		badge := fmt.Sprintf("черга: %d", a.queueMgr.Size())
		drawText(a.screen, w/2-len([]rune(badge))/2, 0, tcell.StyleDefault.Background(ColorBg).Foreground(ColorQueued), badge)
	}
}

func (a *App) drawTopicBar(w int) {
	x := 0
	base := tcell.StyleDefault.Background(ColorBg).Foreground(ColorDimmed)
	active := tcell.StyleDefault.Background(ColorSelection).Foreground(ColorMagenta).Bold(true)
	for i, t := range topicsForBar() {
		style := base
		if i == a.activeTopic {
			style = active
		}
		label := " " + t + " "
		if x+len([]rune(label)) >= w {
			break
		}
		drawText(a.screen, x, 1, style, label)
		x += len([]rune(label)) + 1
	}
}

func (a *App) drawContinueBanner(w int) {
	// Shown until playback is engaged; the preloaded episode keeps the
	// session in Loaded, which still counts as "not started".
	if a.sess.State().IsActive() {
		return
	}
	resume, ok := a.stateStore.Resume()
	if !ok || resume.Time < history.PlayedThreshold {
		return
	}
	idx, found := a.catalog.IndexByGUID(resume.GUID)
	if !found {
		return
	}
	ep := a.catalog.Episode(idx)
	banner := fmt.Sprintf("▶ Продовжити (c): %s — %s", ep.Title, formatTime(resume.Time))
	style := tcell.StyleDefault.Background(ColorBg).Foreground(ColorGreen)
	drawText(a.screen, 0, 2, style, truncate(banner, w-1))
}

func (a *App) drawList(w, h int) {
	listWidth := w
	if a.panel != PanelNone {
		listWidth = w - panelWidth
	}
	rows := a.listHeight()

	if len(a.visible) == 0 {
		msg := "Нічого не знайдено"
		drawText(a.screen, 2, listTop+1, tcell.StyleDefault.Background(ColorBg).Foreground(ColorDimmed), msg)
		return
	}

	current := a.sess.CurrentIndex()
	for row := 0; row < rows; row++ {
		i := a.offset + row
		if i >= len(a.visible) {
			break
		}
		m := a.visible[i]
		y := listTop + row

		style := tcell.StyleDefault.Background(ColorBg).Foreground(ColorFg)
		marker := "  "
		switch {
		case m.Index == current && a.sess.State() == session.StatePlaying:
			marker = "▶ "
			style = style.Foreground(ColorPlaying)
		case m.Index == current:
			marker = "⏸ "
			style = style.Foreground(ColorPaused)
		case a.queueMgr.Contains(m.Episode.GUID):
			marker = "+ "
			style = style.Foreground(ColorQueued)
		case a.historyMgr.Played(m.Episode.GUID):
			marker = "✓ "
			style = style.Foreground(ColorPlayed)
		}

		if i == a.selected {
			style = style.Background(ColorSelection)
			for x := 0; x < listWidth; x++ {
				a.screen.SetContent(x, y, ' ', nil, style)
			}
		}

		date := m.Episode.PubDate.Format("02.01.2006")
		num := fmt.Sprintf("#%-4d", m.Number)
		titleWidth := listWidth - len(marker) - len(num) - len(date) - 3
		if titleWidth < 1 {
			titleWidth = 1
		}

		drawText(a.screen, 0, y, style, marker)
		drawText(a.screen, 2, y, style, num)
		drawText(a.screen, 2+len(num)+1, y, style, truncate(m.Episode.Title, titleWidth))
		drawText(a.screen, listWidth-len(date)-1, y, style.Foreground(ColorDimmed), date)
	}
}

func (a *App) drawQueuePanel(w, h int) {
	x0 := w - panelWidth
	a.fillPanel(x0, h)
	drawText(a.screen, x0+1, listTop-1, tcell.StyleDefault.Background(ColorBg).Foreground(ColorHeader).Bold(true), "Черга")

	entries := a.queueMgr.Entries()
	if len(entries) == 0 {
		drawText(a.screen, x0+1, listTop+1, tcell.StyleDefault.Background(ColorBg).Foreground(ColorDimmed), "Черга порожня")
		return
	}
	for i, e := range entries {
		y := listTop + i
		if y >= h-1 {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, e.Title)
		drawText(a.screen, x0+1, y, tcell.StyleDefault.Background(ColorBg).Foreground(ColorFg), truncate(line, panelWidth-2))
	}
}

func (a *App) drawHistoryPanel(w, h int) {
	x0 := w - panelWidth
	a.fillPanel(x0, h)
	drawText(a.screen, x0+1, listTop-1, tcell.StyleDefault.Background(ColorBg).Foreground(ColorHeader).Bold(true), "Історія")

	entries := a.historyMgr.Entries()
	if len(entries) == 0 {
		drawText(a.screen, x0+1, listTop+1, tcell.StyleDefault.Background(ColorBg).Foreground(ColorDimmed), "Історія порожня")
		return
	}
	for i, e := range entries {
		y := listTop + i
		if y >= h-1 {
			break
		}
		line := fmt.Sprintf("%s %s", e.PlayedAt.Format("02.01"), e.Title)
		style := tcell.StyleDefault.Background(ColorBg).Foreground(ColorFg)
		if e.Progress > history.PlayedThreshold {
			style = style.Foreground(ColorPlayed)
		}
		drawText(a.screen, x0+1, y, style, truncate(line, panelWidth-2))
	}
}

func (a *App) fillPanel(x0, h int) {
	style := tcell.StyleDefault.Background(ColorBg).Foreground(ColorFg)
	for y := listTop - 1; y < h-1; y++ {
		a.screen.SetContent(x0-1, y, '│', nil, style.Foreground(ColorDimmed))
		for x := x0; x < x0+panelWidth; x++ {
			a.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (a *App) drawJumpOverlay(w, h int) {
	boxW := w * 2 / 3
	if boxW < 30 {
		boxW = w - 2
	}
	x0 := (w - boxW) / 2
	y0 := 2
	style := tcell.StyleDefault.Background(ColorSelection).Foreground(ColorFg)

	rows := 12
	for y := y0; y < y0+rows+2 && y < h-1; y++ {
		for x := x0; x < x0+boxW; x++ {
			a.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	drawText(a.screen, x0+1, y0, style.Foreground(ColorYellow), "> "+a.jump.Query())
	for i, m := range a.jumpMatches {
		if i >= rows {
			break
		}
		lineStyle := style
		if i == a.jumpCursor {
			lineStyle = lineStyle.Foreground(ColorCyan).Bold(true)
		}
		drawText(a.screen, x0+1, y0+1+i, lineStyle, truncate(m.label, boxW-2))
	}
}

func (a *App) drawStatusBar(w, h int) {
	style := tcell.StyleDefault.Background(ColorBgHighlight).Foreground(ColorFg)
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, h-1, ' ', nil, style)
	}

	left := ""
	switch a.mode {
	case ModeSearch:
		left = "/" + a.search.Query()
	default:
		if a.search.Query() != "" {
			left = "/" + a.search.Query()
		}
	}
	drawText(a.screen, 0, h-1, style, left)

	if a.statusMessage != "" {
		drawText(a.screen, len([]rune(left))+2, h-1, style.Foreground(ColorYellow), truncate(a.statusMessage, w/2))
	}

	right := a.formatPlayerStatus()
	drawText(a.screen, w-len([]rune(right))-1, h-1, style, right)

	if a.mode == ModeSearch {
		cursorX := len([]rune("/" + a.search.Query()))
		a.screen.SetContent(cursorX, h-1, ' ', nil, style.Reverse(true))
	}
}

func (a *App) formatPlayerStatus() string {
	ep, ok := a.sess.CurrentEpisode()
	if !ok {
		return ""
	}
	stateIcon := "⏹"
	switch a.sess.State() {
	case session.StatePlaying:
		stateIcon = "⏵"
	case session.StatePaused, session.StateLoaded:
		stateIcon = "⏸"
	}
	vol := fmt.Sprintf("%d%%", int(a.sess.Volume()*100+0.5))
	if a.sess.Muted() {
		vol = "muted"
	}
	status := fmt.Sprintf("%s %s  %s / %s  %s", stateIcon, truncate(ep.Title, 40),
		formatTime(a.sess.Position()), formatTime(a.sess.Duration()), vol)
	if rate := a.sess.PlaybackRate(); rate != 1.0 {
		status += fmt.Sprintf("  %.2fx", rate)
	}
	return status
}

func topicsForBar() []string {
	labels := make([]string, 0, len(filter.Topics))
	for _, t := range filter.Topics {
		labels = append(labels, t.Label)
	}
	return labels
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	pos := 0
	for _, r := range text {
		s.SetContent(x+pos, y, r, nil, style)
		pos++
	}
}

func truncate(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width <= 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func formatTime(seconds float64) string {
	if seconds < 0 {
		return "0:00"
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
