// Package player is the mpv-backed audio engine. mpv runs as a child
// process in idle mode and is driven over its unix-socket JSON IPC; track
// readiness, progress, and end-of-file come back as typed backend events.
package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/olekv/utl-player/internal/session"
)

type mpvCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id,omitempty"`
}

type mpvResponse struct {
	Data      interface{} `json:"data"`
	RequestID int         `json:"request_id"`
	Error     string      `json:"error"`
}

type mpvEvent struct {
	Event  string `json:"event"`
	Reason string `json:"reason,omitempty"`
}

// MPV implements session.Backend on top of an mpv subprocess.
type MPV struct {
	mu         sync.Mutex
	cmd        *exec.Cmd
	socketPath string
	loaded     bool
	loadToken  uint64
	events     chan session.BackendEvent
	stop       chan struct{}
}

// New creates an MPV backend. Call Start before use.
func New() *MPV {
	return &MPV{
		socketPath: fmt.Sprintf("/tmp/utl-player-mpv-%d", os.Getpid()),
		events:     make(chan session.BackendEvent, 16),
	}
}

// Start launches mpv in idle mode and begins listening for its events.
func (m *MPV) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil {
		return nil
	}

	os.Remove(m.socketPath)

	m.cmd = exec.Command("mpv",
		"--no-video",
		"--really-quiet",
		"--no-terminal",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--idle",
		"--force-window=no",
		"--keep-open=no",
	)
	if err := m.cmd.Start(); err != nil {
		m.cmd = nil
		return fmt.Errorf("failed to start mpv: %w", err)
	}

	// Wait for mpv to create the socket with timeout
	socketReady := false
	for i := 0; i < 20; i++ {
		if _, err := os.Stat(m.socketPath); err == nil {
			socketReady = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !socketReady {
		m.cmd.Process.Kill()
		m.cmd.Wait()
		m.cmd = nil
		return fmt.Errorf("mpv socket not created after timeout")
	}

	m.stop = make(chan struct{})
	go m.listenEvents()
	go m.pollProgress()

	log.Println("mpv started in idle mode")
	return nil
}

// Load assigns a new source without starting playback. A file-loaded event
// from mpv later surfaces as a ready event carrying this token.
func (m *MPV) Load(url string, token uint64) error {
	m.mu.Lock()
	m.loadToken = token
	m.loaded = true
	m.mu.Unlock()

	// Load paused; the session decides when playback starts.
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"loadfile", url}}); err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"set_property", "pause", true}}); err != nil {
		return fmt.Errorf("failed to pause after load: %w", err)
	}
	return nil
}

// Play resumes or starts playback of the loaded source.
func (m *MPV) Play() error {
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"set_property", "pause", false}}); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// Pause pauses playback.
func (m *MPV) Pause() error {
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"set_property", "pause", true}}); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	return nil
}

// SeekTo moves the playhead to an absolute position in seconds.
func (m *MPV) SeekTo(seconds float64) error {
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"seek", seconds, "absolute"}}); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// SetVolume maps a 0..1 volume onto mpv's 0..100 scale.
func (m *MPV) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"set_property", "volume", v * 100}}); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// SetMuted sets the mute flag.
func (m *MPV) SetMuted(muted bool) error {
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"set_property", "mute", muted}}); err != nil {
		return fmt.Errorf("failed to set mute: %w", err)
	}
	return nil
}

// SetRate sets the playback speed.
func (m *MPV) SetRate(rate float64) error {
	if _, err := m.sendCommand(mpvCommand{Command: []interface{}{"set_property", "speed", rate}}); err != nil {
		return fmt.Errorf("failed to set speed: %w", err)
	}
	return nil
}

// Events delivers backend events to the session's event loop.
func (m *MPV) Events() <-chan session.BackendEvent {
	return m.events
}

// Close shuts mpv down and releases the socket.
func (m *MPV) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stop != nil {
		select {
		case <-m.stop:
		default:
			close(m.stop)
		}
	}

	if m.cmd != nil && m.cmd.Process != nil {
		m.sendCommand(mpvCommand{Command: []interface{}{"quit"}})

		done := make(chan error, 1)
		go func() { done <- m.cmd.Wait() }()
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			log.Printf("force killing mpv (pid %d)", m.cmd.Process.Pid)
			m.cmd.Process.Kill()
			<-done
		}
		m.cmd = nil
	}

	os.Remove(m.socketPath)
}

// sendCommand sends one command over a fresh IPC connection.
func (m *MPV) sendCommand(cmd mpvCommand) (*mpvResponse, error) {
	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mpv socket: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(2 * time.Second))

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write command: %w", err)
	}

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		var resp mpvResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		// Skip interleaved event lines; only command replies carry an error field.
		if resp.Error == "" {
			continue
		}
		if resp.Error != "success" {
			return &resp, fmt.Errorf("mpv error: %s", resp.Error)
		}
		return &resp, nil
	}
}

// listenEvents reads mpv's asynchronous event stream and translates it into
// backend events.
func (m *MPV) listenEvents() {
	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		log.Printf("mpv: failed to connect for events: %v", err)
		return
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		select {
		case <-m.stop:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			log.Printf("mpv: event reader error: %v", err)
			return
		}

		var ev mpvEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}

		switch ev.Event {
		case "file-loaded":
			m.mu.Lock()
			token := m.loadToken
			m.mu.Unlock()
			m.emit(session.BackendEvent{Kind: session.BackendReady, Token: token})
		case "end-file":
			// A replaced or stopped file also emits end-file; only a natural
			// end advances the session.
			if ev.Reason == "eof" {
				m.mu.Lock()
				m.loaded = false
				m.mu.Unlock()
				m.emit(session.BackendEvent{Kind: session.BackendEnded})
			}
		}
	}
}

// pollProgress samples time-pos and duration once a second while a source
// is loaded.
func (m *MPV) pollProgress() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			loaded := m.loaded
			m.mu.Unlock()
			if !loaded {
				continue
			}

			var position, duration float64
			if resp, err := m.sendCommand(mpvCommand{Command: []interface{}{"get_property", "time-pos"}}); err == nil {
				if pos, ok := resp.Data.(float64); ok && pos >= 0 {
					position = pos
				}
			}
			if resp, err := m.sendCommand(mpvCommand{Command: []interface{}{"get_property", "duration"}}); err == nil {
				if dur, ok := resp.Data.(float64); ok && dur > 0 {
					duration = dur
				}
			}
			m.emit(session.BackendEvent{Kind: session.BackendProgress, Position: position, Duration: duration})
		}
	}
}

func (m *MPV) emit(ev session.BackendEvent) {
	select {
	case m.events <- ev:
	default:
		// Drop rather than block the IPC readers; progress is periodic anyway.
	}
}
