// Package mpv implements the media.Player backend over mpv's JSON-IPC
// interface. A headless mpv process is started in idle mode and driven
// through a unix socket; observed properties feed the event stream.
package mpv

import (
	"bufio"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/Cossomoj/booksmood/internal/media"
)

const (
	dialTimeout    = 5 * time.Second
	dialInterval   = 100 * time.Millisecond
	commandTimeout = 5 * time.Second

	// Observed property ids.
	observeTimePos  = 1
	observeDuration = 2
)

// Player drives a single mpv process.
type Player struct {
	cmd    *exec.Cmd
	conn   net.Conn
	logger *slog.Logger
	socket string

	events chan media.Event
	done   chan struct{}

	mu        sync.Mutex
	pending   map[int64]chan response
	nextID    int64
	duration  float64
	loaded    bool
	closeOnce sync.Once
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type response struct {
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type message struct {
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID int64  `json:"request_id,omitempty"`
	Event     string `json:"event,omitempty"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// New starts an idle mpv process listening on socketPath and connects to it.
// binary may be empty to use "mpv" from PATH.
func New(binary, socketPath string, logger *slog.Logger) (*Player, error) {
	if binary == "" {
		binary = "mpv"
	}
	// A stale socket from a crashed run blocks the new listener.
	_ = os.Remove(socketPath)

	cmd := exec.Command(binary,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server="+socketPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	conn, err := dialWithRetry(socketPath)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("connect to mpv socket: %w", err)
	}

	p := &Player{
		cmd:     cmd,
		conn:    conn,
		logger:  logger,
		socket:  socketPath,
		events:  make(chan media.Event, 64),
		done:    make(chan struct{}),
		pending: make(map[int64]chan response),
	}

	go p.readLoop()

	if _, err := p.command("observe_property", observeTimePos, "time-pos"); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("observe time-pos: %w", err)
	}
	if _, err := p.command("observe_property", observeDuration, "duration"); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("observe duration: %w", err)
	}

	return p, nil
}

func dialWithRetry(socketPath string) (net.Conn, error) {
	deadline := time.Now().Add(dialTimeout)
	for {
		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(dialInterval)
	}
}

// Load replaces the current source. Playback starts paused; the controller
// seeks and resumes explicitly.
func (p *Player) Load(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.command("set_property", "pause", true); err != nil {
		return err
	}

	p.mu.Lock()
	p.loaded = false
	p.duration = 0
	p.mu.Unlock()

	_, err := p.command("loadfile", url, "replace")
	return err
}

// Play resumes playback.
func (p *Player) Play() error {
	_, err := p.command("set_property", "pause", false)
	return err
}

// Pause suspends playback.
func (p *Player) Pause() error {
	_, err := p.command("set_property", "pause", true)
	return err
}

// Seek moves to an absolute position in seconds.
func (p *Player) Seek(position float64) error {
	_, err := p.command("seek", position, "absolute")
	return err
}

// SetRate sets the playback speed multiplier.
func (p *Player) SetRate(rate float64) error {
	_, err := p.command("set_property", "speed", rate)
	return err
}

// Position returns the current playback position in seconds.
func (p *Player) Position() (float64, error) {
	return p.floatProperty("time-pos")
}

// Duration returns the duration of the loaded source in seconds.
func (p *Player) Duration() (float64, error) {
	return p.floatProperty("duration")
}

// Events returns the lifecycle event stream.
func (p *Player) Events() <-chan media.Event {
	return p.events
}

// Close shuts the mpv process down and releases the socket.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		// Fire-and-forget; mpv exits without answering quit.
		if payload, merr := json.Marshal(request{Command: []any{"quit"}}); merr == nil {
			_, _ = p.conn.Write(append(payload, '\n'))
		}
		close(p.done)
		_ = p.conn.Close()
		err = p.cmd.Wait()
		_ = os.Remove(p.socket)
		close(p.events)
	})
	return err
}

func (p *Player) floatProperty(name string) (float64, error) {
	data, err := p.command("get_property", name)
	if err != nil {
		return 0, err
	}
	value, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: unexpected type %T", name, data)
	}
	return value, nil
}

// command sends a request and waits for its matching response.
func (p *Player) command(args ...any) (any, error) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	ch := make(chan response, 1)
	p.pending[id] = ch
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
	}()

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}
	payload = append(payload, '\n')

	if _, err := p.conn.Write(payload); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	case <-p.done:
		return nil, errors.New("mpv: player closed")
	case <-time.After(commandTimeout):
		return nil, errors.New("mpv: command timed out")
	}
}

// readLoop dispatches socket traffic: command responses to their waiters,
// property changes and lifecycle events to the event channel.
func (p *Player) readLoop() {
	scanner := bufio.NewScanner(p.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			p.logger.Debug("mpv: undecodable message", "error", err)
			continue
		}

		if msg.RequestID != 0 {
			p.mu.Lock()
			ch, ok := p.pending[msg.RequestID]
			p.mu.Unlock()
			if ok {
				ch <- response{Error: msg.Error, Data: msg.Data}
			}
			continue
		}

		if msg.Event != "" {
			p.handleEvent(msg)
		}
	}

	select {
	case <-p.done:
	default:
		p.emit(media.Event{Type: media.EventError, Err: errors.New("mpv: connection lost")})
	}
}

func (p *Player) handleEvent(msg message) {
	switch msg.Event {
	case "property-change":
		p.handlePropertyChange(msg)
	case "end-file":
		switch msg.Reason {
		case "eof":
			p.emit(media.Event{Type: media.EventEnded})
		case "error":
			p.emit(media.Event{Type: media.EventError, Err: errors.New("mpv: playback failed")})
		}
	}
}

func (p *Player) handlePropertyChange(msg message) {
	value, ok := msg.Data.(float64)
	if !ok {
		return
	}

	switch msg.Name {
	case "duration":
		p.mu.Lock()
		p.duration = value
		first := !p.loaded
		p.loaded = true
		p.mu.Unlock()
		if first {
			p.emit(media.Event{Type: media.EventMetadata, Duration: value})
		}
	case "time-pos":
		p.mu.Lock()
		duration := p.duration
		p.mu.Unlock()
		p.emit(media.Event{Type: media.EventTime, Position: value, Duration: duration})
	}
}

// emit sends without blocking; a stalled consumer drops updates rather than
// wedging the read loop.
func (p *Player) emit(event media.Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Debug("mpv: event dropped", "type", event.Type)
	}
}
