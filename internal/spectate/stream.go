package spectate

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

// BoardSource is the game a stream reports on.
type BoardSource interface {
	BoardSnapshot() engine.Snapshot
}

// Stream publishes one game's events. It implements engine.Listener and must
// be fed from the goroutine that drives the game.
type Stream struct {
	hub *Hub
	id  string
	src BoardSource

	mu     sync.Mutex
	last   Message
	closed bool
}

var streamSeq atomic.Uint64

// StreamID returns "<owner>-<n>" with a process-wide counter, or a random id
// when owner is empty.
func StreamID(owner string) string {
	if owner == "" {
		return uuid.NewString()
	}
	return fmt.Sprintf("%s-%d", owner, streamSeq.Add(1))
}

// Open registers a live stream. An empty id gets a random one; reusing the id
// of a live stream replaces it.
func (h *Hub) Open(id string, src BoardSource) *Stream {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Stream{
		hub:  h,
		id:   id,
		src:  src,
		last: Message{Stream: id, Board: src.BoardSnapshot()},
	}

	h.mu.Lock()
	prev := h.streams[id]
	h.streams[id] = s
	h.mu.Unlock()

	if prev != nil {
		prev.markClosed()
	}
	h.logger.Info("stream opened", "stream", id)
	return s
}

// ID returns the stream id.
func (s *Stream) ID() string {
	return s.id
}

// OnEvent publishes e with the board as it stands after the event.
func (s *Stream) OnEvent(e engine.Event) {
	msg := Message{Stream: s.id, Event: &e, Board: s.src.BoardSnapshot()}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.last = Message{Stream: s.id, Board: msg.Board}
	s.mu.Unlock()

	s.hub.publish(&msg)
}

// current is the greeting for a new watcher.
func (s *Stream) current() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Stream) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// Close removes the stream and disconnects its watchers. Safe to call twice.
func (s *Stream) Close() {
	if !s.markClosed() {
		return
	}

	h := s.hub
	h.mu.Lock()
	if h.streams[s.id] == s {
		delete(h.streams, s.id)
	}
	h.mu.Unlock()

	select {
	case h.closing <- s.id:
	case <-h.done:
	}
	h.logger.Info("stream closed", "stream", s.id)
}
