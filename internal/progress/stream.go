package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/wesleyorama2/perfkit/internal/result"
)

// Event is one line of the progress stream.
type Event struct {
	Type   string         `json:"event"`
	RunID  string         `json:"runId,omitempty"`
	Totals map[string]int `json:"totals,omitempty"`
	Name   string         `json:"name,omitempty"`
	Kind   string         `json:"kind,omitempty"`
}

// Event types.
const (
	EventInit     = "init"
	EventCurrent  = "current"
	EventError    = "error"
	EventFinished = "finished"
)

// Stream writes listener events as JSON lines, e.g. to an editor connected
// over TCP. The first write error is kept and later events are dropped.
type Stream struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	runID  string
	err    error
}

// NewStream writes events to w. runID, if set, is attached to every event.
func NewStream(w io.Writer, runID string) *Stream {
	s := &Stream{enc: json.NewEncoder(w), runID: runID}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Dial connects to a TCP progress viewer at addr.
func Dial(addr, runID string, timeout time.Duration) (*Stream, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to progress viewer: %w", err)
	}
	return NewStream(conn, runID), nil
}

func (s *Stream) Init(totals map[string]int) {
	s.write(Event{Type: EventInit, Totals: totals})
}

func (s *Stream) Current(name string) {
	s.write(Event{Type: EventCurrent, Name: name})
}

func (s *Stream) Error(name string, kind result.FailureKind) {
	s.write(Event{Type: EventError, Name: name, Kind: kind.String()})
}

func (s *Stream) Finished() {
	s.write(Event{Type: EventFinished})
}

// Err returns the first write error.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the underlying writer when it is closable.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Stream) write(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	e.RunID = s.runID
	if err := s.enc.Encode(e); err != nil {
		s.err = fmt.Errorf("write %s event: %w", e.Type, err)
	}
}
