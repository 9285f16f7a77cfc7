// Package completion arbitrates asynchronous completion requests for the
// buffer being edited. A Session remembers which request is current; any
// response carrying another id is dropped on arrival.
package completion

import (
	"context"
	"errors"
	"strings"

	"github.com/kobzarvs/qdoc/internal/buffer"
)

var (
	ErrNoProvider        = errors.New("completion: no provider")
	ErrMalformedResponse = errors.New("completion: malformed response")
)

type Status int

const (
	Inactive Status = iota
	Started
	Done
)

func (s Status) String() string {
	switch s {
	case Started:
		return "started"
	case Done:
		return "done"
	}
	return "inactive"
}

type Item struct {
	Label      string
	InsertText string
	Detail     string
	Kind       int
}

// Text returns what selecting the item inserts.
func (i Item) Text() string {
	if i.InsertText != "" {
		return i.InsertText
	}
	return i.Label
}

// Position is a zero-based line and character. Character counts UTF-16
// code units, as language servers expect.
type Position struct {
	Line      int
	Character int
}

type Request struct {
	ID       uint64
	BufferID buffer.ID
	Path     string
	Language string
	Offset   int
	Position Position
	Rev      uint64
	Text     string
}

type Response struct {
	Items      []Item
	Incomplete bool
}

// Provider answers completion requests. Complete is called off the owner
// goroutine.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Session is owned by a single goroutine and is not safe for concurrent use.
type Session struct {
	BufferID  buffer.ID
	Anchor    int
	RequestID uint64
	Input     string
	Status    Status

	items    []Item
	filtered []Item
	index    int
}

func (s *Session) Active() bool { return s.Status != Inactive }

// Matches reports whether an active session already covers anchor in the
// given buffer.
func (s *Session) Matches(id buffer.ID, anchor int) bool {
	return s.Active() && s.BufferID == id && s.Anchor == anchor
}

// Begin starts a new session and returns the id its request must carry.
func (s *Session) Begin(id buffer.ID, anchor int, input string) uint64 {
	s.RequestID++
	s.BufferID = id
	s.Anchor = anchor
	s.Input = input
	s.Status = Started
	s.items = nil
	s.filtered = nil
	s.index = 0
	return s.RequestID
}

// UpdateInput refilters the cached items without a new request.
func (s *Session) UpdateInput(input string) {
	s.Input = input
	s.filter()
}

// Done installs the items of response reqID. Responses to anything but the
// current request are discarded and Done returns false.
func (s *Session) Done(reqID uint64, items []Item) bool {
	if s.Status != Started || reqID != s.RequestID {
		return false
	}
	s.items = append(s.items[:0:0], items...)
	s.Status = Done
	s.filter()
	return true
}

// Fail cancels the session when reqID is still current.
func (s *Session) Fail(reqID uint64) bool {
	if !s.Active() || reqID != s.RequestID {
		return false
	}
	s.Cancel()
	return true
}

// Cancel drops the session. The request id keeps counting.
func (s *Session) Cancel() {
	s.Status = Inactive
	s.Input = ""
	s.items = nil
	s.filtered = nil
	s.index = 0
}

// Items returns the filtered items in display order.
func (s *Session) Items() []Item {
	return s.filtered
}

func (s *Session) Index() int { return s.index }

func (s *Session) Current() (Item, bool) {
	if s.index < 0 || s.index >= len(s.filtered) {
		return Item{}, false
	}
	return s.filtered[s.index], true
}

func (s *Session) Next() {
	if n := len(s.filtered); n > 0 {
		s.index = (s.index + 1) % n
	}
}

func (s *Session) Previous() {
	if n := len(s.filtered); n > 0 {
		s.index = (s.index - 1 + n) % n
	}
}

// filter keeps items whose label contains the input, prefix matches first.
// Matching is case-sensitive.
func (s *Session) filter() {
	s.index = 0
	if s.Input == "" {
		s.filtered = append(s.filtered[:0:0], s.items...)
		return
	}
	var prefix, inner []Item
	for _, it := range s.items {
		switch i := strings.Index(it.Label, s.Input); {
		case i == 0:
			prefix = append(prefix, it)
		case i > 0:
			inner = append(inner, it)
		}
	}
	s.filtered = append(prefix, inner...)
}
