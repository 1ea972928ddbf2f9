// Package reader defines how a client pages through a book: the cover, the
// content pages and the end marker, plus the table of contents that jumps
// between them.
//
// The HTTP API is stateless and serves one View per position. Navigator is
// the same state machine held on the client side, for reader clients
// written in Go.
package reader

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for a position outside [0, N+1].
var ErrOutOfRange = errors.New("position out of range")

type Kind string

const (
	Cover   Kind = "cover"
	Content Kind = "content"
	End     Kind = "end"
)

// State is the reader's place in a book. Page is the 1-based content page
// and is only set for Content.
type State struct {
	Kind Kind `json:"kind"`
	Page int  `json:"page,omitempty"`
}

// Navigator walks positions 0 (cover), 1..N (content) and N+1 (end).
// The zero value is not usable; call NewNavigator.
type Navigator struct {
	pages int
	pos   int
}

func NewNavigator(pages int) *Navigator {
	if pages < 0 {
		pages = 0
	}
	return &Navigator{pages: pages}
}

// Pages is N.
func (n *Navigator) Pages() int { return n.pages }

func (n *Navigator) Position() int { return n.pos }

// Next advances one position. It is a no-op at the end.
func (n *Navigator) Next() State {
	if n.pos < n.pages+1 {
		n.pos++
	}
	return n.State()
}

// Prev steps back one position. It is a no-op on the cover.
func (n *Navigator) Prev() State {
	if n.pos > 0 {
		n.pos--
	}
	return n.State()
}

// JumpTo moves straight to pos. Positions outside [0, N+1] are rejected and
// leave the navigator where it was.
func (n *Navigator) JumpTo(pos int) (State, error) {
	if err := CheckPosition(pos, n.pages); err != nil {
		return n.State(), err
	}
	n.pos = pos
	return n.State(), nil
}

func (n *Navigator) State() State { return StateAt(n.pos, n.pages) }

// Progress is position/(N+1): 0 on the cover, 1 at the end.
func (n *Navigator) Progress() float64 { return Progress(n.pos, n.pages) }

// CheckPosition reports whether pos is a valid position in a book of pages pages.
func CheckPosition(pos, pages int) error {
	if pos < 0 || pos > pages+1 {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, pos, pages+1)
	}
	return nil
}

// StateAt maps a valid position to its state.
func StateAt(pos, pages int) State {
	switch {
	case pos <= 0:
		return State{Kind: Cover}
	case pos > pages:
		return State{Kind: End}
	default:
		return State{Kind: Content, Page: pos}
	}
}

func Progress(pos, pages int) float64 {
	return float64(pos) / float64(pages+1)
}
