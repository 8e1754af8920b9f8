// Package handoff provides the one-byte rendezvous used to force one
// execution unit to block until the other signals it.
//
// A Pair holds two unidirectional channels. A carries tokens from the
// initiator to the responder and B carries them back. At most one unread
// token is outstanding on a channel at any time; the ping-pong protocol,
// not the channel, guarantees that.
package handoff

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrBroken is returned when the peer end of a channel is gone.
	ErrBroken = errors.New("handoff: channel broken")

	// ErrClosed is returned when a closed channel is used.
	ErrClosed = errors.New("handoff: channel closed")
)

// Channel is one direction of a handoff.
type Channel interface {
	// Send writes exactly one byte.
	Send(b byte) error
	// Receive blocks until exactly one byte is available and consumes it.
	Receive() (byte, error)
	// Close releases the channel. It is safe to call more than once.
	Close() error
}

// Pair is the long-lived bidirectional handoff shared by every round.
type Pair struct {
	// A carries initiator -> responder tokens.
	A Channel
	// B carries responder -> initiator tokens.
	B Channel

	closeOnce sync.Once
	closeErr  error
}

// NewPair assembles a pair from two channels.
func NewPair(a, b Channel) *Pair {
	return &Pair{A: a, B: b}
}

// Close closes both channels once.
func (p *Pair) Close() error {
	p.closeOnce.Do(func() {
		errA := p.A.Close()
		errB := p.B.Close()
		p.closeErr = errors.Join(errA, errB)
	})
	return p.closeErr
}

// Transport names a Channel implementation.
type Transport string

const (
	// TransportPipe uses OS pipes with blocking file descriptors, so every
	// handoff parks an OS thread in the kernel.
	TransportPipe Transport = "pipe"
	// TransportChan uses in-process Go channels.
	TransportChan Transport = "chan"
)

// New creates a pair for the given transport.
func New(t Transport) (*Pair, error) {
	switch t {
	case TransportPipe, "":
		return NewPipePair()
	case TransportChan:
		return NewChanPair(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", t)
	}
}
