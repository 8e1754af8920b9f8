package handoff

import "sync"

// chanChannel is a single-slot channel backed by a Go channel.
type chanChannel struct {
	slot chan byte
	done chan struct{}
	once sync.Once
}

func newChanChannel() *chanChannel {
	return &chanChannel{
		slot: make(chan byte, 1),
		done: make(chan struct{}),
	}
}

// NewChanPair creates a pair backed by Go channels. Handoffs park
// goroutines instead of OS threads.
func NewChanPair() *Pair {
	return NewPair(newChanChannel(), newChanChannel())
}

func (c *chanChannel) Send(b byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.slot <- b:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *chanChannel) Receive() (byte, error) {
	select {
	case b := <-c.slot:
		return b, nil
	case <-c.done:
		return 0, ErrBroken
	}
}

func (c *chanChannel) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}
