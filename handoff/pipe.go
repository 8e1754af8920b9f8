//go:build linux || darwin

package handoff

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// pipeChannel is one OS pipe. Both file descriptors stay in blocking mode,
// so a Receive suspends the calling thread in the kernel until the peer
// writes.
type pipeChannel struct {
	readFD  int
	writeFD int
	buf     [1]byte
	out     [1]byte
	once    sync.Once
}

// NewPipePair creates the two pipes of a handoff pair. If the second pipe
// cannot be created the first one is closed before returning.
func NewPipePair() (*Pair, error) {
	a, err := newPipeChannel()
	if err != nil {
		return nil, fmt.Errorf("create pipe1: %w", err)
	}

	b, err := newPipeChannel()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create pipe2: %w", err)
	}

	return NewPair(a, b), nil
}

func newPipeChannel() (*pipeChannel, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}

	return &pipeChannel{readFD: fds[0], writeFD: fds[1]}, nil
}

func (p *pipeChannel) Send(b byte) error {
	p.out[0] = b
	for {
		n, err := unix.Write(p.writeFD, p.out[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("pipe write: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("pipe write: short write of %d bytes", n)
		}
		return nil
	}
}

func (p *pipeChannel) Receive() (byte, error) {
	for {
		n, err := unix.Read(p.readFD, p.buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("pipe read: %w", err)
		}
		if n == 0 {
			return 0, ErrBroken
		}
		return p.buf[0], nil
	}
}

func (p *pipeChannel) Close() error {
	var err error
	p.once.Do(func() {
		errW := unix.Close(p.writeFD)
		errR := unix.Close(p.readFD)
		if errW != nil {
			err = errW
		} else {
			err = errR
		}
	})
	return err
}
