// Package keys reads single keypresses from a terminal without blocking
// the caller.
package keys

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

const bufferSize = 16

// Reader collects keypresses from an input on a background goroutine.
// It satisfies playback.KeySource.
type Reader struct {
	cr      cancelreader.CancelReader
	keys    chan rune
	pending []rune
	err     error
	done    chan struct{}

	closeOnce sync.Once
	restore   func() error
}

// NewReader starts reading runes from r.
func NewReader(r io.Reader) (*Reader, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	kr := &Reader{
		cr:      cr,
		keys:    make(chan rune, bufferSize),
		done:    make(chan struct{}),
		restore: func() error { return nil },
	}
	go kr.loop()
	return kr, nil
}

// OpenTerminal puts f into raw mode, when it is a terminal, and starts
// reading keys from it. Close restores the previous mode.
func OpenTerminal(f *os.File) (*Reader, error) {
	fd := int(f.Fd())
	restore := func() error { return nil }
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("keys: raw mode: %w", err)
		}
		restore = func() error { return term.Restore(fd, state) }
	}

	kr, err := NewReader(f)
	if err != nil {
		_ = restore()
		return nil, err
	}
	kr.restore = restore
	return kr, nil
}

func (r *Reader) loop() {
	defer close(r.done)
	defer close(r.keys)

	br := bufio.NewReader(r.cr)
	for {
		k, _, err := br.ReadRune()
		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) {
				r.err = err
			}
			return
		}
		r.keys <- k
	}
}

// KeyAvailable reports whether a key can be read without blocking.
func (r *Reader) KeyAvailable() bool {
	if len(r.pending) > 0 {
		return true
	}
	select {
	case k, ok := <-r.keys:
		if ok {
			r.pending = append(r.pending, k)
			return true
		}
	default:
	}
	return false
}

// ReadKey returns the next key, blocking until one arrives. It returns
// io.EOF once the input is exhausted or the reader is closed.
func (r *Reader) ReadKey() (rune, error) {
	if len(r.pending) > 0 {
		k := r.pending[0]
		r.pending = r.pending[1:]
		return k, nil
	}
	k, ok := <-r.keys
	if !ok {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	return k, nil
}

// Close stops the reader goroutine and restores the terminal.
func (r *Reader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.cr.Cancel()
		// Unblock a pending send so the goroutine can observe the cancel.
		go func() {
			for range r.keys {
			}
		}()
		<-r.done
		err = errors.Join(r.cr.Close(), r.restore())
	})
	return err
}
