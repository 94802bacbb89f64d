//go:build unix

package term

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Host reads raw stdin in a goroutine and feeds every byte to Keys.
type Host struct {
	keys        *Keys
	stopCh      chan struct{}
	done        chan struct{}
	stopped     sync.Once
	fd          int
	nonblockSet bool
	oldState    *term.State
}

func NewHost(keys *Keys) *Host {
	return &Host{
		keys:   keys,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts stdin in raw non-blocking mode and begins reading.
// Call Stop to restore the terminal.
func (h *Host) Start() error {
	h.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(h.fd) {
		close(h.done)
		return fmt.Errorf("term: stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		close(h.done)
		return fmt.Errorf("term: raw mode: %w", err)
	}
	h.oldState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
		close(h.done)
		return fmt.Errorf("term: nonblocking stdin: %w", err)
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 16)
		for {
			select {
			case <-h.stopCh:
				return
			default:
			}
			n, err := syscall.Read(h.fd, buf)
			for _, b := range buf[:max(n, 0)] {
				h.keys.Press(b)
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || n == 0 {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

// Stop ends the reader and restores stdin.
func (h *Host) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
	}
}
