/*
 * MIT License
 *
 * Copyright (c) 2026 the project contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package poll is the thin, OS-level readiness primitive the reactor treats
// as an external collaborator: a level-triggered epoll wrapper keyed by an
// arbitrary uint64 (the reactor's Token), not by file descriptor.
package poll

// Interest is a bitmask of the readiness conditions a fd is registered for.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

// Event is one readiness notification returned from a Wait call. Hup and Err
// are delivered by the OS regardless of the Interest a fd was registered
// with; Readable/Writable mirror what was requested.
type Event struct {
	Token    uint64
	Readable bool
	Writable bool
	Hup      bool
	Err      bool
}

// Poller multiplexes readiness across an arbitrary number of sockets. The
// epoll implementation lets Wait run concurrently with Add/Modify/Remove:
// reactor.Loop calls Wait from a dedicated goroutine while Run registers
// and deregisters sockets.
type Poller interface {
	// Add registers fd under token with the given interest. Hup and error
	// conditions are always reported regardless of interest.
	Add(fd int, token uint64, interest Interest) error

	// Modify changes the interest set for an already-registered fd.
	Modify(fd int, token uint64, interest Interest) error

	// Remove deregisters fd. It must be called before the fd is closed.
	Remove(fd int) error

	// Wait blocks until at least one event is ready or timeoutMs elapses
	// (a negative timeoutMs blocks indefinitely), storing ready events at the
	// start of events and returning how many it stored.
	Wait(events []Event, timeoutMs int) (int, error)

	// Close releases the underlying OS resource.
	Close() error
}
