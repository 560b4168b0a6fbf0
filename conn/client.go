//go:build linux

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

package conn

import (
	"net"

	"golang.org/x/sys/unix"
)

const defaultReadBufferSize = 1024

// Client is a non-blocking, connected TCP socket together with its outbound
// write buffer and cumulative Statistics. A Client never closes its own
// socket except via an explicit Close call; I/O errors are returned to the
// caller for the reactor to classify.
type Client struct {
	fd          int
	addr        net.Addr
	readBufSize int

	writeBuf []byte
	stats    Statistics
}

// NewClient wraps an already-connected, already-non-blocking socket fd. A
// readBufSize of 0 selects the 1 KiB default scratch buffer.
func NewClient(fd int, addr net.Addr, readBufSize int) *Client {
	if readBufSize <= 0 {
		readBufSize = defaultReadBufferSize
	}
	return &Client{fd: fd, addr: addr, readBufSize: readBufSize}
}

// Fd returns the underlying socket descriptor, for selector registration.
func (c *Client) Fd() int { return c.fd }

// Addr returns the peer address captured at accept/connect time.
func (c *Client) Addr() net.Addr { return c.addr }

// Statistics returns a snapshot copy of the client's cumulative counters.
func (c *Client) Statistics() Statistics { return c.stats }

// QueueWrite appends data to the end of the write buffer and updates
// BytesWrittenQueued. It never fails barring allocation exhaustion.
func (c *Client) QueueWrite(data []byte) {
	c.writeBuf = append(c.writeBuf, data...)
	c.stats.BytesWrittenQueued += uint64(len(data))
}

// TryReadAll drains the socket via repeated non-blocking reads into a fixed
// scratch buffer until the read would block or returns zero bytes. The
// returned slice is the concatenation of everything drained this call; it
// may be empty (but non-nil) when the socket was readable but yielded
// nothing, which the caller interprets via the selector's hangup hint.
func (c *Client) TryReadAll() ([]byte, error) {
	out := make([]byte, 0)
	buf := make([]byte, c.readBufSize)

	for {
		n, err := unix.Read(c.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			if err == unix.EINTR {
				continue
			}
			return out, err
		}
		if n == 0 {
			break
		}

		out = append(out, buf[:n]...)
		c.stats.BytesRead += uint64(n)

		if n < len(buf) {
			// short read: the socket almost certainly has nothing more
			// buffered right now, but loop once more to confirm via EAGAIN
			// rather than assuming, since level-triggered epoll will just
			// wake us again if we stop early.
			continue
		}
	}

	return out, nil
}

// FlushWrite attempts one non-blocking write of the entire current buffer.
// A WouldBlock result increments BlockedWrites; a successful write removes
// the accepted prefix from the buffer and adds it to BytesWritten. Partial
// writes are expected and leave the remainder buffered.
func (c *Client) FlushWrite() (OperationResult, error) {
	if len(c.writeBuf) == 0 {
		return OperationResult{Size: 0}, nil
	}

	for {
		n, err := unix.Write(c.fd, c.writeBuf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				c.stats.BlockedWrites++
				return OperationResult{Blocked: true}, nil
			}
			if err == unix.EINTR {
				continue
			}
			return OperationResult{}, err
		}

		c.writeBuf = c.writeBuf[n:]
		c.stats.BytesWritten += uint64(n)
		return OperationResult{Size: n}, nil
	}
}

// BufferedLen reports the number of bytes currently queued but not yet
// written, satisfying the invariant
// BytesWrittenQueued == BytesWritten + BufferedLen.
func (c *Client) BufferedLen() int { return len(c.writeBuf) }

// Close releases the underlying socket. It is idempotent only in the sense
// that the reactor never calls it twice for the same fd; a second call
// would operate on a possibly-reused descriptor.
func (c *Client) Close() error {
	return unix.Close(c.fd)
}
