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

// Package conn holds the per-connection state the reactor mutates: buffered,
// non-blocking Clients and their Statistics, and a thin Listener wrapper.
// Every type here is exclusively owned and mutated by the reactor goroutine;
// nothing in this package takes a lock.
package conn

// OperationResult is the outcome of a single non-blocking flush attempt.
type OperationResult struct {
	// Blocked is true when the OS reported the write would block. Size is
	// meaningless in that case.
	Blocked bool

	// Size is the number of bytes the OS accepted. It may be zero on a
	// successful (non-blocked) write, and is zero when the buffer was already
	// empty; the reactor's handler.tryFlush treats a zero Size with bytes
	// still buffered the same as Blocked for write-readiness bookkeeping.
	Size int
}

// Statistics are the cumulative, monotonic I/O counters for one Client. A
// snapshot is a copy by value; it never aliases the live counters.
type Statistics struct {
	BytesRead          uint64
	BytesWrittenQueued uint64
	BytesWritten       uint64
	BlockedWrites      uint64
}
