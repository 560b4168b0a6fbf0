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

package token

import "sync/atomic"

// sequentialFactory hands out Tokens from a shared counter starting at 1.
// Clones share the same counter through the counter pointer.
type sequentialFactory struct {
	counter *atomic.Uint64
}

// NewSequentialFactory returns a Factory whose first Produce call returns 1
// and whose subsequent calls return strictly increasing values. The returned
// Factory is safe for concurrent use and may be copied; copies share the
// same underlying counter.
func NewSequentialFactory() Factory {
	return &sequentialFactory{counter: new(atomic.Uint64)}
}

func (f *sequentialFactory) Produce() Token {
	return Token(f.counter.Add(1))
}
