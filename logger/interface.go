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

// Package logger is the reactor's structured-logging collaborator: a small
// Logger interface backed by logrus, right-sized for one library instead of
// the multi-hook, multi-destination logger a full application needs.
package logger

// Fields carries structured key/value context attached to one log entry.
type Fields map[string]interface{}

// Logger is the diagnostics sink the reactor writes to. The reactor never
// requires one: a nil Logger in reactor.Config is replaced with Nop().
type Logger interface {
	Trace(message string, fields Fields)
	Debug(message string, fields Fields)
	Info(message string, fields Fields)
	Warn(message string, fields Fields)
	Error(message string, fields Fields, err error)

	// WithFields returns a Logger that merges field into every entry it
	// logs, in addition to whatever Fields the call site supplies.
	WithFields(field Fields) Logger
}
