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

package logger

import (
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	entry *logrus.Entry
}

// New wraps a *logrus.Logger as a Logger. Passing nil constructs a
// logrus.Logger with its package defaults (text formatter, stderr output,
// Info level).
func New(base *logrus.Logger) Logger {
	if base == nil {
		base = logrus.New()
	}
	return &logrusLogger{entry: logrus.NewEntry(base)}
}

func (l *logrusLogger) WithFields(field Fields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(field))}
}

func (l *logrusLogger) Trace(message string, fields Fields) {
	l.entryWith(fields).Trace(message)
}

func (l *logrusLogger) Debug(message string, fields Fields) {
	l.entryWith(fields).Debug(message)
}

func (l *logrusLogger) Info(message string, fields Fields) {
	l.entryWith(fields).Info(message)
}

func (l *logrusLogger) Warn(message string, fields Fields) {
	l.entryWith(fields).Warn(message)
}

func (l *logrusLogger) Error(message string, fields Fields, err error) {
	e := l.entryWith(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(message)
}

func (l *logrusLogger) entryWith(fields Fields) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(logrus.Fields(fields))
}
