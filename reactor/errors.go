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

package reactor

import liberr "github.com/nabbar/golib/errors"

const (
	ErrorListenerBind liberr.CodeError = iota + liberr.MinAvailable
	ErrorListenerRegister
	ErrorClientRegister
	ErrorClientIO
	ErrorDialFailed
	ErrorDialRegister
	ErrorPollCreate
	ErrorConfigInvalid
)

func init() {
	liberr.RegisterIdFctMessage(ErrorListenerBind, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorListenerBind:
		return "failed to bind listener socket"
	case ErrorListenerRegister:
		return "failed to register listener with the poller"
	case ErrorClientRegister:
		return "failed to register client with the poller"
	case ErrorClientIO:
		return "client read or write failed"
	case ErrorDialFailed:
		return "failed to dial remote address"
	case ErrorDialRegister:
		return "failed to register pending dial with the poller"
	case ErrorPollCreate:
		return "failed to create poller instance"
	case ErrorConfigInvalid:
		return "reactor configuration failed validation"
	}

	return ""
}

// errKind classifies a callback failure per the reactor's error-handling
// design: AcceptFailed never changes reactor state, clientIO/clientDisconnect
// become self-notified Close messages, and downstreamDisconnect shuts the
// whole reactor down.
type errKind int

const (
	errNone errKind = iota
	errAcceptFailed
	errClientIO
	errClientDisconnect
	errDownstreamDisconnect
)

type callbackError struct {
	kind   errKind
	reason error
}

func (e *callbackError) Error() string {
	if e.reason != nil {
		return e.reason.Error()
	}
	return "reactor callback error"
}
