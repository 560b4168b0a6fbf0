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

// Package message defines the wire-level taxonomy exchanged between a
// consumer and the reactor: Input messages flow from the consumer into the
// reactor's notify callback, Output messages flow one-way back out over the
// reactor's downstream channel.
package message

import (
	"net"

	"github.com/sabouaram/reactor/conn"
	"github.com/sabouaram/reactor/token"
)

// Input is implemented by every message a consumer may send to the reactor.
type Input interface {
	isInput()
}

// Output is implemented by every message the reactor may send downstream.
type Output interface {
	isOutput()
}

// ListenRequest asks the reactor to bind and listen on addr under listener.
// On success a ListenResponse is produced; on failure a DirtyClose is
// produced for the same token.
type ListenRequest struct {
	Listener token.Token
	Addr     *net.TCPAddr
}

// ConnectRequest asks the reactor to dial addr under token. A ConnectResponse
// is produced once the dial completes, whether immediately or after a
// writable wake.
type ConnectRequest struct {
	Token token.Token
	Addr  *net.TCPAddr
}

// Data queues bytes for delivery to the client named by token. The reactor
// buffers as much as necessary; delivery order is preserved per token.
type Data struct {
	Token token.Token
	Data  []byte
}

// StatisticsRequest asks the reactor to snapshot the named client's
// Statistics. Unknown tokens produce no response.
type StatisticsRequest struct {
	Token token.Token
}

// Close asks the reactor to drop the named client or listener. Dirty
// requests surface as DirtyClose with no reason attached; clean requests
// surface as Close. Unknown tokens are a silent no-op.
type Close struct {
	Token token.Token
	Dirty bool
}

// Shutdown asks the reactor to drop every live client, emit one Close per
// client, and return from Run.
type Shutdown struct{}

func (ListenRequest) isInput()     {}
func (ConnectRequest) isInput()    {}
func (Data) isInput()              {}
func (StatisticsRequest) isInput() {}
func (Close) isInput()             {}
func (Shutdown) isInput()          {}

// ListenResponse confirms a ListenRequest succeeded.
type ListenResponse struct {
	Listener token.Token
}

// ConnectRequestAccepted notifies the consumer that listener accepted a new
// peer, now registered as client. It is named distinctly from the Input
// ConnectRequest to avoid an identically-named but semantically different
// Go type; on the wire both are called ConnectRequest (see spec §6.2).
type ConnectRequestAccepted struct {
	Listener token.Token
	Client   token.Token
	Addr     net.Addr
}

// ConnectResponse confirms a dial (Input ConnectRequest) completed, whether
// the OS reported immediate completion or the completion arrived later via
// a writable wake.
type ConnectResponse struct {
	Token token.Token
}

// DataOut carries bytes read from a client. On the wire this is also called
// Data; renamed here to avoid colliding with the identically-shaped Input
// type in the same package.
type DataOut struct {
	Token token.Token
	Data  []byte
}

// StatisticsResponse answers a StatisticsRequest with a point-in-time copy.
type StatisticsResponse struct {
	Token token.Token
	Stats conn.Statistics
}

// CloseOut reports a clean disconnect: peer half-close, explicit Close, or
// reactor shutdown.
type CloseOut struct {
	Token token.Token
}

// DirtyClose reports a disconnect caused by an I/O error, a register/bind
// failure, or an explicit dirty Close. Reason is nil only for an explicit
// dirty Close the consumer requested without one.
type DirtyClose struct {
	Token  token.Token
	Reason error
}

func (ListenResponse) isOutput()         {}
func (ConnectRequestAccepted) isOutput() {}
func (ConnectResponse) isOutput()        {}
func (DataOut) isOutput()                {}
func (StatisticsResponse) isOutput()     {}
func (CloseOut) isOutput()               {}
func (DirtyClose) isOutput()             {}
