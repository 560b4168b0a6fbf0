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

import (
	"fmt"
	"net"

	"github.com/sabouaram/reactor/conn"
	"github.com/sabouaram/reactor/internal/poll"
	"github.com/sabouaram/reactor/logger"
	"github.com/sabouaram/reactor/message"
	"github.com/sabouaram/reactor/token"
)

type pendingClient struct {
	fd   int
	addr *net.TCPAddr
}

type establishedClient struct {
	client          *conn.Client
	waitingForWrite bool
}

// handler owns the three token-keyed registries and the poller, and
// implements the readable/writable/notify callbacks every reactor event
// funnels into. It is never accessed from more than one goroutine at a time
// (see Loop.Run).
type handler struct {
	listeners      map[token.Token]*conn.Listener
	pendingClients map[token.Token]pendingClient
	clients        map[token.Token]*establishedClient

	downstream  chan<- message.Output
	factory     token.Factory
	poller      poll.Poller
	log         logger.Logger
	metrics     *Metrics
	readBufSize int
}

func newHandler(factory token.Factory, downstream chan<- message.Output, poller poll.Poller, cfg *Config) *handler {
	return &handler{
		listeners:      make(map[token.Token]*conn.Listener),
		pendingClients: make(map[token.Token]pendingClient),
		clients:        make(map[token.Token]*establishedClient),
		downstream:     downstream,
		factory:        factory,
		poller:         poller,
		log:            cfg.logger(),
		metrics:        cfg.metrics(),
		readBufSize:    cfg.readBufferSize(),
	}
}

// send delivers out downstream, blocking the reactor goroutine if the
// consumer is not keeping up. A slow consumer therefore applies backpressure
// to the whole reactor rather than growing an unbounded internal queue. A
// consumer that closes the channel turns the resulting panic into an
// errDownstreamDisconnect, which Run treats as a reason to stop; a consumer
// that merely stops reading leaves the send blocked.
func (h *handler) send(out message.Output) (cbErr *callbackError) {
	defer func() {
		if r := recover(); r != nil {
			cbErr = &callbackError{kind: errDownstreamDisconnect, reason: fmt.Errorf("reactor: downstream channel closed: %v", r)}
		}
	}()
	h.downstream <- out
	return nil
}

func newEstablishedInterest(waitingForWrite bool) poll.Interest {
	if waitingForWrite {
		return poll.Readable | poll.Writable
	}
	return poll.Readable
}

// installClient registers c with the poller and adds it to the clients
// registry. On registration failure c is closed and never added, since
// nothing else owns it; the returned error carries reason for the caller to
// report however is appropriate to the call site (accepted clients log and
// move on, dialed clients surface a DirtyClose).
func (h *handler) installClient(tok token.Token, c *conn.Client) *callbackError {
	if err := h.poller.Add(c.Fd(), uint64(tok), newEstablishedInterest(false)); err != nil {
		h.log.Error("failed to register client", logger.Fields{"token": tok}, err)
		_ = c.Close()
		return &callbackError{kind: errAcceptFailed, reason: err}
	}

	h.clients[tok] = &establishedClient{client: c}
	if h.metrics != nil {
		h.metrics.clients.Add(1)
	}
	return nil
}

// tryFlush attempts one write of the client's whole buffer and keeps the
// poller's write interest in sync with the outcome. It is invoked both from
// the writable callback and as the deferred action after a Data input.
func (h *handler) tryFlush(tok token.Token) *callbackError {
	ec, ok := h.clients[tok]
	if !ok {
		h.log.Warn("flush requested for stale token", logger.Fields{"token": tok})
		return nil
	}

	result, err := ec.client.FlushWrite()
	if err != nil {
		h.log.Error("flush failed", logger.Fields{"token": tok}, err)
		return &callbackError{kind: errClientIO, reason: err}
	}

	if h.metrics != nil {
		if result.Blocked {
			h.metrics.blockedWrites.Add(1)
		} else {
			h.metrics.bytesWritten.Add(uint64(result.Size))
		}
	}

	// A zero-byte successful write is treated as WouldBlock for
	// readiness purposes: the buffer may still be non-empty and no
	// further writable wake would otherwise arrive.
	blocked := result.Blocked || (result.Size == 0 && ec.client.BufferedLen() > 0)

	if blocked {
		if !ec.waitingForWrite {
			if err = h.poller.Modify(ec.client.Fd(), uint64(tok), newEstablishedInterest(true)); err != nil {
				h.log.Error("failed to reregister client for writable", logger.Fields{"token": tok}, err)
				return &callbackError{kind: errClientIO, reason: err}
			}
			ec.waitingForWrite = true
		}
		return nil
	}

	if ec.waitingForWrite {
		if err = h.poller.Modify(ec.client.Fd(), uint64(tok), newEstablishedInterest(false)); err != nil {
			h.log.Error("failed to reregister client for quiescent write", logger.Fields{"token": tok}, err)
			return &callbackError{kind: errClientIO, reason: err}
		}
		ec.waitingForWrite = false
	}

	return nil
}

// procListenRequest binds, registers, and stores a listener. A bind or
// register failure never leaves partial state behind: the fd (if any) is
// closed and a DirtyClose for the listener token goes downstream, since the
// consumer has no other way to learn the ListenRequest died.
func (h *handler) procListenRequest(tok token.Token, addr *net.TCPAddr) *callbackError {
	ln, err := conn.Bind(addr)
	if err != nil {
		h.log.Error("failed to bind listener", logger.Fields{"token": tok, "addr": addr}, err)
		return h.sendDirtyClose(tok, ErrorListenerBind.Error(err))
	}

	if err = h.poller.Add(ln.Fd(), uint64(tok), poll.Readable); err != nil {
		_ = ln.Close()
		h.log.Error("failed to register listener", logger.Fields{"token": tok, "addr": addr}, err)
		return h.sendDirtyClose(tok, ErrorListenerRegister.Error(err))
	}

	h.listeners[tok] = ln
	if h.metrics != nil {
		h.metrics.listeners.Add(1)
	}

	if cbErr := h.send(message.ListenResponse{Listener: tok}); cbErr != nil {
		return cbErr
	}
	return nil
}

// sendDirtyClose reports a bind or dial failure for a token the consumer is
// actively tracking (as opposed to an accept failure, which is internal and
// never fatal to the reactor).
func (h *handler) sendDirtyClose(tok token.Token, reason error) *callbackError {
	if h.metrics != nil {
		h.metrics.dirtyCloses.Add(1)
	}
	return h.send(message.DirtyClose{Token: tok, Reason: reason})
}

func (h *handler) procConnectRequest(tok token.Token, addr *net.TCPAddr) *callbackError {
	fd, waiting, err := conn.Dial(addr)
	if err != nil {
		h.log.Error("failed to dial", logger.Fields{"token": tok, "addr": addr}, err)
		return h.sendDirtyClose(tok, ErrorDialFailed.Error(err))
	}

	if waiting {
		if err = h.poller.Add(fd, uint64(tok), poll.Writable); err != nil {
			h.log.Error("failed to register pending dial", logger.Fields{"token": tok, "addr": addr}, err)
			_ = conn.CloseFd(fd)
			return h.sendDirtyClose(tok, ErrorDialRegister.Error(err))
		}
		h.pendingClients[tok] = pendingClient{fd: fd, addr: addr}
		if h.metrics != nil {
			h.metrics.pendingDials.Add(1)
		}
		return nil
	}

	if cbErr := h.installClient(tok, conn.NewClient(fd, addr, h.readBufSize)); cbErr != nil {
		return h.sendDirtyClose(tok, ErrorClientRegister.Error(cbErr.reason))
	}
	return h.send(message.ConnectResponse{Token: tok})
}

func (h *handler) procData(tok token.Token, data []byte) (action, *callbackError) {
	ec, ok := h.clients[tok]
	if !ok {
		h.log.Warn("data request for stale token", logger.Fields{"token": tok})
		return actionNone, nil
	}

	ec.client.QueueWrite(data)
	return actionTryFlush, nil
}

func (h *handler) procStatsRequest(tok token.Token) *callbackError {
	ec, ok := h.clients[tok]
	if !ok {
		h.log.Warn("stats request for stale token", logger.Fields{"token": tok})
		return nil
	}

	return h.send(message.StatisticsResponse{Token: tok, Stats: ec.client.Statistics()})
}

// procClose handles the Close input: dirty close reports reason, clean close
// never does. A token naming a listener tears the listener down the same
// way; an unknown token is a silent no-op.
func (h *handler) procClose(tok token.Token, dirty bool, reason error) *callbackError {
	if ec, ok := h.clients[tok]; ok {
		if err := h.poller.Remove(ec.client.Fd()); err != nil {
			h.log.Error("failed to deregister client", logger.Fields{"token": tok}, err)
		}
		_ = ec.client.Close()
		delete(h.clients, tok)
		if h.metrics != nil {
			h.metrics.clients.Add(-1)
		}
		return h.sendCloseResult(tok, dirty, reason)
	}

	if ln, ok := h.listeners[tok]; ok {
		if err := h.poller.Remove(ln.Fd()); err != nil {
			h.log.Error("failed to deregister listener", logger.Fields{"token": tok}, err)
		}
		_ = ln.Close()
		delete(h.listeners, tok)
		if h.metrics != nil {
			h.metrics.listeners.Add(-1)
		}
		return h.sendCloseResult(tok, dirty, reason)
	}

	return nil
}

func (h *handler) sendCloseResult(tok token.Token, dirty bool, reason error) *callbackError {
	if dirty {
		if h.metrics != nil {
			h.metrics.dirtyCloses.Add(1)
		}
		return h.send(message.DirtyClose{Token: tok, Reason: reason})
	}

	if h.metrics != nil {
		h.metrics.cleanCloses.Add(1)
	}
	return h.send(message.CloseOut{Token: tok})
}

// procShutdown drops every live client, pending dial and listener, emitting
// one CloseOut per established client. It stops emitting as soon as
// the downstream channel is detected gone, since nothing further it sends
// could be received either, but still closes everything it holds.
func (h *handler) procShutdown() *callbackError {
	var sendErr *callbackError
	for tok, ec := range h.clients {
		if err := h.poller.Remove(ec.client.Fd()); err != nil {
			h.log.Warn("failed to deregister client during shutdown", logger.Fields{"token": tok})
		}
		_ = ec.client.Close()
		delete(h.clients, tok)
		if h.metrics != nil {
			h.metrics.clients.Add(-1)
			h.metrics.cleanCloses.Add(1)
		}

		if sendErr == nil {
			sendErr = h.send(message.CloseOut{Token: tok})
		}
	}

	for tok, pc := range h.pendingClients {
		_ = h.poller.Remove(pc.fd)
		_ = conn.CloseFd(pc.fd)
		delete(h.pendingClients, tok)
		if h.metrics != nil {
			h.metrics.pendingDials.Add(-1)
		}
	}

	for tok, ln := range h.listeners {
		_ = h.poller.Remove(ln.Fd())
		_ = ln.Close()
		delete(h.listeners, tok)
		if h.metrics != nil {
			h.metrics.listeners.Add(-1)
		}
	}

	return sendErr
}

func (h *handler) accept(listenerToken token.Token) *callbackError {
	ln, ok := h.listeners[listenerToken]
	if !ok {
		h.log.Warn("accept on stale listener", logger.Fields{"token": listenerToken})
		return nil
	}

	client, err := ln.Accept()
	if err != nil {
		h.log.Error("accept failed", logger.Fields{"token": listenerToken}, err)
		if h.metrics != nil {
			h.metrics.acceptFailed.Add(1)
		}
		return &callbackError{kind: errAcceptFailed, reason: err}
	}
	if client == nil {
		return nil
	}

	newTok := h.factory.Produce()
	if cbErr := h.installClient(newTok, client); cbErr != nil {
		return cbErr
	}

	return h.send(message.ConnectRequestAccepted{Listener: listenerToken, Client: newTok, Addr: client.Addr()})
}

func (h *handler) readable(tok token.Token, hup, errHint bool) *callbackError {
	if _, ok := h.listeners[tok]; ok {
		return h.accept(tok)
	}

	// A failed non-blocking connect may surface as hup/err without a
	// writable bit; resolving it is the writable path's job either way.
	if _, ok := h.pendingClients[tok]; ok {
		return h.writable(tok)
	}

	ec, ok := h.clients[tok]
	if !ok {
		h.log.Warn("readable event for stale token", logger.Fields{"token": tok})
		return nil
	}

	data, err := ec.client.TryReadAll()
	if err != nil {
		h.log.Error("read failed", logger.Fields{"token": tok}, err)
		return &callbackError{kind: errClientIO, reason: err}
	}

	if errHint {
		// the socket reported an error condition but the read itself
		// succeeded (or would have blocked); report the disconnect with the
		// generic ErrorClientIO code, since no errno was surfaced through
		// the read path.
		return &callbackError{kind: errClientIO, reason: ErrorClientIO.Error(nil)}
	}

	if len(data) > 0 {
		if cbErr := h.send(message.DataOut{Token: tok, Data: data}); cbErr != nil {
			return cbErr
		}
		if h.metrics != nil {
			// BytesRead is also tracked per-client in conn.Statistics; the
			// aggregate counter mirrors it for the /metrics surface.
			h.metrics.bytesRead.Add(uint64(len(data)))
		}
	}

	if hup {
		return &callbackError{kind: errClientDisconnect}
	}

	return nil
}

func (h *handler) writable(tok token.Token) *callbackError {
	if ec, ok := h.clients[tok]; ok {
		if !ec.waitingForWrite {
			h.log.Warn("spurious writable event", logger.Fields{"token": tok})
			return nil
		}
		return h.tryFlush(tok)
	}

	pc, ok := h.pendingClients[tok]
	if !ok {
		h.log.Warn("writable event for stale token", logger.Fields{"token": tok})
		return nil
	}

	delete(h.pendingClients, tok)
	if h.metrics != nil {
		h.metrics.pendingDials.Add(-1)
	}

	if err := h.poller.Remove(pc.fd); err != nil {
		h.log.Error("failed to deregister pending dial", logger.Fields{"token": tok}, err)
	}

	if err := conn.CheckConnectError(pc.fd); err != nil {
		h.log.Error("dial failed to complete", logger.Fields{"token": tok, "addr": pc.addr}, err)
		_ = conn.CloseFd(pc.fd)
		return h.sendDirtyClose(tok, ErrorDialFailed.Error(err))
	}

	if cbErr := h.installClient(tok, conn.NewClient(pc.fd, pc.addr, h.readBufSize)); cbErr != nil {
		return h.sendDirtyClose(tok, ErrorClientRegister.Error(cbErr.reason))
	}

	return h.send(message.ConnectResponse{Token: tok})
}

// handleResult classifies the outcome of a callback, self-notifying a Close
// when appropriate. It never
// recurses through tryFlush twice: tryFlush's own result is classified here
// exactly once and can never again yield actionTryFlush.
func (h *handler) handleResult(tok token.Token, cbErr *callbackError) bool {
	if cbErr == nil {
		return true
	}

	switch cbErr.kind {
	case errAcceptFailed:
		return true

	case errClientIO:
		h.log.Info("dirty disconnect", logger.Fields{"token": tok})
		return h.handleResult(tok, h.procClose(tok, true, cbErr.reason))

	case errClientDisconnect:
		h.log.Info("clean disconnect", logger.Fields{"token": tok})
		return h.handleResult(tok, h.procClose(tok, false, nil))

	case errDownstreamDisconnect:
		return false
	}

	return true
}
