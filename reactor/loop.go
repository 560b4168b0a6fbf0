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

// Package reactor implements a non-blocking, single-goroutine TCP reactor: a
// consumer drives it entirely through message.Input values sent over the
// channel returned by Loop.InputSender, and observes it entirely through
// message.Output values read from the channel passed to New.
package reactor

import (
	"fmt"

	"github.com/nabbar/golib/errors/pool"

	"github.com/sabouaram/reactor/internal/poll"
	"github.com/sabouaram/reactor/message"
	"github.com/sabouaram/reactor/token"
)

// Loop binds one Handler to one poller and runs them on the calling
// goroutine's Run call, plus one internal goroutine dedicated to the
// poller's blocking Wait. Every exported method besides Run and
// InputSender is safe to call before Run; after Run starts, all mutation
// of reactor state happens exclusively inside the Run goroutine via the
// input channel.
type Loop struct {
	handler *handler
	poller  poll.Poller
	input   chan message.Input

	pollBatchSize int
	pollTimeoutMs int
}

// New constructs a Loop. factory mints the Tokens the consumer assigns to
// ListenRequest/ConnectRequest; downstream receives every message.Output the
// reactor produces and must be drained promptly or Run will block on it.
// A nil Config selects every default.
func New(factory token.Factory, downstream chan<- message.Output, cfg *Config) (*Loop, error) {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	p, err := poll.New()
	if err != nil {
		return nil, ErrorPollCreate.Error(err)
	}

	return &Loop{
		handler:       newHandler(factory, downstream, p, cfg),
		poller:        p,
		input:         make(chan message.Input, 64),
		pollBatchSize: cfg.pollBatchSize(),
		pollTimeoutMs: cfg.pollTimeoutMs(),
	}, nil
}

// InputSender returns the channel the consumer uses to drive the reactor.
// Sending on it after Run has returned is a programming error the consumer
// must avoid; the channel is never closed by the reactor itself.
func (l *Loop) InputSender() chan<- message.Input {
	return l.input
}

// pollEvents is the batch handed from the poller goroutine to Run.
type pollEvents struct {
	events []poll.Event
	err    error
}

// Run blocks until a message.Shutdown is received, a send finds the
// downstream channel closed, or the poller fails irrecoverably (returned as
// an error). A closed downstream channel is not itself returned: Run's error
// then carries a send failure only if delivering a live client's CloseOut
// during the final shutdown also fails. It owns the handler exclusively for its entire duration: no
// other goroutine may call handler methods while Run is active.
func (l *Loop) Run() error {
	pollCh := make(chan pollEvents)
	stopPoll := make(chan struct{})
	defer close(stopPoll)

	go l.pollLoop(pollCh, stopPoll)

	errs := pool.New()

	for {
		select {
		case batch := <-pollCh:
			if batch.err != nil {
				errs.Add(batch.err)
				goto drain
			}
			if !l.dispatchEvents(batch.events) {
				goto drain
			}

		case in := <-l.input:
			cont, err := l.dispatchInput(in)
			errs.Add(err)
			if !cont {
				goto drain
			}
		}
	}

drain:
	if cbErr := l.handler.procShutdown(); cbErr != nil {
		errs.Add(cbErr)
	}
	errs.Add(l.poller.Close())
	return errs.Error()
}

func (l *Loop) pollLoop(out chan<- pollEvents, stop <-chan struct{}) {
	events := make([]poll.Event, l.pollBatchSize)

	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := l.poller.Wait(events, l.pollTimeoutMs)
		if err != nil {
			select {
			case out <- pollEvents{err: err}:
			case <-stop:
			}
			return
		}
		if n == 0 {
			continue
		}

		batch := make([]poll.Event, n)
		copy(batch, events[:n])

		select {
		case out <- pollEvents{events: batch}:
		case <-stop:
			return
		}
	}
}

// dispatchEvents applies one batch of readiness notifications. It returns
// false if a downstream disconnect was detected and Run should stop.
func (l *Loop) dispatchEvents(events []poll.Event) bool {
	for _, ev := range events {
		tok := token.Token(ev.Token)

		if ev.Readable || ev.Hup || ev.Err {
			if !l.handler.handleResult(tok, l.handler.readable(tok, ev.Hup, ev.Err)) {
				return false
			}
		}
		if ev.Writable {
			if !l.handler.handleResult(tok, l.handler.writable(tok)) {
				return false
			}
		}
	}
	return true
}

// dispatchInput applies one consumer message.Input. It returns (true, nil)
// to continue, (false, nil) on a Shutdown or once a downstream disconnect is
// detected, or (true, err) for an unrecognized message, which Run collects
// into its returned error before continuing.
func (l *Loop) dispatchInput(in message.Input) (bool, error) {
	switch m := in.(type) {
	case message.ListenRequest:
		if cbErr := l.handler.procListenRequest(m.Listener, m.Addr); cbErr != nil {
			return l.handler.handleResult(m.Listener, cbErr), nil
		}

	case message.ConnectRequest:
		if cbErr := l.handler.procConnectRequest(m.Token, m.Addr); cbErr != nil {
			return l.handler.handleResult(m.Token, cbErr), nil
		}

	case message.Data:
		act, cbErr := l.handler.procData(m.Token, m.Data)
		if cbErr != nil {
			return l.handler.handleResult(m.Token, cbErr), nil
		}
		if act == actionTryFlush {
			return l.handler.handleResult(m.Token, l.handler.tryFlush(m.Token)), nil
		}

	case message.StatisticsRequest:
		if cbErr := l.handler.procStatsRequest(m.Token); cbErr != nil {
			return l.handler.handleResult(m.Token, cbErr), nil
		}

	case message.Close:
		if cbErr := l.handler.procClose(m.Token, m.Dirty, nil); cbErr != nil {
			return l.handler.handleResult(m.Token, cbErr), nil
		}

	case message.Shutdown:
		return false, nil

	default:
		return true, fmt.Errorf("reactor: unrecognized input message %T", m)
	}

	return true, nil
}
