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

package poll

import (
	"golang.org/x/sys/unix"
)

type epoll struct {
	fd int
}

// New opens a fresh epoll instance.
func New() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epoll{fd: fd}, nil
}

func toEpollEvents(i Interest) uint32 {
	var ev uint32 = unix.EPOLLHUP | unix.EPOLLERR
	if i&Readable != 0 {
		// EPOLLRDHUP must be requested explicitly, unlike EPOLLHUP; without
		// it a peer half-close keeps the fd level-triggered readable forever
		// with no hangup hint to resolve the zero-byte reads against.
		ev |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if i&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (p *epoll) Add(fd int, token uint64, interest Interest) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest)}
	setEpollEventToken(ev, token)
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, ev)
}

func (p *epoll) Modify(fd int, token uint64, interest Interest) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest)}
	setEpollEventToken(ev, token)
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, ev)
}

// setEpollEventToken/epollEventToken pack the reactor's Token into the
// kernel epoll_data union (the Fd/Pad pair), since the reactor keys its
// registries by Token rather than by fd.
func setEpollEventToken(ev *unix.EpollEvent, token uint64) {
	ev.Fd = int32(token & 0xffffffff)
	ev.Pad = int32(token >> 32)
}

func epollEventToken(ev *unix.EpollEvent) uint64 {
	return uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32
}

func (p *epoll) Remove(fd int) error {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epoll) Wait(events []Event, timeoutMs int) (int, error) {
	raw := make([]unix.EpollEvent, len(events))

	n, err := unix.EpollWait(p.fd, raw, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	for i := 0; i < n; i++ {
		events[i] = Event{
			Token:    epollEventToken(&raw[i]),
			Readable: raw[i].Events&unix.EPOLLIN != 0,
			Writable: raw[i].Events&unix.EPOLLOUT != 0,
			Hup:      raw[i].Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			Err:      raw[i].Events&unix.EPOLLERR != 0,
		}
	}

	return n, nil
}

func (p *epoll) Close() error {
	return unix.Close(p.fd)
}
