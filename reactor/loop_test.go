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

package reactor_test

import (
	"io"
	"net"
	"time"

	. "github.com/sabouaram/reactor"
	"github.com/sabouaram/reactor/message"
	"github.com/sabouaram/reactor/token"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Loop", func() {
	It("listens, accepts an inbound peer, and echoes data back to it", func() {
		loop, downstream, factory := newRunningLoop(nil)

		listenerTok := factory.Produce()
		addr := reserveAddr()

		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: addr}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ListenResponse{Listener: listenerTok}))

		peer, err := net.DialTCP("tcp", nil, addr)
		Expect(err).ToNot(HaveOccurred())
		defer peer.Close()

		out := expectOutput(downstream, time.Second)
		accepted, ok := out.(message.ConnectRequestAccepted)
		Expect(ok).To(BeTrue())
		Expect(accepted.Listener).To(Equal(listenerTok))
		clientTok := accepted.Client

		_, err = peer.Write([]byte("ping"))
		Expect(err).ToNot(HaveOccurred())

		out = expectOutput(downstream, time.Second)
		Expect(out).To(Equal(message.DataOut{Token: clientTok, Data: []byte("ping")}))

		loop.InputSender() <- message.Data{Token: clientTok, Data: []byte("pong")}

		buf := make([]byte, 4)
		Expect(peer.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		_, err = io.ReadFull(peer, buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf)).To(Equal("pong"))
	})

	It("dials out and exchanges data as the initiating side", func() {
		loop, downstream, factory := newRunningLoop(nil)

		ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()

		accepted := make(chan net.Conn, 1)
		go func() {
			c, _ := ln.Accept()
			accepted <- c
		}()

		dialTok := factory.Produce()
		loop.InputSender() <- message.ConnectRequest{Token: dialTok, Addr: ln.Addr().(*net.TCPAddr)}

		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ConnectResponse{Token: dialTok}))

		peer := <-accepted
		defer peer.Close()

		loop.InputSender() <- message.Data{Token: dialTok, Data: []byte("hello")}

		buf := make([]byte, 5)
		Expect(peer.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		_, err = io.ReadFull(peer, buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf)).To(Equal("hello"))

		_, err = peer.Write([]byte("world"))
		Expect(err).ToNot(HaveOccurred())

		Expect(expectOutput(downstream, time.Second)).To(Equal(message.DataOut{Token: dialTok, Data: []byte("world")}))
	})

	It("reports a clean CloseOut when the peer half-closes", func() {
		loop, downstream, factory := newRunningLoop(nil)

		listenerTok := factory.Produce()
		addr := reserveAddr()

		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: addr}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ListenResponse{Listener: listenerTok}))

		peer, err := net.DialTCP("tcp", nil, addr)
		Expect(err).ToNot(HaveOccurred())

		out := expectOutput(downstream, time.Second)
		clientTok := out.(message.ConnectRequestAccepted).Client

		Expect(peer.Close()).To(Succeed())

		Expect(expectOutput(downstream, time.Second)).To(Equal(message.CloseOut{Token: clientTok}))
	})

	It("reports a DirtyClose when the peer resets the connection", func() {
		loop, downstream, factory := newRunningLoop(nil)

		listenerTok := factory.Produce()
		addr := reserveAddr()

		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: addr}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ListenResponse{Listener: listenerTok}))

		peer, err := net.DialTCP("tcp", nil, addr)
		Expect(err).ToNot(HaveOccurred())

		out := expectOutput(downstream, time.Second)
		clientTok := out.(message.ConnectRequestAccepted).Client

		Expect(peer.SetLinger(0)).To(Succeed())
		Expect(peer.Close()).To(Succeed())

		out = expectOutput(downstream, time.Second)
		dirty, ok := out.(message.DirtyClose)
		Expect(ok).To(BeTrue())
		Expect(dirty.Token).To(Equal(clientTok))
		Expect(dirty.Reason).To(HaveOccurred())
	})

	It("buffers writes under back-pressure and drains once the peer reads", func() {
		loop, downstream, factory := newRunningLoop(nil)

		listenerTok := factory.Produce()
		addr := reserveAddr()

		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: addr}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ListenResponse{Listener: listenerTok}))

		peer, err := net.DialTCP("tcp", nil, addr)
		Expect(err).ToNot(HaveOccurred())
		defer peer.Close()

		out := expectOutput(downstream, time.Second)
		clientTok := out.(message.ConnectRequestAccepted).Client

		// Oversized relative to the kernel's socket buffers, with nothing yet
		// draining the peer side: the first flush attempt blocks, leaving the
		// remainder queued.
		payload := make([]byte, 8<<20)
		loop.InputSender() <- message.Data{Token: clientTok, Data: payload}

		loop.InputSender() <- message.StatisticsRequest{Token: clientTok}
		out = expectOutput(downstream, time.Second)
		stats := out.(message.StatisticsResponse).Stats
		Expect(stats.BytesWrittenQueued).To(Equal(uint64(len(payload))))
		Expect(stats.BytesWritten).To(BeNumerically("<", stats.BytesWrittenQueued))

		drained := make(chan int64, 1)
		go func() {
			n, _ := io.Copy(io.Discard, peer)
			drained <- n
		}()

		Eventually(func() uint64 {
			loop.InputSender() <- message.StatisticsRequest{Token: clientTok}
			out := expectOutput(downstream, time.Second)
			return out.(message.StatisticsResponse).Stats.BytesWritten
		}, 5*time.Second, 20*time.Millisecond).Should(Equal(uint64(len(payload))))

		Expect(peer.Close()).To(Succeed())
		Eventually(drained, time.Second).Should(Receive())
	})

	It("drops every live client with one CloseOut apiece and returns from Run", func() {
		downstream := make(chan message.Output, 64)
		factory := token.NewSequentialFactory()

		loop, err := New(factory, downstream, nil)
		Expect(err).ToNot(HaveOccurred())

		done := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			done <- loop.Run()
		}()

		listenerTok := factory.Produce()
		addr := reserveAddr()
		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: addr}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ListenResponse{Listener: listenerTok}))

		peer, err := net.DialTCP("tcp", nil, addr)
		Expect(err).ToNot(HaveOccurred())
		defer peer.Close()

		out := expectOutput(downstream, time.Second)
		clientTok := out.(message.ConnectRequestAccepted).Client

		loop.InputSender() <- message.Shutdown{}

		Expect(expectOutput(downstream, time.Second)).To(Equal(message.CloseOut{Token: clientTok}))
		Eventually(done, time.Second).Should(Receive(BeNil()))
	})

	It("shuts down cleanly with no live clients", func() {
		downstream := make(chan message.Output, 64)
		factory := token.NewSequentialFactory()

		loop, err := New(factory, downstream, nil)
		Expect(err).ToNot(HaveOccurred())

		done := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			done <- loop.Run()
		}()

		loop.InputSender() <- message.Shutdown{}
		Eventually(done, time.Second).Should(Receive(BeNil()))
	})

	It("treats a second Close for an already-closed token as a silent no-op", func() {
		loop, downstream, factory := newRunningLoop(nil)

		listenerTok := factory.Produce()
		addr := reserveAddr()

		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: addr}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ListenResponse{Listener: listenerTok}))

		peer, err := net.DialTCP("tcp", nil, addr)
		Expect(err).ToNot(HaveOccurred())
		defer peer.Close()

		out := expectOutput(downstream, time.Second)
		clientTok := out.(message.ConnectRequestAccepted).Client

		loop.InputSender() <- message.Close{Token: clientTok}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.CloseOut{Token: clientTok}))

		loop.InputSender() <- message.Close{Token: clientTok}
		Consistently(downstream, 200*time.Millisecond).ShouldNot(Receive())
	})

	It("reports a DirtyClose for a ListenRequest that cannot bind", func() {
		loop, downstream, factory := newRunningLoop(nil)

		// Hold the port with a stdlib listener so the reactor's bind fails.
		occupied, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer occupied.Close()

		listenerTok := factory.Produce()
		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: occupied.Addr().(*net.TCPAddr)}

		out := expectOutput(downstream, time.Second)
		dirty, ok := out.(message.DirtyClose)
		Expect(ok).To(BeTrue())
		Expect(dirty.Token).To(Equal(listenerTok))
		Expect(dirty.Reason).To(HaveOccurred())
	})

	It("tears down a listener on Close with its token and stops accepting", func() {
		loop, downstream, factory := newRunningLoop(nil)

		listenerTok := factory.Produce()
		addr := reserveAddr()

		loop.InputSender() <- message.ListenRequest{Listener: listenerTok, Addr: addr}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.ListenResponse{Listener: listenerTok}))

		loop.InputSender() <- message.Close{Token: listenerTok}
		Expect(expectOutput(downstream, time.Second)).To(Equal(message.CloseOut{Token: listenerTok}))

		Eventually(func() error {
			c, err := net.DialTimeout("tcp", addr.String(), 100*time.Millisecond)
			if err == nil {
				c.Close()
			}
			return err
		}, time.Second, 20*time.Millisecond).Should(HaveOccurred())
	})

	It("reports a DirtyClose when a dial is refused", func() {
		loop, downstream, factory := newRunningLoop(nil)

		dialTok := factory.Produce()
		loop.InputSender() <- message.ConnectRequest{Token: dialTok, Addr: reserveAddr()}

		out := expectOutput(downstream, time.Second)
		dirty, ok := out.(message.DirtyClose)
		Expect(ok).To(BeTrue())
		Expect(dirty.Token).To(Equal(dialTok))
		Expect(dirty.Reason).To(HaveOccurred())
	})

	It("keeps tokens strictly increasing across listener and client roles from a shared factory", func() {
		factory := token.NewSequentialFactory()

		listenerTok := factory.Produce()
		dialTok := factory.Produce()
		clientTok := factory.Produce()

		Expect(listenerTok).To(Equal(token.Token(1)))
		Expect(dialTok).ToNot(Equal(listenerTok))
		Expect(clientTok).ToNot(Equal(dialTok))
		Expect(uint64(dialTok)).To(BeNumerically(">", uint64(listenerTok)))
		Expect(uint64(clientTok)).To(BeNumerically(">", uint64(dialTok)))
	})
})
