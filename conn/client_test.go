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

package conn_test

import (
	"net"
	"time"

	. "github.com/sabouaram/reactor/conn"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// dialClientPair stands up a stdlib listener, dials our raw-fd Client into
// it, and hands back the Client plus the stdlib-side peer connection.
func dialClientPair() (*Client, net.Conn) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	addr := ln.Addr().(*net.TCPAddr)
	fd, waiting, err := Dial(addr)
	Expect(err).ToNot(HaveOccurred())

	// The stdlib side accepting means the handshake completed, whether or
	// not the non-blocking connect reported in-progress first.
	peer := <-accepted
	Expect(peer).ToNot(BeNil())
	if waiting {
		Expect(CheckConnectError(fd)).To(Succeed())
	}

	return NewClient(fd, peer.LocalAddr(), 0), peer
}

var _ = Describe("Client", func() {
	It("reads bytes the peer writes", func() {
		client, peer := dialClientPair()
		defer client.Close()
		defer peer.Close()

		_, err := peer.Write([]byte("hello"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(func() []byte {
			data, _ := client.TryReadAll()
			return data
		}, time.Second).Should(Equal([]byte("hello")))

		Expect(client.Statistics().BytesRead).To(Equal(uint64(5)))
	})

	It("returns an empty, non-nil slice when nothing is available", func() {
		client, peer := dialClientPair()
		defer client.Close()
		defer peer.Close()

		data, err := client.TryReadAll()
		Expect(err).ToNot(HaveOccurred())
		Expect(data).ToNot(BeNil())
		Expect(data).To(BeEmpty())
	})

	It("queues and flushes writes, keeping the invariant bytes_written_queued = bytes_written + buffered", func() {
		client, peer := dialClientPair()
		defer client.Close()
		defer peer.Close()

		client.QueueWrite([]byte("abc"))
		client.QueueWrite([]byte("def"))

		result, err := client.FlushWrite()
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Blocked).To(BeFalse())

		stats := client.Statistics()
		Expect(stats.BytesWrittenQueued).To(Equal(stats.BytesWritten + uint64(client.BufferedLen())))

		buf := make([]byte, 6)
		Expect(peer.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		n, err := peer.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("abcdef"))
	})
})
