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
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional prometheus.Collector exposing reactor-wide
// aggregate counters. It is safe to register with a prometheus.Registerer
// and safe for the reactor goroutine to update concurrently with a
// Collect call from the metrics HTTP handler's own goroutine.
type Metrics struct {
	listeners     atomic.Int64
	clients       atomic.Int64
	pendingDials  atomic.Int64
	acceptFailed  atomic.Uint64
	dirtyCloses   atomic.Uint64
	cleanCloses   atomic.Uint64
	bytesRead     atomic.Uint64
	bytesWritten  atomic.Uint64
	blockedWrites atomic.Uint64
}

// NewMetrics returns a ready-to-register Metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

var (
	descListeners = prometheus.NewDesc("reactor_listeners", "Number of active listeners.", nil, nil)
	descClients   = prometheus.NewDesc("reactor_clients", "Number of established clients.", nil, nil)
	descPending   = prometheus.NewDesc("reactor_pending_dials", "Number of in-flight dials.", nil, nil)
	descAccept    = prometheus.NewDesc("reactor_accept_failed_total", "Accept failures.", nil, nil)
	descDirty     = prometheus.NewDesc("reactor_dirty_closes_total", "Dirty disconnects.", nil, nil)
	descClean     = prometheus.NewDesc("reactor_clean_closes_total", "Clean disconnects.", nil, nil)
	descBytesRead = prometheus.NewDesc("reactor_bytes_read_total", "Bytes read across all clients.", nil, nil)
	descBytesWrit = prometheus.NewDesc("reactor_bytes_written_total", "Bytes written across all clients.", nil, nil)
	descBlocked   = prometheus.NewDesc("reactor_blocked_writes_total", "Writes that returned would-block.", nil, nil)
)

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- descListeners
	ch <- descClients
	ch <- descPending
	ch <- descAccept
	ch <- descDirty
	ch <- descClean
	ch <- descBytesRead
	ch <- descBytesWrit
	ch <- descBlocked
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(descListeners, prometheus.GaugeValue, float64(m.listeners.Load()))
	ch <- prometheus.MustNewConstMetric(descClients, prometheus.GaugeValue, float64(m.clients.Load()))
	ch <- prometheus.MustNewConstMetric(descPending, prometheus.GaugeValue, float64(m.pendingDials.Load()))
	ch <- prometheus.MustNewConstMetric(descAccept, prometheus.CounterValue, float64(m.acceptFailed.Load()))
	ch <- prometheus.MustNewConstMetric(descDirty, prometheus.CounterValue, float64(m.dirtyCloses.Load()))
	ch <- prometheus.MustNewConstMetric(descClean, prometheus.CounterValue, float64(m.cleanCloses.Load()))
	ch <- prometheus.MustNewConstMetric(descBytesRead, prometheus.CounterValue, float64(m.bytesRead.Load()))
	ch <- prometheus.MustNewConstMetric(descBytesWrit, prometheus.CounterValue, float64(m.bytesWritten.Load()))
	ch <- prometheus.MustNewConstMetric(descBlocked, prometheus.CounterValue, float64(m.blockedWrites.Load()))
}
