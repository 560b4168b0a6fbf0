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

	libval "github.com/go-playground/validator/v10"

	liberr "github.com/nabbar/golib/errors"

	"github.com/nabbar/golib/duration"

	"github.com/sabouaram/reactor/logger"
)

// Config carries the reactor's tunables beyond the bare spec default.
type Config struct {
	// ReadBufferSize is the scratch buffer used by Client.TryReadAll.
	// Defaults to 1024 when zero.
	ReadBufferSize int `mapstructure:"readBufferSize" json:"readBufferSize" yaml:"readBufferSize" toml:"readBufferSize" validate:"omitempty,min=64,max=1048576"`

	// PollBatchSize is the number of events requested per epoll_wait call.
	// Defaults to 128 when zero.
	PollBatchSize int `mapstructure:"pollBatchSize" json:"pollBatchSize" yaml:"pollBatchSize" toml:"pollBatchSize" validate:"omitempty,min=1,max=4096"`

	// PollTimeout bounds how long one epoll_wait call may block before the
	// poller goroutine re-checks whether Run has stopped. Zero means block
	// indefinitely until a socket event arrives; consumer input is served by
	// Run independently of the poller's wait either way.
	PollTimeout duration.Duration `mapstructure:"pollTimeout" json:"pollTimeout" yaml:"pollTimeout" toml:"pollTimeout" validate:"omitempty"`

	// Logger receives the reactor's diagnostics. A nil Logger is replaced
	// with logger.Nop() at construction time.
	Logger logger.Logger `mapstructure:"-" json:"-" yaml:"-" toml:"-" validate:"-"`

	// Metrics, when non-nil, is updated as clients come and go and as
	// Statistics are observed. Optional.
	Metrics *Metrics `mapstructure:"-" json:"-" yaml:"-" toml:"-" validate:"-"`
}

const (
	defaultPollBatchSize = 128
)

// Validate checks Config against its constraints, returning nil if it is
// already well-formed. A nil Config is valid and selects every default.
func (c *Config) Validate() liberr.Error {
	if c == nil {
		return nil
	}

	e := ErrorConfigInvalid.Error(nil)

	if err := libval.New().Struct(c); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		}
		for _, er := range err.(libval.ValidationErrors) {
			e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
		}
	}

	if !e.HasParent() {
		return nil
	}
	return e
}

func (c *Config) readBufferSize() int {
	if c == nil || c.ReadBufferSize <= 0 {
		return 0
	}
	return c.ReadBufferSize
}

func (c *Config) pollBatchSize() int {
	if c == nil || c.PollBatchSize <= 0 {
		return defaultPollBatchSize
	}
	return c.PollBatchSize
}

func (c *Config) pollTimeoutMs() int {
	if c == nil || c.PollTimeout.Time() <= 0 {
		return -1
	}
	return int(c.PollTimeout.Time().Milliseconds())
}

func (c *Config) logger() logger.Logger {
	if c == nil || c.Logger == nil {
		return logger.Nop()
	}
	return c.Logger
}

func (c *Config) metrics() *Metrics {
	if c == nil {
		return nil
	}
	return c.Metrics
}
