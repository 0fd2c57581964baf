/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sio

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Stdio is a fairly simple Sink that writes one line per point.
type Stdio struct {
	// Out is where points go.
	Out io.Writer

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// Tags prefixes each line with "emit".
	Tags bool

	// PadTags adds some padding to tags.
	PadTags bool

	// Short truncates each point's JSON.
	Short bool

	sync.Mutex
	count int
}

// NewStdio creates a new Stdio that writes to os.Stdout.
func NewStdio() *Stdio {
	return &Stdio{
		Out: os.Stdout,
	}
}

// Start does nothing.
func (s *Stdio) Start(ctx context.Context) error {
	return nil
}

func (s *Stdio) printf(tag, format string, args ...interface{}) error {
	if s.PadTags {
		tag = fmt.Sprintf("% 10s", tag)
	}
	if s.Tags {
		format = tag + " " + format
	}
	if s.Timestamps {
		ts := fmt.Sprintf("%-31s", time.Now().UTC().Format(time.RFC3339Nano))
		format = ts + " " + format
	}
	_, err := fmt.Fprintf(s.Out, format, args...)
	return err
}

// Emit writes the Message as a line of JSON.
func (s *Stdio) Emit(ctx context.Context, m *Message) error {
	s.Lock()
	defer s.Unlock()
	s.count++
	if s.Short {
		return s.printf("emit", "%s\n", JShort(m))
	}
	return s.printf("emit", "%s\n", JS(m))
}

// Stop writes a summary line if Tags is set.
func (s *Stdio) Stop(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()
	if !s.Tags {
		return nil
	}
	return s.printf("done", "%d points\n", s.count)
}
