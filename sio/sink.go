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

// Package sio forwards trajectory points to instrument control.
package sio

import (
	"context"

	"github.com/reflectometry/scattio/traj"
	"github.com/reflectometry/scattio/util"
)

// Message is what a Sink sends for each point.
type Message struct {
	Traj  string     `json:"traj"`
	Index int        `json:"index"`
	Point traj.Point `json:"point"`
}

// Sink receives points as they are generated.
//
// For example, an implementation could forward points to an MQTT
// broker that an instrument server subscribes to.
type Sink interface {
	// Start initializes the Sink.
	Start(context.Context) error

	// Emit sends one point.
	Emit(context.Context, *Message) error

	// Stop shuts down the Sink.
	Stop(context.Context) error
}

// PublishOptions control Publish.
type PublishOptions struct {
	traj.Options

	// Flatten expands object fields into dotted names.
	Flatten bool
}

// Publish runs the trajectory and sends each point to the Sink as
// it's generated.
//
// The Sink is stopped even if the run fails.
func Publish(ctx context.Context, s Sink, t *traj.Trajectory, opts *PublishOptions) (*traj.Run, error) {
	if opts == nil {
		opts = &PublishOptions{}
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}

	i := 0
	r, err := t.Run(ctx, &opts.Options, func(p traj.Point) error {
		if opts.Flatten {
			p = traj.Bindings(p).Flatten()
		}
		m := &Message{
			Traj:  trajName(p, t),
			Index: i,
			Point: p,
		}
		i++
		util.Logf("sio.Publish %s %d", m.Traj, m.Index)
		return s.Emit(ctx, m)
	})

	if serr := s.Stop(ctx); err == nil {
		err = serr
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func trajName(p traj.Point, t *traj.Trajectory) string {
	if s, is := p["trajName"].Str(); is {
		return s
	}
	return t.DefaultName()
}

// Capture is a Sink that keeps every Message.
type Capture struct {
	Messages []*Message
}

func (c *Capture) Start(ctx context.Context) error {
	return nil
}

func (c *Capture) Emit(ctx context.Context, m *Message) error {
	c.Messages = append(c.Messages, m)
	return nil
}

func (c *Capture) Stop(ctx context.Context) error {
	return nil
}
