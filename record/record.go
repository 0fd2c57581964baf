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

// Package record persists the points of a trajectory run.
//
// A Recorder receives a Header once, then one Record per point, and
// then Close.  The Policy decides which fields of a point get
// written.
package record

import (
	"context"

	"github.com/reflectometry/scattio/traj"
	"github.com/reflectometry/scattio/util"
)

// Header describes a run.  It's given to a Recorder before any
// Records.
type Header struct {
	Traj  string `json:"traj"`
	Descr string `json:"descr,omitempty"`

	// Constants are the flattened values captured after init.
	Constants traj.Bindings `json:"constants"`

	// Count is the number of points in the run.
	Count int `json:"count"`
}

// Record is one point as persisted.
type Record struct {
	Traj  string `json:"traj"`
	Index int    `json:"index"`

	// Fields are the flattened fields selected by the Policy.
	Fields traj.Bindings `json:"fields"`
}

// Recorder is the boundary to whatever stores points.
type Recorder interface {
	Open(ctx context.Context, h *Header) error
	Record(ctx context.Context, r *Record) error
	Close(ctx context.Context) error
}

// NewHeader makes the Header for a Run.
func NewHeader(r *traj.Run) *Header {
	return &Header{
		Traj:      r.TrajName,
		Descr:     r.Descr,
		Constants: r.Constants.Flatten(),
		Count:     r.Count,
	}
}

// Write sends all of the points of a Result to the Recorder.
//
// The Recorder is closed even if a Record fails.
func Write(ctx context.Context, rec Recorder, res *traj.Result) error {
	pol := NewPolicy(&res.Run)
	h := NewHeader(&res.Run)

	util.Logf("record.Write %s %d points", h.Traj, len(res.Points))

	if err := rec.Open(ctx, h); err != nil {
		return err
	}

	var err error
	for i, p := range res.Points {
		if err = ctx.Err(); err != nil {
			break
		}
		r := &Record{
			Traj:   h.Traj,
			Index:  i,
			Fields: pol.Fields(p),
		}
		if err = rec.Record(ctx, r); err != nil {
			break
		}
	}

	if cerr := rec.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

// NoopRecorder discards everything.
type NoopRecorder struct {
}

func (r *NoopRecorder) Open(ctx context.Context, h *Header) error {
	return nil
}

func (r *NoopRecorder) Record(ctx context.Context, rec *Record) error {
	return nil
}

func (r *NoopRecorder) Close(ctx context.Context) error {
	return nil
}
