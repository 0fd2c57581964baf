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

package record

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
)

// JSONStore is a primitive Recorder that writes JSON lines: the
// Header on the first line and then one Record per line.
//
// Not glamorous or efficient.
type JSONStore struct {
	// Filename is the output file.  If empty, W is used.
	Filename string

	// W is the output when Filename is empty.
	W io.Writer

	f   *os.File
	out *bufio.Writer
	enc *json.Encoder
}

func NewJSONStore(filename string) *JSONStore {
	return &JSONStore{
		Filename: filename,
	}
}

// Open creates the output file if there is one and writes the
// Header.
func (s *JSONStore) Open(ctx context.Context, h *Header) error {
	w := s.W
	if s.Filename != "" {
		f, err := os.Create(s.Filename)
		if err != nil {
			return err
		}
		s.f = f
		w = f
	}
	if w == nil {
		return errors.New("JSONStore has no output")
	}
	s.out = bufio.NewWriter(w)
	s.enc = json.NewEncoder(s.out)
	return s.enc.Encode(h)
}

func (s *JSONStore) Record(ctx context.Context, r *Record) error {
	if s.enc == nil {
		return errors.New("JSONStore isn't open")
	}
	return s.enc.Encode(r)
}

// Close flushes the output and closes the file if there is one.
func (s *JSONStore) Close(ctx context.Context) error {
	if s.out == nil {
		return nil
	}
	err := s.out.Flush()
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
		s.f = nil
	}
	s.out, s.enc = nil, nil
	return err
}

// ReadJSON reads what a JSONStore wrote.
func ReadJSON(r io.Reader) (*Header, []*Record, error) {
	dec := json.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, nil, err
	}
	acc := make([]*Record, 0, h.Count)
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, err
		}
		acc = append(acc, &rec)
	}
	return &h, acc, nil
}
