// Package bolt is a record.Recorder backed by a bbolt file.
//
// Each trajectory gets its own bucket, which holds the header and a
// nested bucket of points keyed by big-endian point index.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"github.com/reflectometry/scattio/record"
	"github.com/reflectometry/scattio/traj"
	"github.com/reflectometry/scattio/util"

	bolt "go.etcd.io/bbolt"
)

var (
	headerKey    = []byte("header")
	pointsBucket = []byte("points")

	// DefaultBatchSize is the number of points written per
	// transaction when Storage.BatchSize is zero.
	DefaultBatchSize = 512

	ErrNotOpen  = errors.New("storage isn't open")
	ErrNotFound = errors.New("trajectory not found")
)

type Storage struct {
	Debug     bool
	BatchSize int

	filename string
	db       *bolt.DB
	traj     []byte
	pending  []*record.Record
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func open(filename string, readOnly bool) (*bolt.DB, error) {
	opts := &bolt.Options{
		Timeout:  time.Second,
		ReadOnly: readOnly,
	}
	return bolt.Open(filename, 0644, opts)
}

func (s *Storage) logf(format string, args ...interface{}) {
	util.Debugf(s.Debug, "BoltDB Storage.", format, args...)
}

// Open opens the file and replaces any previous bucket for the
// trajectory.
func (s *Storage) Open(ctx context.Context, h *record.Header) error {
	s.logf("Open %s %d points", h.Traj, h.Count)

	db, err := open(s.filename, false)
	if err != nil {
		return err
	}
	js, err := json.Marshal(h)
	if err != nil {
		db.Close()
		return err
	}
	name := []byte(h.Traj)
	err = db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(name)
		if err != nil {
			return err
		}
		if _, err = b.CreateBucket(pointsBucket); err != nil {
			return err
		}
		return b.Put(headerKey, js)
	})
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.traj = name
	s.pending = make([]*record.Record, 0, s.batchSize())
	return nil
}

func (s *Storage) batchSize() int {
	if s.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

func (s *Storage) Record(ctx context.Context, r *record.Record) error {
	if s.db == nil {
		return ErrNotOpen
	}
	s.pending = append(s.pending, r)
	if len(s.pending) < s.batchSize() {
		return nil
	}
	return s.flush()
}

func key(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

func (s *Storage) flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	s.logf("flush %s %d points", s.traj, len(s.pending))

	vals := make([][]byte, len(s.pending))
	for i, r := range s.pending {
		// The bucket and key already say which point this is.
		js, err := json.Marshal(r.Fields)
		if err != nil {
			return err
		}
		vals[i] = js
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.traj)
		if b == nil {
			return ErrNotFound
		}
		ps := b.Bucket(pointsBucket)
		for i, r := range s.pending {
			if err := ps.Put(key(r.Index), vals[i]); err != nil {
				return err
			}
		}
		return nil
	})
	s.pending = s.pending[:0]
	return err
}

// Close writes any pending points and closes the file.
func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.flush()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	s.db = nil
	return err
}

// Trajectories returns the names of the stored trajectories.
func Trajectories(filename string) ([]string, error) {
	db, err := open(filename, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var acc []string
	err = db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	return acc, err
}

// Read returns the stored header and points of a trajectory.
func Read(ctx context.Context, filename, trajName string) (*record.Header, []*record.Record, error) {
	db, err := open(filename, true)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	var (
		h   record.Header
		acc []*record.Record
	)
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(trajName))
		if b == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(b.Get(headerKey), &h); err != nil {
			return err
		}
		acc = make([]*record.Record, 0, h.Count)
		c := b.Bucket(pointsBucket).Cursor()
		for k, js := c.First(); k != nil; k, js = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			fields := traj.NewBindings()
			if err := json.Unmarshal(js, &fields); err != nil {
				return err
			}
			acc = append(acc, &record.Record{
				Traj:   trajName,
				Index:  int(binary.BigEndian.Uint64(k)),
				Fields: fields,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &h, acc, nil
}
