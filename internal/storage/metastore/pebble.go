package metastore

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
)

// PebbleBackend stores metadata in a PebbleDB directory.
type PebbleBackend struct {
	db     *pebble.DB
	path   string
	closed atomic.Bool
}

// OpenPebble opens or creates the database at path.
func OpenPebble(path string) (*PebbleBackend, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store %s: %w", path, err)
	}
	return &PebbleBackend{db: db, path: path}, nil
}

func (p *PebbleBackend) Name() string { return "pebble" }

func (p *PebbleBackend) Get(key []byte) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	val, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// The slice is only valid until closer is closed.
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (p *PebbleBackend) Set(key, value []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.db.Set(key, value, pebble.Sync)
}

func (p *PebbleBackend) DeletePrefix(prefix []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.db.DeleteRange(prefix, prefixEnd(prefix), pebble.Sync)
}

func (p *PebbleBackend) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.db.Close()
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
