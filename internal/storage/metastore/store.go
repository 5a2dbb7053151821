package metastore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"strings"
)

const (
	formatRaw byte = 0
	formatLZ4 byte = 1

	// format + uncompressed length
	headerSize = 1 + 4
)

// Store keeps one metadata blob per chain, keyed by runtime spec version.
// Saving a new spec version drops the previous one.
type Store struct {
	backend    Backend
	compressor Compressor
	logger     *log.Logger
}

// New creates a store on backend. A nil compressor stores blobs as is.
func New(backend Backend, compressor Compressor, logger *log.Logger) *Store {
	if compressor == nil {
		compressor = NoCompressor{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{backend: backend, compressor: compressor, logger: logger}
}

func chainPrefix(chain string) []byte {
	return []byte("metadata/" + strings.ToLower(chain) + "/")
}

func storeKey(chain string, specVersion uint32) []byte {
	return binary.BigEndian.AppendUint32(chainPrefix(chain), specVersion)
}

// Load returns the metadata stored for chain at specVersion.
func (s *Store) Load(chain string, specVersion uint32) ([]byte, bool, error) {
	value, err := s.backend.Get(storeKey(chain, specVersion))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	raw, err := s.decode(value)
	if err != nil {
		return nil, false, fmt.Errorf("metadata of %s spec %d: %w", chain, specVersion, err)
	}
	return raw, true, nil
}

// Save replaces the metadata stored for chain.
func (s *Store) Save(chain string, specVersion uint32, raw []byte) error {
	value, err := s.encode(raw)
	if err != nil {
		return err
	}
	if err := s.backend.DeletePrefix(chainPrefix(chain)); err != nil {
		return err
	}
	if err := s.backend.Set(storeKey(chain, specVersion), value); err != nil {
		return err
	}
	s.logger.Printf("Stored metadata of %s spec %d (%d bytes, %d on disk)", chain, specVersion, len(raw), len(value))
	return nil
}

func (s *Store) encode(raw []byte) ([]byte, error) {
	compressed, err := s.compressor.Compress(raw)
	if err != nil {
		return nil, err
	}
	format, payload := s.compressor.Format(), compressed
	if compressed == nil {
		format, payload = formatRaw, raw
	}
	out := make([]byte, headerSize, headerSize+len(payload))
	out[0] = format
	binary.LittleEndian.PutUint32(out[1:], uint32(len(raw)))
	return append(out, payload...), nil
}

func (s *Store) decode(value []byte) ([]byte, error) {
	if len(value) < headerSize {
		return nil, fmt.Errorf("truncated entry of %d bytes", len(value))
	}
	size := int(binary.LittleEndian.Uint32(value[1:headerSize]))
	payload := value[headerSize:]
	if value[0] == formatRaw {
		if len(payload) != size {
			return nil, fmt.Errorf("entry holds %d bytes, header says %d", len(payload), size)
		}
		return payload, nil
	}
	c, ok := byFormat(value[0])
	if !ok {
		return nil, fmt.Errorf("unknown entry format %d", value[0])
	}
	return c.Decompress(payload, size)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
