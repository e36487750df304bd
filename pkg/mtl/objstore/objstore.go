// Package objstore implements the content-addressed object store: a loose
// fan-out file layer plus a packed embedded key-value layer, behind one
// unified read path, with a small hot-object cache in front of both.
package objstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/internal/logging"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

// compressThreshold is the payload size above which packed values are
// zstd-compressed before being written to the embedded store. Small values
// cost more in compressor framing overhead than they save.
const compressThreshold = 256

// Store is the unified loose+packed object store.
type Store struct {
	root string // <repo>/.mtl

	packed *pebble.DB
	hot    *lru.Cache[hash.Hash, []byte]

	enc *zstd.Encoder
	dec *zstd.Decoder

	log *slog.Logger
}

// Option configures a Store at Open time.
type Option func(*Store)

// WithLogger overrides the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithHotCacheSize overrides the default hot-object LRU capacity.
func WithHotCacheSize(n int) Option {
	return func(s *Store) {
		c, err := lru.New[hash.Hash, []byte](n)
		if err == nil {
			s.hot = c
		}
	}
}

// Open opens (creating if absent) the object store rooted at repoDir
// (normally <root>/.mtl).
func Open(repoDir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(objectsDir(repoDir), 0o755); err != nil {
		return nil, fmt.Errorf("objstore: create objects dir: %w", err)
	}

	packDir := filepath.Join(repoDir, "pack", "packed.db")
	if err := os.MkdirAll(filepath.Dir(packDir), 0o755); err != nil {
		return nil, fmt.Errorf("objstore: create pack dir: %w", err)
	}
	db, err := pebble.Open(packDir, packedOptions())
	if err != nil {
		return nil, fmt.Errorf("objstore: open packed store: %w", err)
	}

	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	hotCache, _ := lru.New[hash.Hash, []byte](1024)

	s := &Store{
		root:   repoDir,
		packed: db,
		hot:    hotCache,
		enc:    enc,
		dec:    dec,
		log:    logging.Component("objstore"),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// packedOptions tunes pebble for a write-heavy, append-mostly workload:
// objects are written once and read many times, so compactions are allowed
// to lag rather than stall writers.
func packedOptions() *pebble.Options {
	return &pebble.Options{
		MemTableSize:                64 << 20,
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
		LBaseMaxBytes:               64 << 20,
		MaxConcurrentCompactions:    func() int { return 3 },
		DisableWAL:                  false,
	}
}

// Close releases the packed store handle.
func (s *Store) Close() error {
	if s.packed == nil {
		return nil
	}
	return s.packed.Close()
}

func objectsDir(repoDir string) string {
	return filepath.Join(repoDir, "objects")
}

// loosePath returns the fan-out path <repoDir>/objects/<2-hex>/<14-hex>.
func loosePath(repoDir string, id hash.Hash) string {
	s := id.String()
	return filepath.Join(objectsDir(repoDir), s[:2], s[2:])
}

// Write computes the content id, writes it to the loose layer if it is
// absent from both layers (idempotent, via a temp-file-then-rename so no
// reader ever observes a partial write), and returns the id.
func (s *Store) Write(contents []byte) (hash.Hash, error) {
	id := hash.FromContents(contents)
	if ok, err := s.Exists(id); err == nil && ok {
		return id, nil
	}
	if err := s.writeLoose(id, contents); err != nil {
		return hash.Hash(0), err
	}
	s.hot.Add(id, contents)
	return id, nil
}

func (s *Store) writeLoose(id hash.Hash, contents []byte) error {
	path := loosePath(s.root, id)
	if _, err := os.Stat(path); err == nil {
		return nil // idempotent: identical content already present
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("objstore: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("objstore: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("objstore: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("objstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("objstore: rename temp: %w", err)
	}
	return nil
}

// Read returns the bytes for id, consulting the hot cache, then the loose
// layer, then the packed layer, in that order.
func (s *Store) Read(id hash.Hash) ([]byte, error) {
	if v, ok := s.hot.Get(id); ok {
		return v, nil
	}

	path := loosePath(s.root, id)
	if b, err := os.ReadFile(path); err == nil {
		s.hot.Add(id, b)
		return b, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("objstore: read loose %s: %w", id, err)
	}

	v, closer, err := s.packed.Get(id.Bytes())
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("objstore: %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("objstore: read packed %s: %w", id, err)
	}
	defer closer.Close()

	data, err := s.decodeValue(v)
	if err != nil {
		return nil, err
	}
	s.hot.Add(id, data)
	return data, nil
}

// Exists reports whether id is present in either layer.
func (s *Store) Exists(id hash.Hash) (bool, error) {
	if _, ok := s.hot.Get(id); ok {
		return true, nil
	}
	if _, err := os.Stat(loosePath(s.root, id)); err == nil {
		return true, nil
	}
	_, closer, err := s.packed.Get(id.Bytes())
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}

// ListIDs returns the union of all ids present in the loose and packed
// layers.
func (s *Store) ListIDs() ([]hash.Hash, error) {
	seen := make(map[hash.Hash]struct{})

	entries, err := os.ReadDir(objectsDir(s.root))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("objstore: list objects dir: %w", err)
	}
	for _, dirEnt := range entries {
		if !dirEnt.IsDir() {
			continue
		}
		prefix := dirEnt.Name()
		sub, err := os.ReadDir(filepath.Join(objectsDir(s.root), prefix))
		if err != nil {
			s.log.Warn("list loose subdir failed", "dir", prefix, "err", err)
			continue
		}
		for _, f := range sub {
			if f.IsDir() {
				s.log.Warn("unexpected directory in object fan-out", "path", filepath.Join(prefix, f.Name()))
				continue
			}
			if len(f.Name()) < 2 || f.Name()[0] == '.' {
				continue // temp file left over from a crashed write
			}
			id, err := hash.FromHex(prefix + f.Name())
			if err != nil {
				s.log.Warn("non-id file in object store", "path", filepath.Join(prefix, f.Name()))
				continue
			}
			seen[id] = struct{}{}
		}
	}

	iter, err := s.packed.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("objstore: packed iterator: %w", err)
	}
	defer iter.Close()
	for valid := iter.First(); valid; valid = iter.Next() {
		seen[hash.FromBytes(iter.Key())] = struct{}{}
	}

	ids := make([]hash.Hash, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

// WritePacked inserts contents directly into the packed layer under id,
// used by the pack rebuild step. It does not touch the loose layer.
func (s *Store) WritePacked(id hash.Hash, contents []byte) error {
	value := s.encodeValue(contents)
	return s.packed.Set(id.Bytes(), value, pebble.Sync)
}

// DeleteLoose removes the loose file for id, if present, and drops id from
// the hot cache. Used by GC and pack.
func (s *Store) DeleteLoose(id hash.Hash) error {
	s.hot.Remove(id)
	err := os.Remove(loosePath(s.root, id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("objstore: delete loose %s: %w", id, err)
	}
	return nil
}

// LooseExists reports whether id has a loose file, independent of the
// packed layer or hot cache. Used by pack/GC bookkeeping.
func (s *Store) LooseExists(id hash.Hash) bool {
	_, err := os.Stat(loosePath(s.root, id))
	return err == nil
}

func (s *Store) encodeValue(v []byte) []byte {
	if len(v) < compressThreshold {
		return append([]byte{0}, v...)
	}
	compressed := s.enc.EncodeAll(v, make([]byte, 0, len(v)))
	if len(compressed)+1 >= len(v) {
		return append([]byte{0}, v...)
	}
	return append([]byte{1}, compressed...)
}

func (s *Store) decodeValue(v []byte) ([]byte, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("objstore: empty packed value: %w", errs.ErrCorruption)
	}
	tag, payload := v[0], v[1:]
	switch tag {
	case 0:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case 1:
		out, err := s.dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("objstore: decompress packed value: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("objstore: unknown value tag %d: %w", tag, errs.ErrCorruption)
	}
}
