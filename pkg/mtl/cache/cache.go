// Package cache implements the metadata cache: path -> (mtime, size,
// object id), backed by an embedded key-value store with an asynchronous
// batched writer decoupled from readers, draining pending entries on a
// timer and on close.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/imishinist/mtl-go/internal/logging"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

// Entry is one cache record: the file's last observed (mtime, size) and the
// object id that was computed for it at that point.
type Entry struct {
	MtimeMicros uint64
	Size        uint64
	ObjectID    hash.Hash
}

// EntrySize is the fixed on-wire width of a serialized Entry: 16 bytes for
// mtime (stored as two 64-bit little-endian words to match the 128-bit
// field width the original design reserves), 8 bytes size, 8 bytes id.
const EntrySize = 32

func (e Entry) marshal() []byte {
	b := make([]byte, EntrySize)
	putU64LE(b[0:8], e.MtimeMicros)
	putU64LE(b[8:16], 0) // high word of the 128-bit mtime field, unused on Go's time resolution
	putU64LE(b[16:24], e.Size)
	copy(b[24:32], e.ObjectID.Bytes())
	return b
}

func unmarshalEntry(b []byte) (Entry, error) {
	if len(b) != EntrySize {
		return Entry{}, fmt.Errorf("cache: wrong entry width %d", len(b))
	}
	return Entry{
		MtimeMicros: getU64LE(b[0:8]),
		Size:        getU64LE(b[16:24]),
		ObjectID:    hash.FromBytes(b[24:32]),
	}, nil
}

func putU64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}

func getU64LE(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

type writeRequest struct {
	key   []byte
	value Entry
	shut  bool
}

// Cache is the async-batched metadata cache.
type Cache struct {
	db      *pebble.DB
	repoDir string

	requests chan writeRequest
	done     chan struct{}
	wg       sync.WaitGroup

	flushInterval time.Duration
	flushSize     int

	log *slog.Logger
}

// Options configures the flush policy of the background writer.
type Options struct {
	FlushInterval time.Duration
	FlushSize     int
}

// Open opens (creating if absent) the metadata cache at <repoDir>/cache/cache.db
// and starts its background writer goroutine.
func Open(repoDir string, opts Options) (*Cache, error) {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	if opts.FlushSize <= 0 {
		opts.FlushSize = 256
	}

	dbPath := filepath.Join(repoDir, "cache", "cache.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("cache: mkdir: %w", err)
	}
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}

	c := &Cache{
		db:            db,
		repoDir:       repoDir,
		requests:      make(chan writeRequest, 1024),
		done:          make(chan struct{}),
		flushInterval: opts.FlushInterval,
		flushSize:     opts.FlushSize,
		log:           logging.Component("cache"),
	}
	c.wg.Add(1)
	go c.writerLoop()
	return c, nil
}

// Dir returns the repository directory this cache was opened against, so
// callers can reopen a fresh handle onto the same on-disk store.
func (c *Cache) Dir() string {
	return c.repoDir
}

// Get returns the cached entry for path, if any. A pure, consistent read:
// it may miss a very recent unflushed Insert, which is an accepted
// trade-off for an advisory cache.
func (c *Cache) Get(path string) (Entry, bool, error) {
	v, closer, err := c.db.Get([]byte(path))
	if err != nil {
		if err == pebble.ErrNotFound {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("cache: get %s: %w", path, err)
	}
	defer closer.Close()
	e, err := unmarshalEntry(v)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Insert enqueues a write; it never blocks the caller beyond a full buffer,
// and even then falls back to writing synchronously so no insert is lost
// while the cache is open.
func (c *Cache) Insert(path string, value Entry) {
	req := writeRequest{key: []byte(path), value: value}
	select {
	case <-c.done:
		c.writeSync(req)
	case c.requests <- req:
	default:
		c.writeSync(req)
	}
}

func (c *Cache) writeSync(req writeRequest) {
	if err := c.db.Set(req.key, req.value.marshal(), pebble.NoSync); err != nil {
		c.log.Error("synchronous cache write failed", "err", err)
	}
}

// Close flushes any pending writes and joins the background writer.
func (c *Cache) Close() error {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.wg.Wait()
	return c.db.Close()
}

func (c *Cache) writerLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	buffer := make([]writeRequest, 0, c.flushSize)
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		batch := c.db.NewBatch()
		for _, req := range buffer {
			if err := batch.Set(req.key, req.value.marshal(), nil); err != nil {
				c.log.Error("cache batch set failed", "err", err)
			}
		}
		if err := batch.Commit(pebble.NoSync); err != nil {
			c.log.Error("cache batch commit failed", "err", err)
		}
		batch.Close()
		buffer = buffer[:0]
	}

	for {
		select {
		case req, ok := <-c.requests:
			if !ok {
				flush()
				return
			}
			buffer = append(buffer, req)
			if len(buffer) >= c.flushSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-c.done:
			// Drain whatever is already queued, then exit.
			for {
				select {
				case req := <-c.requests:
					buffer = append(buffer, req)
				default:
					flush()
					return
				}
			}
		}
	}
}
