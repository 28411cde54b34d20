// Package dedupe tracks in-flight recognition uploads so identical image sets
// are answered by the job already working on them.
package dedupe

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"sync/atomic"
)

// Deduper maps content fingerprints to the job that owns them.
type Deduper interface {
	// Claim atomically records fp as owned by jobID. When fp is already
	// claimed it returns the current owner and true and records nothing.
	Claim(ctx context.Context, fp, jobID string) (owner string, dup bool)

	// Release forgets fp so the same content can be submitted again, e.g.
	// after the owning job failed or was rejected by the queue.
	Release(ctx context.Context, fp string)

	// Owner returns the job currently holding fp.
	Owner(ctx context.Context, fp string) (string, bool)

	Size() int64
}

type entry struct {
	fp    string
	owner string
}

// inMemoryDeduper keeps claims in insertion order. When bounded, the oldest
// claim is evicted to make room for a new one.
type inMemoryDeduper struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List // front = newest
	maxSize int        // <= 0 means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 1024,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.claims = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, fp, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[fp]; ok {
		return el.Value.(*entry).owner, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.claims[fp] = d.order.PushFront(&entry{fp: fp, owner: jobID})
	d.size.Add(1)
	return jobID, false
}

func (d *inMemoryDeduper) Release(_ context.Context, fp string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[fp]; ok {
		d.order.Remove(el)
		delete(d.claims, fp)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Owner(_ context.Context, fp string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[fp]; ok {
		return el.Value.(*entry).owner, true
	}
	return "", false
}

// evictOldest drops the back of the list. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.claims, el.Value.(*entry).fp)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// Fingerprint hashes an ordered set of blobs. Each blob is length-prefixed so
// different splits of the same bytes do not collide.
func Fingerprint(parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
