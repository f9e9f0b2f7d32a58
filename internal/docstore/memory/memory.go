// Package memory provides an in-process docstore.Backend. It backs tests
// and examples; nothing survives process exit.
package memory

import (
	"context"
	"sync"

	"github.com/shoalstore/shoal-go/internal/docstore"
	"github.com/shoalstore/shoal-go/internal/errs"
)

// Backend is a docstore.Backend over an in-memory map.
// It is safe for concurrent use by multiple goroutines.
type Backend struct {
	mu      sync.RWMutex
	buckets map[string]map[string]docstore.Document
	casSeq  uint64
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{buckets: make(map[string]map[string]docstore.Document)}
}

// Put stores doc under bucket/key according to the mode and CAS rules.
func (b *Backend) Put(ctx context.Context, bucket, key string, doc docstore.Document, opts docstore.PutOptions) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	docs := b.buckets[bucket]
	if docs == nil {
		docs = make(map[string]docstore.Document)
		b.buckets[bucket] = docs
	}

	existing, exists := docs[key]
	switch opts.Mode {
	case docstore.ModeInsert:
		if exists {
			return 0, errs.Newf(errs.ErrKindDocumentExists, "document %s already exists", key)
		}
	case docstore.ModeReplace:
		if !exists {
			return 0, errs.Newf(errs.ErrKindDocumentNotFound, "document %s not found", key)
		}
	}

	if opts.CAS != 0 && exists && existing.CAS != opts.CAS {
		return 0, errs.Newf(errs.ErrKindCASMismatch, "stale cas for document %s", key)
	}

	b.casSeq++
	doc.CAS = b.casSeq
	docs[key] = doc
	return doc.CAS, nil
}

// Get fetches the document under bucket/key.
func (b *Backend) Get(ctx context.Context, bucket, key string) (docstore.Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	doc, ok := b.buckets[bucket][key]
	if !ok {
		return docstore.Document{}, errs.Newf(errs.ErrKindDocumentNotFound, "document %s not found", key)
	}
	return doc, nil
}

// Remove deletes the document under bucket/key, honoring a nonzero CAS.
func (b *Backend) Remove(ctx context.Context, bucket, key string, cas uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, ok := b.buckets[bucket][key]
	if !ok {
		return errs.Newf(errs.ErrKindDocumentNotFound, "document %s not found", key)
	}
	if cas != 0 && doc.CAS != cas {
		return errs.Newf(errs.ErrKindCASMismatch, "stale cas for document %s", key)
	}

	delete(b.buckets[bucket], key)
	return nil
}

// Ping always succeeds.
func (b *Backend) Ping(ctx context.Context) error {
	return nil
}
