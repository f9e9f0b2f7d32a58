// Package docstore exposes key/value document operations on top of a
// pluggable storage backend. Values pass through a value codec on the way
// in and out: the write path encodes to (bytes, format tag), the read path
// hands both back to the codec for decoding.
//
// Usage:
//
//	col := docstore.NewCollection(backend, "travel", "hotels", nil)
//	_, err := col.Upsert(ctx, "hotel-221", map[string]any{"name": "Seaside Inn"}, nil)
//	res, err := col.Get(ctx, "hotel-221", nil)
//	value, err := res.Content()
package docstore

import (
	"context"

	"github.com/shoalstore/shoal-go/internal/errs"
	"github.com/shoalstore/shoal-go/internal/logger"
	"github.com/shoalstore/shoal-go/internal/transcoder"
)

// Document is the stored representation of a value: the encoded body plus
// the format tag the codec produced for it.
type Document struct {
	Body  []byte
	Flags uint32
	CAS   uint64
}

// PutMode selects the existence semantics of a write.
type PutMode int

const (
	// ModeUpsert writes unconditionally.
	ModeUpsert PutMode = iota

	// ModeInsert fails with DocumentExists if the key is present.
	ModeInsert

	// ModeReplace fails with DocumentNotFound if the key is absent.
	ModeReplace
)

// PutOptions qualifies a backend write.
type PutOptions struct {
	Mode PutMode

	// CAS, when nonzero, makes the write conditional on the stored
	// document still carrying this token.
	CAS uint64
}

// Backend is the storage contract collections write through. Backends
// store Document verbatim; they never interpret the body or the flags.
type Backend interface {
	Put(ctx context.Context, bucket, key string, doc Document, opts PutOptions) (uint64, error)
	Get(ctx context.Context, bucket, key string) (Document, error)
	Remove(ctx context.Context, bucket, key string, cas uint64) error
	Ping(ctx context.Context) error
}

// CollectionOptions tunes a Collection.
type CollectionOptions struct {
	// Transcoder is the default codec for this collection's operations.
	// Nil selects the JSON transcoder.
	Transcoder transcoder.Transcoder

	// Logger receives operation events. Nil disables logging.
	Logger *logger.Logger
}

// Collection is a named set of documents inside a bucket.
type Collection struct {
	backend Backend
	bucket  string
	name    string
	tc      transcoder.Transcoder
	log     *logger.Logger
}

// NewCollection binds a collection name to a backend bucket.
func NewCollection(backend Backend, bucket, name string, opts *CollectionOptions) *Collection {
	if opts == nil {
		opts = &CollectionOptions{}
	}
	tc := opts.Transcoder
	if tc == nil {
		tc = transcoder.NewJSON(nil)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Collection{
		backend: backend,
		bucket:  bucket,
		name:    name,
		tc:      tc,
		log: log.Component("docstore").With().
			Str("bucket", bucket).Str("collection", name).Logger(),
	}
}

// MutateOptions qualifies a write operation.
type MutateOptions struct {
	// Transcoder overrides the collection default for this call.
	Transcoder transcoder.Transcoder

	// CAS makes Replace conditional on the stored token.
	CAS uint64
}

// MutationResult reports the outcome of a successful write.
type MutationResult struct {
	CAS uint64
}

// Upsert writes value under key, creating or overwriting it.
func (c *Collection) Upsert(ctx context.Context, key string, value any, opts *MutateOptions) (*MutationResult, error) {
	return c.mutate(ctx, key, value, ModeUpsert, opts)
}

// Insert writes value under key; fails with DocumentExists if present.
func (c *Collection) Insert(ctx context.Context, key string, value any, opts *MutateOptions) (*MutationResult, error) {
	return c.mutate(ctx, key, value, ModeInsert, opts)
}

// Replace overwrites an existing document; fails with DocumentNotFound if
// absent and with CASMismatch if opts.CAS is stale.
func (c *Collection) Replace(ctx context.Context, key string, value any, opts *MutateOptions) (*MutationResult, error) {
	return c.mutate(ctx, key, value, ModeReplace, opts)
}

func (c *Collection) mutate(ctx context.Context, key string, value any, mode PutMode, opts *MutateOptions) (*MutationResult, error) {
	if key == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "document key must not be empty")
	}
	if opts == nil {
		opts = &MutateOptions{}
	}
	tc := opts.Transcoder
	if tc == nil {
		tc = c.tc
	}

	body, flags, err := tc.Encode(value)
	if err != nil {
		return nil, err
	}

	cas, err := c.backend.Put(ctx, c.bucket, c.docKey(key), Document{
		Body:  body,
		Flags: flags,
	}, PutOptions{Mode: mode, CAS: opts.CAS})
	if err != nil {
		return nil, err
	}

	c.log.With().Str("key", key).Uint32("flags", flags).Logger().
		Debug("document written")
	return &MutationResult{CAS: cas}, nil
}

// GetOptions qualifies a read operation.
type GetOptions struct {
	// Transcoder overrides the collection default for this call.
	Transcoder transcoder.Transcoder
}

// GetResult holds a fetched document. Content decodes it through the
// codec the operation was configured with; Raw exposes the stored pair.
type GetResult struct {
	doc Document
	tc  transcoder.Transcoder
}

// Content decodes the document body according to its format tag.
func (r *GetResult) Content() (any, error) {
	return r.tc.Decode(r.doc.Body, r.doc.Flags)
}

// Raw returns the stored body and format tag without decoding.
func (r *GetResult) Raw() ([]byte, uint32) {
	return r.doc.Body, r.doc.Flags
}

// CAS returns the document's current compare-and-swap token.
func (r *GetResult) CAS() uint64 {
	return r.doc.CAS
}

// Get fetches the document under key.
func (c *Collection) Get(ctx context.Context, key string, opts *GetOptions) (*GetResult, error) {
	if key == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "document key must not be empty")
	}
	if opts == nil {
		opts = &GetOptions{}
	}
	tc := opts.Transcoder
	if tc == nil {
		tc = c.tc
	}

	doc, err := c.backend.Get(ctx, c.bucket, c.docKey(key))
	if err != nil {
		return nil, err
	}
	return &GetResult{doc: doc, tc: tc}, nil
}

// RemoveOptions qualifies a delete operation.
type RemoveOptions struct {
	// CAS makes the delete conditional on the stored token.
	CAS uint64
}

// Remove deletes the document under key.
func (c *Collection) Remove(ctx context.Context, key string, opts *RemoveOptions) error {
	if key == "" {
		return errs.New(errs.ErrKindInvalidInput, "document key must not be empty")
	}
	if opts == nil {
		opts = &RemoveOptions{}
	}

	if err := c.backend.Remove(ctx, c.bucket, c.docKey(key), opts.CAS); err != nil {
		return err
	}

	c.log.With().Str("key", key).Logger().Debug("document removed")
	return nil
}

// docKey namespaces a document key with the collection name.
func (c *Collection) docKey(key string) string {
	return c.name + "/" + key
}
