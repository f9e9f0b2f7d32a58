// Package minio provides a MinIO-backed docstore.Backend. The encoded
// document body is stored as the object content and the format tag rides
// along as user metadata, so differently-coded documents can share a
// bucket and still decode correctly.
//
// Usage:
//
//	cfg := docstore.DefaultBackendConfig("localhost:9000", "minioadmin", "minioadmin")
//	backend, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	col := docstore.NewCollection(backend, "travel", "hotels", nil)
package minio

import (
	"bytes"
	"context"
	"io"
	"strconv"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shoalstore/shoal-go/internal/docstore"
	"github.com/shoalstore/shoal-go/internal/errs"
)

// metaFlags is the user-metadata key carrying the document's format tag.
const metaFlags = "Flags"

// Driver is a MinIO implementation of docstore.Backend.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
}

// New connects to MinIO using the provided config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *docstore.BackendConfig) (*Driver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	d := &Driver{client: client}

	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// --- docstore.Backend implementation ---

// Ping verifies the server is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Put stores the document as an object. Object storage offers no atomic
// compare-and-swap, so conditional writes are rejected, and the
// Insert/Replace existence checks are best-effort stat-then-write.
func (d *Driver) Put(ctx context.Context, bucket, key string, doc docstore.Document, opts docstore.PutOptions) (uint64, error) {
	if opts.CAS != 0 {
		return 0, errs.New(errs.ErrKindInvalidInput,
			"object-storage backend does not support cas-conditional writes")
	}

	if opts.Mode != docstore.ModeUpsert {
		_, statErr := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
		exists := statErr == nil
		if opts.Mode == docstore.ModeInsert && exists {
			return 0, errs.Newf(errs.ErrKindDocumentExists, "document %s already exists", key)
		}
		if opts.Mode == docstore.ModeReplace {
			if statErr != nil {
				if mapped := mapError(statErr, "replace target missing"); errs.IsDocumentNotFound(mapped) {
					return 0, mapped
				}
				return 0, mapError(statErr, "failed to stat document")
			}
		}
	}

	_, err := d.client.PutObject(ctx, bucket, key,
		bytes.NewReader(doc.Body), int64(len(doc.Body)),
		miniogo.PutObjectOptions{
			ContentType: "application/octet-stream",
			UserMetadata: map[string]string{
				metaFlags: strconv.FormatUint(uint64(doc.Flags), 10),
			},
		})
	if err != nil {
		return 0, mapError(err, "failed to put document")
	}
	return 0, nil
}

// Get fetches the object body and recovers the format tag from metadata.
// Objects written by other tools carry no tag and surface as flags 0,
// which the codecs resolve to the raw-binary format.
func (d *Driver) Get(ctx context.Context, bucket, key string) (docstore.Document, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return docstore.Document{}, mapError(err, "failed to get document")
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return docstore.Document{}, mapError(err, "failed to stat document")
	}

	body, err := io.ReadAll(obj)
	if err != nil {
		return docstore.Document{}, mapError(err, "failed to read document body")
	}

	var flags uint32
	if raw, ok := stat.UserMetadata[metaFlags]; ok {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return docstore.Document{}, errs.Wrap(errs.ErrKindInternal,
				"stored format tag is not a number", err)
		}
		flags = uint32(parsed)
	}

	return docstore.Document{Body: body, Flags: flags}, nil
}

// Remove deletes the object. CAS-conditional deletes are rejected for the
// same reason as conditional writes.
func (d *Driver) Remove(ctx context.Context, bucket, key string, cas uint64) error {
	if cas != 0 {
		return errs.New(errs.ErrKindInvalidInput,
			"object-storage backend does not support cas-conditional deletes")
	}

	// RemoveObject succeeds on missing keys; stat first so callers get
	// the same DocumentNotFound the other backends report.
	if _, err := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{}); err != nil {
		return mapError(err, "failed to stat document")
	}

	if err := d.client.RemoveObject(ctx, bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return mapError(err, "failed to remove document")
	}
	return nil
}
