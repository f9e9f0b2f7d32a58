package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoalstore/shoal-go/internal/docstore"
	"github.com/shoalstore/shoal-go/internal/errs"
)

func TestBackend_PutGetRemove(t *testing.T) {
	ctx := context.Background()
	b := New()

	doc := docstore.Document{Body: []byte("body"), Flags: 42}

	cas, err := b.Put(ctx, "bucket", "key", doc, docstore.PutOptions{})
	require.NoError(t, err)
	assert.NotZero(t, cas)

	got, err := b.Get(ctx, "bucket", "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), got.Body)
	assert.Equal(t, uint32(42), got.Flags)
	assert.Equal(t, cas, got.CAS)

	require.NoError(t, b.Remove(ctx, "bucket", "key", 0))

	_, err = b.Get(ctx, "bucket", "key")
	assert.True(t, errs.IsDocumentNotFound(err))
}

func TestBackend_CASAdvancesPerWrite(t *testing.T) {
	ctx := context.Background()
	b := New()

	first, err := b.Put(ctx, "bucket", "key", docstore.Document{}, docstore.PutOptions{})
	require.NoError(t, err)

	second, err := b.Put(ctx, "bucket", "key", docstore.Document{}, docstore.PutOptions{})
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestBackend_ConditionalWrites(t *testing.T) {
	ctx := context.Background()
	b := New()

	cas, err := b.Put(ctx, "bucket", "key", docstore.Document{}, docstore.PutOptions{})
	require.NoError(t, err)

	_, err = b.Put(ctx, "bucket", "key", docstore.Document{}, docstore.PutOptions{
		Mode: docstore.ModeReplace,
		CAS:  cas + 100,
	})
	assert.True(t, errs.IsCASMismatch(err))

	err = b.Remove(ctx, "bucket", "key", cas+100)
	assert.True(t, errs.IsCASMismatch(err))
}

func TestBackend_BucketsAreIsolated(t *testing.T) {
	ctx := context.Background()
	b := New()

	_, err := b.Put(ctx, "one", "key", docstore.Document{Body: []byte("1")}, docstore.PutOptions{})
	require.NoError(t, err)

	_, err = b.Get(ctx, "two", "key")
	assert.True(t, errs.IsDocumentNotFound(err))
}

func TestBackend_Ping(t *testing.T) {
	assert.NoError(t, New().Ping(context.Background()))
}
