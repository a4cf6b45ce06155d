package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofscope/internal/objectstore"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("not really a jpeg")

	require.NoError(t, store.Put(ctx, "photos", "prop-1/roof.jpg", "image/jpeg", data))

	got, err := store.Get(ctx, "photos", "prop-1/roof.jpg")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestGetMissing(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "photos", "nope.jpg")
	assert.ErrorIs(t, err, objectstore.ErrNotFound)
}

func TestTraversalRejected(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "photos", "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, objectstore.ErrNotFound)
}

func TestPutOverwrites(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "reports", "r.pdf", "application/pdf", []byte("v1")))
	require.NoError(t, store.Put(ctx, "reports", "r.pdf", "application/pdf", []byte("v2")))

	got, err := store.Get(ctx, "reports", "r.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}
