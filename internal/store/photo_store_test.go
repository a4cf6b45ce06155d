package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofscope/internal/domain"
)

func TestPhotoStoreCreateAndGet(t *testing.T) {
	photos := NewPhotoStore(openTestDB(t))
	ctx := context.Background()

	err := photos.Create(ctx, &domain.PhotoRecord{
		PhotoID:    "p1",
		PropertyID: "r1",
		Bucket:     "roofscope-photos",
		StorageKey: "properties/r1/img.png",
		Filename:   "img.png",
	})
	require.NoError(t, err)

	rec, err := photos.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "r1", rec.PropertyID)
	assert.Equal(t, "roofscope-photos", rec.Bucket)
	assert.Equal(t, "properties/r1/img.png", rec.StorageKey)
	assert.Equal(t, "img.png", rec.Filename)
	assert.False(t, rec.UploadedAt.IsZero())
}

func TestPhotoStoreGetByIDMissing(t *testing.T) {
	photos := NewPhotoStore(openTestDB(t))

	rec, err := photos.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPhotoStoreListByPropertyID(t *testing.T) {
	photos := NewPhotoStore(openTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		require.NoError(t, photos.Create(ctx, &domain.PhotoRecord{
			PhotoID:    id,
			PropertyID: "r1",
			Bucket:     "b",
			StorageKey: id + ".jpg",
		}))
	}
	require.NoError(t, photos.Create(ctx, &domain.PhotoRecord{
		PhotoID:    "p9",
		PropertyID: "r2",
		Bucket:     "b",
		StorageKey: "p9.jpg",
	}))

	list, err := photos.ListByPropertyID(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
