package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutListDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	url, err := store.Put(ctx, "institutions/x/primary/a.jpg", "image/jpeg", []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "memory://institutions/x/primary/a.jpg", url)

	_, err = store.Put(ctx, "institutions/x/logo/b.jpg", "image/jpeg", []byte{2})
	require.NoError(t, err)
	_, err = store.Put(ctx, "scholarships/y/primary/c.jpg", "image/jpeg", []byte{3})
	require.NoError(t, err)

	keys, err := store.List(ctx, "institutions/x/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"institutions/x/logo/b.jpg",
		"institutions/x/primary/a.jpg",
	}, keys)

	require.NoError(t, store.Delete(ctx, "institutions/x/primary/a.jpg"))
	require.NoError(t, store.Delete(ctx, "institutions/x/primary/a.jpg")) // no-op

	keys, err = store.List(ctx, "institutions/x/")
	require.NoError(t, err)
	assert.Equal(t, []string{"institutions/x/logo/b.jpg"}, keys)
	assert.Equal(t, 2, store.Len())
}

func TestPutCopiesData(t *testing.T) {
	ctx := context.Background()
	store := New()

	payload := []byte{1, 2, 3}
	_, err := store.Put(ctx, "k", "image/jpeg", payload)
	require.NoError(t, err)
	payload[0] = 9

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestPutEmptyKeyRejected(t *testing.T) {
	_, err := New().Put(context.Background(), "", "image/jpeg", nil)
	assert.Error(t, err)
}
