package local

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutListDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	url, err := store.Put(ctx, "institutions/acme/primary/a.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "file://"))

	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	keys, err := store.List(ctx, "institutions/acme/primary")
	require.NoError(t, err)
	assert.Equal(t, []string{"institutions/acme/primary/a.jpg"}, keys)

	require.NoError(t, store.Delete(ctx, "institutions/acme/primary/a.jpg"))
	require.NoError(t, store.Delete(ctx, "institutions/acme/primary/a.jpg")) // no-op

	keys, err = store.List(ctx, "institutions/acme")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestNewCreatesMissingBaseDir(t *testing.T) {
	dir := t.TempDir() + "/nested/objects"
	_, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveRejectsEscapes(t *testing.T) {
	store, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../outside.jpg", "image/jpeg", nil)
	assert.Error(t, err)

	_, err = store.Put(context.Background(), "", "image/jpeg", nil)
	assert.Error(t, err)
}
