package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStorePutResolveOpen(t *testing.T) {
	dir := t.TempDir()
	store := NewBlobStore(dir, "http://localhost:8080/", "secret", time.Hour)
	ctx := context.Background()

	ref, size, err := store.Put(ctx, "Milk.PNG", strings.NewReader("image-data"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	assert.True(t, strings.HasPrefix(ref, "images/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	url, err := store.ResolveURL(ctx, ref)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/files/"))

	path, openedRef, err := store.Open(strings.TrimPrefix(url, "http://localhost:8080/files/"))
	require.NoError(t, err)
	assert.Equal(t, ref, openedRef)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-data", string(data))

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.ResolveURL(ctx, ref)
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.ErrorIs(t, store.Delete(ctx, ref), ErrBlobNotFound)
}

func TestBlobStoreRejectsBadRefs(t *testing.T) {
	store := NewBlobStore(t.TempDir(), "http://localhost", "secret", time.Hour)
	ctx := context.Background()

	for _, ref := range []string{"", "../etc/passwd", "/etc/passwd", "images/../../x", `images\x.png`} {
		_, err := store.ResolveURL(ctx, ref)
		assert.ErrorIs(t, err, ErrInvalidBlobRef, "ref %q", ref)
	}
}

func TestBlobStoreMissingFile(t *testing.T) {
	store := NewBlobStore(t.TempDir(), "http://localhost", "secret", time.Hour)

	_, err := store.ResolveURL(context.Background(), "images/nothing.png")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestBlobStoreTokenExpiry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "a.png"), []byte("a"), 0644))

	store := NewBlobStore(dir, "http://localhost", "secret", time.Minute)
	current := testNow
	store.now = func() time.Time { return current }

	url, err := store.ResolveURL(context.Background(), "images/a.png")
	require.NoError(t, err)
	token := strings.TrimPrefix(url, "http://localhost/files/")

	_, _, err = store.Open(token)
	require.NoError(t, err)

	current = testNow.Add(2 * time.Minute)
	_, _, err = store.Open(token)
	assert.ErrorIs(t, err, ErrInvalidBlobToken)

	// Ключ другого хранилища не подходит
	other := NewBlobStore(dir, "http://localhost", "another", time.Minute)
	other.now = func() time.Time { return testNow }
	_, _, err = other.Open(token)
	assert.ErrorIs(t, err, ErrInvalidBlobToken)
}

func TestBlobStoreCancelledContext(t *testing.T) {
	store := NewBlobStore(t.TempDir(), "http://localhost", "secret", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ResolveURL(ctx, "images/a.png")
	assert.ErrorIs(t, err, context.Canceled)
}
