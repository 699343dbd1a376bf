package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend interface {
	Save(ctx context.Context, slot string, blob []byte) error
	Load(ctx context.Context, slot string) ([]byte, bool, error)
	Delete(ctx context.Context, slot string) error
}

func exerciseBackend(t *testing.T, b backend) {
	ctx := context.Background()

	_, found, err := b.Load(ctx, "main")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Save(ctx, "main", []byte(`{"version":1}`)))
	require.NoError(t, b.Save(ctx, "main", []byte(`{"version":2}`)))

	blob, found, err := b.Load(ctx, "main")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"version":2}`, string(blob))

	require.NoError(t, b.Delete(ctx, "main"))
	require.NoError(t, b.Delete(ctx, "main"))
	_, found, err = b.Load(ctx, "main")
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, b.Save(ctx, "../escape", nil), ErrInvalidSlot)
	_, _, err = b.Load(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestMemoryStore(t *testing.T) {
	exerciseBackend(t, NewMemoryStore())
}

func TestMemoryStore_CopiesBlobs(t *testing.T) {
	m := NewMemoryStore()
	blob := []byte("abc")
	require.NoError(t, m.Save(context.Background(), "s", blob))
	blob[0] = 'x'

	got, _, err := m.Load(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")
	f, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	exerciseBackend(t, f)
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, f.Save(context.Background(), "main", []byte(`{}`)))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "main.json", entries[0].Name())
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("STUDY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STUDY_TEST_DATABASE_URL not set")
	}
	p, err := NewPostgresStore(context.Background(), url, nil)
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	blob := []byte(`{"version":1,"save_id":"4f1c2b8e-7a43-4c1e-9d55-0b8f0f9a6a21"}`)
	require.NoError(t, p.Save(ctx, "pgtest", blob))
	got, found, err := p.Load(ctx, "pgtest")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, string(blob), string(got))
	require.NoError(t, p.Delete(ctx, "pgtest"))

	assert.Error(t, p.Save(ctx, "pgtest", []byte(`{"save_id":"nope"}`)))
}
