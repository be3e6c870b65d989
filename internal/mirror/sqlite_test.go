package mirror

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestMirror(t *testing.T) *SQLiteMirror {
	t.Helper()
	m, err := OpenSQLite(filepath.Join(t.TempDir(), "mirror.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestSaveAndLoad(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	_, ok, err := m.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Save(ctx, "user-1", []byte(`{"analyzed":[]}`)))
	payload, ok, err := m.Load(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"analyzed":[]}`, string(payload))
}

func TestSaveReplacesWholeSnapshot(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "user-1", []byte(`{"v":1}`)))
	require.NoError(t, m.Save(ctx, "user-1", []byte(`{"v":2}`)))

	payload, ok, err := m.Load(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(payload))
}

func TestSnapshotsAreScopedPerOwner(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "user-1", []byte(`{"who":"one"}`)))
	require.NoError(t, m.Save(ctx, "user-2", []byte(`{"who":"two"}`)))

	payload, ok, err := m.Load(ctx, "user-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"who":"two"}`, string(payload))
}
