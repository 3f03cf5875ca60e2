package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemory(),
		"file":   f,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(AnswersKey)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(AnswersKey, `{"0":"a"}`))
			v, err := s.Get(AnswersKey)
			require.NoError(t, err)
			assert.Equal(t, `{"0":"a"}`, v)

			require.NoError(t, s.Set(AnswersKey, `{"0":"b"}`))
			v, err = s.Get(AnswersKey)
			require.NoError(t, err)
			assert.Equal(t, `{"0":"b"}`, v)

			require.NoError(t, s.Delete(AnswersKey))
			_, err = s.Get(AnswersKey)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Delete(AnswersKey), "deleting a missing key is not an error")
		})
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Set(AnswersKey, `{"3":"kept"}`))

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	v, err := reopened.Get(AnswersKey)
	require.NoError(t, err)
	assert.Equal(t, `{"3":"kept"}`, v)
}

func TestFileSetIsByteStable(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, f.Set(AnswersKey, `{"0":"same"}`))
	first, err := os.ReadFile(f.Path())
	require.NoError(t, err)

	require.NoError(t, f.Set(AnswersKey, `{"0":"same"}`))
	second, err := os.ReadFile(f.Path())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFileCorruptStore(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.Path(), []byte("{{{"), 0600))

	_, err = f.Get(AnswersKey)
	assert.Error(t, err)

	require.NoError(t, f.Set(AnswersKey, `{}`), "a corrupt store is replaced on write")
	v, err := f.Get(AnswersKey)
	require.NoError(t, err)
	assert.Equal(t, `{}`, v)
}

func TestNamespace(t *testing.T) {
	root := "/data/local"

	tests := []struct {
		client string
		want   string
	}{
		{client: "alice", want: filepath.Join(root, "alice")},
		{client: "", want: filepath.Join(root, "anonymous")},
		{client: "../../etc", want: filepath.Join(root, ".._.._etc")},
		{client: "..", want: filepath.Join(root, "_..")},
		{client: "bob@example.com", want: filepath.Join(root, "bob_example.com")},
	}
	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			got := Namespace(root, tt.client)
			assert.Equal(t, tt.want, got)
			rel, err := filepath.Rel(root, got)
			require.NoError(t, err)
			assert.NotContains(t, filepath.ToSlash(rel), "/")
		})
	}
}
