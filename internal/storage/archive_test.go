package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

func TestSealRoundTrip(t *testing.T) {
	plain := []byte("board 1: 4H= 420")

	sealed, err := seal(plain, "secret")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "420")

	got, err := unseal(sealed, "secret")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = unseal(sealed, "wrong")
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	_, err = unseal([]byte("garbage"), "secret")
	assert.ErrorIs(t, err, ErrArchiveInvalid)
}

func TestArchiveAndRestore(t *testing.T) {
	s := NewTestService(t)
	ctx := context.Background()
	require.NoError(t, s.SavePair(ctx, &models.Pair{ID: 1, Name: "Smith - Jones"}))

	dir := t.TempDir()
	path, err := s.Archive(ctx, dir, "week1", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "week1.db"), path)

	_, err = s.Archive(ctx, dir, "week1", "")
	assert.Error(t, err, "existing archives are never overwritten")

	sealedPath, err := s.Archive(ctx, dir, "week1-sealed", "secret")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "week1-sealed.db.sealed"), sealedPath)
	assert.NoFileExists(t, filepath.Join(dir, "week1-sealed.db"))

	archives, err := ListArchives(dir)
	require.NoError(t, err)
	require.Len(t, archives, 2)
	for _, a := range archives {
		assert.Len(t, a.Checksum, 16)
		assert.Equal(t, a.Name == "week1-sealed.db.sealed", a.Sealed)
	}

	target := filepath.Join(t.TempDir(), "restored.db")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	assert.Error(t, RestoreArchive(ctx, sealedPath, target, ""))
	assert.ErrorIs(t, RestoreArchive(ctx, sealedPath, target, "wrong"), ErrWrongPassphrase)
	require.NoError(t, RestoreArchive(ctx, sealedPath, target, "secret"))

	restored, err := Open(DefaultConfig(target))
	require.NoError(t, err)
	defer restored.Close()
	pairs, err := NewService(restored).Pairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Smith - Jones", pairs[0].Name)

	olds, err := filepath.Glob(target + ".old.*")
	require.NoError(t, err)
	assert.Len(t, olds, 1)
}

func TestVerifyArchiveRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	require.NoError(t, os.WriteFile(path, []byte("not sqlite"), 0o644))

	assert.Error(t, VerifyArchive(context.Background(), path))
}

func TestListArchivesMissingDir(t *testing.T) {
	archives, err := ListArchives(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, archives)
}
