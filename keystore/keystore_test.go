package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyfl/hec/herrors"
)

func testMasterKey(b byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(1), 8)
	require.NoError(t, err)

	blob := []byte("secret key material")
	meta := Metadata{Scheme: "BGV", SecurityLevel: 128, Type: "secret"}
	require.NoError(t, s.Save("k1", blob, meta))

	got, gotMeta, err := s.Load("k1")
	require.NoError(t, err)
	require.Equal(t, blob, got)
	require.Equal(t, "k1", gotMeta.ID)
	require.Equal(t, "BGV", gotMeta.Scheme)
}

func TestLoadMissingKeyFails(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(2), 8)
	require.NoError(t, err)

	_, _, err = s.Load("missing")
	require.Error(t, err)
	require.True(t, herrors.Is(err, herrors.KeyNotFound))
}

func TestDeleteRemovesKey(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(3), 8)
	require.NoError(t, err)

	require.NoError(t, s.Save("k1", []byte("data"), Metadata{}))
	require.NoError(t, s.Delete("k1"))

	_, _, err = s.Load("k1")
	require.True(t, herrors.Is(err, herrors.KeyNotFound))

	err = s.Delete("k1")
	require.True(t, herrors.Is(err, herrors.KeyNotFound))
}

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(4), 8)
	require.NoError(t, err)
	require.NoError(t, s.Save("k1", []byte("data"), Metadata{Scheme: "BGV"}))

	reopened, err := Open(dir, testMasterKey(4), 8)
	require.NoError(t, err)
	blob, meta, err := reopened.Load("k1")
	require.NoError(t, err)
	require.Equal(t, []byte("data"), blob)
	require.Equal(t, "BGV", meta.Scheme)
}

func TestLoadFailsWithWrongMasterKey(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(5), 8)
	require.NoError(t, err)
	require.NoError(t, s.Save("k1", []byte("data"), Metadata{}))

	wrongKeyStore, err := Open(dir, testMasterKey(6), 8)
	require.NoError(t, err)
	_, _, err = wrongKeyStore.Load("k1")
	require.Error(t, err)
}

func TestListReturnsAllStoredMetadata(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(7), 8)
	require.NoError(t, err)
	require.NoError(t, s.Save("k1", []byte("a"), Metadata{}))
	require.NoError(t, s.Save("k2", []byte("b"), Metadata{}))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(8), 8)
	require.NoError(t, err)
	require.NoError(t, s.Save("k1", []byte("first"), Metadata{Scheme: "BGV"}))
	require.NoError(t, s.Save("k2", []byte("second"), Metadata{Scheme: "ElGamal"}))

	backupDir := filepath.Join(t.TempDir(), "backup1")
	require.NoError(t, s.Backup(backupDir))

	restoreDir := t.TempDir()
	restored, err := Open(restoreDir, testMasterKey(8), 8)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(backupDir))

	blob1, meta1, err := restored.Load("k1")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), blob1)
	require.Equal(t, "BGV", meta1.Scheme)

	blob2, _, err := restored.Load("k2")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), blob2)
}

func TestRestoreRejectsTamperedBackup(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testMasterKey(9), 8)
	require.NoError(t, err)
	require.NoError(t, s.Save("k1", []byte("data"), Metadata{}))

	backupDir := filepath.Join(t.TempDir(), "backup1")
	require.NoError(t, s.Backup(backupDir))

	blobPath := filepath.Join(backupDir, "backup.enc")
	data, err := os.ReadFile(blobPath)
	require.NoError(t, err)
	data[0] ^= 0xFF
	require.NoError(t, os.WriteFile(blobPath, data, 0o600))

	restoreDir := t.TempDir()
	restored, err := Open(restoreDir, testMasterKey(9), 8)
	require.NoError(t, err)
	err = restored.Restore(backupDir)
	require.Error(t, err)
	require.True(t, herrors.Is(err, herrors.KeyCorrupt))
}
