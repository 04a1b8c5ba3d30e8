package keystore

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/privacyfl/hec/herrors"
)

// Backup writes every stored key, decrypted then re-sealed under the same
// master key inside one AEAD blob, plus a manifest, to a fresh directory at
// path, per spec's "directory per backup id" layout.
func (s *Store) Backup(path string) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.catalog))
	metaByID := make(map[string]Metadata, len(s.catalog))
	for id, m := range s.catalog {
		ids = append(ids, id)
		metaByID[id] = m
	}
	s.mu.RUnlock()

	payload := backupPayload{
		Keys:     make([]backupKeyEntry, 0, len(ids)),
		Metadata: metaByID,
	}
	for _, id := range ids {
		blob, meta, err := s.Load(id)
		if err != nil {
			return err
		}
		payload.Keys = append(payload.Keys, backupKeyEntry{
			ID:       id,
			DataB64:  base64.StdEncoding.EncodeToString(blob),
			Metadata: meta,
		})
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return herrors.Wrap(herrors.Internal, "keystore: marshalling backup payload", err)
	}
	sealed, err := seal(s.masterKey, plaintext)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path, 0o700); err != nil {
		return herrors.Wrap(herrors.Internal, "keystore: creating backup directory", err)
	}
	if err := atomicWrite(filepath.Join(path, "backup.enc"), sealed); err != nil {
		return err
	}

	sum := sha256.Sum256(sealed)
	manifest := backupManifest{
		ID:        filepath.Base(path),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		KeyIDs:    ids,
		Size:      len(sealed),
		Checksum:  base64.StdEncoding.EncodeToString(sum[:]),
		Version:   backupVersion,
	}
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return herrors.Wrap(herrors.Internal, "keystore: marshalling backup manifest", err)
	}
	return atomicWrite(filepath.Join(path, "metadata.json"), manifestData)
}

// Restore loads a backup written by Backup, verifying the manifest checksum
// before decrypting, and re-inserts every key into the store (overwriting
// any existing entry with the same id).
func (s *Store) Restore(path string) error {
	manifestData, err := os.ReadFile(filepath.Join(path, "metadata.json"))
	if err != nil {
		return herrors.Wrap(herrors.KeyNotFound, "keystore: reading backup manifest", err)
	}
	var manifest backupManifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return herrors.Wrap(herrors.KeyCorrupt, "keystore: backup manifest is not valid JSON", err)
	}

	sealed, err := os.ReadFile(filepath.Join(path, "backup.enc"))
	if err != nil {
		return herrors.Wrap(herrors.KeyNotFound, "keystore: reading backup blob", err)
	}

	sum := sha256.Sum256(sealed)
	if base64.StdEncoding.EncodeToString(sum[:]) != manifest.Checksum {
		return herrors.New(herrors.KeyCorrupt, "keystore: backup checksum mismatch")
	}

	plaintext, err := open(s.masterKey, sealed)
	if err != nil {
		return err
	}
	var payload backupPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return herrors.Wrap(herrors.KeyCorrupt, "keystore: backup payload is not valid JSON", err)
	}

	for _, entry := range payload.Keys {
		blob, err := base64.StdEncoding.DecodeString(entry.DataB64)
		if err != nil {
			return herrors.Wrap(herrors.KeyCorrupt, "keystore: backup key data is not valid base64", err)
		}
		if err := s.Save(entry.ID, blob, entry.Metadata); err != nil {
			return err
		}
	}
	return nil
}
