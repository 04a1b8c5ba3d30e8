// Package keystore provides at-rest storage for HEC key material: blobs
// sealed with golang.org/x/crypto/chacha20poly1305, a JSON metadata
// catalog, a bounded in-memory LRU read cache, and directory-per-backup
// export/import. The HEC core treats this package as an opaque key-value
// service; a missing key or backup file surfaces as herrors.KeyNotFound, a
// blob, catalog or backup that fails authentication or decoding as
// herrors.KeyCorrupt, and other filesystem and marshalling failures as
// herrors.Internal.
package keystore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/privacyfl/hec/herrors"
)

// Metadata is the JSON object recorded alongside every stored key blob.
type Metadata struct {
	ID                string   `json:"id"`
	Scheme            string   `json:"scheme"`
	SecurityLevel     int      `json:"security_level"`
	CreatedAt         string   `json:"created_at"`
	Type              string   `json:"type"`
	PolyModulusDegree int      `json:"poly_modulus_degree,omitempty"`
	PlainModulus      uint64   `json:"plain_modulus,omitempty"`
	CoeffModulus      []uint64 `json:"coeff_modulus,omitempty"`
	RotationIndices   []int    `json:"rotation_indices,omitempty"`
}

// Store is a directory-backed key-value service for encrypted key blobs.
type Store struct {
	dir       string
	masterKey []byte
	cache     *lruCache

	mu       sync.RWMutex
	catalog  map[string]Metadata
	catalogP string
}

// Open opens (creating if necessary) a Store rooted at dir, sealing blobs
// under masterKey (must be exactly chacha20poly1305.KeySize bytes) and
// caching up to cacheCapacity decrypted blobs in memory.
func Open(dir string, masterKey []byte, cacheCapacity int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, herrors.Wrap(herrors.Internal, "keystore: creating store directory", err)
	}
	s := &Store{
		dir:       dir,
		masterKey: append([]byte(nil), masterKey...),
		cache:     newLRUCache(cacheCapacity),
		catalog:   make(map[string]Metadata),
		catalogP:  filepath.Join(dir, "catalog.json"),
	}
	if err := s.loadCatalog(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadCatalog() error {
	data, err := os.ReadFile(s.catalogP)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return herrors.Wrap(herrors.Internal, "keystore: reading catalog", err)
	}
	var entries []Metadata
	if err := json.Unmarshal(data, &entries); err != nil {
		return herrors.Wrap(herrors.KeyCorrupt, "keystore: catalog is not valid JSON", err)
	}
	for _, m := range entries {
		s.catalog[m.ID] = m
	}
	return nil
}

// writeCatalogLocked atomically rewrites the catalog file. Callers must
// hold s.mu for writing.
func (s *Store) writeCatalogLocked() error {
	entries := make([]Metadata, 0, len(s.catalog))
	for _, m := range s.catalog {
		entries = append(entries, m)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return herrors.Wrap(herrors.Internal, "keystore: marshalling catalog", err)
	}
	return atomicWrite(s.catalogP, data)
}

func (s *Store) blobPath(id string) string {
	return filepath.Join(s.dir, id+".blob")
}

// Save seals blob under the store's master key and writes it, along with
// metadata, atomically (temp file + rename) so a crash mid-write never
// leaves a corrupt key on disk.
func (s *Store) Save(id string, blob []byte, meta Metadata) error {
	meta.ID = id
	if meta.CreatedAt == "" {
		meta.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	sealed, err := seal(s.masterKey, blob)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := atomicWrite(s.blobPath(id), sealed); err != nil {
		return err
	}
	s.catalog[id] = meta
	if err := s.writeCatalogLocked(); err != nil {
		return err
	}
	s.cache.put(id, blob, meta)
	return nil
}

// Load returns the decrypted blob and metadata for id, serving from the LRU
// cache when present.
func (s *Store) Load(id string) ([]byte, Metadata, error) {
	if blob, meta, ok := s.cache.get(id); ok {
		return blob, meta, nil
	}

	s.mu.RLock()
	meta, ok := s.catalog[id]
	s.mu.RUnlock()
	if !ok {
		return nil, Metadata{}, herrors.New(herrors.KeyNotFound, "keystore: no such key id")
	}

	sealed, err := os.ReadFile(s.blobPath(id))
	if os.IsNotExist(err) {
		return nil, Metadata{}, herrors.New(herrors.KeyNotFound, "keystore: blob missing for catalogued id")
	}
	if err != nil {
		return nil, Metadata{}, herrors.Wrap(herrors.Internal, "keystore: reading blob", err)
	}

	blob, err := open(s.masterKey, sealed)
	if err != nil {
		return nil, Metadata{}, err
	}
	s.cache.put(id, blob, meta)
	return blob, meta, nil
}

// Delete removes id's cache entry, encrypted blob and catalog entry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[id]; !ok {
		return herrors.New(herrors.KeyNotFound, "keystore: no such key id")
	}
	delete(s.catalog, id)
	if err := s.writeCatalogLocked(); err != nil {
		return err
	}
	if err := os.Remove(s.blobPath(id)); err != nil && !os.IsNotExist(err) {
		return herrors.Wrap(herrors.Internal, "keystore: removing blob", err)
	}
	s.cache.invalidate(id)
	return nil
}

// List returns metadata for every stored key, in no particular order.
func (s *Store) List() ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Metadata, 0, len(s.catalog))
	for _, m := range s.catalog {
		out = append(out, m)
	}
	return out, nil
}

// atomicWrite writes data to a temp file in the same directory as path and
// renames it into place, so a crash mid-write never leaves a torn file.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return herrors.Wrap(herrors.Internal, "keystore: writing temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return herrors.Wrap(herrors.Internal, "keystore: renaming temp file into place", err)
	}
	return nil
}

// backupKeyEntry is one key's representation inside a backup.enc payload.
type backupKeyEntry struct {
	ID       string `json:"id"`
	DataB64  string `json:"data_base64"`
	Metadata Metadata
}

type backupPayload struct {
	Keys     []backupKeyEntry    `json:"keys"`
	Metadata map[string]Metadata `json:"metadata"`
}

type backupManifest struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	KeyIDs    []string `json:"key_ids"`
	Size      int      `json:"size"`
	Checksum  string   `json:"checksum"`
	Version   int      `json:"version"`
}

const backupVersion = 1
