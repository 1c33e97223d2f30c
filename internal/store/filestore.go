package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"larder/internal/models"
)

// FileStore persists each collection as a pretty-printed JSON array in
// its own file under a data directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data dir: %v", models.ErrStorageUnavailable, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load reads a collection into out. A missing collection file is
// created with an empty array and out is left empty.
func (s *FileStore) Load(collection string, out interface{}) error {
	data, err := os.ReadFile(s.path(collection))
	if os.IsNotExist(err) {
		if err := os.WriteFile(s.path(collection), []byte("[]"), 0o644); err != nil {
			return fmt.Errorf("%w: initializing %s: %v", models.ErrStorageUnavailable, collection, err)
		}
		data = []byte("[]")
	} else if err != nil {
		return fmt.Errorf("%w: reading %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	return nil
}

// Save overwrites the collection. The payload is written to a temp file
// and renamed into place so readers never observe a partial write.
func (s *FileStore) Save(collection string, records interface{}) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	return nil
}

// InitCollections ensures every known collection file exists
func (s *FileStore) InitCollections() error {
	for _, name := range Collections {
		var probe []json.RawMessage
		if err := s.Load(name, &probe); err != nil {
			return err
		}
	}
	return nil
}
