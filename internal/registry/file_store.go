package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AlexZinkM/yield-agent/internal/model"
)

// renameFile is swapped in tests to simulate a crash before the rename.
var renameFile = os.Rename

// FileStore keeps every record in one JSON array on disk.
// Every operation loads the whole file and scans it linearly; writes replace
// the file atomically (temp file + rename).
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created lazily by
// the first successful Add.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("registry file path must not be empty")
	}
	return &FileStore{path: filepath.Clean(path)}, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context, userAddress string) (*model.WalletRecord, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].UserAddress == userAddress {
			return &records[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *FileStore) Add(ctx context.Context, record model.WalletRecord) error {
	data, err := compactCredential(record.Data)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.path, Err: err}
	}
	record.Data = data

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Load()
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.UserAddress == record.UserAddress {
			return ErrRecordExists
		}
	}

	// the appended record is not durable until Persist returns
	return s.Persist(append(records, record))
}

func (s *FileStore) All(ctx context.Context) ([]model.WalletRecord, error) {
	return s.Load()
}

func (s *FileStore) Close() error {
	return nil
}

// Load reads the full record sequence. A missing or empty file is an empty
// registry; a malformed one is a PersistenceError.
func (s *FileStore) Load() ([]model.WalletRecord, error) {
	fileData, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.WalletRecord{}, nil
		}
		return nil, &PersistenceError{Op: "read", Path: s.path, Err: err}
	}

	// Skip UTF-8 BOM if present
	fileData = bytes.TrimPrefix(fileData, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(fileData)) == 0 {
		return []model.WalletRecord{}, nil
	}

	var records []model.WalletRecord
	if err := json.Unmarshal(fileData, &records); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: s.path, Err: err}
	}

	for i := range records {
		if records[i].UserAddress == "" {
			return nil, &PersistenceError{
				Op: "decode", Path: s.path,
				Err: fmt.Errorf("record %d has no user_address", i),
			}
		}
		data, err := compactCredential(records[i].Data)
		if err != nil {
			return nil, &PersistenceError{
				Op: "decode", Path: s.path,
				Err: fmt.Errorf("record %d: %w", i, err),
			}
		}
		records[i].Data = data
	}
	if records == nil {
		records = []model.WalletRecord{}
	}
	return records, nil
}

// Persist overwrites the backing file with records. The content is written to
// a temporary file in the same directory, synced and renamed over the target,
// so a crash leaves either the previous or the new document.
func (s *FileStore) Persist(records []model.WalletRecord) error {
	if records == nil {
		records = []model.WalletRecord{}
	}

	// credentials are stored verbatim, so no HTML escaping of & < >
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return &PersistenceError{Op: "encode", Path: s.path, Err: err}
	}
	fileData := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(fileData); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Op: "write", Path: tmpPath, Err: err}
	}

	if err := renameFile(tmpPath, s.path); err != nil {
		return &PersistenceError{Op: "rename", Path: s.path, Err: err}
	}
	committed = true

	// make the rename itself durable; not every platform can sync a directory
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}
