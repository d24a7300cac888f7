// Package storage provides the local key-value persistence gateway used by the
// task store, the focus timer, and user preferences.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// stateFileVersion is written into every state file.
const stateFileVersion = "1.0"

// StateFile represents the top-level structure of the state file.
type StateFile struct {
	Version string            `yaml:"version"`
	Values  map[string]string `yaml:"values"`
}

// StateStore is a string key-value store persisted to a single local file.
type StateStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Keys() []string
	Path() string
	Load() error
}

type fileStateStore struct {
	path string
	mu   sync.Mutex
	data StateFile
}

// NewFileStore creates a StateStore backed by a YAML file at path. Call Load
// to read existing values; a missing file is an empty store.
func NewFileStore(path string) StateStore {
	return &fileStateStore{
		path: path,
		data: StateFile{
			Version: stateFileVersion,
			Values:  make(map[string]string),
		},
	}
}

func (s *fileStateStore) Path() string {
	return s.path
}

func (s *fileStateStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.Values[key]
	return v, ok
}

func (s *fileStateStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data.Values))
	for k := range s.data.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under key and rewrites the file. Other processes may share
// the file, so Set holds the lock file, re-reads the values on disk, applies
// the one key and writes the result back. On failure memory is left as it
// was.
func (s *fileStateStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("setting %s: saving state: creating directory: %w", key, err)
	}
	unlock, err := lockFile(s.lockPath())
	if err != nil {
		return fmt.Errorf("setting %s: saving state: %w", key, err)
	}
	defer func() { _ = unlock() }()

	current, err := readStateFile(s.path)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	current.Values[key] = value
	if err := s.save(current); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	s.data = current
	return nil
}

// lockPath is the sidecar file serializing writers. The state file itself is
// replaced by rename on every save, so it cannot carry the lock.
func (s *fileStateStore) lockPath() string {
	return s.path + ".lock"
}

func (s *fileStateStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := readStateFile(s.path)
	if err != nil {
		return err
	}
	s.data = sf
	return nil
}

// readStateFile parses the state file at path. A missing file is an empty
// state.
func readStateFile(path string) (StateFile, error) {
	sf := StateFile{Version: stateFileVersion, Values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sf, nil
		}
		return sf, fmt.Errorf("loading state: %w", err)
	}

	if err := yaml.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("loading state: parsing YAML: %w", err)
	}
	if sf.Values == nil {
		sf.Values = make(map[string]string)
	}
	if sf.Version == "" {
		sf.Version = stateFileVersion
	}
	return sf, nil
}

// save writes sf to a temp file in the same directory and renames it over the
// state file.
func (s *fileStateStore) save(sf StateFile) error {
	dir := filepath.Dir(s.path)
	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("saving state: marshaling YAML: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("saving state: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving state: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving state: closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving state: setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving state: replacing file: %w", err)
	}
	return nil
}
