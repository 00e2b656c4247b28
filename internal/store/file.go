package store

import (
	"encoding/base32"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore keeps one file per key under a data directory. It is the
// default backend for desktop builds.
type FileStore struct {
	dir string
	log zerolog.Logger
	mu  sync.Mutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, log: log}, nil
}

// keyPath maps a key to a filesystem-safe file name. Plain alphanumeric
// keys map directly; anything else is base32 encoded.
func (f *FileStore) keyPath(key string) string {
	safe := true
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			safe = false
			break
		}
	}
	name := key
	if !safe || key == "" {
		name = "k_" + strings.TrimRight(base32.StdEncoding.EncodeToString([]byte(key)), "=")
	}
	return filepath.Join(f.dir, name+".json")
}

func (f *FileStore) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.keyPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Warn().Err(err).Str("key", key).Msg("store read failed, using default")
		}
		return nil, false
	}
	return data, true
}

func (f *FileStore) Set(key string, value []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := f.keyPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("store write failed")
		return false
	}
	if err := os.Rename(tmp, path); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("store rename failed")
		return false
	}
	return true
}

func (f *FileStore) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.keyPath(key)); err != nil && !os.IsNotExist(err) {
		f.log.Warn().Err(err).Str("key", key).Msg("store remove failed")
	}
}

func (f *FileStore) Export() map[string][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]byte)
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		f.log.Warn().Err(err).Msg("store export failed")
		return out
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		key := name
		if strings.HasPrefix(name, "k_") {
			enc := strings.ToUpper(name[2:])
			if pad := len(enc) % 8; pad != 0 {
				enc += strings.Repeat("=", 8-pad)
			}
			if raw, err := base32.StdEncoding.DecodeString(enc); err == nil {
				key = string(raw)
			}
		}
		if data, err := os.ReadFile(filepath.Join(f.dir, e.Name())); err == nil {
			out[key] = data
		}
	}
	return out
}

func (f *FileStore) Import(data map[string][]byte) {
	for k, v := range data {
		f.Set(k, v)
	}
}
