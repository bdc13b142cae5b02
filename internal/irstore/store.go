// Package irstore persists resolved feature trees as YAML documents, one file
// per remote root id.
package irstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// DirName is the default directory name, resolved next to the executable.
const DirName = "ir"

// Store reads and writes IR documents under a single directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the ir/ directory next to the running executable.
func DefaultDir() string {
	exe, err := os.Executable()
	if err != nil {
		return DirName
	}
	return filepath.Join(filepath.Dir(exe), DirName)
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the document path for a remote root id.
func (s *Store) Path(remoteID int) string {
	return filepath.Join(s.dir, fmt.Sprintf("feature-%d.yaml", remoteID))
}

// Load reads the document for remoteID. A missing document yields an error
// matching ErrNotFound; anything unreadable yields a *PersistenceError.
func (s *Store) Load(remoteID int) (*domain.FeatureTree, error) {
	path := s.Path(remoteID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("feature %d: %w", remoteID, ErrNotFound)
		}
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	var tree domain.FeatureTree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	if tree.Feature == nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: errors.New("document has no feature")}
	}
	return &tree, nil
}

// Save writes tree as the document for remoteID, replacing any earlier one
// atomically, and returns the path written.
func (s *Store) Save(tree *domain.FeatureTree, remoteID int) (string, error) {
	path := s.Path(remoteID)
	if tree == nil || tree.Feature == nil {
		return "", &PersistenceError{Op: "write", Path: path, Err: errors.New("empty feature tree")}
	}

	doc := *tree
	doc.MarshaledAt = doc.MarshaledAt.UTC().Truncate(time.Second)

	err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return "", &PersistenceError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}
