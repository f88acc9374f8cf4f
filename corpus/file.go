// Package corpus file-based storage implementation.
package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klejdi94/bitext/core"
)

// FileStore stores corpora as TSV files ({name}.tsv) in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based corpus store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("corpus store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) filename(name string) string {
	safe := strings.ReplaceAll(strings.ReplaceAll(name, string(filepath.Separator), "_"), ":", "_")
	return filepath.Join(f.dir, safe+".tsv")
}

// Load implements Store.
func (f *FileStore) Load(ctx context.Context, name string) (*core.Corpus, error) {
	c, err := core.ReadTSV(name, f.filename(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.ErrCorpusNotFound
		}
		return nil, err
	}
	return c, nil
}

// Save implements Store.
func (f *FileStore) Save(ctx context.Context, c *core.Corpus) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("corpus store: corpus name is required")
	}
	var buf bytes.Buffer
	if err := c.WriteTSV(&buf); err != nil {
		return err
	}
	return os.WriteFile(f.filename(c.Name), buf.Bytes(), 0644)
}

// List implements Store.
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tsv") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".tsv"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete implements Store.
func (f *FileStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(f.filename(name))
	if os.IsNotExist(err) {
		return core.ErrCorpusNotFound
	}
	return err
}

var _ Store = (*FileStore)(nil)
