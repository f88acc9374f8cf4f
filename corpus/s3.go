// Package corpus S3-compatible storage via BlobStore interface.
package corpus

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/klejdi94/bitext/core"
)

// BlobStore is a minimal key-value store for S3-compatible backends (e.g. AWS S3, MinIO).
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// S3Store stores corpora using a BlobStore. Keys: prefix/corpus/name.tsv.
type S3Store struct {
	store  BlobStore
	prefix string
}

// NewS3Store creates a store using the given BlobStore (e.g. from corpus/s3blob) and key prefix.
func NewS3Store(store BlobStore, prefix string) *S3Store {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Store{store: store, prefix: prefix}
}

func (s *S3Store) corpusKey(name string) string {
	return s.prefix + "corpus/" + name + ".tsv"
}

// Load implements Store.
func (s *S3Store) Load(ctx context.Context, name string) (*core.Corpus, error) {
	data, err := s.store.Get(ctx, s.corpusKey(name))
	if err != nil {
		return nil, core.ErrCorpusNotFound
	}
	return core.ParseTSV(name, bytes.NewReader(data))
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, c *core.Corpus) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("s3 corpus store: corpus name is required")
	}
	var buf bytes.Buffer
	if err := c.WriteTSV(&buf); err != nil {
		return err
	}
	return s.store.Put(ctx, s.corpusKey(c.Name), buf.Bytes())
}

// List implements Store.
func (s *S3Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, s.prefix+"corpus/")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, key := range keys {
		if !strings.HasSuffix(key, ".tsv") {
			continue
		}
		trim := strings.TrimPrefix(key, s.prefix+"corpus/")
		names = append(names, strings.TrimSuffix(trim, ".tsv"))
	}
	return names, nil
}

// Delete implements Store.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	if _, err := s.store.Get(ctx, s.corpusKey(name)); err != nil {
		return core.ErrCorpusNotFound
	}
	return s.store.Delete(ctx, s.corpusKey(name))
}

var _ Store = (*S3Store)(nil)
