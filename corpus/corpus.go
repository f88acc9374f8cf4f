// Package corpus provides storage backends for named parallel corpora.
package corpus

import (
	"context"

	"github.com/klejdi94/bitext/core"
)

// Store is the interface for corpus storage backends.
type Store interface {
	// Load returns the corpus with the given name, or core.ErrCorpusNotFound.
	Load(ctx context.Context, name string) (*core.Corpus, error)
	// Save stores the corpus under its name, overwriting any existing one.
	Save(ctx context.Context, c *core.Corpus) error
	// List returns the names of all stored corpora.
	List(ctx context.Context) ([]string, error)
	// Delete removes a corpus; core.ErrCorpusNotFound if absent.
	Delete(ctx context.Context, name string) error
}
