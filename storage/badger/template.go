package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/storage"
)

// TemplateRepository implements storage.TemplateRepository using BadgerDB.
type TemplateRepository struct {
	backend *Backend
}

var _ storage.TemplateRepository = (*TemplateRepository)(nil)

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(backend *Backend) (storage.TemplateRepository, error) {
	if backend == nil {
		return nil, errors.New("badger backend is required")
	}
	return &TemplateRepository{
		backend: backend,
	}, nil
}

// Close releases resources. TemplateRepository has no resources to release;
// the backend is closed by its owner.
func (r *TemplateRepository) Close() error {
	return nil
}

// SaveTemplates inserts or replaces templates by name.
func (r *TemplateRepository) SaveTemplates(ctx context.Context, templates ...*core.ConceptTemplate) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, template := range templates {
			if template == nil || template.Name == "" {
				return fmt.Errorf("%w: %w", core.ErrInvalidTemplate, core.ErrEmptyTemplateName)
			}
			if err := tx.Set(makeTemplateKey(template.Name), storage.MarshalTemplate(template)); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
		}
		return tx.Commit()
	}, true)
}

// GetTemplate retrieves a template by name.
func (r *TemplateRepository) GetTemplate(ctx context.Context, name string) (*core.ConceptTemplate, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.ConceptTemplate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTemplate(tx, makeTemplateKey(name))
		if err != nil {
			return err
		}
		// Distinct names can share a content ID only by hash collision.
		if result == nil || result.Name != name {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListTemplates returns every stored template ordered by name.
func (r *TemplateRepository) ListTemplates(ctx context.Context) ([]*core.ConceptTemplate, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result []*core.ConceptTemplate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = templatePrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var template *core.ConceptTemplate
			err := iter.Item().Value(func(val []byte) error {
				var err error
				template, err = storage.UnmarshalTemplate(val)
				return err
			})
			if err != nil {
				return err
			}
			result = append(result, template)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b *core.ConceptTemplate) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

// DeleteTemplates removes templates by name.
func (r *TemplateRepository) DeleteTemplates(ctx context.Context, names ...string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, name := range names {
			key := makeTemplateKey(name)
			existing, err := readTemplate(tx, key)
			if err != nil {
				return err
			}
			if existing == nil || existing.Name != name {
				return fmt.Errorf("%w: template %q", storage.ErrNotFound, name)
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readTemplate reads a template record; a missing key yields (nil, nil).
func readTemplate(tx *badger.Txn, key []byte) (*core.ConceptTemplate, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var template *core.ConceptTemplate
	err = item.Value(func(val []byte) error {
		var err error
		template, err = storage.UnmarshalTemplate(val)
		return err
	})
	return template, err
}
