package repos

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// DocumentStore is a remote key-value document service organised in
// collections. Writes across documents are not transactional.
type DocumentStore interface {
	// GetAll decodes every document of a collection into out, a pointer to a slice.
	GetAll(ctx context.Context, collection string, out any) error
	Get(ctx context.Context, collection, id string, out any) error
	Set(ctx context.Context, collection, id string, doc any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
