package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
)

const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	// CollectionLegacyMenu holds products saved by the first revision of the
	// app, categories as free text.
	CollectionLegacyMenu = "menu"
	CollectionMeta       = "menu_meta"

	metaID                  = "menu"
	defaultWriteConcurrency = 8
)

type MenuSnapshot struct {
	Products   []domain.Product
	Categories []domain.Category
	Version    int64
}

type menuMeta struct {
	ID          string    `json:"id" bson:"_id"`
	Version     int64     `json:"version" bson:"version"`
	PublishedAt time.Time `json:"publishedAt" bson:"publishedAt"`
}

type docID struct {
	ID string `json:"id" bson:"_id"`
}

type MenuRepo struct {
	store            DocumentStore
	writeConcurrency int
}

func NewMenuRepo(store DocumentStore) *MenuRepo {
	return &MenuRepo{store: store, writeConcurrency: defaultWriteConcurrency}
}

// WithWriteConcurrency bounds the number of concurrent writes made by Publish.
func (r *MenuRepo) WithWriteConcurrency(n int) *MenuRepo {
	if n > 0 {
		r.writeConcurrency = n
	}
	return r
}

// Load reads the persisted menu. A store that was never published has no
// version document; its products are read from the legacy combined menu
// collection when the products collection is empty.
func (r *MenuRepo) Load(ctx context.Context) (MenuSnapshot, error) {
	var snap MenuSnapshot

	version, err := r.RemoteVersion(ctx)
	if err != nil {
		return snap, err
	}

	products := []domain.Product{}
	if err := r.store.GetAll(ctx, CollectionProducts, &products); err != nil {
		return snap, fmt.Errorf("failed to load products: %w", err)
	}
	if len(products) == 0 && version == 0 {
		if err := r.store.GetAll(ctx, CollectionLegacyMenu, &products); err != nil {
			return snap, fmt.Errorf("failed to load legacy menu: %w", err)
		}
	}

	categories := []domain.Category{}
	if err := r.store.GetAll(ctx, CollectionCategories, &categories); err != nil {
		return snap, fmt.Errorf("failed to load categories: %w", err)
	}

	snap.Products = products
	snap.Categories = categories
	snap.Version = version
	return snap, nil
}

func (r *MenuRepo) RemoteVersion(ctx context.Context) (int64, error) {
	var meta menuMeta
	if err := r.store.Get(ctx, CollectionMeta, metaID, &meta); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read menu version: %w", err)
	}
	return meta.Version, nil
}

// Publish overwrites the products and categories collections with the given
// lists and records version. Documents are written concurrently; a failure
// part way through leaves the collections partially written.
func (r *MenuRepo) Publish(ctx context.Context, products []domain.Product, categories []domain.Category, version int64) error {
	staleProducts, err := r.staleIDs(ctx, CollectionProducts, productIDs(products))
	if err != nil {
		return err
	}
	staleCategories, err := r.staleIDs(ctx, CollectionCategories, categoryIDs(categories))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.writeConcurrency)
	for _, p := range products {
		g.Go(func() error {
			return r.store.Set(gctx, CollectionProducts, p.ID, p)
		})
	}
	for _, c := range categories {
		g.Go(func() error {
			return r.store.Set(gctx, CollectionCategories, c.ID, c)
		})
	}
	for _, id := range staleProducts {
		g.Go(func() error {
			return ignoreNotFound(r.store.Delete(gctx, CollectionProducts, id))
		})
	}
	for _, id := range staleCategories {
		g.Go(func() error {
			return ignoreNotFound(r.store.Delete(gctx, CollectionCategories, id))
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to publish menu: %w", err)
	}

	meta := menuMeta{ID: metaID, Version: version, PublishedAt: time.Now().UTC()}
	if err := r.store.Set(ctx, CollectionMeta, metaID, meta); err != nil {
		return fmt.Errorf("failed to record menu version: %w", err)
	}
	return nil
}

// SetStock writes only the stock field of a product document.
func (r *MenuRepo) SetStock(ctx context.Context, productID string, stock int) error {
	if err := r.store.Update(ctx, CollectionProducts, productID, map[string]any{"stock": stock}); err != nil {
		return fmt.Errorf("failed to update stock of %s: %w", productID, err)
	}
	return nil
}

func (r *MenuRepo) staleIDs(ctx context.Context, collection string, keep map[string]bool) ([]string, error) {
	var existing []docID
	if err := r.store.GetAll(ctx, collection, &existing); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	var stale []string
	for _, d := range existing {
		if !keep[d.ID] {
			stale = append(stale, d.ID)
		}
	}
	return stale, nil
}

func productIDs(products []domain.Product) map[string]bool {
	out := make(map[string]bool, len(products))
	for _, p := range products {
		out[p.ID] = true
	}
	return out
}

func categoryIDs(categories []domain.Category) map[string]bool {
	out := make(map[string]bool, len(categories))
	for _, c := range categories {
		out[c.ID] = true
	}
	return out
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
