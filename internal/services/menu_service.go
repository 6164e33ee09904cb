package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/queue"
	"storefront/internal/repos"
)

var (
	ErrOffline          = errors.New("menu store unreachable")
	ErrConflict         = errors.New("remote menu changed since it was loaded")
	ErrPublishing       = errors.New("publish already in progress")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateID      = errors.New("id already in use")
)

type MenuState string

const (
	StateLoading    MenuState = "loading"
	StateClean      MenuState = "clean"
	StateDirty      MenuState = "dirty"
	StatePublishing MenuState = "publishing"
)

// MenuStore is the persistence the draft is loaded from and published to.
type MenuStore interface {
	Load(ctx context.Context) (repos.MenuSnapshot, error)
	RemoteVersion(ctx context.Context) (int64, error)
	Publish(ctx context.Context, products []domain.Product, categories []domain.Category, version int64) error
	SetStock(ctx context.Context, productID string, stock int) error
}

type PublishOptions struct {
	// Force skips the remote version check.
	Force bool
}

// MenuService holds the working copy of the menu. Shoppers read it, the
// admin panel edits it, and Publish writes it back to the store.
type MenuService struct {
	repo   MenuStore
	broker queue.Broker
	log    *zap.SugaredLogger

	mu         sync.RWMutex
	products   []domain.Product
	categories []domain.Category
	snapshot   repos.MenuSnapshot
	version    int64
	dirty      bool
	revision   uint64
	loading    bool
	publishing bool
	offline    bool

	now   func() time.Time
	newID func() string
}

func NewMenuService(repo MenuStore, broker queue.Broker, log *zap.SugaredLogger) *MenuService {
	if broker == nil {
		broker = queue.NopBroker{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MenuService{
		repo:   repo,
		broker: broker,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Load replaces the working copy with the persisted menu. When the store
// cannot be read the menu is left empty and clean, Offline reports true and
// the returned error wraps ErrOffline.
func (s *MenuService) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.publishing {
		s.mu.Unlock()
		return ErrPublishing
	}
	s.loading = true
	s.mu.Unlock()

	snap, err := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.dirty = false
	s.revision++

	if err != nil {
		s.products = nil
		s.categories = nil
		s.snapshot = repos.MenuSnapshot{}
		s.version = 0
		s.offline = true
		s.log.Warnw("menu load failed", "error", err)
		return fmt.Errorf("%w: %w", ErrOffline, err)
	}

	s.products = slices.Clone(snap.Products)
	s.categories = slices.Clone(snap.Categories)
	s.snapshot = cloneSnapshot(snap)
	s.version = snap.Version
	s.offline = false
	s.log.Infow("menu loaded",
		"products", len(snap.Products),
		"categories", len(snap.Categories),
		"version", snap.Version,
	)
	return nil
}

// Reload drops the draft and fetches the menu from the store again.
func (s *MenuService) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *MenuService) State() MenuState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.loading:
		return StateLoading
	case s.publishing:
		return StatePublishing
	case s.dirty:
		return StateDirty
	}
	return StateClean
}

func (s *MenuService) HasUnsavedChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *MenuService) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offline
}

func (s *MenuService) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *MenuService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *MenuService) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *MenuService) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.productIndex(id)
	if i < 0 {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Sections is the shopper view: available products grouped by category.
func (s *MenuService) Sections() []domain.MenuSection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.GroupByCategory(s.products, s.categories)
}

func (s *MenuService) AddProduct(p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.newID()
	} else if s.productIndex(p.ID) >= 0 {
		return domain.Product{}, ErrDuplicateID
	}
	if err := s.checkCategory(p.CategoryID); err != nil {
		return domain.Product{}, err
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Stock = domain.ClampStock(p.Stock)
	s.products = append(s.products, p)
	s.markDirty()
	return p, nil
}

// UpdateProduct replaces every field of product id with p.
func (s *MenuService) UpdateProduct(id string, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return domain.Product{}, ErrProductNotFound
	}
	if err := s.checkCategory(p.CategoryID); err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	p.Name = strings.TrimSpace(p.Name)
	p.Stock = domain.ClampStock(p.Stock)
	s.products[i] = p
	s.markDirty()
	return p, nil
}

func (s *MenuService) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return ErrProductNotFound
	}
	s.products = slices.Delete(s.products, i, i+1)
	s.markDirty()
	return nil
}

func (s *MenuService) ToggleAvailability(id string) (domain.Product, error) {
	return s.editProduct(id, func(p *domain.Product) {
		p.Available = !p.Available
	})
}

func (s *MenuService) SetStock(id string, stock int) (domain.Product, error) {
	return s.editProduct(id, func(p *domain.Product) {
		p.Stock = domain.ClampStock(stock)
	})
}

// AdjustStock adds delta to the stock, flooring the result at zero.
func (s *MenuService) AdjustStock(id string, delta int) (domain.Product, error) {
	return s.editProduct(id, func(p *domain.Product) {
		p.Stock = domain.ClampStock(p.Stock + delta)
	})
}

func (s *MenuService) AddCategory(name string) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := domain.Category{
		ID:        s.newID(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.categories = append(s.categories, c)
	s.markDirty()
	return c, nil
}

func (s *MenuService) UpdateCategory(id, name string) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return domain.Category{}, ErrCategoryNotFound
	}
	s.categories[i].Name = strings.TrimSpace(name)
	s.categories[i].UpdatedAt = s.now()
	s.markDirty()
	return s.categories[i], nil
}

// DeleteCategory removes the category together with its products and
// returns how many products went with it.
func (s *MenuService) DeleteCategory(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return 0, ErrCategoryNotFound
	}
	s.categories = slices.Delete(s.categories, i, i+1)
	before := len(s.products)
	s.products = slices.DeleteFunc(s.products, func(p domain.Product) bool {
		return p.CategoryID == id
	})
	s.markDirty()
	return before - len(s.products), nil
}

// ApplyStockDecrement records a sale of qty units: the draft and the
// snapshot both lose them and the dirty flag is left alone. The returned
// product carries the stock to persist, taken from the draft, or from the
// snapshot when the draft no longer has the product.
func (s *MenuService) ApplyStockDecrement(id string, qty int) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		out   domain.Product
		found bool
	)
	for j := range s.snapshot.Products {
		if s.snapshot.Products[j].ID == id {
			s.snapshot.Products[j] = s.snapshot.Products[j].DecrementStock(qty)
			out, found = s.snapshot.Products[j], true
		}
	}
	if i := s.productIndex(id); i >= 0 {
		s.products[i] = s.products[i].DecrementStock(qty)
		out, found = s.products[i], true
	}
	if !found {
		return domain.Product{}, ErrProductNotFound
	}
	return out, nil
}

// Publish writes the whole draft to the store. A draft loaded from an older
// remote version is refused with ErrConflict unless opts.Force is set. Edits
// made while the write is in flight keep the draft dirty.
func (s *MenuService) Publish(ctx context.Context, opts PublishOptions) error {
	s.mu.Lock()
	if s.publishing || s.loading {
		s.mu.Unlock()
		return ErrPublishing
	}
	if s.offline && !opts.Force {
		s.mu.Unlock()
		return ErrOffline
	}
	s.publishing = true
	products := slices.Clone(s.products)
	categories := slices.Clone(s.categories)
	loaded := s.version
	rev := s.revision
	s.mu.Unlock()

	version, err := s.publish(ctx, products, categories, loaded, opts.Force)

	s.mu.Lock()
	s.publishing = false
	if err != nil {
		s.mu.Unlock()
		s.log.Errorw("menu publish failed", "error", err, "version", loaded)
		return err
	}
	s.snapshot = repos.MenuSnapshot{Products: products, Categories: categories, Version: version}
	s.version = version
	s.offline = false
	if s.revision == rev {
		s.dirty = false
	}
	s.mu.Unlock()

	s.log.Infow("menu published",
		"version", version,
		"products", len(products),
		"categories", len(categories),
		"forced", opts.Force,
	)
	s.emit(ctx, queue.QueueMenuPublished, domain.MenuPublishedEvent{
		Version:    version,
		Products:   len(products),
		Categories: len(categories),
		Forced:     opts.Force,
		Timestamp:  s.now(),
	})
	return nil
}

func (s *MenuService) publish(ctx context.Context, products []domain.Product, categories []domain.Category, loaded int64, force bool) (int64, error) {
	remote, err := s.repo.RemoteVersion(ctx)
	if err != nil {
		return 0, err
	}
	if remote != loaded && !force {
		return 0, fmt.Errorf("%w: loaded %d, remote %d", ErrConflict, loaded, remote)
	}
	next := max(remote, loaded) + 1
	if err := s.repo.Publish(ctx, products, categories, next); err != nil {
		return 0, err
	}
	return next, nil
}

// Discard restores the last persisted menu held in memory.
func (s *MenuService) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishing {
		return ErrPublishing
	}
	s.products = slices.Clone(s.snapshot.Products)
	s.categories = slices.Clone(s.snapshot.Categories)
	s.dirty = false
	s.revision++
	return nil
}

func (s *MenuService) editProduct(id string, fn func(p *domain.Product)) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return domain.Product{}, ErrProductNotFound
	}
	fn(&s.products[i])
	s.markDirty()
	return s.products[i], nil
}

func (s *MenuService) markDirty() {
	s.dirty = true
	s.revision++
}

func (s *MenuService) checkCategory(id string) error {
	if id == "" || s.categoryIndex(id) >= 0 {
		return nil
	}
	return ErrCategoryNotFound
}

func (s *MenuService) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id })
}

func (s *MenuService) categoryIndex(id string) int {
	return slices.IndexFunc(s.categories, func(c domain.Category) bool { return c.ID == id })
}

func (s *MenuService) emit(ctx context.Context, queueName string, event any) {
	if err := queue.PublishJSON(ctx, s.broker, queueName, event); err != nil {
		s.log.Warnw("event publish failed", "queue", queueName, "error", err)
	}
}

func cloneSnapshot(snap repos.MenuSnapshot) repos.MenuSnapshot {
	return repos.MenuSnapshot{
		Products:   slices.Clone(snap.Products),
		Categories: slices.Clone(snap.Categories),
		Version:    snap.Version,
	}
}
