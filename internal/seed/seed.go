package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

var ErrNotEmpty = errors.New("store already holds a menu")

// Menu is the seed file layout.
type Menu struct {
	Categories []domain.Category `yaml:"categories"`
	Products   []domain.Product  `yaml:"products"`
}

// Default is the menu a fresh install starts with.
func Default() Menu {
	return Menu{
		Categories: []domain.Category{
			{ID: "frangos", Name: "Frangos"},
			{ID: "acompanhamentos", Name: "Acompanhamentos"},
			{ID: "bebidas", Name: "Bebidas"},
		},
		Products: []domain.Product{
			{ID: "1", Name: "Frango Assado Inteiro", Description: "Frango temperado especial, assado lentamente", Price: 35.00, CategoryID: "frangos", Available: true},
			{ID: "2", Name: "Meio Frango Assado", Description: "Porção individual de nosso frango especial", Price: 20.00, CategoryID: "frangos", Available: true},
			{ID: "3", Name: "Batata Frita", Description: "Porção de batata frita crocante", Price: 12.00, CategoryID: "acompanhamentos", Available: true},
			{ID: "4", Name: "Farofa Especial", Description: "Farofa com bacon e ovos", Price: 8.00, CategoryID: "acompanhamentos", Available: true},
			{ID: "5", Name: "Salada de Alface", Description: "Folhas frescas com tomate e cebola", Price: 6.00, CategoryID: "acompanhamentos", Available: true},
			{ID: "6", Name: "Refrigerante Lata", Description: "Coca-Cola, Guaraná ou Fanta", Price: 5.00, CategoryID: "bebidas", Available: true},
			{ID: "7", Name: "Suco Natural", Description: "Laranja, Limão ou Maracujá", Price: 7.00, CategoryID: "bebidas", Available: true},
		},
	}
}

func Parse(r io.Reader) (Menu, error) {
	var m Menu
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Menu{}, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := m.check(); err != nil {
		return Menu{}, err
	}
	return m, nil
}

func LoadFile(path string) (Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return Menu{}, err
	}
	defer f.Close()
	return Parse(f)
}

func (m Menu) check() error {
	cats := map[string]bool{}
	for _, c := range m.Categories {
		if c.ID == "" || c.Name == "" {
			return fmt.Errorf("category %q: id and name are required", c.ID)
		}
		cats[c.ID] = true
	}
	seen := map[string]bool{}
	for _, p := range m.Products {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("product %q: id and name are required", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("product %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if p.CategoryID != "" && !cats[p.CategoryID] {
			return fmt.Errorf("product %q: unknown category %q", p.ID, p.CategoryID)
		}
		if p.Price < 0 || p.Stock < 0 {
			return fmt.Errorf("product %q: negative price or stock", p.ID)
		}
	}
	return nil
}

// Apply publishes m as the next menu version. A store that already holds
// products is left alone unless force is set.
func Apply(ctx context.Context, repo *repos.MenuRepo, m Menu, force bool) (int64, error) {
	current, err := repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(current.Products) > 0 && !force {
		return 0, ErrNotEmpty
	}

	now := time.Now().UTC()
	categories := make([]domain.Category, len(m.Categories))
	for i, c := range m.Categories {
		c.CreatedAt, c.UpdatedAt = now, now
		categories[i] = c
	}
	version := current.Version + 1
	if err := repo.Publish(ctx, m.Products, categories, version); err != nil {
		return 0, err
	}
	return version, nil
}
