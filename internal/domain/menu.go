package domain

import (
	"sort"
	"time"
)

const UncategorizedName = "Sem categoria"

type Category struct {
	ID        string    `json:"id" bson:"_id" yaml:"id"`
	Name      string    `json:"name" bson:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Product is a menu entry. Category holds the free-text category used by
// menus saved before categories became documents of their own.
type Product struct {
	ID              string  `json:"id" bson:"_id" yaml:"id"`
	Name            string  `json:"name" bson:"name" yaml:"name"`
	Description     string  `json:"description" bson:"description" yaml:"description"`
	Price           float64 `json:"price" bson:"price" yaml:"price"`
	CategoryID      string  `json:"categoryId" bson:"categoryId" yaml:"categoryId"`
	Category        string  `json:"category,omitempty" bson:"category,omitempty" yaml:"category,omitempty"`
	Image           string  `json:"image,omitempty" bson:"image,omitempty" yaml:"image,omitempty"`
	Available       bool    `json:"available" bson:"available" yaml:"available"`
	HasStockControl bool    `json:"hasStockControl" bson:"hasStockControl" yaml:"hasStockControl"`
	Stock           int     `json:"stock" bson:"stock" yaml:"stock"`
}

// CanAddToCart reports whether one more unit fits on top of inCart.
func (p Product) CanAddToCart(inCart int) bool {
	if !p.Available {
		return false
	}
	if p.HasStockControl && inCart >= p.Stock {
		return false
	}
	return true
}

// DecrementStock lowers stock by qty, never below zero. Products without
// stock control are returned unchanged.
func (p Product) DecrementStock(qty int) Product {
	if !p.HasStockControl {
		return p
	}
	p.Stock = ClampStock(p.Stock - qty)
	return p
}

func ClampStock(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// CategoryName resolves the display name of a product's category: the
// category document first, then the legacy free-text value.
func CategoryName(p Product, categories []Category) string {
	for _, c := range categories {
		if c.ID == p.CategoryID && p.CategoryID != "" {
			return c.Name
		}
	}
	if p.Category != "" {
		return p.Category
	}
	return UncategorizedName
}

type MenuSection struct {
	Category string    `json:"category"`
	Products []Product `json:"products"`
}

// GroupByCategory returns the available products grouped under their
// category names, sections sorted by name.
func GroupByCategory(products []Product, categories []Category) []MenuSection {
	idx := map[string]int{}
	var out []MenuSection
	for _, p := range products {
		if !p.Available {
			continue
		}
		name := CategoryName(p, categories)
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, MenuSection{Category: name})
		}
		out[i].Products = append(out[i].Products, p)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Category < out[b].Category })
	return out
}
