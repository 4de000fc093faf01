// Package seed genera productos sintéticos y los carga en el store.
package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"catalog-api/internal/models"
)

// Categories y sus marcas
var Categories = map[string][]string{
	"Electronics":   {"Samsung", "Apple", "Sony", "LG", "Dell", "HP", "Lenovo", "Asus"},
	"Clothing":      {"Nike", "Adidas", "Zara", "H&M", "Uniqlo", "Levi's", "Gap", "Puma"},
	"Home & Garden": {"IKEA", "Home Depot", "Wayfair", "Target", "Walmart", "Lowes"},
	"Books":         {"Penguin", "HarperCollins", "Simon & Schuster", "Hachette", "Macmillan"},
	"Sports":        {"Nike", "Adidas", "Under Armour", "Puma", "Reebok", "New Balance"},
	"Toys":          {"LEGO", "Mattel", "Hasbro", "Fisher-Price", "Nerf", "Hot Wheels"},
	"Beauty":        {"L'Oréal", "Maybelline", "Neutrogena", "Dove", "Nivea", "Clinique"},
	"Food":          {"Nestlé", "Kraft", "General Mills", "Kellogg's", "Campbell's", "Heinz"},
}

// orden fijo para que la misma semilla dé los mismos datos
var categoryNames = []string{
	"Beauty", "Books", "Clothing", "Electronics", "Food", "Home & Garden", "Sports", "Toys",
}

var (
	adjectives = []string{"Premium", "Professional", "Advanced", "Classic", "Modern", "Ultimate", "Deluxe", "Essential"}
	words      = []string{"Nova", "Atlas", "Orbit", "Summit", "Harbor", "Maple", "Cobalt", "Ember", "Falcon", "Willow", "Quartz", "Tide"}
	features   = []string{
		"high-quality materials", "durable construction", "ergonomic design", "easy to use", "eco-friendly",
		"great value", "trusted brand", "premium quality", "long-lasting", "innovative features",
	}
	nouns = map[string][]string{
		"Electronics":   {"Pro", "Plus", "Max", "Air", "Ultra"},
		"Clothing":      {"Shirt", "Pants", "Jacket", "Shoes", "Dress"},
		"Home & Garden": {"Table", "Chair", "Lamp", "Shelf", "Cabinet"},
		"Books":         {"Journey", "Adventure", "Mystery", "Story", "Guide"},
		"Sports":        {"Shoes", "Mat", "Gear", "Equipment"},
		"Toys":          {"Set", "Collection", "Kit", "Pack"},
		"Beauty":        {"Cream", "Serum", "Lotion", "Oil", "Mask"},
		"Food":          {"Snack", "Cereal", "Sauce", "Mix"},
	}
)

const (
	minPriceCents = 999
	maxPriceCents = 99999
	maxAgeDays    = 730
	maxUpdateDays = 30
)

// Generator produce productos deterministas a partir de una semilla
type Generator struct {
	rng *rand.Rand
	now time.Time
}

func NewGenerator(seed uint64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now.UTC().Truncate(time.Second),
	}
}

// Product genera el producto con el id dado; el SKU se deriva del id y es único
func (g *Generator) Product(id int64) models.Product {
	category := categoryNames[g.rng.IntN(len(categoryNames))]
	brands := Categories[category]
	brand := brands[g.rng.IntN(len(brands))]
	name := g.name(category)

	created := g.now.
		Add(-time.Duration(g.rng.IntN(maxAgeDays+1)) * 24 * time.Hour).
		Add(-time.Duration(g.rng.IntN(86400)) * time.Second)
	span := g.now.Sub(created)
	if limit := maxUpdateDays * 24 * time.Hour; span > limit {
		span = limit
	}
	updated := created.Add(time.Duration(g.rng.Int64N(int64(span/time.Second)+1)) * time.Second)

	p := models.Product{
		ID:            id,
		SKU:           fmt.Sprintf("SKU-%08d", id),
		Name:          name,
		Category:      category,
		Brand:         brand,
		Price:         decimal.New(int64(minPriceCents+g.rng.IntN(maxPriceCents-minPriceCents+1)), -2),
		StockQuantity: int64(g.rng.IntN(1001)),
		Rating:        decimal.New(int64(10+g.rng.IntN(41)), -1),
		ReviewsCount:  int64(g.rng.IntN(5001)),
		CreatedAt:     created,
		UpdatedAt:     updated,
	}

	// algunos productos sin descripción
	if g.rng.IntN(20) != 0 {
		desc := g.description(category, name)
		p.Description = &desc
	}
	return p
}

// Batch genera n productos con ids consecutivos desde firstID
func (g *Generator) Batch(firstID int64, n int) []models.Product {
	out := make([]models.Product, n)
	for i := range out {
		out[i] = g.Product(firstID + int64(i))
	}
	return out
}

func (g *Generator) name(category string) string {
	return fmt.Sprintf("%s %s %s",
		pick(g.rng, adjectives),
		pick(g.rng, words),
		pick(g.rng, nouns[category]),
	)
}

func (g *Generator) description(category, name string) string {
	perm := g.rng.Perm(len(features))
	picked := []string{features[perm[0]], features[perm[1]], features[perm[2]]}
	return fmt.Sprintf("%s is a must-have product in the %s category. Features include %s.",
		name, category, strings.Join(picked, ", "))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}
