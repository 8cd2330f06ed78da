package catalog

import (
	"hash/fnv"
	"math/rand"

	"github.com/zeroshade/sgvdesk/types"
)

// CartCodes is the fixed, ordered set of sales carts.
var CartCodes = []string{"S1", "S2", "S3"}

const maxStartingQty = 2

type BinStock struct {
	Bin     string            `json:"bin"`
	Entries []types.CartEntry `json:"items"`
}

// Total is the end-of-bin count shown under each bin listing.
func (b *BinStock) Total() int {
	total := 0
	for _, e := range b.Entries {
		total += e.CartCount
	}
	return total
}

type CartInventory struct {
	Cart string     `json:"cart"`
	Bins []BinStock `json:"bins"`
}

func (c *CartInventory) Bin(name string) (*BinStock, bool) {
	for i := range c.Bins {
		if c.Bins[i].Bin == name {
			return &c.Bins[i], true
		}
	}
	return nil, false
}

// Inventory is the per-cart stock generated from the bin templates.
type Inventory struct {
	Carts []CartInventory `json:"carts"`
}

func (inv *Inventory) Cart(code string) (*CartInventory, bool) {
	for i := range inv.Carts {
		if inv.Carts[i].Cart == code {
			return &inv.Carts[i], true
		}
	}
	return nil, false
}

// BuildInventory stocks every cart from the templates. Each cart draws its
// quantities from its own generator so carts never influence each other.
func BuildInventory(templates []BinTemplate, carts []string) *Inventory {
	inv := &Inventory{Carts: make([]CartInventory, 0, len(carts))}
	for _, code := range carts {
		r := rand.New(rand.NewSource(cartSeed(code)))
		cart := CartInventory{Cart: code, Bins: make([]BinStock, 0, len(templates))}
		for _, tmpl := range templates {
			stock := BinStock{Bin: tmpl.Name, Entries: make([]types.CartEntry, 0, len(tmpl.Items))}
			for _, it := range tmpl.Items {
				q := r.Intn(maxStartingQty + 1)
				stock.Entries = append(stock.Entries, types.CartEntry{
					CatalogItem: it,
					Quantity:    q,
					CartCount:   q,
				})
			}
			cart.Bins = append(cart.Bins, stock)
		}
		inv.Carts = append(inv.Carts, cart)
	}
	return inv
}

func cartSeed(code string) int64 {
	h := fnv.New32a()
	h.Write([]byte(code))
	return int64(h.Sum32())
}

// Build runs the whole pipeline from priced items to the default cart layout.
func Build(items []*types.CatalogItem) *Inventory {
	return BuildInventory(DefaultBins(items), CartCodes)
}
