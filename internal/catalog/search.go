package catalog

import (
	"strings"
	"unicode"

	"github.com/zeroshade/sgvdesk/types"
)

type Mode string

const (
	ModeSKU  Mode = "sku"
	ModeName Mode = "name"
)

// Query is a parsed inventory search.
type Query struct {
	Mode Mode   `json:"mode"`
	Term string `json:"term"`
}

// ParseQuery decides between SKU prefix and name search. The second return
// is false for blank input, which means "no search" rather than "no hits".
func ParseQuery(q string) (Query, bool) {
	s := strings.TrimSpace(q)
	if s == "" {
		return Query{}, false
	}

	if strings.HasPrefix(strings.ToUpper(s), SKUPrefix) || isDigits(s) {
		pfx := strings.ReplaceAll(strings.ToUpper(s), " ", "")
		if !strings.HasPrefix(pfx, SKUPrefix) {
			pfx = SKUPrefix + pfx
		}
		return Query{Mode: ModeSKU, Term: pfx}, true
	}
	return Query{Mode: ModeName, Term: strings.ToLower(s)}, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func (q Query) Match(it *types.CatalogItem) bool {
	if it == nil {
		return false
	}
	switch q.Mode {
	case ModeSKU:
		return strings.HasPrefix(strings.ToUpper(it.SKU), q.Term)
	case ModeName:
		return strings.Contains(strings.ToLower(it.Brand), q.Term) ||
			strings.Contains(strings.ToLower(it.Name), q.Term)
	}
	return false
}

// Location is a cart bin holding available stock for a search.
type Location struct {
	Label     string `json:"location"`
	Cart      string `json:"cart"`
	Bin       string `json:"bin"`
	Available int    `json:"available"`
}

// Search walks carts and bins in order and reports every bin whose matching
// entries add up to a positive quantity.
func Search(inv *Inventory, q Query) []Location {
	found := []Location{}
	if inv == nil {
		return found
	}
	for _, cart := range inv.Carts {
		for _, bin := range cart.Bins {
			cnt := 0
			for _, e := range bin.Entries {
				if q.Match(e.CatalogItem) {
					cnt += e.Quantity
				}
			}
			if cnt > 0 {
				found = append(found, Location{
					Label:     cart.Cart + " " + bin.Bin,
					Cart:      cart.Cart,
					Bin:       bin.Bin,
					Available: cnt,
				})
			}
		}
	}
	return found
}

// Filter keeps the entries of a bin that match q.
func Filter(entries []types.CartEntry, q Query) []types.CartEntry {
	out := make([]types.CartEntry, 0, len(entries))
	for _, e := range entries {
		if q.Match(e.CatalogItem) {
			out = append(out, e)
		}
	}
	return out
}
