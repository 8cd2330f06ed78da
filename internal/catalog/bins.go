package catalog

import (
	"math/rand"

	"github.com/zeroshade/sgvdesk/types"
)

// BinNames is the fixed, ordered set of bins in every sales cart.
var BinNames = []string{"Bin 1", "Bin 2", "Bin A", "Bin B", "Bin C", "Bin D", "Bin E", "Bin F", "Bin G"}

const (
	binSeed   = 42
	MinPerBin = 3
	MaxPerBin = 7
)

// BinTemplate lists the catalog items stocked in a bin.
type BinTemplate struct {
	Name  string               `json:"bin"`
	Items []*types.CatalogItem `json:"items"`
}

// AllocateBins deals catalog items into the named bins from a single seeded
// shuffle. No item lands in two bins; trailing bins may come up short once
// the pool runs dry.
func AllocateBins(items []*types.CatalogItem, names []string, lo, hi int) []BinTemplate {
	r := rand.New(rand.NewSource(binSeed))

	pool := make([]int, len(items))
	for i := range pool {
		pool[i] = i
	}
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	bins := make([]BinTemplate, 0, len(names))
	for _, name := range names {
		n := lo + r.Intn(hi-lo+1)
		tmpl := BinTemplate{Name: name, Items: make([]*types.CatalogItem, 0, n)}
		for len(tmpl.Items) < n && len(pool) > 0 {
			idx := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			tmpl.Items = append(tmpl.Items, items[idx])
		}
		bins = append(bins, tmpl)
	}
	return bins
}

// DefaultBins allocates the standard bin layout.
func DefaultBins(items []*types.CatalogItem) []BinTemplate {
	return AllocateBins(items, BinNames, MinPerBin, MaxPerBin)
}
