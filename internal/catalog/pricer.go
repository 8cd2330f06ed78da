package catalog

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/zeroshade/sgvdesk/types"
)

// SKUPrefix leads every generated SKU.
const SKUPrefix = "K"

const skuSpace = 10_000_000

type priceKey struct {
	brand string
	name  string
}

var priceOverrides = buildOverrides([]struct {
	brand, name string
	price       int
}{
	{"COACH", "Women Miniatures Set", 71},
	{"MARC JACOBS", "Miniature Fragrance Set", 61},
	{"DIPTYQUE", "Orpheon EDP 75ml", 268},
	{"DIPTYQUE", "Eau Rose EDT 100ml", 209},
	{"TWG TEA", "1837 Black Tea 100g", 45},
	{"JOHNNIE WALKER", "Black Label 12YO 1L", 49},
	{"JOHNNIE WALKER", "Black Label 12 Year Old 1L", 49},
	{"JOHNNIE WALKER", "Black Label Aged 12 Years Blended Scotch Whisky - 1L", 49},
	{"TOM FORD", "Ombre Leather EDP 100ml", 270},
	{"SK-II", "Facial Treatment Essence 230ml", 325},
	{"KIEHL'S", "Ultra Facial Cream 50ml", 60},
	{"SHISEIDO", "Ultimune Power Infusing Concentrate 50ml", 150},
	{"GLENFIDDICH", "12 Year Old 1L", 89},
	{"MACALLAN", "Double Cask 12YO 0.7L", 129},
})

func buildOverrides(rows []struct {
	brand, name string
	price       int
}) map[priceKey]int {
	out := make(map[priceKey]int, len(rows))
	for _, r := range rows {
		out[priceKey{normalize(r.brand), normalize(r.name)}] = r.price
	}
	return out
}

// priceBand is a keyword category with the range guessed prices are drawn from.
type priceBand struct {
	keywords []string
	lo, hi   float64
}

// checked in order, the first band with a matching keyword wins
var priceBands = []priceBand{
	{[]string{"whisky", "scotch", "cognac", "hennessy", "martell", "macallan", "glen", "champagne", "vodka", "gin"}, 60, 320},
	{[]string{"edp", "edt", "cologne", "fragrance", "perfume"}, 80, 300},
	{[]string{"cream", "serum", "mask", "essence", "treatment", "lotion", "skincare"}, 40, 260},
	{[]string{"tea", "chocolate", "haribo", "toblerone", "lindt", "godiva"}, 10, 55},
	{[]string{"sunglasses", "bag", "crossbody", "passport", "spinner", "bracelet", "lipstick", "makeup"}, 40, 350},
}

var defaultBand = priceBand{lo: 30, hi: 250}

// normalize uppercases and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// SKU derives the stable item code for a brand and name pair.
func SKU(brand, name string) string {
	base := strings.ToUpper(strings.TrimSpace(brand) + "|" + strings.TrimSpace(name))
	sum := sha1.Sum([]byte(base))
	n, _ := strconv.ParseUint(hex.EncodeToString(sum[:4]), 16, 64)
	return fmt.Sprintf("%s%07d", SKUPrefix, n%skuSpace)
}

// ResolvePrice runs the pricing rules in priority order and reports which
// one produced the price.
func ResolvePrice(brand, name string, supplied *float64) (int, types.PriceSource) {
	nb, nn := normalize(brand), normalize(name)
	if p, ok := priceOverrides[priceKey{nb, nn}]; ok && p > 0 {
		return p, types.PriceOverride
	}

	if nb == "JOHNNIE WALKER" && strings.Contains(nn, "BLACK") && strings.Contains(nn, "1L") {
		return 49, types.PriceSpecial
	}

	if supplied != nil {
		if p := int(math.RoundToEven(*supplied)); p > 0 {
			return p, types.PriceSupplied
		}
	}

	return GuessPrice(brand, name), types.PriceGuessed
}

// GuessPrice draws a repeatable price from a generator seeded by the item text.
func GuessPrice(brand, name string) int {
	txt := strings.ToLower(brand + " " + name)
	r := rand.New(rand.NewSource(seedFromText(normalize(txt))))

	band := defaultBand
	for _, b := range priceBands {
		if containsAny(txt, b.keywords) {
			band = b
			break
		}
	}

	p := int(math.RoundToEven(band.lo + (band.hi-band.lo)*r.Float64()))
	if p < 1 {
		p = 1
	}
	return p
}

func seedFromText(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Price turns raw records into priced catalog items, dropping records that
// lack a brand, name or filename.
func Price(records []Record) []*types.CatalogItem {
	items := make([]*types.CatalogItem, 0, len(records))
	for _, rec := range records {
		brand := strings.TrimSpace(rec.Brand)
		name := strings.TrimSpace(rec.Name)
		filename := strings.TrimSpace(rec.Filename)
		if brand == "" || name == "" || filename == "" {
			continue
		}

		price, src := ResolvePrice(brand, name, rec.Price)
		items = append(items, &types.CatalogItem{
			SKU:         SKU(brand, name),
			Brand:       brand,
			Name:        name,
			Filename:    filename,
			URL:         strings.TrimSpace(rec.URL),
			Price:       price,
			PriceSource: src,
		})
	}
	return items
}
