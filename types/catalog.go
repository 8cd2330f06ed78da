package types

// PriceSource names the pricing rule that produced a CatalogItem's price.
type PriceSource string

const (
	PriceOverride PriceSource = "override"
	PriceSpecial  PriceSource = "special"
	PriceSupplied PriceSource = "supplied"
	PriceGuessed  PriceSource = "guessed"
)

// CatalogItem is a priced retail item. Items are shared by bin templates and
// cart entries, so they are never modified after pricing.
type CatalogItem struct {
	SKU         string      `json:"sku"`
	Brand       string      `json:"brand"`
	Name        string      `json:"name"`
	Filename    string      `json:"img"`
	URL         string      `json:"url,omitempty"`
	Price       int         `json:"price"`
	PriceSource PriceSource `json:"priceSource"`
}

// CartEntry is the stock of one catalog item inside a cart bin
type CartEntry struct {
	*CatalogItem
	Quantity  int `json:"qty"`
	Damaged   int `json:"dmg"`
	CartCount int `json:"cart"`
}
