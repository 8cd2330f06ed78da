package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/zeroshade/sgvdesk/internal/catalog"
	"github.com/zeroshade/sgvdesk/internal/ledger"
	"github.com/zeroshade/sgvdesk/types"
)

const usage = `usage: catalogtool [-catalog path] [-json] <command> [args]

commands:
  items            priced catalog with SKU and price rule
  bins             bin membership
  carts            per-cart stock sheet with bin totals
  search <query>   locations holding stock for a SKU prefix or name
  vouchers <csv>   check a voucher sheet and total it per passenger
`

func main() {
	catalogPath := flag.String("catalog", "catalog_krisshop.json", "catalog JSON file")
	asJSON := flag.Bool("json", false, "print JSON instead of a table")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	out := os.Stdout
	args := flag.Args()
	var err error
	switch args[0] {
	case "vouchers":
		if len(args) < 2 {
			log.Fatal("vouchers needs a CSV path")
		}
		err = dumpVouchers(out, args[1], *asJSON)
	case "items", "bins", "carts", "search":
		items, lerr := catalog.Load(*catalogPath)
		if lerr != nil {
			log.Fatalf("no catalog: %v", lerr)
		}
		switch args[0] {
		case "items":
			err = dumpItems(out, items, *asJSON)
		case "bins":
			err = dumpBins(out, catalog.DefaultBins(items), *asJSON)
		case "carts":
			err = dumpCarts(out, catalog.Build(items), *asJSON)
		case "search":
			if len(args) < 2 {
				log.Fatal("search needs a query")
			}
			err = dumpSearch(out, catalog.Build(items), args[1], *asJSON)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dumpItems(w io.Writer, items []*types.CatalogItem, asJSON bool) error {
	if asJSON {
		return writeJSON(w, items)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tBRAND\tNAME\tPRICE\tRULE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.SKU, it.Brand, it.Name, humanize.Comma(int64(it.Price)), it.PriceSource)
	}
	return tw.Flush()
}

func dumpBins(w io.Writer, bins []catalog.BinTemplate, asJSON bool) error {
	if asJSON {
		return writeJSON(w, bins)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range bins {
		fmt.Fprintf(tw, "%s\t%d items\n", b.Name, len(b.Items))
		for _, it := range b.Items {
			fmt.Fprintf(tw, "\t%s\t%s %s\n", it.SKU, it.Brand, it.Name)
		}
	}
	return tw.Flush()
}

func dumpCarts(w io.Writer, inv *catalog.Inventory, asJSON bool) error {
	if asJSON {
		return writeJSON(w, inv)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cart := range inv.Carts {
		fmt.Fprintf(tw, "Cart %s\n", cart.Cart)
		for i := range cart.Bins {
			stock := &cart.Bins[i]
			fmt.Fprintf(tw, "  %s\n", stock.Bin)
			fmt.Fprintln(tw, "\tSKU\tITEM\tQTY\tDMG\tCART")
			for _, e := range stock.Entries {
				fmt.Fprintf(tw, "\t%s\t%s %s\t%d\t%d\t%d\n", e.SKU, e.Brand, e.Name, e.Quantity, e.Damaged, e.CartCount)
			}
			fmt.Fprintf(tw, "\tTotal end\t\t\t\t%d\n", stock.Total())
		}
	}
	return tw.Flush()
}

func dumpSearch(w io.Writer, inv *catalog.Inventory, query string, asJSON bool) error {
	q, ok := catalog.ParseQuery(query)
	if !ok {
		return fmt.Errorf("empty query")
	}
	found := catalog.Search(inv, q)
	if asJSON {
		return writeJSON(w, map[string]interface{}{"mode": q.Mode, "term": q.Term, "locations": found})
	}
	if len(found) == 0 {
		fmt.Fprintf(w, "no stock for %q (%s search)\n", q.Term, q.Mode)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tAVAILABLE")
	for _, loc := range found {
		fmt.Fprintf(tw, "%s\t%d\n", loc.Label, loc.Available)
	}
	return tw.Flush()
}

type passengerTotal struct {
	Passenger string          `json:"passenger"`
	Vouchers  int             `json:"vouchers"`
	Active    int             `json:"active"`
	Total     decimal.Decimal `json:"activeTotal"`
}

func dumpVouchers(w io.Writer, path string, asJSON bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := ledger.ReadCSV(f)
	if err != nil {
		return err
	}

	byPax := map[string]*passengerTotal{}
	for i := range rows {
		v := &rows[i]
		pt, ok := byPax[v.Passenger]
		if !ok {
			pt = &passengerTotal{Passenger: v.Passenger, Total: decimal.Zero}
			byPax[v.Passenger] = pt
		}
		pt.Vouchers++
		if v.IsActive() {
			pt.Active++
			pt.Total = pt.Total.Add(v.AmountOrZero())
		}
	}
	totals := make([]*passengerTotal, 0, len(byPax))
	for _, pt := range byPax {
		totals = append(totals, pt)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Passenger < totals[j].Passenger })

	if asJSON {
		return writeJSON(w, totals)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PASSENGER\tVOUCHERS\tACTIVE\tACTIVE TOTAL")
	for _, pt := range totals {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", pt.Passenger, pt.Vouchers, pt.Active, types.FormatMoney(pt.Total))
	}
	return tw.Flush()
}
