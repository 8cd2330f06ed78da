package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroshade/sgvdesk/internal/catalog"
	"github.com/zeroshade/sgvdesk/types"
)

func testItems() []*types.CatalogItem {
	return catalog.Price([]catalog.Record{
		{Brand: "Lindt", Name: "Swiss Chocolate Box", Filename: "a.png"},
		{Brand: "Coach", Name: "Leather Wallet", Filename: "b.png"},
		{Brand: "Dior", Name: "Sauvage", Filename: "c.png"},
		{Brand: "Bose", Name: "Earbuds", Filename: "d.png"},
	})
}

func TestDumpItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, dumpItems(&buf, testItems(), false))
	assert.Contains(t, buf.String(), "SKU")
	assert.Contains(t, buf.String(), "Leather Wallet")

	buf.Reset()
	require.NoError(t, dumpItems(&buf, testItems(), true))
	var got []types.CatalogItem
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 4)
}

func TestDumpCarts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, dumpCarts(&buf, catalog.Build(testItems()), false))
	out := buf.String()
	for _, cart := range catalog.CartCodes {
		assert.Contains(t, out, "Cart "+cart)
	}
	assert.Contains(t, out, "Total end")
}

func TestDumpSearch(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, dumpSearch(&buf, catalog.Build(testItems()), "  ", false))

	require.NoError(t, dumpSearch(&buf, catalog.Build(testItems()), "wallet", true))
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "name", got["mode"])
	assert.Equal(t, "wallet", got["term"])
}

func TestDumpVouchers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.csv")
	sheet := "Passenger,Voucher Serial No.,SGV Amount,Status\n" +
		"ZED,A,10,Active\nABBOTT,B,20,Active\nABBOTT,C,5.5,Active\nABBOTT,D,99,Expired\n"
	require.NoError(t, os.WriteFile(path, []byte(sheet), 0o644))

	var buf bytes.Buffer
	require.NoError(t, dumpVouchers(&buf, path, true))

	var got []passengerTotal
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "ABBOTT", got[0].Passenger)
	assert.Equal(t, 3, got[0].Vouchers)
	assert.Equal(t, 2, got[0].Active)
	assert.Equal(t, "25.5", got[0].Total.String())

	buf.Reset()
	require.NoError(t, dumpVouchers(&buf, path, false))
	assert.Contains(t, buf.String(), "$25.50")

	assert.Error(t, dumpVouchers(&buf, filepath.Join(t.TempDir(), "missing.csv"), false))
}
