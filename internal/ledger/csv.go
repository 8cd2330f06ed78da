package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zeroshade/sgvdesk/types"
)

const (
	ColSeat      = "Seat No."
	ColPassenger = "Passenger"
	ColSerial    = "Voucher Serial No."
	ColAmount    = "SGV Amount"
	ColStatus    = "Status"
	ColExpiry    = "Date of Expiry"
)

// SampleFiles are tried in order inside the data directory.
var SampleFiles = []string{"big_sample_vouchers_v2.csv", "big_sample_vouchers.csv"}

// ReadCSV parses a voucher sheet. Missing columns read as empty, unknown
// columns (Remarks among them) are ignored and amounts that are not
// numbers become absent. Rows without a serial are dropped, as are later
// rows repeating an earlier serial.
func ReadCSV(r io.Reader) ([]types.Voucher, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		out     []types.Voucher
		seen    = make(map[string]struct{})
		skipped int
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		serial := field(rec, ColSerial)
		if serial == "" {
			skipped++
			continue
		}
		if _, dup := seen[serial]; dup {
			skipped++
			continue
		}
		seen[serial] = struct{}{}

		out = append(out, types.Voucher{
			Seat:      field(rec, ColSeat),
			Passenger: field(rec, ColPassenger),
			Serial:    serial,
			Amount:    parseAmount(field(rec, ColAmount)),
			Status:    types.ParseStatus(field(rec, ColStatus)),
			Expiry:    field(rec, ColExpiry),
		})
	}

	if skipped > 0 {
		slog.Warn("dropped voucher rows", "count", skipped, "reason", "missing or duplicate serial")
	}
	return out, nil
}

func parseAmount(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// SampleVouchers is the table used when no sample sheet is available.
func SampleVouchers() []types.Voucher {
	row := func(serial string, amount int64, status types.VoucherStatus, expiry string) types.Voucher {
		return types.Voucher{
			Seat:      "51G",
			Passenger: "ABBOTT CLAIRE",
			Serial:    serial,
			Amount:    decimal.NullDecimal{Decimal: decimal.NewFromInt(amount), Valid: true},
			Status:    status,
			Expiry:    expiry,
		}
	}
	return []types.Voucher{
		row("SR1000000953", 100, types.StatusActive, "2026-01-01"),
		row("SR1000000954", 75, types.StatusActive, "2026-03-03"),
		row("SR1000000123", 50, types.StatusExpired, "2025-12-31"),
	}
}

// LoadDefault reads the first sample sheet found in dir and falls back to
// SampleVouchers. The returned source names where the rows came from.
func LoadDefault(dir string) ([]types.Voucher, string, error) {
	for _, name := range SampleFiles {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}

		rows, err := ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", name, err)
		}
		return rows, name, nil
	}
	return SampleVouchers(), "built-in sample", nil
}
