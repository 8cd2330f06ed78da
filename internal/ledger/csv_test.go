package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroshade/sgvdesk/types"
)

func TestReadCSV(t *testing.T) {
	const sheet = "\ufeffSeat No.,Passenger,Voucher Serial No.,SGV Amount,Status,Date of Expiry,Remarks\n" +
		"51G,ABBOTT CLAIRE,SR1,100,active,2026-01-01,vip\n" +
		"51G,ABBOTT CLAIRE,SR2,n/a,Expired,2026-01-02,\n" +
		"51H, BAKER TOM ,SR3,12.50,On Hold,,\n" +
		"51H,BAKER TOM,,5,Active,,\n" +
		"51H,BAKER TOM,SR1,9,Active,,\n"

	rows, err := ReadCSV(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "51G", rows[0].Seat)
	assert.Equal(t, "SR1", rows[0].Serial)
	assert.Equal(t, types.StatusActive, rows[0].Status)
	assert.True(t, decimal.NewFromInt(100).Equal(rows[0].AmountOrZero()))
	assert.Equal(t, "2026-01-01", rows[0].Expiry)

	assert.False(t, rows[1].Amount.Valid)
	assert.Equal(t, types.StatusExpired, rows[1].Status)

	assert.Equal(t, "BAKER TOM", rows[2].Passenger)
	assert.Equal(t, types.VoucherStatus("On Hold"), rows[2].Status)
	assert.True(t, decimal.RequireFromString("12.5").Equal(rows[2].AmountOrZero()))
}

func TestReadCSVMissingColumns(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("Passenger,Voucher Serial No.\nP,S1\nP\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P", rows[0].Passenger)
	assert.Empty(t, rows[0].Seat)
	assert.Empty(t, rows[0].Expiry)
	assert.False(t, rows[0].Amount.Valid)
	assert.Equal(t, types.VoucherStatus(""), rows[0].Status)
}

func TestReadCSVEmpty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Passenger,Voucher Serial No.\n\"P,S1\n"))
	assert.Error(t, err)
}

func TestSampleVouchers(t *testing.T) {
	rows := SampleVouchers()
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "ABBOTT CLAIRE", r.Passenger)
		assert.Equal(t, "51G", r.Seat)
	}
	assert.Equal(t, "SR1000000953", rows[0].Serial)
	assert.Equal(t, types.StatusExpired, rows[2].Status)
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()

	rows, src, err := LoadDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, "built-in sample", src)
	assert.Len(t, rows, 3)

	sheet := "Passenger,Voucher Serial No.,SGV Amount,Status\nP,X1,1,Active\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big_sample_vouchers.csv"), []byte(sheet), 0o644))
	rows, src, err = LoadDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, "big_sample_vouchers.csv", src)
	require.Len(t, rows, 1)

	sheet = "Passenger,Voucher Serial No.\nP,V2a\nP,V2b\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big_sample_vouchers_v2.csv"), []byte(sheet), 0o644))
	rows, src, err = LoadDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, "big_sample_vouchers_v2.csv", src)
	assert.Len(t, rows, 2)
}
