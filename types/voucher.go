package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// TimestampLayout is the UTC ISO-8601 form used for combine timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

type VoucherStatus string

const (
	StatusActive   VoucherStatus = "Active"
	StatusExpired  VoucherStatus = "Expired"
	StatusRedeemed VoucherStatus = "Redeemed"
)

// ParseStatus maps known statuses case-insensitively onto their canonical
// spelling. Unknown values are kept as given.
func ParseStatus(s string) VoucherStatus {
	s = strings.TrimSpace(s)
	for _, st := range []VoucherStatus{StatusActive, StatusExpired, StatusRedeemed} {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return VoucherStatus(s)
}

// Voucher is one row of the SGV table.
type Voucher struct {
	ID        uint                `json:"-" gorm:"primary_key"`
	Seat      string              `json:"seat"`
	Passenger string              `json:"passenger" gorm:"index"`
	Serial    string              `json:"serial" gorm:"unique_index"`
	Amount    decimal.NullDecimal `json:"amount" gorm:"type:decimal(20,4)"`
	Status    VoucherStatus       `json:"status"`
	Expiry    string              `json:"expiry"`
}

// AmountOrZero treats an absent amount as zero.
func (v *Voucher) AmountOrZero() decimal.Decimal {
	if !v.Amount.Valid {
		return decimal.Zero
	}
	return v.Amount.Decimal
}

func (v *Voucher) IsActive() bool {
	return v.Status == StatusActive
}

// CombineRecord remembers one combine so it can be reverted.
type CombineRecord struct {
	ID           string          `json:"id"`
	Passenger    string          `json:"passenger"`
	NewSerial    string          `json:"newSerial"`
	Sources      []string        `json:"sources"`
	Total        decimal.Decimal `json:"total"`
	ArtifactPath string          `json:"artifactPath"`
	CreatedAt    time.Time       `json:"timestamp"`
}

// Label renders the record the way the revert picker lists it.
func (r *CombineRecord) Label() string {
	return fmt.Sprintf("%s – %s – %d source(s) – %s",
		r.NewSerial, FormatMoney(r.Total), len(r.Sources), r.CreatedAt.UTC().Format(TimestampLayout))
}

// FormatMoney renders an amount as $1,234.50
func FormatMoney(d decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// Value stores the status as plain text.
func (s VoucherStatus) Value() (driver.Value, error) {
	return string(s), nil
}
