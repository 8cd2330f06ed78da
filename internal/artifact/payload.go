package artifact

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeroshade/sgvdesk/types"
)

// Payload is the JSON object a combined voucher's artifact encodes.
type Payload struct {
	CombinedSerial string   `json:"combined_serial"`
	Passenger      string   `json:"passenger"`
	TotalAmount    float64  `json:"total_amount"`
	SourceSerials  []string `json:"source_serials"`
	CreatedAt      string   `json:"created_at"`
}

func NewPayload(serial, passenger string, total decimal.Decimal, sources []string, created time.Time) Payload {
	return Payload{
		CombinedSerial: serial,
		Passenger:      passenger,
		TotalAmount:    total.InexactFloat64(),
		SourceSerials:  append([]string(nil), sources...),
		CreatedAt:      created.UTC().Format(types.TimestampLayout),
	}
}

// PayloadFor rebuilds the payload of an existing combine.
func PayloadFor(rec *types.CombineRecord) Payload {
	return NewPayload(rec.NewSerial, rec.Passenger, rec.Total, rec.Sources, rec.CreatedAt)
}
