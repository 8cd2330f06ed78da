package ledger

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zeroshade/sgvdesk/internal/artifact"
	"github.com/zeroshade/sgvdesk/types"
)

var (
	ErrTooFewVouchers  = errors.New("at least two vouchers are required to combine")
	ErrCrossPassenger  = errors.New("eSGVs cannot be combined across multiple passengers")
	ErrUnknownVoucher  = errors.New("voucher not found")
	ErrNotActive       = errors.New("only Active vouchers can be combined")
	ErrNoCombineRecord = errors.New("no combined voucher to revert")
	ErrAmbiguousRevert = errors.New("more than one combined voucher, choose which one to revert")
)

// AmbiguousRevertError carries the records the caller has to choose from.
type AmbiguousRevertError struct {
	Options []*types.CombineRecord
}

func (e *AmbiguousRevertError) Error() string {
	return fmt.Sprintf("%s (%d options)", ErrAmbiguousRevert, len(e.Options))
}

func (e *AmbiguousRevertError) Unwrap() error { return ErrAmbiguousRevert }

// ArtifactStore persists the scannable artifact of a combined voucher.
type ArtifactStore interface {
	Write(p artifact.Payload) (string, error)
	Remove(path string) error
}

const serialAttempts = 5

// Book couples the voucher table with the ordered list of combines that
// can still be undone.
type Book struct {
	table     *Table
	artifacts ArtifactStore

	records []*types.CombineRecord
	index   map[string]int

	now    func() time.Time
	suffix func() (string, error)
}

func NewBook(table *Table, artifacts ArtifactStore) *Book {
	return &Book{
		table:     table,
		artifacts: artifacts,
		index:     make(map[string]int),
		now:       time.Now,
		suffix:    randomSuffix,
	}
}

func (b *Book) Table() *Table { return b.table }

func (b *Book) Close() error { return b.table.Close() }

// Load replaces the voucher table. Combine records refer to rows of the
// old table, so they are forgotten; their artifacts stay on disk.
func (b *Book) Load(rows []types.Voucher) error {
	if err := b.table.Replace(rows); err != nil {
		return err
	}
	b.records = nil
	b.index = make(map[string]int)
	return nil
}

// Combine redeems the given vouchers of passenger and records one new
// voucher worth their sum, itself already Redeemed. Nothing is mutated
// unless every check passes and the artifact was written.
func (b *Book) Combine(passenger string, serials []string) (*types.CombineRecord, error) {
	serials = dedupe(serials)
	if len(serials) < 2 {
		return nil, ErrTooFewVouchers
	}

	rows, err := b.table.BySerials(serials)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(serials) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoucher, missing(serials, rows))
	}

	total := decimal.Zero
	sources := make([]string, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.Passenger != passenger {
			return nil, ErrCrossPassenger
		}
		if !row.IsActive() {
			return nil, fmt.Errorf("%w: %s is %s", ErrNotActive, row.Serial, row.Status)
		}
		total = total.Add(row.AmountOrZero())
		sources = append(sources, row.Serial)
	}

	created := b.now().UTC()
	serial, err := b.newSerial(created)
	if err != nil {
		return nil, err
	}

	path, err := b.artifacts.Write(artifact.NewPayload(serial, passenger, total, sources, created))
	if err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	row := types.Voucher{
		Passenger: passenger,
		Serial:    serial,
		Amount:    decimal.NullDecimal{Decimal: total, Valid: true},
		Status:    types.StatusRedeemed,
	}
	if err := b.table.applyCombine(sources, row); err != nil {
		if rmErr := b.artifacts.Remove(path); rmErr != nil {
			slog.Warn("failed to remove orphaned artifact", "path", path, "error", rmErr)
		}
		return nil, err
	}

	rec := &types.CombineRecord{
		ID:           uuid.NewString(),
		Passenger:    passenger,
		NewSerial:    serial,
		Sources:      sources,
		Total:        total,
		ArtifactPath: path,
		CreatedAt:    created,
	}
	b.index[rec.ID] = len(b.records)
	b.records = append(b.records, rec)

	slog.Info("combined vouchers", "passenger", passenger, "serial", serial,
		"sources", len(sources), "total", total.String())
	return rec, nil
}

// Revert undoes the combine identified by id, wherever it sits in the
// history.
func (b *Book) Revert(id string) (*types.CombineRecord, error) {
	pos, ok := b.index[id]
	if !ok {
		return nil, ErrNoCombineRecord
	}
	rec := b.records[pos]

	if err := b.table.applyRevert(rec.Sources, rec.NewSerial); err != nil {
		return nil, err
	}
	if rec.ArtifactPath != "" {
		if err := b.artifacts.Remove(rec.ArtifactPath); err != nil {
			slog.Debug("artifact already gone", "path", rec.ArtifactPath, "error", err)
		}
	}

	b.records = append(b.records[:pos], b.records[pos+1:]...)
	b.reindex()

	slog.Info("reverted combine", "passenger", rec.Passenger, "serial", rec.NewSerial)
	return rec, nil
}

// RevertLatest reverts the passenger's only combine. With several
// candidates it returns an *AmbiguousRevertError listing them.
func (b *Book) RevertLatest(passenger string) (*types.CombineRecord, error) {
	opts := b.Records(passenger)
	switch len(opts) {
	case 0:
		return nil, ErrNoCombineRecord
	case 1:
		return b.Revert(opts[0].ID)
	default:
		return nil, &AmbiguousRevertError{Options: opts}
	}
}

// Records returns the passenger's revertible combines, most recent first.
func (b *Book) Records(passenger string) []*types.CombineRecord {
	out := []*types.CombineRecord{}
	for i := len(b.records) - 1; i >= 0; i-- {
		if b.records[i].Passenger == passenger {
			out = append(out, b.records[i])
		}
	}
	return out
}

func (b *Book) Record(id string) (*types.CombineRecord, bool) {
	pos, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.records[pos], true
}

func (b *Book) RecordBySerial(serial string) (*types.CombineRecord, bool) {
	for _, r := range b.records {
		if r.NewSerial == serial {
			return r, true
		}
	}
	return nil, false
}

func (b *Book) reindex() {
	b.index = make(map[string]int, len(b.records))
	for i, r := range b.records {
		b.index[r.ID] = i
	}
}

// newSerial builds SR<yyyymmddHHMMSS><4 digits>, retrying the random
// part when the table already holds the candidate.
func (b *Book) newSerial(at time.Time) (string, error) {
	stamp := "SR" + at.Format("20060102150405")
	for i := 0; i < serialAttempts; i++ {
		sfx, err := b.suffix()
		if err != nil {
			return "", err
		}
		cand := stamp + sfx
		taken, err := b.table.Exists(cand)
		if err != nil {
			return "", err
		}
		if !taken {
			return cand, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique serial after %d attempts", serialAttempts)
}

func randomSuffix() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func missing(want []string, got []types.Voucher) string {
	have := make(map[string]struct{}, len(got))
	for _, v := range got {
		have[v.Serial] = struct{}{}
	}
	for _, s := range want {
		if _, ok := have[s]; !ok {
			return s
		}
	}
	return ""
}
