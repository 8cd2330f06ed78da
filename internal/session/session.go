package session

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeroshade/sgvdesk/internal/catalog"
	"github.com/zeroshade/sgvdesk/internal/ledger"
	"github.com/zeroshade/sgvdesk/types"
)

// Session is the state of one operator. Callers hold Lock for the whole
// of an action; none of the methods lock on their own.
type Session struct {
	ID string

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool

	book   *ledger.Book
	picked map[string]struct{}

	loadCatalog func() ([]*types.CatalogItem, error)
	catalogDone bool
	items       []*types.CatalogItem
	inventory   *catalog.Inventory

	Search     string
	SeenNotice bool
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) Book() *ledger.Book { return s.book }

// Closed reports whether the session was ended or evicted after the
// caller looked it up. Check it after Lock.
func (s *Session) Closed() bool { return s.closed }

func (s *Session) Logger() *slog.Logger {
	return slog.With("session", s.ID)
}

// Picked returns every selected serial, sorted.
func (s *Session) Picked() []string {
	out := make([]string, 0, len(s.picked))
	for serial := range s.picked {
		out = append(out, serial)
	}
	sort.Strings(out)
	return out
}

// ApplySelection merges the checked boxes of the rows currently on
// screen into the selection. Visible rows that are unchecked get
// dropped; rows of other views keep their state.
func (s *Session) ApplySelection(visible, checked []string) {
	keep := make(map[string]struct{}, len(checked))
	for _, serial := range checked {
		keep[serial] = struct{}{}
	}
	for _, serial := range visible {
		if _, ok := keep[serial]; !ok {
			delete(s.picked, serial)
		}
	}
	for serial := range keep {
		s.picked[serial] = struct{}{}
	}
}

func (s *Session) ClearSelection() {
	s.picked = make(map[string]struct{})
}

// Summary describes what a combine of the current selection would do.
type Summary struct {
	Passenger      string          `json:"passenger"`
	Selected       []string        `json:"selected"`
	Count          int             `json:"count"`
	Total          decimal.Decimal `json:"total"`
	TotalText      string          `json:"totalText"`
	CrossPassenger bool            `json:"crossPassenger"`
	CanCombine     bool            `json:"canCombine"`
	Warning        string          `json:"warning,omitempty"`
	Confirm        string          `json:"confirm,omitempty"`
}

func (s *Session) Summary(passenger string) (Summary, error) {
	rows, err := s.book.Table().BySerials(s.Picked())
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Passenger: passenger, Selected: []string{}, Total: decimal.Zero}
	owners := make(map[string]struct{})
	var inactive *types.Voucher
	for i := range rows {
		owners[rows[i].Passenger] = struct{}{}
		if rows[i].Passenger != passenger {
			continue
		}
		if !rows[i].IsActive() && inactive == nil {
			inactive = &rows[i]
		}
		sum.Selected = append(sum.Selected, rows[i].Serial)
		sum.Total = sum.Total.Add(rows[i].AmountOrZero())
	}
	sum.Count = len(sum.Selected)
	sum.TotalText = types.FormatMoney(sum.Total)
	sum.CrossPassenger = len(owners) > 1

	switch {
	case sum.CrossPassenger:
		sum.Warning = ledger.ErrCrossPassenger.Error()
	case inactive != nil:
		sum.Warning = fmt.Sprintf("%v: %s is %s", ledger.ErrNotActive, inactive.Serial, inactive.Status)
	case sum.Count == 1:
		sum.Warning = ledger.ErrTooFewVouchers.Error()
	case sum.Count >= 2:
		sum.CanCombine = true
		sum.Confirm = fmt.Sprintf("I confirm combining %d vouchers with a total value of %s for Passenger %s.",
			sum.Count, sum.TotalText, passenger)
	}
	return sum, nil
}

// Combine combines the passenger's selected vouchers and clears the
// selection on success.
func (s *Session) Combine(passenger string) (*types.CombineRecord, error) {
	sum, err := s.Summary(passenger)
	if err != nil {
		return nil, err
	}
	if sum.CrossPassenger {
		return nil, ledger.ErrCrossPassenger
	}

	rec, err := s.book.Combine(passenger, sum.Selected)
	if err != nil {
		return nil, err
	}
	s.ClearSelection()
	return rec, nil
}

// Revert undoes recordID, or the passenger's only combine when recordID
// is empty.
func (s *Session) Revert(passenger, recordID string) (*types.CombineRecord, error) {
	var (
		rec *types.CombineRecord
		err error
	)
	if recordID == "" {
		rec, err = s.book.RevertLatest(passenger)
	} else {
		r, ok := s.book.Record(recordID)
		if !ok || r.Passenger != passenger {
			return nil, ledger.ErrNoCombineRecord
		}
		rec, err = s.book.Revert(recordID)
	}
	if err != nil {
		return nil, err
	}
	s.ClearSelection()
	return rec, nil
}

// Upload replaces the voucher table.
func (s *Session) Upload(rows []types.Voucher) error {
	if err := s.book.Load(rows); err != nil {
		return err
	}
	s.ClearSelection()
	return nil
}

// Catalog returns the priced catalog, loading it on first use. A catalog
// that cannot be read is reported as empty.
func (s *Session) Catalog() []*types.CatalogItem {
	if !s.catalogDone {
		s.catalogDone = true
		items, err := s.loadCatalog()
		if err != nil {
			s.Logger().Warn("catalog unavailable", "error", err)
		}
		s.items = items
	}
	return s.items
}

// Inventory builds the cart inventory on first use. It is nil when there
// is no catalog.
func (s *Session) Inventory() *catalog.Inventory {
	if s.inventory == nil {
		items := s.Catalog()
		if len(items) == 0 {
			return nil
		}
		s.inventory = catalog.Build(items)
	}
	return s.inventory
}

func (s *Session) AcknowledgeNotice() {
	s.SeenNotice = true
}

func (s *Session) close() error {
	s.closed = true
	return s.book.Close()
}
