package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroshade/sgvdesk/internal/artifact"
	"github.com/zeroshade/sgvdesk/internal/ledger"
	"github.com/zeroshade/sgvdesk/types"
)

func row(pax, serial string, amount int64, status types.VoucherStatus) types.Voucher {
	return types.Voucher{
		Passenger: pax,
		Serial:    serial,
		Amount:    decimal.NullDecimal{Decimal: decimal.NewFromInt(amount), Valid: true},
		Status:    status,
	}
}

func testRows() []types.Voucher {
	return []types.Voucher{
		row("P", "A", 100, types.StatusActive),
		row("P", "B", 75, types.StatusActive),
		row("P", "C", 10, types.StatusActive),
		row("Q", "D", 40, types.StatusActive),
	}
}

func testItems() []*types.CatalogItem {
	items := make([]*types.CatalogItem, 0, 40)
	for i := 0; i < 40; i++ {
		items = append(items, &types.CatalogItem{
			SKU:   fmt.Sprintf("K%07d", i),
			Brand: "Brand",
			Name:  "Item",
			Price: 10,
		})
	}
	return items
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st := NewStore(Options{
		TTL:       time.Hour,
		Artifacts: artifact.NewWriter(t.TempDir(), artifact.FormatJSON),
		Vouchers:  func() ([]types.Voucher, error) { return testRows(), nil },
		Catalog:   func() ([]*types.CatalogItem, error) { return testItems(), nil },
	})
	t.Cleanup(st.Shutdown)
	return st
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, created, err := newTestStore(t).Get("")
	require.NoError(t, err)
	require.True(t, created)
	return s
}

func TestSelectionMerge(t *testing.T) {
	s := newTestSession(t)

	s.ApplySelection([]string{"A", "B", "C"}, []string{"A", "B"})
	assert.Equal(t, []string{"A", "B"}, s.Picked())

	// another view keeps picks it cannot see
	s.ApplySelection([]string{"D"}, []string{"D"})
	assert.Equal(t, []string{"A", "B", "D"}, s.Picked())

	// unchecking a visible row drops it
	s.ApplySelection([]string{"A", "B", "C"}, []string{"B"})
	assert.Equal(t, []string{"B", "D"}, s.Picked())

	s.ClearSelection()
	assert.Empty(t, s.Picked())
}

func TestSummary(t *testing.T) {
	s := newTestSession(t)

	sum, err := s.Summary("P")
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
	assert.False(t, sum.CanCombine)
	assert.Empty(t, sum.Confirm)

	s.ApplySelection([]string{"A", "B", "C"}, []string{"A", "B"})
	sum, err = s.Summary("P")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, []string{"A", "B"}, sum.Selected)
	assert.Equal(t, "$175.00", sum.TotalText)
	assert.True(t, sum.CanCombine)
	assert.False(t, sum.CrossPassenger)
	assert.Equal(t, "I confirm combining 2 vouchers with a total value of $175.00 for Passenger P.", sum.Confirm)

	s.ApplySelection([]string{"D"}, []string{"D"})
	sum, err = s.Summary("P")
	require.NoError(t, err)
	assert.True(t, sum.CrossPassenger)
	assert.False(t, sum.CanCombine)
	assert.NotEmpty(t, sum.Warning)
	assert.Empty(t, sum.Confirm)

	s.ClearSelection()
	s.ApplySelection([]string{"A"}, []string{"A"})
	sum, err = s.Summary("P")
	require.NoError(t, err)
	assert.False(t, sum.CanCombine)
	assert.Equal(t, ledger.ErrTooFewVouchers.Error(), sum.Warning)
}

func TestSummaryBlocksInactiveSources(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Upload([]types.Voucher{
		row("P", "A", 100, types.StatusActive),
		row("P", "X", 50, types.StatusExpired),
	}))

	s.ApplySelection([]string{"A", "X"}, []string{"A", "X"})
	sum, err := s.Summary("P")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.False(t, sum.CanCombine)
	assert.Empty(t, sum.Confirm)
	assert.Equal(t, ledger.ErrNotActive.Error()+": X is Expired", sum.Warning)

	_, err = s.Combine("P")
	assert.ErrorIs(t, err, ledger.ErrNotActive)
}

func TestCombineAndRevertClearSelection(t *testing.T) {
	s := newTestSession(t)

	s.ApplySelection([]string{"A", "B", "C"}, []string{"A", "B"})
	rec, err := s.Combine("P")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, rec.Sources)
	assert.Empty(t, s.Picked())
	assert.FileExists(t, rec.ArtifactPath)

	s.ApplySelection([]string{"C"}, []string{"C"})
	got, err := s.Revert("P", "")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Empty(t, s.Picked())
	assert.NoFileExists(t, rec.ArtifactPath)
}

func TestCombineRejectsCrossPassenger(t *testing.T) {
	s := newTestSession(t)

	s.ApplySelection([]string{"A", "B", "D"}, []string{"A", "B", "D"})
	_, err := s.Combine("P")
	assert.ErrorIs(t, err, ledger.ErrCrossPassenger)
	assert.Equal(t, []string{"A", "B", "D"}, s.Picked())
	assert.Empty(t, s.Book().Records("P"))
}

func TestCombineRejectsSingle(t *testing.T) {
	s := newTestSession(t)

	s.ApplySelection([]string{"A"}, []string{"A"})
	_, err := s.Combine("P")
	assert.ErrorIs(t, err, ledger.ErrTooFewVouchers)
}

func TestRevertByRecordID(t *testing.T) {
	s := newTestSession(t)

	s.ApplySelection([]string{"A", "B"}, []string{"A", "B"})
	first, err := s.Combine("P")
	require.NoError(t, err)

	require.NoError(t, s.Upload([]types.Voucher{
		row("P", "A", 1, types.StatusActive),
		row("P", "B", 2, types.StatusActive),
		row("P", "C", 3, types.StatusActive),
		row("P", "E", 4, types.StatusActive),
	}))
	_, err = s.Revert("P", first.ID)
	assert.ErrorIs(t, err, ledger.ErrNoCombineRecord, "upload forgets old records")

	s.ApplySelection([]string{"A", "B"}, []string{"A", "B"})
	one, err := s.Combine("P")
	require.NoError(t, err)
	s.ApplySelection([]string{"C", "E"}, []string{"C", "E"})
	two, err := s.Combine("P")
	require.NoError(t, err)

	_, err = s.Revert("P", "")
	var amb *ledger.AmbiguousRevertError
	require.True(t, errors.As(err, &amb))
	assert.Len(t, amb.Options, 2)

	_, err = s.Revert("Q", one.ID)
	assert.ErrorIs(t, err, ledger.ErrNoCombineRecord)

	got, err := s.Revert("P", one.ID)
	require.NoError(t, err)
	assert.Equal(t, one.ID, got.ID)
	assert.Equal(t, []*types.CombineRecord{two}, s.Book().Records("P"))
}

func TestInventoryIsLazyAndStable(t *testing.T) {
	s := newTestSession(t)

	inv := s.Inventory()
	require.NotNil(t, inv)
	assert.Same(t, inv, s.Inventory())
	assert.Len(t, inv.Carts, 3)
	assert.Len(t, s.Catalog(), 40)
}

func TestNoCatalog(t *testing.T) {
	st := NewStore(Options{
		Artifacts: artifact.NewWriter(t.TempDir(), artifact.FormatJSON),
		Catalog:   func() ([]*types.CatalogItem, error) { return nil, errors.New("missing") },
	})
	defer st.Shutdown()

	s, _, err := st.Get("")
	require.NoError(t, err)
	assert.Empty(t, s.Catalog())
	assert.Nil(t, s.Inventory())
}

func TestStoreLifecycle(t *testing.T) {
	st := newTestStore(t)
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return clock }

	a, created, err := st.Get("")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, a.ID)

	again, created, err := st.Get(a.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, a, again)

	b, created, err := st.Get("not-a-session")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, st.Len())

	// sessions do not share tables
	a.ApplySelection([]string{"A", "B"}, []string{"A", "B"})
	_, err = a.Combine("P")
	require.NoError(t, err)
	rows, err := b.Book().Table().ForPassenger("P", true)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	st.Close(b.ID)
	assert.Equal(t, 1, st.Len())
	b.Lock()
	assert.True(t, b.Closed())
	b.Unlock()
	assert.False(t, a.Closed())

	clock = clock.Add(2 * time.Hour)
	c, created, err := st.Get(a.ID)
	require.NoError(t, err)
	assert.True(t, created, "idle session was evicted")
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, 1, st.Len())
}
