package ledger

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/jinzhu/gorm"
	_ "modernc.org/sqlite"

	"github.com/zeroshade/sgvdesk/types"
)

// Table is the voucher table of one session. It lives in a private
// in-memory SQLite database so sessions never see each other's rows.
type Table struct {
	db *gorm.DB
}

func OpenTable() (*Table, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// each connection to :memory: opens a brand new database
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open("sqlite3", sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	db.LogMode(false)

	if err := db.AutoMigrate(&types.Voucher{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate vouchers: %w", err)
	}
	return &Table{db: db}, nil
}

func (t *Table) Close() error {
	return t.db.Close()
}

// Replace drops every row and loads rows in their given order.
func (t *Table) Replace(rows []types.Voucher) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&types.Voucher{}).Error; err != nil {
			return err
		}
		for i := range rows {
			row := rows[i]
			row.ID = 0
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert %s: %w", row.Serial, err)
			}
		}
		return nil
	})
}

// All returns every row in table order.
func (t *Table) All() ([]types.Voucher, error) {
	var out []types.Voucher
	err := t.db.Order("id").Find(&out).Error
	return out, err
}

// Passengers lists the distinct non-empty passenger names, sorted.
func (t *Table) Passengers() ([]string, error) {
	var names []string
	if err := t.db.Model(&types.Voucher{}).Where("passenger <> ''").Pluck("passenger", &names).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// ForPassenger returns the passenger's rows in table order, optionally
// only the Active ones.
func (t *Table) ForPassenger(passenger string, activeOnly bool) ([]types.Voucher, error) {
	q := t.db.Where("passenger = ?", passenger)
	if activeOnly {
		q = q.Where("status = ?", string(types.StatusActive))
	}

	var out []types.Voucher
	err := q.Order("id").Find(&out).Error
	return out, err
}

// BySerials returns the rows whose serial is listed, in table order.
// Unknown serials are silently absent from the result.
func (t *Table) BySerials(serials []string) ([]types.Voucher, error) {
	if len(serials) == 0 {
		return nil, nil
	}

	var out []types.Voucher
	err := t.db.Where("serial IN (?)", serials).Order("id").Find(&out).Error
	return out, err
}

func (t *Table) Find(serial string) (*types.Voucher, error) {
	var v types.Voucher
	err := t.db.Where("serial = ?", serial).First(&v).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoucher, serial)
	case err != nil:
		return nil, err
	}
	return &v, nil
}

func (t *Table) Exists(serial string) (bool, error) {
	var n int
	err := t.db.Model(&types.Voucher{}).Where("serial = ?", serial).Count(&n).Error
	return n > 0, err
}

// applyCombine redeems the sources and appends the combined row as one
// unit of work.
func (t *Table) applyCombine(sources []string, row types.Voucher) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&types.Voucher{}).Where("serial IN (?)", sources).
			Update("status", string(types.StatusRedeemed))
		if res.Error != nil {
			return res.Error
		}
		if int(res.RowsAffected) != len(sources) {
			return fmt.Errorf("%w: expected %d sources, updated %d", ErrUnknownVoucher, len(sources), res.RowsAffected)
		}
		row.ID = 0
		return tx.Create(&row).Error
	})
}

// applyRevert reactivates the sources and removes the combined row.
func (t *Table) applyRevert(sources []string, combined string) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&types.Voucher{}).Where("serial IN (?)", sources).
			Update("status", string(types.StatusActive)).Error; err != nil {
			return err
		}
		return tx.Where("serial = ?", combined).Delete(&types.Voucher{}).Error
	})
}
