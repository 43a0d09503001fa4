// Package repository persists bill records for the reference backend.
package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/billedhq/expense-client/internal/domain/entity"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no bill matches the given selector
var ErrNotFound = errors.New("bill not found")

// BillRepository stores bills in SQLite
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) *BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// NewKey generates an opaque record identifier
func NewKey() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read only fails when the platform entropy source is broken
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// Create inserts a new bill record. The caller assigns the id.
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	query := `
		INSERT INTO bills (
			id, email, type, name, date, amount, vat, pct, commentary,
			file_url, file_name, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := bill.Status
	if status == "" {
		status = entity.StatusPending
	}

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		bill.ID,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Date,
		nullableNumber(bill.Amount),
		nullableNumber(bill.Vat),
		bill.Pct,
		bill.Commentary,
		bill.FileURL,
		bill.FileName,
		string(status),
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}

	bill.Status = status
	return nil
}

// GetByID retrieves a bill by its identifier
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `
		SELECT id, email, type, name, date, amount, vat, pct, commentary,
			file_url, file_name, status
		FROM bills
		WHERE id = ?
	`

	bill, err := r.scanBill(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get bill", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// List returns all bills in insertion order
func (r *BillRepository) List(ctx context.Context) ([]entity.Bill, error) {
	query := `
		SELECT id, email, type, name, date, amount, vat, pct, commentary,
			file_url, file_name, status
		FROM bills
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []entity.Bill
	for rows.Next() {
		bill, err := r.scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

// Update writes the bill fields onto an existing record.
// The stored status is only changed when the update carries one.
func (r *BillRepository) Update(ctx context.Context, bill *entity.Bill) error {
	query := `
		UPDATE bills
		SET email = ?, type = ?, name = ?, date = ?, amount = ?, vat = ?,
			pct = ?, commentary = ?, file_url = ?, file_name = ?,
			status = COALESCE(NULLIF(?, ''), status),
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Date,
		nullableNumber(bill.Amount),
		nullableNumber(bill.Vat),
		bill.Pct,
		bill.Commentary,
		bill.FileURL,
		bill.FileName,
		string(bill.Status),
		time.Now(),
		bill.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *BillRepository) scanBill(row rowScanner) (*entity.Bill, error) {
	var bill entity.Bill
	var amount, vat sql.NullFloat64
	var status string

	err := row.Scan(
		&bill.ID,
		&bill.Email,
		&bill.Type,
		&bill.Name,
		&bill.Date,
		&amount,
		&vat,
		&bill.Pct,
		&bill.Commentary,
		&bill.FileURL,
		&bill.FileName,
		&status,
	)
	if err != nil {
		return nil, err
	}

	bill.Amount = floatOrNaN(amount)
	bill.Vat = floatOrNaN(vat)
	bill.Status = entity.Status(status)
	return &bill, nil
}

// nullableNumber maps NaN to SQL NULL; the lenient form serialization
// produces NaN for unparseable numeric input.
func nullableNumber(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
