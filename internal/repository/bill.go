package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
)

const (
	createBillSQL = `INSERT INTO bills
		(id, bill_id, name, phone, address, treatment, bill_date, items, discount, subtotal, total_gst, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	listBillsSQL = `SELECT bill_id, name, phone, address, treatment, bill_date, items, discount, subtotal, total_gst, total, created_at
		FROM bills ORDER BY created_at, id`

	getBillSQL = `SELECT bill_id, name, phone, address, treatment, bill_date, items, discount, subtotal, total_gst, total, created_at
		FROM bills WHERE bill_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	deleteBillSQL = `DELETE FROM bills WHERE bill_id = $1`
)

var _ bill.Repository = (*BillRepository)(nil)

// BillRepository implements bill.Repository backed by PostgreSQL. Each
// record is keyed by an internal UUID; the business id is indexed but not
// unique, so duplicate ids produce distinct records.
type BillRepository struct {
	pool *pgxpool.Pool
}

// NewBillRepository returns a BillRepository that uses the given pool.
func NewBillRepository(pool *pgxpool.Pool) *BillRepository {
	return &BillRepository{pool: pool}
}

// Create persists a new bill record. The line items are serialized to JSON
// for storage in the JSONB column.
func (r *BillRepository) Create(ctx context.Context, b *bill.Bill) error {
	itemsJSON, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshaling bill items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createBillSQL,
		uuid.New().String(), b.BillID, b.Name, b.Phone, b.Address, b.Treatment, b.Date,
		itemsJSON, b.Discount, b.Subtotal, b.TotalGST, b.Total, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating bill %q: %w", b.BillID, err)
	}

	return nil
}

// FindAll returns all bill records ordered by creation time, oldest first.
func (r *BillRepository) FindAll(ctx context.Context) ([]bill.Bill, error) {
	rows, err := r.pool.Query(ctx, listBillsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	return pgx.CollectRows(rows, scanBill)
}

// FindByBillID returns the most recently created record with the given
// business id, or bill.ErrNotFound.
func (r *BillRepository) FindByBillID(ctx context.Context, billID string) (*bill.Bill, error) {
	rows, err := r.pool.Query(ctx, getBillSQL, billID)
	if err != nil {
		return nil, fmt.Errorf("getting bill %q: %w", billID, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBill)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bill.ErrNotFound
		}
		return nil, fmt.Errorf("getting bill %q: %w", billID, err)
	}
	return &b, nil
}

// DeleteByBillID removes every record with the given business id. Returns
// bill.ErrNotFound when no record matched.
func (r *BillRepository) DeleteByBillID(ctx context.Context, billID string) error {
	tag, err := r.pool.Exec(ctx, deleteBillSQL, billID)
	if err != nil {
		return fmt.Errorf("deleting bill %q: %w", billID, err)
	}
	if tag.RowsAffected() == 0 {
		return bill.ErrNotFound
	}
	return nil
}

func scanBill(row pgx.CollectableRow) (bill.Bill, error) {
	var (
		b         bill.Bill
		itemsJSON []byte
	)
	err := row.Scan(
		&b.BillID, &b.Name, &b.Phone, &b.Address, &b.Treatment, &b.Date,
		&itemsJSON, &b.Discount, &b.Subtotal, &b.TotalGST, &b.Total, &b.CreatedAt,
	)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(itemsJSON, &b.Items); err != nil {
		return b, fmt.Errorf("unmarshaling bill items: %w", err)
	}
	return b, nil
}
