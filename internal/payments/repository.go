package payments

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `id, invoice_id, owner_id, amount, currency, payment_date, payment_mode, transaction_id, status, created_at`

// insertSQL upserts on the primary key: derived IDs are deterministic, so a
// repeated write for the same invoice and kind updates the row in place.
const insertSQL = `INSERT INTO payments
(id, invoice_id, owner_id, amount, currency, payment_date, payment_mode, transaction_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET amount = EXCLUDED.amount, payment_date = EXCLUDED.payment_date, status = EXCLUDED.status`

func (r *repository) Insert(ctx context.Context, p Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, insertSQL,
		p.ID, p.InvoiceID, p.OwnerID, p.Amount, p.Currency,
		p.PaymentDate, p.Mode, p.TransactionID, p.Status, p.CreatedAt)
	return err
}

// InsertTx writes a payment inside a caller-managed transaction. The document
// package uses it so a status change and its ledger row commit together.
func InsertTx(ctx context.Context, tx pgx.Tx, p Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := tx.Exec(ctx, insertSQL,
		p.ID, p.InvoiceID, p.OwnerID, p.Amount, p.Currency,
		p.PaymentDate, p.Mode, p.TransactionID, p.Status, p.CreatedAt)
	return err
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE owner_id = $1 ORDER BY payment_date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *repository) ListByInvoice(ctx context.Context, ownerID, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE owner_id = $1 AND invoice_id = $2 ORDER BY payment_date ASC`, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func scanPayments(rows pgx.Rows) ([]Payment, error) {
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.OwnerID, &p.Amount, &p.Currency,
			&p.PaymentDate, &p.Mode, &p.TransactionID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
