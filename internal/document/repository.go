package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian/internal/payments"
	"github.com/meridian-crm/meridian/internal/platform/db"
	"github.com/meridian-crm/meridian/internal/shared"
)

type repository struct {
	pool *pgxpool.Pool
	calc CalcOptions
}

// NewRepository constructs a PostgreSQL-backed Repository. The calculator
// options must match the service's so stored totals verify against the same
// derivation.
func NewRepository(pool *pgxpool.Pool, calc CalcOptions) Repository {
	return &repository{pool: pool, calc: calc}
}

const documentColumns = `id, number, kind, owner_id, customer_id, items, discount_type, discount_value, currency, issue_date, due_date, status, subtotal, discount, total, paid_amount, created_by, created_at, updated_at`

func numberFor(kind Kind, id int64) string {
	prefix := map[Kind]string{
		KindProposal:   "PRO",
		KindCreditNote: "CRN",
		KindInvoice:    "INV",
	}[kind]
	return fmt.Sprintf("%s-%06d", prefix, id)
}

func (r *repository) Create(ctx context.Context, doc Document) (Document, error) {
	if err := VerifyTotals(doc, r.calc); err != nil {
		return Document{}, err
	}
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return Document{}, err
	}
	now := time.Now()
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO documents
(kind, owner_id, customer_id, items, discount_type, discount_value, currency, issue_date, due_date, status, subtotal, discount, total, paid_amount, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`,
			doc.Kind, doc.OwnerID, doc.CustomerID, items, doc.DiscountType, doc.DiscountValue,
			doc.Currency, doc.IssueDate, doc.DueDate, doc.Status, doc.Subtotal, doc.Discount,
			doc.Total, doc.PaidAmount, doc.CreatedBy, now, now).Scan(&doc.ID); err != nil {
			return err
		}
		doc.Number = numberFor(doc.Kind, doc.ID)
		_, err := tx.Exec(ctx, `UPDATE documents SET number = $1 WHERE id = $2`, doc.Number, doc.ID)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return doc, nil
}

func (r *repository) Get(ctx context.Context, ownerID, id int64) (Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, shared.ErrNotFound
		}
		return Document{}, err
	}
	if err := VerifyTotals(doc, r.calc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *repository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]Document, int, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM documents WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		cond := ` AND kind = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		cond := ` AND status = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		cond := ` AND customer_id = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY issue_date DESC, id DESC`
	if filter.PerPage > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		args = append(args, filter.PerPage)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, (page-1)*filter.PerPage)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, doc Document) error {
	if err := VerifyTotals(doc, r.calc); err != nil {
		return err
	}
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE documents
SET customer_id = $1, items = $2, discount_type = $3, discount_value = $4, currency = $5,
    issue_date = $6, due_date = $7, subtotal = $8, discount = $9, total = $10, updated_at = $11
WHERE id = $12 AND owner_id = $13 AND status = $14`,
		doc.CustomerID, items, doc.DiscountType, doc.DiscountValue, doc.Currency,
		doc.IssueDate, doc.DueDate, doc.Subtotal, doc.Discount, doc.Total, time.Now(),
		doc.ID, doc.OwnerID, StatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, doc Document, payment *payments.Payment) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE documents SET status = $1, paid_amount = $2, updated_at = $3 WHERE id = $4 AND owner_id = $5`,
			doc.Status, doc.PaidAmount, time.Now(), doc.ID, doc.OwnerID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if payment != nil {
			return payments.InsertTx(ctx, tx, *payment)
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListInvoiceViews(ctx context.Context, ownerID int64) ([]payments.InvoiceView, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, owner_id, status, currency, total, paid_amount
FROM documents WHERE owner_id = $1 AND kind = $2 AND status <> $3`, ownerID, KindInvoice, StatusDraft)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []payments.InvoiceView
	for rows.Next() {
		var v payments.InvoiceView
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Status, &v.Currency, &v.Total, &v.PaidAmount); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *repository) ListDueInvoices(ctx context.Context, asOf time.Time) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents
WHERE kind = $1 AND status = ANY($2) AND due_date IS NOT NULL AND due_date < $3`,
		KindInvoice, []string{string(StatusUnpaid), string(StatusPartiallypaid)}, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *repository) ListOwnerIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT owner_id FROM documents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc   Document
		items []byte
	)
	err := row.Scan(&doc.ID, &doc.Number, &doc.Kind, &doc.OwnerID, &doc.CustomerID, &items,
		&doc.DiscountType, &doc.DiscountValue, &doc.Currency, &doc.IssueDate, &doc.DueDate,
		&doc.Status, &doc.Subtotal, &doc.Discount, &doc.Total, &doc.PaidAmount,
		&doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &doc.Items); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}
