package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian/internal/platform/httpx"
	"github.com/meridian-crm/meridian/internal/shared"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, email, name, password_hash, role, owner_id, approval, created_at, updated_at`

func (r *repository) Create(ctx context.Context, a Account) (Account, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO accounts
(email, name, password_hash, role, owner_id, approval, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		a.Email, a.Name, a.PasswordHash, a.Role, a.OwnerID, a.Approval, now, now).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, httpx.ErrDuplicate
		}
		return Account{}, err
	}
	// Tenant admins own their own tenant.
	if a.OwnerID == 0 {
		a.OwnerID = a.ID
		if _, err := r.pool.Exec(ctx, `UPDATE accounts SET owner_id = $1 WHERE id = $1`, a.ID); err != nil {
			return Account{}, err
		}
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *repository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

func (r *repository) ListPending(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE approval = $1 ORDER BY created_at ASC`, ApprovalPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.OwnerID,
			&a.Approval, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) UpdateApproval(ctx context.Context, id int64, status ApprovalStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET approval = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) scanOne(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.OwnerID,
		&a.Approval, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}
