package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian/internal/shared"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, description, long_description, rate, tax1_rate, tax2_rate, unit, group_name, owner_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO catalog_items
(description, long_description, rate, tax1_rate, tax2_rate, unit, group_name, owner_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		item.Description, item.LongDescription, item.Rate, item.Tax1Rate, item.Tax2Rate,
		item.Unit, item.GroupName, item.OwnerID, now, now).Scan(&item.ID)
	if err != nil {
		return Item{}, err
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (r *repository) Get(ctx context.Context, ownerID, id int64) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE id = $1 AND owner_id = $2`, id, ownerID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

func (r *repository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]Item, int, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM catalog_items WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		cond := ` AND (description ILIKE $` + strconv.Itoa(len(args)) + ` OR long_description ILIKE $` + strconv.Itoa(len(args)) + `)`
		query += cond
		countQuery += cond
	}
	if filter.GroupName != "" {
		args = append(args, filter.GroupName)
		cond := ` AND group_name = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY description ASC`
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

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, item Item) error {
	tag, err := r.pool.Exec(ctx, `UPDATE catalog_items
SET description = $1, long_description = $2, rate = $3, tax1_rate = $4, tax2_rate = $5, unit = $6, group_name = $7, updated_at = $8
WHERE id = $9 AND owner_id = $10`,
		item.Description, item.LongDescription, item.Rate, item.Tax1Rate, item.Tax2Rate,
		item.Unit, item.GroupName, time.Now(), item.ID, item.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteMany(ctx context.Context, ownerID int64, ids []int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalog_items WHERE owner_id = $1 AND id = ANY($2)`, ownerID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Description, &item.LongDescription, &item.Rate,
		&item.Tax1Rate, &item.Tax2Rate, &item.Unit, &item.GroupName, &item.OwnerID,
		&item.CreatedAt, &item.UpdatedAt)
	return item, err
}
