package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian-crm/meridian/internal/money"
	"github.com/meridian-crm/meridian/internal/rbac"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository defines catalog persistence. Every method is owner-scoped:
// catalogs are never shared across tenants.
type Repository interface {
	Create(ctx context.Context, item Item) (Item, error)
	Get(ctx context.Context, ownerID, id int64) (Item, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]Item, int, error)
	Update(ctx context.Context, item Item) error
	DeleteMany(ctx context.Context, ownerID int64, ids []int64) (int64, error)
}

// Service handles catalog business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new item in the caller's own catalog.
func (s *Service) Create(ctx context.Context, id shared.Identity, req CreateItemRequest) (Item, error) {
	if !rbac.CanMutate(id, id.OwnerID) {
		return Item{}, shared.ErrForbidden
	}
	item, err := itemFromRequest(req)
	if err != nil {
		return Item{}, err
	}
	item.OwnerID = id.OwnerID
	return s.repo.Create(ctx, item)
}

// Get returns one of the caller's items.
func (s *Service) Get(ctx context.Context, id shared.Identity, itemID int64) (Item, error) {
	item, err := s.repo.Get(ctx, id.OwnerID, itemID)
	if err != nil {
		return Item{}, err
	}
	if !rbac.CanView(id, item.OwnerID) {
		return Item{}, shared.ErrNotFound
	}
	return item, nil
}

// List returns the caller's catalog, never another tenant's.
func (s *Service) List(ctx context.Context, id shared.Identity, filter ListFilter) ([]Item, int, error) {
	return s.repo.List(ctx, id.OwnerID, filter)
}

// Update replaces an item's fields. Documents composed earlier are unaffected
// because lines are clones.
func (s *Service) Update(ctx context.Context, id shared.Identity, itemID int64, req CreateItemRequest) (Item, error) {
	existing, err := s.Get(ctx, id, itemID)
	if err != nil {
		return Item{}, err
	}
	if !rbac.CanMutate(id, existing.OwnerID) {
		return Item{}, shared.ErrForbidden
	}
	updated, err := itemFromRequest(req)
	if err != nil {
		return Item{}, err
	}
	updated.ID = existing.ID
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return Item{}, err
	}
	return s.repo.Get(ctx, id.OwnerID, itemID)
}

// BulkImport validates each row independently and imports the valid ones.
// Malformed rows land in Rejected with a reason naming the offending field;
// the batch never aborts on the first error.
func (s *Service) BulkImport(ctx context.Context, id shared.Identity, rows []ImportRow) (ImportResult, error) {
	if !rbac.CanMutate(id, id.OwnerID) {
		return ImportResult{}, shared.ErrForbidden
	}
	result := ImportResult{}
	for i, row := range rows {
		item, err := itemFromImportRow(row)
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedRow{Row: i + 1, Reason: err.Error()})
			continue
		}
		item.OwnerID = id.OwnerID
		created, err := s.repo.Create(ctx, item)
		if err != nil {
			s.logger.Error("bulk import row", slog.Int("row", i+1), slog.Any("error", err))
			result.Rejected = append(result.Rejected, RejectedRow{Row: i + 1, Reason: "storage failure"})
			continue
		}
		result.Imported = append(result.Imported, created)
	}
	return result, nil
}

// BulkDelete removes the caller's items by ID and reports how many vanished.
// IDs belonging to other tenants are silently skipped by the owner scoping.
func (s *Service) BulkDelete(ctx context.Context, id shared.Identity, ids []int64) (int64, error) {
	if !rbac.CanMutate(id, id.OwnerID) {
		return 0, shared.ErrForbidden
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.DeleteMany(ctx, id.OwnerID, ids)
}

func itemFromRequest(req CreateItemRequest) (Item, error) {
	if strings.TrimSpace(req.Description) == "" {
		return Item{}, shared.Validation("description", "must not be empty")
	}
	rate, err := money.Parse(req.Rate)
	if err != nil {
		return Item{}, shared.Validation("rate", "must be a monetary amount")
	}
	if rate.IsNegative() {
		return Item{}, shared.Validation("rate", "must not be negative")
	}
	tax1, err := parsePercent(req.Tax1Rate)
	if err != nil {
		return Item{}, shared.Validation("tax1_rate", "must be a percentage")
	}
	tax2, err := parsePercent(req.Tax2Rate)
	if err != nil {
		return Item{}, shared.Validation("tax2_rate", "must be a percentage")
	}
	return Item{
		Description:     strings.TrimSpace(req.Description),
		LongDescription: req.LongDescription,
		Rate:            rate,
		Tax1Rate:        tax1,
		Tax2Rate:        tax2,
		Unit:            req.Unit,
		GroupName:       req.GroupName,
	}, nil
}

func parsePercent(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if raw == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse percent %q: %w", raw, err)
	}
	return money.ClampPercent(p), nil
}
