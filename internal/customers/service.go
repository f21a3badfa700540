package customers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/meridian-crm/meridian/internal/rbac"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository defines customer persistence, owner-scoped throughout. Exists
// also serves the document package when it validates customer references.
type Repository interface {
	Create(ctx context.Context, c Customer) (Customer, error)
	Get(ctx context.Context, ownerID, id int64) (Customer, error)
	List(ctx context.Context, ownerID int64, search string) ([]Customer, error)
	Update(ctx context.Context, c Customer) error
	Exists(ctx context.Context, ownerID, id int64) (bool, error)
}

// Service handles customer directory logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create adds a customer to the caller's directory.
func (s *Service) Create(ctx context.Context, id shared.Identity, req CreateCustomerRequest) (Customer, error) {
	if !rbac.CanMutate(id, id.OwnerID) {
		return Customer{}, shared.ErrForbidden
	}
	if strings.TrimSpace(req.Name) == "" {
		return Customer{}, shared.Validation("name", "must not be empty")
	}
	return s.repo.Create(ctx, Customer{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		OwnerID: id.OwnerID,
	})
}

// Get returns one of the caller's customers.
func (s *Service) Get(ctx context.Context, id shared.Identity, customerID int64) (Customer, error) {
	c, err := s.repo.Get(ctx, id.OwnerID, customerID)
	if err != nil {
		return Customer{}, err
	}
	if !rbac.CanView(id, c.OwnerID) {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

// List returns the caller's directory, optionally filtered by a search term.
func (s *Service) List(ctx context.Context, id shared.Identity, search string) ([]Customer, error) {
	return s.repo.List(ctx, id.OwnerID, search)
}

// Update replaces a customer's fields.
func (s *Service) Update(ctx context.Context, id shared.Identity, customerID int64, req CreateCustomerRequest) (Customer, error) {
	existing, err := s.Get(ctx, id, customerID)
	if err != nil {
		return Customer{}, err
	}
	if !rbac.CanMutate(id, existing.OwnerID) {
		return Customer{}, shared.ErrForbidden
	}
	if strings.TrimSpace(req.Name) == "" {
		return Customer{}, shared.Validation("name", "must not be empty")
	}
	existing.Name = strings.TrimSpace(req.Name)
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Company = req.Company
	existing.Address = req.Address
	if err := s.repo.Update(ctx, existing); err != nil {
		return Customer{}, err
	}
	return s.repo.Get(ctx, id.OwnerID, customerID)
}
