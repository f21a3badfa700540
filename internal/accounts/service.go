package accounts

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-crm/meridian/internal/rbac"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository defines account persistence.
type Repository interface {
	Create(ctx context.Context, a Account) (Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	ListPending(ctx context.Context) ([]Account, error)
	UpdateApproval(ctx context.Context, id int64, status ApprovalStatus) error
}

// Service handles account business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Register creates a new admin account in Pending approval. The account
// cannot sign in until a superadmin approves it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return Account{}, shared.Validation("email", "must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	account, err := s.repo.Create(ctx, Account{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         shared.RoleAdmin,
		Approval:     ApprovalPending,
	})
	if err != nil {
		return Account{}, err
	}
	s.logger.Info("admin registration pending approval",
		slog.Int64("account_id", account.ID), slog.String("email", email))
	return account, nil
}

// Authenticate validates credentials for an approved account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	account, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Account{}, shared.ErrInvalidCredentials
	}
	if !account.CanSignIn() {
		return Account{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, shared.ErrInvalidCredentials
	}
	return account, nil
}

// ListPending returns registrations awaiting approval. Superadmin only.
func (s *Service) ListPending(ctx context.Context, id shared.Identity) ([]Account, error) {
	if !rbac.CanManageAccounts(id) {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListPending(ctx)
}

// SetApproval moves an account through the approval workflow. Only a
// superadmin may decide; decided accounts are terminal.
func (s *Service) SetApproval(ctx context.Context, id shared.Identity, accountID int64, status ApprovalStatus) (Account, error) {
	if !rbac.CanManageAccounts(id) {
		return Account{}, shared.ErrForbidden
	}
	account, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	if err := approvalMachine.Transition(string(account.Approval), string(status)); err != nil {
		return Account{}, err
	}
	if err := s.repo.UpdateApproval(ctx, accountID, status); err != nil {
		return Account{}, err
	}
	account.Approval = status
	s.logger.Info("account approval decided",
		slog.Int64("account_id", accountID), slog.String("status", string(status)))
	return account, nil
}
