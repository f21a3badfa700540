package accounts

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-crm/meridian/internal/platform/httpx"
	"github.com/meridian-crm/meridian/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	accounts map[int64]*Account
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{accounts: make(map[int64]*Account), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, a Account) (Account, error) {
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return Account{}, httpx.ErrDuplicate
		}
	}
	a.ID = m.nextID
	m.nextID++
	if a.OwnerID == 0 {
		a.OwnerID = a.ID
	}
	m.accounts[a.ID] = &a
	return a, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	return *a, nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return *a, nil
		}
	}
	return Account{}, shared.ErrNotFound
}

func (m *mockRepository) ListPending(ctx context.Context) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if a.Approval == ApprovalPending {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateApproval(ctx context.Context, id int64, status ApprovalStatus) error {
	a, ok := m.accounts[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.Approval = status
	return nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, slog.Default()), repo
}

func superAdmin() shared.Identity {
	return shared.Identity{ActorID: 1, OwnerID: 1, Role: shared.RoleSuperAdmin}
}

// ============================================================================
// TESTS
// ============================================================================

func TestRegister(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterRequest{Email: " Ada@Example.COM ", Name: "Ada", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.Equal(t, ApprovalPending, account.Approval)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("longenough")))

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "ada@example.com", Name: "Ada Again", Password: "longenough"})
		assert.ErrorIs(t, err, httpx.ErrDuplicate)
	})
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "longenough"})
	require.NoError(t, err)

	t.Run("pending accounts cannot sign in", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ada@example.com", "longenough")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("approved accounts sign in", func(t *testing.T) {
		repo.accounts[account.ID].Approval = ApprovalApproved
		got, err := svc.Authenticate(ctx, "ada@example.com", "longenough")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ada@example.com", "wrong")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func TestSetApproval(t *testing.T) {
	ctx := context.Background()

	t.Run("superadmin approves a pending account", func(t *testing.T) {
		svc, _ := newTestService()
		account, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "A", Password: "longenough"})
		require.NoError(t, err)
		got, err := svc.SetApproval(ctx, superAdmin(), account.ID, ApprovalApproved)
		require.NoError(t, err)
		assert.Equal(t, ApprovalApproved, got.Approval)
	})

	t.Run("decided accounts are terminal", func(t *testing.T) {
		svc, _ := newTestService()
		account, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "A", Password: "longenough"})
		require.NoError(t, err)
		_, err = svc.SetApproval(ctx, superAdmin(), account.ID, ApprovalRejected)
		require.NoError(t, err)

		_, err = svc.SetApproval(ctx, superAdmin(), account.ID, ApprovalApproved)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidState(err))
	})

	t.Run("admins cannot decide approvals", func(t *testing.T) {
		svc, _ := newTestService()
		account, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "A", Password: "longenough"})
		require.NoError(t, err)
		admin := shared.Identity{ActorID: 2, OwnerID: 2, Role: shared.RoleAdmin}
		_, err = svc.SetApproval(ctx, admin, account.ID, ApprovalApproved)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
