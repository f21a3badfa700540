package catalog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	items  map[int64]*Item
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]*Item), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, item Item) (Item, error) {
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = &item
	return item, nil
}

func (m *mockRepository) Get(ctx context.Context, ownerID, id int64) (Item, error) {
	item, ok := m.items[id]
	if !ok || item.OwnerID != ownerID {
		return Item{}, shared.ErrNotFound
	}
	return *item, nil
}

func (m *mockRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]Item, int, error) {
	var out []Item
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			out = append(out, *item)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, item Item) error {
	existing, ok := m.items[item.ID]
	if !ok || existing.OwnerID != item.OwnerID {
		return shared.ErrNotFound
	}
	m.items[item.ID] = &item
	return nil
}

func (m *mockRepository) DeleteMany(ctx context.Context, ownerID int64, ids []int64) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if item, ok := m.items[id]; ok && item.OwnerID == ownerID {
			delete(m.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, slog.Default()), repo
}

func adminIdentity(owner int64) shared.Identity {
	return shared.Identity{ActorID: owner, OwnerID: owner, Role: shared.RoleAdmin}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateItemNormalisesRate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, adminIdentity(1), CreateItemRequest{
		Description: "Consulting hour",
		Rate:        "$12.50",
		Tax1Rate:    "10",
	})
	require.NoError(t, err)
	assert.True(t, item.Rate.Equal(decimal.RequireFromString("12.5")), "got %s", item.Rate)
	assert.True(t, item.Tax1Rate.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(1), item.OwnerID)
}

func TestCreateItemWithOnlyDescriptionAndRate(t *testing.T) {
	svc, repo := newTestService()

	item, err := svc.Create(context.Background(), adminIdentity(1), CreateItemRequest{
		Description: "Bare minimum",
		Rate:        "99",
	})
	require.NoError(t, err)

	// The optional fields stay nil end to end; they persist as NULLs, which
	// the catalog_items columns accept.
	stored := repo.items[item.ID]
	require.NotNil(t, stored)
	assert.Nil(t, stored.LongDescription)
	assert.Nil(t, stored.Unit)
	assert.Nil(t, stored.GroupName)
	assert.True(t, stored.Rate.Equal(decimal.NewFromInt(99)))
}

func TestCreateItemRejectsEmptyDescription(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), adminIdentity(1), CreateItemRequest{
		Description: "   ",
		Rate:        "10",
	})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "description")
}

func TestCreateItemRejectsNegativeRate(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), adminIdentity(1), CreateItemRequest{
		Description: "Bad",
		Rate:        "-5",
	})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "rate")
}

func TestClientCannotCreateItems(t *testing.T) {
	svc, _ := newTestService()
	client := shared.Identity{ActorID: 9, OwnerID: 1, Role: shared.RoleClient}
	_, err := svc.Create(context.Background(), client, CreateItemRequest{
		Description: "Nope",
		Rate:        "1",
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCatalogIsolationBetweenOwners(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, adminIdentity(1), CreateItemRequest{Description: "Owner A item", Rate: "10"})
	require.NoError(t, err)

	// Owner B sees an empty catalog and cannot fetch A's item.
	items, total, err := svc.List(ctx, adminIdentity(2), ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	_, err = svc.Get(ctx, adminIdentity(2), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBulkImportToleratesBadRows(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rows := []ImportRow{
		{"Description": "Item one", "Rate": "10.00"},
		{"Rate": "20.00"}, // missing description
		{"description": "Item three", "rate": "$30"},
	}

	result, err := svc.BulkImport(ctx, adminIdentity(1), rows)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 2)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 2, result.Rejected[0].Row)
	assert.Contains(t, result.Rejected[0].Reason, "description")

	// Rows carrying only description and rate import with nil optionals.
	for _, item := range result.Imported {
		assert.Nil(t, item.LongDescription)
		assert.Nil(t, item.Unit)
		assert.Nil(t, item.GroupName)
	}
}

func TestBulkImportNormalisesColumnVariants(t *testing.T) {
	svc, _ := newTestService()
	result, err := svc.BulkImport(context.Background(), adminIdentity(1), []ImportRow{
		{"Item": "Aliased", "Price": "15", "Tax 1": "5", "Group": "Services"},
	})
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	item := result.Imported[0]
	assert.Equal(t, "Aliased", item.Description)
	assert.True(t, item.Rate.Equal(decimal.NewFromInt(15)))
	assert.True(t, item.Tax1Rate.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, item.GroupName)
	assert.Equal(t, "Services", *item.GroupName)
}

func TestBulkDeleteCountsAndSkipsForeign(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, adminIdentity(1), CreateItemRequest{Description: "Mine", Rate: "1"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, adminIdentity(2), CreateItemRequest{Description: "Theirs", Rate: "1"})
	require.NoError(t, err)

	deleted, err := svc.BulkDelete(ctx, adminIdentity(1), []int64{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Other tenant's item still there.
	_, err = svc.Get(ctx, adminIdentity(2), b.ID)
	assert.NoError(t, err)
}
