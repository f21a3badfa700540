package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/rbac"
	"github.com/meridian-crm/meridian/internal/shared"
)

func TestUpdateHandlerValidatesRequest(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(slog.Default(), svc, rbac.Middleware{})

	created, err := svc.Create(context.Background(), adminIdentity(1), CreateItemRequest{Description: "Keep", Rate: "10"})
	require.NoError(t, err)

	// Unit is capped at 50 characters, same as on create.
	body := `{"description":"Keep","rate":"10","unit":"` + strings.Repeat("x", 60) + `"}`

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", strconv.FormatInt(created.ID, 10))

	req := httptest.NewRequest(http.MethodPut, "/"+strconv.FormatInt(created.ID, 10), strings.NewReader(body))
	ctx := shared.ContextWithIdentity(req.Context(), adminIdentity(1))
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	h.update(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// The stored item is untouched.
	got, err := svc.Get(context.Background(), adminIdentity(1), created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Unit)
}
