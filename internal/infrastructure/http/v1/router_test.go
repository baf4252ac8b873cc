package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/app/apptest"
	appctx "slice/internal/core/context"
	"slice/internal/core/security"
	v1 "slice/internal/infrastructure/http/v1"
	"slice/internal/infrastructure/http/v1/handlers"
)

type apiEnv struct {
	*apptest.Fixture
	router http.Handler
	tokens *security.TokenService
}

func newAPI(t *testing.T, checks map[string]handlers.Check) *apiEnv {
	t.Helper()
	f := apptest.New(t)
	tokens, err := security.NewTokenService(security.DefaultTokenConfig("router-test"))
	require.NoError(t, err)

	return &apiEnv{
		Fixture: f,
		tokens:  tokens,
		router: v1.NewRouter(v1.RouterConfig{
			Services: f.Svc,
			Tokens:   tokens,
			Checks:   checks,
		}),
	}
}

func (e *apiEnv) token(t *testing.T, role, branchID string) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(appctx.UserContext{UserID: role + "-1", Role: role, BranchID: branchID})
	require.NoError(t, err)
	return tok
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	e := newAPI(t, map[string]handlers.Check{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Contains(t, checks["redis"], "connection refused")
}

func TestAuthAndRoles(t *testing.T) {
	e := newAPI(t, nil)

	w := e.do(t, http.MethodGet, "/branches", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w)["code"])

	w = e.do(t, http.MethodGet, "/branches", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cashier := e.token(t, appctx.RoleCashier, "")
	w = e.do(t, http.MethodPost, "/branches", cashier, map[string]any{"name": "Harbor"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w)["code"])

	w = e.do(t, http.MethodGet, "/reports/pnl", e.token(t, appctx.RoleManager, ""), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := e.token(t, appctx.RoleAdmin, "")
	w = e.do(t, http.MethodPost, "/branches", admin, map[string]any{"name": "Harbor", "location": "Pier 3"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Harbor", decode(t, w)["name"])

	w = e.do(t, http.MethodGet, "/branches", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])
}

func TestCatalogValidation(t *testing.T) {
	e := newAPI(t, nil)
	admin := e.token(t, appctx.RoleAdmin, "")

	w := e.do(t, http.MethodPost, "/items", admin, map[string]any{"name": "Flour"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])

	w = e.do(t, http.MethodGet, "/items/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/items/0190d7a4-7d2c-7000-8000-000000000001", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestSaleOverHTTP(t *testing.T) {
	e := newAPI(t, nil)
	branch := e.Branch(t, "Downtown")
	dough := e.Item(t, "Dough", "g", "")
	pizza := e.Product(t, "Margherita", "12.50")
	e.Recipe(t, pizza.ID, apptest.Line(dough.ID, "250"))
	e.Stock(t, branch.ID, dough.ID, "600")

	cashier := e.token(t, appctx.RoleCashier, branch.ID.String())

	w := e.do(t, http.MethodGet, "/branches/"+branch.ID.String()+"/products/"+pizza.ID.String()+"/max-cookable", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["maxCookable"])

	sale := map[string]any{"branchId": branch.ID, "productId": pizza.ID, "quantity": 2}
	w = e.do(t, http.MethodPost, "/sales", cashier, sale)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "25", decode(t, w)["totalAmount"])

	w = e.do(t, http.MethodPost, "/sales", cashier, map[string]any{"branchId": branch.ID, "productId": pizza.ID, "quantity": 1})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, dough.ID.String(), details["item_id"])
	assert.Equal(t, "250.0000", details["requested"])
	assert.Equal(t, "100.0000", details["available"])

	w = e.do(t, http.MethodGet, "/branches/"+branch.ID.String()+"/sales", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])
}

func TestBranchScope(t *testing.T) {
	e := newAPI(t, nil)
	home := e.Branch(t, "Home")
	other := e.Branch(t, "Other")
	flour := e.Item(t, "Flour", "g", "")
	e.Stock(t, other.ID, flour.ID, "100")

	cashier := e.token(t, appctx.RoleCashier, home.ID.String())
	w := e.do(t, http.MethodPost, "/waste", cashier, map[string]any{
		"branchId": other.ID, "itemId": flour.ID, "quantity": 5, "reason": "spilled",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 100.0, e.Qty(t, other.ID, flour.ID).Float64())
}

func TestTransferLifecycleOverHTTP(t *testing.T) {
	e := newAPI(t, nil)
	hq := e.Branch(t, "HQ")
	shop := e.Branch(t, "Shop")
	cheese := e.Item(t, "Cheese", "g", "")
	e.Stock(t, hq.ID, cheese.ID, "1000")

	manager := e.token(t, appctx.RoleManager, "")

	w := e.do(t, http.MethodPost, "/transfers", manager, map[string]any{
		"fromBranchId": hq.ID,
		"toBranchId":   shop.ID,
		"lines":        []map[string]any{{"itemId": cheese.ID, "quantity": 400}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "Pending", created["status"])
	transferID := created["id"].(string)

	w = e.do(t, http.MethodPost, "/transfers/"+transferID+"/receive", manager, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decode(t, w)["code"])

	w = e.do(t, http.MethodPost, "/transfers/"+transferID+"/approve", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "In-Transit", decode(t, w)["status"])
	assert.Equal(t, 600.0, e.Qty(t, hq.ID, cheese.ID).Float64())

	w = e.do(t, http.MethodGet, "/branches/"+shop.ID.String()+"/transfers/incoming", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = e.do(t, http.MethodPost, "/transfers/"+transferID+"/receive", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Completed", decode(t, w)["status"])
	assert.Equal(t, 400.0, e.Qty(t, shop.ID, cheese.ID).Float64())

	w = e.do(t, http.MethodGet, "/transfers/"+transferID+"/history", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["count"])
}

func TestReportsOverHTTP(t *testing.T) {
	e := newAPI(t, nil)
	admin := e.token(t, appctx.RoleAdmin, "")

	w := e.do(t, http.MethodGet, "/reports/pnl", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "0", decode(t, w)["revenue"])

	w = e.do(t, http.MethodGet, "/reports/pnl?from=2026-03-01T00:00:00Z&to=2026-02-01T00:00:00Z", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/ledger?type=Refund", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/reports/branches", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["items"])
}

func TestQuantityInputRejected(t *testing.T) {
	e := newAPI(t, nil)
	branch := e.Branch(t, "Downtown")
	flour := e.Item(t, "Flour", "g", "")
	e.Stock(t, branch.ID, flour.ID, "100")
	manager := e.token(t, appctx.RoleManager, "")

	for _, raw := range []string{`1844674407370955.1617`, `"0.00015"`, `1e30`} {
		w := e.do(t, http.MethodPost, "/waste", manager, map[string]any{
			"branchId": branch.ID,
			"itemId":   flour.ID,
			"quantity": json.RawMessage(raw),
			"reason":   "spilled",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
	}

	assert.Equal(t, "100.0000", e.Qty(t, branch.ID, flour.ID).String())
}
