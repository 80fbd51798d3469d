package changeorders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/budgets"
	"github.com/buildledger/buildledger-backend/internal/projects"
)

type fakeProjects struct {
	owned map[string]*projects.Project // companyID/projectID
}

func (f *fakeProjects) Get(_ context.Context, companyID, projectID string) (*projects.Project, error) {
	p, ok := f.owned[companyID+"/"+projectID]
	if !ok {
		return nil, fmt.Errorf("load project: %w", projects.ErrNotFound)
	}
	return p, nil
}

type statusChange struct {
	id     string
	status string
}

type fakeOrders struct {
	orders    map[string]*ChangeOrder
	created   []ChangeOrder
	changes   []statusChange
	statusErr error
}

func (f *fakeOrders) Create(_ context.Context, co ChangeOrder) (*ChangeOrder, error) {
	co.ChangeOrderID = "55555555-5555-5555-5555-555555555555"
	co.Status = StatusPending
	f.created = append(f.created, co)
	return &co, nil
}

func (f *fakeOrders) ListByProject(_ context.Context, _ string) ([]ChangeOrder, error) {
	return nil, nil
}

func (f *fakeOrders) Get(_ context.Context, changeOrderID string) (*ChangeOrder, error) {
	co, ok := f.orders[changeOrderID]
	if !ok {
		return nil, ErrNotFound
	}
	return co, nil
}

func (f *fakeOrders) SetStatus(_ context.Context, changeOrderID, status, _ string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.changes = append(f.changes, statusChange{id: changeOrderID, status: status})
	return nil
}

type revision struct {
	budgetID string
	delta    float64
}

type fakeBudgets struct {
	budget    *budgets.Budget
	revisions []revision
}

func (f *fakeBudgets) GetByProject(_ context.Context, _ string) (*budgets.Budget, error) {
	if f.budget == nil {
		return nil, budgets.ErrNotFound
	}
	return f.budget, nil
}

func (f *fakeBudgets) AddToRevised(_ context.Context, budgetID string, delta float64, _ string) error {
	f.revisions = append(f.revisions, revision{budgetID: budgetID, delta: delta})
	return nil
}

func newTestRouter(t *testing.T, orders *fakeOrders, ledger *fakeBudgets, dir *fakeProjects) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxAuthUID, "user-1")
		c.Set(auth.CtxCompanyID, "company-a")
		c.Next()
	})

	h := RegisterProjectSubroutes(r.Group("/projects"), orders, ledger, dir, nil)
	Register(r.Group("/change-orders"), h)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func costPtr(f float64) *float64 { return &f }

func ownedProject(id string) *fakeProjects {
	return &fakeProjects{owned: map[string]*projects.Project{"company-a/" + id: {ProjectID: id}}}
}

func TestCreateForeignProjectNotFound(t *testing.T) {
	orders := &fakeOrders{}
	r := newTestRouter(t, orders, &fakeBudgets{}, &fakeProjects{})

	rr := doJSON(t, r, http.MethodPost, "/projects/p1/change-orders", map[string]interface{}{"additional_cost": 500})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, orders.created)
}

func TestListForeignProjectNotFound(t *testing.T) {
	r := newTestRouter(t, &fakeOrders{}, &fakeBudgets{}, &fakeProjects{})

	rr := doJSON(t, r, http.MethodGet, "/projects/p1/change-orders", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApproveForeignOrderReadsAsNotFound(t *testing.T) {
	orders := &fakeOrders{orders: map[string]*ChangeOrder{
		"co-1": {ChangeOrderID: "co-1", ProjectID: "p1", Status: StatusPending, AdditionalCost: costPtr(250)},
	}}
	ledger := &fakeBudgets{budget: &budgets.Budget{BudgetID: "b1"}}
	dir := &fakeProjects{owned: map[string]*projects.Project{"company-b/p1": {ProjectID: "p1"}}}
	r := newTestRouter(t, orders, ledger, dir)

	rr := doJSON(t, r, http.MethodPost, "/change-orders/co-1/approve", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, orders.changes)
	assert.Empty(t, ledger.revisions)
}

func TestApproveFoldsCostIntoBudgetOnce(t *testing.T) {
	orders := &fakeOrders{orders: map[string]*ChangeOrder{
		"co-1": {ChangeOrderID: "co-1", ProjectID: "p1", Status: StatusPending, AdditionalCost: costPtr(250)},
	}}
	ledger := &fakeBudgets{budget: &budgets.Budget{BudgetID: "b1"}}
	r := newTestRouter(t, orders, ledger, ownedProject("p1"))

	rr := doJSON(t, r, http.MethodPost, "/change-orders/co-1/approve", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []statusChange{{id: "co-1", status: StatusApproved}}, orders.changes)
	require.Len(t, ledger.revisions, 1)
	assert.Equal(t, revision{budgetID: "b1", delta: 250}, ledger.revisions[0])
}

func TestApproveWithoutCostLeavesBudgetAlone(t *testing.T) {
	orders := &fakeOrders{orders: map[string]*ChangeOrder{
		"co-1": {ChangeOrderID: "co-1", ProjectID: "p1", Status: StatusPending},
	}}
	ledger := &fakeBudgets{budget: &budgets.Budget{BudgetID: "b1"}}
	r := newTestRouter(t, orders, ledger, ownedProject("p1"))

	rr := doJSON(t, r, http.MethodPost, "/change-orders/co-1/approve", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, ledger.revisions)
}

func TestApproveAlreadyDecidedConflicts(t *testing.T) {
	orders := &fakeOrders{
		orders: map[string]*ChangeOrder{
			"co-1": {ChangeOrderID: "co-1", ProjectID: "p1", Status: StatusApproved},
		},
		statusErr: ErrNotFound,
	}
	r := newTestRouter(t, orders, &fakeBudgets{}, ownedProject("p1"))

	rr := doJSON(t, r, http.MethodPost, "/change-orders/co-1/approve", nil)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRejectForeignOrderReadsAsNotFound(t *testing.T) {
	orders := &fakeOrders{orders: map[string]*ChangeOrder{
		"co-1": {ChangeOrderID: "co-1", ProjectID: "p1", Status: StatusPending},
	}}
	r := newTestRouter(t, orders, &fakeBudgets{}, &fakeProjects{})

	rr := doJSON(t, r, http.MethodPost, "/change-orders/co-1/reject", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, orders.changes)
}
