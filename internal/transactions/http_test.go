package transactions

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
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/projects"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
	"github.com/buildledger/buildledger-backend/internal/subcontractors"
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

type deletedRow struct {
	id      int64
	company string
}

type fakeLedger struct {
	inserted []Transaction
	rows     []Transaction
	deleted  []deletedRow
	deleteOK bool
}

func (f *fakeLedger) Insert(_ context.Context, t Transaction) (*Transaction, error) {
	t.TransactionID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, t)
	return &t, nil
}

func (f *fakeLedger) ListByProject(_ context.Context, _ string) ([]Transaction, error) {
	return f.rows, nil
}

func (f *fakeLedger) Delete(_ context.Context, id int64, companyID string) (bool, error) {
	f.deleted = append(f.deleted, deletedRow{id: id, company: companyID})
	return f.deleteOK, nil
}

type fakeSubs struct{}

func (fakeSubs) Create(_ context.Context, _, name string, details *string) (*subcontractors.Subcontractor, error) {
	return &subcontractors.Subcontractor{SubcontractorID: "33333333-3333-3333-3333-333333333333", Name: name, Details: details}, nil
}

func (fakeSubs) NamesByID(_ context.Context, _ []string) (map[string]string, error) {
	return map[string]string{}, nil
}

type fakeAudit struct {
	entries []postgres.AuditEntry
}

func (f *fakeAudit) Insert(_ context.Context, entry postgres.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func newTestRouter(t *testing.T, ledger *fakeLedger, dir *fakeProjects, audit *fakeAudit) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxAuthUID, "user-1")
		c.Set(auth.CtxCompanyID, "company-a")
		c.Next()
	})

	h := RegisterProjectSubroutes(r.Group("/projects"), ledger, dir, fakeSubs{}, nil, audit, log.New(log.DefaultConfig()))
	Register(r.Group("/transactions"), h)
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

func validRecordBody() map[string]interface{} {
	return map[string]interface{}{
		"amount":           1200.50,
		"date":             "2024-03-10",
		"transaction_type": TypeExpense,
	}
}

func TestRecordForeignProjectNotFound(t *testing.T) {
	ledger := &fakeLedger{}
	dir := &fakeProjects{owned: map[string]*projects.Project{
		"company-b/p1": {ProjectID: "p1"},
	}}
	r := newTestRouter(t, ledger, dir, &fakeAudit{})

	rr := doJSON(t, r, http.MethodPost, "/projects/p1/transactions", validRecordBody())

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, ledger.inserted)
}

func TestRecordAttachesProjectClient(t *testing.T) {
	clientID := "44444444-4444-4444-4444-444444444444"
	ledger := &fakeLedger{}
	dir := &fakeProjects{owned: map[string]*projects.Project{
		"company-a/p1": {ProjectID: "p1", ClientID: &clientID},
	}}
	r := newTestRouter(t, ledger, dir, &fakeAudit{})

	rr := doJSON(t, r, http.MethodPost, "/projects/p1/transactions", validRecordBody())

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, ledger.inserted, 1)
	assert.Equal(t, "p1", ledger.inserted[0].ProjectID)
	require.NotNil(t, ledger.inserted[0].ClientID)
	assert.Equal(t, clientID, *ledger.inserted[0].ClientID)
}

func TestHistoryForeignProjectNotFound(t *testing.T) {
	ledger := &fakeLedger{rows: []Transaction{{TransactionID: 1, ProjectID: "p1"}}}
	dir := &fakeProjects{owned: map[string]*projects.Project{}}
	r := newTestRouter(t, ledger, dir, &fakeAudit{})

	rr := doJSON(t, r, http.MethodGet, "/projects/p1/transactions", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteScopedToCompany(t *testing.T) {
	ledger := &fakeLedger{deleteOK: true}
	audit := &fakeAudit{}
	r := newTestRouter(t, ledger, &fakeProjects{}, audit)

	rr := doJSON(t, r, http.MethodDelete, "/transactions/7", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, ledger.deleted, 1)
	assert.Equal(t, deletedRow{id: 7, company: "company-a"}, ledger.deleted[0])

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "transaction.delete", audit.entries[0].Action)
	assert.Equal(t, "user-1", audit.entries[0].UserID)
}

func TestDeleteUnknownTransactionNotFound(t *testing.T) {
	ledger := &fakeLedger{deleteOK: false}
	audit := &fakeAudit{}
	r := newTestRouter(t, ledger, &fakeProjects{}, audit)

	rr := doJSON(t, r, http.MethodDelete, "/transactions/7", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, audit.entries)
}
