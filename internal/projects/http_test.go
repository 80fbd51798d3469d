package projects

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
)

type fakeStore struct {
	projects map[string]*Project // companyID/projectID
	deleted  []string
}

func (f *fakeStore) ListByCompany(_ context.Context, _ string) ([]Project, error) {
	return nil, nil
}

func (f *fakeStore) Get(_ context.Context, companyID, projectID string) (*Project, error) {
	p, ok := f.projects[companyID+"/"+projectID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) Delete(_ context.Context, companyID, projectID string) (bool, error) {
	if _, ok := f.projects[companyID+"/"+projectID]; !ok {
		return false, nil
	}
	f.deleted = append(f.deleted, projectID)
	return true, nil
}

type fakeAudit struct {
	entries []postgres.AuditEntry
}

func (f *fakeAudit) Insert(_ context.Context, entry postgres.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func newTestRouter(t *testing.T, store *fakeStore, audit *fakeAudit) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxAuthUID, "user-1")
		c.Set(auth.CtxCompanyID, "company-a")
		c.Next()
	})
	Register(r.Group("/projects"), store, nil, audit, log.New(log.DefaultConfig()))
	return r
}

func TestDeleteWritesAuditEntry(t *testing.T) {
	store := &fakeStore{projects: map[string]*Project{"company-a/p1": {ProjectID: "p1"}}}
	audit := &fakeAudit{}
	r := newTestRouter(t, store, audit)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/projects/p1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"p1"}, store.deleted)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "project.delete", audit.entries[0].Action)
	assert.Equal(t, "user-1", audit.entries[0].UserID)
	assert.Equal(t, "p1", audit.entries[0].Details["project_id"])
}

func TestDeleteForeignProjectNotFound(t *testing.T) {
	store := &fakeStore{projects: map[string]*Project{"company-b/p1": {ProjectID: "p1"}}}
	audit := &fakeAudit{}
	r := newTestRouter(t, store, audit)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/projects/p1", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, store.deleted)
	assert.Empty(t, audit.entries)
}

func TestGetScopedToCompany(t *testing.T) {
	store := &fakeStore{projects: map[string]*Project{"company-b/p1": {ProjectID: "p1"}}}
	r := newTestRouter(t, store, &fakeAudit{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects/p1", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
