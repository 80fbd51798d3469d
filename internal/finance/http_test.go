package finance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/projects"
)

type fakeProjects struct {
	err error
}

func (f *fakeProjects) Get(_ context.Context, _, _ string) (*projects.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &projects.Project{ProjectID: "p1"}, nil
}

func TestDashboardWrappedNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxAuthUID, "user-1")
		c.Set(auth.CtxCompanyID, "company-a")
		c.Next()
	})
	// the repo may wrap the sentinel; the handler still has to map it to 404
	dir := &fakeProjects{err: fmt.Errorf("load project: %w", projects.ErrNotFound)}
	RegisterProjectSubroutes(r.Group("/projects"), nil, dir)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects/p1/financials", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
