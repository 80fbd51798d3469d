package projects

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/events"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
)

type projectStore interface {
	ListByCompany(ctx context.Context, companyID string) ([]Project, error)
	Get(ctx context.Context, companyID, projectID string) (*Project, error)
	Delete(ctx context.Context, companyID, projectID string) (bool, error)
}

type auditTrail interface {
	Insert(ctx context.Context, entry postgres.AuditEntry) error
}

type Handler struct {
	repo      projectStore
	publisher *events.Publisher
	audit     auditTrail
	logger    *log.Logger
}

// Register wires the project list/header/delete routes. Project creation
// happens only through the wizard.
func Register(rg *gin.RouterGroup, repo projectStore, publisher *events.Publisher, audit auditTrail, logger *log.Logger) {
	h := &Handler{repo: repo, publisher: publisher, audit: audit, logger: logger.WithComponent("projects")}

	rg.GET("", h.list)
	rg.GET("/:project_id", h.get)
	rg.DELETE("/:project_id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.ListByCompany(c.Request.Context(), auth.CompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.repo.Get(c.Request.Context(), auth.CompanyID(c), c.Param("project_id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	projectID := c.Param("project_id")
	ctx := c.Request.Context()

	ok, err := h.repo.Delete(ctx, auth.CompanyID(c), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	h.publisher.Publish(ctx, events.Event{
		Type:      events.ProjectDeleted,
		ProjectID: projectID,
		UserID:    auth.UserUID(c),
	})

	if h.audit != nil {
		if err := h.audit.Insert(ctx, postgres.AuditEntry{
			UserID:  auth.UserUID(c),
			Action:  "project.delete",
			Details: map[string]interface{}{"project_id": projectID},
		}); err != nil {
			h.logger.Warn("audit insert failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
