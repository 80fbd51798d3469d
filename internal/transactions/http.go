package transactions

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/events"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/projects"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
	"github.com/buildledger/buildledger-backend/internal/subcontractors"
)

type ledgerStore interface {
	Insert(ctx context.Context, t Transaction) (*Transaction, error)
	ListByProject(ctx context.Context, projectID string) ([]Transaction, error)
	Delete(ctx context.Context, transactionID int64, companyID string) (bool, error)
}

type projectDirectory interface {
	Get(ctx context.Context, companyID, projectID string) (*projects.Project, error)
}

type subcontractorDirectory interface {
	Create(ctx context.Context, companyID, name string, details *string) (*subcontractors.Subcontractor, error)
	NamesByID(ctx context.Context, ids []string) (map[string]string, error)
}

type auditTrail interface {
	Insert(ctx context.Context, entry postgres.AuditEntry) error
}

type Handler struct {
	repo      ledgerStore
	projects  projectDirectory
	subs      subcontractorDirectory
	publisher *events.Publisher
	audit     auditTrail
	logger    *log.Logger
}

// RegisterProjectSubroutes mounts record/history under the projects group;
// Register mounts the flat delete route.
func RegisterProjectSubroutes(rg *gin.RouterGroup, repo ledgerStore, projectRepo projectDirectory, subRepo subcontractorDirectory, publisher *events.Publisher, audit auditTrail, logger *log.Logger) *Handler {
	h := &Handler{repo: repo, projects: projectRepo, subs: subRepo, publisher: publisher, audit: audit, logger: logger.WithComponent("transactions")}

	rg.POST("/:project_id/transactions", h.record)
	rg.GET("/:project_id/transactions", h.history)

	return h
}

func Register(rg *gin.RouterGroup, h *Handler) {
	rg.DELETE("/:transaction_id", h.delete)
}

// resolveProject loads the project under the caller's company, so one tenant
// cannot touch another tenant's ledger by guessing project ids.
func (h *Handler) resolveProject(c *gin.Context) (*projects.Project, bool) {
	p, err := h.projects.Get(c.Request.Context(), auth.CompanyID(c), c.Param("project_id"))
	if errors.Is(err, projects.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load project"})
		return nil, false
	}
	return p, true
}

type newSubcontractorReq struct {
	Name    string  `json:"name"`
	Details *string `json:"details"`
}

type recordReq struct {
	Amount           *float64             `json:"amount"`
	Date             *string              `json:"date"`
	TransactionType  *string              `json:"transaction_type"`
	Categories       *string              `json:"categories"`
	SubcontractorID  *string              `json:"subcontractor_id"`
	Description      *string              `json:"description"`
	InvoiceNumber    *string              `json:"invoice_number"`
	NewSubcontractor *newSubcontractorReq `json:"new_subcontractor"`
}

// record implements payment recording: amount, date and type are required;
// an inline new subcontractor is inserted first; the project's client is
// attached to the row.
func (h *Handler) record(c *gin.Context) {
	p, ok := h.resolveProject(c)
	if !ok {
		return
	}

	var req recordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if req.Amount == nil || req.Date == nil || strings.TrimSpace(*req.Date) == "" ||
		req.TransactionType == nil || strings.TrimSpace(*req.TransactionType) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "amount, date and transaction_type are required"})
		return
	}

	ctx := c.Request.Context()

	subcontractorID := req.SubcontractorID
	if req.NewSubcontractor != nil {
		if strings.TrimSpace(req.NewSubcontractor.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "subcontractor name is required for a new subcontractor"})
			return
		}
		sub, err := h.subs.Create(ctx, auth.CompanyID(c), strings.TrimSpace(req.NewSubcontractor.Name), req.NewSubcontractor.Details)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "insert subcontractor: " + err.Error()})
			return
		}
		subcontractorID = &sub.SubcontractorID
	}

	t, err := h.repo.Insert(ctx, Transaction{
		ProjectID:       p.ProjectID,
		Amount:          req.Amount,
		Date:            req.Date,
		TransactionType: req.TransactionType,
		Categories:      req.Categories,
		ClientID:        p.ClientID,
		SubcontractorID: subcontractorID,
		Description:     req.Description,
		InvoiceNumber:   req.InvoiceNumber,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}

	h.publisher.Publish(ctx, events.Event{
		Type:      events.TransactionRecorded,
		ProjectID: p.ProjectID,
		UserID:    auth.UserUID(c),
		Data:      map[string]interface{}{"transaction_id": t.TransactionID},
	})

	c.JSON(http.StatusCreated, gin.H{"ok": true, "transaction": t})
}

type historyItem struct {
	Transaction
	SubcontractorName string `json:"subcontractor_name,omitempty"`
}

// history returns the ledger with subcontractor names resolved.
func (h *Handler) history(c *gin.Context) {
	p, ok := h.resolveProject(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	items, err := h.repo.ListByProject(ctx, p.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]bool)
	for _, t := range items {
		if t.SubcontractorID != nil && !seen[*t.SubcontractorID] {
			seen[*t.SubcontractorID] = true
			ids = append(ids, *t.SubcontractorID)
		}
	}

	names, err := h.subs.NamesByID(ctx, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	out := make([]historyItem, 0, len(items))
	for _, t := range items {
		item := historyItem{Transaction: t}
		if t.SubcontractorID != nil {
			item.SubcontractorName = names[*t.SubcontractorID]
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "transactions": out})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("transaction_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid transaction id"})
		return
	}

	ctx := c.Request.Context()

	ok, err := h.repo.Delete(ctx, id, auth.CompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "transaction not found"})
		return
	}

	h.publisher.Publish(ctx, events.Event{
		Type:   events.TransactionDeleted,
		UserID: auth.UserUID(c),
		Data:   map[string]interface{}{"transaction_id": id},
	})

	if h.audit != nil {
		if err := h.audit.Insert(ctx, postgres.AuditEntry{
			UserID:  auth.UserUID(c),
			Action:  "transaction.delete",
			Details: map[string]interface{}{"transaction_id": id},
		}); err != nil {
			h.logger.Warn("audit insert failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
