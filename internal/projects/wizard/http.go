package wizard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
)

type Handler struct {
	store     *Store
	finalizer *Finalizer
}

func Register(rg *gin.RouterGroup, store *Store, finalizer *Finalizer) {
	h := &Handler{store: store, finalizer: finalizer}

	rg.POST("", h.open)
	rg.GET("/:session_id", h.get)
	rg.PUT("/:session_id/project", h.submitProject)
	rg.PUT("/:session_id/client", h.submitClient)
	rg.PUT("/:session_id/budget", h.submitBudget)
	rg.POST("/:session_id/back", h.back)
	rg.POST("/:session_id/finalize", h.finalize)
}

func (h *Handler) open(c *gin.Context) {
	state, err := h.store.Open(c.Request.Context(), auth.UserUID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": state})
}

func (h *Handler) get(c *gin.Context) {
	state, err := h.store.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": state})
}

func (h *Handler) submitProject(c *gin.Context) {
	var draft ProjectDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	h.step(c, func(state *State) error {
		return state.SubmitProjectDetails(draft)
	})
}

func (h *Handler) submitClient(c *gin.Context) {
	var draft ClientDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	h.step(c, func(state *State) error {
		return state.SubmitClientDetails(draft)
	})
}

func (h *Handler) submitBudget(c *gin.Context) {
	var body struct {
		Sections []BudgetSection `json:"sections"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	h.step(c, func(state *State) error {
		return state.SubmitBudgetDetails(body.Sections)
	})
}

func (h *Handler) back(c *gin.Context) {
	h.step(c, func(state *State) error {
		state.GoBack()
		return nil
	})
}

// step loads the session, applies the mutation, and saves it back.
func (h *Handler) step(c *gin.Context, apply func(*State) error) {
	ctx := c.Request.Context()

	state, err := h.store.Get(ctx, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := apply(state); err != nil {
		writeError(c, err)
		return
	}

	if err := h.store.Save(ctx, state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": state})
}

func (h *Handler) finalize(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

	state, err := h.store.Get(ctx, sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.store.BeginFinalize(ctx, sessionID); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.finalizer.Finalize(ctx, auth.CompanyID(c), auth.UserUID(c), state)
	if err != nil {
		h.store.EndFinalize(ctx, sessionID)
		writeError(c, err)
		return
	}

	// the session is done; replaying it would create a second project
	_ = h.store.Delete(ctx, sessionID)

	c.JSON(http.StatusCreated, gin.H{"ok": true, "result": result})
}

func writeError(c *gin.Context, err error) {
	var vErr *ValidationError
	var stepErr *ErrWrongStep
	var pErr *PersistenceError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": vErr.Message, "field": vErr.Field})
	case errors.As(err, &stepErr):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": stepErr.Error()})
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "wizard session not found"})
	case errors.Is(err, ErrFinalizeInFlight):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "submission already in progress"})
	case errors.As(err, &pErr):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": pErr.Error(), "stage": pErr.Stage})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}
