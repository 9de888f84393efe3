package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/butchershop/internal/service/undo"
)

type undoState struct {
	Last    *undo.Action  `json:"last"`
	Actions []undo.Action `json:"actions"`
}

// UndoState returns the visible last action and the retained stack.
func (h *Handler) UndoState(c *gin.Context) {
	state := undoState{Actions: h.Undo.Actions()}
	if last, ok := h.Undo.Last(); ok {
		state.Last = &last
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) PerformUndo(c *gin.Context) {
	action, err := h.Undo.Perform(c.Request.Context())
	if err != nil {
		h.fail(c, "undo", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": action})
}

func (h *Handler) ClearUndo(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	h.Undo.Clear()
	c.Status(http.StatusNoContent)
}
