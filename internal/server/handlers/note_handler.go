package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type noteRequest struct {
	StaffName string `json:"staffName"`
	Content   string `json:"content"`
}

func (h *Handler) OrderNotes(c *gin.Context) {
	c.JSON(http.StatusOK, h.Notes.GetNotesForOrder(c.Param("id")))
}

// AddNote attaches a note to an existing order.
func (h *Handler) AddNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if _, err := h.Orders.GetOrderByID(c.Param("id")); err != nil {
		h.fail(c, "notes", err)
		return
	}
	note, err := h.Notes.AddNote(c.Request.Context(), c.Param("id"), req.StaffName, req.Content)
	if err != nil {
		h.fail(c, "notes", err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) DeleteNote(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Notes.DeleteNote(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "notes", err)
		return
	}
	c.Status(http.StatusNoContent)
}
