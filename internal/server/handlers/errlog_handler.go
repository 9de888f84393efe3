package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ErrorLogs(c *gin.Context) {
	entries, err := h.Errors.List(c.Request.Context())
	if err != nil {
		h.fail(c, "errlog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"collections": gin.H{
			"customers": h.Customers.LastError(),
			"orders":    h.Orders.LastError(),
			"products":  h.Products.LastError(),
		},
	})
}

func (h *Handler) ClearErrorLogs(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Errors.Clear(c.Request.Context()); err != nil {
		h.fail(c, "errlog", err)
		return
	}
	c.Status(http.StatusNoContent)
}
