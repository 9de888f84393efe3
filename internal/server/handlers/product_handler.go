package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts loads the seasonal range, degrading silently to the built-in list.
func (h *Handler) ListProducts(c *gin.Context) {
	list := h.Products.LoadProducts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"products":     list,
		"origin":       h.Products.Origin(),
		"cacheExpired": h.Products.IsCacheExpired(c.Request.Context()),
		"error":        h.Products.LastError(),
	})
}

func (h *Handler) RefreshProducts(c *gin.Context) {
	list, err := h.Products.RefreshProducts(c.Request.Context())
	if err != nil {
		h.fail(c, "products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list, "origin": h.Products.Origin()})
}

func (h *Handler) ClearProductCache(c *gin.Context) {
	if err := h.Products.ClearCache(c.Request.Context()); err != nil {
		h.fail(c, "products", err)
		return
	}
	c.Status(http.StatusNoContent)
}
