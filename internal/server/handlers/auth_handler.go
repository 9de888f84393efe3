package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}
	if err := h.Auth.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		h.fail(c, "auth", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context()); err != nil {
		h.fail(c, "auth", err)
		return
	}
	h.Undo.Clear()
	c.Status(http.StatusNoContent)
}
