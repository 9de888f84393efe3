package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/service/templates"
)

func (h *Handler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.Templates.List(), "placeholders": templates.Placeholders})
}

func (h *Handler) GetTemplate(c *gin.Context) {
	tpl, err := h.Templates.Get(c.Param("id"))
	if err != nil {
		h.fail(c, "templates", err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// SaveTemplate creates on POST and replaces on PUT.
func (h *Handler) SaveTemplate(c *gin.Context) {
	var tpl models.EmailTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	status := http.StatusCreated
	if id := c.Param("id"); id != "" {
		if _, err := h.Templates.Get(id); err != nil {
			h.fail(c, "templates", err)
			return
		}
		tpl.ID = id
		status = http.StatusOK
	} else {
		tpl.ID = ""
	}

	saved, err := h.Templates.Save(c.Request.Context(), tpl)
	if err != nil {
		h.fail(c, "templates", err)
		return
	}
	c.JSON(status, saved)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "templates", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type renderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// RenderTemplate fills a template for one order and returns the message with its mailto link.
func (h *Handler) RenderTemplate(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}
	msg, err := h.Notify.Compose(c.Request.Context(), c.Param("id"), req.OrderID)
	if err != nil {
		h.fail(c, "notify", err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

type notifyRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	OrderID    string `json:"orderId" binding:"required"`
	Phone      string `json:"phone"`
}

// SendNotification composes a message and dispatches a text copy to the customer's phone.
func (h *Handler) SendNotification(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "templateId and orderId are required")
		return
	}
	msg, err := h.Notify.Compose(c.Request.Context(), req.TemplateID, req.OrderID)
	if err != nil {
		h.fail(c, "notify", err)
		return
	}

	phone := req.Phone
	if phone == "" {
		if order, err := h.Orders.GetOrderByID(req.OrderID); err == nil {
			if customer, err := h.Customers.GetCustomerByID(order.CustomerID); err == nil {
				phone = customer.Phone
			}
		}
	}
	if phone == "" {
		badRequest(c, "customer has no phone number")
		return
	}

	id, err := h.Notify.Send(c.Request.Context(), msg, phone)
	if err != nil {
		h.fail(c, "notify", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"messageId": id, "message": msg})
}
