package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/butchershop/internal/domain/models"
)

// ListCustomers returns every customer, or matches for ?q=.
func (h *Handler) ListCustomers(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		c.JSON(http.StatusOK, h.Customers.SearchCustomers(q))
		return
	}
	c.JSON(http.StatusOK, h.Customers.ListCustomers())
}

func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.Customers.GetCustomerByID(c.Param("id"))
	if err != nil {
		h.fail(c, "customers", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var in models.CustomerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	customer, err := h.Customers.AddCustomer(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "customers", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	var upd models.CustomerUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	customer, err := h.Customers.UpdateCustomer(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.fail(c, "customers", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Customers.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "customers", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CustomerOrders lists a customer's orders by collection date.
func (h *Handler) CustomerOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orders.GetOrdersByCustomerID(c.Param("id")))
}
