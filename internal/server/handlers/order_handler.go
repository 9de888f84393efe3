package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/service/orders"
)

// ListOrders supports ?status=, ?customer=, ?series=, ?date= and ?from=&to= filters.
func (h *Handler) ListOrders(c *gin.Context) {
	switch {
	case c.Query("status") != "":
		status := models.OrderStatus(c.Query("status"))
		if !status.Valid() {
			badRequest(c, "unknown status")
			return
		}
		c.JSON(http.StatusOK, h.Orders.GetOrdersByStatus(status))
	case c.Query("customer") != "":
		c.JSON(http.StatusOK, h.Orders.GetOrdersByCustomerID(c.Query("customer")))
	case c.Query("series") != "":
		c.JSON(http.StatusOK, h.Orders.GetOrdersByParentID(c.Query("series")))
	case c.Query("date") != "":
		if !validDate(c.Query("date")) {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		c.JSON(http.StatusOK, h.Orders.GetOrdersForDate(c.Query("date")))
	case c.Query("from") != "" || c.Query("to") != "":
		from, to, ok := dateRange(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, h.Orders.GetOrdersByDateRange(from, to))
	default:
		c.JSON(http.StatusOK, h.Orders.ListOrders())
	}
}

// SearchOrders matches ?q= against upcoming orders.
func (h *Handler) SearchOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orders.SearchOrders(c.Query("q")))
}

func (h *Handler) OrderStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orders.GetOrderStats())
}

// Calendar counts collections per day between ?from= and ?to=.
func (h *Handler) Calendar(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Orders.GetCollectionCalendar(from, to))
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.Orders.GetOrderByID(c.Param("id"))
	if err != nil {
		h.fail(c, "orders", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type createOrderResponse struct {
	Order       models.Order `json:"order"`
	SeriesCount int          `json:"seriesCount"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var in models.NewOrder
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := orders.ValidateNewOrder(in, h.today()); err != nil {
		h.fail(c, "orders", err)
		return
	}

	order, err := h.Orders.AddOrder(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "orders", err)
		return
	}

	resp := createOrderResponse{Order: order, SeriesCount: 1}
	if order.ParentOrderID != nil {
		resp.SeriesCount = len(h.Orders.GetOrdersByParentID(*order.ParentOrderID))
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var upd models.OrderUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := orders.ValidateUpdate(upd); err != nil {
		h.fail(c, "orders", err)
		return
	}
	order, err := h.Orders.UpdateOrder(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.fail(c, "orders", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "orders", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicateOrder returns a pre-filled new order; nothing is saved.
func (h *Handler) DuplicateOrder(c *gin.Context) {
	data, err := h.Orders.GetDuplicateOrderData(c.Param("id"))
	if err != nil {
		h.fail(c, "orders", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func dateRange(c *gin.Context) (string, string, bool) {
	from, to := c.Query("from"), c.Query("to")
	if !validDate(from) || !validDate(to) || from > to {
		badRequest(c, "from and to must be YYYY-MM-DD with from <= to")
		return "", "", false
	}
	return from, to, true
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}
