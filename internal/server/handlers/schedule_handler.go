package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/service/schedule"
)

// CollectionSchedule returns the day's schedule as JSON, or as PDF when the path ends in .pdf.
func (h *Handler) CollectionSchedule(c *gin.Context) {
	date := c.Param("date")
	asPDF := strings.HasSuffix(date, ".pdf")
	date = strings.TrimSuffix(date, ".pdf")
	if date == "today" {
		date = h.today().Format(models.DateLayout)
	}
	if !validDate(date) {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	sched := schedule.Build(date, h.Orders.GetOrdersForDate(date), h.Customers)
	if !asPDF {
		c.JSON(http.StatusOK, sched)
		return
	}

	doc, err := schedule.RenderPDF(h.ShopName, sched)
	if err != nil {
		h.fail(c, "schedule", err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="collections-`+date+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
