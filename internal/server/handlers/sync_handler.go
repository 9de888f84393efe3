package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/butchershop/internal/service/sheetsync"
)

// RunSync pushes data to the spreadsheet; the type comes from the path.
func (h *Handler) RunSync(c *gin.Context) {
	typ, err := sheetsync.ParseType(c.Param("type"))
	if err != nil {
		h.fail(c, "sync", err)
		return
	}
	res, err := h.Sync.Sync(c.Request.Context(), typ)
	if err != nil {
		h.fail(c, "sync", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) SyncStatus(c *gin.Context) {
	resp := gin.H{"enabled": h.Sync.Enabled(), "types": sheetsync.Types}
	if h.Schedule != nil && h.Sync.Enabled() {
		if next := h.Schedule.NextSync(); !next.IsZero() {
			resp["nextDaily"] = next.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}
