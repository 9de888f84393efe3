package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/service/backup"
)

const maxImportSize = 32 << 20

func (h *Handler) ListBackups(c *gin.Context) {
	list, err := h.Backups.ListBackups(c.Request.Context())
	if err != nil {
		h.fail(c, "backup", err)
		return
	}
	resp := gin.H{"backups": list}
	if h.Schedule != nil {
		if next := h.Schedule.NextBackup(); !next.IsZero() {
			resp["nextAutomatic"] = next.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// CreateBackup snapshots the current collections as a manual backup.
func (h *Handler) CreateBackup(c *gin.Context) {
	info, err := h.Backups.CreateBackup(c.Request.Context(), h.Customers.Snapshot(), h.Orders.Snapshot(), models.BackupManual)
	if err != nil {
		h.fail(c, "backup", err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (h *Handler) RestoreBackup(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	snap, err := h.Backups.RestoreFromBackup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "backup", err)
		return
	}
	h.apply(c, snap)
}

func (h *Handler) DeleteBackup(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Backups.DeleteBackup(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "backup", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportBackup streams the current collections as a downloadable file.
func (h *Handler) ExportBackup(c *gin.Context) {
	filename := backup.ExportFilename(h.today())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := h.Backups.ExportToFile(c.Writer, h.Customers.Snapshot(), h.Orders.Snapshot()); err != nil {
		h.logger.Error("export failed after headers were sent", zap.Error(err))
		if h.Errors != nil {
			h.Errors.Record(c.Request.Context(), "backup", err)
		}
	}
}

// ImportBackup accepts either a multipart "file" field or a raw JSON body.
func (h *Handler) ImportBackup(c *gin.Context) {
	if !confirmed(c) {
		return
	}

	// FormFile parses from c.Request.Body, so the cap covers uploads as well as raw JSON.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.importLimit)
	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.fail(c, "backup", err)
				return
			}
			badRequest(c, "multipart upload must carry a file field")
			return
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, "unable to read uploaded file")
			return
		}
		defer f.Close()
		body = f
	}

	snap, err := backup.ImportFromFile(body)
	if err != nil {
		h.fail(c, "backup", err)
		return
	}
	h.apply(c, snap)
}

func (h *Handler) apply(c *gin.Context, snap models.Snapshot) {
	if err := h.Restorer.Restore(c.Request.Context(), snap); err != nil {
		h.fail(c, "backup", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customers": len(snap.Customers),
		"orders":    len(snap.Orders),
		"timestamp": snap.Timestamp,
	})
}
