package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(h *handlers.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.POST("/login", h.Login)

	staff := api.Group("")
	staff.Use(h.Auth.Middleware())
	{
		staff.POST("/logout", h.Logout)

		staff.GET("/customers", h.ListCustomers)
		staff.POST("/customers", h.CreateCustomer)
		staff.GET("/customers/:id", h.GetCustomer)
		staff.PATCH("/customers/:id", h.UpdateCustomer)
		staff.DELETE("/customers/:id", h.DeleteCustomer)
		staff.GET("/customers/:id/orders", h.CustomerOrders)

		staff.GET("/orders", h.ListOrders)
		staff.POST("/orders", h.CreateOrder)
		staff.GET("/orders/search", h.SearchOrders)
		staff.GET("/orders/stats", h.OrderStats)
		staff.GET("/orders/calendar", h.Calendar)
		staff.GET("/orders/:id", h.GetOrder)
		staff.PATCH("/orders/:id", h.UpdateOrder)
		staff.DELETE("/orders/:id", h.DeleteOrder)
		staff.GET("/orders/:id/duplicate", h.DuplicateOrder)
		staff.GET("/orders/:id/notes", h.OrderNotes)
		staff.POST("/orders/:id/notes", h.AddNote)
		staff.DELETE("/notes/:id", h.DeleteNote)

		staff.GET("/undo", h.UndoState)
		staff.POST("/undo", h.PerformUndo)
		staff.DELETE("/undo", h.ClearUndo)

		staff.GET("/products", h.ListProducts)
		staff.POST("/products/refresh", h.RefreshProducts)
		staff.DELETE("/products/cache", h.ClearProductCache)

		staff.GET("/backups", h.ListBackups)
		staff.POST("/backups", h.CreateBackup)
		staff.GET("/backups/export", h.ExportBackup)
		staff.POST("/backups/import", h.ImportBackup)
		staff.POST("/backups/:id/restore", h.RestoreBackup)
		staff.DELETE("/backups/:id", h.DeleteBackup)

		staff.GET("/sync", h.SyncStatus)
		staff.POST("/sync/:type", h.RunSync)

		staff.GET("/templates", h.ListTemplates)
		staff.POST("/templates", h.SaveTemplate)
		staff.GET("/templates/:id", h.GetTemplate)
		staff.PUT("/templates/:id", h.SaveTemplate)
		staff.DELETE("/templates/:id", h.DeleteTemplate)
		staff.POST("/templates/:id/render", h.RenderTemplate)
		staff.POST("/notifications", h.SendNotification)

		staff.GET("/schedule/:date", h.CollectionSchedule)

		staff.GET("/errors", h.ErrorLogs)
		staff.DELETE("/errors", h.ClearErrorLogs)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
