package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/server/handlers"
	"github.com/mamadbah2/dfarm/internal/server/middleware"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

// Handlers groups the HTTP adapters mounted under /api.
type Handlers struct {
	Animals   *handlers.AnimalHandler
	Expenses  *handlers.ExpenseHandler
	Dashboard *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, auth wp.Authenticator, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.Auth(auth, logger))

	animals := api.Group("/animals")
	animals.GET("", h.Animals.List)
	animals.POST("", h.Animals.Create)
	animals.GET("/latest", h.Animals.Latest)
	animals.GET("/:id", h.Animals.Get)
	animals.PUT("/:id", h.Animals.Update)
	animals.DELETE("/:id", h.Animals.Delete)
	animals.GET("/:id/milk", h.Animals.MilkHistory)
	animals.POST("/:id/milk", h.Animals.AddMilkRecord)
	animals.POST("/:id/vaccinations", h.Animals.AddVaccination)
	api.GET("/milk/export", h.Animals.ExportMilk)

	expenses := api.Group("/expenses")
	expenses.GET("", h.Expenses.List)
	expenses.POST("", h.Expenses.Create)
	expenses.GET("/summary", h.Expenses.Summary)
	expenses.GET("/export", h.Expenses.Export)
	expenses.PUT("/:id", h.Expenses.Update)
	expenses.DELETE("/:id", h.Expenses.Delete)

	api.GET("/dashboard", h.Dashboard.Dashboard)
	api.GET("/reports", h.Dashboard.RecentReports)
	api.POST("/reports/daily", h.Dashboard.PublishDailyReport)

	logger.Info("router initialized")

	return r
}
