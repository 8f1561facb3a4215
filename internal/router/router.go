package router

import (
	"net/http"

	"finance-tracker/internal/aggregate"
	"finance-tracker/internal/config"
	"finance-tracker/internal/handler"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires services and handlers onto a Gin engine. The store
// handle is constructed by the process entry point and passed down;
// nothing here holds ambient global state.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine := aggregate.NewEngine(db)
	opService := service.NewOperationService(db, engine)
	queryService := service.NewQueryService(db, cfg.App.PageSize)
	categoryService := service.NewCategoryService(db)

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours)
	opHandler := handler.NewOperationHandler(opService, queryService)
	summaryHandler := handler.NewSummaryHandler(queryService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	userHandler := handler.NewUserHandler(db)
	exportHandler := handler.NewExportHandler(queryService)

	// ====== API ======
	api := r.Group("/api")

	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)

	protected.POST("/operations", opHandler.Create)
	protected.GET("/operations", opHandler.List)
	protected.GET("/operations/:id", opHandler.Get)
	protected.PUT("/operations/:id", opHandler.Update)
	protected.DELETE("/operations/:id", opHandler.Delete)

	protected.GET("/operations/summary", summaryHandler.Totals)
	protected.GET("/operations/summary/day", summaryHandler.Day)
	protected.GET("/operations/summary/week", summaryHandler.Week)
	protected.GET("/operations/summary/month", summaryHandler.Month)

	protected.GET("/categories", categoryHandler.List)

	protected.GET("/export/week.csv", exportHandler.WeekCSV)
	protected.GET("/export/week.xlsx", exportHandler.WeekXLSX)

	// admin-only management
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.POST("/categories", categoryHandler.Create)
	admin.GET("/categories/:id", categoryHandler.Get)
	admin.PUT("/categories/:id", categoryHandler.Update)
	admin.DELETE("/categories/:id", categoryHandler.Delete)

	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)

	return r
}
