package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/api/handlers"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/api/middleware"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/export"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services are the collaborators the router serves. Nil members leave their
// routes unregistered.
type Services struct {
	MasterData *service.MasterDataService
	Planning   *service.PlanningService
	Purchasing *service.PurchasingService
	Dashboard  *service.DashboardService
	History    *service.HistoryService
	Sync       *service.SyncService
	Exporter   *export.Exporter

	// Drive serves the /api/drive routes when Drive import is configured.
	Drive http.Handler
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	middleware.SetupValidator()

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	apiGroup := router.Group("/api/v1")

	if services.MasterData != nil {
		h := handlers.NewMasterDataHandler(services.MasterData)
		materials := apiGroup.Group("/materials")
		{
			materials.GET("", h.GetMaterials)
			materials.PUT("", h.ReplaceMaterials)
			materials.DELETE("", h.DeleteMaterials)
			materials.POST("/import", h.ImportMaterials)
		}
		products := apiGroup.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.PUT("", h.ReplaceProducts)
			products.DELETE("", h.DeleteProducts)
			products.POST("/import", h.ImportProducts)
			products.PUT("/:sku/capacity", h.SetCapacity)
		}
		sales := apiGroup.Group("/sales")
		{
			sales.PUT("", h.ReplaceSales)
			sales.POST("/import", h.ImportSales)
		}
	}

	if services.Planning != nil {
		h := handlers.NewPlanningHandler(services.Planning)
		planning := apiGroup.Group("/planning")
		{
			planning.POST("/analyze", h.Analyze)
			planning.GET("/requests", h.GetRequests)
			planning.PUT("/requests/:sku", h.SetRequest)
			planning.POST("/run", h.Run)
		}
		sched := apiGroup.Group("/schedule")
		{
			sched.GET("", h.GetSchedule)
			sched.POST("", h.NewSchedule)
			sched.POST("/edit/:id", h.EditSchedule)
			sched.PUT("/cells", h.SetCell)
			sched.PUT("/start", h.SetScheduleStart)
			sched.POST("/save", h.SaveSchedule)
		}
		req := apiGroup.Group("/requirement")
		{
			req.GET("", h.GetRequirement)
			req.POST("/archive", h.ArchiveRequirement)
			req.POST("/sync", h.SyncToReorder)
		}
		rop := apiGroup.Group("/reorder")
		{
			rop.GET("", h.GetReorder)
			rop.PUT("/safety-days/:id", h.SetSafetyDays)
		}
	}

	if services.Purchasing != nil && services.Planning != nil {
		h := handlers.NewPurchasingHandler(services.Purchasing, services.Planning)
		orders := apiGroup.Group("/orders")
		{
			orders.GET("", h.GetOrders)
			orders.POST("", h.CreateOrder)
			orders.GET("/:id", h.GetOrder)
			orders.POST("/:id/finalize", h.Finalize)
			orders.PUT("/:id/deadline", h.UpdateDeadline)
			orders.POST("/:id/receipts", h.Receive)
		}
		apiGroup.GET("/traffic", h.GetTraffic)
	}

	if services.Dashboard != nil && services.History != nil && services.Sync != nil {
		h := handlers.NewReportHandler(services.Dashboard, services.History, services.Sync)
		apiGroup.GET("/dashboard", h.GetDashboard)
		history := apiGroup.Group("/history")
		{
			history.GET("/schedules", h.GetSchedules)
			history.GET("/schedules/:id", h.GetScheduleDetail)
			history.GET("/requirements", h.GetRequirements)
			history.GET("/requirements/:id", h.GetRequirementDetail)
		}
		apiGroup.GET("/sync/status", h.GetSyncStatus)
		apiGroup.POST("/sync/refresh", h.Refresh)
	}

	if services.Planning != nil && services.Purchasing != nil && services.Sync != nil {
		h := handlers.NewExportHandler(services.Exporter, services.Planning, services.Purchasing, services.Sync)
		exports := apiGroup.Group("/export")
		{
			exports.GET("/schedule", h.Schedule)
			exports.GET("/requirement", h.Requirement)
			exports.GET("/orders/:id", h.RequestOrder)
			exports.GET("/templates/:kind", h.Template)
		}
	}

	if services.Drive != nil {
		router.Any("/api/drive/*path", gin.WrapH(services.Drive))
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			cfg.AllowOrigins = normalized
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
