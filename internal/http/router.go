package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"traffic-service/internal/http/middleware"
)

type RouterConfig struct {
	Environment    string
	RequestTimeout time.Duration
	Health         func() error
}

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, cfg RouterConfig, log zerolog.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:             []string{"Content-Type"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	router.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(); err != nil {
				log.Error().Err(err).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, errorResponse("database unavailable"))
				return
			}
		}
		c.JSON(http.StatusOK, successResponse(gin.H{"status": "ok"}))
	})

	api := router.Group("/api/v1")

	public := api.Group("")
	{
		public.POST("/auth/officer/login", handler.officerLogin)
		public.POST("/auth/officer/register", handler.registerOfficer)
		public.POST("/auth/admin/login", handler.adminLogin)

		public.POST("/payments/intent", handler.createPaymentIntent)
		public.POST("/payments/confirm", handler.confirmPayment)
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/violations", handler.listViolations)
		protected.GET("/violations/:id", handler.getViolation)
		protected.GET("/violation-types", handler.listViolationTypes)
		protected.GET("/vehicles/search", handler.searchVehicle)
		protected.GET("/vehicles/:id/stats", handler.vehicleStats)
	}

	officer := protected.Group("")
	officer.Use(middleware.RequireOfficer())
	{
		officer.POST("/violations", handler.issueViolation)
		officer.POST("/vehicles", handler.getOrCreateVehicle)
	}

	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/violations/status", handler.updateViolationStatus)
		admin.PUT("/vehicles/:id", handler.updateVehicleOwner)
		admin.GET("/officers", handler.listOfficers)
		admin.POST("/officers", handler.createOfficer)
		admin.PATCH("/officers/:id", handler.updateOfficer)
		admin.GET("/stats/dashboard", handler.dashboardStats)
		admin.GET("/stats/breakdown", handler.statsBreakdown)
	}

	return router
}
