package router

import (
	"time"

	"house_admin/internal/config"
	"house_admin/internal/handlers"
	"house_admin/internal/metrics"
	"house_admin/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the admin API. gatherer may be nil, in which case
// /metrics is not served.
func NewRouter(h *handlers.Handler, cfg config.HTTPConfig, m *metrics.HTTPMetrics, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		intake := api.Group("/intake")
		{
			intake.GET("", h.ListIntake)
			intake.POST("", h.CreateIntake)
			intake.GET("/:id", h.GetIntake)
			intake.PATCH("/:id", h.UpdateIntake)
			intake.DELETE("/:id", h.DeleteIntake)
		}

		houses := api.Group("/houses")
		{
			houses.GET("", h.ListHouses)
			houses.POST("", h.CreateHouse)
			houses.GET("/with-member-count", h.ListHousesWithCount)
			houses.GET("/by-number/:number", h.GetHouseByNumber)
			houses.GET("/:id", h.GetHouse)
			houses.PATCH("/:id", h.UpdateHouse)
			houses.DELETE("/:id", h.DeleteHouse)
			houses.GET("/:id/members", h.ListHouseMembers)
		}

		members := api.Group("/members")
		{
			members.GET("", h.ListMembers)
			members.POST("", h.CreateMember)
			members.GET("/active", h.ListActiveMembers)
			members.GET("/expired", h.ListExpiredMembers)
			members.GET("/archived", h.ListArchivedMembers)
			members.GET("/available-houses", h.AvailableHouses)
			members.POST("/cleanup-expired", h.CleanupExpired)
			members.GET("/:id", h.GetMember)
			members.PATCH("/:id", h.UpdateMember)
			members.DELETE("/:id", h.DeleteMember)
		}
	}

	return r
}
