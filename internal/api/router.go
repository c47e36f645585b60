package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/api/handlers"
	"github.com/jmcallister-dev/league-scheduler/internal/api/middleware"
	"github.com/jmcallister-dev/league-scheduler/internal/services"
	"github.com/jmcallister-dev/league-scheduler/pkg/config"
	"github.com/jmcallister-dev/league-scheduler/pkg/database"
)

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, db *database.DB, cache *services.CacheService, calendar *services.SeasonCalendar, cfg *config.Config, logger *logrus.Logger) {
	var store *services.ScheduleStore
	if db != nil {
		store = services.NewScheduleStore(db)
	}

	// A typed nil must not reach the handler as a non-nil interface.
	var evalCache handlers.EvaluationCache
	if cache != nil {
		evalCache = cache
	}

	scheduleHandler := handlers.NewScheduleHandler(store, evalCache, calendar, cfg, logger)
	constraintsHandler := handlers.NewConstraintsHandler(logger)

	group.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// Evaluation endpoints
	group.POST("/schedules/evaluate", scheduleHandler.Evaluate)
	group.POST("/schedules/validate-move", scheduleHandler.ValidateModification)

	// Stored-schedule endpoints
	group.POST("/schedules", scheduleHandler.Create)
	group.GET("/schedules/:id", scheduleHandler.Get)
	group.POST("/schedules/:id/apply", scheduleHandler.ApplyModification)

	// Constraint analysis endpoints
	group.GET("/constraints/catalog/:sport", constraintsHandler.GetCatalog)
	group.POST("/constraints/conflicts", constraintsHandler.DetectAndResolve)
	group.POST("/algorithm/select", constraintsHandler.SelectAlgorithm)
}
