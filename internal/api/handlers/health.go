package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmcallister-dev/league-scheduler/pkg/database"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := gin.H{
		"status":  "ok",
		"service": "league-scheduler",
	}

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	c.JSON(http.StatusOK, status)
}
