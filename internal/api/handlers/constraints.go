package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/catalog"
	"github.com/jmcallister-dev/league-scheduler/internal/conflicts"
	"github.com/jmcallister-dev/league-scheduler/internal/models"
	"github.com/jmcallister-dev/league-scheduler/internal/selector"
	"github.com/jmcallister-dev/league-scheduler/pkg/utils"
)

type ConstraintsHandler struct {
	logger *logrus.Logger
}

func NewConstraintsHandler(logger *logrus.Logger) *ConstraintsHandler {
	return &ConstraintsHandler{logger: logger}
}

// GetCatalog returns the merged constraint configuration for a
// sport, optionally with custom additions applied via query-less
// POST bodies elsewhere; this endpoint shows the defaults.
func (h *ConstraintsHandler) GetCatalog(c *gin.Context) {
	sport := c.Param("sport")
	utils.SendSuccess(c, catalog.BuildConfiguration(sport, nil))
}

// DetectAndResolve analyzes a constraint set for structural
// conflicts and applies the resolution strategies. Unresolved
// hard-hard conflicts are returned explicitly, never dropped.
func (h *ConstraintsHandler) DetectAndResolve(c *gin.Context) {
	var req struct {
		Sport             string              `json:"sport" binding:"required"`
		UseSportDefaults  bool                `json:"use_sport_defaults"`
		CustomConstraints []catalog.Custom    `json:"custom_constraints"`
		Constraints       []models.Constraint `json:"constraints"`
		Options           conflicts.Options   `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var set models.ConstraintSet
	if len(req.Constraints) > 0 {
		// Hand-assembled set: analyze as given, duplicates and all.
		set = models.ConstraintSet{Sport: req.Sport, Constraints: req.Constraints}
	} else if req.UseSportDefaults {
		set = catalog.BuildConfiguration(req.Sport, req.CustomConstraints)
	} else {
		utils.SendValidationError(c, "Missing constraints", "provide constraints or set use_sport_defaults")
		return
	}

	records := conflicts.Detect(set)
	result := conflicts.Resolve(records, set, req.Options)

	if len(result.Unresolved) > 0 {
		h.logger.WithFields(logrus.Fields{
			"sport":      req.Sport,
			"unresolved": len(result.Unresolved),
		}).Warn("Constraint set has unresolved hard conflicts")
	}

	utils.SendSuccess(c, gin.H{
		"conflicts":   records,
		"constraints": result.Constraints,
		"resolutions": result.Resolutions,
		"unresolved":  result.Unresolved,
	})
}

// SelectAlgorithm runs the solver-selection decision table.
func (h *ConstraintsHandler) SelectAlgorithm(c *gin.Context) {
	var req struct {
		Sport       string                   `json:"sport" binding:"required"`
		Profile     models.ConstraintProfile `json:"profile"`
		Preferences selector.Preferences     `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	utils.SendSuccess(c, selector.Select(req.Sport, req.Profile, req.Preferences))
}
