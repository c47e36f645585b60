package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/catalog"
	"github.com/jmcallister-dev/league-scheduler/internal/engine"
	"github.com/jmcallister-dev/league-scheduler/internal/models"
	"github.com/jmcallister-dev/league-scheduler/internal/services"
	"github.com/jmcallister-dev/league-scheduler/internal/validator"
	"github.com/jmcallister-dev/league-scheduler/pkg/config"
	"github.com/jmcallister-dev/league-scheduler/pkg/geo"
	"github.com/jmcallister-dev/league-scheduler/pkg/utils"
)

// ruleTables are the caller-supplied external rule tables that feed
// the evaluation environment.
type ruleTables struct {
	VenueRules  []models.VenueRule        `json:"venue_rules"`
	DayBans     map[string][]string       `json:"day_bans"`
	Exceptions  []string                  `json:"exceptions"` // "teamID|constraintID"
	Coordinates map[string]geo.Coordinate `json:"venue_coordinates"`
}

// EvaluationCache is the result cache consumed by the evaluate
// endpoint. *services.CacheService satisfies it.
type EvaluationCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type ScheduleHandler struct {
	store    *services.ScheduleStore
	cache    EvaluationCache
	calendar *services.SeasonCalendar
	config   *config.Config
	logger   *logrus.Logger
}

func NewScheduleHandler(store *services.ScheduleStore, cache EvaluationCache, calendar *services.SeasonCalendar, cfg *config.Config, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		store:    store,
		cache:    cache,
		calendar: calendar,
		config:   cfg,
		logger:   logger,
	}
}

// Evaluate runs a full constraint evaluation of a schedule.
func (h *ScheduleHandler) Evaluate(c *gin.Context) {
	var req struct {
		ScheduleID        string           `json:"schedule_id"`
		Schedule          *models.Schedule `json:"schedule"`
		Sport             string           `json:"sport"`
		CustomConstraints []catalog.Custom `json:"custom_constraints"`
		Rules             ruleTables       `json:"rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	schedule, ok := h.resolveSchedule(c, req.ScheduleID, req.Schedule)
	if !ok {
		return
	}
	sport := req.Sport
	if sport == "" {
		sport = schedule.Sport
	}

	set := catalog.BuildConfiguration(sport, req.CustomConstraints)
	env := h.buildEnv(schedule.Season, req.Rules)

	ctx := c.Request.Context()
	cacheKey := services.EvaluationKey(schedule, set)
	var cached models.EvaluationResult
	if h.cache != nil {
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
			utils.SendSuccess(c, cached)
			return
		}
	}

	result, err := h.evaluateWithTimeout(ctx, schedule, set, env)
	if err != nil {
		h.sendEngineError(c, err)
		return
	}

	if h.cache != nil {
		expiration := time.Duration(h.config.CacheExpiration) * time.Second
		if err := h.cache.Set(ctx, cacheKey, result, expiration); err != nil {
			h.logger.WithError(err).Warn("Failed to cache evaluation result")
		}
	}

	utils.SendSuccess(c, result)
}

// ValidateModification incrementally revalidates a proposed
// single-game change.
func (h *ScheduleHandler) ValidateModification(c *gin.Context) {
	var req struct {
		ScheduleID        string              `json:"schedule_id"`
		Schedule          *models.Schedule    `json:"schedule"`
		Sport             string              `json:"sport"`
		CustomConstraints []catalog.Custom    `json:"custom_constraints"`
		Modification      models.Modification `json:"modification" binding:"required"`
		Rules             ruleTables          `json:"rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	schedule, ok := h.resolveSchedule(c, req.ScheduleID, req.Schedule)
	if !ok {
		return
	}
	sport := req.Sport
	if sport == "" {
		sport = schedule.Sport
	}

	set := catalog.BuildConfiguration(sport, req.CustomConstraints)
	env := h.buildEnv(schedule.Season, req.Rules)

	var versions validator.VersionSource
	if req.ScheduleID != "" && h.store != nil {
		versions = h.store
	}
	v := validator.New(env, h.config.EvalWorkers, h.logger, versions)
	result, err := v.Validate(c.Request.Context(), req.Modification, set, schedule)
	if err != nil {
		h.sendEngineError(c, err)
		return
	}

	utils.SendSuccess(c, result)
}

// ApplyModification validates a modification and, when valid,
// accepts it into the store with a version bump.
func (h *ScheduleHandler) ApplyModification(c *gin.Context) {
	scheduleID := c.Param("id")
	var req struct {
		Sport             string              `json:"sport"`
		CustomConstraints []catalog.Custom    `json:"custom_constraints"`
		Modification      models.Modification `json:"modification" binding:"required"`
		Rules             ruleTables          `json:"rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	schedule, ok := h.resolveSchedule(c, scheduleID, nil)
	if !ok {
		return
	}
	sport := req.Sport
	if sport == "" {
		sport = schedule.Sport
	}

	set := catalog.BuildConfiguration(sport, req.CustomConstraints)
	env := h.buildEnv(schedule.Season, req.Rules)

	v := validator.New(env, h.config.EvalWorkers, h.logger, h.store)
	result, err := v.Validate(c.Request.Context(), req.Modification, set, schedule)
	if err != nil {
		h.sendEngineError(c, err)
		return
	}
	if !result.Valid {
		utils.SendSuccess(c, gin.H{"applied": false, "validation": result})
		return
	}

	updated, err := h.store.AcceptModification(c.Request.Context(), scheduleID, req.Modification)
	if err != nil {
		h.sendEngineError(c, err)
		return
	}

	// Stale evaluations for the previous version are now
	// unreachable through the version-keyed cache; nothing to purge.
	utils.SendSuccess(c, gin.H{"applied": true, "validation": result, "schedule_version": updated.Version})
}

// Create stores a schedule for later reference by id.
func (h *ScheduleHandler) Create(c *gin.Context) {
	var schedule models.Schedule
	if err := c.ShouldBindJSON(&schedule); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.store.Save(c.Request.Context(), &schedule); err != nil {
		h.sendEngineError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"id": schedule.ID, "version": schedule.Version})
}

// Get loads a stored schedule.
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendEngineError(c, err)
		return
	}
	utils.SendSuccess(c, schedule)
}

func (h *ScheduleHandler) resolveSchedule(c *gin.Context, scheduleID string, inline *models.Schedule) (*models.Schedule, bool) {
	if inline != nil {
		return inline, true
	}
	if scheduleID == "" {
		utils.SendValidationError(c, "Missing schedule", "provide schedule or schedule_id")
		return nil, false
	}
	if h.store == nil {
		utils.SendValidationError(c, "Schedule store unavailable", "provide the schedule inline")
		return nil, false
	}
	schedule, err := h.store.Get(c.Request.Context(), scheduleID)
	if err != nil {
		h.sendEngineError(c, err)
		return nil, false
	}
	return schedule, true
}

func (h *ScheduleHandler) buildEnv(season string, rules ruleTables) *engine.Env {
	env := &engine.Env{
		Windows:     h.calendar.WindowsFor(season),
		Coordinates: rules.Coordinates,
	}
	if len(rules.VenueRules) > 0 {
		env.VenueRules = make(map[string]models.VenueRule, len(rules.VenueRules))
		for _, r := range rules.VenueRules {
			env.VenueRules[r.VenueID] = r
		}
	}
	if len(rules.DayBans) > 0 {
		env.DayBans = make(map[string][]time.Weekday, len(rules.DayBans))
		for team, days := range rules.DayBans {
			env.DayBans[team] = parseWeekdayNames(days)
		}
	}
	if len(rules.Exceptions) > 0 {
		env.Exceptions = make(map[string]bool, len(rules.Exceptions))
		for _, key := range rules.Exceptions {
			env.Exceptions[key] = true
		}
	}
	return env
}

// evaluateWithTimeout runs the evaluation under the configured
// request deadline. A timeout discards the result entirely; partial
// results are never returned for a timed-out request.
func (h *ScheduleHandler) evaluateWithTimeout(ctx context.Context, schedule *models.Schedule, set models.ConstraintSet, env *engine.Env) (*models.EvaluationResult, error) {
	timeout := time.Duration(h.config.EvalTimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result *models.EvaluationResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		eval := engine.New(env, h.config.EvalWorkers, h.logger)
		result, err := eval.Evaluate(schedule, set)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, fmt.Errorf("evaluation timed out after %s: %w", timeout, ctx.Err())
	}
}

func (h *ScheduleHandler) sendEngineError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var versionErr *models.VersionConflictError
	switch {
	case errors.As(err, &notFoundErr):
		utils.SendNotFound(c, notFoundErr.Error())
	case errors.As(err, &validationErr):
		utils.SendValidationError(c, "Invalid schedule input", validationErr.Message)
	case errors.As(err, &versionErr):
		utils.SendVersionConflict(c, versionErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.SendTimeout(c, err.Error())
	default:
		h.logger.WithError(err).Error("Evaluation request failed")
		utils.SendInternalError(c, "Evaluation failed")
	}
}

func parseWeekdayNames(names []string) []time.Weekday {
	byName := map[string]time.Weekday{
		"Sunday": time.Sunday, "Monday": time.Monday, "Tuesday": time.Tuesday,
		"Wednesday": time.Wednesday, "Thursday": time.Thursday,
		"Friday": time.Friday, "Saturday": time.Saturday,
	}
	var out []time.Weekday
	for _, n := range names {
		if d, ok := byName[n]; ok {
			out = append(out, d)
		}
	}
	return out
}
