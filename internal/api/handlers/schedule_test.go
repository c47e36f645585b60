package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
	"github.com/jmcallister-dev/league-scheduler/internal/services"
	"github.com/jmcallister-dev/league-scheduler/pkg/config"
	"github.com/jmcallister-dev/league-scheduler/pkg/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		EvalWorkers:     2,
		EvalTimeout:     5,
		CacheExpiration: 60,
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *services.ScheduleStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := services.NewScheduleStore(db)
	require.NoError(t, store.Migrate())

	calendar, err := services.NewSeasonCalendar("", "", nil)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	scheduleHandler := NewScheduleHandler(store, nil, calendar, testConfig(), logger)
	constraintsHandler := NewConstraintsHandler(logger)

	router := gin.New()
	router.POST("/schedules/evaluate", scheduleHandler.Evaluate)
	router.POST("/schedules/validate-move", scheduleHandler.ValidateModification)
	router.POST("/schedules", scheduleHandler.Create)
	router.GET("/schedules/:id", scheduleHandler.Get)
	router.POST("/schedules/:id/apply", scheduleHandler.ApplyModification)
	router.GET("/constraints/catalog/:sport", constraintsHandler.GetCatalog)
	router.POST("/constraints/conflicts", constraintsHandler.DetectAndResolve)
	router.POST("/algorithm/select", constraintsHandler.SelectAlgorithm)

	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func apiDay(n int) time.Time {
	return time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func apiGame(id, home, away string, date time.Time) models.Game {
	return models.Game{
		ID:           id,
		HomeTeamID:   home,
		AwayTeamID:   away,
		VenueID:      home + "-arena",
		Date:         date,
		IsConference: true,
	}
}

// apiSchedule is a four-team round robin with no road stretch longer
// than two games; it satisfies every basketball hard default.
func apiSchedule() *models.Schedule {
	return &models.Schedule{
		ID:      "sched-api",
		Season:  "2025-26",
		Sport:   "basketball",
		Version: 1,
		Games: []models.Game{
			apiGame("g1", "a", "b", apiDay(0)),
			apiGame("g2", "c", "d", apiDay(1)),
			apiGame("g3", "a", "c", apiDay(7)),
			apiGame("g4", "b", "d", apiDay(8)),
			apiGame("g5", "d", "a", apiDay(14)),
			apiGame("g6", "b", "c", apiDay(15)),
		},
	}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestEvaluateInlineSchedule(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/schedules/evaluate", gin.H{
		"schedule": apiSchedule(),
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.True(t, resp.Success)

	var result models.EvaluationResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.True(t, result.Feasible, "violations: %v", result.Violations())
	assert.NotEmpty(t, result.Results)
}

func TestEvaluateRequiresSchedule(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/schedules/evaluate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateUnknownStoredSchedule(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/schedules/evaluate", gin.H{
		"schedule_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// memoryCache is an in-process stand-in for the redis-backed result
// cache.
type memoryCache struct {
	entries map[string][]byte
	hits    int
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := m.entries[key]
	if !ok {
		return errors.New("key not found")
	}
	m.hits++
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func TestEvaluateCacheIsPerScheduleContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	calendar, err := services.NewSeasonCalendar("", "", nil)
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cache := newMemoryCache()
	handler := NewScheduleHandler(nil, cache, calendar, testConfig(), logger)
	router := gin.New()
	router.POST("/schedules/evaluate", handler.Evaluate)

	evaluate := func(s *models.Schedule) models.EvaluationResult {
		w := doJSON(t, router, http.MethodPost, "/schedules/evaluate", gin.H{"schedule": s})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result models.EvaluationResult
		require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &result))
		return result
	}

	// Inline schedules arrive with no id and version 0.
	first := apiSchedule()
	first.ID = ""
	first.Version = 0
	assert.True(t, evaluate(first).Feasible)

	// A different inline schedule with the same constraint set must
	// not be served the first schedule's cached result: flipping g5
	// gives team d three straight road games.
	second := apiSchedule()
	second.ID = ""
	second.Version = 0
	second.Games[4] = apiGame("g5", "a", "d", apiDay(14))
	assert.False(t, evaluate(second).Feasible)
	assert.Len(t, cache.entries, 2, "each schedule caches under its own key")
	assert.Zero(t, cache.hits)

	// An identical repeat request hits the cache.
	third := apiSchedule()
	third.ID = ""
	third.Version = 0
	assert.True(t, evaluate(third).Feasible)
	assert.Equal(t, 1, cache.hits)
}

func TestCreateThenGet(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/schedules", apiSchedule())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/schedules/sched-api", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var loaded models.Schedule
	resp := decodeResponse(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &loaded))
	assert.Equal(t, "sched-api", loaded.ID)
	assert.Len(t, loaded.Games, 6)
	assert.Equal(t, int64(1), loaded.Version)
}

func TestValidateMoveHardViolation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Flipping g5 home/away gives team d three straight road games
	// against the basketball maxConsecutive=2 default.
	w := doJSON(t, router, http.MethodPost, "/schedules/validate-move", gin.H{
		"schedule": apiSchedule(),
		"modification": gin.H{
			"schedule_version": 1,
			"game_id":          "g5",
			"new_home_team_id": "a",
			"new_away_team_id": "d",
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)

	var result models.ValidationResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Violations)
	assert.Equal(t, models.KindMaxConsecutiveRoad, result.Violations[0].ConstraintID)
	assert.NotEmpty(t, result.Suggestions)
}

func TestValidateMoveStaleVersionConflict(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/schedules/validate-move", gin.H{
		"schedule": apiSchedule(),
		"modification": gin.H{
			"schedule_version": 9,
			"game_id":          "g3",
		},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApplyModificationFlow(t *testing.T) {
	router, store := newTestRouter(t)
	require.NoError(t, store.Save(context.Background(), apiSchedule()))

	w := doJSON(t, router, http.MethodPost, "/schedules/sched-api/apply", gin.H{
		"modification": gin.H{
			"schedule_version": 1,
			"game_id":          "g6",
			"new_date":         apiDay(16).Format(time.RFC3339),
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)

	var out struct {
		Applied         bool  `json:"applied"`
		ScheduleVersion int64 `json:"schedule_version"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.True(t, out.Applied)
	assert.Equal(t, int64(2), out.ScheduleVersion)

	version, err := store.ScheduleVersion(context.Background(), "sched-api")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestApplyModificationStaleVersion(t *testing.T) {
	router, store := newTestRouter(t)
	require.NoError(t, store.Save(context.Background(), apiSchedule()))

	w := doJSON(t, router, http.MethodPost, "/schedules/sched-api/apply", gin.H{
		"modification": gin.H{
			"schedule_version": 7,
			"game_id":          "g6",
			"new_date":         apiDay(16).Format(time.RFC3339),
		},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApplyModificationRejectedStaysUnapplied(t *testing.T) {
	router, store := newTestRouter(t)
	require.NoError(t, store.Save(context.Background(), apiSchedule()))

	// The flip that creates a three-game road stretch is refused and
	// the stored version stays put.
	w := doJSON(t, router, http.MethodPost, "/schedules/sched-api/apply", gin.H{
		"modification": gin.H{
			"schedule_version": 1,
			"game_id":          "g5",
			"new_home_team_id": "a",
			"new_away_team_id": "d",
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)

	var out struct {
		Applied bool `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.False(t, out.Applied)

	version, err := store.ScheduleVersion(context.Background(), "sched-api")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestGetCatalogEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/constraints/catalog/basketball", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var set models.ConstraintSet
	resp := decodeResponse(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &set))
	assert.Equal(t, "basketball", set.Sport)
	assert.NotEmpty(t, set.Constraints)
}

func TestConflictsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/constraints/conflicts", gin.H{
		"sport": "basketball",
		"constraints": []models.Constraint{
			{ID: models.KindFirstWindowBalance, Sport: "basketball", Hardness: models.Soft, Weight: 70,
				Params: map[string]any{"windowSize": 6, "minHome": 4, "minAway": 4}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)

	var out struct {
		Conflicts   []models.ConflictRecord `json:"conflicts"`
		Resolutions []models.ConflictRecord `json:"resolutions"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, models.ConflictWindowOvercommit, out.Conflicts[0].Kind)
}

func TestConflictsEndpointNeedsInput(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/constraints/conflicts", gin.H{"sport": "basketball"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectAlgorithmEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/algorithm/select", gin.H{
		"sport": "basketball",
		"profile": gin.H{
			"team_count":      14,
			"constraint_ids":  []string{models.KindRoundRobin},
			"travel_priority": true,
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)

	var selection models.AlgorithmSelection
	require.NoError(t, json.Unmarshal(resp.Data, &selection))
	assert.Equal(t, "simulated_annealing", selection.AlgorithmID)
}

func TestStableEvaluationAcrossRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	body := gin.H{"schedule": apiSchedule()}
	first := doJSON(t, router, http.MethodPost, "/schedules/evaluate", body)
	second := doJSON(t, router, http.MethodPost, "/schedules/evaluate", body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String(), "identical requests return identical bodies")
}
