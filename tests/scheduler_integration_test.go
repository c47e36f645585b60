package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/jmcallister-dev/league-scheduler/internal/api"
	"github.com/jmcallister-dev/league-scheduler/internal/models"
	"github.com/jmcallister-dev/league-scheduler/internal/services"
	"github.com/jmcallister-dev/league-scheduler/pkg/config"
	"github.com/jmcallister-dev/league-scheduler/pkg/database"
)

type SchedulerIntegrationTestSuite struct {
	suite.Suite
	db     *database.DB
	router *gin.Engine
}

func (s *SchedulerIntegrationTestSuite) SetupSuite() {
	db, err := database.NewSQLiteConnection(":memory:")
	s.Require().NoError(err)
	s.db = db

	store := services.NewScheduleStore(db)
	s.Require().NoError(store.Migrate())

	calendar, err := services.NewSeasonCalendar("", "", nil)
	s.Require().NoError(err)
	calendar.AddWindow(models.DateWindow{
		Name:        "holiday_break",
		Season:      "2025-26",
		Start:       time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		AllowedDays: []time.Weekday{time.Thursday, time.Friday, time.Saturday},
	})

	cfg := &config.Config{
		Env:             "test",
		EvalWorkers:     2,
		EvalTimeout:     10,
		CacheExpiration: 60,
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	api.SetupRoutes(s.router.Group("/api/v1"), db, nil, calendar, cfg, logger)
}

func (s *SchedulerIntegrationTestSuite) TearDownSuite() {
	_ = s.db.Close()
}

func (s *SchedulerIntegrationTestSuite) post(path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *SchedulerIntegrationTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *SchedulerIntegrationTestSuite) data(w *httptest.ResponseRecorder, dest any) {
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().True(resp.Success, w.Body.String())
	s.Require().NoError(json.Unmarshal(resp.Data, dest))
}

func day(n int) time.Time {
	return time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func leagueSchedule() *models.Schedule {
	mk := func(id, home, away string, date time.Time) models.Game {
		return models.Game{
			ID: id, HomeTeamID: home, AwayTeamID: away,
			VenueID: home + "-arena", Date: date, IsConference: true,
		}
	}
	return &models.Schedule{
		ID:      "league-2025-26",
		Season:  "2025-26",
		Sport:   "basketball",
		Version: 1,
		Games: []models.Game{
			mk("g1", "a", "b", day(0)),
			mk("g2", "c", "d", day(1)),
			mk("g3", "a", "c", day(7)),
			mk("g4", "b", "d", day(8)),
			mk("g5", "d", "a", day(14)),
			mk("g6", "b", "c", day(15)),
		},
	}
}

func (s *SchedulerIntegrationTestSuite) TestScheduleLifecycle() {
	// Create.
	w := s.post("/api/v1/schedules", leagueSchedule())
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// Evaluate the stored schedule by id.
	w = s.post("/api/v1/schedules/evaluate", gin.H{"schedule_id": "league-2025-26"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result models.EvaluationResult
	s.data(w, &result)
	s.True(result.Feasible)
	s.Greater(result.OverallScore, 0.0)

	// Validate and apply a harmless move.
	w = s.post("/api/v1/schedules/league-2025-26/apply", gin.H{
		"modification": gin.H{
			"schedule_version": 1,
			"game_id":          "g6",
			"new_date":         day(16).Format(time.RFC3339),
		},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var applied struct {
		Applied         bool  `json:"applied"`
		ScheduleVersion int64 `json:"schedule_version"`
	}
	s.data(w, &applied)
	s.True(applied.Applied)
	s.Equal(int64(2), applied.ScheduleVersion)

	// A replay of the same modification is now stale.
	w = s.post("/api/v1/schedules/league-2025-26/apply", gin.H{
		"modification": gin.H{
			"schedule_version": 1,
			"game_id":          "g6",
			"new_date":         day(17).Format(time.RFC3339),
		},
	})
	s.Equal(http.StatusConflict, w.Code)

	// The stored schedule reflects the accepted edit.
	w = s.get("/api/v1/schedules/league-2025-26")
	s.Require().Equal(http.StatusOK, w.Code)
	var loaded models.Schedule
	s.data(w, &loaded)
	s.Equal(int64(2), loaded.Version)
}

func (s *SchedulerIntegrationTestSuite) TestHolidayWindowRejectsMove() {
	schedule := leagueSchedule()
	schedule.ID = "holiday-check"
	schedule.Games[0].SeriesID = "opening-series"
	w := s.post("/api/v1/schedules", schedule)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// 2025-12-22 is a Monday inside the configured holiday break; the
	// basketball holiday rule only allows Thursday through Saturday.
	w = s.post("/api/v1/schedules/validate-move", gin.H{
		"schedule_id": "holiday-check",
		"modification": gin.H{
			"schedule_version": 1,
			"game_id":          "g1",
			"new_date":         time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result models.ValidationResult
	s.data(w, &result)
	s.Contains(result.Evaluated, models.KindHolidayWeekend)
	s.False(result.Valid)
	s.NotEmpty(result.Violations)
}

func (s *SchedulerIntegrationTestSuite) TestCatalogAndConflictPipeline() {
	w := s.get("/api/v1/constraints/catalog/baseball")
	s.Require().Equal(http.StatusOK, w.Code)
	var set models.ConstraintSet
	s.data(w, &set)
	_, hasSeries := set.Find(models.KindSeriesVenue)
	s.True(hasSeries)

	w = s.post("/api/v1/constraints/conflicts", gin.H{
		"sport":              "baseball",
		"use_sport_defaults": true,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *SchedulerIntegrationTestSuite) TestAlgorithmSelection() {
	w := s.post("/api/v1/algorithm/select", gin.H{
		"sport": "hockey",
		"profile": gin.H{
			"team_count":     10,
			"constraint_ids": []string{models.KindSeriesVenue, models.KindRematchSpacing, models.KindRoadClustering, models.KindWeekendBalance},
		},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var selection models.AlgorithmSelection
	s.data(w, &selection)
	s.Equal("constraint_programming", selection.AlgorithmID)
}

func TestSchedulerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerIntegrationTestSuite))
}
