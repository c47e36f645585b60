package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/spf13/viper"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// SeasonCalendar supplies named date windows (holiday breaks, exam
// periods) per season label. Windows load from a YAML file, may be
// overlaid from a remote calendar source behind a circuit breaker,
// and can be refreshed on a cron schedule.
type SeasonCalendar struct {
	mu      sync.RWMutex
	windows map[string]map[string]models.DateWindow // season -> name -> window

	filePath  string
	remoteURL string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	cron      *cron.Cron
	logger    *logrus.Logger
}

// NewSeasonCalendar loads the calendar from filePath (optional) and
// prepares the remote source (optional). Neither source being
// configured leaves an empty but usable calendar.
func NewSeasonCalendar(filePath, remoteURL string, logger *logrus.Logger) (*SeasonCalendar, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	cal := &SeasonCalendar{
		windows:   make(map[string]map[string]models.DateWindow),
		filePath:  filePath,
		remoteURL: remoteURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
	cal.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "season-calendar",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Season calendar breaker state changed")
		},
	})

	if err := cal.Refresh(); err != nil {
		return nil, err
	}
	return cal, nil
}

// WindowsFor returns the named windows for a season label, e.g.
// "2025-26". The returned map is a copy.
func (c *SeasonCalendar) WindowsFor(season string) map[string]models.DateWindow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.DateWindow, len(c.windows[season]))
	for name, w := range c.windows[season] {
		out[name] = w
	}
	return out
}

// AddWindow installs or replaces one window. Used by tests and by
// leagues that manage windows through the API rather than a file.
func (c *SeasonCalendar) AddWindow(w models.DateWindow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.windows[w.Season] == nil {
		c.windows[w.Season] = make(map[string]models.DateWindow)
	}
	c.windows[w.Season][w.Name] = w
}

// Refresh reloads the file source and overlays the remote source.
// Remote failures are logged and skipped; file data still applies.
func (c *SeasonCalendar) Refresh() error {
	loaded := make(map[string]map[string]models.DateWindow)

	if c.filePath != "" {
		fileWindows, err := loadCalendarFile(c.filePath)
		if err != nil {
			return fmt.Errorf("failed to load season calendar file: %w", err)
		}
		merge(loaded, fileWindows)
	}

	if c.remoteURL != "" {
		remote, err := c.fetchRemote()
		if err != nil {
			c.logger.WithError(err).Warn("Remote season calendar unavailable, keeping file data")
		} else {
			merge(loaded, remote)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for season, windows := range loaded {
		if c.windows[season] == nil {
			c.windows[season] = make(map[string]models.DateWindow)
		}
		for name, w := range windows {
			c.windows[season][name] = w
		}
	}
	return nil
}

// StartRefresh schedules periodic refreshes with the given cron
// expression. Stop with StopRefresh.
func (c *SeasonCalendar) StartRefresh(spec string) error {
	c.cron = cron.New()
	_, err := c.cron.AddFunc(spec, func() {
		if err := c.Refresh(); err != nil {
			c.logger.WithError(err).Error("Season calendar refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid calendar refresh spec %q: %w", spec, err)
	}
	c.cron.Start()
	return nil
}

// StopRefresh stops the refresh job if one is running.
func (c *SeasonCalendar) StopRefresh() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

func (c *SeasonCalendar) fetchRemote() ([]models.DateWindow, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Get(c.remoteURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("calendar source returned %d", resp.StatusCode)
		}
		var windows []calendarWindow
		if err := json.NewDecoder(resp.Body).Decode(&windows); err != nil {
			return nil, fmt.Errorf("failed to decode calendar payload: %w", err)
		}
		return windows, nil
	})
	if err != nil {
		return nil, err
	}
	return convertWindows(result.([]calendarWindow))
}

// calendarWindow is the wire/file shape of one window.
type calendarWindow struct {
	Name        string   `mapstructure:"name" json:"name"`
	Season      string   `mapstructure:"season" json:"season"`
	Start       string   `mapstructure:"start" json:"start"`
	End         string   `mapstructure:"end" json:"end"`
	AllowedDays []string `mapstructure:"allowed_days" json:"allowed_days"`
}

func loadCalendarFile(path string) ([]models.DateWindow, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var raw struct {
		Windows []calendarWindow `mapstructure:"windows"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("unable to decode calendar file: %w", err)
	}
	return convertWindows(raw.Windows)
}

func convertWindows(raw []calendarWindow) ([]models.DateWindow, error) {
	out := make([]models.DateWindow, 0, len(raw))
	for _, cw := range raw {
		start, err := time.Parse("2006-01-02", cw.Start)
		if err != nil {
			return nil, fmt.Errorf("window %s has bad start date %q: %w", cw.Name, cw.Start, err)
		}
		end, err := time.Parse("2006-01-02", cw.End)
		if err != nil {
			return nil, fmt.Errorf("window %s has bad end date %q: %w", cw.Name, cw.End, err)
		}
		w := models.DateWindow{
			Name:   cw.Name,
			Season: cw.Season,
			Start:  start,
			End:    end,
		}
		for _, day := range cw.AllowedDays {
			if d, ok := weekdaysByName[day]; ok {
				w.AllowedDays = append(w.AllowedDays, d)
			}
		}
		out = append(out, w)
	}
	return out, nil
}

func merge(into map[string]map[string]models.DateWindow, windows []models.DateWindow) {
	for _, w := range windows {
		if into[w.Season] == nil {
			into[w.Season] = make(map[string]models.DateWindow)
		}
		into[w.Season][w.Name] = w
	}
}

var weekdaysByName = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}
