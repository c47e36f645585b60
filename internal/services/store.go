package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
	"github.com/jmcallister-dev/league-scheduler/pkg/database"
)

// ScheduleRecord is the persisted form of a schedule. The engine
// itself never persists anything; the store only backs the HTTP
// surface so callers can reference schedules by id.
type ScheduleRecord struct {
	ID        string       `gorm:"primaryKey"`
	Season    string       `gorm:"index;not null"`
	Sport     string       `gorm:"index;not null"`
	Version   int64        `gorm:"not null;default:1"`
	Games     []GameRecord `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameRecord is one persisted game row.
type GameRecord struct {
	ID           string    `gorm:"primaryKey"`
	ScheduleID   string    `gorm:"index;not null"`
	HomeTeamID   string    `gorm:"not null"`
	AwayTeamID   string    `gorm:"not null"`
	VenueID      string    `gorm:"index"`
	Date         time.Time `gorm:"index;not null"`
	GameTime     string
	IsConference bool
	SeriesID     string `gorm:"index"`
}

// ScheduleStore persists and retrieves schedules with optimistic
// version bumps on every accepted mutation.
type ScheduleStore struct {
	db *database.DB
}

func NewScheduleStore(db *database.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Migrate creates or updates the store's tables.
func (s *ScheduleStore) Migrate() error {
	return s.db.AutoMigrate(&ScheduleRecord{}, &GameRecord{})
}

// Get loads a schedule with its games.
func (s *ScheduleStore) Get(ctx context.Context, id string) (*models.Schedule, error) {
	var record ScheduleRecord
	err := s.db.WithContext(ctx).Preload("Games").First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Resource: "schedule", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return recordToSchedule(record), nil
}

// Save upserts a schedule. New schedules start at version 1;
// existing schedules get their version bumped only through
// AcceptModification.
func (s *ScheduleStore) Save(ctx context.Context, schedule *models.Schedule) error {
	if err := schedule.Normalize(); err != nil {
		return err
	}
	if schedule.Version == 0 {
		schedule.Version = 1
	}

	record := scheduleToRecord(schedule)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
			return fmt.Errorf("failed to save schedule: %w", err)
		}
		return nil
	})
}

// AcceptModification applies a validated modification and bumps the
// schedule version, guarded by an optimistic version check: a
// concurrent accepted edit makes the update a no-op and returns a
// VersionConflictError.
func (s *ScheduleStore) AcceptModification(ctx context.Context, scheduleID string, mod models.Modification) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Version != mod.ScheduleVersion {
		return nil, &models.VersionConflictError{Expected: mod.ScheduleVersion, Actual: schedule.Version}
	}

	applied, err := schedule.Apply(mod)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ScheduleRecord{}).
			Where("id = ? AND version = ?", scheduleID, mod.ScheduleVersion).
			Update("version", mod.ScheduleVersion+1)
		if res.Error != nil {
			return fmt.Errorf("failed to bump schedule version: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &models.VersionConflictError{Expected: mod.ScheduleVersion, Actual: schedule.Version}
		}
		for _, g := range applied.Games {
			if g.ID != mod.GameID {
				continue
			}
			update := tx.Model(&GameRecord{}).Where("id = ? AND schedule_id = ?", g.ID, scheduleID).Updates(map[string]any{
				"home_team_id": g.HomeTeamID,
				"away_team_id": g.AwayTeamID,
				"venue_id":     g.VenueID,
				"date":         g.Date,
			})
			if update.Error != nil {
				return fmt.Errorf("failed to update game: %w", update.Error)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	applied.Version = mod.ScheduleVersion + 1
	return applied, nil
}

// ScheduleVersion reads just the current version, for the
// validator's optimistic re-check.
func (s *ScheduleStore) ScheduleVersion(ctx context.Context, scheduleID string) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Model(&ScheduleRecord{}).
		Where("id = ?", scheduleID).
		Pluck("version", &version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read schedule version: %w", err)
	}
	return version, nil
}

// ListBySeason returns schedule ids and versions for a season label.
func (s *ScheduleStore) ListBySeason(ctx context.Context, season string) ([]models.Schedule, error) {
	var records []ScheduleRecord
	if err := s.db.WithContext(ctx).Where("season = ?", season).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	out := make([]models.Schedule, 0, len(records))
	for _, r := range records {
		out = append(out, models.Schedule{ID: r.ID, Season: r.Season, Sport: r.Sport, Version: r.Version})
	}
	return out, nil
}

func recordToSchedule(record ScheduleRecord) *models.Schedule {
	schedule := &models.Schedule{
		ID:      record.ID,
		Season:  record.Season,
		Sport:   record.Sport,
		Version: record.Version,
	}
	for _, g := range record.Games {
		schedule.Games = append(schedule.Games, models.Game{
			ID:           g.ID,
			HomeTeamID:   g.HomeTeamID,
			AwayTeamID:   g.AwayTeamID,
			VenueID:      g.VenueID,
			Date:         g.Date,
			GameTime:     g.GameTime,
			IsConference: g.IsConference,
			SeriesID:     g.SeriesID,
		})
	}
	models.SortGamesByDate(schedule.Games)
	return schedule
}

func scheduleToRecord(schedule *models.Schedule) ScheduleRecord {
	record := ScheduleRecord{
		ID:      schedule.ID,
		Season:  schedule.Season,
		Sport:   schedule.Sport,
		Version: schedule.Version,
	}
	for _, g := range schedule.Games {
		record.Games = append(record.Games, GameRecord{
			ID:           g.ID,
			ScheduleID:   schedule.ID,
			HomeTeamID:   g.HomeTeamID,
			AwayTeamID:   g.AwayTeamID,
			VenueID:      g.VenueID,
			Date:         g.Date,
			GameTime:     g.GameTime,
			IsConference: g.IsConference,
			SeriesID:     g.SeriesID,
		})
	}
	return record
}
