package weekly

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

// Repository exposes weekly summary persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new weekly summary row.
func (r *Repository) Create(ctx context.Context, summary *models.WeeklySummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

// ExistsForWeek reports whether a summary already covers the week.
func (r *Repository) ExistsForWeek(ctx context.Context, teamID uuid.UUID, weekStart time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WeeklySummary{}).
		Where("team_id = ? AND week_start_date = ?", teamID, types.DateOnly(weekStart)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByTeam returns the team's weekly summaries, newest week first.
func (r *Repository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.WeeklySummary, error) {
	var rows []models.WeeklySummary
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("week_start_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindLatest returns the most recent weekly summary for the team.
func (r *Repository) FindLatest(ctx context.Context, teamID uuid.UUID) (*models.WeeklySummary, error) {
	var summary models.WeeklySummary
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("week_start_date DESC").
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
