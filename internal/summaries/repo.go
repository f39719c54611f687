package summaries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

// Repository exposes daily summary persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new summary row.
func (r *Repository) Create(ctx context.Context, summary *models.StandupSummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

// FindByTeamAndDate retrieves the team's summary for one date.
func (r *Repository) FindByTeamAndDate(ctx context.Context, teamID uuid.UUID, date time.Time) (*models.StandupSummary, error) {
	var summary models.StandupSummary
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND date = ?", teamID, types.DateOnly(date)).
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// DeleteByTeamAndDate removes the summary for one date, if any. Regeneration
// relies on this running in the same transaction as the insert.
func (r *Repository) DeleteByTeamAndDate(ctx context.Context, teamID uuid.UUID, date time.Time) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND date = ?", teamID, types.DateOnly(date)).
		Delete(&models.StandupSummary{}).Error
}

// ListByRange returns the team's summaries with dates in [start, end],
// ascending by date.
func (r *Repository) ListByRange(ctx context.Context, teamID uuid.UUID, start, end time.Time) ([]models.StandupSummary, error) {
	var rows []models.StandupSummary
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND date BETWEEN ? AND ?", teamID, types.DateOnly(start), types.DateOnly(end)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
