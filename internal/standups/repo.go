package standups

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

// Repository exposes standup persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new standup row.
func (r *Repository) Create(ctx context.Context, standup *models.Standup) error {
	return r.db.WithContext(ctx).Create(standup).Error
}

// FindByID retrieves a standup by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Standup, error) {
	var standup models.Standup
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&standup).Error
	if err != nil {
		return nil, err
	}
	return &standup, nil
}

// ExistsForDate reports whether the author already posted for the date.
func (r *Repository) ExistsForDate(ctx context.Context, teamID, userID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Standup{}).
		Where("team_id = ? AND user_id = ? AND date = ?", teamID, userID, types.DateOnly(date)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists the mutable standup fields.
func (r *Repository) Update(ctx context.Context, standup *models.Standup) error {
	return r.db.WithContext(ctx).Save(standup).Error
}

// Delete removes the standup row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Standup{}).Error
}

// ListByTeamAndDate returns the team's standups for one date joined with
// the author's name, submission order.
func (r *Repository) ListByTeamAndDate(ctx context.Context, teamID uuid.UUID, date time.Time) ([]StandupWithAuthor, error) {
	var rows []standupWithAuthorRow
	err := r.db.WithContext(ctx).
		Model(&models.Standup{}).
		Select("standups.*, users.name AS author_name, users.email AS author_email").
		Joins("JOIN users ON users.id = standups.user_id").
		Where("standups.team_id = ? AND standups.date = ?", teamID, types.DateOnly(date)).
		Order("standups.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return standupsFromRows(rows), nil
}

// ListByTeamAndRange returns the team's standups across an inclusive date
// range, oldest date first.
func (r *Repository) ListByTeamAndRange(ctx context.Context, teamID uuid.UUID, start, end time.Time) ([]StandupWithAuthor, error) {
	var rows []standupWithAuthorRow
	err := r.db.WithContext(ctx).
		Model(&models.Standup{}).
		Select("standups.*, users.name AS author_name, users.email AS author_email").
		Joins("JOIN users ON users.id = standups.user_id").
		Where("standups.team_id = ? AND standups.date >= ? AND standups.date <= ?", teamID, types.DateOnly(start), types.DateOnly(end)).
		Order("standups.date, standups.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return standupsFromRows(rows), nil
}

// UserIDsWithStandup returns the authors who already posted for the date.
func (r *Repository) UserIDsWithStandup(ctx context.Context, teamID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Standup{}).
		Where("team_id = ? AND date = ?", teamID, types.DateOnly(date)).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DateCount is one day's standup volume.
type DateCount struct {
	Date  time.Time `gorm:"column:date"`
	Count int       `gorm:"column:count"`
}

// CountsByDate aggregates standups per date from `since` onward.
func (r *Repository) CountsByDate(ctx context.Context, teamID uuid.UUID, since time.Time) ([]DateCount, error) {
	var rows []DateCount
	err := r.db.WithContext(ctx).
		Model(&models.Standup{}).
		Select("date, COUNT(*) AS count").
		Where("team_id = ? AND date >= ?", teamID, types.DateOnly(since)).
		Group("date").
		Order("date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
