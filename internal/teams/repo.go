package teams

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
)

// Repository exposes team persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new team row.
func (r *Repository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

// FindByID retrieves a team by primary key, deleted rows included. Callers
// decide whether a soft-deleted team is visible.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByInviteCode resolves a non-deleted team by its invite code.
func (r *Repository) FindByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Where("invite_code = ? AND deleted = ?", code, false).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// InviteCodeExists reports whether any team row, deleted or not, holds the
// code. Codes of deleted teams stay reserved.
func (r *Repository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("invite_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists the mutable team fields.
func (r *Repository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

// SoftDelete flips the deleted flag. The row is never physically removed.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("id = ?", id).
		Update("deleted", true).Error
}
