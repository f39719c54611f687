package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is the scoping entity for standups and summaries. Teams are soft
// deleted: the row is kept so the invite code stays reserved forever.
type Team struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Description *string   `gorm:"type:text"`
	OwnerUserID uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null;index"`
	InviteCode  string    `gorm:"column:invite_code;type:text;not null;uniqueIndex"`
	Deleted     bool      `gorm:"column:deleted;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
