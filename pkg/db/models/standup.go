package models

import (
	"time"

	"github.com/google/uuid"
)

// Standup holds one member's update for one calendar day. The composite
// unique index enforces at most one standup per (team, user, date).
type Standup struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID `gorm:"column:team_id;type:uuid;not null;uniqueIndex:idx_standups_team_user_date"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_standups_team_user_date"`
	Date          time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_standups_team_user_date;index:idx_standups_team_date"`
	YesterdayText string    `gorm:"column:yesterday_text;type:text;not null"`
	TodayText     string    `gorm:"column:today_text;type:text;not null"`
	BlockersText  *string   `gorm:"column:blockers_text;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
