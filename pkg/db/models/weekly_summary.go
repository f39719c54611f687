package models

import (
	"time"

	"github.com/google/uuid"
)

// WeeklySummary is the immutable 7-day digest. One per (team, week start).
type WeeklySummary struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID `gorm:"column:team_id;type:uuid;not null;uniqueIndex:idx_weekly_summaries_team_week"`
	WeekStartDate time.Time `gorm:"column:week_start_date;type:date;not null;uniqueIndex:idx_weekly_summaries_team_week"`
	WeekEndDate   time.Time `gorm:"column:week_end_date;type:date;not null"`
	SummaryText   string    `gorm:"column:summary_text;type:text;not null"`
	SentToOwner   bool      `gorm:"column:sent_to_owner;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
