package models

import (
	"time"

	"github.com/google/uuid"
)

// StandupSummary is the generated daily digest for one team and date.
// Regeneration deletes and recreates the row, so at most one survives.
type StandupSummary struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID `gorm:"column:team_id;type:uuid;not null;uniqueIndex:idx_standup_summaries_team_date"`
	Date          time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_standup_summaries_team_date"`
	SummaryText   string    `gorm:"column:summary_text;type:text;not null"`
	GeneratedByAI bool      `gorm:"column:generated_by_ai;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
