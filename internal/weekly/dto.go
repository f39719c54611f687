package weekly

import (
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

// WeeklySummaryDTO is the transport shape for a weekly digest.
type WeeklySummaryDTO struct {
	ID            uuid.UUID `json:"id"`
	TeamID        uuid.UUID `json:"team_id"`
	WeekStartDate string    `json:"week_start_date"`
	WeekEndDate   string    `json:"week_end_date"`
	SummaryText   string    `json:"summary_text"`
	SentToOwner   bool      `json:"sent_to_owner"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromModel converts a weekly summary model to the external DTO.
func FromModel(m *models.WeeklySummary) *WeeklySummaryDTO {
	if m == nil {
		return nil
	}
	return &WeeklySummaryDTO{
		ID:            m.ID,
		TeamID:        m.TeamID,
		WeekStartDate: types.FormatDate(m.WeekStartDate),
		WeekEndDate:   types.FormatDate(m.WeekEndDate),
		SummaryText:   m.SummaryText,
		SentToOwner:   m.SentToOwner,
		CreatedAt:     m.CreatedAt,
	}
}

func fromModels(rows []models.WeeklySummary) []WeeklySummaryDTO {
	out := make([]WeeklySummaryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
