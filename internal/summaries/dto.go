package summaries

import (
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

// SummaryDTO is the transport shape for a daily summary.
type SummaryDTO struct {
	ID            uuid.UUID `json:"id"`
	TeamID        uuid.UUID `json:"team_id"`
	Date          string    `json:"date"`
	SummaryText   string    `json:"summary_text"`
	GeneratedByAI bool      `json:"generated_by_ai"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromModel converts a summary model to the external DTO.
func FromModel(m *models.StandupSummary) *SummaryDTO {
	if m == nil {
		return nil
	}
	return &SummaryDTO{
		ID:            m.ID,
		TeamID:        m.TeamID,
		Date:          types.FormatDate(m.Date),
		SummaryText:   m.SummaryText,
		GeneratedByAI: m.GeneratedByAI,
		CreatedAt:     m.CreatedAt,
	}
}

func fromModels(rows []models.StandupSummary) []SummaryDTO {
	out := make([]SummaryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
