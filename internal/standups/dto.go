package standups

import (
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

// StandupDTO is the transport shape for a single standup entry.
type StandupDTO struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      string    `json:"date"`
	Yesterday string    `json:"yesterday"`
	Today     string    `json:"today"`
	Blockers  *string   `json:"blockers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StandupWithAuthor joins a standup with its author's profile for team
// listings and summary prompts.
type StandupWithAuthor struct {
	StandupDTO
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// SubmitStandupInput captures a new daily entry.
type SubmitStandupInput struct {
	Yesterday string
	Today     string
	Blockers  *string
}

// UpdateStandupInput captures the author-mutable fields.
type UpdateStandupInput struct {
	Yesterday *string
	Today     *string
	Blockers  *string
}

// FromModel converts a standup model to the external DTO.
func FromModel(m *models.Standup) *StandupDTO {
	if m == nil {
		return nil
	}
	return &StandupDTO{
		ID:        m.ID,
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		Date:      types.FormatDate(m.Date),
		Yesterday: m.YesterdayText,
		Today:     m.TodayText,
		Blockers:  copyStringPointer(m.BlockersText),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type standupWithAuthorRow struct {
	models.Standup
	AuthorName  string `gorm:"column:author_name"`
	AuthorEmail string `gorm:"column:author_email"`
}

func standupsFromRows(rows []standupWithAuthorRow) []StandupWithAuthor {
	out := make([]StandupWithAuthor, 0, len(rows))
	for _, row := range rows {
		standup := row.Standup
		out = append(out, StandupWithAuthor{
			StandupDTO:  *FromModel(&standup),
			AuthorName:  row.AuthorName,
			AuthorEmail: row.AuthorEmail,
		})
	}
	return out
}

func copyStringPointer(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
