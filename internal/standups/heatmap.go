package standups

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

const heatmapWindowDays = 365

// HeatmapEntry is one active day in the sparse activity series.
type HeatmapEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Heatmap aggregates the team's trailing-year standup volume. Only dates
// with at least one standup appear.
func (s *service) Heatmap(ctx context.Context, userID, teamID uuid.UUID) ([]HeatmapEntry, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	since := s.today().AddDate(0, 0, -(heatmapWindowDays - 1))
	counts, err := s.repo.CountsByDate(ctx, teamID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate standup counts")
	}

	entries := make([]HeatmapEntry, 0, len(counts))
	for _, row := range counts {
		entries = append(entries, HeatmapEntry{
			Date:  types.FormatDate(row.Date),
			Count: row.Count,
			Level: heatmapLevel(row.Count),
		})
	}
	return entries, nil
}

// heatmapLevel buckets a daily count into GitHub-style intensity levels.
func heatmapLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 8:
		return 3
	default:
		return 4
	}
}
