package summaries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type summaryRepository interface {
	FindByTeamAndDate(ctx context.Context, teamID uuid.UUID, date time.Time) (*models.StandupSummary, error)
	ListByRange(ctx context.Context, teamID uuid.UUID, start, end time.Time) ([]models.StandupSummary, error)
}

type standupLister interface {
	ListByTeamAndDate(ctx context.Context, teamID uuid.UUID, date time.Time) ([]standups.StandupWithAuthor, error)
}

type membershipChecker interface {
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}

// Service covers the daily summary lifecycle.
type Service interface {
	Generate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) (*SummaryDTO, error)
	GetByDate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) (*SummaryDTO, error)
	ListByRange(ctx context.Context, userID, teamID uuid.UUID, start, end time.Time) ([]SummaryDTO, error)
}

type service struct {
	db       txRunner
	repo     summaryRepository
	standups standupLister
	members  membershipChecker
	gen      *Generator
}

// ServiceParams bundles the summary service dependencies.
type ServiceParams struct {
	DB          txRunner
	SummaryRepo summaryRepository
	Standups    standupLister
	Members     membershipChecker
	Generator   *Generator
}

// NewService builds a summary service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.SummaryRepo == nil {
		return nil, fmt.Errorf("summary repository required")
	}
	if params.Standups == nil {
		return nil, fmt.Errorf("standup lister required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	return &service{
		db:       params.DB,
		repo:     params.SummaryRepo,
		standups: params.Standups,
		members:  params.Members,
		gen:      params.Generator,
	}, nil
}

// Generate replaces any existing summary for the date with one built from the
// current standup set. Generation happens before the transaction so the model
// call never holds a database lock; delete and insert commit together.
func (s *service) Generate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) (*SummaryDTO, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	entries, err := s.standups.ListByTeamAndDate(ctx, teamID, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list standups")
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no standups found for this team and date")
	}

	text, byAI := s.gen.Summarize(ctx, entries)

	var created *models.StandupSummary
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if err := repo.DeleteByTeamAndDate(ctx, teamID, date); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete prior summary")
		}
		created = &models.StandupSummary{
			ID:            uuid.New(),
			TeamID:        teamID,
			Date:          types.DateOnly(date),
			SummaryText:   text,
			GeneratedByAI: byAI,
		}
		if err := repo.Create(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create summary")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) GetByDate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) (*SummaryDTO, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	summary, err := s.repo.FindByTeamAndDate(ctx, teamID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "summary not found for this team and date")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load summary")
	}
	return FromModel(summary), nil
}

func (s *service) ListByRange(ctx context.Context, userID, teamID uuid.UUID, start, end time.Time) ([]SummaryDTO, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	if types.DateOnly(start).After(types.DateOnly(end)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must not be after end date")
	}
	rows, err := s.repo.ListByRange(ctx, teamID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list summaries")
	}
	return fromModels(rows), nil
}

func (s *service) requireMember(ctx context.Context, teamID, userID uuid.UUID) error {
	ok, err := s.members.IsMember(ctx, teamID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this team")
	}
	return nil
}
