package standups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type standupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Standup, error)
	Update(ctx context.Context, standup *models.Standup) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTeamAndDate(ctx context.Context, teamID uuid.UUID, date time.Time) ([]StandupWithAuthor, error)
	ListByTeamAndRange(ctx context.Context, teamID uuid.UUID, start, end time.Time) ([]StandupWithAuthor, error)
	CountsByDate(ctx context.Context, teamID uuid.UUID, since time.Time) ([]DateCount, error)
}

type membershipChecker interface {
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}

// Service exposes standup submission, maintenance and read operations.
type Service interface {
	Submit(ctx context.Context, userID, teamID uuid.UUID, input SubmitStandupInput) (*StandupDTO, error)
	Update(ctx context.Context, userID, standupID uuid.UUID, input UpdateStandupInput) (*StandupDTO, error)
	Delete(ctx context.Context, userID, standupID uuid.UUID) error
	ListByDate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) ([]StandupWithAuthor, error)
	ListByRange(ctx context.Context, userID, teamID uuid.UUID, start, end time.Time) ([]StandupWithAuthor, error)
	Heatmap(ctx context.Context, userID, teamID uuid.UUID) ([]HeatmapEntry, error)
}

type service struct {
	db      txRunner
	repo    standupRepository
	members membershipChecker
	now     func() time.Time
}

// ServiceParams bundles the dependencies for the standup service.
type ServiceParams struct {
	DB          txRunner
	StandupRepo standupRepository
	Members     membershipChecker

	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
}

// NewService builds a standup service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.StandupRepo == nil {
		return nil, fmt.Errorf("standup repository required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:      params.DB,
		repo:    params.StandupRepo,
		members: params.Members,
		now:     now,
	}, nil
}

func (s *service) today() time.Time {
	return types.DateOnly(s.now())
}

// Submit records the caller's entry for today. At most one standup exists
// per (team, user, date).
func (s *service) Submit(ctx context.Context, userID, teamID uuid.UUID, input SubmitStandupInput) (*StandupDTO, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	yesterday := strings.TrimSpace(input.Yesterday)
	today := strings.TrimSpace(input.Today)
	if yesterday == "" || today == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "yesterday and today are required")
	}

	standup := &models.Standup{
		ID:            uuid.New(),
		TeamID:        teamID,
		UserID:        userID,
		Date:          s.today(),
		YesterdayText: yesterday,
		TodayText:     today,
		BlockersText:  normalizeBlockers(input.Blockers),
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		exists, err := repo.ExistsForDate(ctx, teamID, userID, standup.Date)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check standup")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "standup already submitted for today")
		}
		if err := repo.Create(ctx, standup); err != nil {
			// A concurrent submit can slip past the check; the unique
			// index makes the loser land here.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.New(pkgerrors.CodeConflict, "standup already submitted for today")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create standup")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(standup), nil
}

// Update edits the caller's own entry, only while its date is still today.
func (s *service) Update(ctx context.Context, userID, standupID uuid.UUID, input UpdateStandupInput) (*StandupDTO, error) {
	standup, err := s.loadOwned(ctx, userID, standupID)
	if err != nil {
		return nil, err
	}
	if !types.DateOnly(standup.Date).Equal(s.today()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only today's standup can be edited")
	}

	if input.Yesterday != nil {
		value := strings.TrimSpace(*input.Yesterday)
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "yesterday cannot be empty")
		}
		standup.YesterdayText = value
	}
	if input.Today != nil {
		value := strings.TrimSpace(*input.Today)
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "today cannot be empty")
		}
		standup.TodayText = value
	}
	if input.Blockers != nil {
		standup.BlockersText = normalizeBlockers(input.Blockers)
	}

	if err := s.repo.Update(ctx, standup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update standup")
	}
	return FromModel(standup), nil
}

// Delete removes the caller's own entry. Unlike edits there is no date
// restriction.
func (s *service) Delete(ctx context.Context, userID, standupID uuid.UUID) error {
	standup, err := s.loadOwned(ctx, userID, standupID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, standup.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete standup")
	}
	return nil
}

func (s *service) ListByDate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) ([]StandupWithAuthor, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByTeamAndDate(ctx, teamID, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list standups")
	}
	return list, nil
}

func (s *service) ListByRange(ctx context.Context, userID, teamID uuid.UUID, start, end time.Time) ([]StandupWithAuthor, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	if types.DateOnly(start).After(types.DateOnly(end)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must not be after end date")
	}
	list, err := s.repo.ListByTeamAndRange(ctx, teamID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list standups")
	}
	return list, nil
}

func (s *service) loadOwned(ctx context.Context, userID, standupID uuid.UUID) (*models.Standup, error) {
	standup, err := s.repo.FindByID(ctx, standupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "standup not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load standup")
	}
	if standup.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author may modify a standup")
	}
	return standup, nil
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

func normalizeBlockers(blockers *string) *string {
	if blockers == nil {
		return nil
	}
	value := strings.TrimSpace(*blockers)
	if value == "" {
		return nil
	}
	return &value
}
