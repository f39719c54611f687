package weekly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/internal/summaries"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/mailer"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

const weekWindowDays = 7

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type weeklyRepository interface {
	ExistsForWeek(ctx context.Context, teamID uuid.UUID, weekStart time.Time) (bool, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.WeeklySummary, error)
	FindLatest(ctx context.Context, teamID uuid.UUID) (*models.WeeklySummary, error)
}

type standupLister interface {
	ListByTeamAndRange(ctx context.Context, teamID uuid.UUID, start, end time.Time) ([]standups.StandupWithAuthor, error)
}

type teamFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type membershipChecker interface {
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}

// Service covers the owner-triggered weekly digest lifecycle. Weekly
// summaries are one-shot: once a week window has a row it is immutable.
type Service interface {
	Generate(ctx context.Context, userID, teamID uuid.UUID) (*WeeklySummaryDTO, error)
	List(ctx context.Context, userID, teamID uuid.UUID) ([]WeeklySummaryDTO, error)
	GetLatest(ctx context.Context, userID, teamID uuid.UUID) (*WeeklySummaryDTO, error)
}

type service struct {
	db       txRunner
	repo     weeklyRepository
	standups standupLister
	teams    teamFinder
	users    userFinder
	members  membershipChecker
	gen      *summaries.Generator
	mail     mailer.Sender
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the weekly service dependencies.
type ServiceParams struct {
	DB         txRunner
	WeeklyRepo weeklyRepository
	Standups   standupLister
	TeamRepo   teamFinder
	UsersRepo  userFinder
	Members    membershipChecker
	Generator  *summaries.Generator

	// Mail delivers the digest to the owner synchronously. May be nil when
	// SMTP is not configured; sent_to_owner then records false.
	Mail   mailer.Sender
	Logger *logger.Logger

	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
}

// NewService builds a weekly summary service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.WeeklyRepo == nil {
		return nil, fmt.Errorf("weekly repository required")
	}
	if params.Standups == nil {
		return nil, fmt.Errorf("standup lister required")
	}
	if params.TeamRepo == nil {
		return nil, fmt.Errorf("team repository required")
	}
	if params.UsersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:       params.DB,
		repo:     params.WeeklyRepo,
		standups: params.Standups,
		teams:    params.TeamRepo,
		users:    params.UsersRepo,
		members:  params.Members,
		gen:      params.Generator,
		mail:     params.Mail,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Generate produces the digest for the trailing week [today-6, today],
// emails it to the owner, and persists it. Email failure is logged and
// reflected in sent_to_owner but never blocks persistence.
func (s *service) Generate(ctx context.Context, userID, teamID uuid.UUID) (*WeeklySummaryDTO, error) {
	team, err := s.loadActiveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerUserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the team owner can generate weekly summaries")
	}

	weekEnd := types.DateOnly(s.now())
	weekStart := weekEnd.AddDate(0, 0, -(weekWindowDays - 1))

	exists, err := s.repo.ExistsForWeek(ctx, teamID, weekStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check weekly summary")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "weekly summary already exists for this week")
	}

	entries, err := s.standups.ListByTeamAndRange(ctx, teamID, weekStart, weekEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list standups")
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no standups found for this week")
	}

	text, _ := s.gen.Summarize(ctx, entries)
	fullText := fmt.Sprintf("## Weekly Summary: %s to %s\n\n**Total Standups:** %d\n\n---\n\n%s",
		types.FormatDate(weekStart), types.FormatDate(weekEnd), len(entries), text)

	sent := s.emailOwner(ctx, team, fullText, weekStart, weekEnd)

	created := &models.WeeklySummary{
		ID:            uuid.New(),
		TeamID:        teamID,
		WeekStartDate: weekStart,
		WeekEndDate:   weekEnd,
		SummaryText:   fullText,
		SentToOwner:   sent,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		exists, err := repo.ExistsForWeek(ctx, teamID, weekStart)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check weekly summary")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "weekly summary already exists for this week")
		}
		if err := repo.Create(ctx, created); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.New(pkgerrors.CodeConflict, "weekly summary already exists for this week")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create weekly summary")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, userID, teamID uuid.UUID) ([]WeeklySummaryDTO, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list weekly summaries")
	}
	return fromModels(rows), nil
}

func (s *service) GetLatest(ctx context.Context, userID, teamID uuid.UUID) (*WeeklySummaryDTO, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	summary, err := s.repo.FindLatest(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no weekly summaries found for this team")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load weekly summary")
	}
	return FromModel(summary), nil
}

func (s *service) emailOwner(ctx context.Context, team *models.Team, text string, weekStart, weekEnd time.Time) bool {
	if s.mail == nil {
		return false
	}
	owner, err := s.users.FindByID(ctx, team.OwnerUserID)
	if err != nil {
		s.logg.Error(s.logg.WithTeamID(ctx, team.ID.String()), "load team owner for weekly email", err)
		return false
	}

	body := fmt.Sprintf(`<h2>Weekly standup digest for %s</h2>
<p>Here is the digest of your team's standups from %s to %s.</p>
<pre>%s</pre>`,
		team.Name, types.FormatDate(weekStart), types.FormatDate(weekEnd), text)

	msg := mailer.Message{
		To:      owner.Email,
		Subject: fmt.Sprintf("Weekly standup digest: %s", team.Name),
		HTML:    body,
		Kind:    "weekly_digest",
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logg.Error(s.logg.WithTeamID(ctx, team.ID.String()), "send weekly digest email", err)
		return false
	}
	return true
}

func (s *service) loadActiveTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load team")
	}
	if team.Deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
	}
	return team, nil
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
