package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/internal/memberships"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/enums"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/mailer"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

type teamFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
}

type membershipLister interface {
	GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
	ListAcceptedMembers(ctx context.Context, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error)
}

type standupChecker interface {
	ExistsForDate(ctx context.Context, teamID, userID uuid.UUID, date time.Time) (bool, error)
	UserIDsWithStandup(ctx context.Context, teamID uuid.UUID, date time.Time) ([]uuid.UUID, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service nudges members who have not posted today. Both operations are
// owner-only and report how many reminder emails actually went out.
type Service interface {
	RemindMember(ctx context.Context, byUser, teamID, targetUserID uuid.UUID) (int, error)
	RemindAllPending(ctx context.Context, byUser, teamID uuid.UUID) (int, error)
}

type service struct {
	teams       teamFinder
	memberships membershipLister
	standups    standupChecker
	users       userFinder
	mail        mailer.Sender
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams bundles the reminder service dependencies.
type ServiceParams struct {
	TeamRepo        teamFinder
	MembershipsRepo membershipLister
	StandupRepo     standupChecker
	UsersRepo       userFinder
	Mail            mailer.Sender
	Logger          *logger.Logger

	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
}

// NewService builds a reminder service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TeamRepo == nil {
		return nil, fmt.Errorf("team repository required")
	}
	if params.MembershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.StandupRepo == nil {
		return nil, fmt.Errorf("standup repository required")
	}
	if params.UsersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		teams:       params.TeamRepo,
		memberships: params.MembershipsRepo,
		standups:    params.StandupRepo,
		users:       params.UsersRepo,
		mail:        params.Mail,
		logg:        params.Logger,
		now:         now,
	}, nil
}

// RemindMember emails one member who has not submitted today.
func (s *service) RemindMember(ctx context.Context, byUser, teamID, targetUserID uuid.UUID) (int, error) {
	team, err := s.requireOwner(ctx, byUser, teamID)
	if err != nil {
		return 0, err
	}

	membership, err := s.memberships.GetMembership(ctx, teamID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "member not found in this team")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if membership.Status != enums.InvitationStatusAccepted {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "member not found in this team")
	}

	today := types.DateOnly(s.now())
	submitted, err := s.standups.ExistsForDate(ctx, teamID, targetUserID, today)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check standup")
	}
	if submitted {
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "member already submitted a standup today")
	}

	target, err := s.users.FindByID(ctx, targetUserID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if err := s.sendReminder(ctx, team, target.Email, target.Name); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send reminder")
	}
	return 1, nil
}

// RemindAllPending emails every accepted member without a standup for today.
// Individual send failures never abort the loop; they are logged once as an
// aggregate and the returned count covers only the sends that succeeded.
func (s *service) RemindAllPending(ctx context.Context, byUser, teamID uuid.UUID) (int, error) {
	team, err := s.requireOwner(ctx, byUser, teamID)
	if err != nil {
		return 0, err
	}

	members, err := s.memberships.ListAcceptedMembers(ctx, teamID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	today := types.DateOnly(s.now())
	submittedIDs, err := s.standups.UserIDsWithStandup(ctx, teamID, today)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submitted standups")
	}
	submitted := make(map[uuid.UUID]struct{}, len(submittedIDs))
	for _, id := range submittedIDs {
		submitted[id] = struct{}{}
	}

	sent := 0
	var errs error
	for _, member := range members {
		if _, ok := submitted[member.UserID]; ok {
			continue
		}
		if err := s.sendReminder(ctx, team, member.Email, member.Name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remind %s: %w", member.Email, err))
			continue
		}
		sent++
	}
	if errs != nil {
		s.logg.Error(s.logg.WithTeamID(ctx, teamID.String()), "send standup reminders", errs)
	}
	return sent, nil
}

func (s *service) sendReminder(ctx context.Context, team *models.Team, email, name string) error {
	body := fmt.Sprintf(`<h2>Standup reminder</h2>
<p>Hi %s, you have not posted your standup for team <strong>%s</strong> today yet.</p>
<p>Take a minute to share what you did yesterday, what you plan today, and anything blocking you.</p>`,
		name, team.Name)
	return s.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: fmt.Sprintf("Standup reminder: %s", team.Name),
		HTML:    body,
		Kind:    "reminder",
	})
}

func (s *service) requireOwner(ctx context.Context, userID, teamID uuid.UUID) (*models.Team, error) {
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
	if team.OwnerUserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the team owner can send reminders")
	}
	return team, nil
}
