package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/internal/memberships"
	"github.com/siamcode/standupstrip-backend/pkg/config"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/enums"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/mailer"
	"github.com/siamcode/standupstrip-backend/pkg/security"
)

const inviteCodeAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type teamRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error)
	ListPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error)
	ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]memberships.InvitationDTO, error)
	ListUserTeams(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithTeam, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, msg mailer.Message) bool
}

// Service exposes team operations, including the invitation lifecycle.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTeamInput) (*TeamDTO, error)
	GetByID(ctx context.Context, userID, teamID uuid.UUID) (*TeamDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]TeamDTO, error)
	Update(ctx context.Context, userID, teamID uuid.UUID, input UpdateTeamInput) (*TeamDTO, error)
	Delete(ctx context.Context, userID, teamID uuid.UUID) error
	GetByInviteCode(ctx context.Context, code string) (*TeamPreviewDTO, error)
	ListMembers(ctx context.Context, userID, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error)

	Invite(ctx context.Context, inviterID, teamID uuid.UUID, input InviteMemberInput) (*memberships.MembershipDTO, error)
	Accept(ctx context.Context, userID, teamID uuid.UUID) (*memberships.MembershipDTO, error)
	Reject(ctx context.Context, userID, teamID uuid.UUID) (*memberships.MembershipDTO, error)
	JoinByCode(ctx context.Context, userID uuid.UUID, code string) (*TeamDTO, error)
	RemoveMember(ctx context.Context, actorID, teamID, targetUserID uuid.UUID) error
	ListPendingInvitations(ctx context.Context, actorID, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error)
	ListMyInvitations(ctx context.Context, userID uuid.UUID) ([]memberships.InvitationDTO, error)

	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}

type service struct {
	db          txRunner
	repo        teamRepository
	memberships membershipsRepository
	users       usersRepository
	mail        mailEnqueuer
	logg        *logger.Logger
	frontend    config.FrontendConfig
}

// ServiceParams bundles the dependencies for the team service.
type ServiceParams struct {
	DB              txRunner
	TeamRepo        teamRepository
	MembershipsRepo membershipsRepository
	UsersRepo       usersRepository
	Mail            mailEnqueuer
	Logger          *logger.Logger
	Frontend        config.FrontendConfig
}

// NewService builds a team service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.TeamRepo == nil {
		return nil, fmt.Errorf("team repository required")
	}
	if params.MembershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.UsersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:          params.DB,
		repo:        params.TeamRepo,
		memberships: params.MembershipsRepo,
		users:       params.UsersRepo,
		mail:        params.Mail,
		logg:        params.Logger,
		frontend:    params.Frontend,
	}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateTeamInput) (*TeamDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team name is required")
	}

	var team *models.Team
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		teamRepo := NewRepository(tx)
		membershipRepo := memberships.NewRepository(tx)

		var lastErr error
		for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
			code, err := security.GenerateInviteCode()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite code")
			}

			candidate := &models.Team{
				ID:          uuid.New(),
				Name:        name,
				Description: copyStringPointer(input.Description),
				OwnerUserID: ownerID,
				InviteCode:  code,
			}
			if lastErr = teamRepo.Create(ctx, candidate); lastErr == nil {
				team = candidate
				break
			}
			// Only an invite-code collision warrants another attempt.
			if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create team")
			}
		}
		if team == nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "could not allocate a unique invite code")
		}

		if _, err := membershipRepo.CreateMembership(ctx, team.ID, ownerID, enums.MemberRoleOwner, enums.InvitationStatusAccepted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create owner membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(team)
	role := enums.MemberRoleOwner
	dto.Role = &role
	return dto, nil
}

func (s *service) GetByID(ctx context.Context, userID, teamID uuid.UUID) (*TeamDTO, error) {
	team, err := s.loadActiveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	membership, err := s.memberships.GetMembership(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this team")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if membership.Status != enums.InvitationStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this team")
	}

	dto := FromModel(team)
	role := membership.Role
	dto.Role = &role
	return dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]TeamDTO, error) {
	rows, err := s.memberships.ListUserTeams(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user teams")
	}

	out := make([]TeamDTO, 0, len(rows))
	for _, row := range rows {
		role := row.Role
		out = append(out, TeamDTO{
			ID:          row.TeamID,
			Name:        row.TeamName,
			Description: row.TeamDescription,
			OwnerUserID: row.OwnerUserID,
			InviteCode:  row.InviteCode,
			Role:        &role,
		})
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, userID, teamID uuid.UUID, input UpdateTeamInput) (*TeamDTO, error) {
	team, err := s.requireOwner(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "team name cannot be empty")
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = copyStringPointer(input.Description)
	}

	if err := s.repo.Update(ctx, team); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update team")
	}
	return FromModel(team), nil
}

func (s *service) Delete(ctx context.Context, userID, teamID uuid.UUID) error {
	if _, err := s.requireOwner(ctx, userID, teamID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, teamID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete team")
	}
	return nil
}

func (s *service) GetByInviteCode(ctx context.Context, code string) (*TeamPreviewDTO, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}

	team, err := s.repo.FindByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup invite code")
	}
	return PreviewFromModel(team), nil
}

func (s *service) ListMembers(ctx context.Context, userID, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error) {
	if _, err := s.loadActiveTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	members, err := s.memberships.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team members")
	}
	return members, nil
}

// IsMember reports whether the user holds an ACCEPTED membership of a
// non-deleted team. Standup and summary services lean on this predicate.
func (s *service) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	team, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if team.Deleted {
		return false, nil
	}
	return s.memberships.IsMember(ctx, teamID, userID)
}

func (s *service) loadActiveTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	team, err := s.repo.FindByID(ctx, teamID)
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

func (s *service) requireOwner(ctx context.Context, userID, teamID uuid.UUID) (*models.Team, error) {
	team, err := s.loadActiveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerUserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the team owner may perform this action")
	}
	return team, nil
}

func (s *service) requireMember(ctx context.Context, teamID, userID uuid.UUID) error {
	ok, err := s.memberships.IsMember(ctx, teamID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this team")
	}
	return nil
}
