package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/internal/memberships"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/enums"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/mailer"
)

// Invite upserts a PENDING membership for the target user. Re-inviting a
// REJECTED or ACCEPTED-turned-stale row rewinds it to a fresh invite; an
// active ACCEPTED membership is a conflict.
func (s *service) Invite(ctx context.Context, inviterID, teamID uuid.UUID, input InviteMemberInput) (*memberships.MembershipDTO, error) {
	team, err := s.requireOwner(ctx, inviterID, teamID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	role := input.Role
	if role == "" {
		role = enums.MemberRoleMember
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot invite a second owner")
	}

	target, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no user registered with that email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if target.ID == team.OwnerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member")
	}

	var result *models.TeamMember
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		membershipRepo := memberships.NewRepository(tx)

		existing, err := membershipRepo.GetMembership(ctx, teamID, target.ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
			}
			created, err := membershipRepo.CreateMembership(ctx, teamID, target.ID, role, enums.InvitationStatusPending)
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return pkgerrors.New(pkgerrors.CodeConflict, "membership already exists for this user")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
			}
			result = created
			return nil
		}

		if existing.Status == enums.InvitationStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeConflict, "user is already a member")
		}
		if err := membershipRepo.ResetToPending(ctx, existing.ID, role); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset invitation")
		}
		refreshed, err := membershipRepo.GetMembership(ctx, teamID, target.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload membership")
		}
		result = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendInvitationEmail(ctx, team, target)
	return memberships.ToDTO(result), nil
}

// Accept moves a PENDING invitation to ACCEPTED.
func (s *service) Accept(ctx context.Context, userID, teamID uuid.UUID) (*memberships.MembershipDTO, error) {
	return s.respond(ctx, userID, teamID, enums.InvitationStatusAccepted)
}

// Reject moves a PENDING invitation to REJECTED. The row survives so a
// later re-invite starts a fresh cycle.
func (s *service) Reject(ctx context.Context, userID, teamID uuid.UUID) (*memberships.MembershipDTO, error) {
	return s.respond(ctx, userID, teamID, enums.InvitationStatusRejected)
}

func (s *service) respond(ctx context.Context, userID, teamID uuid.UUID, status enums.InvitationStatus) (*memberships.MembershipDTO, error) {
	if _, err := s.loadActiveTeam(ctx, teamID); err != nil {
		return nil, err
	}

	var result *models.TeamMember
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		membershipRepo := memberships.NewRepository(tx)

		membership, err := membershipRepo.GetMembership(ctx, teamID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "no pending invitation for this team")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}
		if membership.Status != enums.InvitationStatusPending {
			return pkgerrors.New(pkgerrors.CodeValidation, "invitation is not pending")
		}

		now := time.Now().UTC()
		if err := membershipRepo.UpdateStatus(ctx, membership.ID, status, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invitation")
		}
		membership.Status = status
		membership.RespondedAt = &now
		result = membership
		return nil
	})
	if err != nil {
		return nil, err
	}
	return memberships.ToDTO(result), nil
}

// JoinByCode resolves a team by invite code and grants membership directly,
// bypassing the invite step. A PENDING invite must be answered instead.
func (s *service) JoinByCode(ctx context.Context, userID uuid.UUID, code string) (*TeamDTO, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}

	team, err := s.repo.FindByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid invite code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup invite code")
	}

	var role enums.MemberRole
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		membershipRepo := memberships.NewRepository(tx)

		existing, err := membershipRepo.GetMembership(ctx, team.ID, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
			}
			created, err := membershipRepo.CreateMembership(ctx, team.ID, userID, enums.MemberRoleMember, enums.InvitationStatusAccepted)
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return pkgerrors.New(pkgerrors.CodeConflict, "already a member of this team")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
			}
			role = created.Role
			return nil
		}

		switch existing.Status {
		case enums.InvitationStatusAccepted:
			return pkgerrors.New(pkgerrors.CodeConflict, "already a member of this team")
		case enums.InvitationStatusPending:
			return pkgerrors.New(pkgerrors.CodeConflict, "a pending invitation exists, accept or reject it instead")
		}

		// a prior rejection does not block self-service join
		now := time.Now().UTC()
		if err := membershipRepo.UpdateStatus(ctx, existing.ID, enums.InvitationStatusAccepted, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update membership")
		}
		role = existing.Role
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(team)
	dto.Role = &role
	return dto, nil
}

// RemoveMember deletes the membership row entirely, freeing the slot for a
// completely fresh invite cycle. The owner cannot be removed.
func (s *service) RemoveMember(ctx context.Context, actorID, teamID, targetUserID uuid.UUID) error {
	team, err := s.requireOwner(ctx, actorID, teamID)
	if err != nil {
		return err
	}
	if targetUserID == team.OwnerUserID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot remove the team owner")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		membershipRepo := memberships.NewRepository(tx)

		if _, err := membershipRepo.GetMembership(ctx, teamID, targetUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}
		if err := membershipRepo.DeleteMembership(ctx, teamID, targetUserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
		}
		return nil
	})
}

// ListPendingInvitations is the owner's view of outstanding invites.
func (s *service) ListPendingInvitations(ctx context.Context, actorID, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error) {
	if _, err := s.requireOwner(ctx, actorID, teamID); err != nil {
		return nil, err
	}

	pending, err := s.memberships.ListPendingForTeam(ctx, teamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending invitations")
	}
	return pending, nil
}

// ListMyInvitations is the member's view of invites awaiting a response.
func (s *service) ListMyInvitations(ctx context.Context, userID uuid.UUID) ([]memberships.InvitationDTO, error) {
	invitations, err := s.memberships.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invitations")
	}
	return invitations, nil
}

func (s *service) sendInvitationEmail(ctx context.Context, team *models.Team, target *models.User) {
	if s.mail == nil {
		return
	}

	owner, err := s.users.FindByID(ctx, team.OwnerUserID)
	ownerName := "the team owner"
	if err == nil {
		ownerName = owner.Name
	}

	joinURL := fmt.Sprintf("%s/join/%s", strings.TrimRight(s.frontend.BaseURL, "/"), team.InviteCode)
	body := fmt.Sprintf(`<h2>You're invited to join %s</h2>
<p>%s invited you to share daily standups with the team <strong>%s</strong> on StandUpStrip.</p>
<p>Your invite code is <strong>%s</strong>.</p>
<p><a href="%s">Accept the invitation</a></p>`,
		team.Name, ownerName, team.Name, team.InviteCode, joinURL)

	queued := s.mail.Enqueue(ctx, mailer.Message{
		To:      target.Email,
		Subject: fmt.Sprintf("Invitation to join %s on StandUpStrip", team.Name),
		HTML:    body,
		Kind:    "invitation",
	})
	if !queued {
		s.logg.Warn(s.logg.WithTeamID(ctx, team.ID.String()), "invitation email not queued")
	}
}
