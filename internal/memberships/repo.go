package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetMembership retrieves the single membership row for (team, user).
func (r *Repository) GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var membership models.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, teamID, userID uuid.UUID, role enums.MemberRole, status enums.InvitationStatus) (*models.TeamMember, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid invitation status %q", status)
	}

	now := time.Now().UTC()
	membership := &models.TeamMember{
		ID:        uuid.New(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
		Status:    status,
		InvitedAt: now,
	}
	if status != enums.InvitationStatusPending {
		membership.RespondedAt = &now
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// ResetToPending rewinds an existing membership to a fresh invite: status
// PENDING, new invited_at, responded_at cleared.
func (r *Repository) ResetToPending(ctx context.Context, membershipID uuid.UUID, role enums.MemberRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid member role %q", role)
	}
	return r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", membershipID).
		Updates(map[string]any{
			"status":       enums.InvitationStatusPending,
			"role":         role,
			"invited_at":   time.Now().UTC(),
			"responded_at": nil,
		}).Error
}

// UpdateStatus records an invite response.
func (r *Repository) UpdateStatus(ctx context.Context, membershipID uuid.UUID, status enums.InvitationStatus, respondedAt time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid invitation status %q", status)
	}
	return r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", membershipID).
		Updates(map[string]any{
			"status":       status,
			"responded_at": respondedAt,
		}).Error
}

// DeleteMembership removes the row entirely, freeing the (team, user) slot.
func (r *Repository) DeleteMembership(ctx context.Context, teamID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// IsMember reports whether the user holds an ACCEPTED membership. This is
// the authorization predicate for every standup and summary operation.
func (r *Repository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, enums.InvitationStatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListTeamMembers returns every membership for the team joined with the
// member's profile, invitation order.
func (r *Repository) ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]TeamMemberDTO, error) {
	var rows []teamMemberRow
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Select("team_members.*, users.email, users.name").
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.team_id = ?", teamID).
		Order("team_members.invited_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return teamMembersFromRows(rows), nil
}

// ListAcceptedMembers returns the ACCEPTED subset, used by reminder dispatch.
func (r *Repository) ListAcceptedMembers(ctx context.Context, teamID uuid.UUID) ([]TeamMemberDTO, error) {
	var rows []teamMemberRow
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Select("team_members.*, users.email, users.name").
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.team_id = ? AND team_members.status = ?", teamID, enums.InvitationStatusAccepted).
		Order("team_members.invited_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return teamMembersFromRows(rows), nil
}

// ListPendingForTeam returns the team's outstanding invites (owner view).
func (r *Repository) ListPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]TeamMemberDTO, error) {
	var rows []teamMemberRow
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Select("team_members.*, users.email, users.name").
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.team_id = ? AND team_members.status = ?", teamID, enums.InvitationStatusPending).
		Order("team_members.invited_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return teamMembersFromRows(rows), nil
}

// ListPendingForUser returns the user's open invites joined with team
// metadata (member view). Deleted teams are filtered out.
func (r *Repository) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]InvitationDTO, error) {
	var rows []invitationRow
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Select("team_members.*, teams.name AS team_name").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.user_id = ? AND team_members.status = ? AND teams.deleted = ?", userID, enums.InvitationStatusPending, false).
		Order("team_members.invited_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return invitationsFromRows(rows), nil
}

// ListUserTeams returns the non-deleted teams where the user is ACCEPTED.
func (r *Repository) ListUserTeams(ctx context.Context, userID uuid.UUID) ([]MembershipWithTeam, error) {
	var rows []membershipWithTeamRow
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Select("team_members.*, teams.name AS team_name, teams.description AS team_description, teams.owner_user_id, teams.invite_code").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.user_id = ? AND team_members.status = ? AND teams.deleted = ?", userID, enums.InvitationStatusAccepted, false).
		Order("teams.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return membershipsWithTeamFromRows(rows), nil
}
