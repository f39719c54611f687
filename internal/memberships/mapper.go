package memberships

import (
	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
)

type teamMemberRow struct {
	models.TeamMember
	Email string `gorm:"column:email"`
	Name  string `gorm:"column:name"`
}

type invitationRow struct {
	models.TeamMember
	TeamName string `gorm:"column:team_name"`
}

type membershipWithTeamRow struct {
	models.TeamMember
	TeamName        string    `gorm:"column:team_name"`
	TeamDescription *string   `gorm:"column:team_description"`
	OwnerUserID     uuid.UUID `gorm:"column:owner_user_id"`
	InviteCode      string    `gorm:"column:invite_code"`
}

func teamMembersFromRows(rows []teamMemberRow) []TeamMemberDTO {
	out := make([]TeamMemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TeamMemberDTO{
			MembershipID: row.ID,
			TeamID:       row.TeamID,
			UserID:       row.UserID,
			Email:        row.Email,
			Name:         row.Name,
			Role:         row.Role,
			Status:       row.Status,
			InvitedAt:    row.InvitedAt,
			RespondedAt:  copyTimePointer(row.RespondedAt),
		})
	}
	return out
}

func invitationsFromRows(rows []invitationRow) []InvitationDTO {
	out := make([]InvitationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, InvitationDTO{
			MembershipID: row.ID,
			TeamID:       row.TeamID,
			TeamName:     row.TeamName,
			Role:         row.Role,
			InvitedAt:    row.InvitedAt,
		})
	}
	return out
}

func membershipsWithTeamFromRows(rows []membershipWithTeamRow) []MembershipWithTeam {
	out := make([]MembershipWithTeam, 0, len(rows))
	for _, row := range rows {
		out = append(out, MembershipWithTeam{
			TeamID:          row.TeamID,
			TeamName:        row.TeamName,
			TeamDescription: row.TeamDescription,
			OwnerUserID:     row.OwnerUserID,
			InviteCode:      row.InviteCode,
			Role:            row.Role,
			JoinedAt:        copyTimePointer(row.RespondedAt),
		})
	}
	return out
}
