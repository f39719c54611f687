package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email, name string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email, PasswordHash: "hash", Name: name}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedTeam(t *testing.T, conn *gorm.DB, owner uuid.UUID, name, code string) *models.Team {
	t.Helper()
	team := &models.Team{ID: uuid.New(), Name: name, OwnerUserID: owner, InviteCode: code}
	require.NoError(t, conn.Create(team).Error)
	return team
}

func TestRepositoryInvitationLifecycle(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com", "Owner")
	member := seedUser(t, conn, "member@example.com", "Member")
	team := seedTeam(t, conn, owner.ID, "Platform", "ABCD1234")

	invited, err := repo.CreateMembership(ctx, team.ID, member.ID, enums.MemberRoleMember, enums.InvitationStatusPending)
	require.NoError(t, err)
	require.Equal(t, enums.InvitationStatusPending, invited.Status)
	require.Nil(t, invited.RespondedAt)

	ok, err := repo.IsMember(ctx, team.ID, member.ID)
	require.NoError(t, err)
	require.False(t, ok, "pending invite must not confer membership")

	require.NoError(t, repo.UpdateStatus(ctx, invited.ID, enums.InvitationStatusAccepted, time.Now().UTC()))

	ok, err = repo.IsMember(ctx, team.ID, member.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// re-invite rewinds the same row back to a fresh pending invite
	require.NoError(t, repo.ResetToPending(ctx, invited.ID, enums.MemberRoleMember))
	reset, err := repo.GetMembership(ctx, team.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, invited.ID, reset.ID)
	require.Equal(t, enums.InvitationStatusPending, reset.Status)
	require.Nil(t, reset.RespondedAt)

	ok, err = repo.IsMember(ctx, team.ID, member.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRepositoryDuplicateMembershipFails(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com", "Owner")
	member := seedUser(t, conn, "member@example.com", "Member")
	team := seedTeam(t, conn, owner.ID, "Platform", "ABCD1234")

	_, err := repo.CreateMembership(ctx, team.ID, member.ID, enums.MemberRoleMember, enums.InvitationStatusPending)
	require.NoError(t, err)

	_, err = repo.CreateMembership(ctx, team.ID, member.ID, enums.MemberRoleMember, enums.InvitationStatusAccepted)
	require.Error(t, err, "one row per (team, user)")
}

func TestRepositoryDeleteFreesSlot(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com", "Owner")
	member := seedUser(t, conn, "member@example.com", "Member")
	team := seedTeam(t, conn, owner.ID, "Platform", "ABCD1234")

	_, err := repo.CreateMembership(ctx, team.ID, member.ID, enums.MemberRoleMember, enums.InvitationStatusAccepted)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteMembership(ctx, team.ID, member.ID))

	_, err = repo.GetMembership(ctx, team.ID, member.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// deleted slot accepts a brand new invite
	fresh, err := repo.CreateMembership(ctx, team.ID, member.ID, enums.MemberRoleMember, enums.InvitationStatusPending)
	require.NoError(t, err)
	require.Equal(t, enums.InvitationStatusPending, fresh.Status)
}

func TestRepositoryListings(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com", "Owner")
	accepted := seedUser(t, conn, "accepted@example.com", "Accepted")
	pending := seedUser(t, conn, "pending@example.com", "Pending")
	team := seedTeam(t, conn, owner.ID, "Platform", "ABCD1234")
	deletedTeam := seedTeam(t, conn, owner.ID, "Gone", "GONE0000")
	require.NoError(t, conn.Model(deletedTeam).Update("deleted", true).Error)

	_, err := repo.CreateMembership(ctx, team.ID, owner.ID, enums.MemberRoleOwner, enums.InvitationStatusAccepted)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, team.ID, accepted.ID, enums.MemberRoleMember, enums.InvitationStatusAccepted)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, team.ID, pending.ID, enums.MemberRoleMember, enums.InvitationStatusPending)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, deletedTeam.ID, pending.ID, enums.MemberRoleMember, enums.InvitationStatusPending)
	require.NoError(t, err)

	all, err := repo.ListTeamMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "owner@example.com", all[0].Email)

	acceptedOnly, err := repo.ListAcceptedMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, acceptedOnly, 2)

	pendingForTeam, err := repo.ListPendingForTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, pendingForTeam, 1)
	require.Equal(t, pending.ID, pendingForTeam[0].UserID)

	// member view skips invites from deleted teams
	pendingForUser, err := repo.ListPendingForUser(ctx, pending.ID)
	require.NoError(t, err)
	require.Len(t, pendingForUser, 1)
	require.Equal(t, "Platform", pendingForUser[0].TeamName)

	teams, err := repo.ListUserTeams(ctx, accepted.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.Equal(t, team.ID, teams[0].TeamID)
	require.Equal(t, owner.ID, teams[0].OwnerUserID)
	require.NotNil(t, teams[0].JoinedAt)
}
