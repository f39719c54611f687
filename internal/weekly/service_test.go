package weekly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/internal/summaries"
	"github.com/siamcode/standupstrip-backend/internal/teams"
	"github.com/siamcode/standupstrip-backend/internal/users"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/mailer"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

type sqliteTxRunner struct {
	conn *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(r.conn)
}

type stubAI struct {
	text string
	err  error
}

func (s *stubAI) Generate(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []mailer.Message
}

func (s *stubSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubMembers struct {
	members map[string]bool
}

func memberKey(teamID, userID uuid.UUID) string {
	return teamID.String() + "/" + userID.String()
}

func (s *stubMembers) IsMember(_ context.Context, teamID, userID uuid.UUID) (bool, error) {
	return s.members[memberKey(teamID, userID)], nil
}

type testEnv struct {
	conn    *gorm.DB
	svc     Service
	members *stubMembers
	sender  *stubSender
	ai      *stubAI
	today   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	env := &testEnv{
		conn:    conn,
		members: &stubMembers{members: map[string]bool{}},
		sender:  &stubSender{},
		ai:      &stubAI{text: "weekly model text"},
		today:   time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC),
	}
	logg := logger.New(logger.Options{Output: io.Discard})
	gen, err := summaries.NewGenerator(env.ai, logg, nil)
	if err != nil {
		t.Fatalf("build generator: %v", err)
	}
	svc, err := NewService(ServiceParams{
		DB:         sqliteTxRunner{conn: conn},
		WeeklyRepo: NewRepository(conn),
		Standups:   standups.NewRepository(conn),
		TeamRepo:   teams.NewRepository(conn),
		UsersRepo:  users.NewRepository(conn),
		Members:    env.members,
		Generator:  gen,
		Mail:       env.sender,
		Logger:     logg,
		Now:        func() time.Time { return env.today },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	env.svc = svc
	return env
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email, PasswordHash: "hash", Name: email}
	if err := e.conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) team(t *testing.T, owner *models.User) *models.Team {
	t.Helper()
	team := &models.Team{ID: uuid.New(), Name: "platform", OwnerUserID: owner.ID, InviteCode: uuid.NewString()[:8]}
	if err := e.conn.Create(team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}
	e.members.members[memberKey(team.ID, owner.ID)] = true
	return team
}

func (e *testEnv) seedStandup(t *testing.T, teamID, userID uuid.UUID, date time.Time) {
	t.Helper()
	standup := &models.Standup{
		ID:            uuid.New(),
		TeamID:        teamID,
		UserID:        userID,
		Date:          types.DateOnly(date),
		YesterdayText: "y",
		TodayText:     "t",
	}
	if err := e.conn.Create(standup).Error; err != nil {
		t.Fatalf("seed standup: %v", err)
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestGenerateWeeklyDigestAndEmailOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	team := env.team(t, owner)

	env.seedStandup(t, team.ID, owner.ID, env.today)
	env.seedStandup(t, team.ID, owner.ID, env.today.AddDate(0, 0, -3))
	env.seedStandup(t, team.ID, owner.ID, env.today.AddDate(0, 0, -6))
	// outside the window, must not count
	env.seedStandup(t, team.ID, owner.ID, env.today.AddDate(0, 0, -7))

	digest, err := env.svc.Generate(ctx, owner.ID, team.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if digest.WeekStartDate != "2025-08-14" || digest.WeekEndDate != "2025-08-20" {
		t.Fatalf("unexpected week window %s to %s", digest.WeekStartDate, digest.WeekEndDate)
	}
	if !strings.Contains(digest.SummaryText, "Weekly Summary: 2025-08-14 to 2025-08-20") {
		t.Fatalf("missing header:\n%s", digest.SummaryText)
	}
	if !strings.Contains(digest.SummaryText, "**Total Standups:** 3") {
		t.Fatalf("missing standup count:\n%s", digest.SummaryText)
	}
	if !strings.Contains(digest.SummaryText, "weekly model text") {
		t.Fatalf("missing generated text:\n%s", digest.SummaryText)
	}
	if !digest.SentToOwner {
		t.Fatal("expected sent_to_owner true")
	}
	if len(env.sender.sent) != 1 || env.sender.sent[0].To != owner.Email {
		t.Fatalf("expected one email to the owner, got %+v", env.sender.sent)
	}
	if env.sender.sent[0].Kind != "weekly_digest" {
		t.Fatalf("unexpected message kind %q", env.sender.sent[0].Kind)
	}
}

func TestGenerateWeeklyIsOneShotPerWeek(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	team := env.team(t, owner)
	env.seedStandup(t, team.ID, owner.ID, env.today)

	if _, err := env.svc.Generate(ctx, owner.ID, team.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err := env.svc.Generate(ctx, owner.ID, team.ID)
	expectCode(t, err, pkgerrors.CodeConflict)

	// a new week window opens a fresh slot
	env.today = env.today.AddDate(0, 0, 7)
	env.seedStandup(t, team.ID, owner.ID, env.today)
	if _, err := env.svc.Generate(ctx, owner.ID, team.ID); err != nil {
		t.Fatalf("generate next week: %v", err)
	}
}

func TestGenerateWeeklyLosingDuplicateRaceReportsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	team := env.team(t, owner)
	env.seedStandup(t, team.ID, owner.ID, env.today)

	// A rival digest for the same week lands between the existence
	// check and the insert; the unique index makes the loser report
	// Conflict rather than a dependency failure.
	raceArmed := false
	err := env.conn.Callback().Create().Before("gorm:create").Register("rival_digest", func(tx *gorm.DB) {
		if !raceArmed {
			return
		}
		raceArmed = false
		rival := &models.WeeklySummary{
			ID:            uuid.New(),
			TeamID:        team.ID,
			WeekStartDate: types.DateOnly(env.today.AddDate(0, 0, -6)),
			WeekEndDate:   types.DateOnly(env.today),
			SummaryText:   "rival digest",
		}
		if err := env.conn.Create(rival).Error; err != nil {
			t.Errorf("seed rival digest: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	raceArmed = true
	_, err = env.svc.Generate(ctx, owner.ID, team.ID)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestGenerateWeeklyGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")
	team := env.team(t, owner)
	env.members.members[memberKey(team.ID, other.ID)] = true

	_, err := env.svc.Generate(ctx, other.ID, team.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)

	_, err = env.svc.Generate(ctx, owner.ID, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)

	// no standups in the window
	_, err = env.svc.Generate(ctx, owner.ID, team.ID)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGenerateWeeklyPersistsWhenEmailFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	team := env.team(t, owner)
	env.seedStandup(t, team.ID, owner.ID, env.today)
	env.sender.err = errors.New("smtp down")

	digest, err := env.svc.Generate(ctx, owner.ID, team.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if digest.SentToOwner {
		t.Fatal("sent_to_owner must record the failed send")
	}

	var count int64
	if err := env.conn.Model(&models.WeeklySummary{}).Where("team_id = ?", team.ID).Count(&count).Error; err != nil {
		t.Fatalf("count summaries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the digest to persist, got %d rows", count)
	}
}

func TestListAndGetLatestOrderedByWeek(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	team := env.team(t, owner)

	_, err := env.svc.GetLatest(ctx, owner.ID, team.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)

	for week := 0; week < 3; week++ {
		env.seedStandup(t, team.ID, owner.ID, env.today)
		if _, err := env.svc.Generate(ctx, owner.ID, team.ID); err != nil {
			t.Fatalf("generate week %d: %v", week, err)
		}
		env.today = env.today.AddDate(0, 0, 7)
	}

	list, err := env.svc.List(ctx, owner.ID, team.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 digests, got %d", len(list))
	}
	if list[0].WeekStartDate < list[1].WeekStartDate {
		t.Fatalf("expected newest first, got %s then %s", list[0].WeekStartDate, list[1].WeekStartDate)
	}

	latest, err := env.svc.GetLatest(ctx, owner.ID, team.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.WeekStartDate != list[0].WeekStartDate {
		t.Fatalf("latest mismatch: %s vs %s", latest.WeekStartDate, list[0].WeekStartDate)
	}

	outsider := env.user(t, "outsider@example.com")
	_, err = env.svc.List(ctx, outsider.ID, team.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}
