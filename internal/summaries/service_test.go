package summaries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

type sqliteTxRunner struct {
	conn *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(r.conn)
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
	ai      *stubAI
	day     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
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
		ai:      &stubAI{text: "model summary"},
		day:     time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC),
	}
	gen, err := NewGenerator(env.ai, testLogger(), nil)
	if err != nil {
		t.Fatalf("build generator: %v", err)
	}
	svc, err := NewService(ServiceParams{
		DB:          sqliteTxRunner{conn: conn},
		SummaryRepo: NewRepository(conn),
		Standups:    standups.NewRepository(conn),
		Members:     env.members,
		Generator:   gen,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	env.svc = svc
	return env
}

func (e *testEnv) member(t *testing.T, teamID, userID uuid.UUID) {
	t.Helper()
	e.members.members[memberKey(teamID, userID)] = true
}

func (e *testEnv) seedStandup(t *testing.T, teamID uuid.UUID, date time.Time, yesterday, today string) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", PasswordHash: "hash", Name: "seed"}
	if err := e.conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	standup := &models.Standup{
		ID:            uuid.New(),
		TeamID:        teamID,
		UserID:        user.ID,
		Date:          types.DateOnly(date),
		YesterdayText: yesterday,
		TodayText:     today,
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

func TestGenerateReplacesPriorSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer := uuid.New()
	teamID := uuid.New()
	env.member(t, teamID, viewer)
	env.seedStandup(t, teamID, env.day, "wrote tests", "refactor")

	first, err := env.svc.Generate(ctx, viewer, teamID, env.day)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !first.GeneratedByAI {
		t.Fatal("expected model-backed summary")
	}
	if first.SummaryText != "model summary" {
		t.Fatalf("unexpected text %q", first.SummaryText)
	}

	env.seedStandup(t, teamID, env.day, "more work", "even more")
	env.ai.text = "regenerated summary"
	second, err := env.svc.Generate(ctx, viewer, teamID, env.day)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("regeneration must create a fresh row")
	}
	if second.SummaryText != "regenerated summary" {
		t.Fatalf("unexpected text %q", second.SummaryText)
	}

	var count int64
	if err := env.conn.Model(&models.StandupSummary{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
		t.Fatalf("count summaries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one summary row, got %d", count)
	}
}

func TestGenerateRecordsTemplatePathTruthfully(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer := uuid.New()
	teamID := uuid.New()
	env.member(t, teamID, viewer)
	env.seedStandup(t, teamID, env.day, "wrote tests", "refactor")

	env.ai.err = context.DeadlineExceeded
	summary, err := env.svc.Generate(ctx, viewer, teamID, env.day)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if summary.GeneratedByAI {
		t.Fatal("fallback summary must not be flagged as model output")
	}
	if summary.SummaryText == "" {
		t.Fatal("fallback must produce text")
	}
}

func TestGenerateGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer := uuid.New()
	teamID := uuid.New()

	_, err := env.svc.Generate(ctx, viewer, teamID, env.day)
	expectCode(t, err, pkgerrors.CodeForbidden)

	env.member(t, teamID, viewer)
	_, err = env.svc.Generate(ctx, viewer, teamID, env.day)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGetByDateAndListByRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer := uuid.New()
	teamID := uuid.New()
	env.member(t, teamID, viewer)

	_, err := env.svc.GetByDate(ctx, viewer, teamID, env.day)
	expectCode(t, err, pkgerrors.CodeNotFound)

	for offset := 0; offset < 3; offset++ {
		date := env.day.AddDate(0, 0, -offset)
		env.seedStandup(t, teamID, date, "y", "t")
		if _, err := env.svc.Generate(ctx, viewer, teamID, date); err != nil {
			t.Fatalf("generate day -%d: %v", offset, err)
		}
	}

	got, err := env.svc.GetByDate(ctx, viewer, teamID, env.day)
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if got.Date != "2025-08-20" {
		t.Fatalf("unexpected date %s", got.Date)
	}

	_, err = env.svc.ListByRange(ctx, viewer, teamID, env.day, env.day.AddDate(0, 0, -1))
	expectCode(t, err, pkgerrors.CodeValidation)

	list, err := env.svc.ListByRange(ctx, viewer, teamID, env.day.AddDate(0, 0, -1), env.day)
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries in range, got %d", len(list))
	}
	if list[0].Date >= list[1].Date {
		t.Fatalf("expected ascending dates, got %s then %s", list[0].Date, list[1].Date)
	}
}
