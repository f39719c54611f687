package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/internal/auth"
	"github.com/siamcode/standupstrip-backend/internal/memberships"
	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/internal/summaries"
	"github.com/siamcode/standupstrip-backend/internal/teams"
	"github.com/siamcode/standupstrip-backend/internal/users"
	"github.com/siamcode/standupstrip-backend/internal/weekly"
	pkgauth "github.com/siamcode/standupstrip-backend/pkg/auth"
	"github.com/siamcode/standupstrip-backend/pkg/config"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input auth.RegisterInput) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "stub"}, nil
}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "stub"}, nil
}

func (stubAuthService) VerifyEmail(ctx context.Context, token string) error {
	return nil
}

func (stubAuthService) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (stubAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input auth.UpdateProfileInput) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID, Name: input.Name}, nil
}

type stubTeamService struct{}

func (stubTeamService) Create(ctx context.Context, ownerID uuid.UUID, input teams.CreateTeamInput) (*teams.TeamDTO, error) {
	return &teams.TeamDTO{ID: uuid.New(), Name: input.Name, OwnerUserID: ownerID}, nil
}

func (stubTeamService) GetByID(ctx context.Context, userID, teamID uuid.UUID) (*teams.TeamDTO, error) {
	return &teams.TeamDTO{ID: teamID}, nil
}

func (stubTeamService) ListMine(ctx context.Context, userID uuid.UUID) ([]teams.TeamDTO, error) {
	return []teams.TeamDTO{}, nil
}

func (stubTeamService) Update(ctx context.Context, userID, teamID uuid.UUID, input teams.UpdateTeamInput) (*teams.TeamDTO, error) {
	return &teams.TeamDTO{ID: teamID}, nil
}

func (stubTeamService) Delete(ctx context.Context, userID, teamID uuid.UUID) error {
	return nil
}

func (stubTeamService) GetByInviteCode(ctx context.Context, code string) (*teams.TeamPreviewDTO, error) {
	return &teams.TeamPreviewDTO{ID: uuid.New()}, nil
}

func (stubTeamService) ListMembers(ctx context.Context, userID, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error) {
	return nil, nil
}

func (stubTeamService) Invite(ctx context.Context, inviterID, teamID uuid.UUID, input teams.InviteMemberInput) (*memberships.MembershipDTO, error) {
	return &memberships.MembershipDTO{}, nil
}

func (stubTeamService) Accept(ctx context.Context, userID, teamID uuid.UUID) (*memberships.MembershipDTO, error) {
	return &memberships.MembershipDTO{}, nil
}

func (stubTeamService) Reject(ctx context.Context, userID, teamID uuid.UUID) (*memberships.MembershipDTO, error) {
	return &memberships.MembershipDTO{}, nil
}

func (stubTeamService) JoinByCode(ctx context.Context, userID uuid.UUID, code string) (*teams.TeamDTO, error) {
	return &teams.TeamDTO{ID: uuid.New()}, nil
}

func (stubTeamService) RemoveMember(ctx context.Context, actorID, teamID, targetUserID uuid.UUID) error {
	return nil
}

func (stubTeamService) ListPendingInvitations(ctx context.Context, actorID, teamID uuid.UUID) ([]memberships.TeamMemberDTO, error) {
	return nil, nil
}

func (stubTeamService) ListMyInvitations(ctx context.Context, userID uuid.UUID) ([]memberships.InvitationDTO, error) {
	return nil, nil
}

func (stubTeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	return true, nil
}

type stubStandupService struct{}

func (stubStandupService) Submit(ctx context.Context, userID, teamID uuid.UUID, input standups.SubmitStandupInput) (*standups.StandupDTO, error) {
	return &standups.StandupDTO{}, nil
}

func (stubStandupService) Update(ctx context.Context, userID, standupID uuid.UUID, input standups.UpdateStandupInput) (*standups.StandupDTO, error) {
	return &standups.StandupDTO{}, nil
}

func (stubStandupService) Delete(ctx context.Context, userID, standupID uuid.UUID) error {
	return nil
}

func (stubStandupService) ListByDate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) ([]standups.StandupWithAuthor, error) {
	return nil, nil
}

func (stubStandupService) ListByRange(ctx context.Context, userID, teamID uuid.UUID, start, end time.Time) ([]standups.StandupWithAuthor, error) {
	return nil, nil
}

func (stubStandupService) Heatmap(ctx context.Context, userID, teamID uuid.UUID) ([]standups.HeatmapEntry, error) {
	return nil, nil
}

type stubSummaryService struct{}

func (stubSummaryService) Generate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) (*summaries.SummaryDTO, error) {
	return &summaries.SummaryDTO{}, nil
}

func (stubSummaryService) GetByDate(ctx context.Context, userID, teamID uuid.UUID, date time.Time) (*summaries.SummaryDTO, error) {
	return &summaries.SummaryDTO{}, nil
}

func (stubSummaryService) ListByRange(ctx context.Context, userID, teamID uuid.UUID, start, end time.Time) ([]summaries.SummaryDTO, error) {
	return nil, nil
}

type stubWeeklyService struct{}

func (stubWeeklyService) Generate(ctx context.Context, userID, teamID uuid.UUID) (*weekly.WeeklySummaryDTO, error) {
	return &weekly.WeeklySummaryDTO{}, nil
}

func (stubWeeklyService) List(ctx context.Context, userID, teamID uuid.UUID) ([]weekly.WeeklySummaryDTO, error) {
	return nil, nil
}

func (stubWeeklyService) GetLatest(ctx context.Context, userID, teamID uuid.UUID) (*weekly.WeeklySummaryDTO, error) {
	return &weekly.WeeklySummaryDTO{}, nil
}

type stubReminderService struct{}

func (stubReminderService) RemindMember(ctx context.Context, byUser, teamID, targetUserID uuid.UUID) (int, error) {
	return 1, nil
}

func (stubReminderService) RemindAllPending(ctx context.Context, byUser, teamID uuid.UUID) (int, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "standupstrip",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:    cfg,
		Logger:    logg,
		Database:  stubPinger{},
		Cache:     nil,
		Auth:      stubAuthService{},
		Teams:     stubTeamService{},
		Standups:  stubStandupService{},
		Summaries: stubSummaryService{},
		Weekly:    stubWeeklyService{},
		Reminders: stubReminderService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "router@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if got := resp.Header().Get("X-StandUpStrip-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestHealthReadyReportsDisabledCache(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"redis":"disabled"`) {
		t.Fatalf("expected redis marked disabled, got %s", body)
	}
}

func TestProtectedRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/teams/"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/teams/" + uuid.NewString() + "/standups/"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s %s got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestProtectedRouteSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLoginAcceptsWellFormedBody(t *testing.T) {
	router := newTestRouter(testConfig())
	body := strings.NewReader(`{"email":"router@example.com","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestVerifyEmailRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without token got %d", resp.Code)
	}
}

func TestTeamRoutesValidateUUIDParams(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teams/not-a-uuid/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed team id got %d", resp.Code)
	}
}

func TestStandupMutationRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := strings.NewReader(`{"yesterday":"shipped the importer","today":"review queue"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/teams/"+uuid.NewString()+"/standups/", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for standup submit got %d: %s", resp.Code, resp.Body.String())
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/v1/standups/"+uuid.NewString()+"/", nil)
	del.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, del)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for standup delete got %d: %s", resp.Code, resp.Body.String())
	}
}
