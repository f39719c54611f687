package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siamcode/standupstrip-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir invalid: %v", err)
	}
}

func TestStandupMigrationEnforcesUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_standups.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS standups",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_standups_team_user_date ON standups (team_id, user_id, date)",
		"CREATE INDEX IF NOT EXISTS idx_standups_team_date ON standups (team_id, date)",
		"DROP TABLE IF EXISTS standups",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTeamMemberMigrationConstrainsEnums(t *testing.T) {
	content := readMigration(t, "*_create_team_members.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_team_members_team_user ON team_members (team_id, user_id)",
		"CHECK (role IN ('OWNER', 'MEMBER'))",
		"CHECK (status IN ('PENDING', 'ACCEPTED', 'REJECTED'))",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSummaryMigrationsKeepOneRowPerScope(t *testing.T) {
	content := readMigration(t, "*_create_summaries.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_standup_summaries_team_date ON standup_summaries (team_id, date)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_weekly_summaries_team_week ON weekly_summaries (team_id, week_start_date)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
