package models

// All lists every persisted entity for gorm AutoMigrate (sqlite/dev only;
// postgres schemas are managed by goose migrations).
func All() []any {
	return []any{
		&User{},
		&Team{},
		&TeamMember{},
		&Standup{},
		&StandupSummary{},
		&WeeklySummary{},
	}
}
