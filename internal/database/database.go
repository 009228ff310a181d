package database

import (
	"github.com/scorecard/api/internal/config"
	"github.com/scorecard/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Project{},
		&model.Issue{},
		&model.UserProject{},
		&model.ProjectIssue{},
		&model.Segment{},
		&model.Error{},
	)
	if err != nil {
		return err
	}

	// AutoMigrate does not manage ON DELETE behavior, so the cascade graph
	// (project -> memberships/project_issues/segments -> errors, issue ->
	// project_issues/errors, user -> memberships/refresh_tokens) is
	// installed by hand. Deleting a project or re-importing the typology
	// must take every dependent row with it.
	cascades := []string{
		"ALTER TABLE refresh_tokens DROP CONSTRAINT IF EXISTS refresh_tokens_user_id_fkey",
		"ALTER TABLE refresh_tokens ADD CONSTRAINT refresh_tokens_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE",
		"ALTER TABLE user_projects DROP CONSTRAINT IF EXISTS user_projects_project_id_fkey",
		"ALTER TABLE user_projects ADD CONSTRAINT user_projects_project_id_fkey FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE",
		"ALTER TABLE user_projects DROP CONSTRAINT IF EXISTS user_projects_user_id_fkey",
		"ALTER TABLE user_projects ADD CONSTRAINT user_projects_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE",
		"ALTER TABLE project_issues DROP CONSTRAINT IF EXISTS project_issues_project_id_fkey",
		"ALTER TABLE project_issues ADD CONSTRAINT project_issues_project_id_fkey FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE",
		"ALTER TABLE project_issues DROP CONSTRAINT IF EXISTS project_issues_issue_fkey",
		"ALTER TABLE project_issues ADD CONSTRAINT project_issues_issue_fkey FOREIGN KEY (issue) REFERENCES issues (id) ON DELETE CASCADE",
		"ALTER TABLE segments DROP CONSTRAINT IF EXISTS segments_project_id_fkey",
		"ALTER TABLE segments ADD CONSTRAINT segments_project_id_fkey FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE",
		"ALTER TABLE errors DROP CONSTRAINT IF EXISTS errors_segment_id_fkey",
		"ALTER TABLE errors ADD CONSTRAINT errors_segment_id_fkey FOREIGN KEY (segment_id) REFERENCES segments (id) ON DELETE CASCADE",
		"ALTER TABLE errors DROP CONSTRAINT IF EXISTS errors_issue_fkey",
		"ALTER TABLE errors ADD CONSTRAINT errors_issue_fkey FOREIGN KEY (issue) REFERENCES issues (id) ON DELETE CASCADE",
	}

	for _, stmt := range cascades {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
