package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/scorecard/api/internal/config"
	"github.com/scorecard/api/internal/database"
)

// audit verifies the catalogue invariant the ingestion pipeline enforces
// at write time: every project_issues row and every reported error must
// reference an existing typology issue. A violation means the typology
// was re-imported underneath live projects.
func main() {
	runID := uuid.New().String()
	log.Printf("Audit run %s starting", runID)

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	type violation struct {
		ProjectID int64
		Issue     string
		Problem   string
	}

	var missing []violation
	err = db.Raw(`
		SELECT project_issues.project_id AS project_id,
		       project_issues.issue AS issue,
		       'missing from typology' AS problem
		FROM project_issues
		LEFT JOIN issues ON issues.id = project_issues.issue
		WHERE issues.id IS NULL
		ORDER BY project_issues.project_id, project_issues.issue
	`).Scan(&missing).Error
	if err != nil {
		log.Fatalf("Audit query failed: %v", err)
	}

	// Orphaned errors: annotations whose issue vanished should have been
	// cascade-deleted; surviving rows indicate a broken constraint.
	var orphaned []violation
	err = db.Raw(`
		SELECT segments.project_id AS project_id,
		       errors.issue AS issue,
		       'error references missing issue' AS problem
		FROM errors
		JOIN segments ON segments.id = errors.segment_id
		LEFT JOIN issues ON issues.id = errors.issue
		WHERE issues.id IS NULL
		ORDER BY segments.project_id, errors.issue
	`).Scan(&orphaned).Error
	if err != nil {
		log.Fatalf("Audit query failed: %v", err)
	}

	violations := append(missing, orphaned...)
	for _, v := range violations {
		log.Printf("[%s] project %d issue %q: %s", runID, v.ProjectID, v.Issue, v.Problem)
	}

	if len(violations) > 0 {
		log.Printf("Audit run %s found %d violations", runID, len(violations))
		os.Exit(1)
	}

	log.Printf("Audit run %s clean", runID)
}
