// Package repository persists the scorecard domain over gorm. Every store
// holds a *gorm.DB handle; WithTx rebinds a store to a transaction so the
// orchestrator can compose calls into one atomic unit of work.
package repository

import (
	"context"
	"errors"

	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/parser"
	"gorm.io/gorm"
)

type IssueStore struct {
	db *gorm.DB
}

func NewIssueStore(db *gorm.DB) *IssueStore {
	return &IssueStore{db: db}
}

func (s *IssueStore) WithTx(tx *gorm.DB) *IssueStore {
	return &IssueStore{db: tx}
}

// GetByID returns the catalogue issue, or nil when it does not exist.
func (s *IssueStore) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	var issue model.Issue
	err := s.db.WithContext(ctx).First(&issue, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Any reports whether the typology has been imported at all.
func (s *IssueStore) Any(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Issue{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *IssueStore) ListAll(ctx context.Context) ([]model.Issue, error) {
	var issues []model.Issue
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// ReplaceCatalogue swaps the entire typology. Existing project issues and
// errors cascade away with the old rows, so this is an administrative
// reset, not an edit.
func (s *IssueStore) ReplaceCatalogue(ctx context.Context, issues []model.Issue) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Issue{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(issues, 500).Error
	})
}

func (s *IssueStore) CreateProjectIssue(ctx context.Context, projectIssue *model.ProjectIssue) error {
	return s.db.WithContext(ctx).Create(projectIssue).Error
}

// ProjectIssueRow is a project's metric entry joined with its catalogue
// issue.
type ProjectIssueRow struct {
	IssueID     string  `json:"issueId"`
	Parent      *string `json:"parent"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
	Examples    string  `json:"examples"`
	Display     bool    `json:"display"`
}

func (s *IssueStore) ListProjectIssues(ctx context.Context, projectID int64) ([]ProjectIssueRow, error) {
	var rows []ProjectIssueRow
	err := s.db.WithContext(ctx).
		Table("project_issues").
		Select("issues.id AS issue_id, issues.parent AS parent, issues.name AS name, issues.description AS description, issues.notes AS notes, issues.examples AS examples, project_issues.display AS display").
		Joins("JOIN issues ON issues.id = project_issues.issue").
		Where("project_issues.project_id = ?", projectID).
		Order("project_issues.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IssueRows converts joined metric entries into the flat rows the forest
// builder consumes.
func IssueRows(rows []ProjectIssueRow) []parser.IssueRow {
	out := make([]parser.IssueRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, parser.IssueRow{
			Issue:       row.IssueID,
			Parent:      row.Parent,
			Name:        row.Name,
			Description: row.Description,
			Notes:       row.Notes,
			Examples:    row.Examples,
		})
	}
	return out
}
