package repository

import (
	"context"
	"errors"

	"github.com/scorecard/api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ErrorStore struct {
	db *gorm.DB
}

func NewErrorStore(db *gorm.DB) *ErrorStore {
	return &ErrorStore{db: db}
}

func (s *ErrorStore) WithTx(tx *gorm.DB) *ErrorStore {
	return &ErrorStore{db: tx}
}

// Create inserts an annotation. Exact duplicates are silently ignored.
func (s *ErrorStore) Create(ctx context.Context, annotation *model.Error) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(annotation).Error
}

// GetByID returns the error row, or nil when it does not exist.
func (s *ErrorStore) GetByID(ctx context.Context, id int64) (*model.Error, error) {
	var annotation model.Error
	err := s.db.WithContext(ctx).First(&annotation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &annotation, nil
}

func (s *ErrorStore) DeleteByID(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&model.Error{}, "id = ?", id).Error
}

// UpdateAttributes patches one error row; only note, issue and level may
// change after creation.
func (s *ErrorStore) UpdateAttributes(ctx context.Context, id int64, attrs map[string]interface{}) error {
	if len(attrs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.Error{}).Where("id = ?", id).Updates(attrs).Error
}

// ErrorRow is an error joined with its catalogue issue name.
type ErrorRow struct {
	model.Error
	IssueName string `json:"issueName"`
}

func (s *ErrorStore) ListBySegmentID(ctx context.Context, segmentID int64) ([]ErrorRow, error) {
	var rows []ErrorRow
	err := s.db.WithContext(ctx).
		Table("errors").
		Select("errors.*, issues.name AS issue_name").
		Joins("JOIN issues ON issues.id = errors.issue").
		Where("errors.segment_id = ?", segmentID).
		Order("errors.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ErrorStore) ListByProjectID(ctx context.Context, projectID int64) ([]ErrorRow, error) {
	var rows []ErrorRow
	err := s.db.WithContext(ctx).
		Table("errors").
		Select("errors.*, issues.name AS issue_name").
		Joins("JOIN issues ON issues.id = errors.issue").
		Joins("JOIN segments ON segments.id = errors.segment_id").
		Where("segments.project_id = ?", projectID).
		Order("errors.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByProjectID backs the "remove errors first" guard on file
// replacement.
func (s *ErrorStore) CountByProjectID(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("errors").
		Joins("JOIN segments ON segments.id = errors.segment_id").
		Where("segments.project_id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
