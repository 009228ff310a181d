package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/scorecard/api/internal/model"
	"gorm.io/gorm"
)

type SegmentStore struct {
	db *gorm.DB
}

func NewSegmentStore(db *gorm.DB) *SegmentStore {
	return &SegmentStore{db: db}
}

func (s *SegmentStore) WithTx(tx *gorm.DB) *SegmentStore {
	return &SegmentStore{db: tx}
}

func (s *SegmentStore) DeleteByProjectID(ctx context.Context, projectID int64) error {
	return s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&model.Segment{}).Error
}

// BulkInsert writes the parsed bitext rows in order, numbering segments
// from 1.
func (s *SegmentStore) BulkInsert(ctx context.Context, projectID int64, pairs []model.SegmentPair) error {
	segments := make([]model.Segment, 0, len(pairs))
	for i, pair := range pairs {
		data, err := json.Marshal(pair)
		if err != nil {
			return err
		}
		segments = append(segments, model.Segment{
			ProjectID:   projectID,
			SegmentData: data,
			SegmentNum:  i + 1,
		})
	}

	return s.db.WithContext(ctx).CreateInBatches(segments, 500).Error
}

func (s *SegmentStore) ListByProjectID(ctx context.Context, projectID int64) ([]model.Segment, error) {
	var segments []model.Segment
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("segment_num ASC").
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// GetByID returns the segment, or nil when it does not exist.
func (s *SegmentStore) GetByID(ctx context.Context, id int64) (*model.Segment, error) {
	var segment model.Segment
	err := s.db.WithContext(ctx).First(&segment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &segment, nil
}

// GetByErrorID resolves the segment owning an error row, or nil when the
// error does not exist.
func (s *SegmentStore) GetByErrorID(ctx context.Context, errorID int64) (*model.Segment, error) {
	var segment model.Segment
	err := s.db.WithContext(ctx).
		Joins("JOIN errors ON errors.segment_id = segments.id").
		Where("errors.id = ?", errorID).
		First(&segment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &segment, nil
}
