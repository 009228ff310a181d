package model

import (
	"gorm.io/datatypes"
)

// Segment is one source/target sentence pair. SegmentNum is the 1-based
// position within the project and is reassigned whenever the bitext file
// is replaced.
type Segment struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   int64          `gorm:"not null;uniqueIndex:idx_segments_project_num,priority:1" json:"projectId"`
	SegmentData datatypes.JSON `gorm:"type:jsonb;not null" json:"segmentData"`
	SegmentNum  int            `gorm:"not null;uniqueIndex:idx_segments_project_num,priority:2" json:"segmentNum"`
}

func (Segment) TableName() string {
	return "segments"
}

// SegmentPair is the decoded form of SegmentData. The JSON key casing is
// load-bearing: report consumers read segment_data.Source/.Target.
type SegmentPair struct {
	Source string `json:"Source"`
	Target string `json:"Target"`
}
