package model

// Error is a reviewer annotation on a segment: one typology issue at one
// severity, pointing at a span of the source or target text.
type Error struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SegmentID           int64  `gorm:"not null;index" json:"segmentId"`
	Issue               string `gorm:"column:issue;not null" json:"issue"`
	Level               string `gorm:"not null;size:20" json:"level"`
	Type                string `gorm:"not null;size:20" json:"type"`
	Highlighting        string `gorm:"not null" json:"highlighting"`
	Note                string `gorm:"not null" json:"note"`
	HighlightStartIndex int    `gorm:"not null" json:"highlightStartIndex"`
	HighlightEndIndex   int    `gorm:"not null" json:"highlightEndIndex"`
}

func (Error) TableName() string {
	return "errors"
}

// Level constants
const (
	LevelNeutral  = "neutral"
	LevelMinor    = "minor"
	LevelMajor    = "major"
	LevelCritical = "critical"
)

// Type constants
const (
	TypeSource = "source"
	TypeTarget = "target"
)
