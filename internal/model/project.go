package model

import "time"

type Project struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string    `gorm:"not null" json:"name"`
	SpecificationsFile string    `json:"specificationsFile"`
	Specifications     string    `gorm:"type:text" json:"specifications"`
	MetricFile         string    `gorm:"not null" json:"metricFile"`
	BitextFile         string    `gorm:"not null" json:"bitextFile"`
	LastSegment        int       `gorm:"not null;default:1" json:"lastSegment"`
	Finished           bool      `gorm:"not null;default:false" json:"finished"`
	SourceWordCount    int       `gorm:"not null;default:0" json:"sourceWordCount"`
	TargetWordCount    int       `gorm:"not null;default:0" json:"targetWordCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// UserProject maps a user onto a project. The composite primary key keeps
// the pair unique; both sides cascade on delete (see database.Migrate).
type UserProject struct {
	ProjectID int64 `gorm:"primaryKey;autoIncrement:false" json:"projectId"`
	UserID    int64 `gorm:"primaryKey;autoIncrement:false" json:"userId"`
}

func (UserProject) TableName() string {
	return "user_projects"
}
