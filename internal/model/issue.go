package model

// Issue is one entry of the global error typology. Entries with a nil
// Parent are top-level categories. The catalogue is admin-managed and only
// changes on re-import (cmd/seed or POST /api/typology).
type Issue struct {
	ID          string  `gorm:"primaryKey" json:"issue"`
	Parent      *string `json:"parent"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
	Examples    string  `json:"examples"`
}

func (Issue) TableName() string {
	return "issues"
}

// ProjectIssue binds a typology issue to a project's metric. Display
// controls whether the issue surfaces in the annotation UI.
type ProjectIssue struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64  `gorm:"not null;index" json:"projectId"`
	Issue     string `gorm:"column:issue;not null" json:"issue"`
	Display   bool   `gorm:"not null" json:"display"`
}

func (ProjectIssue) TableName() string {
	return "project_issues"
}
