package repository

import (
	"context"
	"errors"

	"github.com/scorecard/api/internal/model"
	"gorm.io/gorm"
)

type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) WithTx(tx *gorm.DB) *ProjectStore {
	return &ProjectStore{db: tx}
}

func (s *ProjectStore) Create(ctx context.Context, project *model.Project) error {
	return s.db.WithContext(ctx).Create(project).Error
}

// GetByID returns the project, or nil when it does not exist.
func (s *ProjectStore) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectStore) ListAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectStore) ListByUserID(ctx context.Context, userID int64) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).
		Joins("JOIN user_projects ON user_projects.project_id = projects.id").
		Where("user_projects.user_id = ?", userID).
		Order("projects.id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id).Error
}

// UpdateAttributes applies the staged attribute set to one project row.
func (s *ProjectStore) UpdateAttributes(ctx context.Context, id int64, attrs map[string]interface{}) error {
	if len(attrs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(attrs).Error
}

func (s *ProjectStore) AddMembership(ctx context.Context, projectID, userID int64) error {
	return s.db.WithContext(ctx).Create(&model.UserProject{
		ProjectID: projectID,
		UserID:    userID,
	}).Error
}

func (s *ProjectStore) RemoveMembership(ctx context.Context, projectID, userID int64) error {
	return s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.UserProject{}).Error
}

func (s *ProjectStore) RemoveAllMemberships(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.UserProject{}).Error
}

func (s *ProjectStore) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserProject{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ProjectMember is the member view handed to clients: no password hash.
type ProjectMember struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (s *ProjectStore) ListMembers(ctx context.Context, projectID int64) ([]ProjectMember, error) {
	var members []ProjectMember
	err := s.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.name, users.role").
		Joins("JOIN user_projects ON user_projects.user_id = users.id").
		Where("user_projects.project_id = ?", projectID).
		Order("users.id ASC").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
