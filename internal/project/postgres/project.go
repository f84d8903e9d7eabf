package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/wbs-tracker/internal"
	projectDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/project"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) List(ctx context.Context) ([]*projectDatamodel.Project, error) {
	var projects []*projectDatamodel.Project
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListAssignedTo(ctx context.Context, userID string) ([]*projectDatamodel.Project, error) {
	var projects []*projectDatamodel.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN wbs_user_projects up ON up.project_id = wbs_projects.id").
		Where("up.user_id = ?", userID).
		Order("wbs_projects.created_at ASC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*projectDatamodel.Project, error) {
	var p projectDatamodel.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *projectDatamodel.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update writes the editable columns. total_mandays is owned by the progress
// updater and is never written here.
func (r *ProjectRepository) Update(ctx context.Context, p *projectDatamodel.Project) error {
	res := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"start_date":  p.StartDate,
		"end_date":    p.EndDate,
		"status":      p.Status,
		"completion":  p.Completion,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrProjectNotFound
	}
	return nil
}
