package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/wbs-tracker/internal/assignment"
	assignmentDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/assignment"
	projectDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func exists(db *gorm.DB, model interface{}, id string) (bool, error) {
	var n int64
	err := db.Model(model).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *AssignmentRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	return exists(r.db.WithContext(ctx), &userDatamodel.User{}, userID)
}

func (r *AssignmentRepository) ItemExists(ctx context.Context, list, itemID string) (bool, error) {
	switch list {
	case assignment.ListTasks:
		return exists(r.db.WithContext(ctx), &taskDatamodel.Task{}, itemID)
	case assignment.ListProjects:
		return exists(r.db.WithContext(ctx), &projectDatamodel.Project{}, itemID)
	}
	return false, fmt.Errorf("unknown assignment list %q", list)
}

// Add inserts the membership row and reports whether a row was written; an
// existing row is left untouched.
func (r *AssignmentRepository) Add(ctx context.Context, userID, list, itemID string) (bool, error) {
	var row interface{}
	switch list {
	case assignment.ListTasks:
		row = &assignmentDatamodel.UserTask{UserID: userID, TaskID: itemID}
	case assignment.ListProjects:
		row = &assignmentDatamodel.UserProject{UserID: userID, ProjectID: itemID}
	default:
		return false, fmt.Errorf("unknown assignment list %q", list)
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	return result.RowsAffected > 0, result.Error
}

func (r *AssignmentRepository) Remove(ctx context.Context, userID, list, itemID string) (bool, error) {
	db := r.db.WithContext(ctx)
	var result *gorm.DB
	switch list {
	case assignment.ListTasks:
		result = db.Where("user_id = ? AND task_id = ?", userID, itemID).Delete(&assignmentDatamodel.UserTask{})
	case assignment.ListProjects:
		result = db.Where("user_id = ? AND project_id = ?", userID, itemID).Delete(&assignmentDatamodel.UserProject{})
	default:
		return false, fmt.Errorf("unknown assignment list %q", list)
	}
	return result.RowsAffected > 0, result.Error
}

func (r *AssignmentRepository) Items(ctx context.Context, userID, list string) ([]string, error) {
	items := []string{}
	db := r.db.WithContext(ctx)
	var err error
	switch list {
	case assignment.ListTasks:
		err = db.Model(&assignmentDatamodel.UserTask{}).Where("user_id = ?", userID).
			Order("created_at ASC, task_id ASC").Pluck("task_id", &items).Error
	case assignment.ListProjects:
		err = db.Model(&assignmentDatamodel.UserProject{}).Where("user_id = ?", userID).
			Order("created_at ASC, project_id ASC").Pluck("project_id", &items).Error
	default:
		err = fmt.Errorf("unknown assignment list %q", list)
	}
	return items, err
}
