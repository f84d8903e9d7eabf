package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/wbs-tracker/internal"
	projectDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/task"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, projectID string) ([]*taskDatamodel.Task, error) {
	var tasks []*taskDatamodel.Task
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*taskDatamodel.Task, error) {
	return getTask(r.db.WithContext(ctx), id)
}

func getTask(db *gorm.DB, id string) (*taskDatamodel.Task, error) {
	var t taskDatamodel.Task
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", projectID).Count(&n).Error
	return n > 0, err
}

func (r *TaskRepository) Create(ctx context.Context, t *taskDatamodel.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Update writes the descriptive columns. duration and mandays only change
// through ApplyProgress.
func (r *TaskRepository) Update(ctx context.Context, t *taskDatamodel.Task) error {
	res := r.db.WithContext(ctx).Model(&taskDatamodel.Task{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"name":        t.Name,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrTaskNotFound
	}
	return nil
}

// ApplyProgress adds delta hours to a task and propagates the new mandays to
// its project in one transaction. The increment is done in SQL so concurrent
// callers never overwrite each other's delta. In sum mode the project row is
// locked first so the total reflects every committed task.
func (r *TaskRepository) ApplyProgress(ctx context.Context, taskID string, delta, hoursPerManday float64, mode string) (*taskDatamodel.Task, float64, error) {
	var (
		updated *taskDatamodel.Task
		total   float64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getTask(tx, taskID)
		if err != nil {
			return err
		}

		var project projectDatamodel.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", current.ProjectID).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrProjectNotFound
			}
			return err
		}

		res := tx.Model(&taskDatamodel.Task{}).
			Where("id = ? AND duration + ? >= 0", taskID, delta).
			Updates(map[string]interface{}{
				"duration": gorm.Expr("duration + ?", delta),
				"mandays":  gorm.Expr("(duration + ?) / ?", delta, hoursPerManday),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrNegativeDuration
		}

		if updated, err = getTask(tx, taskID); err != nil {
			return err
		}

		total = updated.Mandays
		if mode == internal.PropagationSum {
			if err := tx.Model(&taskDatamodel.Task{}).
				Where("project_id = ?", updated.ProjectID).
				Select("COALESCE(SUM(mandays), 0)").
				Scan(&total).Error; err != nil {
				return err
			}
		}

		res = tx.Model(&projectDatamodel.Project{}).Where("id = ?", updated.ProjectID).Update("total_mandays", total)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrProjectNotFound
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return updated, total, nil
}
