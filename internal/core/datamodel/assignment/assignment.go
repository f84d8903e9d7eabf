package assignment

import "time"

// UserTask backs a user's tasks_assign list.
type UserTask struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	TaskID    string    `gorm:"column:task_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserTask) TableName() string {
	return "wbs_user_tasks"
}

// UserProject backs a user's project_assign list.
type UserProject struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	ProjectID string    `gorm:"column:project_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserProject) TableName() string {
	return "wbs_user_projects"
}
