package task

import "time"

type Task struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	ProjectID   string    `gorm:"column:project_id;index;not null"`
	Status      string    `gorm:"column:status;not null"`
	Duration    float64   `gorm:"column:duration;not null"`
	Mandays     float64   `gorm:"column:mandays;not null"`
	Priority    string    `gorm:"column:priority;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Task) TableName() string {
	return "wbs_tasks"
}
