package project

import "time"

type Project struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	Description  string     `gorm:"column:description"`
	StartDate    *time.Time `gorm:"column:start_date"`
	EndDate      *time.Time `gorm:"column:end_date"`
	Status       string     `gorm:"column:status;not null"`
	Completion   float64    `gorm:"column:completion;not null"`
	TotalMandays float64    `gorm:"column:total_mandays;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Project) TableName() string {
	return "wbs_projects"
}
