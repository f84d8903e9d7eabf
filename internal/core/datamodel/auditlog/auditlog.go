package auditlog

import "time"

type LogEntry struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    *string   `gorm:"column:user_id"`
	Action    string    `gorm:"column:action;not null"`
	ItemID    string    `gorm:"column:item_id"`
	ItemType  string    `gorm:"column:item_type"`
	Status    string    `gorm:"column:status;not null"`
	Details   string    `gorm:"column:details"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (LogEntry) TableName() string {
	return "wbs_logs"
}
