package model

import "time"

// WorkerModel 员工主数据（只读）
type WorkerModel struct {
	WorkerID   string     `gorm:"column:s_worker;primaryKey;type:varchar(16)"`
	UserName   string     `gorm:"column:user_name;type:varchar(128)"`
	CorpName   string     `gorm:"column:s_corp_name;type:varchar(255)"`
	Department string     `gorm:"column:s_department;type:varchar(128)"`
	Email      string     `gorm:"column:s_email;type:varchar(255)"`
	EndedAt    *time.Time `gorm:"column:dt_end"` // 离职日期,为空表示在职
}

// TableName 指定表名
func (WorkerModel) TableName() string {
	return "t_worker"
}

// Active 在指定时间是否在职
func (wm *WorkerModel) Active(at time.Time) bool {
	return wm.EndedAt == nil || !wm.EndedAt.Before(at)
}
