package entity

import (
	"time"
)

// UserSession 用户当前关注的文章，自由文本路由依赖它
// 每个用户同一时间只指向一篇文章，新写入覆盖旧值
type UserSession struct {
	UserID    string    `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	EssayID   string    `json:"essay_id" gorm:"type:uuid;index;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}
