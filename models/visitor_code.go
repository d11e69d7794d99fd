package models

import "time"

// VisitorCode 表示一条活跃访客编码的占用记录。
// 创建访客前先写入占用行，唯一索引保证同一小区内活跃编码不重复；
// 访客离场、被拒或被删除时在同一事务中释放。
type VisitorCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SocietyID string    `gorm:"type:varchar(50);not null;uniqueIndex:uniq_society_code" json:"society_id"`
	Code      string    `gorm:"type:varchar(12);not null;uniqueIndex:uniq_society_code" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}
