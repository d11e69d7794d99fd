package models

// NotificationCategory 表示通知类别
type NotificationCategory string

const (
	NotificationVisitorCheckedIn  NotificationCategory = "Visitor Checked In"
	NotificationVisitorCheckedOut NotificationCategory = "Visitor Checked Out"
	NotificationVisitorDenied     NotificationCategory = "Visitor Denied"
)

// Notification 表示推送给物业端的通知记录
type Notification struct {
	BaseModel
	Category  NotificationCategory `gorm:"type:varchar(50);not null" json:"category"`
	SocietyID string               `gorm:"type:varchar(50);not null;index" json:"society_id"`
	Message   string               `gorm:"type:varchar(200);not null" json:"message"`
}
