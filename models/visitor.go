package models

import (
	"time"
)

// VisitorStatus 表示访客的生命周期状态
type VisitorStatus string

const (
	VisitorStatusWaiting    VisitorStatus = "Waiting"
	VisitorStatusCheckedIn  VisitorStatus = "CheckedIn"
	VisitorStatusCheckedOut VisitorStatus = "CheckedOut"
	VisitorStatusDenied     VisitorStatus = "Denied"
)

// VisitorRole 表示访客类型
type VisitorRole string

const (
	VisitorRoleGuest    VisitorRole = "Guest"
	VisitorRoleStaff    VisitorRole = "Staff"
	VisitorRoleDelivery VisitorRole = "Delivery"
	VisitorRoleOther    VisitorRole = "Other"
)

// Visitor 表示小区的一条访客记录
type Visitor struct {
	BaseModel
	SocietyID string      `gorm:"type:varchar(50);not null;index:idx_society_visitor" json:"society_id"`
	VisitorID string      `gorm:"type:varchar(12);not null;index:idx_society_visitor" json:"visitor_id"` // 访客编码，同一小区内活跃访客间唯一
	Name      string      `gorm:"type:varchar(100);not null" json:"name"`
	Phone     string      `gorm:"type:varchar(20);not null" json:"phone_number"`
	Role      VisitorRole `gorm:"type:varchar(20);not null" json:"role"`
	Company   string      `gorm:"type:varchar(100)" json:"company,omitempty"`
	Reason    string      `gorm:"type:varchar(200)" json:"reason,omitempty"`
	Details   string      `gorm:"type:varchar(500)" json:"details,omitempty"`

	// 位置信息，标识被访住户
	Block  string `gorm:"type:varchar(20);not null;index:idx_society_flat" json:"block"`
	FlatNo string `gorm:"type:varchar(20);not null;index:idx_society_flat" json:"flat_no"`

	Status     VisitorStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IsFrequent bool          `json:"is_frequent"` // 常客标记，针对固定楼栋/户号的周期性访客

	CheckInAt  *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`

	// 出入口信息，各字段在对应状态迁移前为空
	InGateNumber     *string `gorm:"type:varchar(20)" json:"in_gate_number,omitempty"`
	InVehicleNumber  *string `gorm:"type:varchar(20)" json:"in_vehicle_number,omitempty"`
	OutGateNumber    *string `gorm:"type:varchar(20)" json:"out_gate_number,omitempty"`
	OutVehicleNumber *string `gorm:"type:varchar(20)" json:"out_vehicle_number,omitempty"`

	// QRImage 指向凭证制品，仅在 Waiting/CheckedIn 状态下非空
	QRImage *string `gorm:"type:varchar(100)" json:"qr_image,omitempty"`
	// Pictures 访客照片，由外部上传模块写入
	Pictures string `gorm:"type:varchar(200)" json:"pictures,omitempty"`
}

// IsActive 报告访客是否处于活跃状态（尚未离场且未被拒绝）
func (v *Visitor) IsActive() bool {
	return v.Status == VisitorStatusWaiting || v.Status == VisitorStatusCheckedIn
}

// ActiveStatuses 返回占用访客编码的状态集合
func ActiveStatuses() []VisitorStatus {
	return []VisitorStatus{VisitorStatusWaiting, VisitorStatusCheckedIn}
}
