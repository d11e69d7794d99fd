package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/models"
)

var (
	ErrVisitorNotFound          = errors.New("访客不存在")
	ErrVisitorAlreadyCheckedIn  = errors.New("访客已签到")
	ErrVisitorAlreadyCheckedOut = errors.New("访客已签离")
	ErrVisitorNotCheckedIn      = errors.New("访客尚未签到")
	ErrInvalidTransition        = errors.New("访客当前状态不允许该操作")
)

// DefaultRecentWindow 近期访客视图的默认时间窗口
const DefaultRecentWindow = 24 * time.Hour

// DefaultPageSize 全量列表的默认分页大小
const DefaultPageSize = 20

// CreateVisitorInput 创建访客所需的全部输入
type CreateVisitorInput struct {
	SocietyID  string
	Name       string
	Phone      string
	Role       models.VisitorRole
	Company    string
	Reason     string
	Details    string
	Block      string
	FlatNo     string
	IsFrequent bool
	Pictures   string

	// ImmediateEntry 为真时访客直接以已签到状态入场
	ImmediateEntry  bool
	InGateNumber    *string
	InVehicleNumber *string
}

// InterfaceVisitorService 定义访客生命周期服务接口
type InterfaceVisitorService interface {
	CreateVisitor(input *CreateVisitorInput) (*models.Visitor, error)
	ReissueCredential(societyID, visitorID string) (*models.Visitor, error)
	CheckInVisitor(societyID, visitorID string, gate, vehicle *string) (*models.Visitor, error)
	CheckOutVisitor(societyID, visitorID string, gate, vehicle *string) (*models.Visitor, error)
	DenyVisitor(societyID, visitorID string) (*models.Visitor, error)
	GetVisitorByID(societyID, visitorID string) (*models.Visitor, error)
	GetAllVisitors(societyID string, query *models.PaginationQuery) ([]models.Visitor, *models.PaginationResult, error)
	GetRecentVisitors(societyID string, window time.Duration) ([]models.Visitor, error)
	GetFrequentVisitors(societyID, block, flatNo string) ([]models.Visitor, error)
	GetPreApprovedVisitors(societyID, block, flatNo string) ([]models.Visitor, error)
	GetVisitorHistory(societyID, block, flatNo string) ([]models.Visitor, error)
	DeleteFrequentVisitor(societyID, block, flatNo, visitorID string) error
	DeleteEntryVisit(societyID, block, flatNo, visitorID string) error
}

// VisitorService 提供访客生命周期相关的服务。
// 所有状态迁移都以带前置状态条件的单条UPDATE执行，
// 两个门岗并发操作同一访客时，只有观察到预期前置状态的一方成功。
type VisitorService struct {
	DB            *gorm.DB
	Config        *config.Config
	Allocator     InterfaceCodeAllocator
	Credentials   InterfaceQRCodeService
	Notifications InterfaceNotificationService
}

// NewVisitorService 创建一个新的访客服务
func NewVisitorService(
	db *gorm.DB,
	cfg *config.Config,
	allocator InterfaceCodeAllocator,
	credentials InterfaceQRCodeService,
	notifications InterfaceNotificationService,
) InterfaceVisitorService {
	return &VisitorService{
		DB:            db,
		Config:        cfg,
		Allocator:     allocator,
		Credentials:   credentials,
		Notifications: notifications,
	}
}

// 1 CreateVisitor 创建访客记录并签发扫码凭证。
// 编码占用先于访客记录落库，创建失败时退回占用。
// 凭证签发失败视为部分成功：记录保留，返回ErrCredentialIssuance，
// 调用方可通过ReissueCredential对既有记录重试，不会产生重复访客。
func (s *VisitorService) CreateVisitor(input *CreateVisitorInput) (*models.Visitor, error) {
	code, err := s.Allocator.Allocate(input.SocietyID)
	if err != nil {
		return nil, err
	}

	visitor := &models.Visitor{
		SocietyID:  input.SocietyID,
		VisitorID:  code,
		Name:       input.Name,
		Phone:      input.Phone,
		Role:       input.Role,
		Company:    input.Company,
		Reason:     input.Reason,
		Details:    input.Details,
		Block:      input.Block,
		FlatNo:     input.FlatNo,
		IsFrequent: input.IsFrequent,
		Pictures:   input.Pictures,
		Status:     models.VisitorStatusWaiting,
	}

	if input.ImmediateEntry {
		now := time.Now()
		visitor.Status = models.VisitorStatusCheckedIn
		visitor.CheckInAt = &now
		visitor.InGateNumber = input.InGateNumber
		visitor.InVehicleNumber = input.InVehicleNumber
	}

	if err := s.DB.Create(visitor).Error; err != nil {
		if relErr := s.Allocator.Release(s.DB, input.SocietyID, code); relErr != nil {
			config.Warning("创建访客失败后释放编码失败 society=%s code=%s: %v", input.SocietyID, code, relErr)
		}
		return nil, err
	}

	ref, err := s.Credentials.Issue(code)
	if err != nil {
		config.Warning("访客凭证签发失败 society=%s visitor=%s: %v", input.SocietyID, code, err)
		return visitor, ErrCredentialIssuance
	}

	// 附加凭证引用时重新校验状态：记录可能在签发期间已被拒绝或签离，
	// 终态记录不得持有凭证引用
	res := s.DB.Model(&models.Visitor{}).
		Where("id = ? AND status IN ? AND qr_image IS NULL", visitor.ID, models.ActiveStatuses()).
		Update("qr_image", ref)
	if res.Error != nil {
		s.Credentials.Invalidate(ref)
		return visitor, ErrCredentialIssuance
	}
	if res.RowsAffected == 0 {
		s.Credentials.Invalidate(ref)
		return s.findVisitor(s.DB, input.SocietyID, code)
	}
	visitor.QRImage = &ref
	return visitor, nil
}

// 2 ReissueCredential 对已存在的访客记录重试凭证签发，幂等
func (s *VisitorService) ReissueCredential(societyID, visitorID string) (*models.Visitor, error) {
	visitor, err := s.GetVisitorByID(societyID, visitorID)
	if err != nil {
		return nil, err
	}
	if !visitor.IsActive() {
		return nil, ErrInvalidTransition
	}
	if visitor.QRImage != nil {
		// 已持有凭证，直接返回
		return visitor, nil
	}

	ref, err := s.Credentials.Issue(visitor.VisitorID)
	if err != nil {
		return visitor, ErrCredentialIssuance
	}

	// 条件更新：记录仍活跃且期间没有并发签发过凭证
	res := s.DB.Model(&models.Visitor{}).
		Where("id = ? AND status IN ? AND qr_image IS NULL", visitor.ID, models.ActiveStatuses()).
		Update("qr_image", ref)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		s.Credentials.Invalidate(ref)
		return s.GetVisitorByID(societyID, visitorID)
	}
	visitor.QRImage = &ref
	return visitor, nil
}

// 3 CheckInVisitor 访客签到：Waiting -> CheckedIn
func (s *VisitorService) CheckInVisitor(societyID, visitorID string, gate, vehicle *string) (*models.Visitor, error) {
	now := time.Now()
	var visitor *models.Visitor

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Visitor{}).
			Where("society_id = ? AND visitor_id = ? AND status = ?",
				societyID, visitorID, models.VisitorStatusWaiting).
			Updates(map[string]interface{}{
				"status":            models.VisitorStatusCheckedIn,
				"check_in_at":       now,
				"in_gate_number":    gate,
				"in_vehicle_number": vehicle,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			current, err := s.findVisitor(tx, societyID, visitorID)
			if err != nil {
				return err
			}
			if current.Status == models.VisitorStatusCheckedIn {
				return ErrVisitorAlreadyCheckedIn
			}
			return ErrInvalidTransition
		}

		v, err := s.findVisitor(tx, societyID, visitorID)
		if err != nil {
			return err
		}
		visitor = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifications.PublishVisitorEvent(VisitorEvent{
		Category:  models.NotificationVisitorCheckedIn,
		SocietyID: societyID,
		VisitorID: visitorID,
		Message:   "Visitor Checked In",
		Timestamp: now.UnixMilli(),
	})
	return visitor, nil
}

// 4 CheckOutVisitor 访客签离：CheckedIn -> CheckedOut，随后作废凭证
func (s *VisitorService) CheckOutVisitor(societyID, visitorID string, gate, vehicle *string) (*models.Visitor, error) {
	now := time.Now()
	var (
		visitor       *models.Visitor
		credentialRef string
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		before, err := s.findVisitor(tx, societyID, visitorID)
		if err != nil {
			return err
		}
		if before.QRImage != nil {
			credentialRef = *before.QRImage
		}

		res := tx.Model(&models.Visitor{}).
			Where("society_id = ? AND visitor_id = ? AND status = ?",
				societyID, visitorID, models.VisitorStatusCheckedIn).
			Updates(map[string]interface{}{
				"status":             models.VisitorStatusCheckedOut,
				"check_out_at":       now,
				"out_gate_number":    gate,
				"out_vehicle_number": vehicle,
				"qr_image":           nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			credentialRef = ""
			if before.Status == models.VisitorStatusCheckedOut {
				return ErrVisitorAlreadyCheckedOut
			}
			return ErrVisitorNotCheckedIn
		}

		// 编码随访客离场回到可分配池
		if err := s.Allocator.Release(tx, societyID, visitorID); err != nil {
			return err
		}

		v, err := s.findVisitor(tx, societyID, visitorID)
		if err != nil {
			return err
		}
		visitor = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 制品清理是尽力而为的，逻辑失效已随事务提交生效
	s.Credentials.Invalidate(credentialRef)

	s.Notifications.PublishVisitorEvent(VisitorEvent{
		Category:  models.NotificationVisitorCheckedOut,
		SocietyID: societyID,
		VisitorID: visitorID,
		Message:   "Visitor Checked Out",
		Timestamp: now.UnixMilli(),
	})
	return visitor, nil
}

// 5 DenyVisitor 拒绝访客入场：Waiting -> Denied。已签到的访客不能再拒绝。
func (s *VisitorService) DenyVisitor(societyID, visitorID string) (*models.Visitor, error) {
	now := time.Now()
	var (
		visitor       *models.Visitor
		credentialRef string
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		before, err := s.findVisitor(tx, societyID, visitorID)
		if err != nil {
			return err
		}
		if before.QRImage != nil {
			credentialRef = *before.QRImage
		}

		res := tx.Model(&models.Visitor{}).
			Where("society_id = ? AND visitor_id = ? AND status = ?",
				societyID, visitorID, models.VisitorStatusWaiting).
			Updates(map[string]interface{}{
				"status":   models.VisitorStatusDenied,
				"qr_image": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			credentialRef = ""
			return ErrInvalidTransition
		}

		if err := s.Allocator.Release(tx, societyID, visitorID); err != nil {
			return err
		}

		v, err := s.findVisitor(tx, societyID, visitorID)
		if err != nil {
			return err
		}
		visitor = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Credentials.Invalidate(credentialRef)

	s.Notifications.PublishVisitorEvent(VisitorEvent{
		Category:  models.NotificationVisitorDenied,
		SocietyID: societyID,
		VisitorID: visitorID,
		Message:   "Visitor Denied",
		Timestamp: now.UnixMilli(),
	})
	return visitor, nil
}

// 6 GetVisitorByID 按小区和访客编码取单条记录
func (s *VisitorService) GetVisitorByID(societyID, visitorID string) (*models.Visitor, error) {
	return s.findVisitor(s.DB, societyID, visitorID)
}

// 7 GetAllVisitors 分页取小区的全部访客记录
func (s *VisitorService) GetAllVisitors(societyID string, query *models.PaginationQuery) ([]models.Visitor, *models.PaginationResult, error) {
	pageNum, pageSize := 1, DefaultPageSize
	if query != nil {
		if query.PageNum > 0 {
			pageNum = query.PageNum
		}
		if query.PageSize > 0 {
			pageSize = query.PageSize
		}
	}

	var total int64
	if err := s.DB.Model(&models.Visitor{}).
		Where("society_id = ?", societyID).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	order := "id ASC"
	if query == nil || query.Desc {
		order = "id DESC"
	}

	var visitors []models.Visitor
	err := s.DB.Where("society_id = ?", societyID).
		Order(order).
		Offset((pageNum - 1) * pageSize).
		Limit(pageSize).
		Find(&visitors).Error
	if err != nil {
		return nil, nil, err
	}

	result := models.NewPaginationResult(int(total), pageNum, pageSize)
	return visitors, &result, nil
}

// 8 GetRecentVisitors 取时间窗口内签到过的访客，默认窗口24小时
func (s *VisitorService) GetRecentVisitors(societyID string, window time.Duration) ([]models.Visitor, error) {
	if window <= 0 {
		window = DefaultRecentWindow
	}
	var visitors []models.Visitor
	err := s.DB.Where("society_id = ? AND check_in_at > ?", societyID, time.Now().Add(-window)).
		Order("check_in_at DESC").Find(&visitors).Error
	return visitors, err
}

// 9 GetFrequentVisitors 取指定楼栋/户号的常客（仅Guest角色）
func (s *VisitorService) GetFrequentVisitors(societyID, block, flatNo string) ([]models.Visitor, error) {
	var visitors []models.Visitor
	err := s.DB.Where(
		"society_id = ? AND block = ? AND flat_no = ? AND role = ? AND is_frequent = ?",
		societyID, block, flatNo, models.VisitorRoleGuest, true,
	).Find(&visitors).Error
	return visitors, err
}

// 10 GetPreApprovedVisitors 取指定楼栋/户号的预批准访客（等待入场）
func (s *VisitorService) GetPreApprovedVisitors(societyID, block, flatNo string) ([]models.Visitor, error) {
	var visitors []models.Visitor
	err := s.DB.Where(
		"society_id = ? AND block = ? AND flat_no = ? AND status = ?",
		societyID, block, flatNo, models.VisitorStatusWaiting,
	).Find(&visitors).Error
	return visitors, err
}

// 11 GetVisitorHistory 取指定楼栋/户号的历史访客（已签离）
func (s *VisitorService) GetVisitorHistory(societyID, block, flatNo string) ([]models.Visitor, error) {
	var visitors []models.Visitor
	err := s.DB.Where(
		"society_id = ? AND block = ? AND flat_no = ? AND status = ?",
		societyID, block, flatNo, models.VisitorStatusCheckedOut,
	).Order("check_out_at DESC").Find(&visitors).Error
	return visitors, err
}

// 12 DeleteFrequentVisitor 删除常客记录，任意状态下均可执行
func (s *VisitorService) DeleteFrequentVisitor(societyID, block, flatNo, visitorID string) error {
	return s.deleteVisitor(societyID, block, flatNo, visitorID, true)
}

// 13 DeleteEntryVisit 删除访客进出记录，任意状态下均可执行
func (s *VisitorService) DeleteEntryVisit(societyID, block, flatNo, visitorID string) error {
	return s.deleteVisitor(societyID, block, flatNo, visitorID, false)
}

// deleteVisitor 按(society, block, flat, visitorId)复合键删除记录，
// 活跃访客的编码占用与凭证一并清理
func (s *VisitorService) deleteVisitor(societyID, block, flatNo, visitorID string, frequentOnly bool) error {
	var credentialRef string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		query := tx.Where(
			"society_id = ? AND block = ? AND flat_no = ? AND visitor_id = ?",
			societyID, block, flatNo, visitorID,
		)
		if frequentOnly {
			query = query.Where("role = ? AND is_frequent = ?", models.VisitorRoleGuest, true)
		}

		var visitor models.Visitor
		if err := query.Order("id DESC").First(&visitor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVisitorNotFound
			}
			return err
		}

		if err := tx.Delete(&models.Visitor{}, visitor.ID).Error; err != nil {
			return err
		}
		if visitor.IsActive() {
			if err := s.Allocator.Release(tx, societyID, visitor.VisitorID); err != nil {
				return err
			}
		}
		if visitor.QRImage != nil {
			credentialRef = *visitor.QRImage
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Credentials.Invalidate(credentialRef)
	return nil
}

// findVisitor 取复合键下最新的访客记录。
// 历史记录可能与后来的活跃访客共用编码，以最新一条为准。
func (s *VisitorService) findVisitor(tx *gorm.DB, societyID, visitorID string) (*models.Visitor, error) {
	var visitor models.Visitor
	err := tx.Where("society_id = ? AND visitor_id = ?", societyID, visitorID).
		Order("id DESC").First(&visitor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, err
	}
	return &visitor, nil
}
