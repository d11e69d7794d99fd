package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/models"
	"github.com/Truinfo/LivInSync/utils"
)

var (
	ErrAdminNotFound          = errors.New("管理员不存在")
	ErrAdminPasswordIncorrect = errors.New("管理员密码错误")
)

// InterfaceAdminService 定义管理员服务接口
type InterfaceAdminService interface {
	GetAdminByUsername(username string) (*models.Admin, error)
	Authenticate(username, password string) (*models.Admin, error)
	UpdatePassword(id uint, newPassword string) error
}

// AdminService 提供管理员相关的服务
type AdminService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminService 创建一个新的管理员服务
func NewAdminService(db *gorm.DB, cfg *config.Config) InterfaceAdminService {
	return &AdminService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAdminByUsername 根据用户名获取管理员
func (s *AdminService) GetAdminByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// 2 Authenticate 校验管理员用户名和密码
func (s *AdminService) Authenticate(username, password string) (*models.Admin, error) {
	admin, err := s.GetAdminByUsername(username)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, admin.Password) {
		return nil, ErrAdminPasswordIncorrect
	}
	return admin, nil
}

// 3 UpdatePassword 更新管理员密码
func (s *AdminService) UpdatePassword(id uint, newPassword string) error {
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	res := s.DB.Model(&models.Admin{}).Where("id = ?", id).Update("password", hashed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}
