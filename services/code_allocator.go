package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/models"
	"github.com/Truinfo/LivInSync/utils"
)

// ErrCodeSpaceExhausted 表示有限次重试后仍未抽到未占用的访客编码
var ErrCodeSpaceExhausted = errors.New("访客编码空间耗尽")

// InterfaceCodeAllocator 定义访客编码分配服务接口
type InterfaceCodeAllocator interface {
	Allocate(societyID string) (string, error)
	Release(tx *gorm.DB, societyID, code string) error
}

// CodeAllocator 基于visitor_codes占用表分配小区内唯一的访客编码。
// 唯一索引是活跃编码集合的权威来源，进程内不做任何缓存，
// 多实例部署和重启后的分配都以数据库为准。
type CodeAllocator struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewCodeAllocator 创建一个新的编码分配服务
func NewCodeAllocator(db *gorm.DB, cfg *config.Config) InterfaceCodeAllocator {
	return &CodeAllocator{
		DB:     db,
		Config: cfg,
	}
}

// Allocate 为指定小区分配一个未被活跃访客占用的编码。
// 先落占用行再建访客记录：两个并发请求抽到同一编码时，
// 后写入的一方触发唯一索引冲突并换新编码重试。
func (a *CodeAllocator) Allocate(societyID string) (string, error) {
	length := a.Config.VisitorCodeLength
	if length <= 0 {
		length = 6
	}
	attempts := a.Config.VisitorCodeMaxAttempts
	if attempts <= 0 {
		attempts = 5
	}

	for i := 0; i < attempts; i++ {
		code := utils.RandomDigits(length)
		err := a.DB.Create(&models.VisitorCode{SocietyID: societyID, Code: code}).Error
		if err == nil {
			return code, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 编码冲突，换一个随机编码重试
			continue
		}
		return "", err
	}
	return "", ErrCodeSpaceExhausted
}

// Release 释放访客编码的占用，编码随后可再次分配。
// 在调用方的事务中执行，保证释放与状态迁移原子提交；重复释放不报错。
func (a *CodeAllocator) Release(tx *gorm.DB, societyID, code string) error {
	return tx.Where("society_id = ? AND code = ?", societyID, code).
		Delete(&models.VisitorCode{}).Error
}
