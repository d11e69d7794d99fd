package services

import (
	"errors"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/Truinfo/LivInSync/config"
)

// ErrCredentialIssuance 表示凭证生成或写入制品存储失败
var ErrCredentialIssuance = errors.New("凭证生成失败")

// InterfaceQRCodeService 定义访客凭证服务接口
type InterfaceQRCodeService interface {
	Issue(visitorCode string) (string, error)
	Invalidate(ref string) error
	Fetch(ref string) ([]byte, error)
}

// QRCodeService 负责签发和作废访客的扫码凭证。
// 凭证是一张只编码访客编码的二维码图片，不含任何个人信息，
// 以随机制品引用存入制品存储，门岗扫码后用编码查访客记录。
type QRCodeService struct {
	Storage InterfaceStorageService
	Config  *config.Config
}

// NewQRCodeService 创建一个新的凭证服务
func NewQRCodeService(storage InterfaceStorageService, cfg *config.Config) InterfaceQRCodeService {
	return &QRCodeService{
		Storage: storage,
		Config:  cfg,
	}
}

// Issue 为访客编码生成二维码凭证并写入制品存储，返回制品引用
func (s *QRCodeService) Issue(visitorCode string) (string, error) {
	png, err := qrcode.Encode(visitorCode, qrcode.Medium, 256)
	if err != nil {
		config.Error("生成二维码失败: %v", err)
		return "", ErrCredentialIssuance
	}

	ref := uuid.NewString() + ".png"
	if err := s.Storage.Put(ref, png); err != nil {
		config.Error("写入凭证制品失败: %v", err)
		return "", ErrCredentialIssuance
	}
	return ref, nil
}

// Invalidate 作废凭证，幂等。制品删除失败只记日志：
// 凭证的逻辑失效以访客记录上引用被清除为准，与制品清理无关。
func (s *QRCodeService) Invalidate(ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.Storage.Delete(ref); err != nil {
		config.Warning("删除凭证制品失败 ref=%s: %v", ref, err)
	}
	return nil
}

// Fetch 读取凭证图片内容
func (s *QRCodeService) Fetch(ref string) ([]byte, error) {
	return s.Storage.Get(ref)
}
