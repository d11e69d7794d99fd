package container

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/services"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService   services.InterfaceJWTService
	adminService services.InterfaceAdminService

	// 存储与凭证服务
	storageService services.InterfaceStorageService
	qrcodeService  services.InterfaceQRCodeService

	// 通知服务
	notificationService services.InterfaceNotificationService

	// 访客业务服务
	codeAllocator  services.InterfaceCodeAllocator
	visitorService services.InterfaceVisitorService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}
	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			config.Warning("Redis连接测试失败: %v", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config)
	c.adminService = services.NewAdminService(c.db, c.config)

	// 初始化制品存储和凭证服务
	if c.redis != nil {
		c.storageService = services.NewStorageServiceWithClient(c.redis, c.config.GetCredentialTTL())
	} else {
		c.storageService = services.NewStorageService(c.config)
	}
	c.qrcodeService = services.NewQRCodeService(c.storageService, c.config)

	// 初始化通知服务并连接MQTT服务器
	c.notificationService = services.NewNotificationService(c.db, c.config)
	if c.config.MQTTBrokerHost != "" {
		if err := c.notificationService.Connect(); err != nil {
			config.Warning("MQTT服务连接失败: %v", err)
		}
	}

	// 初始化访客业务服务
	c.codeAllocator = services.NewCodeAllocator(c.db, c.config)
	c.visitorService = services.NewVisitorService(
		c.db, c.config, c.codeAllocator, c.qrcodeService, c.notificationService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "admin":
		return c.adminService
	case "storage":
		return c.storageService
	case "qrcode":
		return c.qrcodeService
	case "notification":
		return c.notificationService
	case "code_allocator":
		return c.codeAllocator
	case "visitor":
		return c.visitorService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
