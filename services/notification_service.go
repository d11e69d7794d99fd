package services

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"gorm.io/gorm"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/models"
)

// 访客事件主题
const TopicVisitorEvents = "society/visitor/events"

// publishTimeout MQTT发布的等待上限，超时只记日志
const publishTimeout = 5 * time.Second

// VisitorEvent 访客事件消息
type VisitorEvent struct {
	Category  models.NotificationCategory `json:"category"`
	SocietyID string                      `json:"society_id"`
	VisitorID string                      `json:"visitor_id"`
	Message   string                      `json:"message"`
	Timestamp int64                       `json:"timestamp"`
}

// InterfaceNotificationService 定义访客事件通知服务接口
type InterfaceNotificationService interface {
	Connect() error
	Disconnect()
	PublishVisitorEvent(event VisitorEvent)
}

// NotificationService 将访客事件落库并通过MQTT广播给物业端。
// 通知是尽力而为的：发布在独立goroutine中执行，
// 失败只记日志，绝不影响触发它的状态迁移。
type NotificationService struct {
	DB     *gorm.DB
	Config *config.Config
	Client mqtt.Client
}

// NewNotificationService 创建一个新的通知服务
func NewNotificationService(db *gorm.DB, cfg *config.Config) InterfaceNotificationService {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.GetMQTTBrokerURL()).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}

	return &NotificationService{
		DB:     db,
		Config: cfg,
		Client: mqtt.NewClient(opts),
	}
}

// Connect 连接MQTT服务器
func (s *NotificationService) Connect() error {
	token := s.Client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		config.Warning("MQTT连接超时: %s", s.Config.GetMQTTBrokerURL())
		return nil
	}
	return token.Error()
}

// Disconnect 断开MQTT连接
func (s *NotificationService) Disconnect() {
	if s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

// PublishVisitorEvent 落库并广播访客事件，立即返回不等待结果
func (s *NotificationService) PublishVisitorEvent(event VisitorEvent) {
	go func() {
		notification := models.Notification{
			Category:  event.Category,
			SocietyID: event.SocietyID,
			Message:   event.Message,
		}
		if err := s.DB.Create(&notification).Error; err != nil {
			config.Warning("写入通知记录失败: %v", err)
		}

		if !s.Client.IsConnected() {
			config.Warning("MQTT未连接，跳过事件广播: %s", event.Category)
			return
		}

		payload, err := json.Marshal(event)
		if err != nil {
			config.Warning("序列化访客事件失败: %v", err)
			return
		}

		token := s.Client.Publish(TopicVisitorEvents, 0, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			config.Warning("发布访客事件超时: %s", event.Category)
			return
		}
		if err := token.Error(); err != nil {
			config.Warning("发布访客事件失败: %v", err)
		}
	}()
}
