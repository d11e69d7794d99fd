package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheckController 提供服务存活探测
type HealthCheckController struct{}

// NewHealthCheckController 创建一个新的健康检查控制器
func NewHealthCheckController() *HealthCheckController {
	return &HealthCheckController{}
}

// Ping 存活探测端点，供负载均衡和部署脚本轮询
func (h *HealthCheckController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"service": "livinsync-visitor-service",
		"status":  "healthy",
	})
}
