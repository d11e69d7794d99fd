package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/controllers"
	_ "github.com/Truinfo/LivInSync/docs"
	"github.com/Truinfo/LivInSync/middleware"
	"github.com/Truinfo/LivInSync/services/container"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, nil)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 健康检查
	healthController := controllers.NewHealthCheckController()
	api.GET("/ping", healthController.Ping)

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// 凭证二维码图片，门岗扫码枪与业主端直接访问
	api.GET("/visitors/qrcode/:ref", controllers.HandleVisitorFunc(container, "getCredentialImage"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.Authenticate())

	// 访客生命周期路由
	visitors := auth.Group("/visitors")
	visitors.POST("/createVisitors", controllers.HandleVisitorFunc(container, "createVisitor"))
	visitors.PUT("/checkInVisitor", controllers.HandleVisitorFunc(container, "checkIn"))
	visitors.PUT("/checkoutVisitor", controllers.HandleVisitorFunc(container, "checkOut"))
	visitors.PUT("/denyVisitor", controllers.HandleVisitorFunc(container, "deny"))
	visitors.PUT("/reissueCredential", controllers.HandleVisitorFunc(container, "reissueCredential"))

	// 访客查询视图路由
	visitors.GET("/getAllVisitorsBySocietyId/:societyId", controllers.HandleVisitorFunc(container, "getAllVisitors"))
	visitors.GET("/getVisitorByIdAndSocietyId/:societyId/:visitorId", controllers.HandleVisitorFunc(container, "getVisitor"))
	visitors.GET("/getVisitorsBySocietyIdLast24Hours/:societyId", controllers.HandleVisitorFunc(container, "getRecent"))
	visitors.GET("/getFrequentVisitors/:societyId/:block/:flatNo", controllers.HandleVisitorFunc(container, "getFrequent"))
	visitors.GET("/getPreApprovedVisitors/:societyId/:block/:flatNo", controllers.HandleVisitorFunc(container, "getPreApproved"))
	visitors.GET("/getAllVisitorsbyFlatNo/:societyId/:block/:flatNo", controllers.HandleVisitorFunc(container, "getHistory"))

	// 管理删除路由，仅系统管理员可用
	admin := api.Group("/visitors")
	admin.Use(middleware.AuthenticateSystemAdmin())
	admin.DELETE("/deleteFrequentVisitor/:societyId/:block/:flatNo/:visitorId", controllers.HandleVisitorFunc(container, "deleteFrequent"))
	admin.DELETE("/deleteEntryVisitor/:societyId/:block/:flatNo/:visitorId", controllers.HandleVisitorFunc(container, "deleteEntry"))
}
