package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Truinfo/LivInSync/internal/error/code"
	"github.com/Truinfo/LivInSync/internal/error/response"
	"github.com/Truinfo/LivInSync/models"
	"github.com/Truinfo/LivInSync/services"
	"github.com/Truinfo/LivInSync/services/container"
)

// InterfaceVisitorController 定义访客控制器接口
type InterfaceVisitorController interface {
	CreateVisitor()
	CheckInVisitor()
	CheckOutVisitor()
	DenyVisitor()
	ReissueCredential()
	GetAllVisitors()
	GetVisitor()
	GetRecentVisitors()
	GetFrequentVisitors()
	GetPreApprovedVisitors()
	GetVisitorHistory()
	DeleteFrequentVisitor()
	DeleteEntryVisit()
	GetCredentialImage()
}

// VisitorController 处理访客相关的请求
type VisitorController struct {
	BaseControllerImpl
}

// NewVisitorController 创建一个新的访客控制器
func (f *ControllerFactory) NewVisitorController(ctx *gin.Context) *VisitorController {
	return &VisitorController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleVisitorFunc 返回一个处理访客请求的Gin处理函数
func HandleVisitorFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)

	return func(ctx *gin.Context) {
		controller := factory.NewVisitorController(ctx)

		switch method {
		case "createVisitor":
			controller.CreateVisitor()
		case "checkIn":
			controller.CheckInVisitor()
		case "checkOut":
			controller.CheckOutVisitor()
		case "deny":
			controller.DenyVisitor()
		case "reissueCredential":
			controller.ReissueCredential()
		case "getAllVisitors":
			controller.GetAllVisitors()
		case "getVisitor":
			controller.GetVisitor()
		case "getRecent":
			controller.GetRecentVisitors()
		case "getFrequent":
			controller.GetFrequentVisitors()
		case "getPreApproved":
			controller.GetPreApprovedVisitors()
		case "getHistory":
			controller.GetVisitorHistory()
		case "deleteFrequent":
			controller.DeleteFrequentVisitor()
		case "deleteEntry":
			controller.DeleteEntryVisit()
		case "getCredentialImage":
			controller.GetCredentialImage()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// CreateVisitorRequest 表示创建访客请求
type CreateVisitorRequest struct {
	SocietyID       string `json:"society_id" binding:"required" example:"S1"`
	Name            string `json:"name" binding:"required" example:"张三"`
	PhoneNumber     string `json:"phone_number" binding:"required" example:"13812345678"`
	Role            string `json:"role" binding:"required,oneof=Guest Staff Delivery Other" example:"Guest"`
	Block           string `json:"block" binding:"required" example:"A"`
	FlatNo          string `json:"flat_no" binding:"required" example:"101"`
	Company         string `json:"company" example:"顺丰快递"`
	Reason          string `json:"reason" example:"访友"`
	Details         string `json:"details"`
	IsFrequent      bool   `json:"is_frequent"`
	Pictures        string `json:"pictures"`
	ImmediateEntry  bool   `json:"immediate_entry"`
	InGateNumber    *string `json:"in_gate_number"`
	InVehicleNumber *string `json:"in_vehicle_number"`
}

// GateActionRequest 表示签到/签离请求
type GateActionRequest struct {
	SocietyID     string  `json:"society_id" binding:"required" example:"S1"`
	VisitorID     string  `json:"visitor_id" binding:"required" example:"482913"`
	GateNumber    *string `json:"gate_number" example:"G1"`
	VehicleNumber *string `json:"vehicle_number" example:"粤B12345"`
}

// VisitorRefRequest 表示只含小区和访客编码的请求
type VisitorRefRequest struct {
	SocietyID string `json:"society_id" binding:"required" example:"S1"`
	VisitorID string `json:"visitor_id" binding:"required" example:"482913"`
}

// CreateVisitor 创建访客
// @Summary      创建访客
// @Description  创建访客记录并签发扫码凭证，immediate_entry为真时直接以已签到状态入场
// @Tags         Visitor
// @Accept       json
// @Produce      json
// @Param        request body CreateVisitorRequest true "创建访客请求参数"
// @Security     BearerAuth
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /visitors/createVisitors [post]
func (c *VisitorController) CreateVisitor() {
	var req CreateVisitorRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Context, code.ErrBind, err.Error(), nil)
		return
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitor, err := visitorService.CreateVisitor(&services.CreateVisitorInput{
		SocietyID:       req.SocietyID,
		Name:            req.Name,
		Phone:           req.PhoneNumber,
		Role:            models.VisitorRole(req.Role),
		Company:         req.Company,
		Reason:          req.Reason,
		Details:         req.Details,
		Block:           req.Block,
		FlatNo:          req.FlatNo,
		IsFrequent:      req.IsFrequent,
		Pictures:        req.Pictures,
		ImmediateEntry:  req.ImmediateEntry,
		InGateNumber:    req.InGateNumber,
		InVehicleNumber: req.InVehicleNumber,
	})
	if err != nil {
		// 凭证签发失败时记录已保留，返回部分成功并附上访客信息
		if errors.Is(err, services.ErrCredentialIssuance) {
			response.FailWithMessage(c.Context, code.ErrCredentialIssuanceFailed,
				code.GetMessage(code.ErrCredentialIssuanceFailed), visitor)
			return
		}
		if errors.Is(err, services.ErrCodeSpaceExhausted) {
			response.Fail(c.Context, code.ErrVisitorCodeExhausted, nil)
			return
		}
		response.ServerError(c.Context)
		return
	}

	response.Created(c.Context, visitor)
}

// CheckInVisitor 访客签到
// @Summary      访客签到
// @Description  将等待中的访客置为已签到并记录入口信息
// @Tags         Visitor
// @Accept       json
// @Produce      json
// @Param        request body GateActionRequest true "签到请求参数"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /visitors/checkInVisitor [put]
func (c *VisitorController) CheckInVisitor() {
	var req GateActionRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Context, code.ErrBind, err.Error(), nil)
		return
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitor, err := visitorService.CheckInVisitor(req.SocietyID, req.VisitorID, req.GateNumber, req.VehicleNumber)
	if err != nil {
		c.failTransition(err)
		return
	}
	response.Success(c.Context, visitor)
}

// CheckOutVisitor 访客签离
// @Summary      访客签离
// @Description  将已签到的访客置为已签离，记录出口信息并作废凭证
// @Tags         Visitor
// @Accept       json
// @Produce      json
// @Param        request body GateActionRequest true "签离请求参数"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /visitors/checkoutVisitor [put]
func (c *VisitorController) CheckOutVisitor() {
	var req GateActionRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Context, code.ErrBind, err.Error(), nil)
		return
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitor, err := visitorService.CheckOutVisitor(req.SocietyID, req.VisitorID, req.GateNumber, req.VehicleNumber)
	if err != nil {
		c.failTransition(err)
		return
	}
	response.Success(c.Context, visitor)
}

// DenyVisitor 拒绝访客入场
// @Summary      拒绝访客
// @Description  拒绝等待中的访客入场并作废其凭证，已签到的访客不能再拒绝
// @Tags         Visitor
// @Accept       json
// @Produce      json
// @Param        request body VisitorRefRequest true "拒绝请求参数"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /visitors/denyVisitor [put]
func (c *VisitorController) DenyVisitor() {
	var req VisitorRefRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Context, code.ErrBind, err.Error(), nil)
		return
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitor, err := visitorService.DenyVisitor(req.SocietyID, req.VisitorID)
	if err != nil {
		c.failTransition(err)
		return
	}
	response.Success(c.Context, visitor)
}

// ReissueCredential 对凭证签发失败的访客重试
// @Summary      重发访客凭证
// @Description  对已存在但没有凭证的访客重试签发，不会创建重复记录
// @Tags         Visitor
// @Accept       json
// @Produce      json
// @Param        request body VisitorRefRequest true "重发请求参数"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /visitors/reissueCredential [put]
func (c *VisitorController) ReissueCredential() {
	var req VisitorRefRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Context, code.ErrBind, err.Error(), nil)
		return
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitor, err := visitorService.ReissueCredential(req.SocietyID, req.VisitorID)
	if err != nil {
		if errors.Is(err, services.ErrCredentialIssuance) {
			response.FailWithMessage(c.Context, code.ErrCredentialIssuanceFailed,
				code.GetMessage(code.ErrCredentialIssuanceFailed), visitor)
			return
		}
		c.failTransition(err)
		return
	}
	response.Success(c.Context, visitor)
}

// GetAllVisitors 获取小区全部访客
// @Summary      获取小区访客列表
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        pageNum query int false "页码，默认1"
// @Param        pageSize query int false "每页条数，默认20"
// @Param        desc query bool false "按创建时间倒序"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /visitors/getAllVisitorsBySocietyId/{societyId} [get]
func (c *VisitorController) GetAllVisitors() {
	societyID := c.Context.Param("societyId")

	var query models.PaginationQuery
	if err := c.Context.ShouldBindQuery(&query); err != nil {
		response.FailWithMessage(c.Context, code.ErrBind, err.Error(), nil)
		return
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitors, pagination, err := visitorService.GetAllVisitors(societyID, &query)
	if err != nil {
		response.ServerError(c.Context)
		return
	}
	response.Success(c.Context, gin.H{
		"visitors":   visitors,
		"pagination": pagination,
	})
}

// GetVisitor 获取单个访客
// @Summary      获取访客详情
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        visitorId path string true "访客编码"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /visitors/getVisitorByIdAndSocietyId/{societyId}/{visitorId} [get]
func (c *VisitorController) GetVisitor() {
	societyID := c.Context.Param("societyId")
	visitorID := c.Context.Param("visitorId")

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitor, err := visitorService.GetVisitorByID(societyID, visitorID)
	if err != nil {
		c.failTransition(err)
		return
	}
	response.Success(c.Context, visitor)
}

// GetRecentVisitors 获取近24小时签到的访客
// @Summary      获取近期访客
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        hours query int false "时间窗口（小时），默认24"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /visitors/getVisitorsBySocietyIdLast24Hours/{societyId} [get]
func (c *VisitorController) GetRecentVisitors() {
	societyID := c.Context.Param("societyId")

	window := services.DefaultRecentWindow
	if raw := c.Context.Query("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			response.FailWithMessage(c.Context, code.ErrBind, "hours参数必须是正整数", nil)
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitors, err := visitorService.GetRecentVisitors(societyID, window)
	if err != nil {
		response.ServerError(c.Context)
		return
	}
	response.Success(c.Context, visitors)
}

// GetFrequentVisitors 获取指定楼栋/户号的常客
// @Summary      获取常客列表
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        block path string true "楼栋"
// @Param        flatNo path string true "户号"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /visitors/getFrequentVisitors/{societyId}/{block}/{flatNo} [get]
func (c *VisitorController) GetFrequentVisitors() {
	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitors, err := visitorService.GetFrequentVisitors(
		c.Context.Param("societyId"), c.Context.Param("block"), c.Context.Param("flatNo"))
	if err != nil {
		response.ServerError(c.Context)
		return
	}
	response.Success(c.Context, visitors)
}

// GetPreApprovedVisitors 获取指定楼栋/户号的预批准访客
// @Summary      获取预批准访客列表
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        block path string true "楼栋"
// @Param        flatNo path string true "户号"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /visitors/getPreApprovedVisitors/{societyId}/{block}/{flatNo} [get]
func (c *VisitorController) GetPreApprovedVisitors() {
	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitors, err := visitorService.GetPreApprovedVisitors(
		c.Context.Param("societyId"), c.Context.Param("block"), c.Context.Param("flatNo"))
	if err != nil {
		response.ServerError(c.Context)
		return
	}
	response.Success(c.Context, visitors)
}

// GetVisitorHistory 获取指定楼栋/户号的历史访客
// @Summary      获取历史访客列表
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        block path string true "楼栋"
// @Param        flatNo path string true "户号"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /visitors/getAllVisitorsbyFlatNo/{societyId}/{block}/{flatNo} [get]
func (c *VisitorController) GetVisitorHistory() {
	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitors, err := visitorService.GetVisitorHistory(
		c.Context.Param("societyId"), c.Context.Param("block"), c.Context.Param("flatNo"))
	if err != nil {
		response.ServerError(c.Context)
		return
	}
	response.Success(c.Context, visitors)
}

// DeleteFrequentVisitor 删除常客
// @Summary      删除常客
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        block path string true "楼栋"
// @Param        flatNo path string true "户号"
// @Param        visitorId path string true "访客编码"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /visitors/deleteFrequentVisitor/{societyId}/{block}/{flatNo}/{visitorId} [delete]
func (c *VisitorController) DeleteFrequentVisitor() {
	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	err := visitorService.DeleteFrequentVisitor(
		c.Context.Param("societyId"), c.Context.Param("block"), c.Context.Param("flatNo"), c.Context.Param("visitorId"))
	if err != nil {
		c.failTransition(err)
		return
	}
	response.Success(c.Context, nil)
}

// DeleteEntryVisit 删除访客进出记录
// @Summary      删除访客记录
// @Tags         Visitor
// @Produce      json
// @Param        societyId path string true "小区ID"
// @Param        block path string true "楼栋"
// @Param        flatNo path string true "户号"
// @Param        visitorId path string true "访客编码"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /visitors/deleteEntryVisitor/{societyId}/{block}/{flatNo}/{visitorId} [delete]
func (c *VisitorController) DeleteEntryVisit() {
	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	err := visitorService.DeleteEntryVisit(
		c.Context.Param("societyId"), c.Context.Param("block"), c.Context.Param("flatNo"), c.Context.Param("visitorId"))
	if err != nil {
		c.failTransition(err)
		return
	}
	response.Success(c.Context, nil)
}

// GetCredentialImage 获取凭证二维码图片
// @Summary      获取凭证图片
// @Description  按制品引用读取访客凭证二维码，供门岗或业主端展示
// @Tags         Visitor
// @Produce      png
// @Param        ref path string true "制品引用"
// @Success      200  {file}  binary
// @Failure      404  {object}  response.Response
// @Router       /visitors/qrcode/{ref} [get]
func (c *VisitorController) GetCredentialImage() {
	ref := c.Context.Param("ref")

	qrcodeService := c.Container.GetService("qrcode").(services.InterfaceQRCodeService)
	data, err := qrcodeService.Fetch(ref)
	if err != nil {
		if errors.Is(err, services.ErrArtifactNotFound) {
			response.Fail(c.Context, code.ErrArtifactNotFound, nil)
			return
		}
		response.ServerError(c.Context)
		return
	}
	c.Context.Data(http.StatusOK, "image/png", data)
}

// failTransition 将服务层错误映射为统一响应
func (c *VisitorController) failTransition(err error) {
	switch {
	case errors.Is(err, services.ErrVisitorNotFound):
		response.Fail(c.Context, code.ErrVisitorNotFound, nil)
	case errors.Is(err, services.ErrVisitorAlreadyCheckedIn):
		response.Fail(c.Context, code.ErrVisitorAlreadyCheckedIn, nil)
	case errors.Is(err, services.ErrVisitorAlreadyCheckedOut):
		response.Fail(c.Context, code.ErrVisitorAlreadyCheckedOut, nil)
	case errors.Is(err, services.ErrVisitorNotCheckedIn):
		response.Fail(c.Context, code.ErrVisitorNotCheckedIn, nil)
	case errors.Is(err, services.ErrInvalidTransition):
		response.Fail(c.Context, code.ErrVisitorInvalidTransition, nil)
	default:
		response.ServerError(c.Context)
	}
}
