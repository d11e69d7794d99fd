package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:      "成功",
	ErrUnknown:      "未知错误",
	ErrBind:         "请求参数绑定错误",
	ErrValidation:   "请求参数验证错误",
	ErrTokenInvalid: "无效的认证令牌",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户密码错误",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",

	// 访客相关错误码
	ErrVisitorNotFound:          "访客不存在",
	ErrVisitorAlreadyCheckedIn:  "访客已签到",
	ErrVisitorAlreadyCheckedOut: "访客已签离",
	ErrVisitorNotCheckedIn:      "访客尚未签到",
	ErrVisitorInvalidTransition: "访客当前状态不允许该操作",
	ErrVisitorCodeExhausted:     "访客编码空间耗尽，请稍后重试",
	ErrCredentialIssuanceFailed: "凭证生成失败，访客记录已保留",
	ErrArtifactNotFound:         "凭证制品不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:      StatusOK,
	ErrUnknown:      StatusInternalServerError,
	ErrBind:         StatusBadRequest,
	ErrValidation:   StatusBadRequest,
	ErrTokenInvalid: StatusUnauthorized,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 访客相关错误码
	ErrVisitorNotFound:          StatusNotFound,
	ErrVisitorAlreadyCheckedIn:  StatusConflict,
	ErrVisitorAlreadyCheckedOut: StatusConflict,
	ErrVisitorNotCheckedIn:      StatusConflict,
	ErrVisitorInvalidTransition: StatusConflict,
	ErrVisitorCodeExhausted:     StatusInternalServerError,
	ErrCredentialIssuanceFailed: StatusInternalServerError,
	ErrArtifactNotFound:         StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
