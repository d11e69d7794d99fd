package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 状态冲突.
	StatusConflict = 409
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
)

// 数据库相关错误码 (102xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 102000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 访客相关错误码 (105xxx).
const (
	// ErrVisitorNotFound - 404: 访客不存在.
	ErrVisitorNotFound int = iota + 105000
	// ErrVisitorAlreadyCheckedIn - 409: 访客已签到.
	ErrVisitorAlreadyCheckedIn
	// ErrVisitorAlreadyCheckedOut - 409: 访客已签离.
	ErrVisitorAlreadyCheckedOut
	// ErrVisitorNotCheckedIn - 409: 访客尚未签到.
	ErrVisitorNotCheckedIn
	// ErrVisitorInvalidTransition - 409: 访客状态不允许该操作.
	ErrVisitorInvalidTransition
	// ErrVisitorCodeExhausted - 500: 访客编码空间耗尽.
	ErrVisitorCodeExhausted
	// ErrCredentialIssuanceFailed - 500: 凭证生成失败，访客记录已保留.
	ErrCredentialIssuanceFailed
	// ErrArtifactNotFound - 404: 凭证制品不存在.
	ErrArtifactNotFound
)
