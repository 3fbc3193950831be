package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 通用错误。
var (
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// 认证相关错误。
var (
	PhoneAlreadyRegistered = Definition{Code: "PHONE_ALREADY_REGISTERED", Message: "Phone already registered"}
	InvalidCredentials     = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid phone or password"}
	Unauthorized           = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID          = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound           = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
)

// 联系人模块错误。
var (
	ContactLimitReached     = Definition{Code: "CONTACT_LIMIT_REACHED", Message: "Contact limit reached"}
	ContactPriorityConflict = Definition{Code: "CONTACT_PRIORITY_CONFLICT", Message: "Contact priority conflict"}
	ContactNotFound         = Definition{Code: "CONTACT_NOT_FOUND", Message: "Contact not found"}
	InvalidPhone            = Definition{Code: "INVALID_PHONE", Message: "Invalid phone number"}
)

// 行程监控模块错误。
var (
	JourneyNotFound      = Definition{Code: "JOURNEY_NOT_FOUND", Message: "Journey not found"}
	JourneyAlreadyActive = Definition{Code: "JOURNEY_ALREADY_ACTIVE", Message: "An active journey already exists"}
	JourneyNotActive     = Definition{Code: "JOURNEY_NOT_ACTIVE", Message: "Journey is not active"}
	DestinationRequired  = Definition{Code: "DESTINATION_REQUIRED", Message: "Destination must not be empty"}
	InvalidInterval      = Definition{Code: "INVALID_INTERVAL", Message: "Check-in interval must be positive"}
)

// 告警模块错误。
var (
	AlertNotFound        = Definition{Code: "ALERT_NOT_FOUND", Message: "Alert not found"}
	AlertTypeInvalid     = Definition{Code: "ALERT_TYPE_INVALID", Message: "Alert type invalid"}
	AlertAlreadyResolved = Definition{Code: "ALERT_ALREADY_RESOLVED", Message: "Alert already resolved"}
)

// 摇一摇检测模块错误。
var (
	MotionUnsupported      = Definition{Code: "MOTION_UNSUPPORTED", Message: "Motion sensor not supported"}
	MotionPermissionDenied = Definition{Code: "MOTION_PERMISSION_DENIED", Message: "Motion sensor permission denied"}
	MotionDisabled         = Definition{Code: "MOTION_DISABLED", Message: "Shake detection disabled"}
)

// 短信客户端错误。
var (
	ErrSignNameRequired     = errors.New("sms sign name is required")
	ErrTemplateCodeRequired = errors.New("sms template code is required")

	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
)

// JWT 校验错误。
var (
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidTokenClaims      = errors.New("invalid token claims")
	ErrInvalidTokenType        = errors.New("invalid token type")
	ErrUserIDNotFound          = errors.New("user id not found in token")
)

// SkipMessageError 表示消息应被跳过（已处理或无需处理），消费者据此 Ack 而非重试。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}

// IsSkipMessage 判断是否为跳过类错误。
func IsSkipMessage(err error) bool {
	var skip *SkipMessageError
	return errors.As(err, &skip)
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	TooManyRequests.Code:         TooManyRequests,
	PhoneAlreadyRegistered.Code:  PhoneAlreadyRegistered,
	InvalidCredentials.Code:      InvalidCredentials,
	Unauthorized.Code:            Unauthorized,
	InvalidUserID.Code:           InvalidUserID,
	UserNotFound.Code:            UserNotFound,
	ContactLimitReached.Code:     ContactLimitReached,
	ContactPriorityConflict.Code: ContactPriorityConflict,
	ContactNotFound.Code:         ContactNotFound,
	InvalidPhone.Code:            InvalidPhone,
	JourneyNotFound.Code:         JourneyNotFound,
	JourneyAlreadyActive.Code:    JourneyAlreadyActive,
	JourneyNotActive.Code:        JourneyNotActive,
	DestinationRequired.Code:     DestinationRequired,
	InvalidInterval.Code:         InvalidInterval,
	AlertNotFound.Code:           AlertNotFound,
	AlertTypeInvalid.Code:        AlertTypeInvalid,
	AlertAlreadyResolved.Code:    AlertAlreadyResolved,
	MotionUnsupported.Code:       MotionUnsupported,
	MotionPermissionDenied.Code:  MotionPermissionDenied,
	MotionDisabled.Code:          MotionDisabled,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
