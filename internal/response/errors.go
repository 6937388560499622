package response

// ErrCode is a typed error code enum for consistent error identification
// across the HTML views and the JSON API.
type ErrCode string

const (
	// ─── Form validation ───────────────────────────────────────────────
	ErrMissingCredentials ErrCode = "MISSING_CREDENTIALS"
	ErrMissingFields      ErrCode = "MISSING_FIELDS"
	ErrPasswordTooShort   ErrCode = "PASSWORD_TOO_SHORT"
	ErrValidation         ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload     ErrCode = "INVALID_PAYLOAD"

	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAlreadyRegistered  ErrCode = "ALREADY_REGISTERED"
	ErrSignInFailed       ErrCode = "SIGN_IN_FAILED"
	ErrSignUpFailed       ErrCode = "SIGN_UP_FAILED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrSessionLoading     ErrCode = "SESSION_LOADING"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrClassesUnavailable ErrCode = "CLASSES_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Form validation ───────────────────────────────────────────────
	case ErrMissingCredentials:
		return "Vui lòng nhập đầy đủ email và mật khẩu"
	case ErrMissingFields:
		return "Vui lòng điền đầy đủ thông tin"
	case ErrPasswordTooShort:
		return "Mật khẩu phải có ít nhất 6 ký tự"
	case ErrValidation:
		return "Dữ liệu không hợp lệ. Vui lòng kiểm tra lại."
	case ErrInvalidPayload:
		return "Yêu cầu không hợp lệ."

	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email hoặc mật khẩu không chính xác"
	case ErrAlreadyRegistered:
		return "Email này đã được đăng ký, vui lòng đăng nhập"
	case ErrSignInFailed, ErrSignUpFailed:
		return "Đã có lỗi xảy ra, vui lòng thử lại"
	case ErrTokenRequired:
		return "Vui lòng đăng nhập để tiếp tục."
	case ErrSessionLoading:
		return "Đang xác thực phiên đăng nhập, vui lòng thử lại."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrAdminAccessOnly:
		return "Chức năng này chỉ dành cho quản trị viên."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Không tìm thấy dữ liệu."
	case ErrClassesUnavailable:
		return "Không thể tải danh sách lớp học"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Quá nhiều yêu cầu. Vui lòng thử lại sau."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Đã có lỗi xảy ra, vui lòng thử lại"
	default:
		return "Đã có lỗi không xác định."
	}
}

// GetTitle returns the toast title shown with a given error code.
func GetTitle(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Đăng nhập thất bại"
	case ErrAlreadyRegistered:
		return "Tài khoản đã tồn tại"
	case ErrSignInFailed:
		return "Lỗi đăng nhập"
	case ErrSignUpFailed:
		return "Lỗi đăng ký"
	default:
		return "Lỗi"
	}
}
