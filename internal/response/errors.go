package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrSessionRevoked     ErrCode = "SESSION_REVOKED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound            ErrCode = "NOT_FOUND"
	ErrStudentNotFound     ErrCode = "STUDENT_NOT_FOUND"
	ErrCourseNotFound      ErrCode = "COURSE_NOT_FOUND"
	ErrResultNotFound      ErrCode = "RESULT_NOT_FOUND"
	ErrDuplicateRollNumber ErrCode = "DUPLICATE_ROLL_NUMBER"
	ErrDuplicateEmail      ErrCode = "DUPLICATE_EMAIL"
	ErrDuplicateCourseCode ErrCode = "DUPLICATE_COURSE_CODE"
	ErrDuplicateResult     ErrCode = "DUPLICATE_RESULT"

	// ─── Routing ───────────────────────────────────────────────────────
	ErrEndpointNotFound ErrCode = "ENDPOINT_NOT_FOUND"
	ErrMethodNotAllowed ErrCode = "METHOD_NOT_ALLOWED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid credentials"
	case ErrTokenRequired:
		return "Authentication token required"
	case ErrTokenInvalid:
		return "Invalid or expired token"
	case ErrSessionRevoked:
		return "Session has ended. Please log in again"

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Access denied"
	case ErrAdminAccessOnly:
		return "Insufficient permissions: administrators only"
	case ErrStudentAccessOnly:
		return "Insufficient permissions: students only"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input"
	case ErrInvalidID:
		return "Invalid ID format"
	case ErrInvalidPayload:
		return "Invalid JSON data"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found"
	case ErrStudentNotFound:
		return "Student not found"
	case ErrCourseNotFound:
		return "Course not found"
	case ErrResultNotFound:
		return "Result not found"
	case ErrDuplicateRollNumber:
		return "Roll number already exists"
	case ErrDuplicateEmail:
		return "Email already exists"
	case ErrDuplicateCourseCode:
		return "Course code already exists"
	case ErrDuplicateResult:
		return "Result already exists for this student, course, exam type, and date"

	// ─── Routing ───────────────────────────────────────────────────────
	case ErrEndpointNotFound:
		return "Endpoint not found"
	case ErrMethodNotAllowed:
		return "Method not allowed"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error"
	default:
		return "An unexpected error occurred"
	}
}
