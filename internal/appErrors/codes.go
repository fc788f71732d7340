package appErrors

// Error codes grouped by domain.
const (
	// Authentication
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// Validation
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"

	// Resources
	CodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	CodeRequestNotFound ErrorCode = "PAYMENT_REQUEST_NOT_FOUND"
	CodeRouteNotFound   ErrorCode = "PAYMENT_LINK_NOT_FOUND"
	CodePaymentNotFound ErrorCode = "OUTGOING_PAYMENT_NOT_FOUND"

	// Payment lifecycle
	CodeVerificationRejected ErrorCode = "VERIFICATION_REJECTED"
	CodeVerificationTimeout  ErrorCode = "VERIFICATION_TIMEOUT"
	CodeNoWallet             ErrorCode = "NO_WALLET_CONFIGURED"
	CodeDuplicateSettlement  ErrorCode = "DUPLICATE_SETTLEMENT"
	CodeSendFailure          ErrorCode = "SEND_FAILURE"
	CodeInvalidTransition    ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeCancelAfterPaid      ErrorCode = "CANCEL_AFTER_PAID"

	// System
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
)
