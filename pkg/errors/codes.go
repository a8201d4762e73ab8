package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Catalog module error codes
const (
	ErrCodeBookNotFound    ErrorCode = "BOOK_001"
	ErrCodeBookUnavailable ErrorCode = "BOOK_002"
	ErrCodeInvalidBookID   ErrorCode = "BOOK_003"
)

// Valuation module error codes
const (
	ErrCodeValuationFailed   ErrorCode = "VAL_001"
	ErrCodeAppraisalDegraded ErrorCode = "VAL_002"
)

// Exchange module error codes
const (
	ErrCodeExchangeNotFound      ErrorCode = "EXCH_001"
	ErrCodeExchangeStatusInvalid ErrorCode = "EXCH_002"
)

// Forum module error codes
const (
	ErrCodeThreadNotFound ErrorCode = "FORUM_001"
)

// Analytics module error codes
const (
	ErrCodePartialAggregation ErrorCode = "ANLT_001"
)

// CodeOK is the sentinel code for a nil error.
const CodeOK = ErrorCode("OK")

// CodeUnknown marks errors that did not originate as an *AppError.
const CodeUnknown = ErrorCode("UNKNOWN")

// HTTPStatus maps an ErrorCode to the HTTP status code used by the
// interfaces layer. Codes without a specific mapping report 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidBookID:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeBookNotFound, ErrCodeExchangeNotFound, ErrCodeThreadNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeExchangeStatusInvalid:
		return http.StatusConflict
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
