package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrInternalServer  = errors.New("internal server error")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrListingNotFound = errors.New("listing not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrRateLimited     = errors.New("too many requests")
	ErrQuotaExceeded   = errors.New("monthly free listing quota exceeded")
	ErrStore           = errors.New("store unavailable")
	ErrUnknownProduct  = errors.New("unknown promotion product")
	ErrInvalidDecision = errors.New("invalid moderation decision")
	ErrPaymentRequired = errors.New("payment not found, not completed or already used")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

// ThrottledError - превышен лимит запросов или квота; RetryAfter подсказывает клиенту,
// когда повторить. Внутри сервиса такие ошибки никогда не ретраятся.
type ThrottledError struct {
	Err        error
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s (retry after %ds)", e.Err.Error(), e.RetryAfterSeconds())
}

func (e *ThrottledError) Unwrap() error {
	return e.Err
}

// RetryAfterSeconds округляет вверх, минимум 1 секунда
func (e *ThrottledError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func NewThrottledError(err error, retryAfter time.Duration, resetAt time.Time) *ThrottledError {
	return &ThrottledError{Err: err, RetryAfter: retryAfter, ResetAt: resetAt}
}

// StoreError оборачивает ошибку хранилища в ErrStore, сохраняя причину для логов
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

func HTTPStatusFromError(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrListingNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrUnknownProduct), errors.Is(err, ErrInvalidDecision):
		return http.StatusBadRequest
	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// InternalMessage - единственное, что клиент видит при 5xx
const InternalMessage = "Internal server error"

// PublicMessage скрывает детали внутренних ошибок от клиента
func PublicMessage(err error) string {
	if HTTPStatusFromError(err) >= http.StatusInternalServerError {
		return InternalMessage
	}
	var throttled *ThrottledError
	if errors.As(err, &throttled) {
		return throttled.Err.Error()
	}
	return err.Error()
}
