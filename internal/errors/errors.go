package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	// CategoryDomain marks a value outside its declared range. Recovered
	// locally via clamping; surfaced as a warning, never aborts a pipeline.
	CategoryDomain ErrorCategory = "domain"
	// CategoryConfig marks malformed weight or threshold configuration.
	// Fatal to the computation; never silently renormalized.
	CategoryConfig ErrorCategory = "config"
	// CategoryIncompleteData marks a required composite index or metric
	// missing from a recommend call.
	CategoryIncompleteData ErrorCategory = "incomplete_data"
	CategoryValidation     ErrorCategory = "validation"
	CategoryNotFound       ErrorCategory = "not_found"
	CategoryInternal       ErrorCategory = "internal"
)

// AppError wraps errbuilder error with category and HTTP mapping
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	Field      string        `json:"field,omitempty"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	codeStr := "UNKNOWN_ERROR"
	switch e.ErrBuilder.ErrCode() {
	case errbuilder.CodeOutOfRange:
		codeStr = "DOMAIN_ERROR"
	case errbuilder.CodeFailedPrecondition:
		codeStr = "CONFIG_ERROR"
	case errbuilder.CodeInvalidArgument:
		codeStr = "VALIDATION_ERROR"
	case errbuilder.CodeNotFound:
		codeStr = "NOT_FOUND"
	case errbuilder.CodeDataLoss:
		codeStr = "INCOMPLETE_DATA"
	case errbuilder.CodeInternal:
		codeStr = "INTERNAL_ERROR"
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", codeStr, e.Field, e.ErrBuilder.Msg)
	}
	return fmt.Sprintf("[%s] %s", codeStr, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewDomainError reports a raw value outside its declared scale. Callers
// clamp and continue; the error carries the offending metric for logging.
func NewDomainError(metric string, value, min, max float64) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeOutOfRange).
		WithMsg(fmt.Sprintf("value %.4g outside scale [%.4g, %.4g]", value, min, max))

	appErr := NewAppError(builder, CategoryDomain, http.StatusUnprocessableEntity)
	appErr.Field = metric
	return appErr
}

// NewConfigError reports malformed weight or threshold configuration,
// naming the offending field.
func NewConfigError(field, message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	appErr := NewAppError(builder, CategoryConfig, http.StatusInternalServerError)
	appErr.Field = field
	return appErr
}

// NewIncompleteDataError reports a required composite index or metric
// missing from a computation. The engine never substitutes a default.
func NewIncompleteDataError(field string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDataLoss).
		WithMsg(fmt.Sprintf("required input %q is missing", field))

	appErr := NewAppError(builder, CategoryIncompleteData, http.StatusUnprocessableEntity)
	appErr.Field = field
	return appErr
}

// NewValidationError creates a request validation error
func NewValidationError(message string, details ...interface{}) *AppError {
	detailStr := ""
	if len(details) > 0 {
		detailStr = fmt.Sprintf("%v", details[0])
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if detailStr != "" {
		errorMap := errbuilder.ErrorMap{}
		errorMap.Set("validation_details", errors.New(detailStr))
		builder = builder.WithDetails(errbuilder.NewErrDetails(errorMap))
	}

	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewNotFoundError reports a missing session or record
func NewNotFoundError(resource, ref string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s %q not found", resource, ref))

	appErr := NewAppError(builder, CategoryNotFound, http.StatusNotFound)
	appErr.Field = resource
	return appErr
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// IsDomain reports whether err is a recoverable range error.
func IsDomain(err error) bool { return hasCategory(err, CategoryDomain) }

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return hasCategory(err, CategoryConfig) }

// IsIncompleteData reports whether err is a missing-input error.
func IsIncompleteData(err error) bool { return hasCategory(err, CategoryIncompleteData) }

func hasCategory(err error, cat ErrorCategory) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category == cat
	}
	return false
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}

	return NewInternalError("an unexpected error occurred", err)
}

// ErrorHandler is a Gin middleware that provides centralized error handling
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			appErr := ToAppError(err)
			LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
	}
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		appErr := NewInternalError(
			fmt.Sprintf("panic recovered: %v", recovered),
			fmt.Errorf("%v", recovered),
		)
		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	})
}

// LogError logs an error with appropriate level and context
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"error_code", err.ErrBuilder.ErrCode(),
		"field", err.Field,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	switch err.Category {
	case CategoryDomain:
		logEntry.Warn(err.ErrBuilder.Msg)
	case CategoryValidation, CategoryNotFound:
		logEntry.Warn(err.ErrBuilder.Msg)
	case CategoryConfig, CategoryIncompleteData:
		logEntry.Error(err.ErrBuilder.Msg)
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(err.ErrBuilder.Msg, "cause", cause)
		} else {
			logEntry.Error(err.ErrBuilder.Msg)
		}
	}
}
