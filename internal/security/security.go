package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Config holds security middleware configuration
type Config struct {
	// MaxBodyBytes caps request body size for write endpoints.
	MaxBodyBytes int64
	// RequestTimeout bounds handler execution per request.
	RequestTimeout time.Duration
}

// DefaultConfig returns default security configuration
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:   1 << 20, // 1 MiB
		RequestTimeout: 30 * time.Second,
	}
}

// Middleware provides request hardening for the HTTP API
type Middleware struct {
	config Config
}

// NewMiddleware creates security middleware with the given configuration
func NewMiddleware(config Config) *Middleware {
	return &Middleware{config: config}
}

// employeeRefPattern matches identifiers like "jane.doe", "emp-1042" or
// "j.doe@example.com". Path separators and whitespace are rejected so the
// reference is safe in URLs, cache keys and log lines.
var employeeRefPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{0,63}$`)

// ValidateEmployeeRef checks that an employee reference is well formed
func ValidateEmployeeRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("employee reference is required")
	}
	if len(ref) > 64 {
		return fmt.Errorf("employee reference exceeds 64 characters")
	}
	if strings.Contains(ref, "..") {
		return fmt.Errorf("employee reference contains invalid sequence")
	}
	if !employeeRefPattern.MatchString(ref) {
		return fmt.Errorf("employee reference contains invalid characters")
	}
	return nil
}

// ValidateEmployeeRefMiddleware rejects requests with malformed :id parameters
func ValidateEmployeeRefMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ref := c.Param("id"); ref != "" {
			if err := ValidateEmployeeRef(ref); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid employee reference",
					"details": err.Error(),
				})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// ValidateContentType requires JSON bodies on write methods
func (sm *Middleware) ValidateContentType(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		c.Next()
		return
	}

	contentType := c.GetHeader("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "application/json") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "unsupported content type",
		})
		c.Abort()
		return
	}

	c.Next()
}

// BodySizeLimit caps the request body so oversized payloads fail fast
func (sm *Middleware) BodySizeLimit(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *Middleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}
