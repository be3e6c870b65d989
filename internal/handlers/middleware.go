package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dejargonator/dejargonator/internal/apperrors"
)

const (
	ctxUserID    = "userID"
	ctxRequestID = "requestID"
)

// RequestID tags every request with an id for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequireUser resolves the authenticated user from the identity provider's
// header. Token verification happens upstream at the hosted auth service;
// this core only needs the resolved subject.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			writeError(c, apperrors.Unauthenticated("sign in to continue", nil))
			c.Abort()
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// writeError maps the domain error taxonomy onto HTTP statuses and emits
// exactly one notice payload.
func writeError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.ErrTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrTypeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.ErrTypeQuotaExceeded:
		status = http.StatusPaymentRequired
	case apperrors.ErrTypeUnavailable:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"type":  string(apperrors.TypeOf(err)),
	})
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
