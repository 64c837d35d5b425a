package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerScheme = "Bearer"

var (
	errMissingAuthHeader   = errors.New("missing Authorization header")
	errMalformedAuthHeader = errors.New("invalid Authorization header format")
)

// userIdMiddleware guards the /api/v1 surface: trigger, device, log and
// sync routes all require a token issued by /auth/sign-in.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	userId, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.Set("userId", userId)
	c.Next()
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerScheme {
		return "", errMalformedAuthHeader
	}
	return parts[1], nil
}
