package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"goalkeeper/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidTriggerToken is returned for any bearer token the trigger rejects.
var ErrInvalidTriggerToken = errors.New("invalid trigger token")

// GenerateTriggerToken mints an HS256 token a scheduler can present to /check-slumps.
func GenerateTriggerToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("trigger secret is empty")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    config.TriggerTokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateTriggerToken checks signature, algorithm, issuer and expiry.
func ValidateTriggerToken(tokenString, secret string) error {
	_, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.TriggerTokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTriggerToken, err)
	}
	return nil
}

// RequireTriggerToken guards the trigger when a secret is configured. Without a
// secret every request passes.
func (h *Handler) RequireTriggerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.TriggerSecret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing bearer token"})
			return
		}

		if err := ValidateTriggerToken(tokenString, h.TriggerSecret); err != nil {
			h.Log.Warn("trigger token rejected", "error", err, "remote", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}
		c.Next()
	}
}
