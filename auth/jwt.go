package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/Digital-Creators-Team/lucky-draw-module/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Context keys for operator information
const (
	OperatorIDKey   = "operator_id"
	OperatorNameKey = "operator_name"
	ClaimsKey       = "claims"
)

// Claims represents the JWT claims structure
type Claims struct {
	OperatorID string `json:"operator_id"`
	Name       string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT middleware configuration
type JWTConfig struct {
	Secret string
	// TokenLookup lists sources in order: "header:Authorization", "query:token".
	TokenLookup []string
	TokenPrefix string
	SkipPaths   []string
}

// DefaultJWTConfig returns default JWT configuration. Browsers cannot set
// headers on a websocket upgrade, so the token may also come as ?token=.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:      secret,
		TokenLookup: []string{"header:Authorization", "query:token"},
		TokenPrefix: "Bearer",
		SkipPaths:   []string{"/health", "/api/health"},
	}
}

// JWTMiddleware creates a JWT authentication middleware
func JWTMiddleware(secret string, logger zerolog.Logger) gin.HandlerFunc {
	return JWTMiddlewareWithConfig(DefaultJWTConfig(secret), logger)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		IsSuccess:  false,
		Error: types.ErrorDetail{
			Timestamp:    time.Now().Format(time.RFC3339),
			Path:         c.Request.URL.Path,
			ErrorMessage: message,
			ErrorCode:    http.StatusUnauthorized,
		},
	})
}

// extractToken walks the lookup sources. It returns "" with no error when no
// source carried a token.
func extractToken(c *gin.Context, config JWTConfig) (string, error) {
	for _, source := range config.TokenLookup {
		kind, name, _ := strings.Cut(source, ":")
		switch kind {
		case "header":
			value := c.GetHeader(name)
			if value == "" {
				continue
			}
			prefix, token, ok := strings.Cut(value, " ")
			if !ok || prefix != config.TokenPrefix || token == "" {
				return "", errors.New("invalid Authorization header format. Expected: Bearer <token>")
			}
			return token, nil
		case "query":
			if value := c.Query(name); value != "" {
				return value, nil
			}
		}
	}
	return "", nil
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.OperatorID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// JWTMiddlewareWithConfig creates a JWT middleware with custom configuration.
// On success the operator is stored on the gin context and attached to the
// request context with reel.WithOperator.
func JWTMiddlewareWithConfig(config JWTConfig, logger zerolog.Logger) gin.HandlerFunc {
	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		tokenString, err := extractToken(c, config)
		if err != nil {
			logger.Warn().Err(err).Msg("Invalid Authorization header format")
			unauthorized(c, err.Error())
			return
		}
		if tokenString == "" {
			logger.Warn().Msg("Missing token")
			unauthorized(c, "Missing Authorization header")
			return
		}

		claims, err := ParseToken(config.Secret, tokenString)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to parse JWT token")
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(OperatorIDKey, claims.OperatorID)
		c.Set(OperatorNameKey, claims.Name)
		c.Set(ClaimsKey, claims)
		op := reel.NewOperator(claims.OperatorID, claims.Name)
		c.Request = c.Request.WithContext(reel.WithOperator(c.Request.Context(), op))

		logger.Debug().
			Str("operator_id", claims.OperatorID).
			Msg("JWT authentication successful")

		c.Next()
	}
}

// GetOperatorID extracts the operator ID from context
func GetOperatorID(c *gin.Context) (string, bool) {
	id := c.GetString(OperatorIDKey)
	return id, id != ""
}

// GetClaims extracts full claims from context
func GetClaims(c *gin.Context) (*Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claimsObj, ok := claims.(*Claims)
	return claimsObj, ok
}

// GenerateToken generates a new JWT token for an operator
func GenerateToken(secret, operatorID, name string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		OperatorID: operatorID,
		Name:       name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
