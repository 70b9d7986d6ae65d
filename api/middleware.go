package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/models"
)

const claimsContextKey = "claims"

// Claims is the JWT payload. Role is carried in the token so capability
// checks never need a database read.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the user.
func IssueToken(user *models.User) (string, error) {
	if user.Id == nil {
		return "", errors.New("user has no id")
	}
	now := time.Now()
	claims := Claims{
		UserID: user.Id.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.WalletAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(app.Config.Auth.JWTExpiryHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(app.Config.Auth.JWTSecret))
}

func parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(app.Config.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusUnauthorized, "authorization header required")
			return
		}
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			respondError(c, http.StatusUnauthorized, "authorization header must be a bearer token")
			return
		}
		claims, err := parseToken(tokenString)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireCapability gates a route on the caller's role having the capability.
// Runs after AuthRequired.
func RequireCapability(cap models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			respondError(c, http.StatusUnauthorized, "authorization required")
			return
		}
		if !models.RoleHasCapability(claims.Role, cap) {
			respondError(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *Claims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
