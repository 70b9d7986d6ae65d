package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/models"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	log.SetOutput(io.Discard)
	gin.SetMode(gin.TestMode)
	app.Config.Auth.JWTSecret = "test-secret"
	app.Config.Auth.JWTExpiryHours = 1
}

func testUser(role string) *models.User {
	id := primitive.NewObjectID()
	return &models.User{
		Id:            &id,
		WalletAddress: "0x4234567890123456789012345678901234567890",
		Email:         "user@example.com",
		Name:          "Test User",
		Role:          role,
		IsActive:      true,
	}
}

func protectedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	chain := append([]gin.HandlerFunc{AuthRequired()}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		respondOK(c, http.StatusOK, gin.H{"role": currentClaims(c).Role})
	})
	router.GET("/protected", chain...)
	return router
}

func TestAuthRequired(t *testing.T) {
	t.Run("Valid Token", func(t *testing.T) {
		user := testUser(models.RoleStudent)
		token, err := IssueToken(user)
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protectedRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), models.RoleStudent)
	})

	t.Run("Missing Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		protectedRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Not A Bearer Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		protectedRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong Signing Key", func(t *testing.T) {
		claims := Claims{UserID: primitive.NewObjectID().Hex(), Role: models.RoleStudent}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte("some-other-secret"))
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		protectedRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		claims := Claims{
			UserID: primitive.NewObjectID().Hex(),
			Role:   models.RoleStudent,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(app.Config.Auth.JWTSecret))
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		protectedRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireCapability(t *testing.T) {
	t.Run("Role With Capability", func(t *testing.T) {
		token, err := IssueToken(testUser(models.RoleProvider))
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protectedRouter(RequireCapability(models.CapCreateScholarship)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Role Without Capability", func(t *testing.T) {
		token, err := IssueToken(testUser(models.RoleStudent))
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protectedRouter(RequireCapability(models.CapCreateScholarship)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
