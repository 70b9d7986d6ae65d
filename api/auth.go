package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type registerRequest struct {
	WalletAddress string             `json:"wallet_address"`
	Email         string             `json:"email"`
	Name          string             `json:"name"`
	Role          string             `json:"role"`
	Profile       models.UserProfile `json:"profile"`
}

// Register creates a user account keyed by wallet address. Admin accounts
// are provisioned out of band, never self-registered.
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if !common.IsHexAddress(req.WalletAddress) {
		respondError(c, http.StatusBadRequest, "invalid wallet address")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(c, http.StatusBadRequest, "valid email is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	if !models.IsValidRole(req.Role) || req.Role == models.RoleAdmin {
		respondError(c, http.StatusBadRequest, "invalid role")
		return
	}

	now := time.Now()
	user := &models.User{
		WalletAddress: strings.ToLower(req.WalletAddress),
		Email:         req.Email,
		Name:          strings.TrimSpace(req.Name),
		Role:          req.Role,
		Profile:       req.Profile,
		Verification:  models.Verification{IsVerified: false},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := app.DB.InsertOne(models.CollectionUsers, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "wallet address or email already registered")
			return
		}
		log.Error("[API] Error creating user: ", err)
		respondError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	var created models.User
	if err := app.DB.FindOne(models.CollectionUsers, bson.M{"wallet_address": user.WalletAddress}, &created); err != nil {
		log.Error("[API] Error loading created user: ", err)
		respondError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := IssueToken(&created)
	if err != nil {
		log.Error("[API] Error issuing token: ", err)
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"message": "user registered",
		"token":   token,
		"user":    created,
	})
}

type loginRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// Login issues a session token for a registered wallet.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !common.IsHexAddress(req.WalletAddress) {
		respondError(c, http.StatusBadRequest, "invalid wallet address")
		return
	}

	var user models.User
	err := app.DB.FindOne(models.CollectionUsers, bson.M{"wallet_address": strings.ToLower(req.WalletAddress)}, &user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusUnauthorized, "wallet address not registered")
			return
		}
		log.Error("[API] Error finding user: ", err)
		respondError(c, http.StatusInternalServerError, "failed to log in")
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusForbidden, "account is deactivated")
		return
	}

	token, err := IssueToken(&user)
	if err != nil {
		log.Error("[API] Error issuing token: ", err)
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	now := time.Now()
	err = app.DB.UpdateOne(models.CollectionUsers, bson.M{"_id": user.Id},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}})
	if err != nil {
		log.Warn("[API] Error updating last login: ", err)
	}

	respondOK(c, http.StatusOK, gin.H{
		"message": "logged in",
		"token":   token,
		"user":    user,
	})
}

func (s *Server) currentUser(c *gin.Context) (*models.User, bool) {
	claims := currentClaims(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return nil, false
	}
	userId, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid token subject")
		return nil, false
	}

	var user models.User
	if err := app.DB.FindOne(models.CollectionUsers, bson.M{"_id": userId}, &user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusUnauthorized, "user not found")
			return nil, false
		}
		log.Error("[API] Error finding user: ", err)
		respondError(c, http.StatusInternalServerError, "failed to load user")
		return nil, false
	}
	if !user.IsActive {
		respondError(c, http.StatusForbidden, "account is deactivated")
		return nil, false
	}
	return &user, true
}

// Me returns the authenticated user's account.
func (s *Server) Me(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}

type profileRequest struct {
	Name    *string             `json:"name"`
	Profile *models.UserProfile `json:"profile"`
}

// UpdateProfile mutates the caller's own name and profile fields only;
// role, wallet address and verification are never writable here.
func (s *Server) UpdateProfile(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			respondError(c, http.StatusBadRequest, "name cannot be empty")
			return
		}
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Profile != nil {
		set["profile"] = *req.Profile
	}

	if err := app.DB.UpdateOne(models.CollectionUsers, bson.M{"_id": user.Id}, bson.M{"$set": set}); err != nil {
		log.Error("[API] Error updating profile: ", err)
		respondError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	var updated models.User
	if err := app.DB.FindOne(models.CollectionUsers, bson.M{"_id": user.Id}, &updated); err != nil {
		log.Error("[API] Error loading updated user: ", err)
		respondError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "profile updated", "user": updated})
}

// VerifyUser marks a user as verified; requires the verify capability.
func (s *Server) VerifyUser(c *gin.Context) {
	verifier, ok := s.currentUser(c)
	if !ok {
		return
	}

	targetId, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var target models.User
	if err := app.DB.FindOne(models.CollectionUsers, bson.M{"_id": targetId}, &target); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		log.Error("[API] Error finding user: ", err)
		respondError(c, http.StatusInternalServerError, "failed to verify user")
		return
	}
	if target.Verification.IsVerified {
		respondError(c, http.StatusConflict, "user is already verified")
		return
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"verification.is_verified": true,
		"verification.verified_by": verifier.Id,
		"verification.verified_at": now,
		"updated_at":               now,
	}}
	if err := app.DB.UpdateOne(models.CollectionUsers, bson.M{"_id": targetId}, update); err != nil {
		log.Error("[API] Error verifying user: ", err)
		respondError(c, http.StatusInternalServerError, "failed to verify user")
		return
	}

	log.Info("[API] User verified: ", targetId.Hex(), " by ", verifier.Id.Hex())
	respondOK(c, http.StatusOK, gin.H{"message": "user verified"})
}

// ListUsers returns a paginated user list; admin only.
func (s *Server) ListUsers(c *gin.Context) {
	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		if !models.IsValidRole(role) {
			respondError(c, http.StatusBadRequest, "invalid role filter")
			return
		}
		filter["role"] = role
	}
	if verified := c.Query("verified"); verified != "" {
		filter["verification.is_verified"] = verified == "true"
	}

	page, limit := parsePageLimit(c)

	total, err := app.DB.CountDocuments(models.CollectionUsers, filter)
	if err != nil {
		log.Error("[API] Error counting users: ", err)
		respondError(c, http.StatusInternalServerError, "failed to list users")
		return
	}

	users := []models.User{}
	err = app.DB.FindManyPaginated(models.CollectionUsers, filter, bson.D{{Key: "created_at", Value: -1}}, page, limit, &users)
	if err != nil {
		log.Error("[API] Error listing users: ", err)
		respondError(c, http.StatusInternalServerError, "failed to list users")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"users":      users,
		"pagination": newPagination(page, limit, total),
	})
}
