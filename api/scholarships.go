package api

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/gin-gonic/gin"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/eth"
	"github.com/scholarchain/scholarchain-backend/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type createScholarshipRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Slots       int64  `json:"slots"`
	Deadline    int64  `json:"deadline"`
	TokenFunded bool   `json:"token_funded"`
}

// CreateScholarship runs the on-chain creation and mirror write. Amount is a
// per-slot decimal value in whole currency units; it is converted to base
// units exactly, never through floats.
func (s *Server) CreateScholarship(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	if !user.Verification.IsVerified {
		respondError(c, http.StatusForbidden, "account must be verified before creating scholarships")
		return
	}

	var req createScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	amountWei, err := eth.ParseEther(req.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	params := eth.CreateParams{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		AmountWei:   amountWei,
		Slots:       req.Slots,
		Deadline:    req.Deadline,
		TokenFunded: req.TokenFunded,
	}

	scholarship, err := s.chain.CreateScholarship(c.Request.Context(), params)
	if err != nil {
		s.respondChainError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"message":     "scholarship created",
		"scholarship": scholarship,
	})
}

// respondChainError maps the creation error taxonomy onto status codes. An
// unknown status is not a failure, so it answers 202 rather than 5xx.
func (s *Server) respondChainError(c *gin.Context, err error) {
	var revert *eth.RevertError
	switch {
	case errors.Is(err, eth.ErrStatusUnknown):
		c.JSON(http.StatusAccepted, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, eth.ErrAlreadyMirrored):
		respondError(c, http.StatusConflict, err.Error())
	case errors.As(err, &revert):
		respondError(c, http.StatusUnprocessableEntity, revert.Error())
	case errors.Is(err, eth.ErrDeadlineInPast):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Error("[API] Chain write failed: ", err)
		respondError(c, http.StatusBadGateway, err.Error())
	}
}

func buildListFilter(c *gin.Context) (bson.M, error) {
	filter := bson.M{"is_active": true}

	if status := c.Query("status"); status != "" {
		if !models.IsValidScholarshipStatus(status) {
			return nil, errors.New("invalid status filter")
		}
		filter["status"] = status
		delete(filter, "is_active")
	}
	if category := c.Query("category"); category != "" {
		if !models.IsValidCategory(category) {
			return nil, errors.New("invalid category filter")
		}
		filter["category"] = category
	}
	if sponsor := c.Query("sponsor"); sponsor != "" {
		filter["sponsor_address"] = strings.ToLower(sponsor)
	}
	if search := c.Query("search"); search != "" {
		filter["title"] = bson.M{"$regex": search, "$options": "i"}
	}

	amount := bson.M{}
	if min := c.Query("min_amount"); min != "" {
		value, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return nil, errors.New("invalid min_amount filter")
		}
		amount["$gte"] = value
	}
	if max := c.Query("max_amount"); max != "" {
		value, err := strconv.ParseFloat(max, 64)
		if err != nil {
			return nil, errors.New("invalid max_amount filter")
		}
		amount["$lte"] = value
	}
	if len(amount) > 0 {
		filter["amount"] = amount
	}

	return filter, nil
}

func listSort(c *gin.Context) bson.D {
	switch c.Query("sort") {
	case "deadline":
		return bson.D{{Key: "deadline", Value: 1}}
	case "amount":
		return bson.D{{Key: "amount", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// ListScholarships serves the mirror store; it never touches the chain.
func (s *Server) ListScholarships(c *gin.Context) {
	filter, err := buildListFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	page, limit := parsePageLimit(c)

	total, err := app.DB.CountDocuments(models.CollectionScholarships, filter)
	if err != nil {
		log.Error("[API] Error counting scholarships: ", err)
		respondError(c, http.StatusInternalServerError, "failed to list scholarships")
		return
	}

	scholarships := []models.Scholarship{}
	err = app.DB.FindManyPaginated(models.CollectionScholarships, filter, listSort(c), page, limit, &scholarships)
	if err != nil {
		log.Error("[API] Error listing scholarships: ", err)
		respondError(c, http.StatusInternalServerError, "failed to list scholarships")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"scholarships": scholarships,
		"pagination":   newPagination(page, limit, total),
	})
}

func (s *Server) findScholarship(c *gin.Context) (*models.Scholarship, bool) {
	contractId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid scholarship id")
		return nil, false
	}

	var scholarship models.Scholarship
	err = app.DB.FindOne(models.CollectionScholarships, bson.M{"contract_id": contractId}, &scholarship)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "scholarship not found")
			return nil, false
		}
		log.Error("[API] Error finding scholarship: ", err)
		respondError(c, http.StatusInternalServerError, "failed to load scholarship")
		return nil, false
	}
	return &scholarship, true
}

// GetScholarship returns the mirror row, enriched with the live on-chain
// awarded count when the node answers in time. Enrichment is best effort:
// the mirror row is served as-is if the read fails.
func (s *Server) GetScholarship(c *gin.Context) {
	scholarship, ok := s.findScholarship(c)
	if !ok {
		return
	}

	if s.contract != nil {
		opts := &bind.CallOpts{Context: c.Request.Context()}
		info, err := s.contract.GetScholarship(opts, big.NewInt(scholarship.ContractId))
		if err != nil {
			log.Warn("[API] Live read failed for scholarship ", scholarship.ContractId, ": ", err)
		} else {
			scholarship.CurrentRecipients = info.Awarded.Int64()
			if !info.Active && scholarship.Status == models.ScholarshipStatusActive {
				scholarship.Status = models.ScholarshipStatusClosed
			}
		}
	}

	respondOK(c, http.StatusOK, gin.H{"scholarship": scholarship})
}

type updateScholarshipRequest struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// UpdateScholarship mutates mirror-only fields. On-chain fields (title,
// amount, slots, deadline) are immutable after creation.
func (s *Server) UpdateScholarship(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	scholarship, ok := s.findScholarship(c)
	if !ok {
		return
	}
	if !s.ownsScholarship(user, scholarship) {
		respondError(c, http.StatusForbidden, "only the sponsor can update this scholarship")
		return
	}

	var req updateScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Description != nil {
		set["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !models.IsValidCategory(*req.Category) {
			respondError(c, http.StatusBadRequest, "invalid category")
			return
		}
		set["category"] = *req.Category
	}

	err := app.DB.UpdateOne(models.CollectionScholarships, bson.M{"contract_id": scholarship.ContractId}, bson.M{"$set": set})
	if err != nil {
		log.Error("[API] Error updating scholarship: ", err)
		respondError(c, http.StatusInternalServerError, "failed to update scholarship")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "scholarship updated"})
}

// DeleteScholarship deactivates on chain first; the mirror row flips to
// cancelled only after the chain write confirms.
func (s *Server) DeleteScholarship(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	scholarship, ok := s.findScholarship(c)
	if !ok {
		return
	}
	if !s.ownsScholarship(user, scholarship) {
		respondError(c, http.StatusForbidden, "only the sponsor can cancel this scholarship")
		return
	}
	if scholarship.Status == models.ScholarshipStatusCancelled {
		respondError(c, http.StatusConflict, "scholarship is already cancelled")
		return
	}

	txHash, err := s.chain.DeactivateScholarship(c.Request.Context(), scholarship.ContractId)
	if err != nil {
		s.respondChainError(c, err)
		return
	}

	update := bson.M{"$set": bson.M{
		"status":     models.ScholarshipStatusCancelled,
		"is_active":  false,
		"updated_at": time.Now(),
	}}
	err = app.DB.UpdateOne(models.CollectionScholarships, bson.M{"contract_id": scholarship.ContractId}, update)
	if err != nil {
		log.Error("[API] Mirror update failed after on-chain deactivation of ", scholarship.ContractId, ": ", err)
		respondError(c, http.StatusInternalServerError, "deactivated on chain but mirror update failed")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"message":          "scholarship cancelled",
		"transaction_hash": txHash,
	})
}

// MyScholarships lists scholarships sponsored by the caller's wallet.
func (s *Server) MyScholarships(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	scholarships := []models.Scholarship{}
	filter := bson.M{"sponsor_address": strings.ToLower(user.WalletAddress)}
	err := app.DB.FindMany(models.CollectionScholarships, filter, &scholarships)
	if err != nil {
		log.Error("[API] Error listing sponsor scholarships: ", err)
		respondError(c, http.StatusInternalServerError, "failed to list scholarships")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"scholarships": scholarships})
}

type scholarshipStats struct {
	Total       int64   `bson:"total" json:"total"`
	Active      int64   `bson:"active" json:"active"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
	TotalSlots  int64   `bson:"total_slots" json:"total_slots"`
}

type categoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// ScholarshipStats aggregates the mirror store.
func (s *Server) ScholarshipStats(c *gin.Context) {
	totalsPipeline := []bson.M{
		{"$group": bson.M{
			"_id":          nil,
			"total":        bson.M{"$sum": 1},
			"active":       bson.M{"$sum": bson.M{"$cond": []interface{}{"$is_active", 1, 0}}},
			"total_amount": bson.M{"$sum": "$amount"},
			"total_slots":  bson.M{"$sum": "$slots"},
		}},
	}
	totals := []scholarshipStats{}
	if err := app.DB.Aggregate(models.CollectionScholarships, totalsPipeline, &totals); err != nil {
		log.Error("[API] Error aggregating scholarship stats: ", err)
		respondError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	categoriesPipeline := []bson.M{
		{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
	}
	categories := []categoryCount{}
	if err := app.DB.Aggregate(models.CollectionScholarships, categoriesPipeline, &categories); err != nil {
		log.Error("[API] Error aggregating category stats: ", err)
		respondError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	stats := scholarshipStats{}
	if len(totals) > 0 {
		stats = totals[0]
	}

	respondOK(c, http.StatusOK, gin.H{
		"stats":      stats,
		"categories": categories,
	})
}

func (s *Server) ownsScholarship(user *models.User, scholarship *models.Scholarship) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return strings.EqualFold(user.WalletAddress, scholarship.SponsorAddress)
}
