package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/eth"
	"github.com/scholarchain/scholarchain-backend/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxDocumentsPerApplication = 5

// SubmitApplication accepts a multipart form with a scholarship_id field and
// up to five supporting documents. One application per scholarship per
// student, enforced by the unique index.
func (s *Server) SubmitApplication(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	contractId, err := strconv.ParseInt(c.PostForm("scholarship_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "scholarship_id is required")
		return
	}

	var scholarship models.Scholarship
	err = app.DB.FindOne(models.CollectionScholarships, bson.M{"contract_id": contractId}, &scholarship)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "scholarship not found")
			return
		}
		log.Error("[API] Error finding scholarship: ", err)
		respondError(c, http.StatusInternalServerError, "failed to submit application")
		return
	}
	if !scholarship.IsActive || scholarship.Status != models.ScholarshipStatusActive {
		respondError(c, http.StatusConflict, "scholarship is not accepting applications")
		return
	}
	if scholarship.Deadline <= time.Now().Unix() {
		respondError(c, http.StatusConflict, "scholarship deadline has passed")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := form.File["documents"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "at least one document is required")
		return
	}
	if len(files) > maxDocumentsPerApplication {
		respondError(c, http.StatusBadRequest, "too many documents")
		return
	}

	documents := []models.ApplicationDocument{}
	for _, header := range files {
		doc, err := saveUpload(header)
		if err != nil {
			removeUploads(documents)
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		documents = append(documents, doc)
	}

	now := time.Now()
	application := &models.Application{
		ScholarshipContractId: contractId,
		StudentId:             *user.Id,
		StudentAddress:        user.WalletAddress,
		Status:                models.ApplicationStatusSubmitted,
		Documents:             documents,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := app.DB.InsertOne(models.CollectionApplications, application); err != nil {
		removeUploads(documents)
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "you have already applied to this scholarship")
			return
		}
		log.Error("[API] Error creating application: ", err)
		respondError(c, http.StatusInternalServerError, "failed to submit application")
		return
	}

	log.Info("[API] Application submitted for scholarship ", contractId, " by ", user.Id.Hex())
	respondOK(c, http.StatusCreated, gin.H{
		"message":     "application submitted",
		"application": application,
	})
}

// MyApplications lists the caller's own applications.
func (s *Server) MyApplications(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	applications := []models.Application{}
	err := app.DB.FindMany(models.CollectionApplications, bson.M{"student_id": user.Id}, &applications)
	if err != nil {
		log.Error("[API] Error listing applications: ", err)
		respondError(c, http.StatusInternalServerError, "failed to list applications")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"applications": applications})
}

// ScholarshipApplications lists applications for one scholarship; only its
// sponsor or an admin may review the pipeline.
func (s *Server) ScholarshipApplications(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	scholarship, ok := s.findScholarship(c)
	if !ok {
		return
	}
	if !s.ownsScholarship(user, scholarship) {
		respondError(c, http.StatusForbidden, "only the sponsor can view applications")
		return
	}

	filter := bson.M{"scholarship_contract_id": scholarship.ContractId}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	applications := []models.Application{}
	if err := app.DB.FindMany(models.CollectionApplications, filter, &applications); err != nil {
		log.Error("[API] Error listing applications: ", err)
		respondError(c, http.StatusInternalServerError, "failed to list applications")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"applications": applications})
}

func (s *Server) findApplication(c *gin.Context) (*models.Application, bool) {
	applicationId, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid application id")
		return nil, false
	}

	var application models.Application
	err = app.DB.FindOne(models.CollectionApplications, bson.M{"_id": applicationId}, &application)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "application not found")
			return nil, false
		}
		log.Error("[API] Error finding application: ", err)
		respondError(c, http.StatusInternalServerError, "failed to load application")
		return nil, false
	}
	return &application, true
}

// GetApplication returns one application to its student or to the
// scholarship's sponsor.
func (s *Server) GetApplication(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	application, ok := s.findApplication(c)
	if !ok {
		return
	}

	if application.StudentId != *user.Id {
		var scholarship models.Scholarship
		err := app.DB.FindOne(models.CollectionScholarships,
			bson.M{"contract_id": application.ScholarshipContractId}, &scholarship)
		if err != nil || !s.ownsScholarship(user, &scholarship) {
			respondError(c, http.StatusForbidden, "not allowed to view this application")
			return
		}
	}

	respondOK(c, http.StatusOK, gin.H{"application": application})
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Score    int64  `json:"score"`
	Notes    string `json:"notes"`
}

// ReviewApplication approves or rejects a submitted application. Approval
// moves the row to "approving" before the on-chain disbursement is submitted
// and records the transaction hash once it confirms, so the same application
// can never be paid out twice.
func (s *Server) ReviewApplication(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	application, ok := s.findApplication(c)
	if !ok {
		return
	}

	var scholarship models.Scholarship
	err := app.DB.FindOne(models.CollectionScholarships,
		bson.M{"contract_id": application.ScholarshipContractId}, &scholarship)
	if err != nil {
		log.Error("[API] Error finding scholarship for review: ", err)
		respondError(c, http.StatusInternalServerError, "failed to review application")
		return
	}
	if !s.ownsScholarship(user, &scholarship) {
		respondError(c, http.StatusForbidden, "only the sponsor can review applications")
		return
	}
	if application.Status != models.ApplicationStatusSubmitted {
		if application.Status == models.ApplicationStatusApproving {
			respondError(c, http.StatusConflict, "an approval for this application is already in flight")
			return
		}
		respondError(c, http.StatusConflict, "application has already been decided")
		return
	}
	if application.ApproveTxHash != "" {
		respondError(c, http.StatusConflict, "application has already been disbursed on chain")
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		respondError(c, http.StatusBadRequest, "score must be between 0 and 100")
		return
	}

	var status string
	switch req.Decision {
	case "approve":
		status = models.ApplicationStatusApproved
	case "reject":
		status = models.ApplicationStatusRejected
	default:
		respondError(c, http.StatusBadRequest, "decision must be approve or reject")
		return
	}

	now := time.Now()
	review := models.ApplicationReview{
		ReviewerId: *user.Id,
		Score:      req.Score,
		Notes:      req.Notes,
		ReviewedAt: now,
	}

	if status == models.ApplicationStatusRejected {
		err = app.DB.UpdateOne(models.CollectionApplications, bson.M{"_id": application.Id},
			bson.M{"$set": bson.M{"status": status, "review": review, "updated_at": now}})
		if err != nil {
			log.Error("[API] Error updating application: ", err)
			respondError(c, http.StatusInternalServerError, "failed to update application")
			return
		}
		log.Info("[API] Application ", application.Id.Hex(), " ", status)
		respondOK(c, http.StatusOK, gin.H{"message": "application " + status})
		return
	}

	if !common.IsHexAddress(application.StudentAddress) {
		respondError(c, http.StatusConflict, "applicant has no valid wallet address")
		return
	}

	// Mark the row before touching the chain. A row that is not "submitted"
	// can never reach the disbursement call again, so a mirror write failure
	// after confirmation cannot turn a retried review into a second payout.
	err = app.DB.UpdateOne(models.CollectionApplications,
		bson.M{"_id": application.Id, "status": models.ApplicationStatusSubmitted},
		bson.M{"$set": bson.M{"status": models.ApplicationStatusApproving, "review": review, "updated_at": now}})
	if err != nil {
		log.Error("[API] Error marking application for approval: ", err)
		respondError(c, http.StatusInternalServerError, "failed to update application")
		return
	}

	txHash, err := s.chain.ApproveApplication(c.Request.Context(),
		application.ScholarshipContractId, common.HexToAddress(application.StudentAddress))
	if err != nil {
		if !errors.Is(err, eth.ErrStatusUnknown) {
			// the transaction definitively did not take effect, release the
			// row for another attempt
			if rollbackErr := app.DB.UpdateOne(models.CollectionApplications, bson.M{"_id": application.Id},
				bson.M{"$set": bson.M{"status": models.ApplicationStatusSubmitted, "updated_at": time.Now()}}); rollbackErr != nil {
				log.Error("[API] Error releasing application ", application.Id.Hex(), " after failed approval: ", rollbackErr)
			}
		}
		s.respondChainError(c, err)
		return
	}

	err = app.DB.UpdateOne(models.CollectionScholarships,
		bson.M{"contract_id": scholarship.ContractId},
		bson.M{"$inc": bson.M{"current_recipients": 1}, "$set": bson.M{"updated_at": now}})
	if err != nil {
		log.Error("[API] Error updating recipient count for scholarship ", scholarship.ContractId, ": ", err)
	}

	err = app.DB.UpdateOne(models.CollectionApplications, bson.M{"_id": application.Id},
		bson.M{"$set": bson.M{"status": models.ApplicationStatusApproved, "approve_tx_hash": txHash, "updated_at": now}})
	if err != nil {
		log.Error("[API] Mirror write failed after on-chain approval ", txHash,
			" for application ", application.Id.Hex(), ": ", err)
		respondError(c, http.StatusInternalServerError,
			"approval confirmed on chain but the application record could not be updated")
		return
	}

	log.Info("[API] Application ", application.Id.Hex(), " approved, tx ", txHash)
	respondOK(c, http.StatusOK, gin.H{"message": "application approved", "tx_hash": txHash})
}

// WithdrawApplication lets a student retract a still-pending application.
func (s *Server) WithdrawApplication(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	application, ok := s.findApplication(c)
	if !ok {
		return
	}
	if application.StudentId != *user.Id {
		respondError(c, http.StatusForbidden, "not allowed to withdraw this application")
		return
	}
	if application.Status != models.ApplicationStatusSubmitted {
		respondError(c, http.StatusConflict, "only pending applications can be withdrawn")
		return
	}

	update := bson.M{"$set": bson.M{
		"status":     models.ApplicationStatusWithdrawn,
		"is_active":  false,
		"updated_at": time.Now(),
	}}
	if err := app.DB.UpdateOne(models.CollectionApplications, bson.M{"_id": application.Id}, update); err != nil {
		log.Error("[API] Error withdrawing application: ", err)
		respondError(c, http.StatusInternalServerError, "failed to withdraw application")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "application withdrawn"})
}
