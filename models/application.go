package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionApplications = "applications"
)

// types of application status
const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusApproving = "approving"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

// ApplicationDocument references an uploaded file by its stored name and
// content hash; the binary payload itself is never persisted on the row.
type ApplicationDocument struct {
	FileName     string `bson:"file_name" json:"file_name"`
	OriginalName string `bson:"original_name" json:"original_name"`
	ContentHash  string `bson:"content_hash" json:"content_hash"`
	Size         int64  `bson:"size" json:"size"`
}

type ApplicationReview struct {
	ReviewerId primitive.ObjectID `bson:"reviewer_id" json:"reviewer_id"`
	Score      int64              `bson:"score" json:"score"`
	Notes      string             `bson:"notes" json:"notes"`
	ReviewedAt time.Time          `bson:"reviewed_at" json:"reviewed_at"`
}

type Application struct {
	Id                    *primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ScholarshipContractId int64                 `bson:"scholarship_contract_id" json:"scholarship_contract_id"`
	StudentId             primitive.ObjectID    `bson:"student_id" json:"student_id"`
	StudentAddress        string                `bson:"student_address" json:"student_address"`
	Status                string                `bson:"status" json:"status"`
	Documents             []ApplicationDocument `bson:"documents" json:"documents"`
	Review                *ApplicationReview    `bson:"review,omitempty" json:"review,omitempty"`
	ApproveTxHash         string                `bson:"approve_tx_hash,omitempty" json:"approve_tx_hash,omitempty"`
	IsActive              bool                  `bson:"is_active" json:"is_active"`
	CreatedAt             time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time             `bson:"updated_at" json:"updated_at"`
}
