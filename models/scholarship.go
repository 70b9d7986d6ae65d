package models

import (
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionScholarships = "scholarships"
)

// types of scholarship status
const (
	ScholarshipStatusDraft     = "draft"
	ScholarshipStatusActive    = "active"
	ScholarshipStatusClosed    = "closed"
	ScholarshipStatusCancelled = "cancelled"
)

// how the on-chain id was derived after creation
const (
	IdDerivationEvent   = "event"
	IdDerivationCounter = "counter"
)

var ScholarshipCategories = []string{
	"academic",
	"financial",
	"merit",
	"research",
	"sports",
	"arts",
	"other",
}

func IsValidCategory(category string) bool {
	for _, c := range ScholarshipCategories {
		if c == category {
			return true
		}
	}
	return false
}

func IsValidScholarshipStatus(status string) bool {
	switch status {
	case ScholarshipStatusDraft, ScholarshipStatusActive, ScholarshipStatusClosed, ScholarshipStatusCancelled:
		return true
	}
	return false
}

// ChainTx records provenance of the on-chain write that produced a mirror row.
// It is never re-validated against the chain after the initial write.
type ChainTx struct {
	TransactionHash string `bson:"transaction_hash" json:"transaction_hash"`
	BlockNumber     int64  `bson:"block_number" json:"block_number"`
	GasUsed         uint64 `bson:"gas_used" json:"gas_used"`
	IdDerivation    string `bson:"id_derivation" json:"id_derivation"`
}

// Scholarship is a mirror row keyed by the on-chain id. The chain is the
// system of record for funds and slot counts; this row exists for fast
// listing and filtering only.
type Scholarship struct {
	Id                *primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ContractId        int64               `bson:"contract_id" json:"contract_id"`
	Title             string              `bson:"title" json:"title"`
	Description       string              `bson:"description" json:"description"`
	Category          string              `bson:"category" json:"category"`
	SponsorAddress    string              `bson:"sponsor_address" json:"sponsor_address"`
	AmountWei         string              `bson:"amount_wei" json:"amount_wei"`
	Amount            float64             `bson:"amount" json:"amount"`
	Slots             int64               `bson:"slots" json:"slots"`
	CurrentRecipients int64               `bson:"current_recipients" json:"current_recipients"`
	Deadline          int64               `bson:"deadline" json:"deadline"`
	Status            string              `bson:"status" json:"status"`
	IsActive          bool                `bson:"is_active" json:"is_active"`
	ChainTx           ChainTx             `bson:"chain_tx" json:"chain_tx"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updated_at"`
}

var weiPerEther = new(big.Float).SetFloat64(1e18)

// EtherValue converts a wei amount string to an approximate ether value used
// for range filtering and sorting. The wei string remains the precise value.
func EtherValue(amountWei string) float64 {
	wei, ok := new(big.Float).SetString(amountWei)
	if !ok {
		return 0
	}
	value, _ := new(big.Float).Quo(wei, weiPerEther).Float64()
	return value
}
