package eth

import (
	"github.com/scholarchain/scholarchain-backend/eth/client"
	"github.com/ethereum/go-ethereum/core/types"
)

// FindScholarshipCreated scans receipt logs in order and returns the first
// one that decodes as a ScholarshipCreated event, or nil when none does.
// Individual decode failures are expected (logs from unrelated contracts or
// topics) and simply mean "try the next log".
func FindScholarshipCreated(logs []*types.Log, contract client.ScholarshipManagerContract) *client.ScholarshipCreated {
	for _, entry := range logs {
		if entry == nil {
			continue
		}
		event, err := contract.ParseScholarshipCreated(*entry)
		if err != nil {
			continue
		}
		return event
	}
	return nil
}
