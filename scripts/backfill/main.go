package main

import (
	"flag"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/eth"
	"github.com/scholarchain/scholarchain-backend/eth/client"
	"github.com/scholarchain/scholarchain-backend/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// backfill re-scans a block range for creation events and inserts any mirror
// rows the live services missed. Safe to run repeatedly: existing rows are
// skipped through the unique index on contract_id.
func main() {
	configPath := flag.String("config", "", "path to yml config file")
	envPath := flag.String("env", "", "path to env file")
	start := flag.Int64("start", 0, "first block to scan")
	end := flag.Int64("end", 0, "last block to scan, 0 means current head")
	flag.Parse()

	app.InitConfig(*configPath, *envPath)
	app.InitLogger()
	app.InitDB()
	defer app.DB.Disconnect()

	ethClient, err := client.NewClient()
	if err != nil {
		log.Fatal("[BACKFILL] Error connecting to chain: ", err)
	}

	contract, err := client.NewScholarshipManagerContract(
		common.HexToAddress(app.Config.Ethereum.ScholarshipManagerAddress), ethClient.GetClient())
	if err != nil {
		log.Fatal("[BACKFILL] Error binding scholarship manager contract: ", err)
	}

	endBlock := *end
	if endBlock == 0 {
		head, err := ethClient.GetBlockNumber()
		if err != nil {
			log.Fatal("[BACKFILL] Error reading block number: ", err)
		}
		endBlock = int64(head)
	}
	if *start > endBlock {
		log.Fatal("[BACKFILL] Start block is after end block")
	}

	log.Info("[BACKFILL] Scanning blocks ", *start, " to ", endBlock)

	var inserted, skipped, failed int64
	for from := *start; from <= endBlock; from += eth.MAX_QUERY_BLOCKS {
		to := from + eth.MAX_QUERY_BLOCKS - 1
		if to > endBlock {
			to = endBlock
		}

		chunkEnd := uint64(to)
		filter, err := contract.FilterScholarshipCreated(&bind.FilterOpts{
			Start: uint64(from),
			End:   &chunkEnd,
		})
		if err != nil {
			log.Fatal("[BACKFILL] Error filtering events: ", err)
		}

		for filter.Next() {
			event := filter.Event()
			switch insertMirrorRow(event) {
			case backfillInserted:
				inserted++
			case backfillSkipped:
				skipped++
			default:
				failed++
			}
		}
		if err := filter.Error(); err != nil {
			filter.Close()
			log.Fatal("[BACKFILL] Error iterating events: ", err)
		}
		filter.Close()
	}

	log.Info("[BACKFILL] Done: inserted ", inserted, ", skipped ", skipped, ", failed ", failed)
}

type backfillResult int

const (
	backfillInserted backfillResult = iota
	backfillSkipped
	backfillFailed
)

func insertMirrorRow(event *client.ScholarshipCreated) backfillResult {
	var existing models.Scholarship
	err := app.DB.FindOne(models.CollectionScholarships, bson.M{"contract_id": event.Id.Int64()}, &existing)
	if err == nil {
		return backfillSkipped
	}

	doc := eth.ScholarshipFromEvent(event)
	if err := app.DB.InsertOne(models.CollectionScholarships, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return backfillSkipped
		}
		log.Error("[BACKFILL] Error inserting mirror row for id ", doc.ContractId, ": ", err)
		return backfillFailed
	}

	log.Info("[BACKFILL] Inserted mirror row for id ", doc.ContractId)
	return backfillInserted
}
