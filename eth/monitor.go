package eth

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/eth/client"
	"github.com/scholarchain/scholarchain-backend/models"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	MirrorMonitorName       = "mirror monitor"
	MAX_QUERY_BLOCKS  int64 = 100000
)

// MirrorMonitorService re-scans ScholarshipCreated events and backfills
// missing mirror rows. It is the recovery path for confirmation timeouts and
// for mirror writes that failed after the chain had already committed.
type MirrorMonitorService struct {
	wg                 *sync.WaitGroup
	stop               chan bool
	startBlockNumber   int64
	currentBlockNumber int64
	confirmations      int64
	interval           time.Duration
	contract           client.ScholarshipManagerContract
	client             client.EthereumClient

	healthMu sync.RWMutex
	health   models.ServiceHealth
}

func (m *MirrorMonitorService) Start() {
	log.Info("[MIRROR MONITOR] Starting service")
	stop := false
	for !stop {
		log.Info("[MIRROR MONITOR] Starting sync")

		m.UpdateCurrentBlockNumber()

		if (m.currentBlockNumber - m.startBlockNumber) > 0 {
			success := m.SyncTxs()
			if success {
				m.startBlockNumber = m.currentBlockNumber
			}
		} else {
			log.Info("[MIRROR MONITOR] No new blocks to sync")
		}

		m.UpdateHealth()

		log.Info("[MIRROR MONITOR] Finished sync, Sleeping for ", m.interval)

		select {
		case <-m.stop:
			stop = true
			log.Info("[MIRROR MONITOR] Stopped service")
		case <-time.After(m.interval):
		}
	}
	m.wg.Done()
}

func (m *MirrorMonitorService) Health() models.ServiceHealth {
	m.healthMu.RLock()
	defer m.healthMu.RUnlock()

	return m.health
}

func (m *MirrorMonitorService) UpdateHealth() {
	m.healthMu.Lock()
	defer m.healthMu.Unlock()

	lastSyncTime := time.Now()

	m.health = models.ServiceHealth{
		Name:           MirrorMonitorName,
		LastSyncTime:   lastSyncTime,
		NextSyncTime:   lastSyncTime.Add(m.interval),
		EthBlockNumber: strconv.FormatInt(m.startBlockNumber, 10),
		Healthy:        true,
	}
}

func (m *MirrorMonitorService) Stop() {
	log.Debug("[MIRROR MONITOR] Stopping service")
	m.stop <- true
}

func (m *MirrorMonitorService) InitStartBlockNumber(startBlockNumber int64) {
	if startBlockNumber > 0 {
		m.startBlockNumber = startBlockNumber
	} else {
		log.Warn("[MIRROR MONITOR] Found invalid start block number, updating to current block number")
		m.startBlockNumber = m.currentBlockNumber
	}

	log.Info("[MIRROR MONITOR] Start block number: ", m.startBlockNumber)
}

// UpdateCurrentBlockNumber reads the head and holds back the configured
// number of confirmations.
func (m *MirrorMonitorService) UpdateCurrentBlockNumber() {
	res, err := m.client.GetBlockNumber()
	if err != nil {
		log.Error(err)
		return
	}
	m.currentBlockNumber = int64(res) - m.confirmations
	if m.currentBlockNumber < 0 {
		m.currentBlockNumber = 0
	}
	log.Info("[MIRROR MONITOR] Current block number: ", m.currentBlockNumber)
}

// HandleCreatedEvent backfills one mirror row for a creation event. A
// duplicate key means the row already exists, which makes re-processing the
// same receipt a no-op.
func (m *MirrorMonitorService) HandleCreatedEvent(event *client.ScholarshipCreated) bool {
	if event == nil {
		log.Error("[MIRROR MONITOR] Invalid event")
		return false
	}

	log.Debug("[MIRROR MONITOR] Handling created event: ", event.Raw.TxHash, " ", event.Raw.Index)

	doc := ScholarshipFromEvent(event)
	err := app.DB.InsertOne(models.CollectionScholarships, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Debug("[MIRROR MONITOR] Mirror row already exists for id: ", doc.ContractId)
			return true
		}
		log.Error("[MIRROR MONITOR] Error while backfilling mirror row: ", err)
		return false
	}

	log.Info("[MIRROR MONITOR] Backfilled mirror row for id: ", doc.ContractId)
	return true
}

// ScholarshipFromEvent builds a mirror row from the on-chain facts the event
// carries; fields the event does not carry stay at their defaults.
func ScholarshipFromEvent(event *client.ScholarshipCreated) *models.Scholarship {
	now := time.Now()
	return &models.Scholarship{
		ContractId:     event.Id.Int64(),
		Title:          event.Title,
		Category:       "other",
		SponsorAddress: strings.ToLower(event.Sponsor.Hex()),
		AmountWei:      event.Amount.String(),
		Amount:         models.EtherValue(event.Amount.String()),
		Slots:          event.Slots.Int64(),
		Deadline:       event.Deadline.Int64(),
		Status:         models.ScholarshipStatusActive,
		IsActive:       true,
		ChainTx: models.ChainTx{
			TransactionHash: event.Raw.TxHash.Hex(),
			BlockNumber:     int64(event.Raw.BlockNumber),
			IdDerivation:    models.IdDerivationEvent,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *MirrorMonitorService) SyncBlocks(startBlockNumber uint64, endBlockNumber uint64) bool {
	filter, err := m.contract.FilterScholarshipCreated(&bind.FilterOpts{
		Start: startBlockNumber,
		End:   &endBlockNumber,
	})
	if err != nil {
		log.Errorln("[MIRROR MONITOR] Error while syncing created events: ", err)
		return false
	}
	defer filter.Close()

	var success bool = true
	for filter.Next() {
		success = success && m.HandleCreatedEvent(filter.Event())
	}
	if err := filter.Error(); err != nil {
		log.Errorln("[MIRROR MONITOR] Error while iterating created events: ", err)
		return false
	}
	return success
}

func (m *MirrorMonitorService) SyncTxs() bool {
	var success bool = true
	if (m.currentBlockNumber - m.startBlockNumber) > MAX_QUERY_BLOCKS {
		log.Debug("[MIRROR MONITOR] Syncing created events in chunks")
		for i := m.startBlockNumber; i < m.currentBlockNumber; i += MAX_QUERY_BLOCKS {
			endBlockNumber := i + MAX_QUERY_BLOCKS
			if endBlockNumber > m.currentBlockNumber {
				endBlockNumber = m.currentBlockNumber
			}
			log.Info("[MIRROR MONITOR] Syncing created events from blockNumber: ", i, " to blockNumber: ", endBlockNumber)
			success = success && m.SyncBlocks(uint64(i), uint64(endBlockNumber))
		}
	} else {
		log.Info("[MIRROR MONITOR] Syncing created events from blockNumber: ", m.startBlockNumber, " to blockNumber: ", m.currentBlockNumber)
		success = success && m.SyncBlocks(uint64(m.startBlockNumber), uint64(m.currentBlockNumber))
	}
	return success
}

func NewMirrorMonitor(wg *sync.WaitGroup, ethClient client.EthereumClient) models.Service {
	if !app.Config.MirrorMonitor.Enabled {
		log.Debug("[MIRROR MONITOR] Mirror monitor disabled")
		return models.NewEmptyService(wg)
	}

	log.Debug("[MIRROR MONITOR] Initializing mirror monitor")

	contract, err := client.NewScholarshipManagerContract(common.HexToAddress(app.Config.Ethereum.ScholarshipManagerAddress), ethClient.GetClient())
	if err != nil {
		log.Fatal("[MIRROR MONITOR] Error initializing scholarship manager contract: ", err)
	}

	m := &MirrorMonitorService{
		wg:                 wg,
		stop:               make(chan bool),
		startBlockNumber:   0,
		currentBlockNumber: 0,
		confirmations:      app.Config.Ethereum.Confirmations,
		interval:           time.Duration(app.Config.MirrorMonitor.IntervalMillis) * time.Millisecond,
		contract:           contract,
		client:             ethClient,
	}

	m.UpdateCurrentBlockNumber()
	m.InitStartBlockNumber(app.Config.Ethereum.StartBlockNumber)

	log.Info("[MIRROR MONITOR] Initialized mirror monitor")

	return m
}
