package app

import (
	"crypto/ecdsa"
	"os"
	"sync"
	"time"

	"github.com/scholarchain/scholarchain-backend/models"
	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

const HealthServiceName = "health"

type HealthService struct {
	wg         *sync.WaitGroup
	stop       chan bool
	ethAddress string
	hostname   string
	interval   time.Duration
	services   []models.Service

	healthMu sync.RWMutex
	health   models.ServiceHealth
}

func (b *HealthService) Stop() {
	log.Debug("[HEALTH] Stopping health")
	b.stop <- true
}

// SetServices registers the services whose healths are posted with each heartbeat.
func (b *HealthService) SetServices(services []models.Service) {
	b.services = services
}

func (b *HealthService) ServiceHealths() []models.ServiceHealth {
	var serviceHealths []models.ServiceHealth
	for _, service := range b.services {
		serviceHealths = append(serviceHealths, service.Health())
	}
	return serviceHealths
}

func (b *HealthService) PostHealth() bool {
	log.Debug("[HEALTH] Posting health")

	filter := bson.M{
		"eth_address": b.ethAddress,
		"hostname":    b.hostname,
	}
	update := bson.M{
		"$set": bson.M{
			"eth_address":     b.ethAddress,
			"hostname":        b.hostname,
			"service_healths": b.ServiceHealths(),
			"updated_at":      time.Now(),
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now(),
		},
	}

	err := DB.UpsertOne(models.CollectionHealthChecks, filter, update)
	if err != nil {
		log.Error("[HEALTH] Error posting health: ", err)
		return false
	}

	log.Info("[HEALTH] Posted health")
	return true
}

func (b *HealthService) Health() models.ServiceHealth {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()

	return b.health
}

func (b *HealthService) UpdateHealth() {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()

	lastSyncTime := time.Now()

	b.health = models.ServiceHealth{
		Name:         HealthServiceName,
		LastSyncTime: lastSyncTime,
		NextSyncTime: lastSyncTime.Add(b.interval),
		Healthy:      true,
	}
}

func (b *HealthService) Start() {
	log.Info("[HEALTH] Starting service")
	stop := false
	for !stop {
		log.Debug("[HEALTH] Starting health sync")

		b.PostHealth()
		b.UpdateHealth()

		log.Debug("[HEALTH] Finished health sync, Sleeping for ", b.interval)

		select {
		case <-b.stop:
			stop = true
			log.Info("[HEALTH] Stopped service")
		case <-time.After(b.interval):
		}
	}
	b.wg.Done()
}

func NewHealthCheck(wg *sync.WaitGroup) *HealthService {
	log.Debug("[HEALTH] Initializing health")

	privateKey, err := ethCrypto.HexToECDSA(Config.Ethereum.PrivateKey)
	if err != nil {
		log.Fatal("[HEALTH] Error loading private key: ", err)
	}

	publicKey := privateKey.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		log.Fatal("[HEALTH] Error casting public key to ECDSA")
	}
	address := ethCrypto.PubkeyToAddress(*publicKeyECDSA).Hex()

	hostname, err := os.Hostname()
	if err != nil {
		log.Warn("[HEALTH] Error getting hostname: ", err)
		hostname = "unknown"
	}

	b := &HealthService{
		wg:         wg,
		stop:       make(chan bool),
		interval:   time.Duration(Config.HealthCheck.IntervalMillis) * time.Millisecond,
		ethAddress: address,
		hostname:   hostname,
	}

	log.Info("[HEALTH] Initialized health")

	return b
}
