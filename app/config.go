package app

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/scholarchain/scholarchain-backend/models"
	"gopkg.in/yaml.v2"
)

var (
	Config models.Config
)

func InitConfig(configFile string, envFile string) {
	readConfigFromConfigFile(configFile)
	readConfigFromENV(envFile)
	validateConfig()
}

func readConfigFromConfigFile(configFile string) bool {
	if configFile == "" {
		log.Debug("[CONFIG] No config file provided")
		return false
	}
	log.Debug("[CONFIG] Reading config file: ", configFile)
	var yamlFile, err = os.ReadFile(configFile)
	if err != nil {
		log.Fatalf("[CONFIG] Error reading config file %q: %s\n", configFile, err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &Config)
	if err != nil {
		log.Fatalf("[CONFIG] Error unmarshalling config file %q: %s\n", configFile, err.Error())
	}
	return true
}

func validateConfig() {
	log.Debug("[CONFIG] Validating config")
	if Config.MongoDB.URI == "" {
		log.Fatal("[CONFIG] MongoDB.URI is required")
	}
	if Config.MongoDB.Database == "" {
		log.Fatal("[CONFIG] MongoDB.Database is required")
	}
	if Config.MongoDB.TimeoutMillis == 0 {
		log.Fatal("[CONFIG] MongoDB.TimeoutMillis is required")
	}
	if Config.Ethereum.RPCURL == "" {
		log.Fatal("[CONFIG] Ethereum.RPCURL is required")
	}
	if Config.Ethereum.ChainID == "" {
		log.Fatal("[CONFIG] Ethereum.ChainID is required")
	}
	if Config.Ethereum.PrivateKey == "" {
		log.Fatal("[CONFIG] Ethereum.PrivateKey is required")
	}
	if Config.Ethereum.ScholarshipManagerAddress == "" {
		log.Fatal("[CONFIG] Ethereum.ScholarshipManagerAddress is required")
	}
	if Config.Ethereum.RPCTimeoutMillis == 0 {
		log.Fatal("[CONFIG] Ethereum.RPCTimeoutMillis is required")
	}
	if Config.Ethereum.ReceiptTimeoutMillis == 0 {
		log.Fatal("[CONFIG] Ethereum.ReceiptTimeoutMillis is required")
	}
	if Config.Ethereum.ReceiptPollIntervalMillis == 0 {
		log.Fatal("[CONFIG] Ethereum.ReceiptPollIntervalMillis is required")
	}
	if Config.API.Port == 0 {
		log.Fatal("[CONFIG] API.Port is required")
	}
	if Config.Auth.JWTSecret == "" {
		log.Fatal("[CONFIG] Auth.JWTSecret is required")
	}
	if Config.Auth.JWTExpiryHours == 0 {
		log.Fatal("[CONFIG] Auth.JWTExpiryHours is required")
	}
	if Config.Uploads.Dir == "" {
		log.Fatal("[CONFIG] Uploads.Dir is required")
	}
	if Config.Uploads.MaxSizeBytes == 0 {
		log.Fatal("[CONFIG] Uploads.MaxSizeBytes is required")
	}
	if Config.MirrorMonitor.Enabled && Config.MirrorMonitor.IntervalMillis == 0 {
		log.Fatal("[CONFIG] MirrorMonitor.IntervalMillis is required")
	}
	if Config.HealthCheck.IntervalMillis == 0 {
		log.Fatal("[CONFIG] HealthCheck.IntervalMillis is required")
	}
	log.Info("[CONFIG] Config validated")
}
