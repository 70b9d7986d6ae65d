package app

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func readConfigFromENV(envFile string) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil {
			log.Warn("[ENV] Error loading .env file: ", err.Error())
		}
	}

	// mongodb
	if os.Getenv("MONGODB_URI") != "" {
		Config.MongoDB.URI = os.Getenv("MONGODB_URI")
	}
	if os.Getenv("MONGODB_DATABASE") != "" {
		Config.MongoDB.Database = os.Getenv("MONGODB_DATABASE")
	}
	if os.Getenv("MONGODB_TIMEOUT_MS") != "" {
		timeoutMillis, err := strconv.ParseInt(os.Getenv("MONGODB_TIMEOUT_MS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing MONGODB_TIMEOUT_MS: ", err.Error())
		} else {
			Config.MongoDB.TimeoutMillis = timeoutMillis
		}
	}

	// ethereum
	if os.Getenv("ETH_RPC_URL") != "" {
		Config.Ethereum.RPCURL = os.Getenv("ETH_RPC_URL")
	}
	if os.Getenv("ETH_CHAIN_ID") != "" {
		Config.Ethereum.ChainID = os.Getenv("ETH_CHAIN_ID")
	}
	if os.Getenv("ETH_PRIVATE_KEY") != "" {
		Config.Ethereum.PrivateKey = os.Getenv("ETH_PRIVATE_KEY")
	}
	if os.Getenv("ETH_SCHOLARSHIP_MANAGER_ADDRESS") != "" {
		Config.Ethereum.ScholarshipManagerAddress = os.Getenv("ETH_SCHOLARSHIP_MANAGER_ADDRESS")
	}
	if os.Getenv("ETH_TOKEN_ADDRESS") != "" {
		Config.Ethereum.TokenAddress = os.Getenv("ETH_TOKEN_ADDRESS")
	}
	if os.Getenv("ETH_START_BLOCK_NUMBER") != "" {
		blockNumber, err := strconv.ParseInt(os.Getenv("ETH_START_BLOCK_NUMBER"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing ETH_START_BLOCK_NUMBER: ", err.Error())
		} else {
			Config.Ethereum.StartBlockNumber = blockNumber
		}
	}
	if os.Getenv("ETH_CONFIRMATIONS") != "" {
		confirmations, err := strconv.ParseInt(os.Getenv("ETH_CONFIRMATIONS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing ETH_CONFIRMATIONS: ", err.Error())
		} else {
			Config.Ethereum.Confirmations = confirmations
		}
	}

	// api
	if os.Getenv("API_PORT") != "" {
		port, err := strconv.ParseUint(os.Getenv("API_PORT"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing API_PORT: ", err.Error())
		} else {
			Config.API.Port = port
		}
	}
	if os.Getenv("CORS_ALLOWED_ORIGINS") != "" {
		var origins []string
		for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
			if o := strings.TrimSpace(origin); o != "" {
				origins = append(origins, o)
			}
		}
		Config.API.AllowedOrigins = origins
	}

	// auth
	if os.Getenv("JWT_SECRET") != "" {
		Config.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if os.Getenv("JWT_EXPIRY_HOURS") != "" {
		expiry, err := strconv.ParseInt(os.Getenv("JWT_EXPIRY_HOURS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing JWT_EXPIRY_HOURS: ", err.Error())
		} else {
			Config.Auth.JWTExpiryHours = expiry
		}
	}

	// uploads
	if os.Getenv("UPLOADS_DIR") != "" {
		Config.Uploads.Dir = os.Getenv("UPLOADS_DIR")
	}
	if os.Getenv("UPLOADS_MAX_SIZE_BYTES") != "" {
		maxSize, err := strconv.ParseInt(os.Getenv("UPLOADS_MAX_SIZE_BYTES"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing UPLOADS_MAX_SIZE_BYTES: ", err.Error())
		} else {
			Config.Uploads.MaxSizeBytes = maxSize
		}
	}
}
