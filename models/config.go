package models

type Config struct {
	HealthCheck   HealthCheckConfig `yaml:"health_check" json:"health_check"`
	Logger        LoggerConfig      `yaml:"logger" json:"logger"`
	MongoDB       MongoConfig       `yaml:"mongodb" json:"mongo_db"`
	Ethereum      EthereumConfig    `yaml:"ethereum" json:"ethereum"`
	API           APIConfig         `yaml:"api" json:"api"`
	Auth          AuthConfig        `yaml:"auth" json:"auth"`
	Uploads       UploadsConfig     `yaml:"uploads" json:"uploads"`
	MirrorMonitor ServiceConfig     `yaml:"mirror_monitor" json:"mirror_monitor"`
}

type HealthCheckConfig struct {
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}

type LoggerConfig struct {
	Level string `yaml:"level" json:"level"`
}

type MongoConfig struct {
	URI           string `yaml:"uri" json:"uri"`
	Database      string `yaml:"database" json:"database"`
	TimeoutMillis int64  `yaml:"timeout_ms" json:"timeout_ms"`
}

type EthereumConfig struct {
	StartBlockNumber          int64  `yaml:"start_block_number" json:"start_block_number"`
	Confirmations             int64  `yaml:"confirmations" json:"confirmations"`
	PrivateKey                string `yaml:"private_key" json:"private_key"`
	RPCURL                    string `yaml:"rpc_url" json:"rpcurl"`
	RPCTimeoutMillis          int64  `yaml:"rpc_timeout_ms" json:"rpc_timeout_ms"`
	ReceiptTimeoutMillis      int64  `yaml:"receipt_timeout_ms" json:"receipt_timeout_ms"`
	ReceiptPollIntervalMillis int64  `yaml:"receipt_poll_interval_ms" json:"receipt_poll_interval_ms"`
	ChainID                   string `yaml:"chain_id" json:"chain_id"`
	ScholarshipManagerAddress string `yaml:"scholarship_manager_address" json:"scholarship_manager_address"`
	TokenAddress              string `yaml:"token_address" json:"token_address"`
}

type APIConfig struct {
	Port           uint64   `yaml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret" json:"jwt_secret"`
	JWTExpiryHours int64  `yaml:"jwt_expiry_hours" json:"jwt_expiry_hours"`
}

type UploadsConfig struct {
	Dir          string `yaml:"dir" json:"dir"`
	MaxSizeBytes int64  `yaml:"max_size_bytes" json:"max_size_bytes"`
}

type ServiceConfig struct {
	Enabled        bool  `yaml:"enabled" json:"enabled"`
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}
