package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// PgUserKey, PgPasswordKey, PgHostKey, PgPortKey and PgDbNameKey
	// configure the connection to postgres when DB_TYPE is postgres
	PgUserKey     = "PG_USER"
	PgPasswordKey = "PG_PASSWORD"
	PgHostKey     = "PG_HOST"
	PgPortKey     = "PG_PORT"
	PgDbNameKey   = "PG_NAME"
	// ExpirationWindowKey is the number of heights a proposed trade stays
	// executable. Used only when the registry is created.
	ExpirationWindowKey = "EXPIRATION_WINDOW"
	// FeeKey is the protocol fee charged for every proposal. Used only when the
	// registry is created.
	FeeKey = "FEE"
	// AdminKey is the address of the first admin of the registry
	AdminKey = "ADMIN"
	// MaxReclaimBatchSizeKey is the max number of trades of a fee reclaim
	MaxReclaimBatchSizeKey = "MAX_RECLAIM_BATCH_SIZE"
	// HeightSourceKey selects where heights come from, either the local clock
	// or the chain
	HeightSourceKey = "HEIGHT_SOURCE"
	// BlockIntervalKey is the duration of a height when using the clock
	BlockIntervalKey = "BLOCK_INTERVAL"
	// GenesisTimeKey is the RFC3339 time of height 0 when using the clock
	GenesisTimeKey = "GENESIS_TIME"
	// AssetBackendKey selects where tokens and payments are settled, either a
	// local ledger or the chain
	AssetBackendKey = "ASSET_BACKEND"
	// LedgerSeedFileKey is the path of the JSON file with the initial content
	// of the local ledger
	LedgerSeedFileKey = "LEDGER_SEED_FILE"
	// RPCAddrKey is the address of the Ethereum node RPC
	RPCAddrKey = "RPC_ADDR"
	// OperatorKeyFileKey is the path of the hex encoded private key the escrow
	// uses to send transactions
	OperatorKeyFileKey = "OPERATOR_KEY_FILE"
	// ChainIDKey is the id of the chain transactions are signed for
	ChainIDKey = "CHAIN_ID"
	// WebhookEndpointsKey is a comma separated list of endpoints notified of
	// every registry event
	WebhookEndpointsKey = "WEBHOOK_ENDPOINTS"
	// WebhookSecretKey is the secret used to sign webhook requests
	WebhookSecretKey = "WEBHOOK_SECRET"
	// WebhookRateKey is the max number of webhook requests per second
	WebhookRateKey = "WEBHOOK_RATE"
	// MetricsEnabledKey enables the /metrics endpoint
	MetricsEnabledKey = "METRICS_ENABLED"
	// RequestMaxSkewKey is the max difference between the timestamp of a
	// signed request and the local time
	RequestMaxSkewKey = "REQUEST_MAX_SKEW"

	DbLocation = "db"

	DBBadger   = "badger"
	DBInMemory = "inmemory"
	DBPostgres = "postgres"

	HeightSourceClock    = "clock"
	HeightSourceEthereum = "ethereum"

	AssetBackendLocal    = "local"
	AssetBackendEthereum = "ethereum"

	// ethereum mainnet genesis
	defaultGenesisTime = "2015-07-30T15:26:28Z"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("escrowd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ESCROW")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9945)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(PgHostKey, "127.0.0.1")
	vip.SetDefault(PgPortKey, 5432)
	vip.SetDefault(PgDbNameKey, "escrowd")
	vip.SetDefault(ExpirationWindowKey, domain.DefaultExpirationWindow)
	vip.SetDefault(FeeKey, domain.DefaultFee)
	vip.SetDefault(MaxReclaimBatchSizeKey, domain.DefaultMaxReclaimBatchSize)
	vip.SetDefault(HeightSourceKey, HeightSourceClock)
	vip.SetDefault(BlockIntervalKey, 14*time.Second)
	vip.SetDefault(GenesisTimeKey, defaultGenesisTime)
	vip.SetDefault(AssetBackendKey, AssetBackendLocal)
	vip.SetDefault(ChainIDKey, 1)
	vip.SetDefault(WebhookRateKey, 50)
	vip.SetDefault(MetricsEnabledKey, true)
	vip.SetDefault(RequestMaxSkewKey, 5*time.Minute)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetInt64(key string) int64 {
	return vip.GetInt64(key)
}

// GetStringSlice splits comma separated values, as env vars are.
func GetStringSlice(key string) []string {
	list := make([]string, 0)
	for _, v := range vip.GetStringSlice(key) {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
	}
	return list
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetAdmin() common.Address {
	return common.HexToAddress(GetString(AdminKey))
}

func GetFee() decimal.Decimal {
	fee, _ := decimal.NewFromString(GetString(FeeKey))
	return fee
}

func GetGenesisTime() time.Time {
	t, _ := time.Parse(time.RFC3339, GetString(GenesisTimeKey))
	return t
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	admin := GetString(AdminKey)
	if !common.IsHexAddress(admin) || common.HexToAddress(admin) == (common.Address{}) {
		return fmt.Errorf("%s must be a valid non-zero address", AdminKey)
	}

	fee, err := decimal.NewFromString(GetString(FeeKey))
	if err != nil {
		return fmt.Errorf("invalid %s: %s", FeeKey, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("%s must not be negative", FeeKey)
	}
	if GetInt64(ExpirationWindowKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", ExpirationWindowKey)
	}
	if GetInt(MaxReclaimBatchSizeKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", MaxReclaimBatchSizeKey)
	}

	switch dbType := GetString(DBTypeKey); dbType {
	case DBBadger, DBInMemory:
	case DBPostgres:
		if GetString(PgUserKey) == "" {
			return fmt.Errorf("%s is required by db type %s", PgUserKey, dbType)
		}
	default:
		return fmt.Errorf("unsupported %s %q", DBTypeKey, dbType)
	}

	switch source := GetString(HeightSourceKey); source {
	case HeightSourceClock:
		if GetDuration(BlockIntervalKey) <= 0 {
			return fmt.Errorf("%s must be greater than zero", BlockIntervalKey)
		}
		if _, err := time.Parse(time.RFC3339, GetString(GenesisTimeKey)); err != nil {
			return fmt.Errorf("invalid %s: %s", GenesisTimeKey, err)
		}
	case HeightSourceEthereum:
		if GetString(RPCAddrKey) == "" {
			return fmt.Errorf("%s is required by height source %s", RPCAddrKey, source)
		}
	default:
		return fmt.Errorf("unsupported %s %q", HeightSourceKey, source)
	}

	switch backend := GetString(AssetBackendKey); backend {
	case AssetBackendLocal:
	case AssetBackendEthereum:
		if GetString(RPCAddrKey) == "" {
			return fmt.Errorf("%s is required by asset backend %s", RPCAddrKey, backend)
		}
		if GetString(OperatorKeyFileKey) == "" {
			return fmt.Errorf("%s is required by asset backend %s", OperatorKeyFileKey, backend)
		}
		if GetInt64(ChainIDKey) <= 0 {
			return fmt.Errorf("%s must be greater than zero", ChainIDKey)
		}
	default:
		return fmt.Errorf("unsupported %s %q", AssetBackendKey, backend)
	}

	if GetDuration(RequestMaxSkewKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", RequestMaxSkewKey)
	}
	if GetInt(WebhookRateKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", WebhookRateKey)
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) != DBBadger {
		return makeDirectoryIfNotExists(GetDatadir())
	}
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
