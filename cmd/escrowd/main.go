package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/config"
	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ethereum"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/height"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/metrics"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/pg"
	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx := context.Background()

	repoManager, err := newRepoManager(ctx)
	if err != nil {
		log.WithError(err).Fatal("error while opening db")
	}
	defer repoManager.Close()

	var ethClient ethereum.Backend
	if config.GetString(config.HeightSourceKey) == config.HeightSourceEthereum ||
		config.GetString(config.AssetBackendKey) == config.AssetBackendEthereum {
		client, err := ethereum.Dial(ctx, config.GetString(config.RPCAddrKey))
		if err != nil {
			log.WithError(err).Fatal("error while connecting to ethereum node")
		}
		defer client.Close()
		ethClient = client
	}

	heights, err := newHeightProvider(ethClient)
	if err != nil {
		log.WithError(err).Fatal("error while initializing height provider")
	}

	assets, settlement, err := newAssetBackend(ethClient)
	if err != nil {
		log.WithError(err).Fatal("error while initializing asset backend")
	}

	collector := metrics.NewCollector()
	pubsubSvc := pubsub.NewService(pubsub.Options{
		RatePerSecond: config.GetInt(config.WebhookRateKey),
	})
	pubsubSvc.AddListener(collector.ObserveEvent)
	secret := config.GetString(config.WebhookSecretKey)
	for _, endpoint := range config.GetStringSlice(config.WebhookEndpointsKey) {
		if _, err := pubsubSvc.Subscribe(pubsub.AnyTopic, endpoint, secret); err != nil {
			log.WithError(err).Fatalf("invalid webhook endpoint %s", endpoint)
		}
	}

	escrowSvc, err := escrow.NewService(ctx, escrow.Config{
		RepoManager:         repoManager,
		Assets:              assets,
		Settlement:          settlement,
		Heights:             heights,
		Publisher:           pubsubSvc,
		Admin:               config.GetAdmin(),
		Fee:                 config.GetFee(),
		ExpirationWindow:    config.GetInt64(config.ExpirationWindowKey),
		MaxReclaimBatchSize: config.GetInt(config.MaxReclaimBatchSizeKey),
	})
	if err != nil {
		log.WithError(err).Fatal("error while initializing registry")
	}
	defer escrowSvc.Close()

	opts := httpinterface.ServiceOpts{
		Address:   fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey)),
		EscrowSvc: escrowSvc,
		MaxSkew:   config.GetDuration(config.RequestMaxSkewKey),
	}
	if config.GetBool(config.MetricsEnabledKey) {
		opts.Metrics = collector
	}
	svc, err := httpinterface.NewService(opts)
	if err != nil {
		log.WithError(err).Fatal("error while initializing http interface")
	}

	log.Info("starting daemon")
	defer log.Info("shutdown")

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("error while starting daemon")
	}
	defer svc.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-sigChan

	log.Info("shutting down daemon")
}

func newRepoManager(ctx context.Context) (ports.RepoManager, error) {
	switch config.GetString(config.DBTypeKey) {
	case config.DBInMemory:
		return inmemory.NewRepoManager(), nil
	case config.DBPostgres:
		return postgresdb.NewRepoManager(ctx, postgresdb.DbConfig{
			DbUser:     config.GetString(config.PgUserKey),
			DbPassword: config.GetString(config.PgPasswordKey),
			DbHost:     config.GetString(config.PgHostKey),
			DbPort:     config.GetInt(config.PgPortKey),
			DbName:     config.GetString(config.PgDbNameKey),
		})
	default:
		return dbbadger.NewRepoManager(config.GetDbDir(), log.StandardLogger())
	}
}

func newHeightProvider(client ethereum.Backend) (ports.HeightProvider, error) {
	if config.GetString(config.HeightSourceKey) == config.HeightSourceEthereum {
		return ethereum.NewHeights(client)
	}
	return height.NewClock(
		config.GetGenesisTime(), config.GetDuration(config.BlockIntervalKey),
	)
}

func newAssetBackend(
	client ethereum.Backend,
) (ports.AssetRegistryResolver, ports.SettlementChannel, error) {
	if config.GetString(config.AssetBackendKey) == config.AssetBackendLocal {
		l, err := ledger.LoadSeedFile(config.GetString(config.LedgerSeedFileKey))
		if err != nil {
			return nil, nil, err
		}
		log.Infof("local ledger operator %s", l.Operator())
		return l, l, nil
	}

	key, err := ethereum.LoadKey(config.GetString(config.OperatorKeyFileKey))
	if err != nil {
		return nil, nil, err
	}
	sender, err := ethereum.NewSender(
		client, key, big.NewInt(config.GetInt64(config.ChainIDKey)),
	)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("escrow operator %s", sender.From())

	assets, err := ethereum.NewAssets(sender)
	if err != nil {
		return nil, nil, err
	}
	settlement, err := ethereum.NewSettlement(sender)
	if err != nil {
		return nil, nil, err
	}
	return assets, settlement, nil
}
