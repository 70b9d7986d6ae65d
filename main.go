package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scholarchain/scholarchain-backend/api"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/eth"
	"github.com/scholarchain/scholarchain-backend/eth/client"
	"github.com/scholarchain/scholarchain-backend/models"
	"github.com/scholarchain/scholarchain-backend/wallet"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	configPath := flag.String("config", "", "path to yml config file")
	envPath := flag.String("env", "", "path to env file")
	flag.Parse()

	app.InitConfig(*configPath, *envPath)
	app.InitLogger()
	app.InitDB()

	// connect to the chain and refuse to start on the wrong network
	session := wallet.NewSession(app.Config.Ethereum.ChainID, map[string]string{
		app.Config.Ethereum.ChainID: app.Config.Ethereum.RPCURL,
	})
	if err := session.Connect(context.Background()); err != nil {
		log.Fatal("[MAIN] Error connecting to chain: ", err)
	}
	backend, err := session.Client()
	if err != nil {
		log.Fatal("[MAIN] Chain session not ready: ", err)
	}
	ethClient := client.NewClientFromBackend(backend)

	contract, err := client.NewScholarshipManagerContract(
		common.HexToAddress(app.Config.Ethereum.ScholarshipManagerAddress), backend)
	if err != nil {
		log.Fatal("[MAIN] Error binding scholarship manager contract: ", err)
	}
	var token client.TokenContract
	if app.Config.Ethereum.TokenAddress != "" {
		token, err = client.NewTokenContract(
			common.HexToAddress(app.Config.Ethereum.TokenAddress), backend)
		if err != nil {
			log.Fatal("[MAIN] Error binding token contract: ", err)
		}
	}

	syncer, err := eth.NewSyncer(ethClient, contract, token)
	if err != nil {
		log.Fatal("[MAIN] Error creating syncer: ", err)
	}
	log.Info("[MAIN] Signer address: ", syncer.Address().Hex())

	var wg sync.WaitGroup

	healthcheck := app.NewHealthCheck(&wg)
	monitor := eth.NewMirrorMonitor(&wg, ethClient)
	apiService := api.NewAPIService(&wg, api.NewServer(syncer, contract, healthcheck.ServiceHealths))

	services := []models.Service{monitor, apiService}
	healthcheck.SetServices(services)

	wg.Add(len(services) + 1)
	go healthcheck.Start()
	for _, service := range services {
		go service.Start()
	}

	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-gracefulStop
	log.Debug("[MAIN] Got signal: ", sig)

	log.Debug("[MAIN] Gracefully shutting down")
	for _, service := range services {
		service.Stop()
	}
	healthcheck.Stop()
	wg.Wait()

	if err := app.DB.Disconnect(); err != nil {
		log.Error("[MAIN] Error disconnecting from database: ", err)
	}
	log.Info("[MAIN] Server gracefully stopped")
}
