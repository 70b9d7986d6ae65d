package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/models"
	log "github.com/sirupsen/logrus"
)

const (
	APIServiceName  = "api"
	shutdownTimeout = 10 * time.Second
)

// APIService runs the HTTP server as a managed service alongside the
// background services, with the same Start/Health/Stop surface.
type APIService struct {
	wg     *sync.WaitGroup
	stop   chan bool
	server *http.Server

	healthMu sync.RWMutex
	health   models.ServiceHealth
}

func (s *APIService) Start() {
	log.Info("[API] Starting service on ", s.server.Addr)

	errs := make(chan error, 1)
	go func() {
		errs <- s.server.ListenAndServe()
	}()

	s.setHealthy(true)

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("[API] Server error: ", err)
		}
		s.setHealthy(false)
	case <-s.stop:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			log.Error("[API] Error shutting down server: ", err)
		}
		s.setHealthy(false)
		log.Info("[API] Stopped service")
	}
	s.wg.Done()
}

func (s *APIService) Stop() {
	log.Debug("[API] Stopping service")
	s.stop <- true
}

func (s *APIService) setHealthy(healthy bool) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	now := time.Now()
	s.health = models.ServiceHealth{
		Name:         APIServiceName,
		LastSyncTime: now,
		NextSyncTime: now,
		Healthy:      healthy,
	}
}

func (s *APIService) Health() models.ServiceHealth {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.health
}

// NewAPIService wires the router into an HTTP server bound to the configured
// port.
func NewAPIService(wg *sync.WaitGroup, server *Server) models.Service {
	gin.SetMode(gin.ReleaseMode)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.API.Port),
		Handler:           server.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("[API] Initialized service")
	return &APIService{
		wg:     wg,
		stop:   make(chan bool),
		server: httpServer,
	}
}
