// fidelia-server is the loyalty and rewards engine: category-aware point
// computation, badge progress tracking, reward lifecycle, and cart
// aggregation, exposed over HTTP.
package main

import (
	"log"
	"os"

	"github.com/fidelia-app/fidelia-server/internal/admin"
	"github.com/fidelia-app/fidelia-server/internal/api"
	"github.com/fidelia-app/fidelia-server/internal/badges"
	"github.com/fidelia-app/fidelia-server/internal/config"
	"github.com/fidelia-app/fidelia-server/internal/httpcore"
	"github.com/fidelia-app/fidelia-server/internal/rewards"
	"github.com/fidelia-app/fidelia-server/internal/store"
)

func main() {
	cfg := httpcore.ParseFlags("fidelia-server")

	fileCfg, err := config.Load(cfg.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Port == 0 {
		cfg.Port = fileCfg.Server.Port
	}
	if cfg.Port == 0 {
		cfg.Port = 8090
	}

	srv := httpcore.New(cfg)
	memStore := store.New()
	memStore.SeedDefaults()

	badgeSvc := badges.NewService(memStore, memStore.Clock)
	rewardSvc := rewards.NewService(memStore, memStore.Clock)

	// Public API
	apiHandler := api.NewHandler(memStore, badgeSvc, rewardSvc, fileCfg.Multipliers, srv.Logger)
	apiHandler.Routes(srv.Router)

	// Admin control plane
	adminHandler := admin.NewHandler(memStore, srv.Middleware(), memStore.Clock)
	adminHandler.Routes(srv.Router)

	// Load seed data if provided
	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			log.Fatalf("failed to read seed file: %v", err)
		}
		if err := memStore.LoadState(data); err != nil {
			log.Fatalf("failed to load seed data: %v", err)
		}
		srv.Logger.Info("loaded seed data", "file", cfg.SeedFile)
	}

	srv.Logger.Info("fidelia-server ready",
		"port", cfg.Port,
	)

	if err := srv.Serve(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
