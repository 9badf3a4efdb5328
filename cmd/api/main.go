package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/credits"
	"github.com/medhire/medhire-backend/internal/db"
	"github.com/medhire/medhire-backend/internal/handlers"
	"github.com/medhire/medhire-backend/internal/notify"
	"github.com/medhire/medhire-backend/internal/storage"
	"github.com/medhire/medhire-backend/internal/sweep"
	"github.com/medhire/medhire-backend/internal/views"
	"github.com/medhire/medhire-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	dbConn, err := db.Connect(cfg.DBURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(dbConn); err != nil {
		log.Fatal(err)
	}

	hub := ws.NewHub()
	dispatcher := notify.NewDispatcher(dbConn, hub)

	sweeper := sweep.NewSweeper(dbConn)
	sweeper.Start()
	defer sweeper.Stop()

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	handlers.Register(r, handlers.Deps{
		DB:      dbConn,
		Cfg:     cfg,
		Hub:     hub,
		Notify:  dispatcher,
		Ledger:  credits.NewLedger(dbConn),
		Tracker: views.NewTracker(dbConn),
		Store:   storage.New(cfg.UploadDir, cfg.CDNBase),
	})

	log.Printf("API listening on %s", cfg.HTTPPort)
	if err := r.Run(cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
