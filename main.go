package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/mbolis/boxer-intake/app"
	"github.com/mbolis/boxer-intake/config"
	"github.com/mbolis/boxer-intake/database"
	"github.com/mbolis/boxer-intake/httpx"
	"github.com/mbolis/boxer-intake/log"
	"github.com/mbolis/boxer-intake/routes"
	"github.com/mbolis/boxer-intake/schema"
	"github.com/mbolis/boxer-intake/store"
	"github.com/mbolis/boxer-intake/uploads"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.LogJSON {
		log.UseJSON()
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.DefaultCredentials() {
		log.Warn("main.config: coach credentials are the defaults, set COACH_USER and COACH_PASS")
	}

	reg, err := schema.Load()
	if err != nil {
		log.Fatal("main.schema:", err)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	area, err := uploads.NewArea(cfg.UploadsDir)
	if err != nil {
		log.Fatal("main.uploads:", err)
	}

	verifier, err := httpx.NewCoachVerifier(cfg.CoachUser, cfg.CoachPass)
	if err != nil {
		log.Fatal("main.auth:", err)
	}

	app := app.App{
		Store:    store.New(db),
		Schema:   reg,
		Uploads:  area,
		Verifier: verifier,
		Config:   cfg,
	}

	handler, err := routes.Wire(app)
	if err != nil {
		log.Fatal("main.routes:", err)
	}

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
