package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/docesmaloca/doces-api/internal/config"
	"github.com/docesmaloca/doces-api/internal/db"
	"github.com/docesmaloca/doces-api/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	log := logrus.New()
	if cfg.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	dbConn, err := db.Connect(cfg.DatabaseDSN, log)
	if err != nil {
		log.WithError(err).Fatal("erro na conexão com o banco")
	}
	if *migrateOnlyFlag {
		log.Info("migrations completed; exiting as requested")
		return
	}

	log.WithFields(logrus.Fields{"env": cfg.Env, "port": cfg.Port}).Info("starting server")
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn, cfg, log)}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	if err := db.Close(dbConn); err != nil {
		log.WithError(err).Error("error closing database")
	}
	log.Info("server gracefully stopped")
}
