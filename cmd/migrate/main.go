package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/infrastructure/config"
	"github.com/cementiri/backend/internal/infrastructure/logger"
	"github.com/cementiri/backend/internal/infrastructure/migration"
)

func main() {
	configPath := flag.String("config", os.Getenv("CEM_CONFIG"), "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	command := "up"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "up":
		err = migration.Up(cfg, log)
	case "down":
		err = migration.Down(cfg, log)
	case "status":
		err = migration.Status(cfg, log)
	default:
		log.Fatal("unknown migration command, expected up, down or status",
			zap.String("command", command))
	}
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}
