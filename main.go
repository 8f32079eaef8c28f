package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/resheikhi/samdash/cmd"
	"github.com/resheikhi/samdash/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	mode := flag.String("mode", "server", "Run mode: server or worker")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*configPath = v
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalln("load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalln("config validation:", err)
	}

	logger, err := cmd.InitLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalln("init logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "server":
		err = cmd.ExecuteServer(ctx, cfg, logger)
	case "worker":
		err = cmd.ExecuteWorker(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		logger.Fatal(err.Error())
	}
}
