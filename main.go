package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/spit-hierarchy/spit-backend/app"
	"github.com/spit-hierarchy/spit-backend/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("Application run failed: %v", err)
	}

	if err := application.Close(); err != nil {
		log.Printf("Application close failed: %v", err)
	}
}
