package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dailybet/application"
	"dailybet/cmd"
	"dailybet/config"
	"dailybet/database"
	"dailybet/infrastructure"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "grant-admin":
			if err := handleGrantAdmin(); err != nil {
				log.Fatal("Grant admin error: ", err)
			}
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: dailybet migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleGrantAdmin() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: dailybet grant-admin <username>")
	}
	username := os.Args[2]

	ctx := context.Background()
	cfg := config.Get()
	cmd.ConfigureLogging(cfg)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Events from admin commands have no listeners
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	if err := application.NewAccountHandler(uowFactory).GrantAdmin(ctx, username); err != nil {
		return err
	}

	log.WithField("username", username).Info("Granted admin")
	return nil
}
