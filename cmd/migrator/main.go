package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/rosterhq/shift-roster/internal/config"
	"github.com/rosterhq/shift-roster/internal/observability"
	"github.com/rosterhq/shift-roster/internal/persistence"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return
	}
	command := persistence.MigrationCommand(args[0])

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.Migrate(ctx, pg.PoolHandle(), logger, command); err != nil {
		logger.Fatal("migration failed", zap.String("command", string(command)), zap.Error(err))
	}
}

func usage() {
	fmt.Println("usage: migrator <command>")
	fmt.Println("commands:")
	fmt.Println("  up      apply all pending migrations")
	fmt.Println("  down    roll back the latest migration")
	fmt.Println("  status  print migration status")
}
