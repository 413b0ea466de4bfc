package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/polizei-portal/intranet/internal/app"
	"github.com/polizei-portal/intranet/internal/auth"
	"github.com/polizei-portal/intranet/internal/seed"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()

	store, closeStore, err := app.OpenStore(ctx, cfg, redisClient, logger)
	if err != nil {
		log.Fatalf("open document store: %v", err)
	}
	defer closeStore()

	fmt.Println("→ Seeding roles, default administrator and statutes...")
	bootstrapper := seed.NewBootstrapper(store, logger, seed.Config{
		AdminBadge:    cfg.BootstrapAdminBadge,
		AdminPassword: cfg.BootstrapAdminPassword,
	}, auth.NewService(nil, cfg.BcryptCost))
	result, err := bootstrapper.Run(ctx)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("  roles created: %d\n", result.RolesCreated)
	fmt.Printf("  admin created: %t\n", result.AdminCreated)
	fmt.Printf("  laws created:  %d\n", result.LawsCreated)
	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}
