package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/nexshop/marketplace/config"
	pginfra "github.com/nexshop/marketplace/internal/infrastructure/postgres"
	"github.com/nexshop/marketplace/internal/store"
	"github.com/nexshop/marketplace/pkg/helpers"
)

// Seeds the configured table store with the demo catalog and accounts.
// Safe to run repeatedly: tables that already exist are left alone.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	st, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init %s store: %v", cfg.StoreDriver, err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := store.Seed(ctx, st); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	products := store.GetTable[map[string]any](ctx, st, store.TableProducts)
	fmt.Printf("seeded %s store: %d products\n", cfg.StoreDriver, len(products))
	fmt.Println("demo accounts:")
	fmt.Println("  admin@nexshop.dev / admin123  (admin)")
	fmt.Println("  buyer@nexshop.dev / buyer123  (buyer, profile complete)")
	fmt.Println("  gaming@nexshop.dev / seller123 (seller)")
}

func buildStore(ctx context.Context, cfg *config.Config) (store.TableStore, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return nil, nil, errors.New("memory store cannot be seeded from a separate process; run the server instead")
	case "file":
		st, err := store.NewFileStore(cfg.DataDir)
		return st, nil, err
	case "redis":
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return store.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
