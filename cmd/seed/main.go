package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"catalog-api/internal/app"
	"catalog-api/internal/config"
	"catalog-api/internal/logger"
	"catalog-api/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", "console")
		log.Fatal().Err(err).Msg("❌ config")
	}

	total := flag.Int("total", cfg.SeedTotal, "number of products the store should hold")
	batch := flag.Int("batch", cfg.SeedBatchSize, "products per insert batch")
	seedValue := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for the generator")
	flag.Parse()

	log := logger.New(cfg.LogLevel, "console")
	if !run(cfg, log, *total, *batch, *seedValue) {
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger, total, batch int, seedValue uint64) bool {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("❌ store connection failed")
		return false
	}
	defer store.Close()

	seeder := seed.NewSeeder(store.Writer, seed.NewGenerator(seedValue, time.Now()), log)
	start := time.Now()
	summary, err := seeder.Run(ctx, total, batch)
	if err != nil {
		log.Error().Err(err).Int64("inserted", summary.Inserted).Msg("❌ seeding failed")
		return false
	}

	stats, err := store.Reader.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ could not read stats")
		return false
	}

	log.Info().
		Int64("total_products", stats.TotalProducts).
		Int64("categories", stats.TotalCategories).
		Int64("brands", stats.TotalBrands).
		Str("price_range", stats.PriceMin.StringFixed(2)+" - "+stats.PriceMax.StringFixed(2)).
		Str("avg_rating", stats.AvgRating.StringFixed(2)).
		Dur("elapsed", time.Since(start)).
		Msg("📊 database statistics")
	log.Info().Msg("🎉 Database seeding completed!")
	return true
}
