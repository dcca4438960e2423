// Command indexer rebuilds the product search index from the database.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"go-grocery/apps/store/repository"
	"go-grocery/apps/store/service"
	"go-grocery/pkg/config"
	"go-grocery/pkg/database"
	"go-grocery/pkg/logger"
	"go-grocery/pkg/search"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	batch := flag.Int("batch", 500, "products per bulk request")
	flag.Parse()

	c, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init("indexer", c.Log.Level, c.Log.Pretty)

	if c.Elastic.URL == "" {
		log.Fatal().Msg("elastic.url is not set")
	}

	db, err := database.Open(c.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	idx, err := search.NewProductIndex(c.Elastic.URL, c.Elastic.Index)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect elasticsearch")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	svc := service.NewCatalogService(repository.NewCatalogRepository(db), service.Media{BaseURL: c.Service.MediaURL})
	n, err := svc.Reindex(ctx, idx, *batch)
	if err != nil {
		log.Fatal().Err(err).Int("indexed", n).Msg("reindex failed")
	}
	log.Info().Int("indexed", n).Str("index", c.Elastic.Index).Dur("took", time.Since(start)).Msg("reindex done")
}
