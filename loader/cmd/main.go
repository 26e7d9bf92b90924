package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"legalrag/loader/internal"
	"legalrag/loader/service"
	"legalrag/model"
	"legalrag/store"
	"legalrag/types"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	reset := flag.Bool("reset", false, "delete the target collection before inserting")
	flag.Parse()

	ctx := context.Background()

	cfg := types.LoaderConfigFromEnv()
	embedCfg := types.EmbeddingConfigFromEnv()

	embedder, err := model.NewEmbedder(embedCfg)
	if err != nil {
		log.Fatal("failed to initialize embedding model: ", err)
	}

	pool, err := store.NewPostgresStore(ctx, types.PostgresDSNFromEnv(), embedCfg.Dimensions)
	if err != nil {
		log.Fatal("error connecting to Postgres database: ", err)
	}
	defer pool.Close()

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error creating tables: ", err)
	}

	cache, err := internal.NewCache(cfg.CacheDir)
	if err != nil {
		log.Fatal("error creating ingestion cache: ", err)
	}

	if err := service.New(pool, embedder, cache, cfg).Run(ctx, *reset); err != nil {
		log.Fatal("ingestion failed: ", err)
	}
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using process environment")
	}
}
