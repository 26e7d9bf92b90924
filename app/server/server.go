package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"legalrag/app/agent"
	"legalrag/app/api"
	"legalrag/app/session"
	"legalrag/model"
	"legalrag/store"
	"legalrag/types"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

// Server wires the query service. A backend that fails to initialize is
// logged and left nil; the service then reports itself not ready on the
// query path instead of crashing.
type Server struct {
	listenAddr string
	logger     *slog.Logger

	mu  sync.Mutex
	app *fiber.App
	pg  *store.PostgresStore
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Run() {
	ctx := context.Background()

	cfg := types.AppConfigFromEnv()
	embedCfg := types.EmbeddingConfigFromEnv()
	if s.listenAddr == "" {
		s.listenAddr = cfg.ListenAddr
	}

	embedder, err := model.NewEmbedder(embedCfg)
	if err != nil {
		s.logger.Error("failed to load embedding model, queries will be rejected", "error", err)
		embedder = nil
	}

	var retriever *store.Retriever
	pg, err := store.NewPostgresStore(ctx, types.PostgresDSNFromEnv(), embedCfg.Dimensions)
	if err != nil {
		s.logger.Error("failed to connect to vector store, queries will be rejected", "error", err)
	} else {
		s.mu.Lock()
		s.pg = pg
		s.mu.Unlock()
		retriever = store.NewRetriever(pg, cfg.Collections)
		for _, collection := range cfg.Collections {
			count, err := pg.Count(ctx, collection)
			if err != nil {
				s.logger.Error("failed to load collection", "collection", collection, "error", err)
				continue
			}
			s.logger.Info("collection loaded", "collection", collection, "chunks", count)
		}
	}

	generator, err := agent.NewOpenAIGenerator(types.LLMConfigFromEnv())
	if err != nil {
		s.logger.Warn("generative model unavailable, responses will degrade", "error", err)
		generator = nil
	}

	var (
		app          = fiber.New(config)
		checkHandler = api.NewCheckHandler()
		queryHandler = api.NewQueryHandler(
			embedder,
			retriever,
			agent.NewAssembler(generatorOrNil(generator)),
			session.NewLog(cfg.HistorySize),
			cfg.TopK,
		)
		check = app.Group("/check")
		apiv1 = app.Group("/api")
	)
	s.mu.Lock()
	s.app = app
	s.mu.Unlock()

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/query", queryHandler.HandleQuery)
	apiv1.Get("/history", queryHandler.HandleHistory)
	apiv1.Get("/status", queryHandler.HandleStatus)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error starting server", "error", err)
	}
}

// Stop may race a Run goroutine that is still starting up; the fields
// it reads are handed over under the mutex.
func (s *Server) Stop() {
	s.mu.Lock()
	app, pg := s.app, s.pg
	s.mu.Unlock()

	if app != nil {
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.logger.Error("error during shutdown", "error", err)
		}
	}
	if pg != nil {
		_ = pg.Close()
	}
	s.logger.Info("server stopped")
}

// generatorOrNil keeps the nil interface nil. A typed nil pointer inside
// the interface would defeat the assembler's availability check.
func generatorOrNil(g *agent.OpenAIGenerator) agent.Generator {
	if g == nil {
		return nil
	}
	return g
}
