package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"legalrag/app/agent"
	"legalrag/app/session"
	"legalrag/model"
	"legalrag/store"
	"legalrag/types"
)

// QueryHandler serves the online question-answering path: embed the
// question, retrieve grounding, assemble the answer. Stateless per
// request except the bounded conversation log.
type QueryHandler struct {
	embedder  model.EmbedderInterface
	retriever *store.Retriever
	assembler *agent.Assembler
	history   *session.Log
	topK      int
}

func NewQueryHandler(embedder model.EmbedderInterface, retriever *store.Retriever, assembler *agent.Assembler, history *session.Log, topK int) *QueryHandler {
	if topK <= 0 {
		topK = 5
	}
	return &QueryHandler{
		embedder:  embedder,
		retriever: retriever,
		assembler: assembler,
		history:   history,
		topK:      topK,
	}
}

// Ready reports whether both backends initialized. A not-ready service
// answers 503 instead of crashing per request.
func (h *QueryHandler) Ready() bool {
	return h.embedder != nil && h.retriever != nil
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}
	if strings.TrimSpace(params.Question) == "" {
		return ErrEmptyQuestion()
	}

	if !h.Ready() {
		return ErrNotReady()
	}

	start := time.Now()

	vector, err := h.embedder.Embed(c.Context(), params.Question)
	if err != nil {
		h.record(params.Question, "", start, false)
		return NewError(fiber.StatusServiceUnavailable, "embedding backend unavailable: "+err.Error())
	}

	results, err := h.retriever.Retrieve(c.Context(), vector, h.topK)
	if err != nil {
		h.record(params.Question, "", start, false)
		return err
	}

	answer, ok := h.assembler.Answer(c.Context(), params.Question, results)
	h.record(params.Question, answer, start, ok)

	return c.JSON(types.QueryResponse{
		Answer:    answer,
		Sections:  agent.ExtractSections(answer),
		Timestamp: time.Now(),
	})
}

func (h *QueryHandler) HandleHistory(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"history": h.history.Entries(),
	})
}

func (h *QueryHandler) HandleStatus(c *fiber.Ctx) error {
	embedderReady := false
	if h.embedder != nil {
		embedderReady = h.embedder.Ping(c.Context()) == nil
	}

	storeReady := h.retriever != nil
	collections := 0
	if h.retriever != nil {
		collections = len(h.retriever.Collections())
	}

	status := "online"
	if !embedderReady || !storeReady {
		status = "backend_offline"
	}

	return c.JSON(types.StatusResponse{
		EmbedderReady:      embedderReady,
		StoreReady:         storeReady,
		Collections:        collections,
		TotalConversations: h.history.Total(),
		Status:             status,
	})
}

func (h *QueryHandler) record(query, answer string, start time.Time, success bool) {
	h.history.Append(session.Entry{
		Query:     query,
		Answer:    answer,
		Timestamp: time.Now(),
		Latency:   time.Since(start),
		Success:   success,
	})
}
