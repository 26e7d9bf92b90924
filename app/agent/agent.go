package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"

	"legalrag/types"
)

// Fixed user-facing messages for the degraded paths. These are returned
// as answers, not errors; a missing backend never fails the request.
const (
	NoResultsMessage   = "I'm sorry, I could not find any relevant information for your question in the legal knowledge base."
	UnavailableMessage = "The primary AI service is unavailable. Cannot generate a response."
	TimeoutMessage     = "The legal assistant took too long to respond. Please try your question again."
)

const contextJoiner = "\n\n---\n\n"

// Generator is the opaque text-completion capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
// Base URL override covers Groq-style gateways.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIGenerator(cfg types.LLMConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM_API_KEY environment variable not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Assembler builds a grounded prompt from retrieved context and
// delegates to the generative model.
type Assembler struct {
	generator Generator
	logger    *slog.Logger
}

func NewAssembler(generator Generator) *Assembler {
	return &Assembler{
		generator: generator,
		logger:    slog.Default(),
	}
}

// Answer produces the final response for a question, plus whether the
// exchange completed without degrading. With zero retrieved chunks the
// model is never invoked; an empty-context prompt only invites
// hallucination. A degraded path still returns an answer, but reports
// false so callers can log the exchange as failed.
func (a *Assembler) Answer(ctx context.Context, question string, results []types.RetrievalResult) (string, bool) {
	if len(results) == 0 {
		return NoResultsMessage, true
	}

	prompt := BuildPrompt(question, results)

	if count, err := countTokens(prompt); err == nil {
		a.logger.Info("assembled prompt", "tokens", count, "chunks", len(results))
	}

	if a.generator == nil {
		return UnavailableMessage, false
	}

	start := time.Now()
	answer, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("generation failed", "error", err, "elapsed", time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) {
			return TimeoutMessage, false
		}
		return UnavailableMessage, false
	}
	a.logger.Info("generated answer", "elapsed", time.Since(start))

	return answer + fmt.Sprintf("\n\n*Source: Information retrieved from %d relevant legal document sections.*", len(results)), true
}

// BuildPrompt embeds the question and the retrieved texts into the fixed
// policy block. Chunks are joined by a distinct separator so the model
// can tell sources apart.
func BuildPrompt(question string, results []types.RetrievalResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Content
	}
	context := strings.Join(texts, contextJoiner)

	return fmt.Sprintf(`Disclaimer: I am an AI assistant and not a lawyer. The information provided is for informational purposes only and does not constitute legal advice. You should consult with a qualified legal professional for any legal issues.**

---

You are an expert legal assistant specializing in Indian law, with knowledge of the Indian Penal Code (IPC), Bharatiya Nyaya Sanhita (BNS), and other statutes. Your task is to answer the user's question based strictly on the legal 'CONTEXT' provided. Also, provide a simple, blank First Information Report (FIR) template for the user to understand its structure.

*Instructions:*
1.  *Identity:* If asked who you are, introduce yourself as 'LawBot', an AI legal information assistant.
2.  *Strictly Context-Based:* Base your answer exclusively on the provided 'CONTEXT'. Do not invent sections, penalties, or legal interpretations.
3.  *Out of Context:* If the answer is not in the 'CONTEXT', state clearly that the provided legal documents do not contain information on that topic.
4.  *Handling Negativity:* If the user expresses negative opinions, respond politely and neutrally.
5.  *FIR Template:* After answering the user's question, provide a clearly marked, generic FIR template.

---
*CONTEXT:*
%s

---
*USER QUESTION:* %s

*ANSWER:*
`, context, question)
}

func countTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
