// Package agent runs the tool-calling DeFi yield assistant.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/AlexZinkM/yield-agent/internal/client"
	"github.com/AlexZinkM/yield-agent/internal/knowledge"
	"github.com/AlexZinkM/yield-agent/internal/metrics"
	"github.com/AlexZinkM/yield-agent/internal/model"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// DefaultThreadID is the conversation used when a query names none
const DefaultThreadID = "CDP Agent API"

// ErrNotInitialized is returned by ProcessQuery before Initialize succeeded
var ErrNotInitialized = errors.New("agent not initialized")

const systemPrompt = `You are a DeFi yield assistant. Use the KnowledgeBaseQA tool to look up pools, TVL and APY before answering.
When wallet tools are available you may use them on behalf of the user address given in the question.
Answer with a single JSON object and nothing else, using exactly these keys:
{"chain": string, "project": string, "symbol": string, "tvlUsd": integer, "apyBase": number, "stablecoin": "true" or "false"}`

// LLM is the model backend: chat completions with tools plus embeddings
type LLM interface {
	knowledge.ChatModel
	knowledge.Embedder
}

// Config tunes the agent
type Config struct {
	KnowledgeFile string
	MaxWorkers    int
	MaxIterations int
	TopK          int
	// MaxThreads bounds the conversations kept in memory
	MaxThreads int
}

// Agent answers queries with a tool-calling loop over the knowledge base and,
// optionally, the wallet operations.
type Agent struct {
	cfg     Config
	llm     LLM
	wallets WalletOperations

	initMu sync.Mutex
	ready  atomic.Bool
	tools  map[string]Tool
	defs   []client.ToolDefinition

	pool   *semaphore.Weighted
	active atomic.Int32
	memory *memory
}

// New creates an agent. wallets may be nil for the knowledge-only variant.
func New(cfg Config, llm LLM, wallets WalletOperations) *Agent {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 3
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	return &Agent{
		cfg:     cfg,
		llm:     llm,
		wallets: wallets,
		pool:    semaphore.NewWeighted(int64(cfg.MaxWorkers)),
		memory:  newMemory(cfg.MaxThreads),
	}
}

// Initialize loads and indexes the knowledge base and builds the tool set
func (a *Agent) Initialize(ctx context.Context) error {
	a.initMu.Lock()
	defer a.initMu.Unlock()

	records, err := knowledge.LoadRecords(a.cfg.KnowledgeFile)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}
	index, err := knowledge.Build(ctx, a.llm, knowledge.Documents(records))
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	tools := []Tool{knowledgeTool(knowledge.NewQA(index, a.llm, a.cfg.TopK))}
	if a.wallets != nil {
		tools = append(tools, walletTools(a.wallets)...)
	}
	a.setTools(tools)

	log.WithField("tools", len(tools)).
		WithField("documents", index.Len()).
		Info("agent initialized")
	return nil
}

func (a *Agent) setTools(tools []Tool) {
	a.tools = make(map[string]Tool, len(tools))
	a.defs = make([]client.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		a.tools[t.Name] = t
		a.defs = append(a.defs, t.definition())
	}
	a.ready.Store(true)
}

// ToolNames returns the names of the tools offered to the model
func (a *Agent) ToolNames() []string {
	names := make([]string, 0, len(a.defs))
	for _, d := range a.defs {
		names = append(names, d.Function.Name)
	}
	return names
}

// ProcessQuery runs query on threadID and returns the final model answer.
func (a *Agent) ProcessQuery(ctx context.Context, query, threadID string) (string, error) {
	if !a.ready.Load() {
		return "", ErrNotInitialized
	}
	if strings.TrimSpace(threadID) == "" {
		threadID = DefaultThreadID
	}

	if err := a.pool.Acquire(ctx, 1); err != nil {
		return "", err
	}
	a.active.Add(1)
	defer func() {
		a.active.Add(-1)
		a.pool.Release(1)
	}()

	answer, err := a.run(ctx, query, threadID)
	if err != nil {
		metrics.AgentQueries.WithLabelValues("failed").Inc()
		return "", err
	}
	metrics.AgentQueries.WithLabelValues("ok").Inc()
	return answer, nil
}

func (a *Agent) run(ctx context.Context, query, threadID string) (string, error) {
	t := a.memory.acquire(threadID)
	defer t.release()

	logger := log.WithField("thread_id", threadID).WithField("request_id", uuid.NewString())

	history := append(t.history(), client.Message{Role: client.RoleUser, Content: query})
	for i := 0; i < a.cfg.MaxIterations; i++ {
		prompt := append([]client.Message{{Role: client.RoleSystem, Content: systemPrompt}}, history...)
		msg, err := a.llm.Chat(ctx, prompt, a.defs)
		if err != nil {
			return "", err
		}
		history = append(history, msg)

		if len(msg.ToolCalls) == 0 {
			t.commit(history)
			return msg.Content, nil
		}

		for _, call := range msg.ToolCalls {
			logger.WithField("tool", call.Function.Name).Debug("tool call")
			history = append(history, client.Message{
				Role:       client.RoleTool,
				ToolCallID: call.ID,
				Content:    a.callTool(ctx, call),
			})
		}
	}
	return "", fmt.Errorf("agent stopped after %d iterations without an answer", a.cfg.MaxIterations)
}

// callTool runs one tool call. Failures are reported back to the model.
func (a *Agent) callTool(ctx context.Context, call client.ToolCall) string {
	tool, ok := a.tools[call.Function.Name]
	if !ok {
		return fmt.Sprintf("Error: %s is not a valid tool", call.Function.Name)
	}
	args := []byte(call.Function.Arguments)
	if len(strings.TrimSpace(call.Function.Arguments)) == 0 {
		args = []byte("{}")
	}
	out, err := tool.Call(ctx, args)
	if err != nil {
		log.WithError(err).WithField("tool", tool.Name).Warn("tool call failed")
		return "Error: " + err.Error()
	}
	return out
}

// Stats describes the worker pool
func (a *Agent) Stats() model.ThreadPoolInfo {
	return model.ThreadPoolInfo{
		MaxWorkers:    a.cfg.MaxWorkers,
		ActiveThreads: int(a.active.Load()),
	}
}
