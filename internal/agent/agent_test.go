package agent

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/client"
	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/stretchr/testify/require"
)

const dataset = `[
	{"chain":"Ethereum","project":"aave-v3","symbol":"USDC","tvlUsd":1500000,"apyBase":4.2,"stablecoin":true},
	{"chain":"Base","project":"aerodrome","symbol":"WETH","tvlUsd":900000,"apyBase":12.5,"stablecoin":false}
]`

// scriptedLLM replays chat answers in order and embeds every text to the same vector.
type scriptedLLM struct {
	mu       sync.Mutex
	answers  []client.Message
	prompts  [][]client.Message
	delay    time.Duration
	embedErr error
}

func (l *scriptedLLM) Chat(ctx context.Context, messages []client.Message, tools []client.ToolDefinition) (client.Message, error) {
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return client.Message{}, ctx.Err()
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, append([]client.Message(nil), messages...))

	// retrieval QA prompts get a canned answer
	if len(tools) == 0 {
		return client.Message{Role: client.RoleAssistant, Content: "aave-v3 on Ethereum pays 4.2% on USDC"}, nil
	}
	if len(l.answers) == 0 {
		return client.Message{}, errors.New("no scripted answer left")
	}
	next := l.answers[0]
	l.answers = l.answers[1:]
	return next, nil
}

func (l *scriptedLLM) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	if l.embedErr != nil {
		return nil, l.embedErr
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func toolCall(id, name, args string) client.Message {
	return client.Message{
		Role: client.RoleAssistant,
		ToolCalls: []client.ToolCall{{
			ID:       id,
			Type:     "function",
			Function: client.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func answer(content string) client.Message {
	return client.Message{Role: client.RoleAssistant, Content: content}
}

func newTestAgent(t *testing.T, llm *scriptedLLM, wallets WalletOperations, cfg Config) *Agent {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o644))
	cfg.KnowledgeFile = path
	a := New(cfg, llm, wallets)
	require.NoError(t, a.Initialize(t.Context()))
	return a
}

func TestProcessQueryBeforeInitialize(t *testing.T) {
	a := New(Config{}, &scriptedLLM{}, nil)
	_, err := a.ProcessQuery(t.Context(), "hi", "")
	require.ErrorIs(t, err, ErrNotInitialized)

	a = New(Config{KnowledgeFile: filepath.Join(t.TempDir(), "missing.json")}, &scriptedLLM{}, nil)
	require.Error(t, a.Initialize(t.Context()))
	_, err = a.ProcessQuery(t.Context(), "hi", "")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestKnowledgeToolLoop(t *testing.T) {
	llm := &scriptedLLM{answers: []client.Message{
		toolCall("call_1", knowledgeToolName, `{"query":"best usdc yield"}`),
		answer(`{"chain":"Ethereum","project":"aave-v3","symbol":"USDC","tvlUsd":1500000,"apyBase":4.2,"stablecoin":"true"}`),
	}}
	a := newTestAgent(t, llm, nil, Config{})
	require.Equal(t, []string{knowledgeToolName}, a.ToolNames())

	out, err := a.ProcessQuery(t.Context(), "best usdc yield?", "")
	require.NoError(t, err)

	result, err := FormatYieldResponse(out)
	require.NoError(t, err)
	require.Equal(t, "aave-v3", result.Project)
	require.True(t, result.Stablecoin)

	// the second agent turn saw the tool result
	last := llm.prompts[len(llm.prompts)-1]
	toolMsg := last[len(last)-1]
	require.Equal(t, client.RoleTool, toolMsg.Role)
	require.Equal(t, "call_1", toolMsg.ToolCallID)
	require.Contains(t, toolMsg.Content, "aave-v3")
	require.Equal(t, client.RoleSystem, last[0].Role)
}

func TestThreadMemory(t *testing.T) {
	llm := &scriptedLLM{answers: []client.Message{answer("first"), answer("second"), answer("other")}}
	a := newTestAgent(t, llm, nil, Config{})

	_, err := a.ProcessQuery(t.Context(), "q1", "t-1")
	require.NoError(t, err)
	_, err = a.ProcessQuery(t.Context(), "q2", "t-1")
	require.NoError(t, err)
	_, err = a.ProcessQuery(t.Context(), "q3", "t-2")
	require.NoError(t, err)

	// system + q1 + first + q2
	second := llm.prompts[1]
	require.Len(t, second, 4)
	require.Equal(t, "q1", second[1].Content)
	require.Equal(t, "first", second[2].Content)

	// new thread starts empty
	third := llm.prompts[2]
	require.Len(t, third, 2)
	require.Equal(t, "q3", third[1].Content)
}

func TestThreadEviction(t *testing.T) {
	llm := &scriptedLLM{answers: []client.Message{answer("a1"), answer("b1"), answer("c1"), answer("a2")}}
	a := newTestAgent(t, llm, nil, Config{MaxThreads: 2})

	for _, threadID := range []string{"t-a", "t-b", "t-c"} {
		_, err := a.ProcessQuery(t.Context(), "q", threadID)
		require.NoError(t, err)
	}
	require.Equal(t, 2, a.memory.size())

	// t-a was the least recently used and starts over
	_, err := a.ProcessQuery(t.Context(), "again", "t-a")
	require.NoError(t, err)
	require.Len(t, llm.prompts[3], 2)
	require.Equal(t, 2, a.memory.size())
}

func TestMemoryKeepsThreadsInUse(t *testing.T) {
	m := newMemory(1)

	held := m.acquire("held")
	held.commit([]client.Message{{Role: client.RoleUser, Content: "kept"}})

	other := m.acquire("other")
	other.release()
	require.Equal(t, 1, m.size())

	held.release()
	require.Equal(t, 1, m.size())

	again := m.acquire("held")
	defer again.release()
	require.Len(t, again.history(), 1)
	require.Equal(t, "kept", again.history()[0].Content)
}

func TestMaxIterations(t *testing.T) {
	var answers []client.Message
	for i := 0; i < 5; i++ {
		answers = append(answers, toolCall("c", "no_such_tool", `{}`))
	}
	llm := &scriptedLLM{answers: answers}
	a := newTestAgent(t, llm, nil, Config{MaxIterations: 3})

	_, err := a.ProcessQuery(t.Context(), "loop", "")
	require.ErrorContains(t, err, "3 iterations")

	// unknown tools are reported to the model, not raised
	last := llm.prompts[len(llm.prompts)-1]
	require.Contains(t, last[len(last)-1].Content, "not a valid tool")
}

func TestWorkerPool(t *testing.T) {
	llm := &scriptedLLM{delay: 50 * time.Millisecond}
	for i := 0; i < 4; i++ {
		llm.answers = append(llm.answers, answer("ok"))
	}
	a := newTestAgent(t, llm, nil, Config{MaxWorkers: 2})
	require.Equal(t, model.ThreadPoolInfo{MaxWorkers: 2}, a.Stats())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		peak    int
		started = make(chan struct{})
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-started
			_, err := a.ProcessQuery(context.Background(), "q", "thread-"+string(rune('a'+i)))
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	close(started)

	deadline := time.After(2 * time.Second)
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
loop:
	for {
		select {
		case <-done:
			break loop
		case <-deadline:
			t.Fatal("queries did not finish")
		default:
			mu.Lock()
			peak = max(peak, a.Stats().ActiveThreads)
			mu.Unlock()
			time.Sleep(time.Millisecond)
		}
	}
	require.LessOrEqual(t, peak, 2)
	require.Equal(t, 0, a.Stats().ActiveThreads)
}

type fakeWallets struct {
	created []string
}

func (f *fakeWallets) Create(_ context.Context, userAddress string) (*model.WalletResponse, error) {
	f.created = append(f.created, userAddress)
	return &model.WalletResponse{UserAddress: userAddress, WalletID: "w-1", QR: "png", Created: true}, nil
}
func (f *fakeWallets) Lookup(context.Context, string) (*model.WalletResponse, error) {
	return nil, errors.New("no wallet found")
}
func (f *fakeWallets) Fund(_ context.Context, req model.FundRequest) (*model.TxResponse, error) {
	return &model.TxResponse{UserAddress: req.UserAddress, TransactionHash: "0xfund"}, nil
}
func (f *fakeWallets) Mint(_ context.Context, req model.MintRequest) (*model.TxResponse, error) {
	return &model.TxResponse{UserAddress: req.UserAddress, TransactionHash: "0xmint-" + req.Amount}, nil
}
func (f *fakeWallets) Swap(_ context.Context, req model.SwapRequest) (*model.TxResponse, error) {
	return &model.TxResponse{UserAddress: req.UserAddress, TransactionHash: "0xswap"}, nil
}
func (f *fakeWallets) Stake(_ context.Context, req model.StakeRequest) (*model.TxResponse, error) {
	return &model.TxResponse{UserAddress: req.UserAddress, TransactionHash: "0xstake"}, nil
}
func (f *fakeWallets) Balance(_ context.Context, userAddress, assetID string) (*model.BalanceResponse, error) {
	return &model.BalanceResponse{UserAddress: userAddress, AssetID: assetID, Amount: "1"}, nil
}

func TestWalletTools(t *testing.T) {
	wallets := &fakeWallets{}
	llm := &scriptedLLM{answers: []client.Message{
		toolCall("c1", "create_wallet", `{"user_address":"0xabc"}`),
		toolCall("c2", "mint", `{"user_address":"0xabc","asset_id":"usdc","amount":"5"}`),
		toolCall("c3", "get_wallet", `{"user_address":"0xdef"}`),
		answer("done"),
	}}
	a := newTestAgent(t, llm, wallets, Config{})
	require.ElementsMatch(t, []string{
		knowledgeToolName, "create_wallet", "get_wallet", "request_faucet_funds",
		"mint", "swap", "stake", "get_balance",
	}, a.ToolNames())

	out, err := a.ProcessQuery(t.Context(), "create a wallet and mint", "w")
	require.NoError(t, err)
	require.Equal(t, "done", out)
	require.Equal(t, []string{"0xabc"}, wallets.created)

	var toolResults []string
	last := llm.prompts[len(llm.prompts)-1]
	for _, m := range last {
		if m.Role == client.RoleTool {
			toolResults = append(toolResults, m.Content)
		}
	}
	require.Len(t, toolResults, 3)

	var created model.WalletResponse
	require.NoError(t, json.Unmarshal([]byte(toolResults[0]), &created))
	require.Equal(t, "w-1", created.WalletID)
	require.Empty(t, created.QR)
	require.Contains(t, toolResults[1], "0xmint-5")
	require.True(t, strings.HasPrefix(toolResults[2], "Error: "))
}
