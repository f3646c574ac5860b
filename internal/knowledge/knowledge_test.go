package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/AlexZinkM/yield-agent/internal/client"
	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/stretchr/testify/require"
)

const dataset = `[
	{"chain":"Ethereum","project":"aave-v3","symbol":"USDC","tvlUsd":1500000,"apyBase":4.2,"stablecoin":true},
	{"chain":"Base","project":"aerodrome","symbol":"WETH","tvlUsd":"900000","apyBase":"12.5","stablecoin":"False"},
	{"chain":"Solana","project":"kamino","symbol":"SOL","tvlUsd":300000,"apyBase":null,"stablecoin":false}
]`

// keywordEmbedder scores texts on a few fixed keywords
type keywordEmbedder struct {
	calls atomic.Int32
	err   error
}

var keywords = []string{"usdc", "weth", "sol"}

func (e *keywordEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		in = strings.ToLower(in)
		v := make([]float32, len(keywords))
		for j, kw := range keywords {
			if strings.Contains(in, "symbol: "+kw) || in == kw {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

type recordingChat struct {
	prompt string
}

func (c *recordingChat) Chat(_ context.Context, messages []client.Message, _ []client.ToolDefinition) (client.Message, error) {
	c.prompt = messages[len(messages)-1].Content
	return client.Message{Role: client.RoleAssistant, Content: " aave-v3 pays 4.2% "}, nil
}

func writeDataset(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndDocuments(t *testing.T) {
	records, err := LoadRecords(writeDataset(t, "\xef\xbb\xbf"+dataset))
	require.NoError(t, err)
	require.Len(t, records, 3)

	docs := Documents(records)
	require.Equal(t,
		"Project: aave-v3, Chain: Ethereum, Symbol: USDC, TVL: 1500000, APY: 4.2, Stablecoin: True",
		docs[0].PageContent)
	require.Equal(t,
		"Project: aerodrome, Chain: Base, Symbol: WETH, TVL: 900000, APY: 12.5, Stablecoin: False",
		docs[1].PageContent)
	require.Equal(t, map[string]string{"symbol": "SOL", "project": "kamino"}, docs[2].Metadata)

	_, err = LoadRecords(writeDataset(t, `{"not":"an array"}`))
	require.Error(t, err)
	_, err = LoadRecords(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestIndexSearch(t *testing.T) {
	records, err := LoadRecords(writeDataset(t, dataset))
	require.NoError(t, err)
	embedder := &keywordEmbedder{}

	idx, err := Build(t.Context(), embedder, Documents(records))
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	docs, err := idx.Search(t.Context(), "weth", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "aerodrome", docs[0].Metadata["project"])

	// unknown keyword scores every document 0: document order wins
	docs, err = idx.Search(t.Context(), "btc", 10)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "aave-v3", docs[0].Metadata["project"])
	require.Equal(t, "aerodrome", docs[1].Metadata["project"])
	require.Equal(t, "kamino", docs[2].Metadata["project"])

	docs, err = idx.Search(t.Context(), "usdc", 0)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestBuildBatches(t *testing.T) {
	records := make([]model.YieldRecord, 150)
	for i := range records {
		records[i] = model.YieldRecord{Project: "p", Symbol: "USDC"}
	}
	embedder := &keywordEmbedder{}

	idx, err := Build(t.Context(), embedder, Documents(records))
	require.NoError(t, err)
	require.Equal(t, 150, idx.Len())
	require.EqualValues(t, 3, embedder.calls.Load())

	_, err = Build(t.Context(), &keywordEmbedder{err: errors.New("quota")}, Documents(records))
	require.ErrorContains(t, err, "quota")

	_, err = Build(t.Context(), embedder, nil)
	require.Error(t, err)
}

func TestQAAnswer(t *testing.T) {
	records, err := LoadRecords(writeDataset(t, dataset))
	require.NoError(t, err)
	idx, err := Build(t.Context(), &keywordEmbedder{}, Documents(records))
	require.NoError(t, err)

	chat := &recordingChat{}
	qa := NewQA(idx, chat, 1)

	answer, err := qa.Answer(t.Context(), "usdc")
	require.NoError(t, err)
	require.Equal(t, "aave-v3 pays 4.2%", answer)
	require.Contains(t, chat.prompt, "Project: aave-v3")
	require.NotContains(t, chat.prompt, "Project: kamino")
	require.True(t, strings.HasSuffix(chat.prompt, "Question: usdc\nHelpful Answer:"))

	_, err = qa.Answer(t.Context(), " ")
	require.Error(t, err)
}

func TestFilterAndWriteRecords(t *testing.T) {
	records, err := LoadRecords(writeDataset(t, dataset))
	require.NoError(t, err)

	filtered := FilterRecords(records, 500000, 0)
	require.Len(t, filtered, 2)
	require.Equal(t, "aave-v3", filtered[0].Project)

	filtered = FilterRecords(records, 0, 1)
	require.Len(t, filtered, 1)

	path := filepath.Join(t.TempDir(), "out", "knowledge.json")
	require.NoError(t, WriteRecords(path, filtered))

	again, err := LoadRecords(path)
	require.NoError(t, err)
	require.Equal(t, filtered, again)
}
