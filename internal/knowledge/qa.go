package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlexZinkM/yield-agent/internal/client"
)

const stuffPrompt = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

// ChatModel completes a conversation
type ChatModel interface {
	Chat(ctx context.Context, messages []client.Message, tools []client.ToolDefinition) (client.Message, error)
}

// QA answers questions from the documents retrieved out of an index
type QA struct {
	index *Index
	chat  ChatModel
	topK  int
}

// NewQA returns a retrieval QA chain retrieving topK documents per question
func NewQA(index *Index, chat ChatModel, topK int) *QA {
	if topK <= 0 {
		topK = 4
	}
	return &QA{index: index, chat: chat, topK: topK}
}

// Answer retrieves the documents relevant to question and asks the model to
// answer from them only.
func (qa *QA) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question must not be empty")
	}

	docs, err := qa.index.Search(ctx, question, qa.topK)
	if err != nil {
		return "", err
	}

	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, d.PageContent)
	}

	msg, err := qa.chat.Chat(ctx, []client.Message{{
		Role:    client.RoleUser,
		Content: fmt.Sprintf(stuffPrompt, strings.Join(contents, "\n\n"), question),
	}}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to answer question: %w", err)
	}
	return strings.TrimSpace(msg.Content), nil
}
