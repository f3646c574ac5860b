package agent

import (
	"container/list"
	"sync"

	"github.com/AlexZinkM/yield-agent/internal/client"
)

const (
	// maxHistory bounds the messages kept per thread, system prompt excluded
	maxHistory = 50
	// defaultMaxThreads bounds the threads remembered at once
	defaultMaxThreads = 1000
)

// memory keeps the conversation of the most recently used threads. Queries on
// one thread are serialized so each sees the full history of the previous one.
// Beyond maxThreads the least recently used idle thread is forgotten.
type memory struct {
	mu         sync.Mutex
	maxThreads int
	threads    map[string]*list.Element
	recent     *list.List // of *thread, most recent first
}

type thread struct {
	id     string
	memory *memory
	refs   int // guarded by memory.mu

	mu       sync.Mutex
	messages []client.Message
}

func newMemory(maxThreads int) *memory {
	if maxThreads <= 0 {
		maxThreads = defaultMaxThreads
	}
	return &memory{
		maxThreads: maxThreads,
		threads:    make(map[string]*list.Element),
		recent:     list.New(),
	}
}

// acquire locks threadID and returns it; call release when done.
func (m *memory) acquire(threadID string) *thread {
	m.mu.Lock()
	var t *thread
	if e, ok := m.threads[threadID]; ok {
		m.recent.MoveToFront(e)
		t = e.Value.(*thread)
	} else {
		t = &thread{id: threadID, memory: m}
		m.threads[threadID] = m.recent.PushFront(t)
	}
	t.refs++
	m.evict()
	m.mu.Unlock()

	t.mu.Lock()
	return t
}

func (t *thread) release() {
	t.mu.Unlock()

	m := t.memory
	m.mu.Lock()
	t.refs--
	m.evict()
	m.mu.Unlock()
}

// evict drops idle threads from the back until the limit holds. Threads in
// use are skipped, so the limit may be exceeded while they run.
func (m *memory) evict() {
	for e := m.recent.Back(); e != nil && len(m.threads) > m.maxThreads; {
		prev := e.Prev()
		if t := e.Value.(*thread); t.refs == 0 {
			m.recent.Remove(e)
			delete(m.threads, t.id)
		}
		e = prev
	}
}

// size returns the number of remembered threads
func (m *memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.threads)
}

// history returns a copy of the stored messages
func (t *thread) history() []client.Message {
	return append([]client.Message(nil), t.messages...)
}

// commit replaces the stored messages, dropping the oldest beyond maxHistory
// without splitting a tool call from its results.
func (t *thread) commit(messages []client.Message) {
	if len(messages) > maxHistory {
		cut := len(messages) - maxHistory
		for cut < len(messages) && messages[cut].Role != client.RoleUser {
			cut++
		}
		messages = messages[cut:]
	}
	t.messages = messages
}
