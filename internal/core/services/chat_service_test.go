package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan55254/Heritage/internal/core/domain"
)

const testSystemPrompt = "You are Heritage AI."

type fakeCompleter struct {
	mu    sync.Mutex
	calls [][]domain.Turn
	reply func(n int, turns []domain.Turn) (domain.Completion, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, turns []domain.Turn) (domain.Completion, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, append([]domain.Turn(nil), turns...))
	f.mu.Unlock()

	if f.reply == nil {
		return domain.Completion{Content: fmt.Sprintf("answer %d", n+1), Model: "test-model"}, nil
	}
	return f.reply(n, turns)
}

func (f *fakeCompleter) lastCall() []domain.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type chatFixture struct {
	storage   *mockStorage
	history   *HistoryService
	completer *fakeCompleter
	chat      *ChatService
}

func newChatFixture(t *testing.T, chatRule domain.RateLimitRule) *chatFixture {
	t.Helper()
	storage := newMockStorage()
	limiter := newTestLimiter(t, storage, Config{
		Rules: map[domain.Action]domain.RateLimitRule{domain.ActionChat: chatRule},
	})
	history := newTestHistory(t, storage)
	completer := &fakeCompleter{}

	chat, err := NewChatService(limiter, history, completer, ChatConfig{
		SystemPrompt:      testSystemPrompt,
		CompletionTimeout: time.Second,
	}, discardLogger(), nil)
	require.NoError(t, err)

	return &chatFixture{storage: storage, history: history, completer: completer, chat: chat}
}

func TestChat_ScenarioA_ThrottlesEleventhRequest(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: 60 * time.Second})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		result := f.chat.HandleChat(ctx, "1.2.3.4", fmt.Sprintf("question %d", i))
		require.True(t, result.Success, "request %d should succeed: %s", i+1, result.Message)
		f.storage.advance(500 * time.Millisecond)
	}

	result := f.chat.HandleChat(ctx, "1.2.3.4", "one more")
	assert.Equal(t, domain.ChatResult{Success: false, Message: "You are chatting too fast."}, result)
	assert.Equal(t, 10, f.completer.callCount(), "throttled request must not reach the model")
}

func TestChat_ScenarioB_EmptyPromptTouchesNothing(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})

	for _, prompt := range []string{"", "   ", "\n\t"} {
		result := f.chat.HandleChat(context.Background(), "1.2.3.4", prompt)
		assert.Equal(t, domain.ChatResult{Success: false, Message: "Please enter a valid prompt."}, result)
	}
	assert.Zero(t, f.storage.opCount())
	assert.Zero(t, f.completer.callCount())
}

func TestChat_ScenarioC_UpstreamFailureKeepsHistory(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	ctx := context.Background()

	require.True(t, f.chat.HandleChat(ctx, "1.2.3.4", "Tell me about Ashoka").Success)
	before, err := f.history.Get(ctx, "1.2.3.4")
	require.NoError(t, err)

	f.completer.reply = func(int, []domain.Turn) (domain.Completion, error) {
		return domain.Completion{}, errors.New("401 invalid api key")
	}

	result := f.chat.HandleChat(ctx, "1.2.3.4", "And his edicts?")
	assert.Equal(t, domain.ChatResult{Success: false, Message: "API connection failed. Check your API Key."}, result)

	after, err := f.history.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestChat_ScenarioD_KeepsLastThreeExchanges(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		require.True(t, f.chat.HandleChat(ctx, "1.2.3.4", fmt.Sprintf("turn %d", i)).Success)
	}

	history, err := f.history.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.Len(t, history, domain.MaxHistoryTurns)

	expected := domain.History{
		{Role: domain.RoleUser, Content: "turn 2"},
		{Role: domain.RoleAssistant, Content: "answer 2"},
		{Role: domain.RoleUser, Content: "turn 3"},
		{Role: domain.RoleAssistant, Content: "answer 3"},
		{Role: domain.RoleUser, Content: "turn 4"},
		{Role: domain.RoleAssistant, Content: "answer 4"},
	}
	assert.Equal(t, expected, history)
}

func TestChat_ColdIdentitySendsSystemAndUserOnly(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})

	result := f.chat.HandleChat(context.Background(), "5.6.7.8", "Who was Chandragupta?")
	require.True(t, result.Success)

	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleSystem, Content: testSystemPrompt},
		{Role: domain.RoleUser, Content: "Who was Chandragupta?"},
	}, f.completer.lastCall())
}

func TestChat_ContextCarriesHistoryBetweenSystemAndPrompt(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.True(t, f.chat.HandleChat(ctx, "1.2.3.4", fmt.Sprintf("turn %d", i)).Success)

		sent := f.completer.lastCall()
		require.NotEmpty(t, sent)
		assert.Equal(t, domain.RoleSystem, sent[0].Role)
		assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: fmt.Sprintf("turn %d", i)}, sent[len(sent)-1])
		assert.LessOrEqual(t, len(sent), domain.MaxHistoryTurns+2)
		for _, turn := range sent[1:] {
			assert.NotEqual(t, domain.RoleSystem, turn.Role, "system prompt must appear only once")
		}
	}

	stored, err := f.history.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	for _, turn := range stored {
		assert.NotEqual(t, domain.RoleSystem, turn.Role)
	}
}

func TestChat_HistoryExpiresWhenIdle(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	ctx := context.Background()

	require.True(t, f.chat.HandleChat(ctx, "1.2.3.4", "first").Success)
	f.storage.advance(domain.HistoryTTL)
	require.True(t, f.chat.HandleChat(ctx, "1.2.3.4", "second").Success)

	assert.Len(t, f.completer.lastCall(), 2)
}

func TestChat_IdentityIsNormalized(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	ctx := context.Background()

	require.True(t, f.chat.HandleChat(ctx, "1.2.3.4, 10.0.0.1", "first").Success)

	history, err := f.history.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestChat_EmptyCompletionFallsBack(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	f.completer.reply = func(int, []domain.Turn) (domain.Completion, error) {
		return domain.Completion{Content: "  "}, nil
	}

	result := f.chat.HandleChat(context.Background(), "1.2.3.4", "hello")
	assert.Equal(t, domain.ChatResult{Success: true, Message: domain.MsgEmptyCompletion}, result)
}

func TestChat_CompletionTimeoutIsUpstreamFailure(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	f.chat.config.CompletionTimeout = 20 * time.Millisecond
	f.completer.reply = func(int, []domain.Turn) (domain.Completion, error) {
		time.Sleep(100 * time.Millisecond)
		return domain.Completion{}, context.DeadlineExceeded
	}

	_, err := f.chat.Chat(context.Background(), "1.2.3.4", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestChat_RateLimitStoreDownFailsClosed(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	f.storage.failOn("setnx")

	result := f.chat.HandleChat(context.Background(), "1.2.3.4", "hello")
	assert.Equal(t, domain.ChatResult{Success: false, Message: domain.MsgConnectionFailed}, result)
	assert.Zero(t, f.completer.callCount())
}

func TestChat_HistoryReadFailureDegradesToEmptyContext(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	f.storage.failOn("get")

	result := f.chat.HandleChat(context.Background(), "1.2.3.4", "hello")
	assert.True(t, result.Success)
	assert.Len(t, f.completer.lastCall(), 2)
}

func TestChat_HistoryWriteFailureIsBestEffort(t *testing.T) {
	f := newChatFixture(t, domain.RateLimitRule{Requests: 10, Window: time.Minute})
	f.storage.failOn("set")

	result := f.chat.HandleChat(context.Background(), "1.2.3.4", "hello")
	assert.Equal(t, domain.ChatResult{Success: true, Message: "answer 1"}, result)
}

func TestNewChatService_Validation(t *testing.T) {
	storage := newMockStorage()
	limiter := newTestLimiter(t, storage, Config{})
	history := newTestHistory(t, storage)

	_, err := NewChatService(nil, history, &fakeCompleter{}, ChatConfig{SystemPrompt: "x"}, nil, nil)
	assert.Error(t, err)
	_, err = NewChatService(limiter, nil, &fakeCompleter{}, ChatConfig{SystemPrompt: "x"}, nil, nil)
	assert.Error(t, err)
	_, err = NewChatService(limiter, history, nil, ChatConfig{SystemPrompt: "x"}, nil, nil)
	assert.Error(t, err)
	_, err = NewChatService(limiter, history, &fakeCompleter{}, ChatConfig{SystemPrompt: " "}, nil, nil)
	assert.Error(t, err)
}
