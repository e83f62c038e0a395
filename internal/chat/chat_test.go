package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sunny/internal/llm"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/store"
)

func newTestService(t *testing.T, provider llm.Provider) (*Service, *store.User, store.Store) {
	t.Helper()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	u := &store.User{ID: uuid.NewString(), Name: "Kid", Email: "kid@example.com", PasswordHash: "x", Level: 1}
	require.NoError(t, st.Users().Create(context.Background(), u))

	prog := progress.NewService(st.Users(), nil, progress.DefaultConfig(), nil)
	svc := NewService(st.Chats(), provider, prog, DefaultConfig(), nil)
	clock := time.Date(2026, 5, 1, 16, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, u, st
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(
		llm.TextResponse("What do you think 3 + 3 is?"),
		llm.TextResponse("Yes! Great job."),
	)
	svc, u, st := newTestService(t, mock)

	res, err := svc.Send(ctx, u.ID, "  help me with adding  ", "Addition")
	require.NoError(t, err)
	assert.False(t, res.Demo)
	assert.Equal(t, "help me with adding", res.Message.Content)
	assert.Equal(t, "What do you think 3 + 3 is?", res.Reply.Content)
	assert.Equal(t, RoleAssistant, res.Reply.Role)
	assert.Equal(t, "addition", res.Reply.Topic)
	assert.Equal(t, progress.DefaultAwards().ChatMessage, res.XPEarned)

	first := mock.Calls[0]
	assert.Contains(t, first.System, "learning about addition")
	require.Len(t, first.Messages, 1)

	_, err = svc.Send(ctx, u.ID, "6", "addition")
	require.NoError(t, err)
	second := mock.Calls[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, llm.RoleAssistant, second.Messages[1].Role)
	assert.Equal(t, "6", second.Messages[2].Content)

	history, err := svc.History(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "Yes! Great job.", history[3].Content)

	user, err := st.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*progress.DefaultAwards().ChatMessage, user.XP)
}

func TestSend_FallbackReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	svc, u, _ := newTestService(t, mock)

	res, err := svc.Send(context.Background(), u.ID, "why is the sky blue?", "")
	require.NoError(t, err)
	assert.True(t, res.Demo)
	assert.Contains(t, cannedReplies, res.Reply.Content)
}

type filteredProvider struct{}

func (filteredProvider) Generate(context.Context, llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: json.RawMessage(`"Well, the thing about"`), StopReason: "safety"}, nil
}

func (filteredProvider) ModelID() string { return "filtered" }

func TestSend_SafetyStopFallsBack(t *testing.T) {
	svc, u, _ := newTestService(t, filteredProvider{})

	res, err := svc.Send(context.Background(), u.ID, "tell me something scary", "")
	require.NoError(t, err)
	assert.True(t, res.Demo)
	assert.Contains(t, cannedReplies, res.Reply.Content)
}

func TestSend_NoProvider(t *testing.T) {
	svc, u, _ := newTestService(t, nil)

	a, err := svc.Send(context.Background(), u.ID, "hello", "")
	require.NoError(t, err)
	b, err := svc.Send(context.Background(), u.ID, "hello", "")
	require.NoError(t, err)
	assert.True(t, a.Demo)
	assert.Equal(t, a.Reply.Content, b.Reply.Content, "canned replies are stable per message")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want error
	}{
		{"ok", "hi", nil},
		{"blank", "   ", ErrEmptyMessage},
		{"at limit", strings.Repeat("a", MaxMessageLen), nil},
		{"multibyte at limit", strings.Repeat("é", MaxMessageLen), nil},
		{"too long", strings.Repeat("a", MaxMessageLen+1), ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.msg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSend_RejectsInvalid(t *testing.T) {
	mock := llm.NewMockProvider()
	svc, u, _ := newTestService(t, mock)

	_, err := svc.Send(context.Background(), u.ID, strings.Repeat("x", MaxMessageLen+1), "")
	assert.ErrorIs(t, err, ErrMessageTooLong)
	assert.Zero(t, mock.CallCount())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	svc, u, _ := newTestService(t, nil)
	_, err := svc.Send(ctx, u.ID, "hello", "")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, u.ID))
	history, err := svc.History(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}
