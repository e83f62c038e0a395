package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/sunny/internal/app"
	"github.com/abhisek/sunny/internal/config"
	"github.com/abhisek/sunny/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedUser(t *testing.T, dbPath string) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Demo = true
	cfg.Store.Path = dbPath
	cfg.Auth.BcryptCost = bcrypt.MinCost

	ctx := context.Background()
	a, err := app.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	sess, err := a.Auth.Register(ctx, "Ada", "ada@example.com", "secret123", 3)
	require.NoError(t, err)
	_, err = a.Chat.Send(ctx, sess.User.ID, "hello", "")
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sunny "))
}

func TestSchema(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "create table")
}

func TestProgressAndReset(t *testing.T) {
	t.Setenv("SUNNY_CONFIG", "")
	db := filepath.Join(t.TempDir(), "sunny.db")
	seedUser(t, db)

	out, err := run(t, "progress", "ada@example.com", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "Level 1")

	_, err = run(t, "progress", "nobody@example.com", "--db", db)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = run(t, "reset", "ada@example.com", "--db", db)
	require.Error(t, err, "reset needs --yes")

	out, err = run(t, "reset", "ada@example.com", "--db", db, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset progress for Ada")
}

func TestFilterEvents(t *testing.T) {
	events := []store.LLMEvent{
		{ID: 4, Purpose: "chat", Success: true},
		{ID: 3, Purpose: "quiz-gen", Success: false},
		{ID: 2, Purpose: "chat", Success: false},
		{ID: 1, Purpose: "chat", Success: true},
	}
	got := filterEvents(events, "chat", false, 2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(4), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)

	assert.Len(t, filterEvents(events, "chat", false, 0), 3)
	assert.Empty(t, filterEvents(events, "session-plan", false, 5))

	failed := filterEvents(events, "", true, 0)
	require.Len(t, failed, 2)
	assert.Equal(t, int64(3), failed[0].ID)
	assert.Len(t, filterEvents(events, "chat", true, 0), 1)
}

func TestLLMCommands(t *testing.T) {
	t.Setenv("SUNNY_CONFIG", "")
	db := filepath.Join(t.TempDir(), "sunny.db")
	s, err := store.Open(db)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Events().AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "chat",
		InputTokens: 1000, OutputTokens: 200, LatencyMs: 420, Success: true,
		RequestBody: "[user]\nhi", ResponseBody: `"Hello!"`,
	}))
	require.NoError(t, s.Events().AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "openai", Model: "mystery-model", Purpose: "quiz-gen", ErrorMessage: "boom",
	}))
	require.NoError(t, s.Close())

	out, err := run(t, "llm", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "claude-haiku")
	assert.Contains(t, out, "quiz-gen")

	out, err = run(t, "llm", "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage by purpose")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "mystery-model")

	events, err := func() ([]store.LLMEvent, error) {
		s, err := store.Open(db)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Events().QueryLLMEvents(ctx, store.QueryOpts{})
	}()
	require.NoError(t, err)
	require.Len(t, events, 2)

	id := strconv.FormatInt(events[1].ID, 10)
	out, err = run(t, "llm", "view", id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Provider:  anthropic")
	assert.Contains(t, out, "RESPONSE")

	_, err = run(t, "llm", "view", "9999", "--db", db)
	assert.Error(t, err)
}
