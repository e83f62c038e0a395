package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sunny/internal/adaptive"
	"github.com/abhisek/sunny/internal/badges"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/quiz"
	"github.com/abhisek/sunny/internal/store"
)

func TestBuild(t *testing.T) {
	ctx := context.Background()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	u := &store.User{ID: uuid.NewString(), Name: "Kid", Email: "kid@example.com", PasswordHash: "secret-hash", Grade: 4, Level: 1}
	require.NoError(t, st.Users().Create(ctx, u))

	badgeSvc := badges.NewService(st.Badges(), nil)
	prog := progress.NewService(st.Users(), badgeSvc, progress.DefaultConfig(), nil)
	quizzes := quiz.NewService(st.Quizzes(), st.Users(), quiz.NewBank(1), prog, badgeSvc, quiz.DefaultConfig(), nil)
	b := NewBuilder(st.Users(), st.Notes(), quizzes, prog, badgeSvc, DefaultConfig())

	empty, err := b.Build(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, empty.Level.Level)
	assert.Equal(t, quiz.DefaultTopic, empty.RecommendedTopic)
	assert.Empty(t, empty.Topics)
	assert.Empty(t, empty.RecentQuizzes)

	view, err := quizzes.Start(ctx, u.ID, "fractions", adaptive.Easy, 1)
	require.NoError(t, err)
	_, err = quizzes.Answer(ctx, u.ID, view.QuizID, "definitely wrong")
	require.NoError(t, err)
	_, err = prog.RecordAnswer(ctx, u.ID, "shapes", true, adaptive.Easy)
	require.NoError(t, err)
	require.NoError(t, st.Notes().Create(ctx, &store.Note{ID: uuid.NewString(), UserID: u.ID, Content: "hi", Type: "general", Priority: "low"}))

	d, err := b.Build(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "Kid", d.Profile.Name)
	assert.Equal(t, 4, d.Profile.Grade)
	require.Len(t, d.Topics, 2)
	assert.Equal(t, "fractions", d.Topics[0].Topic)
	assert.Equal(t, "shapes", d.Topics[1].Topic)
	assert.Equal(t, "fractions", d.RecommendedTopic)

	require.Len(t, d.RecentQuizzes, 1)
	assert.Equal(t, store.StatusCompleted, d.RecentQuizzes[0].Status)
	assert.Equal(t, 0.0, d.RecentQuizzes[0].Accuracy)

	assert.Equal(t, 1, d.BadgeCounts[badges.TypeQuiz])
	assert.Len(t, d.RecentBadges, 1)
	assert.Equal(t, 1, d.NoteCount)
	assert.Equal(t, 1, d.Streak.Current)
	assert.Equal(t, progress.DefaultAwards().QuizComplete, d.Level.XP)
}

func TestBuild_UnknownUser(t *testing.T) {
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	prog := progress.NewService(st.Users(), nil, progress.DefaultConfig(), nil)
	b := NewBuilder(st.Users(), st.Notes(), nil, prog, nil, DefaultConfig())
	_, err = b.Build(context.Background(), "nobody")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
