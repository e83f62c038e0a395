package quiz

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/adaptive"
	"github.com/abhisek/sunny/internal/badges"
	"github.com/abhisek/sunny/internal/mastery"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/store"
)

var (
	// ErrQuizCompleted is returned when answering a finished quiz.
	ErrQuizCompleted = errors.New("quiz already completed")
	// ErrNoActiveQuestion is returned when a quiz has no unanswered question.
	ErrNoActiveQuestion = errors.New("quiz has no active question")
	// ErrInvalidCount is returned for a question count outside the allowed range.
	ErrInvalidCount = errors.New("question count out of range")
)

// Config holds quiz tunables.
type Config struct {
	DefaultCount int
	MaxCount     int
	Policy       adaptive.Policy
	// RecentErrors is how many past mistakes are sent to the generator.
	RecentErrors int
}

// DefaultConfig returns the standard quiz configuration.
func DefaultConfig() Config {
	return Config{
		DefaultCount: 10,
		MaxCount:     25,
		Policy:       adaptive.DefaultPolicy(),
		RecentErrors: 5,
	}
}

// AnswerObserver is notified of every graded answer.
type AnswerObserver interface {
	ObserveAnswer(topic, difficulty string, correct bool)
}

// View is the learner-facing state of a quiz with its current question.
type View struct {
	QuizID         string    `json:"quiz_id"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Question       *Question `json:"question,omitempty"`
	QuestionNumber int       `json:"question_number"`
	TotalQuestions int       `json:"total_questions"`
	Demo           bool      `json:"demo"`
}

// AnswerResult is the outcome of one answer.
type AnswerResult struct {
	Correct       bool                     `json:"correct"`
	CorrectAnswer string                   `json:"correct_answer"`
	Explanation   string                   `json:"explanation"`
	XPEarned      int                      `json:"xp_earned"`
	Streak        int                      `json:"streak"`
	Difficulty    string                   `json:"difficulty"`
	Adjustment    *store.DifficultyChange  `json:"adjustment,omitempty"`
	StreakBadge   *badges.Award            `json:"streak_badge,omitempty"`
	Mastery       *mastery.StateTransition `json:"mastery,omitempty"`
	LevelUp       *progress.LevelUp        `json:"level_up,omitempty"`
	Completed     bool                     `json:"completed"`
	Next          *View                    `json:"next,omitempty"`
	Summary       *Summary                 `json:"summary,omitempty"`
}

// ReviewItem is one question of the per-question review.
type ReviewItem struct {
	Question    string `json:"question"`
	Given       string `json:"given"`
	Answer      string `json:"answer"`
	Correct     bool   `json:"correct"`
	Difficulty  string `json:"difficulty"`
	XPEarned    int    `json:"xp_earned"`
	Explanation string `json:"explanation"`
}

// Summary is the end-of-quiz report.
type Summary struct {
	QuizID          string                   `json:"quiz_id"`
	Topic           string                   `json:"topic"`
	Status          string                   `json:"status"`
	Correct         int                      `json:"correct"`
	Total           int                      `json:"total"`
	TargetCount     int                      `json:"target_count"`
	Accuracy        float64                  `json:"accuracy"`
	XPEarned        int                      `json:"xp_earned"`
	BestStreak      int                      `json:"best_streak"`
	FinalDifficulty string                   `json:"final_difficulty"`
	Adjustments     []store.DifficultyChange `json:"adjustments"`
	Review          []ReviewItem             `json:"review"`
	Badges          []badges.Award           `json:"badges"`
	Demo            bool                     `json:"demo"`
	CreatedAt       time.Time                `json:"created_at"`
	CompletedAt     *time.Time               `json:"completed_at,omitempty"`
}

// ListItem is a compact quiz entry for history views.
type ListItem struct {
	QuizID      string     `json:"quiz_id"`
	Topic       string     `json:"topic"`
	Status      string     `json:"status"`
	Correct     int        `json:"correct"`
	Total       int        `json:"total"`
	Accuracy    float64    `json:"accuracy"`
	XPEarned    int        `json:"xp_earned"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Service runs quizzes.
type Service struct {
	quizzes  store.QuizRepo
	users    store.UserRepo
	gen      Generator
	progress *progress.Service
	badges   *badges.Service
	cfg      Config
	logger   *zap.Logger
	observer AnswerObserver
	now      func() time.Time

	locks [64]sync.Mutex
}

// NewService creates a quiz Service.
func NewService(quizzes store.QuizRepo, users store.UserRepo, gen Generator, prog *progress.Service, badgeSvc *badges.Service, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		quizzes:  quizzes,
		users:    users,
		gen:      gen,
		progress: prog,
		badges:   badgeSvc,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetObserver registers an answer observer.
func (s *Service) SetObserver(o AnswerObserver) { s.observer = o }

// lockQuiz serializes answers to the same quiz.
func (s *Service) lockQuiz(id string) func() {
	h := fnv.New32a()
	h.Write([]byte(id))
	m := &s.locks[h.Sum32()%uint32(len(s.locks))]
	m.Lock()
	return m.Unlock
}

// Start creates a quiz and generates its first question. An empty topic
// uses DefaultTopic and a zero count uses the configured default.
func (s *Service) Start(ctx context.Context, userID, topic string, difficulty adaptive.Difficulty, count int) (*View, error) {
	topic = normalizeTopic(topic)
	if count == 0 {
		count = s.cfg.DefaultCount
	}
	if count < 1 || count > s.cfg.MaxCount {
		return nil, fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidCount, count, s.cfg.MaxCount)
	}
	if !difficulty.Valid() {
		difficulty = adaptive.Easy
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	q, err := s.gen.Generate(ctx, GenerateInput{Topic: topic, Grade: u.Grade, Difficulty: difficulty})
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}

	now := s.now()
	quiz := &store.QuizSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		Topic:       topic,
		Status:      store.StatusActive,
		Difficulty:  difficulty.String(),
		TargetCount: count,
		Questions:   []store.QuizQuestion{q.ToRecord()},
		Demo:        q.Demo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.logger.Info("quiz started",
		zap.String("user_id", userID),
		zap.String("quiz_id", quiz.ID),
		zap.String("topic", topic),
		zap.String("difficulty", quiz.Difficulty),
		zap.Int("count", count),
		zap.Bool("demo", quiz.Demo))
	return viewOf(quiz, q), nil
}

// Current returns the quiz with its unanswered question, if any.
func (s *Service) Current(ctx context.Context, userID, quizID string) (*View, error) {
	quiz, err := s.load(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	var q *Question
	if quiz.Status == store.StatusActive && len(quiz.Questions) > len(quiz.Answers) {
		q = QuestionFromRecord(quiz.Questions[len(quiz.Answers)])
	}
	return viewOf(quiz, q), nil
}

// Answer grades an answer to the current question, adapts the difficulty,
// awards XP and badges, and either serves the next question or completes
// the quiz.
func (s *Service) Answer(ctx context.Context, userID, quizID, answer string) (*AnswerResult, error) {
	unlock := s.lockQuiz(quizID)
	defer unlock()

	quiz, err := s.load(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status == store.StatusCompleted {
		return nil, ErrQuizCompleted
	}
	if len(quiz.Questions) <= len(quiz.Answers) {
		return nil, ErrNoActiveQuestion
	}

	now := s.now()
	q := QuestionFromRecord(quiz.Questions[len(quiz.Answers)])
	correct := CheckAnswer(answer, q)
	awards := s.progress.Awards()

	xp := 0
	if correct {
		xp = awards.ForAnswer(q.Difficulty)
		quiz.CorrectCount++
	}
	quiz.TotalAnswered++
	quiz.Answers = append(quiz.Answers, store.QuizAnswer{
		QuestionID: q.ID,
		Given:      strings.TrimSpace(answer),
		Correct:    correct,
		Difficulty: q.Difficulty.String(),
		XPEarned:   xp,
		AnsweredAt: now,
	})
	quiz.XPEarned += xp

	run := runningStreak(quiz.Answers)
	if run > quiz.BestStreak {
		quiz.BestStreak = run
	}

	current, _ := adaptive.ParseDifficulty(quiz.Difficulty)
	next, tracker, adj := s.cfg.Policy.Apply(current, adaptive.Tracker{
		CorrectStreak:   quiz.CorrectStreak,
		IncorrectStreak: quiz.IncorrectStreak,
	}, correct)
	quiz.CorrectStreak = tracker.CorrectStreak
	quiz.IncorrectStreak = tracker.IncorrectStreak
	quiz.Difficulty = next.String()

	res := &AnswerResult{
		Correct:       correct,
		CorrectAnswer: q.Answer,
		Explanation:   q.Explanation,
		XPEarned:      xp,
		Streak:        run,
		Difficulty:    quiz.Difficulty,
	}
	if adj != nil {
		change := store.DifficultyChange{
			From:       adj.From.String(),
			To:         adj.To.String(),
			Reason:     adj.Reason,
			AtQuestion: quiz.TotalAnswered,
			At:         now,
		}
		quiz.Adjustments = append(quiz.Adjustments, change)
		res.Adjustment = &change
	}

	var nextQ *Question
	if quiz.TotalAnswered >= quiz.TargetCount {
		bonus := awards.ForQuiz(quiz.CorrectCount, quiz.TotalAnswered)
		quiz.XPEarned += bonus
		res.XPEarned += bonus
		quiz.Status = store.StatusCompleted
		quiz.CompletedAt = &now
		res.Completed = true
	} else {
		nextQ, err = s.gen.Generate(ctx, s.nextInput(ctx, quiz, next))
		if err != nil {
			return nil, fmt.Errorf("generate question: %w", err)
		}
		quiz.Questions = append(quiz.Questions, nextQ.ToRecord())
		quiz.Demo = quiz.Demo || nextQ.Demo
	}
	quiz.UpdatedAt = now

	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveAnswer(quiz.Topic, q.Difficulty.String(), correct)
	}
	s.applyRewards(ctx, quiz, q, correct, run, res)

	if res.Completed {
		sum, err := s.summarize(ctx, quiz)
		if err != nil {
			return nil, err
		}
		res.Summary = sum
		s.logger.Info("quiz completed",
			zap.String("user_id", userID),
			zap.String("quiz_id", quiz.ID),
			zap.Int("correct", quiz.CorrectCount),
			zap.Int("total", quiz.TotalAnswered),
			zap.Int("xp", quiz.XPEarned))
	} else {
		res.Next = viewOf(quiz, nextQ)
	}
	return res, nil
}

// applyRewards persists XP, mastery and badges for one answer. Failures
// are logged; the answer itself is already saved.
func (s *Service) applyRewards(ctx context.Context, quiz *store.QuizSession, q *Question, correct bool, run int, res *AnswerResult) {
	last := quiz.Answers[len(quiz.Answers)-1]
	if award, err := s.progress.AwardXP(ctx, quiz.UserID, last.XPEarned, "quiz-answer"); err != nil {
		s.logger.Warn("failed to award answer xp", zap.String("quiz_id", quiz.ID), zap.Error(err))
	} else if award.LevelUp != nil {
		res.LevelUp = award.LevelUp
	}

	tr, err := s.progress.RecordAnswer(ctx, quiz.UserID, quiz.Topic, correct, q.Difficulty)
	if err != nil {
		s.logger.Warn("failed to record mastery", zap.String("quiz_id", quiz.ID), zap.Error(err))
	}
	res.Mastery = tr

	if correct && badges.IsStreakMilestone(run) && s.badges != nil {
		res.StreakBadge = s.badges.AwardStreak(ctx, quiz.UserID, run, quiz.Topic, quiz.ID)
	}

	if !res.Completed {
		return
	}
	bonus := s.progress.Awards().ForQuiz(quiz.CorrectCount, quiz.TotalAnswered)
	if award, err := s.progress.AwardXP(ctx, quiz.UserID, bonus, "quiz-complete"); err != nil {
		s.logger.Warn("failed to award completion xp", zap.String("quiz_id", quiz.ID), zap.Error(err))
	} else if award.LevelUp != nil {
		res.LevelUp = award.LevelUp
	}
	if s.badges != nil {
		s.badges.AwardQuiz(ctx, quiz.UserID, accuracy(quiz.CorrectCount, quiz.TotalAnswered), quiz.Topic, quiz.ID)
	}
}

// Summary returns the report for a quiz. Active quizzes report progress
// so far.
func (s *Service) Summary(ctx context.Context, userID, quizID string) (*Summary, error) {
	quiz, err := s.load(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, quiz)
}

// List returns the user's quizzes, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]ListItem, error) {
	quizzes, err := s.quizzes.ListByUser(ctx, userID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]ListItem, len(quizzes))
	for i, q := range quizzes {
		out[i] = ListItem{
			QuizID:      q.ID,
			Topic:       q.Topic,
			Status:      q.Status,
			Correct:     q.CorrectCount,
			Total:       q.TotalAnswered,
			Accuracy:    accuracy(q.CorrectCount, q.TotalAnswered),
			XPEarned:    q.XPEarned,
			CreatedAt:   q.CreatedAt,
			CompletedAt: q.CompletedAt,
		}
	}
	return out, nil
}

// load fetches a quiz owned by userID. Quizzes of other users are
// reported as not found.
func (s *Service) load(ctx context.Context, userID, quizID string) (*store.QuizSession, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz.UserID != userID {
		return nil, fmt.Errorf("load quiz: %w", store.ErrNotFound)
	}
	return quiz, nil
}

func (s *Service) nextInput(ctx context.Context, quiz *store.QuizSession, d adaptive.Difficulty) GenerateInput {
	input := GenerateInput{Topic: quiz.Topic, Difficulty: d}
	if u, err := s.users.Get(ctx, quiz.UserID); err == nil {
		input.Grade = u.Grade
	}

	byID := make(map[string]store.QuizQuestion, len(quiz.Questions))
	for _, q := range quiz.Questions {
		input.PriorQuestions = append(input.PriorQuestions, q.Text)
		byID[q.ID] = q
	}
	for _, a := range quiz.Answers {
		if a.Correct {
			continue
		}
		q := byID[a.QuestionID]
		input.RecentErrors = append(input.RecentErrors,
			fmt.Sprintf("answered %q for %q, correct was %q", a.Given, q.Text, q.Answer))
	}
	if n := s.cfg.RecentErrors; n > 0 && len(input.RecentErrors) > n {
		input.RecentErrors = input.RecentErrors[len(input.RecentErrors)-n:]
	}
	return input
}

func (s *Service) summarize(ctx context.Context, quiz *store.QuizSession) (*Summary, error) {
	sum := &Summary{
		QuizID:          quiz.ID,
		Topic:           quiz.Topic,
		Status:          quiz.Status,
		Correct:         quiz.CorrectCount,
		Total:           quiz.TotalAnswered,
		TargetCount:     quiz.TargetCount,
		Accuracy:        accuracy(quiz.CorrectCount, quiz.TotalAnswered),
		XPEarned:        quiz.XPEarned,
		BestStreak:      quiz.BestStreak,
		FinalDifficulty: quiz.Difficulty,
		Adjustments:     quiz.Adjustments,
		Review:          make([]ReviewItem, 0, len(quiz.Answers)),
		Badges:          []badges.Award{},
		Demo:            quiz.Demo,
		CreatedAt:       quiz.CreatedAt,
		CompletedAt:     quiz.CompletedAt,
	}
	if sum.Adjustments == nil {
		sum.Adjustments = []store.DifficultyChange{}
	}

	byID := make(map[string]store.QuizQuestion, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID] = q
	}
	for _, a := range quiz.Answers {
		q := byID[a.QuestionID]
		sum.Review = append(sum.Review, ReviewItem{
			Question:    q.Text,
			Given:       a.Given,
			Answer:      q.Answer,
			Correct:     a.Correct,
			Difficulty:  a.Difficulty,
			XPEarned:    a.XPEarned,
			Explanation: q.Explanation,
		})
	}

	if s.badges != nil {
		earned, err := s.badges.ForSource(ctx, quiz.UserID, quiz.ID)
		if err != nil {
			return nil, err
		}
		sum.Badges = earned
	}
	return sum, nil
}

func viewOf(quiz *store.QuizSession, q *Question) *View {
	v := &View{
		QuizID:         quiz.ID,
		Topic:          quiz.Topic,
		Difficulty:     quiz.Difficulty,
		Question:       q,
		QuestionNumber: len(quiz.Answers) + 1,
		TotalQuestions: quiz.TargetCount,
		Demo:           quiz.Demo,
	}
	if q == nil {
		v.QuestionNumber = len(quiz.Answers)
	}
	return v
}

// runningStreak counts consecutive correct answers at the end of answers.
func runningStreak(answers []store.QuizAnswer) int {
	n := 0
	for i := len(answers) - 1; i >= 0 && answers[i].Correct; i-- {
		n++
	}
	return n
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func normalizeTopic(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return DefaultTopic
	}
	return topic
}
