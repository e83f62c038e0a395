package store

import "time"

// User is a learner profile. It carries the XP counter, the daily streak
// and the per-topic progress map.
type User struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Email         string                   `json:"email"`
	PasswordHash  string                   `json:"password_hash"`
	Grade         int                      `json:"grade"`
	XP            int                      `json:"xp"`
	Level         int                      `json:"level"`
	CurrentStreak int                      `json:"current_streak"`
	LongestStreak int                      `json:"longest_streak"`
	LastActive    string                   `json:"last_active"` // YYYY-MM-DD, empty until first activity
	Progress      map[string]TopicProgress `json:"progress"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// TopicProgress is the persisted per-topic proficiency record.
type TopicProgress struct {
	Attempted     int       `json:"attempted"`
	Correct       int       `json:"correct"`
	WeightedScore float64   `json:"weighted_score"`
	WeightedTotal float64   `json:"weighted_total"`
	Mastery       int       `json:"mastery"`
	State         string    `json:"state"`
	LastPracticed time.Time `json:"last_practiced"`
}

// QuizQuestion is a persisted quiz question.
type QuizQuestion struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Format      string   `json:"format"`
	Answer      string   `json:"answer"`
	AnswerType  string   `json:"answer_type"`
	Choices     []string `json:"choices,omitempty"`
	Hint        string   `json:"hint,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Topic       string   `json:"topic"`
	Difficulty  string   `json:"difficulty"`
}

// QuizAnswer records one answer given during a quiz.
type QuizAnswer struct {
	QuestionID string    `json:"question_id"`
	Given      string    `json:"given"`
	Correct    bool      `json:"correct"`
	Difficulty string    `json:"difficulty"`
	XPEarned   int       `json:"xp_earned"`
	AnsweredAt time.Time `json:"answered_at"`
}

// DifficultyChange is one entry of a quiz's difficulty-adjustment log.
type DifficultyChange struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason"`
	AtQuestion int       `json:"at_question"`
	At         time.Time `json:"at"`
}

// Quiz session statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// QuizSession holds the ordered questions and answers of one quiz along
// with its running counters.
type QuizSession struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	Topic           string             `json:"topic"`
	Status          string             `json:"status"`
	Difficulty      string             `json:"difficulty"`
	TargetCount     int                `json:"target_count"`
	Questions       []QuizQuestion     `json:"questions"`
	Answers         []QuizAnswer       `json:"answers"`
	Adjustments     []DifficultyChange `json:"adjustments"`
	CorrectCount    int                `json:"correct_count"`
	TotalAnswered   int                `json:"total_answered"`
	CorrectStreak   int                `json:"correct_streak"`
	IncorrectStreak int                `json:"incorrect_streak"`
	BestStreak      int                `json:"best_streak"`
	XPEarned        int                `json:"xp_earned"`
	Demo            bool               `json:"demo"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	CompletedAt     *time.Time         `json:"completed_at"`
}

// Note is a free-text comment tagged with a type and priority.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one turn of a learner's tutor chat.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionActivity is one step of a learning-session plan.
type SessionActivity struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Minutes     int    `json:"minutes"`
}

// SessionPlan is the ordered list of activities for a learning session.
type SessionPlan struct {
	Greeting   string            `json:"greeting"`
	Activities []SessionActivity `json:"activities"`
}

// LearningSession is a guided study session built from a plan.
type LearningSession struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Topic       string      `json:"topic"`
	Mood        string      `json:"mood"`
	Minutes     int         `json:"minutes"`
	Plan        SessionPlan `json:"plan"`
	Step        int         `json:"step"`
	Status      string      `json:"status"`
	XPEarned    int         `json:"xp_earned"`
	Demo        bool        `json:"demo"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at"`
}

// Badge is an awarded achievement.
type Badge struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Rarity    string    `json:"rarity"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	Topic     string    `json:"topic"`
	SourceID  string    `json:"source_id"`
	AwardedAt time.Time `json:"awarded_at"`
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a recorded LLM request.
type LLMEvent struct {
	ID           int64     `json:"id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Purpose      string    `json:"purpose"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	LatencyMs    int64     `json:"latency_ms"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message"`
	RequestBody  string    `json:"request_body"`
	ResponseBody string    `json:"response_body"`
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}
