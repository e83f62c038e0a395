// Package chat implements the free-form tutor chat with Sunny.
package chat

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/llm"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/store"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxMessageLen is the longest accepted learner message, in characters.
const MaxMessageLen = 2000

var (
	// ErrEmptyMessage is returned for a blank message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong is returned for a message over MaxMessageLen.
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLen)
)

const systemPrompt = `You are Sunny, a friendly and encouraging tutor for children aged 6-12.

Rules:
- Use short sentences and simple words.
- Guide the child to the answer with hints and questions. Do not just give answers to homework.
- Celebrate effort, not only correct answers.
- Stay on learning topics. If asked about something unsafe or not for kids, gently steer back to learning.
- Never ask for personal information.`

var cannedReplies = []string{
	"That's a great question! Let's think about it together. What do you already know about it?",
	"I love your curiosity! Can you tell me a bit more about what you're working on?",
	"You're doing awesome! Try breaking the problem into smaller steps. What's the first step?",
	"Great thinking! Let's try drawing a picture of the problem. What do you see?",
}

// Config controls the chat service.
type Config struct {
	// HistoryLimit is how many earlier messages are sent as context.
	HistoryLimit int
	MaxTokens    int
	Temperature  float64
}

// DefaultConfig returns the standard chat configuration.
func DefaultConfig() Config {
	return Config{HistoryLimit: 10, MaxTokens: 400, Temperature: 0.7}
}

// Reply is the tutor's answer to one message.
type Reply struct {
	Message  store.ChatMessage  `json:"message"`
	Reply    store.ChatMessage  `json:"reply"`
	XPEarned int                `json:"xp_earned"`
	Level    progress.LevelInfo `json:"level"`
	Demo     bool               `json:"demo"`
}

// Service answers chat messages.
type Service struct {
	chats    store.ChatRepo
	provider llm.Provider
	progress *progress.Service
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a chat Service. A nil provider always answers with
// canned replies.
func NewService(chats store.ChatRepo, provider llm.Provider, prog *progress.Service, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chats:    chats,
		provider: provider,
		progress: prog,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks a learner message.
func Validate(message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return ErrMessageTooLong
	}
	return nil
}

// Send answers message in the context of the learner's recent history,
// stores both sides of the exchange and awards chat XP.
func (s *Service) Send(ctx context.Context, userID, message, topic string) (*Reply, error) {
	if err := Validate(message); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	topic = strings.ToLower(strings.TrimSpace(topic))

	history, err := s.chats.Recent(ctx, userID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	text, demo := s.answer(ctx, history, message, topic)

	now := s.now()
	userMsg := store.ChatMessage{ID: uuid.NewString(), UserID: userID, Role: RoleUser, Content: message, Topic: topic, CreatedAt: now}
	if err := s.chats.Append(ctx, &userMsg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	reply := store.ChatMessage{ID: uuid.NewString(), UserID: userID, Role: RoleAssistant, Content: text, Topic: topic, CreatedAt: now.Add(time.Millisecond)}
	if err := s.chats.Append(ctx, &reply); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}

	res := &Reply{Message: userMsg, Reply: reply, Demo: demo}
	award, err := s.progress.AwardXP(ctx, userID, s.progress.Awards().ChatMessage, "chat")
	if err != nil {
		s.logger.Warn("failed to award chat xp", zap.String("user_id", userID), zap.Error(err))
	} else {
		res.XPEarned = award.Amount
		res.Level = award.Level
	}
	return res, nil
}

// History returns the latest limit messages, oldest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]store.ChatMessage, error) {
	msgs, err := s.chats.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	return msgs, nil
}

// Clear deletes the learner's chat history.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.chats.DeleteByUser(ctx, userID)
}

func (s *Service) answer(ctx context.Context, history []store.ChatMessage, message, topic string) (string, bool) {
	if s.provider == nil {
		return cannedReply(message), true
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	system := systemPrompt
	if topic != "" {
		system += fmt.Sprintf("\n\nThe child is currently learning about %s.", topic)
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeChat), llm.Request{
		System:      system,
		Messages:    msgs,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err == nil {
		text := strings.TrimSpace(resp.Text())
		switch {
		case resp.StopReason == "safety":
			// A filtered reply may be cut off mid-sentence.
			err = errors.New("reply stopped by safety filter")
		case text == "":
			err = errors.New("empty reply")
		default:
			return text, false
		}
	}
	s.logger.Warn("chat generation failed, using canned reply", zap.Error(err))
	return cannedReply(message), true
}

// cannedReply picks a stable encouraging reply for message.
func cannedReply(message string) string {
	h := fnv.New32a()
	h.Write([]byte(message))
	return cannedReplies[h.Sum32()%uint32(len(cannedReplies))]
}
