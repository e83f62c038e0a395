package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// restClient is the slice of the Supabase client the store needs. Both
// *supabase.Client and *postgrest.Client satisfy it.
type restClient interface {
	From(table string) *postgrest.QueryBuilder
}

// Supabase is the Store backed by a Supabase Postgres database, accessed
// through its PostgREST API. The schema is applied out of band; see
// PostgresSchema.
type Supabase struct {
	rest restClient
}

var _ Store = (*Supabase)(nil)

// OpenSupabase connects to the Supabase project at url using a service key.
func OpenSupabase(url, key string) (*Supabase, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Supabase{rest: client}, nil
}

// NewPostgREST builds a Supabase store on a bare PostgREST endpoint.
func NewPostgREST(url string, headers map[string]string) *Supabase {
	return &Supabase{rest: postgrest.NewClient(url, "public", headers)}
}

func (s *Supabase) Users() UserRepo       { return &restUsers{rest: s.rest} }
func (s *Supabase) Quizzes() QuizRepo     { return &restQuizzes{rest: s.rest} }
func (s *Supabase) Notes() NoteRepo       { return &restNotes{rest: s.rest} }
func (s *Supabase) Chats() ChatRepo       { return &restChats{rest: s.rest} }
func (s *Supabase) Sessions() SessionRepo { return &restSessions{rest: s.rest} }
func (s *Supabase) Badges() BadgeRepo     { return &restBadges{rest: s.rest} }
func (s *Supabase) Events() EventRepo     { return &restEvents{rest: s.rest} }

// Ping issues a cheap HEAD count against the users table.
func (s *Supabase) Ping(context.Context) error {
	if _, _, err := s.rest.From("users").Select("id", "exact", true).Limit(1, "").Execute(); err != nil {
		return mapRESTError("ping", err)
	}
	return nil
}

// Close is a no-op; the REST client holds no pooled resources.
func (s *Supabase) Close() error { return nil }

// mapRESTError translates PostgREST error codes into store errors.
// Postgres reports unique violations as SQLSTATE 23505.
func mapRESTError(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "23505") {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// insertRow inserts v and discards the response body.
func insertRow(rest restClient, table string, v any) error {
	_, _, err := rest.From(table).Insert(v, false, "", "minimal", "").Execute()
	return mapRESTError("insert "+table, err)
}

// selectOne fetches the first row where column = value.
func selectOne[T any](rest restClient, table, column, value string) (*T, error) {
	var rows []T
	if _, err := rest.From(table).Select("*", "", false).Eq(column, value).Limit(1, "").ExecuteTo(&rows); err != nil {
		return nil, mapRESTError("select "+table, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// updateRow patches the row with the given id and reports ErrNotFound when
// nothing matched.
func updateRow(rest restClient, table, id string, v any) error {
	body, _, err := rest.From(table).Update(v, "representation", "").Eq("id", id).Execute()
	if err != nil {
		return mapRESTError("update "+table, err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decode update %s: %w", table, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func applyRange(f *postgrest.FilterBuilder, column string, opts QueryOpts) *postgrest.FilterBuilder {
	if !opts.From.IsZero() {
		f = f.Gte(column, opts.From.UTC().Format(time.RFC3339Nano))
	}
	if !opts.To.IsZero() {
		f = f.Lte(column, opts.To.UTC().Format(time.RFC3339Nano))
	}
	return f
}

func applyLimit(f *postgrest.FilterBuilder, limit int) *postgrest.FilterBuilder {
	if limit > 0 {
		f = f.Limit(limit, "")
	}
	return f
}

type restUsers struct{ rest restClient }

func (r *restUsers) Create(_ context.Context, u *User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Level == 0 {
		u.Level = 1
	}
	if u.Progress == nil {
		u.Progress = map[string]TopicProgress{}
	}
	return insertRow(r.rest, "users", u)
}

func (r *restUsers) Get(_ context.Context, id string) (*User, error) {
	return selectOne[User](r.rest, "users", "id", id)
}

func (r *restUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	return selectOne[User](r.rest, "users", "email", email)
}

func (r *restUsers) Update(_ context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	return updateRow(r.rest, "users", u.ID, map[string]any{
		"name":           u.Name,
		"grade":          u.Grade,
		"xp":             u.XP,
		"level":          u.Level,
		"current_streak": u.CurrentStreak,
		"longest_streak": u.LongestStreak,
		"last_active":    u.LastActive,
		"progress":       u.Progress,
		"updated_at":     u.UpdatedAt,
	})
}

type restQuizzes struct{ rest restClient }

func (r *restQuizzes) Create(_ context.Context, q *QuizSession) error {
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = StatusActive
	}
	q.Questions, q.Answers, q.Adjustments = nonNil(q.Questions), nonNil(q.Answers), nonNil(q.Adjustments)
	return insertRow(r.rest, "quiz_sessions", q)
}

func (r *restQuizzes) Get(_ context.Context, id string) (*QuizSession, error) {
	return selectOne[QuizSession](r.rest, "quiz_sessions", "id", id)
}

func (r *restQuizzes) Update(_ context.Context, q *QuizSession) error {
	q.UpdatedAt = time.Now().UTC()
	q.Questions, q.Answers, q.Adjustments = nonNil(q.Questions), nonNil(q.Answers), nonNil(q.Adjustments)
	return updateRow(r.rest, "quiz_sessions", q.ID, q)
}

func (r *restQuizzes) ListByUser(_ context.Context, userID string, opts QueryOpts) ([]QuizSession, error) {
	f := r.rest.From("quiz_sessions").Select("*", "", false).Eq("user_id", userID)
	f = applyRange(f, "created_at", opts)
	f = applyLimit(f.Order("created_at", &postgrest.OrderOpts{Ascending: false}), opts.Limit)
	var out []QuizSession
	if _, err := f.ExecuteTo(&out); err != nil {
		return nil, mapRESTError("list quizzes", err)
	}
	return out, nil
}

type restNotes struct{ rest restClient }

func (r *restNotes) Create(_ context.Context, n *Note) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	return insertRow(r.rest, "notes", n)
}

func (r *restNotes) Get(_ context.Context, id string) (*Note, error) {
	return selectOne[Note](r.rest, "notes", "id", id)
}

func (r *restNotes) ListByUser(_ context.Context, userID string, nf NoteFilter) ([]Note, error) {
	f := r.rest.From("notes").Select("*", "", false).Eq("user_id", userID)
	if nf.Type != "" {
		f = f.Eq("type", nf.Type)
	}
	f = applyLimit(f.Order("created_at", &postgrest.OrderOpts{Ascending: false}), nf.Limit)
	var out []Note
	if _, err := f.ExecuteTo(&out); err != nil {
		return nil, mapRESTError("list notes", err)
	}
	return out, nil
}

func (r *restNotes) CountByUser(_ context.Context, userID string) (int, error) {
	_, count, err := r.rest.From("notes").Select("id", "exact", true).Eq("user_id", userID).Execute()
	if err != nil {
		return 0, mapRESTError("count notes", err)
	}
	return int(count), nil
}

func (r *restNotes) Update(_ context.Context, n *Note) error {
	n.UpdatedAt = time.Now().UTC()
	return updateRow(r.rest, "notes", n.ID, map[string]any{
		"content":    n.Content,
		"type":       n.Type,
		"priority":   n.Priority,
		"updated_at": n.UpdatedAt,
	})
}

func (r *restNotes) Delete(_ context.Context, id string) error {
	body, _, err := r.rest.From("notes").Delete("representation", "").Eq("id", id).Execute()
	if err != nil {
		return mapRESTError("delete note", err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decode delete note: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

type restChats struct{ rest restClient }

func (r *restChats) Append(_ context.Context, m *ChatMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return insertRow(r.rest, "chat_messages", m)
}

func (r *restChats) Recent(_ context.Context, userID string, limit int) ([]ChatMessage, error) {
	f := r.rest.From("chat_messages").Select("*", "", false).Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})
	var out []ChatMessage
	if _, err := applyLimit(f, limit).ExecuteTo(&out); err != nil {
		return nil, mapRESTError("recent chat messages", err)
	}
	slices.Reverse(out)
	return out, nil
}

func (r *restChats) DeleteByUser(_ context.Context, userID string) error {
	_, _, err := r.rest.From("chat_messages").Delete("minimal", "").Eq("user_id", userID).Execute()
	return mapRESTError("delete chat messages", err)
}

type restSessions struct{ rest restClient }

func (r *restSessions) Create(_ context.Context, s *LearningSession) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusActive
	}
	return insertRow(r.rest, "learning_sessions", s)
}

func (r *restSessions) Get(_ context.Context, id string) (*LearningSession, error) {
	return selectOne[LearningSession](r.rest, "learning_sessions", "id", id)
}

func (r *restSessions) Update(_ context.Context, s *LearningSession) error {
	s.UpdatedAt = time.Now().UTC()
	return updateRow(r.rest, "learning_sessions", s.ID, s)
}

type restBadges struct{ rest restClient }

func (r *restBadges) Award(_ context.Context, b *Badge) error {
	if b.AwardedAt.IsZero() {
		b.AwardedAt = time.Now().UTC()
	}
	return insertRow(r.rest, "badges", b)
}

func (r *restBadges) ListByUser(_ context.Context, userID string, opts QueryOpts) ([]Badge, error) {
	f := r.rest.From("badges").Select("*", "", false).Eq("user_id", userID)
	f = applyRange(f, "awarded_at", opts)
	f = applyLimit(f.Order("awarded_at", &postgrest.OrderOpts{Ascending: false}), opts.Limit)
	var out []Badge
	if _, err := f.ExecuteTo(&out); err != nil {
		return nil, mapRESTError("list badges", err)
	}
	return out, nil
}

func (r *restBadges) CountByType(_ context.Context, userID string) (map[string]int, error) {
	var rows []struct {
		Type string `json:"type"`
	}
	if _, err := r.rest.From("badges").Select("type", "", false).Eq("user_id", userID).ExecuteTo(&rows); err != nil {
		return nil, mapRESTError("count badges", err)
	}
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.Type]++
	}
	return counts, nil
}

type restEvents struct{ rest restClient }

func (r *restEvents) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	return insertRow(r.rest, "llm_events", LLMEvent{
		Timestamp:    time.Now().UTC(),
		Provider:     data.Provider,
		Model:        data.Model,
		Purpose:      data.Purpose,
		InputTokens:  data.InputTokens,
		OutputTokens: data.OutputTokens,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
		RequestBody:  data.RequestBody,
		ResponseBody: data.ResponseBody,
	})
}

func (r *restEvents) QueryLLMEvents(_ context.Context, opts QueryOpts) ([]LLMEvent, error) {
	f := r.rest.From("llm_events").Select("*", "", false)
	f = applyRange(f, "timestamp", opts)
	f = applyLimit(f.Order("id", &postgrest.OrderOpts{Ascending: false}), opts.Limit)
	var out []LLMEvent
	if _, err := f.ExecuteTo(&out); err != nil {
		return nil, mapRESTError("query LLM events", err)
	}
	return out, nil
}

func (r *restEvents) GetLLMEvent(_ context.Context, id int64) (*LLMEvent, error) {
	e, err := selectOne[LLMEvent](r.rest, "llm_events", "id", strconv.FormatInt(id, 10))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// usageRow is the projection used for client-side aggregation; PostgREST
// does not expose GROUP BY without a database view.
type usageRow struct {
	Purpose      string `json:"purpose"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
}

func (r *restEvents) usageRows() ([]usageRow, error) {
	var rows []usageRow
	_, err := r.rest.From("llm_events").
		Select("purpose,model,input_tokens,output_tokens,latency_ms", "", false).
		ExecuteTo(&rows)
	if err != nil {
		return nil, mapRESTError("LLM usage", err)
	}
	return rows, nil
}

func (r *restEvents) LLMUsageByPurpose(context.Context) ([]PurposeUsage, error) {
	rows, err := r.usageRows()
	if err != nil {
		return nil, err
	}
	byPurpose := make(map[string]*PurposeUsage)
	totalLatency := make(map[string]int64)
	for _, row := range rows {
		u, ok := byPurpose[row.Purpose]
		if !ok {
			u = &PurposeUsage{Purpose: row.Purpose}
			byPurpose[row.Purpose] = u
		}
		u.Calls++
		u.InputTokens += row.InputTokens
		u.OutputTokens += row.OutputTokens
		totalLatency[row.Purpose] += row.LatencyMs
	}
	out := make([]PurposeUsage, 0, len(byPurpose))
	for p, u := range byPurpose {
		u.AvgLatencyMs = totalLatency[p] / int64(u.Calls)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Purpose < out[j].Purpose
	})
	return out, nil
}

func (r *restEvents) LLMUsageByModel(context.Context) ([]ModelUsage, error) {
	rows, err := r.usageRows()
	if err != nil {
		return nil, err
	}
	byModel := make(map[string]*ModelUsage)
	for _, row := range rows {
		u, ok := byModel[row.Model]
		if !ok {
			u = &ModelUsage{Model: row.Model}
			byModel[row.Model] = u
		}
		u.Calls++
		u.InputTokens += row.InputTokens
		u.OutputTokens += row.OutputTokens
	}
	out := make([]ModelUsage, 0, len(byModel))
	for _, u := range byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Model < out[j].Model
	})
	return out, nil
}
