package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestPostgREST serves a minimal PostgREST stand-in.
func newTestPostgREST(t *testing.T, handler http.HandlerFunc) *Supabase {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPostgREST(server.URL, map[string]string{"apikey": "test"})
}

func TestSupabaseUserNotFound(t *testing.T) {
	s := newTestPostgREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("path = %q, want /users", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "eq.nobody@example.com" {
			t.Errorf("email filter = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	_, err := s.Users().GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSupabaseUserGet(t *testing.T) {
	s := newTestPostgREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{{
			"id":       "u1",
			"name":     "Ada",
			"email":    "ada@example.com",
			"xp":       240,
			"level":    2,
			"progress": map[string]any{"fractions": map[string]any{"mastery": 60}},
		}})
	})

	u, err := s.Users().Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.XP != 240 || u.Progress["fractions"].Mastery != 60 {
		t.Errorf("user = %+v", u)
	}
}

func TestSupabaseDuplicateEmail(t *testing.T) {
	s := newTestPostgREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		var row map[string]any
		if err := json.Unmarshal(body, &row); err != nil {
			t.Errorf("decode insert body: %v", err)
		}
		if row["email"] != "dup@example.com" {
			t.Errorf("insert body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"users_email_key\""}`))
	})

	err := s.Users().Create(context.Background(), &User{ID: "u2", Name: "B", Email: "dup@example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSupabaseUpdateMissingNote(t *testing.T) {
	s := newTestPostgREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	err := s.Notes().Update(context.Background(), &Note{ID: "n1", Content: "x", Type: "general", Priority: "low"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSupabaseUsageAggregation(t *testing.T) {
	s := newTestPostgREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"purpose":"chat","model":"m1","input_tokens":10,"output_tokens":2,"latency_ms":100},
			{"purpose":"chat","model":"m1","input_tokens":30,"output_tokens":4,"latency_ms":300},
			{"purpose":"quiz-gen","model":"m2","input_tokens":5,"output_tokens":1,"latency_ms":40}
		]`))
	})

	byPurpose, err := s.Events().LLMUsageByPurpose(context.Background())
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("len = %d, want 2", len(byPurpose))
	}
	chat := byPurpose[0]
	if chat.Purpose != "chat" || chat.Calls != 2 || chat.InputTokens != 40 || chat.AvgLatencyMs != 200 {
		t.Errorf("chat usage = %+v", chat)
	}
}
