package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/sunny/internal/adaptive"
	"github.com/abhisek/sunny/internal/dashboard"
	"github.com/abhisek/sunny/internal/notes"
	"github.com/abhisek/sunny/internal/progress"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Grade    int    `json:"grade" validate:"gte=0,lte=12"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      dashboard.Profile `json:"user"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.Auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Grade)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: dashboard.ProfileOf(sess.User)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: dashboard.ProfileOf(sess.User)})
}

type meResponse struct {
	Profile dashboard.Profile  `json:"profile"`
	Level   progress.LevelInfo `json:"level"`
	Streak  int                `json:"streak"`
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.Store.Users().Get(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		Profile: dashboard.ProfileOf(u),
		Level:   s.Progress.Curve().Info(u.XP),
		Streak:  progress.StreakOf(u).Effective(s.now()),
	})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.Dashboard.Build(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type sessionStartRequest struct {
	Topic   string `json:"topic" validate:"max=64"`
	Minutes int    `json:"minutes" validate:"gte=0"`
	Mood    string `json:"mood" validate:"max=32"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req sessionStartRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.Sessions.Start(r.Context(), userID(r), req.Topic, req.Minutes, req.Mood)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type sessionContinueRequest struct {
	SessionID  string `json:"session_id" validate:"required"`
	Reflection string `json:"reflection" validate:"max=2000"`
}

func (s *Server) continueSession(w http.ResponseWriter, r *http.Request) {
	var req sessionContinueRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.Sessions.Continue(r.Context(), userID(r), req.SessionID, req.Reflection)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type quizStartRequest struct {
	Topic      string `json:"topic" validate:"max=64"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Count      int    `json:"count" validate:"gte=0"`
}

func (s *Server) startQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizStartRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	d, _ := adaptive.ParseDifficulty(req.Difficulty)
	view, err := s.Quiz.Start(r.Context(), userID(r), req.Topic, d, req.Count)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

type quizAnswerRequest struct {
	QuizID string `json:"quiz_id" validate:"required"`
	Answer string `json:"answer" validate:"max=200"`
}

func (s *Server) answerQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizAnswerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.Quiz.Answer(r.Context(), userID(r), req.QuizID, req.Answer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) currentQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := s.Quiz.Current(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) quizSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Quiz.Summary(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.Quiz.List(r.Context(), userID(r), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": items})
}

type noteRequest struct {
	Content  string `json:"content" validate:"required,max=5000"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

func (n noteRequest) input() notes.Input {
	return notes.Input{Content: n.Content, Type: n.Type, Priority: n.Priority}
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := s.Notes.Create(r.Context(), userID(r), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.Notes.List(r.Context(), userID(r), r.URL.Query().Get("type"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": list})
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	n, err := s.Notes.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := s.Notes.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.Notes.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
	Topic   string `json:"topic" validate:"max=64"`
}

func (s *Server) sendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	reply, err := s.Chat.Send(r.Context(), userID(r), req.Message, req.Topic)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	msgs, err := s.Chat.History(r.Context(), userID(r), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
