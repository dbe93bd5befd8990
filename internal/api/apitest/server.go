// Package apitest provides an in-memory stand-in for the Grow to Impress
// backend, served over httptest, for client tests.
package apitest

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/dshills/impress/internal/schema"
)

// SessionCookie is the cookie name the fake issues on login.
const SessionCookie = "session"

// StoredStory is a story row as the fake keeps it.
type StoredStory struct {
	ID       int64
	Name     string
	Email    string
	Story    string
	Image    []byte
	MIMEType string
	Approved bool
}

// Server is a fake backend. Exported fields may be edited by tests before
// or between requests while holding no locks; handlers take Mu.
type Server struct {
	*httptest.Server

	Mu        sync.Mutex
	Users     map[string]string          // email -> password
	Sessions  map[string]string          // token -> email
	Guides    map[string][]schema.Day    // topic -> days
	Progress  map[string]map[int]bool    // topic -> day -> completed
	Stories   []StoredStory
	Resources map[string]string          // path -> raw body
	Reply     func(message string) string
	Updates   []schema.DayCompletion
	Chats     []string
	Summaries map[string]string          // video URL -> summary

	// Fail forces a status for a path ("POST /update-day-completion").
	Fail map[string]int
	// Hits counts requests by "METHOD /path" pattern.
	Hits map[string]int
	// RequestIDs collects X-Request-ID headers in arrival order.
	RequestIDs []string
}

// New starts a fake seeded with one user (maya@example.com / bloom) and
// registers cleanup on t.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Users:     map[string]string{"maya@example.com": "bloom"},
		Sessions:  map[string]string{},
		Guides:    map[string][]schema.Day{},
		Progress:  map[string]map[int]bool{},
		Resources: map[string]string{},
		Summaries: map[string]string{},
		Fail:      map[string]int{},
		Hits:      map[string]int{},
		Reply:     func(m string) string { return "You've got this! You said: " + m },
	}

	mux := http.NewServeMux()
	s.handle(mux, "GET /{$}", s.index)
	s.handle(mux, "GET /api/data", s.data)
	s.handle(mux, "POST /signup", s.signup)
	s.handle(mux, "POST /login", s.login)
	s.handle(mux, "GET /logout", s.logout)
	s.handle(mux, "GET /get-guide/{topic}", s.guide)
	s.handle(mux, "POST /get-user-progress", s.userProgress)
	s.handle(mux, "POST /update-day-completion", s.updateDay)
	s.handle(mux, "POST /submit-story", s.submitStory)
	s.handle(mux, "GET /approved-stories", s.approvedStories)
	s.handle(mux, "GET /story/{id}", s.story)
	s.handle(mux, "POST /summarize-video", s.summarize)
	s.handle(mux, "POST /chatbot", s.chat)
	s.handle(mux, "GET /generate-mentorship-guide", s.resource)
	s.handle(mux, "GET /generate-resources", s.resource)
	s.handle(mux, "GET /generate-scholarship-guide", s.resource)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// HitCount returns the number of requests seen for pattern.
func (s *Server) HitCount(pattern string) int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Hits[pattern]
}

// SetGuide installs a guide of n days for topic.
func (s *Server) SetGuide(topic string, n int) {
	days := make([]schema.Day, n)
	for i := range days {
		days[i] = schema.Day{
			Day:        i + 1,
			Title:      "Step " + strconv.Itoa(i+1),
			Approaches: []string{"Try it alone", "Try it with a friend"},
		}
	}
	s.Mu.Lock()
	s.Guides[topic] = days
	s.Mu.Unlock()
}

// MarkDone records day as completed for topic.
func (s *Server) MarkDone(topic string, days ...int) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Progress[topic] == nil {
		s.Progress[topic] = map[int]bool{}
	}
	for _, d := range days {
		s.Progress[topic][d] = true
	}
}

// Completed reports the stored flag for topic/day.
func (s *Server) Completed(topic string, day int) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Progress[topic][day]
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h func(w http.ResponseWriter, r *http.Request)) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		s.Mu.Lock()
		s.Hits[pattern]++
		s.RequestIDs = append(s.RequestIDs, r.Header.Get("X-Request-ID"))
		status, forced := s.Fail[pattern]
		s.Mu.Unlock()
		if forced {
			writeJSON(w, status, schema.ErrorResponse{Error: "forced failure"})
			return
		}
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, schema.ErrorResponse{Error: msg})
}

// currentUser returns the logged-in email or "" (caller holds no lock).
func (s *Server) currentUser(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Sessions[c.Value]
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	io.WriteString(w, "<!doctype html><title>Grow to Impress</title>") //nolint:errcheck
}

func (s *Server) data(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schema.MessageResponse{Message: "Hello from Flask!"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var creds schema.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide an email and password")
		return
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if _, exists := s.Users[creds.Email]; exists {
		writeError(w, http.StatusBadRequest, "User with this email already exists")
		return
	}
	s.Users[creds.Email] = creds.Password
	writeJSON(w, http.StatusCreated, schema.MessageResponse{Message: "User registered successfully"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds schema.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	s.Mu.Lock()
	pw, ok := s.Users[creds.Email]
	if !ok || pw != creds.Password {
		s.Mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := newToken()
	s.Sessions[token] = creds.Email
	s.Mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, schema.MessageResponse{Message: "Login successful"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.Mu.Lock()
		delete(s.Sessions, c.Value)
		s.Mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, schema.MessageResponse{Message: "Logged out successfully"})
}

func (s *Server) guide(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r) == "" {
		writeError(w, http.StatusUnauthorized, "User not logged in")
		return
	}
	topic := r.PathValue("topic")
	s.Mu.Lock()
	days, ok := s.Guides[topic]
	s.Mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Topic not found")
		return
	}
	writeJSON(w, http.StatusOK, schema.GuideResponse{DailyGuide: &schema.DailyGuide{Goal: topic, Guide: days}})
}

func (s *Server) userProgress(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r) == "" {
		writeError(w, http.StatusUnauthorized, "User not logged in")
		return
	}
	s.Mu.Lock()
	out := schema.Progress{}
	for topic, days := range s.Progress {
		for day, done := range days {
			out[topic] = append(out[topic], schema.DayStatus{Day: day, Completed: done})
		}
	}
	s.Mu.Unlock()
	writeJSON(w, http.StatusOK, schema.ProgressResponse{Progress: out})
}

func (s *Server) updateDay(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r) == "" {
		writeError(w, http.StatusUnauthorized, "User not logged in")
		return
	}
	var dc schema.DayCompletion
	if err := json.NewDecoder(r.Body).Decode(&dc); err != nil || dc.Topic == "" || dc.Day == 0 {
		writeError(w, http.StatusBadRequest, "Missing required data")
		return
	}
	s.Mu.Lock()
	if s.Progress[dc.Topic] == nil {
		s.Progress[dc.Topic] = map[int]bool{}
	}
	s.Progress[dc.Topic][dc.Day] = dc.Completed
	s.Updates = append(s.Updates, dc)
	s.Mu.Unlock()
	writeJSON(w, http.StatusOK, schema.MessageResponse{Message: "Day completion status updated successfully"})
}

func (s *Server) submitStory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "All fields except image are required")
		return
	}
	st := StoredStory{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Story: r.FormValue("yourStory"),
	}
	if st.Name == "" || st.Email == "" || st.Story == "" {
		writeError(w, http.StatusBadRequest, "All fields except image are required")
		return
	}
	if f, hdr, err := r.FormFile("image"); err == nil {
		st.Image, _ = io.ReadAll(f)
		st.MIMEType = hdr.Header.Get("Content-Type")
		f.Close()
	}
	s.Mu.Lock()
	st.ID = int64(len(s.Stories) + 1)
	s.Stories = append(s.Stories, st)
	s.Mu.Unlock()
	writeJSON(w, http.StatusCreated, schema.MessageResponse{Message: "Story submitted successfully!"})
}

func (s *Server) approvedStories(w http.ResponseWriter, _ *http.Request) {
	s.Mu.Lock()
	out := []schema.Story{}
	for _, st := range s.Stories {
		if st.Approved {
			out = append(out, toWire(st))
		}
	}
	s.Mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) story(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	for _, st := range s.Stories {
		if st.ID == id && st.Approved {
			writeJSON(w, http.StatusOK, toWire(st))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Story not found")
}

func toWire(st StoredStory) schema.Story {
	out := schema.Story{ID: st.ID, Name: st.Name, Story: st.Story}
	if len(st.Image) > 0 {
		mime := st.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(st.Image)
		out.Image = &uri
		out.MIMEType = &mime
	}
	return out
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	var req schema.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "YouTube URL is required")
		return
	}
	s.Mu.Lock()
	sum, ok := s.Summaries[req.URL]
	s.Mu.Unlock()
	if !ok {
		writeError(w, http.StatusInternalServerError, "Failed to download video from YouTube")
		return
	}
	writeJSON(w, http.StatusOK, schema.SummarizeResponse{Summary: sum})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req schema.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.Mu.Lock()
	s.Chats = append(s.Chats, req.Message)
	reply := s.Reply(req.Message)
	s.Mu.Unlock()
	writeJSON(w, http.StatusOK, schema.ChatResponse{Response: reply})
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	body, ok := s.Resources[r.URL.Path]
	s.Mu.Unlock()
	if !ok {
		writeError(w, http.StatusInternalServerError, "model unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, body) //nolint:errcheck
}

func newToken() string {
	b := make([]byte, 16)
	rand.Read(b) //nolint:errcheck
	return hex.EncodeToString(b)
}
