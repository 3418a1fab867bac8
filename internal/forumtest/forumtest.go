// Package forumtest runs an in-process forum service speaking the
// remote API the client consumes. Tests use it to exercise the full
// request/response cycles, including auth rejection and failures.
package forumtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ljosc/discuss/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const secret = "forumtest-secret"

type user struct {
	profile  domain.Profile
	passHash []byte
	likes    int
}

type thread struct {
	domain.Thread
	likedBy map[string]bool
	seenBy  map[string]bool
}

// Call is one request observed by the server.
type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]*user // by email
	threads  []*thread
	calls    []Call
	failures map[string][]int // "METHOD path" -> queued status codes
	revoked  map[string]bool
	ttl      time.Duration
}

func New() *Server {
	s := &Server{
		users:    make(map[string]*user),
		failures: make(map[string][]int),
		revoked:  make(map[string]bool),
		ttl:      time.Hour,
	}

	r := chi.NewRouter()
	r.Use(s.record, s.injectFailures)
	r.Post("/auth/v1/login", s.login)
	r.Post("/auth/v1/signup", s.signup)
	r.Group(func(r chi.Router) {
		r.Use(s.needAuth)
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		r.Get("/api/v1/thread", s.listThreads)
		r.Post("/api/v1/thread", s.createThread)
		r.Post("/api/v1/thread/reply", s.reply)
		r.Post("/api/v1/thread/like", s.like)
		r.Get("/api/v1/thread/{id}", s.getThread)
		r.Get("/api/v1/users/top", s.topContributors)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser registers a user and returns a valid token pair for it.
func (s *Server) AddUser(username, email, password string) domain.Credentials {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{
		profile:  domain.Profile{Id: uuid.NewString(), Username: username, Email: email},
		passHash: hash,
	}
	s.users[email] = u
	return s.issue(u)
}

// AddThread seeds a thread authored by the user with the given email.
func (s *Server) AddThread(authorEmail, title, content string) domain.ThreadId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addThread(s.users[authorEmail], title, content)
}

// FailNext makes the next requests to method+path answer with the given
// statuses, in order. Status 0 drops the connection.
func (s *Server) FailNext(method, path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], statuses...)
}

// Revoke invalidates an access token so protected calls get 401.
func (s *Server) Revoke(accessToken string) {
	s.mu.Lock()
	s.revoked[accessToken] = true
	s.mu.Unlock()
}

// Calls returns requests matching method and path, oldest first.
func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) issue(u *user) domain.Credentials {
	claims := jwt.MapClaims{
		"uid":   u.profile.Id,
		"email": u.profile.Email,
		"exp":   time.Now().Add(s.ttl).Unix(),
		"jti":   uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return domain.Credentials{AccessToken: token, RefreshToken: uuid.NewString()}
}

func (s *Server) addThread(author *user, title, content string) domain.ThreadId {
	t := &thread{
		Thread: domain.Thread{
			ThreadMetadata: domain.ThreadMetadata{
				Id:         uuid.NewString(),
				Title:      title,
				Author:     domain.Author{Id: author.profile.Id, Username: author.profile.Username},
				CreateDate: time.Now().UTC().Format(time.RFC3339),
			},
			Content: content,
			Replies: []domain.Reply{},
		},
		likedBy: make(map[string]bool),
		seenBy:  make(map[string]bool),
	}
	s.threads = append(s.threads, t)
	return t.Id
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil && r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), body)))
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		queue := s.failures[key]
		status := -1
		if len(queue) > 0 {
			status, s.failures[key] = queue[0], queue[1:]
		}
		s.mu.Unlock()

		switch {
		case status == 0:
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return
				}
			}
			http.Error(w, "dropped", http.StatusBadGateway)
		case status > 0:
			http.Error(w, http.StatusText(status), status)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) needAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found {
			http.Error(w, "Please sign-in", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid access token", http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		revoked := s.revoked[tokenString]
		s.mu.Unlock()
		if revoked {
			http.Error(w, "Invalid access token", http.StatusUnauthorized)
			return
		}
		claims, _ := token.Claims.(jwt.MapClaims)
		email, _ := claims["email"].(string)
		next.ServeHTTP(w, r.WithContext(withEmail(r.Context(), email)))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok || bcrypt.CompareHashAndPassword(u.passHash, []byte(password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	creds := s.issue(u)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  creds.AccessToken,
		"refreshToken": creds.RefreshToken,
		"user":         u.profile,
	})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	username, _ := body["username"].(string)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if username == "" || email == "" || password == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, exists := s.users[email]
	s.mu.Unlock()
	if exists {
		http.Error(w, "account already registered", http.StatusConflict)
		return
	}
	s.AddUser(username, email, password)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	viewer := emailFrom(r.Context())
	filter, err := domain.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := []domain.ThreadSummary{}
	for _, t := range s.threads {
		if filter == domain.FilterUnseen && t.seenBy[viewer] {
			continue
		}
		list = append(list, domain.ThreadSummary{ThreadMetadata: s.metadata(t, viewer), Replies: len(t.Replies)})
	}
	if filter == domain.FilterTop {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Likes > list[j].Likes })
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getThread(w http.ResponseWriter, r *http.Request) {
	viewer := emailFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(chi.URLParam(r, "id"))
	if t == nil {
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}
	if !t.seenBy[viewer] {
		t.seenBy[viewer] = true
		t.Views++
	}
	out := t.Thread
	out.ThreadMetadata = s.metadata(t, viewer)
	out.Replies = append([]domain.Reply{}, t.Replies...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createThread(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	title, _ := body["title"].(string)
	content, _ := body["content"].(string)
	if title == "" || content == "" {
		http.Error(w, "title and content are required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addThread(s.users[emailFrom(r.Context())], title, content)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	id, _ := body["threadId"].(string)
	content, _ := body["content"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}
	if content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	u := s.users[emailFrom(r.Context())]
	t.Replies = append(t.Replies, domain.Reply{
		Author:  domain.Author{Id: u.profile.Id, Username: u.profile.Username},
		Content: content,
		Date:    time.Now().UTC().Format(time.RFC3339Nano),
	})
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	id, _ := body["threadId"].(string)
	like, ok := body["like"].(bool)
	if !ok {
		http.Error(w, "like must be a boolean", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}
	viewer := emailFrom(r.Context())
	if t.likedBy[viewer] != like {
		t.likedBy[viewer] = like
		delta := 1
		if !like {
			delta = -1
		}
		for _, u := range s.users {
			if u.profile.Id == t.Author.Id {
				u.likes += delta
			}
		}
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) topContributors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []domain.Contributor{}
	for _, u := range s.users {
		list = append(list, domain.Contributor{Id: u.profile.Id, Username: u.profile.Username, LikesReceived: u.likes})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].LikesReceived != list[j].LikesReceived {
			return list[i].LikesReceived > list[j].LikesReceived
		}
		return list[i].Username < list[j].Username
	})
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) metadata(t *thread, viewer string) domain.ThreadMetadata {
	m := t.ThreadMetadata
	m.Likes = 0
	for _, liked := range t.likedBy {
		if liked {
			m.Likes++
		}
	}
	m.Liked = t.likedBy[viewer]
	m.Reach = len(t.seenBy)
	return m
}

func (s *Server) find(id string) *thread {
	for _, t := range s.threads {
		if t.Id == id {
			return t
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
