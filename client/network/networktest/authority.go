// Package networktest provides a scripted outcome authority for tests.
package networktest

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	CSRFCookie    = "csrftoken"
	SessionCookie = "sessionid"
)

// Reply is one scripted answer to a spin request.
type Reply struct {
	Status int
	// Body is written as JSON unless it is a string, which is written raw.
	Body  interface{}
	Delay time.Duration
}

// Request records what the client sent.
type Request struct {
	BetSize   string
	RequestID string
	CSRFToken string
	Session   string
}

type AuthorityOptions struct {
	// Token is the CSRF token handed out by the index page.
	Token string
	// SkipCSRF accepts spins without a matching token.
	SkipCSRF bool
}

// Authority serves GET / and POST /api/spin/ from a script of replies.
type Authority struct {
	router   *mux.Router
	token    string
	skipCSRF bool

	mu       sync.Mutex
	replies  []Reply
	requests []Request
}

func NewAuthority(opts AuthorityOptions) *Authority {
	if opts.Token == "" {
		opts.Token = "test-csrf-token"
	}
	a := &Authority{
		router:   mux.NewRouter(),
		token:    opts.Token,
		skipCSRF: opts.SkipCSRF,
	}
	a.router.HandleFunc("/", a.handleIndex).Methods(http.MethodGet)
	a.router.HandleFunc("/api/spin/", a.handleSpin).Methods(http.MethodPost)
	a.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Only POST requests allowed"})
	})
	return a
}

func (a *Authority) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Script appends replies served in order. When the script runs out the
// authority answers 500.
func (a *Authority) Script(replies ...Reply) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies = append(a.replies, replies...)
}

func (a *Authority) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests...)
}

func (a *Authority) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: a.token, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "test-session", Path: "/", HttpOnly: true})
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte("<html></html>"))
}

func (a *Authority) handleSpin(w http.ResponseWriter, r *http.Request) {
	body := struct {
		BetSize string `json:"bet_size"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	req := Request{
		BetSize:   body.BetSize,
		RequestID: r.Header.Get("X-Request-ID"),
		CSRFToken: r.Header.Get("X-CSRFToken"),
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		req.Session = c.Value
	}

	a.mu.Lock()
	a.requests = append(a.requests, req)
	var reply Reply
	scripted := len(a.replies) > 0
	if scripted {
		reply = a.replies[0]
		a.replies = a.replies[1:]
	}
	a.mu.Unlock()

	if !a.skipCSRF && req.CSRFToken != a.token {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "CSRF verification failed"})
		return
	}
	if !scripted {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "No scripted reply"})
		return
	}

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}
	if raw, ok := reply.Body.(string); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		_, _ = w.Write([]byte(raw))
		return
	}
	writeJSON(w, reply.Status, reply.Body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Outcome builds a spin response body in the authority's shape, with the
// result keyed by reel index.
func Outcome(result [][]string, winData map[string]interface{}, payout float64, balance, betSize string) map[string]interface{} {
	byReel := map[string][]string{}
	for i, column := range result {
		byReel[strconv.Itoa(i)] = column
	}
	var wd interface{}
	if len(winData) > 0 {
		wd = winData
	}
	return map[string]interface{}{
		"result":   byReel,
		"win_data": wd,
		"payout":   payout,
		"player_data": map[string]string{
			"balance":     balance,
			"bet_size":    betSize,
			"last_payout": "N/A",
			"total_won":   "0.00",
			"total_wager": "0.00",
		},
		"machine_balance": 10000.0,
	}
}
