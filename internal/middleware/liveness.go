package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/ljosc/discuss/internal/guard"
	"github.com/ljosc/discuss/internal/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Liveness pings the service on the first page of an authenticated
// session and logs out if the ping fails.
type Liveness struct {
	pinger Pinger
	logout func(ctx context.Context) error

	mu      sync.Mutex
	mounted bool
}

func NewLiveness(pinger Pinger, logout func(ctx context.Context) error) *Liveness {
	return &Liveness{pinger: pinger, logout: logout}
}

func (l *Liveness) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !l.mount() {
			next.ServeHTTP(w, r)
			return
		}
		if err := l.pinger.Ping(r.Context()); err != nil {
			logger.Log.Warn("liveness ping failed, logging out", "component", "liveness", "error", err)
			_ = l.logout(r.Context())
			http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// mount reports whether this is the first page since the last Reset.
func (l *Liveness) mount() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	first := !l.mounted
	l.mounted = true
	return first
}

// Reset arms the ping again; called when the session ends.
func (l *Liveness) Reset() {
	l.mu.Lock()
	l.mounted = false
	l.mu.Unlock()
}
