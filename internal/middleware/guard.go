package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/ljosc/discuss/internal/guard"
	"github.com/ljosc/discuss/internal/logger"
)

// ReturnToCookie holds the page a logged-out user asked for, so login
// can continue there.
const ReturnToCookie = "return_to"

type SessionReader interface {
	IsLoggedIn() bool
}

// Guard applies the route guard's decision to every request.
type Guard struct {
	guard         *guard.Guard
	session       SessionReader
	secureCookies bool
	notFound      http.Handler
}

func NewGuard(g *guard.Guard, session SessionReader, secureCookies bool, notFound http.Handler) *Guard {
	return &Guard{guard: g, session: session, secureCookies: secureCookies, notFound: notFound}
}

func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.guard.Decide(g.session.IsLoggedIn(), r.URL.Path)
		switch decision.Action {
		case guard.Redirect:
			if decision.From != "" && r.Method == http.MethodGet {
				from := decision.From
				if r.URL.RawQuery != "" {
					from += "?" + r.URL.RawQuery
				}
				http.SetCookie(w, &http.Cookie{
					Name:     ReturnToCookie,
					Value:    from,
					Path:     "/",
					MaxAge:   int((5 * time.Minute).Seconds()),
					HttpOnly: true,
					Secure:   g.secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			logger.Log.Debug("guard redirect", "component", "guard", "path", r.URL.Path, "target", decision.Target)
			http.Redirect(w, r, decision.Target, http.StatusSeeOther)
		case guard.NotFound:
			g.notFound.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// SafeReturnPath accepts only local absolute paths.
func SafeReturnPath(p string) (string, bool) {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "", false
	}
	if p == guard.LoginPath || strings.HasPrefix(p, guard.LoginPath+"?") {
		return "", false
	}
	return p, true
}
