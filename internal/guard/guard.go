// Package guard decides, from the login flag and the requested path alone,
// whether a page renders, redirects, or is not found.
package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	LoginPath  = "/login"
	SignupPath = "/signup"
	HomePath   = "/"
)

type Action int

const (
	Render Action = iota
	Redirect
	NotFound
)

func (a Action) String() string {
	switch a {
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return "render"
	}
}

type Decision struct {
	Action Action
	// Target is the redirect destination.
	Target string
	// From is the originally requested path when redirecting to login.
	From string
}

// Route is a page pattern in chi syntax.
type Route struct {
	Pattern      string
	RequiresAuth bool
}

type Guard struct {
	protected chi.Routes
	public    chi.Routes
}

func New(routes ...Route) *Guard {
	protected, public := chi.NewRouter(), chi.NewRouter()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		if r.RequiresAuth {
			protected.Handle(r.Pattern, noop)
		} else {
			public.Handle(r.Pattern, noop)
		}
	}
	// login must always be matchable so the logged-in redirect applies
	public.Handle(LoginPath, noop)
	return &Guard{protected: protected, public: public}
}

// Decide is a pure function of its arguments.
func (g *Guard) Decide(isLoggedIn bool, path string) Decision {
	switch {
	case path == SignupPath:
		return Decision{Action: Redirect, Target: LoginPath}
	case path == LoginPath && isLoggedIn:
		return Decision{Action: Redirect, Target: HomePath}
	case g.match(g.protected, path):
		if !isLoggedIn {
			return Decision{Action: Redirect, Target: LoginPath, From: path}
		}
		return Decision{Action: Render}
	case g.match(g.public, path):
		return Decision{Action: Render}
	default:
		return Decision{Action: NotFound}
	}
}

func (g *Guard) match(routes chi.Routes, path string) bool {
	return routes.Match(chi.NewRouteContext(), http.MethodGet, path)
}
