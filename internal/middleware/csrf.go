package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/ljosc/discuss/internal/logger"
)

const (
	csrfCookieName  = "csrf_token"
	CSRFFormField   = "csrf_token"
	csrfTokenLength = 32 // bytes
)

type csrfContextKey struct{}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CSRF issues a per-browser token cookie and rejects state-changing
// requests whose form token does not match it.
func CSRF(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				token, err = generateCSRFToken()
				if err != nil {
					logger.Log.Error("failed to generate CSRF token", "component", "csrf", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteStrictMode,
					MaxAge:   86400,
				})
			}

			if r.Method == http.MethodPost {
				formToken := r.PostFormValue(CSRFFormField)
				if formToken == "" || subtle.ConstantTimeCompare([]byte(formToken), []byte(token)) != 1 {
					logger.Log.Warn("CSRF token validation failed", "component", "csrf", "path", r.URL.Path)
					http.Error(w, "CSRF token invalid", http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfContextKey{}, token)))
		})
	}
}

// CSRFToken returns the token to embed in forms.
func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	return token
}
