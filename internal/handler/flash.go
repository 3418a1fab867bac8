package handler

import (
	"encoding/base64"
	"net/http"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
	emailPrefillCookie = "email_prefill"
)

// setFlash stores a one-shot message for the next page (base64 encoded for
// safe storage of special characters).
func (h *Handler) setFlash(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.StdEncoding.EncodeToString([]byte(value)),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and expires a flash cookie.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	h.clearCookie(w, name)
	value, err := base64.StdEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(value)
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, name, value string) {
	h.setFlash(w, name, value)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
