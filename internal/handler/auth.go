package handler

import (
	"net/http"
	"strings"

	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/guard"
	"github.com/ljosc/discuss/internal/middleware"
	"github.com/ljosc/discuss/internal/workflow"
)

type loginPage struct {
	Mode  workflow.Mode
	Email string
}

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	page := loginPage{
		Mode:  workflow.ParseMode(r.URL.Query().Get("mode")),
		Email: h.popFlash(w, r, emailPrefillCookie),
	}
	h.renderTemplate(w, r, "login.html", page)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	form := workflow.Form{
		Mode:            workflow.ParseMode(r.FormValue("mode")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	back := guard.LoginPath + "?mode=" + string(form.Mode)

	msg, err := h.Auth.Submit(r.Context(), form)
	if err != nil {
		text := msg.Text
		if internal_errors.Is(err, internal_errors.ValidationFailure) {
			text = invalidFormText(form.Mode)
		}
		h.setFlash(w, emailPrefillCookie, form.Email)
		h.redirectWithFlash(w, r, back, flashCookieError, text)
		return
	}

	if form.Mode == workflow.ModeSignup {
		h.setFlash(w, emailPrefillCookie, form.Email)
		h.redirectWithFlash(w, r, guard.LoginPath+"?mode="+string(workflow.ModeLogin), flashCookieSuccess, msg.Text)
		return
	}

	// a new session starts from fresh views
	h.unmount()

	target := guard.HomePath
	if c, err := r.Cookie(middleware.ReturnToCookie); err == nil {
		if p, ok := middleware.SafeReturnPath(c.Value); ok {
			target = p
		}
		h.clearCookie(w, middleware.ReturnToCookie)
	}
	h.redirectWithFlash(w, r, target, flashCookieSuccess, msg.Text)
}

func invalidFormText(mode workflow.Mode) string {
	if mode == workflow.ModeSignup {
		return "Enter a valid email and matching passwords of at least 8 characters"
	}
	return "Enter a valid email and password"
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	_ = h.Auth.Logout(r.Context())
	h.unmount()
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}
