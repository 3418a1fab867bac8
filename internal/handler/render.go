package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ljosc/discuss/internal/domain"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/middleware"
)

// CommonTemplateData holds fields that are common to all page templates.
type CommonTemplateData struct {
	Error     string
	Success   string
	LoggedIn  bool
	Profile   *domain.Profile
	CSRFToken string
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) CommonTemplateData {
	return CommonTemplateData{
		Error:     h.popFlash(w, r, flashCookieError),
		Success:   h.popFlash(w, r, flashCookieSuccess),
		LoggedIn:  h.Session.IsLoggedIn(),
		Profile:   h.Session.Profile(),
		CSRFToken: middleware.CSRFToken(r),
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithStatus(w, r, name, data, http.StatusOK)
}

func (h *Handler) renderTemplateWithStatus(w http.ResponseWriter, r *http.Request, name string, data any, status int) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data:   data,
		Common: h.initCommonTemplateData(w, r),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "component", "handler", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplateWithStatus(w, r, "notfound.html", nil, http.StatusNotFound)
}
