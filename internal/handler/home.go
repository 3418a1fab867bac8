package handler

import (
	"net/http"

	"github.com/ljosc/discuss/internal/domain"
	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/guard"
	"github.com/ljosc/discuss/internal/workflow"
)

type homePage struct {
	Filter       domain.Filter
	Filters      []domain.Filter
	Loaded       bool
	Threads      []domain.ThreadSummary
	Contributors []domain.Contributor
	Compose      workflow.PanelState
	Status       *workflow.Message
}

func (h *Handler) HomeGetHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := domain.ParseFilter(query.Get("filter"))
	if err != nil {
		h.redirectWithFlash(w, r, guard.HomePath, flashCookieError, "Unknown filter")
		return
	}

	screen, fresh := h.homeScreen()
	switch {
	case fresh:
		screen.Mount(r.Context(), filter)
	case query.Has("filter") && filter != screen.View.Filter():
		_ = screen.View.SetFilter(r.Context(), filter)
	}

	snap := screen.View.Snapshot()
	h.renderTemplate(w, r, "home.html", homePage{
		Filter:       snap.Filter,
		Filters:      domain.Filters,
		Loaded:       snap.Threads != nil,
		Threads:      snap.Threads,
		Contributors: snap.Contributors,
		Compose:      screen.Compose.State(),
		Status:       currentStatus(screen.Status),
	})
}

// ComposePostHandler toggles the new thread panel or submits its draft.
func (h *Handler) ComposePostHandler(w http.ResponseWriter, r *http.Request) {
	screen, fresh := h.homeScreen()
	if fresh {
		screen.Mount(r.Context(), domain.FilterAll)
	}

	switch r.FormValue("action") {
	case "toggle":
		screen.Compose.Toggle()
	case "submit":
		screen.Compose.Update(workflow.Draft{Title: r.FormValue("title"), Content: r.FormValue("content")})
		if err := screen.Compose.Submit(r.Context()); internal_errors.Is(err, internal_errors.ValidationFailure) {
			screen.Status.Show(workflow.Failure, "Title and content are required")
		}
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, guard.HomePath+"?filter="+string(screen.View.Filter()), http.StatusSeeOther)
}
