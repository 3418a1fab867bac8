package handler

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/ljosc/discuss/internal/domain"
	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/workflow"
)

type replyView struct {
	Reply    domain.Reply
	Content  template.HTML
	ByAuthor bool
}

type threadPage struct {
	Loaded  bool
	Thread  domain.Thread
	Content template.HTML
	Replies []replyView
	Reply   workflow.PanelState
	Status  *workflow.Message
}

func threadPath(id domain.ThreadId) string {
	return "/thread/" + url.PathEscape(id)
}

func (h *Handler) ThreadGetHandler(w http.ResponseWriter, r *http.Request) {
	screen, fresh := h.threadScreen(chi.URLParam(r, "id"))
	if fresh {
		screen.Mount(r.Context())
	}
	h.renderTemplate(w, r, "thread.html", h.renderThread(screen))
}

func (h *Handler) renderThread(screen *workflow.ThreadScreen) threadPage {
	page := threadPage{
		Reply:  screen.Reply.State(),
		Status: currentStatus(screen.Status),
	}
	thread, ok := screen.View.Thread()
	if !ok {
		return page
	}
	page.Loaded = true
	page.Thread = thread
	page.Content = h.TextProcessor.Render(thread.Content)
	page.Replies = make([]replyView, len(thread.Replies))
	for i, reply := range thread.Replies {
		page.Replies[i] = replyView{
			Reply:    reply,
			Content:  h.TextProcessor.Render(reply.Content),
			ByAuthor: thread.ByAuthor(reply),
		}
	}
	return page
}

// mountedThread returns the screen for id, loading it if a form was
// posted from a view that is no longer mounted.
func (h *Handler) mountedThread(r *http.Request) *workflow.ThreadScreen {
	screen, fresh := h.threadScreen(chi.URLParam(r, "id"))
	if fresh {
		screen.Mount(r.Context())
	}
	return screen
}

func (h *Handler) ReplyPostHandler(w http.ResponseWriter, r *http.Request) {
	screen := h.mountedThread(r)

	switch r.FormValue("action") {
	case "toggle":
		screen.Reply.Toggle()
	case "submit":
		screen.Reply.Update(r.FormValue("content"))
		if err := screen.Reply.Submit(r.Context()); internal_errors.Is(err, internal_errors.ValidationFailure) {
			screen.Status.Show(workflow.Failure, "Reply cannot be empty")
		}
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, threadPath(screen.View.Id()), http.StatusSeeOther)
}

func (h *Handler) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	screen := h.mountedThread(r)
	_ = screen.Like.Toggle(r.Context())
	http.Redirect(w, r, threadPath(screen.View.Id()), http.StatusSeeOther)
}
