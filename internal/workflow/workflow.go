// Package workflow implements the user-initiated operations: login and
// signup, logout, creating a thread, replying and toggling a like. Each
// mutation is followed, only after its success response, by a full
// reload of the affected view.
package workflow

import (
	"context"
	"strings"

	"github.com/ljosc/discuss/internal/discussion"
	"github.com/ljosc/discuss/internal/domain"
)

// Remote is the forum service as seen by the discussion workflows.
type Remote interface {
	discussion.Remote
	CreateThread(ctx context.Context, title, content string) error
	Reply(ctx context.Context, threadId domain.ThreadId, content string) error
	Like(ctx context.Context, threadId domain.ThreadId, like bool) error
}

// Draft is unsaved input of a thread or reply.
type Draft struct {
	Title   string
	Content string
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// panel is the shared state of a compose box: its visibility, its draft,
// and whether a submission is pending. Hiding or reopening the panel
// discards the draft.
type panel struct {
	visible  bool
	draft    Draft
	inFlight bool
}

func (p *panel) setVisible(visible bool) {
	if p.visible != visible {
		p.draft = Draft{}
	}
	p.visible = visible
}

// PanelState is what templates need to render a compose box.
type PanelState struct {
	Visible   bool
	Draft     Draft
	InFlight  bool
	CanSubmit bool
}
