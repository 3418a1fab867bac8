package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ljosc/discuss/internal/domain"
)

type CreateThreadRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ReplyRequest struct {
	ThreadId domain.ThreadId `json:"threadId"`
	Content  string          `json:"content"`
}

type LikeRequest struct {
	ThreadId domain.ThreadId `json:"threadId"`
	Like     bool            `json:"like"`
}

func (c *APIClient) ListThreads(ctx context.Context, filter domain.Filter) ([]domain.ThreadSummary, error) {
	threads := []domain.ThreadSummary{}
	err := c.fetch(ctx, request{
		op:        "list threads",
		method:    http.MethodGet,
		path:      "/api/v1/thread?filter=" + url.QueryEscape(string(filter)),
		protected: true,
		expect:    http.StatusOK,
	}, &threads)
	if err != nil {
		return nil, err
	}
	if threads == nil {
		// a literal null body still means "no threads"
		threads = []domain.ThreadSummary{}
	}
	return threads, nil
}

func (c *APIClient) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var thread domain.Thread
	err := c.fetch(ctx, request{
		op:        "get thread",
		method:    http.MethodGet,
		path:      "/api/v1/thread/" + url.PathEscape(id),
		protected: true,
		expect:    http.StatusOK,
	}, &thread)
	return thread, err
}

func (c *APIClient) CreateThread(ctx context.Context, title, content string) error {
	return c.send(ctx, request{
		op:        "create thread",
		method:    http.MethodPost,
		path:      "/api/v1/thread",
		body:      CreateThreadRequest{Title: title, Content: content},
		protected: true,
		expect:    http.StatusCreated,
	})
}

func (c *APIClient) Reply(ctx context.Context, threadId domain.ThreadId, content string) error {
	return c.send(ctx, request{
		op:        "reply",
		method:    http.MethodPost,
		path:      "/api/v1/thread/reply",
		body:      ReplyRequest{ThreadId: threadId, Content: content},
		protected: true,
		expect:    http.StatusCreated,
	})
}

// Like sets the viewer's like state of a thread to like.
func (c *APIClient) Like(ctx context.Context, threadId domain.ThreadId, like bool) error {
	return c.send(ctx, request{
		op:        "like thread",
		method:    http.MethodPost,
		path:      "/api/v1/thread/like",
		body:      LikeRequest{ThreadId: threadId, Like: like},
		protected: true,
		expect:    http.StatusCreated,
	})
}

func (c *APIClient) TopContributors(ctx context.Context) ([]domain.Contributor, error) {
	contributors := []domain.Contributor{}
	err := c.fetch(ctx, request{
		op:        "top contributors",
		method:    http.MethodGet,
		path:      "/api/v1/users/top",
		protected: true,
		expect:    http.StatusOK,
	}, &contributors)
	if err != nil {
		return nil, err
	}
	if contributors == nil {
		contributors = []domain.Contributor{}
	}
	return contributors, nil
}
