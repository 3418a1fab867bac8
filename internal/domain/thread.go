package domain

import (
	"fmt"
	"unicode"
)

type ThreadId = string

type Author struct {
	Id       string `json:"_id"`
	Username string `json:"username"`
}

// Initial is the avatar letter shown next to posts.
func (a Author) Initial() string {
	for _, r := range a.Username {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// ThreadMetadata is shared by list entries and the detail view.
type ThreadMetadata struct {
	Id         ThreadId `json:"_id"`
	Title      string   `json:"title"`
	Author     Author   `json:"author"`
	Views      int      `json:"views"`
	Reach      int      `json:"reach"`
	Likes      int      `json:"likes"`
	Liked      bool     `json:"liked"`
	CreateDate string   `json:"createDate"`
}

// ThreadSummary is a thread list entry; the server reports replies as a count.
type ThreadSummary struct {
	ThreadMetadata
	Replies int `json:"replies"`
}

// Thread is the detail entity with its reply sequence in server order.
type Thread struct {
	ThreadMetadata
	Content string  `json:"content"`
	Replies []Reply `json:"replies"`
}

type Reply struct {
	Author  Author `json:"author"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// ByAuthor reports whether the reply was written by the thread author.
func (t *Thread) ByAuthor(r Reply) bool {
	return r.Author.Id != "" && r.Author.Id == t.Author.Id
}

type Contributor struct {
	Id            string `json:"_id"`
	Username      string `json:"username"`
	LikesReceived int    `json:"likesReceived"`
}

// Filter selects the server-side thread list mode.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterTop    Filter = "top"
	FilterUnseen Filter = "unseen"
)

var Filters = []Filter{FilterAll, FilterTop, FilterUnseen}

// ParseFilter maps an empty value to FilterAll and rejects unknown modes.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterTop, FilterUnseen:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

func (f Filter) Label() string {
	switch f {
	case FilterTop:
		return "Top"
	case FilterUnseen:
		return "Unseen"
	default:
		return "All Threads"
	}
}
