package ado

import (
	"context"
	"fmt"
	"strconv"
)

// AttributionFooter is appended to every reply posted by this tool.
const AttributionFooter = "\n\n---\n*This comment was posted by an automated assistant on behalf of the PR author.*"

const systemAuthor = "Microsoft.VisualStudio.Services.TFS"

// Thread is a pull-request comment thread.
type Thread struct {
	ID        int
	Status    string
	IsDeleted bool
	FilePath  string
	Line      int
	Comments  []Comment
}

// Comment is one entry in a thread.
type Comment struct {
	ID          int
	Author      string
	Content     string
	CommentType string
	IsDeleted   bool
}

// HumanComments filters out system-generated comments.
func (t Thread) HumanComments() []Comment {
	var out []Comment
	for _, c := range t.Comments {
		if c.Author == systemAuthor || c.CommentType == "system" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsActive reports whether the thread still needs attention.
func (t Thread) IsActive() bool {
	return !t.IsDeleted && t.Status != "fixed" && t.Status != "closed"
}

type wireThread struct {
	ID            int    `json:"id"`
	Status        string `json:"status"`
	IsDeleted     bool   `json:"isDeleted"`
	ThreadContext *struct {
		FilePath       string `json:"filePath"`
		RightFileStart *struct {
			Line int `json:"line"`
		} `json:"rightFileStart"`
	} `json:"threadContext"`
	Comments []struct {
		ID     int `json:"id"`
		Author struct {
			DisplayName string `json:"displayName"`
		} `json:"author"`
		Content     string `json:"content"`
		CommentType string `json:"commentType"`
		IsDeleted   bool   `json:"isDeleted"`
	} `json:"comments"`
}

func (w wireThread) thread() Thread {
	t := Thread{ID: w.ID, Status: w.Status, IsDeleted: w.IsDeleted}
	if w.ThreadContext != nil {
		t.FilePath = w.ThreadContext.FilePath
		if w.ThreadContext.RightFileStart != nil {
			t.Line = w.ThreadContext.RightFileStart.Line
		}
	}
	for _, c := range w.Comments {
		t.Comments = append(t.Comments, Comment{
			ID:          c.ID,
			Author:      c.Author.DisplayName,
			Content:     c.Content,
			CommentType: c.CommentType,
			IsDeleted:   c.IsDeleted,
		})
	}
	return t
}

func (c *Client) threadsURL(repo string, prID int, parts ...string) string {
	base := []string{"git", "repositories", repo, "pullrequests", strconv.Itoa(prID), "threads"}
	return c.projectURL(nil, append(base, parts...)...)
}

// ListThreads returns the comment threads of a pull request. With activeOnly,
// fixed, closed, and deleted threads are dropped.
func (c *Client) ListThreads(ctx context.Context, repo string, prID int, activeOnly bool) ([]Thread, error) {
	var resp struct {
		Value []wireThread `json:"value"`
	}
	if err := c.get(ctx, c.threadsURL(repo, prID), &resp); err != nil {
		return nil, fmt.Errorf("listing threads of PR %d: %w", prID, err)
	}
	var out []Thread
	for _, w := range resp.Value {
		t := w.thread()
		if activeOnly && !t.IsActive() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// GetThread finds one thread of a pull request, including resolved ones.
func (c *Client) GetThread(ctx context.Context, repo string, prID, threadID int) (*Thread, error) {
	threads, err := c.ListThreads(ctx, repo, prID, false)
	if err != nil {
		return nil, err
	}
	for i := range threads {
		if threads[i].ID == threadID {
			return &threads[i], nil
		}
	}
	return nil, fmt.Errorf("thread %d: %w", threadID, ErrNotFound)
}

// ReplyToThread posts a text comment with the attribution footer.
func (c *Client) ReplyToThread(ctx context.Context, repo string, prID, threadID int, content string) error {
	body := map[string]any{"content": content + AttributionFooter, "commentType": 1}
	if err := c.post(ctx, c.threadsURL(repo, prID, strconv.Itoa(threadID), "comments"), contentJSON, body, nil); err != nil {
		return fmt.Errorf("replying to thread %d: %w", threadID, err)
	}
	return nil
}

// ResolveThread marks a thread as fixed.
func (c *Client) ResolveThread(ctx context.Context, repo string, prID, threadID int) error {
	body := map[string]string{"status": "fixed"}
	if err := c.patch(ctx, c.threadsURL(repo, prID, strconv.Itoa(threadID)), contentJSON, body, nil); err != nil {
		return fmt.Errorf("resolving thread %d: %w", threadID, err)
	}
	return nil
}
