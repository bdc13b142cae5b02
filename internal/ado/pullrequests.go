package ado

import (
	"context"
	"fmt"
	"strconv"
)

// PullRequest holds the pull-request fields needed to link work to it.
type PullRequest struct {
	ID           int
	Title        string
	Status       string
	SourceBranch string
	TargetBranch string
	RepositoryID string
	Repository   string
}

type wirePullRequest struct {
	PullRequestID int    `json:"pullRequestId"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	SourceRefName string `json:"sourceRefName"`
	TargetRefName string `json:"targetRefName"`
	Repository    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"repository"`
}

// GetPullRequest fetches pull-request metadata.
func (c *Client) GetPullRequest(ctx context.Context, repo string, prID int) (*PullRequest, error) {
	var w wirePullRequest
	u := c.projectURL(nil, "git", "repositories", repo, "pullrequests", strconv.Itoa(prID))
	if err := c.get(ctx, u, &w); err != nil {
		return nil, fmt.Errorf("fetching PR %d: %w", prID, err)
	}
	return &PullRequest{
		ID:           w.PullRequestID,
		Title:        w.Title,
		Status:       w.Status,
		SourceBranch: w.SourceRefName,
		TargetBranch: w.TargetRefName,
		RepositoryID: w.Repository.ID,
		Repository:   w.Repository.Name,
	}, nil
}

// ProjectID returns the GUID of the configured project.
func (c *Client) ProjectID(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.get(ctx, c.orgURL(nil, "projects", c.cfg.Project), &resp); err != nil {
		return "", fmt.Errorf("fetching project %s: %w", c.cfg.Project, err)
	}
	return resp.ID, nil
}

// CreateTaskForPR creates a Task titled after the pull request and linked to
// it. An empty description gets a default one.
func (c *Client) CreateTaskForPR(ctx context.Context, repo string, prID, parentID int, description string) (*WorkItemDetail, error) {
	pr, err := c.GetPullRequest(ctx, repo, prID)
	if err != nil {
		return nil, err
	}
	if pr.RepositoryID == "" {
		return nil, fmt.Errorf("PR %d: response has no repository id", prID)
	}
	title := pr.Title
	if title == "" {
		title = fmt.Sprintf("PR %d", prID)
	}
	if description == "" {
		description = "Implement and land PR: " + title
	}

	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return nil, err
	}
	return c.CreateWorkItem(ctx, NewWorkItem{
		Type:        "Task",
		Title:       title,
		Description: description,
		ParentID:    parentID,
		PullRequest: &PullRequestLink{ProjectID: projectID, RepositoryID: pr.RepositoryID, PullRequestID: prID},
	})
}
