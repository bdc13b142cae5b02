package ado

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexanderramin/azdo/internal/domain"
)

const (
	linkHierarchyForward = "System.LinkTypes.Hierarchy-Forward"
	linkHierarchyReverse = "System.LinkTypes.Hierarchy-Reverse"
)

// WorkItemDetail is a work item with the display fields used by the CLI.
type WorkItemDetail struct {
	domain.WorkItem
	AreaPath    string
	AssignedTo  string
	Description string
	CreatedDate string
	ChangedDate string
	URL         string
}

type identityRef struct {
	DisplayName string `json:"displayName"`
}

type wireFields struct {
	WorkItemType string       `json:"System.WorkItemType"`
	Title        string       `json:"System.Title"`
	State        string       `json:"System.State"`
	AreaPath     string       `json:"System.AreaPath"`
	AssignedTo   *identityRef `json:"System.AssignedTo"`
	Description  string       `json:"System.Description"`
	CreatedDate  string       `json:"System.CreatedDate"`
	ChangedDate  string       `json:"System.ChangedDate"`
}

type wireWorkItem struct {
	ID     int        `json:"id"`
	Fields wireFields `json:"fields"`
	Links  struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"_links"`
}

func (w wireWorkItem) detail() WorkItemDetail {
	d := WorkItemDetail{
		WorkItem: domain.WorkItem{
			ID:    w.ID,
			Type:  orDefault(w.Fields.WorkItemType, domain.TypeUnknown),
			Title: w.Fields.Title,
			State: orDefault(w.Fields.State, "Unknown"),
		},
		AreaPath:    w.Fields.AreaPath,
		Description: w.Fields.Description,
		CreatedDate: w.Fields.CreatedDate,
		ChangedDate: w.Fields.ChangedDate,
		URL:         w.Links.HTML.Href,
	}
	if w.Fields.AssignedTo != nil {
		d.AssignedTo = w.Fields.AssignedTo.DisplayName
	}
	return d
}

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	WorkItemRelations []struct {
		Rel    string `json:"rel"`
		Target *struct {
			ID int `json:"id"`
		} `json:"target"`
	} `json:"workItemRelations"`
}

// GetWorkItem fetches one work item with its relations expanded.
func (c *Client) GetWorkItem(ctx context.Context, id int) (*WorkItemDetail, error) {
	params := url.Values{"$expand": {"relations"}}
	var w wireWorkItem
	if err := c.get(ctx, c.projectURL(params, "wit", "workitems", strconv.Itoa(id)), &w); err != nil {
		return nil, fmt.Errorf("fetching work item %d: %w", id, err)
	}
	d := w.detail()
	return &d, nil
}

// FetchItem returns the fields the tree resolver needs for one item.
func (c *Client) FetchItem(ctx context.Context, id int) (domain.WorkItem, error) {
	d, err := c.GetWorkItem(ctx, id)
	if err != nil {
		return domain.WorkItem{}, err
	}
	return d.WorkItem, nil
}

// FetchChildren returns the direct hierarchy children of parentID in the
// order the service reports them. The parent itself is never included.
func (c *Client) FetchChildren(ctx context.Context, parentID int) ([]domain.ItemRef, error) {
	query := fmt.Sprintf(
		"SELECT [System.Id], [System.Title], [System.WorkItemType], [System.State] "+
			"FROM WorkItemLinks "+
			"WHERE ([Source].[System.Id] = %d) "+
			"AND ([System.Links.LinkType] = '%s') "+
			"MODE (MustContain)",
		parentID, linkHierarchyForward)

	var resp wiqlResponse
	if err := c.post(ctx, c.projectURL(nil, "wit", "wiql"), contentJSON, wiqlRequest{Query: query}, &resp); err != nil {
		return nil, fmt.Errorf("querying children of %d: %w", parentID, err)
	}

	var refs []domain.ItemRef
	for _, rel := range resp.WorkItemRelations {
		if rel.Target == nil || rel.Target.ID == parentID {
			continue
		}
		refs = append(refs, domain.ItemRef{ID: rel.Target.ID})
	}
	return refs, nil
}

// ListChildren returns full details for the direct children of parentID.
func (c *Client) ListChildren(ctx context.Context, parentID int) ([]WorkItemDetail, error) {
	refs, err := c.FetchChildren(ctx, parentID)
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = strconv.Itoa(r.ID)
	}

	var resp struct {
		Value []wireWorkItem `json:"value"`
	}
	params := url.Values{"ids": {strings.Join(ids, ",")}}
	if err := c.get(ctx, c.projectURL(params, "wit", "workitems"), &resp); err != nil {
		return nil, fmt.Errorf("fetching children of %d: %w", parentID, err)
	}
	out := make([]WorkItemDetail, 0, len(resp.Value))
	for _, w := range resp.Value {
		out = append(out, w.detail())
	}
	return out, nil
}

// NewWorkItem describes a work item to create.
type NewWorkItem struct {
	Type        string
	Title       string
	Description string
	AreaPath    string
	AssignedTo  string
	ParentID    int
	PullRequest *PullRequestLink
}

// PullRequestLink identifies a pull request as a work-item artifact.
type PullRequestLink struct {
	ProjectID     string
	RepositoryID  string
	PullRequestID int
}

func (l PullRequestLink) artifactURL() string {
	return fmt.Sprintf("vstfs:///Git/PullRequestId/%s%%2F%s%%2F%d", l.ProjectID, l.RepositoryID, l.PullRequestID)
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// CreateWorkItem creates a work item, optionally linked to a parent.
func (c *Client) CreateWorkItem(ctx context.Context, in NewWorkItem) (*WorkItemDetail, error) {
	ops := []patchOp{
		{Op: "add", Path: "/fields/System.Title", Value: in.Title},
		{Op: "add", Path: "/fields/System.Description", Value: in.Description},
	}
	if in.AreaPath != "" {
		ops = append(ops, patchOp{Op: "add", Path: "/fields/System.AreaPath", Value: in.AreaPath})
	}
	if in.AssignedTo != "" {
		ops = append(ops, patchOp{Op: "add", Path: "/fields/System.AssignedTo", Value: in.AssignedTo})
	}
	if in.ParentID > 0 {
		ops = append(ops, patchOp{Op: "add", Path: "/relations/-", Value: map[string]any{
			"rel":        linkHierarchyReverse,
			"url":        c.projectURLNoQuery("wit", "workItems", strconv.Itoa(in.ParentID)),
			"attributes": map[string]string{"comment": "Parent link"},
		}})
	}

	if in.PullRequest != nil {
		ops = append(ops, patchOp{Op: "add", Path: "/relations/-", Value: map[string]any{
			"rel":        "ArtifactLink",
			"url":        in.PullRequest.artifactURL(),
			"attributes": map[string]string{"name": "Pull Request"},
		}})
	}

	var w wireWorkItem
	if err := c.post(ctx, c.projectURL(nil, "wit", "workitems", "$"+in.Type), contentJSONPatch, ops, &w); err != nil {
		return nil, fmt.Errorf("creating %s: %w", in.Type, err)
	}
	d := w.detail()
	return &d, nil
}

// UpdateWorkItem replaces the title and/or description of a work item.
func (c *Client) UpdateWorkItem(ctx context.Context, id int, title, description string) (*WorkItemDetail, error) {
	var ops []patchOp
	if title != "" {
		ops = append(ops, patchOp{Op: "replace", Path: "/fields/System.Title", Value: title})
	}
	if description != "" {
		ops = append(ops, patchOp{Op: "replace", Path: "/fields/System.Description", Value: description})
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("no updates specified")
	}
	var w wireWorkItem
	if err := c.patch(ctx, c.projectURL(nil, "wit", "workitems", strconv.Itoa(id)), contentJSONPatch, ops, &w); err != nil {
		return nil, fmt.Errorf("updating work item %d: %w", id, err)
	}
	d := w.detail()
	return &d, nil
}

func (c *Client) projectURLNoQuery(parts ...string) string {
	u := c.projectURL(nil, parts...)
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
