package ado

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// PipelineRun is the state of a queued pipeline run.
type PipelineRun struct {
	ID       int
	Name     string
	State    string
	Pipeline string
	URL      string
}

// ParsePipelineParameters turns name=value pairs into a parameter map.
func ParsePipelineParameters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected name=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// QueuePipeline starts a run of pipelineID on branch.
func (c *Client) QueuePipeline(ctx context.Context, pipelineID int, branch string, params map[string]string) (*PipelineRun, error) {
	body := map[string]any{
		"resources": map[string]any{
			"repositories": map[string]any{
				"self": map[string]string{"refName": "refs/heads/" + branch},
			},
		},
	}
	if len(params) > 0 {
		body["templateParameters"] = params
	}

	var resp struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		State    string `json:"state"`
		Pipeline struct {
			Name string `json:"name"`
		} `json:"pipeline"`
	}
	u := c.projectURL(nil, "pipelines", strconv.Itoa(pipelineID), "runs")
	if err := c.post(ctx, u, contentJSON, body, &resp); err != nil {
		return nil, fmt.Errorf("queueing pipeline %d: %w", pipelineID, err)
	}

	run := &PipelineRun{
		ID:       resp.ID,
		Name:     orDefault(resp.Name, "N/A"),
		State:    orDefault(resp.State, "unknown"),
		Pipeline: orDefault(resp.Pipeline.Name, fmt.Sprintf("Pipeline %d", pipelineID)),
	}
	run.URL = fmt.Sprintf("%s/%s/%s/_build/results?buildId=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Organization, c.cfg.Project, resp.ID)
	return run, nil
}
