package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/azdo/internal/ado"
	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/alexanderramin/azdo/internal/config"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/service"
)

// WorkItemClient is the work-tracking surface used by the work-item,
// registry, and pipeline commands.
type WorkItemClient interface {
	GetWorkItem(ctx context.Context, id int) (*ado.WorkItemDetail, error)
	ListChildren(ctx context.Context, parentID int) ([]ado.WorkItemDetail, error)
	CreateWorkItem(ctx context.Context, in ado.NewWorkItem) (*ado.WorkItemDetail, error)
	UpdateWorkItem(ctx context.Context, id int, title, description string) (*ado.WorkItemDetail, error)
	CreateTaskForPR(ctx context.Context, repo string, prID, parentID int, description string) (*ado.WorkItemDetail, error)
	QueuePipeline(ctx context.Context, pipelineID int, branch string, params map[string]string) (*ado.PipelineRun, error)
}

// ThreadClient is the code-review surface used by the PR thread commands.
type ThreadClient interface {
	ListThreads(ctx context.Context, repo string, prID int, activeOnly bool) ([]ado.Thread, error)
	GetThread(ctx context.Context, repo string, prID, threadID int) (*ado.Thread, error)
	ReplyToThread(ctx context.Context, repo string, prID, threadID int, content string) error
	ResolveThread(ctx context.Context, repo string, prID, threadID int) error
}

// Selector shows lines to the operator and returns the chosen subset in
// display order. An empty result means the operator cancelled.
type Selector interface {
	Select(prompt string, lines []string) ([]string, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(prompt string, lines []string) ([]string, error)

func (f SelectorFunc) Select(prompt string, lines []string) ([]string, error) { return f(prompt, lines) }

// GlobalOptions are the persistent root flags.
type GlobalOptions struct {
	ConfigPath string
	Org        string
	Project    string
	Repo       string
	Verbose    bool
}

// App holds the collaborators used by CLI commands. Bootstrap, when set,
// runs once before any command and fills in the remaining fields from the
// parsed global flags.
type App struct {
	Config    *config.Config
	WorkItems WorkItemClient
	Threads   ThreadClient
	Features  service.FeatureService

	Selector        Selector
	FeatureSelector Selector
	Prompt          func(title string) (string, error)
	Launch          func(ctx context.Context, prompt string) error

	IsInteractive func() bool
	TermWidth     func() int
	Now           func() time.Time

	Bootstrap func(app *App, opts GlobalOptions) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) width() int {
	if a.TermWidth != nil {
		if w := a.TermWidth(); w > 0 {
			return w
		}
	}
	return formatter.DefaultWidth
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// remote checks the connection target before a command talks to the service.
func (a *App) remote() error {
	if a.Config == nil {
		return fmt.Errorf("no configuration loaded")
	}
	return a.Config.Validate()
}

func (a *App) registry() (*domain.Registry, error) {
	if a.Config == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	return a.Config.Registry(), nil
}

// saveRegistry writes r back to the config file.
func (a *App) saveRegistry(r *domain.Registry) error {
	a.Config.SetRegistry(r)
	return a.Config.Save()
}

// repo returns the effective repository for PR commands.
func (a *App) repo() (string, error) {
	if err := a.remote(); err != nil {
		return "", err
	}
	repo := a.Config.Repo()
	if repo == "" {
		return "", fmt.Errorf("no repository configured: set repository in the config or pass --repo")
	}
	return repo, nil
}
