package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/azdo/internal/ado"
	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/alexanderramin/azdo/internal/config"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/irstore"
	"github.com/alexanderramin/azdo/internal/repository"
	"github.com/alexanderramin/azdo/internal/resolver"
	"github.com/alexanderramin/azdo/internal/service"
	"github.com/alexanderramin/azdo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `organization: contoso
project: web
repository: shop
repositories:
  api: payments-api
default_area_path: web\Checkout
features:
  checkout:
    id: 100
    description: Checkout revamp
    added_at: "2026-03-01"
  search:
    id: 200
    description: Search
    added_at: "2026-03-02"
default_feature: checkout
`

// fakeWorkItems records every call and serves canned work items.
type fakeWorkItems struct {
	details  map[int]*ado.WorkItemDetail
	children map[int][]ado.WorkItemDetail
	errs     map[int]error

	created []ado.NewWorkItem
	updated []string
	tasks   []string
	queued  []string
}

func newFakeWorkItems() *fakeWorkItems {
	return &fakeWorkItems{
		details:  map[int]*ado.WorkItemDetail{},
		children: map[int][]ado.WorkItemDetail{},
		errs:     map[int]error{},
	}
}

func detail(id int, typ, title, state string) ado.WorkItemDetail {
	return ado.WorkItemDetail{
		WorkItem: domain.WorkItem{ID: id, Type: typ, Title: title, State: state},
		URL:      fmt.Sprintf("https://dev.azure.com/contoso/web/_workitems/edit/%d", id),
	}
}

func (f *fakeWorkItems) GetWorkItem(_ context.Context, id int) (*ado.WorkItemDetail, error) {
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &ado.StatusError{StatusCode: 404, Body: "not found"}
	}
	return d, nil
}

func (f *fakeWorkItems) ListChildren(_ context.Context, parentID int) ([]ado.WorkItemDetail, error) {
	return f.children[parentID], nil
}

func (f *fakeWorkItems) CreateWorkItem(_ context.Context, in ado.NewWorkItem) (*ado.WorkItemDetail, error) {
	f.created = append(f.created, in)
	d := detail(500+len(f.created), in.Type, in.Title, "New")
	return &d, nil
}

func (f *fakeWorkItems) UpdateWorkItem(_ context.Context, id int, title, description string) (*ado.WorkItemDetail, error) {
	f.updated = append(f.updated, fmt.Sprintf("%d|%s|%s", id, title, description))
	d := detail(id, "Task", title, "New")
	return &d, nil
}

func (f *fakeWorkItems) CreateTaskForPR(_ context.Context, repo string, prID, parentID int, description string) (*ado.WorkItemDetail, error) {
	f.tasks = append(f.tasks, fmt.Sprintf("%s|%d|%d|%s", repo, prID, parentID, description))
	d := detail(600, domain.TypeTask, "PR task", "New")
	return &d, nil
}

func (f *fakeWorkItems) QueuePipeline(_ context.Context, pipelineID int, branch string, params map[string]string) (*ado.PipelineRun, error) {
	f.queued = append(f.queued, fmt.Sprintf("%d|%s|%v", pipelineID, branch, params))
	return &ado.PipelineRun{
		ID:       900,
		Name:     "20260314.1",
		State:    "inProgress",
		Pipeline: "web-ci",
		URL:      "https://dev.azure.com/contoso/web/_build/results?buildId=900",
	}, nil
}

type cliFixture struct {
	app     *App
	cfgPath string
	source  *testutil.FakeSource
	items   *fakeWorkItems
	threads *fakeThreads
	runs    *repository.SQLiteMarshalRunRepo
	offered []string
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AZDO_CONFIG", "AZDO_ORG", "AZDO_PROJECT", "AZDO_REPO", "AZDO_IR_DIR", "AZDO_HISTORY_DB"} {
		t.Setenv(k, "")
	}
}

// newCLIFixture wires an App over a temp config, the scenario source plus a
// second feature, a real IR store, and a real history journal.
func newCLIFixture(t *testing.T, cfgBody string) *cliFixture {
	t.Helper()
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	source := testutil.ScenarioSource().
		Add(200, domain.TypeFeature, "Search", "New", 201).
		Add(201, domain.TypeTask, "Index products", "Active")
	database := testutil.NewTestDB(t)
	runs := repository.NewSQLiteMarshalRunRepo(database)
	svc := service.NewFeatureService(
		source,
		irstore.New(cfg.IRPath()),
		runs,
		testutil.NewTestUoW(database),
	)

	f := &cliFixture{
		cfgPath: cfgPath,
		source:  source,
		runs:    runs,
		items:   newFakeWorkItems(),
		threads: newFakeThreads(),
	}
	f.app = &App{
		Config:    cfg,
		WorkItems: f.items,
		Threads:   f.threads,
		Features:  svc,
		Now:       func() time.Time { return testutil.FixedNow },
		Selector: SelectorFunc(func(_ string, lines []string) ([]string, error) {
			f.offered = lines
			return lines, nil
		}),
	}
	return f
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func reloadConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

// --- bootstrap ---

func TestRoot_BootstrapReceivesGlobalFlags(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	var got GlobalOptions
	f.app.Bootstrap = func(_ *App, opts GlobalOptions) error {
		got = opts
		return nil
	}

	_, err := executeCmd(t, f.app, "--org", "fabrikam", "--repo", "api", "-v", "registry", "list")
	require.NoError(t, err)
	assert.Equal(t, GlobalOptions{Org: "fabrikam", Repo: "api", Verbose: true}, got)
}

func TestRoot_BootstrapErrorAborts(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.Bootstrap = func(*App, GlobalOptions) error { return config.ErrConfigNotFound }

	_, err := executeCmd(t, f.app, "registry", "list")
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

// --- marshal-feature ---

func TestMarshalCmd_DefaultFeature(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "marshal-feature")
	require.NoError(t, err)

	irPath := filepath.Join(filepath.Dir(f.cfgPath), "ir", "feature-100.yaml")
	assert.Contains(t, out, "Marshaling feature 'checkout' (ID 100)...\n")
	assert.Contains(t, out, "  Feature #100: Checkout revamp\n")
	assert.Contains(t, out, "    Task #101: Fix bug\n")
	assert.Contains(t, out, "      Bug #103: Card declined twice\n")
	assert.Contains(t, out, "Wrote "+irPath+"\n")
	assert.Contains(t, out, "Total items: 4\n")
	assert.Contains(t, out, "  User Story: 1 (Active: 1)\n")
	assert.FileExists(t, irPath)

	runs, err := f.app.Features.History(context.Background(), 100, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "checkout", runs[0].FeatureName)
}

func TestMarshalCmd_AliasAndLookupByID(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "marshal", "--feature", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "Marshaling feature 'search' (ID 200)...")
	assert.Contains(t, out, "Total items: 2")
}

func TestMarshalCmd_UnknownFeature(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	_, err := executeCmd(t, f.app, "marshal-feature", "--feature", "nope")
	assert.ErrorIs(t, err, domain.ErrFeatureNotFound)
	assert.Empty(t, f.source.Calls())
}

func TestMarshalCmd_RootNotFoundWritesNothing(t *testing.T) {
	f := newCLIFixture(t, strings.Replace(testConfig, "default_feature:", "  ghost:\n    id: 404\ndefault_feature:", 1))

	_, err := executeCmd(t, f.app, "marshal-feature", "--feature", "ghost")
	var fetchErr *resolver.RemoteFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 404, fetchErr.StatusCode)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(f.cfgPath), "ir", "feature-404.yaml"))
}

func TestMarshalCmd_PlaceholderConfigRejected(t *testing.T) {
	f := newCLIFixture(t, strings.Replace(testConfig, "organization: contoso", `organization: "<your-org>"`, 1))

	_, err := executeCmd(t, f.app, "marshal-feature")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization")
	assert.Empty(t, f.source.Calls())
}

// --- duckrow ---

func TestDuckrowCmd_FetchesThenReusesIR(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "duckrow")
	require.NoError(t, err)
	assert.Contains(t, out, "[checkout] Checkout revamp (fetched from ADO)\n")
	assert.Contains(t, out, "[search] Search (fetched from ADO)\n")
	assert.Contains(t, out, "4 work item(s) selected:\n")

	require.Len(t, f.offered, 4)
	var ids []int
	for _, line := range f.offered {
		id, ok := formatter.RowID(line)
		require.True(t, ok)
		ids = append(ids, id)
	}
	assert.Equal(t, []int{101, 102, 103, 201}, ids)

	calls := len(f.source.Calls())
	out, err = executeCmd(t, f.app, "duckrow")
	require.NoError(t, err)
	assert.Contains(t, out, "[checkout] Checkout revamp (from IR)\n")
	assert.Equal(t, calls, len(f.source.Calls()), "second run is served from IR documents")
}

func TestDuckrowCmd_FeatureArgsNarrow(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "duckrow", "search")
	require.NoError(t, err)
	assert.NotContains(t, out, "[checkout]")
	require.Len(t, f.offered, 1)
	assert.Contains(t, f.offered[0], "Index products")
}

func TestDuckrowCmd_UnknownFeatureArg(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	_, err := executeCmd(t, f.app, "duckrow", "nope")
	assert.ErrorIs(t, err, domain.ErrFeatureNotFound)
}

func TestDuckrowCmd_SelectionIsPrintedInDisplayOrder(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.Selector = SelectorFunc(func(_ string, lines []string) ([]string, error) {
		return []string{lines[0], lines[2]}, nil
	})

	out, err := executeCmd(t, f.app, "duckrow", "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "2 work item(s) selected:\n  101 ")
	assert.Regexp(t, `(?s)  101 .*Fix bug\n  103 .*Card declined twice\n$`, out)
}

func TestDuckrowCmd_CancelIsNotAnError(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.Selector = SelectorFunc(func(string, []string) ([]string, error) { return nil, nil })

	out, err := executeCmd(t, f.app, "duckrow")
	require.NoError(t, err)
	assert.Contains(t, out, "No work items selected.\n")
}

func TestDuckrowCmd_FeatureFilter(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	var featureLines []string
	f.app.FeatureSelector = SelectorFunc(func(prompt string, lines []string) ([]string, error) {
		assert.Equal(t, "Features> ", prompt)
		featureLines = lines
		return lines[1:], nil
	})

	out, err := executeCmd(t, f.app, "duckrow", "-f")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"checkout             100        Checkout revamp",
		"search               200        Search",
	}, featureLines)
	assert.NotContains(t, out, "[checkout]")
	assert.Contains(t, out, "[search]")
}

func TestDuckrowCmd_FeatureFilterNameWithSpaces(t *testing.T) {
	cfg := strings.Replace(testConfig, "  checkout:\n", "  \"my feature\":\n", 1)
	cfg = strings.Replace(cfg, "default_feature: checkout", "default_feature: my feature", 1)
	f := newCLIFixture(t, cfg)
	f.app.FeatureSelector = SelectorFunc(func(_ string, lines []string) ([]string, error) {
		return lines, nil
	})

	out, err := executeCmd(t, f.app, "duckrow", "-f")
	require.NoError(t, err)
	assert.Contains(t, out, "[my feature]")
	assert.Contains(t, f.source.Calls(), "item:100")
	assert.NotContains(t, f.source.Calls(), "item:0")
}

func TestDuckrowCmd_FeatureFilterUnknownLine(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.FeatureSelector = SelectorFunc(func(string, []string) ([]string, error) {
		return []string{"checkout"}, nil
	})

	_, err := executeCmd(t, f.app, "duckrow", "-f")
	assert.ErrorIs(t, err, domain.ErrFeatureNotFound)
	assert.Empty(t, f.source.Calls())
}

func TestDuckrowCmd_FeatureFilterCancelled(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.FeatureSelector = SelectorFunc(func(string, []string) ([]string, error) { return nil, nil })

	out, err := executeCmd(t, f.app, "duckrow", "--filter")
	require.NoError(t, err)
	assert.Contains(t, out, "No features selected.\n")
	assert.Empty(t, f.source.Calls())
}

func TestDuckrowCmd_NoFeatures(t *testing.T) {
	f := newCLIFixture(t, "organization: contoso\nproject: web\n")

	_, err := executeCmd(t, f.app, "duckrow")
	assert.ErrorIs(t, err, domain.ErrNoFeatures)
}

func TestDuckrowCmd_FetchFailureAborts(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.source.FailChildren(102, errors.New("connection reset"))

	_, err := executeCmd(t, f.app, "duckrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature checkout")
	assert.Nil(t, f.offered)
}

func TestDuckrowCmd_FollowUpPrintsAgentPrompt(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.IsInteractive = func() bool { return true }
	var asked string
	f.app.Prompt = func(title string) (string, error) {
		asked = title
		return "  close the bug  ", nil
	}

	out, err := executeCmd(t, f.app, "duckrow", "checkout")
	require.NoError(t, err)
	assert.Equal(t, actionQuestion, asked)
	assert.Contains(t, out, "Use the /azdo skill to work with the following Azure DevOps work items.")
	assert.Contains(t, out, "User request: close the bug\n")
}

func TestDuckrowCmd_FollowUpLaunches(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.IsInteractive = func() bool { return true }
	f.app.Prompt = func(string) (string, error) { return "triage", nil }
	var launched string
	f.app.Launch = func(_ context.Context, prompt string) error {
		launched = prompt
		return nil
	}

	out, err := executeCmd(t, f.app, "duckrow", "search", "--launch")
	require.NoError(t, err)
	assert.Contains(t, out, "Launching Claude to handle your request...")
	assert.Contains(t, launched, "Index products")
	assert.Contains(t, launched, "User request: triage")
}

func TestDuckrowCmd_FollowUpEmptyAnswer(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.IsInteractive = func() bool { return true }
	f.app.Prompt = func(string) (string, error) { return "   ", nil }
	f.app.Launch = func(context.Context, string) error {
		t.Fatal("launch must not run without a request")
		return nil
	}

	out, err := executeCmd(t, f.app, "duckrow", "--launch")
	require.NoError(t, err)
	assert.Contains(t, out, "No action specified.\n")
}

func TestDuckrowCmd_NonInteractiveSkipsFollowUp(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.Prompt = func(string) (string, error) {
		t.Fatal("prompt must not run on a non-interactive terminal")
		return "", nil
	}

	_, err := executeCmd(t, f.app, "duckrow")
	require.NoError(t, err)
}

func TestDuckrowCmd_RespectsTerminalWidth(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.TermWidth = func() int { return 40 }

	_, err := executeCmd(t, f.app, "duckrow", "checkout")
	require.NoError(t, err)
	for _, line := range f.offered {
		assert.LessOrEqual(t, len(line), 40)
	}
	assert.True(t, strings.HasSuffix(f.offered[1], "Pay ..."), f.offered[1])
}

// --- tree ---

func TestTreeCmd(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "CHECKOUT")
	assert.Contains(t, out, "Feature #100 Checkout revamp")
	assert.Contains(t, out, "└─ User Story #102 Pay with card")
	assert.Contains(t, out, "1/4 done")
}

// --- history ---

func TestHistoryCmd(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No marshal runs recorded.")

	_, err = executeCmd(t, f.app, "marshal-feature")
	require.NoError(t, err)
	_, err = executeCmd(t, f.app, "marshal-feature", "--feature", "search")
	require.NoError(t, err)

	out, err = executeCmd(t, f.app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "checkout")
	assert.Contains(t, out, "search")

	out, err = executeCmd(t, f.app, "history", "--feature", "search")
	require.NoError(t, err)
	assert.NotContains(t, out, "checkout")
	assert.Contains(t, out, "feature-200.yaml")
}

func TestHistoryCmd_Unavailable(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.Features = service.NewFeatureService(f.source, irstore.New(t.TempDir()), nil, nil)

	_, err := executeCmd(t, f.app, "history")
	assert.ErrorIs(t, err, service.ErrHistoryUnavailable)
}
