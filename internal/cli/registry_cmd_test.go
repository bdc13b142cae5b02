package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/azdo/internal/ado"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryList(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "registry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "checkout *")
	assert.Contains(t, out, "2026-03-02")
	assert.Contains(t, out, "\n* = default feature (checkout)\n")
}

func TestRegistryList_LastMarshaled(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	run := testutil.NewTestRun(100, testutil.WithRunName("checkout"), testutil.WithRunTime(testutil.FixedNow.Add(-2*time.Hour)))
	require.NoError(t, f.runs.Create(context.Background(), run))

	out, err := executeCmd(t, f.app, "registry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Last marshaled")

	var checkoutRow, searchRow string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "checkout *"):
			checkoutRow = line
		case strings.Contains(line, "search"):
			searchRow = line
		}
	}
	assert.Contains(t, checkoutRow, "2h ago")
	assert.Contains(t, searchRow, "never")
}

func TestRegistryList_Empty(t *testing.T) {
	f := newCLIFixture(t, "organization: contoso\nproject: web\n")

	out, err := executeCmd(t, f.app, "registry", "list")
	require.NoError(t, err)
	assert.Equal(t, "No features registered.\n", out)
}

func TestRegistryList_LegacyBacklogKey(t *testing.T) {
	f := newCLIFixture(t, "organization: contoso\nproject: web\nbacklog_feature_id: 42\n")

	out, err := executeCmd(t, f.app, "registry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "backlog")
	assert.Contains(t, out, "42")
}

func TestRegistryAdd_PersistsAndStampsDate(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "registry", "add", "--name", "billing", "--id", "300", "--description", "Invoices")
	require.NoError(t, err)
	assert.Equal(t, "Added feature 'billing' (ID 300)\n", out)

	reg := reloadConfig(t, f.cfgPath).Registry()
	assert.Equal(t, domain.Feature{ID: 300, Description: "Invoices", AddedAt: "2026-03-14"}, reg.Features["billing"])
	assert.Equal(t, "checkout", reg.Default)
}

func TestRegistryAdd_FirstBecomesDefault(t *testing.T) {
	f := newCLIFixture(t, "organization: contoso\nproject: web\n")

	_, err := executeCmd(t, f.app, "registry", "add", "--name", "billing", "--id", "300")
	require.NoError(t, err)
	assert.Equal(t, "billing", reloadConfig(t, f.cfgPath).Registry().Default)
}

func TestRegistryAdd_Duplicate(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	_, err := executeCmd(t, f.app, "registry", "add", "--name", "search", "--id", "999")
	assert.ErrorIs(t, err, domain.ErrFeatureExists)
	assert.Equal(t, 200, reloadConfig(t, f.cfgPath).Registry().Features["search"].ID)
}

func TestRegistryAdd_MissingFlagsNonInteractive(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	_, err := executeCmd(t, f.app, "registry", "add", "--name", "billing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name and --id are required")
}

func TestRegistryAdd_PromptsForMissingFields(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.IsInteractive = func() bool { return true }
	answers := map[string]string{
		"Feature name":           " billing ",
		"Work item ID":           "300",
		"Description (optional)": "",
	}
	var asked []string
	f.app.Prompt = func(title string) (string, error) {
		asked = append(asked, title)
		return answers[title], nil
	}

	out, err := executeCmd(t, f.app, "registry", "add")
	require.NoError(t, err)
	assert.Equal(t, []string{"Feature name", "Work item ID", "Description (optional)"}, asked)
	assert.Equal(t, "Added feature 'billing' (ID 300)\n", out)
}

func TestRegistryAdd_PromptedIDMustBeNumeric(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.IsInteractive = func() bool { return true }
	f.app.Prompt = func(string) (string, error) { return "abc", nil }

	_, err := executeCmd(t, f.app, "registry", "add", "--name", "billing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid work item ID "abc"`)
}

func TestRegistryAdd_PromptError(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	f.app.IsInteractive = func() bool { return true }
	boom := errors.New("tty gone")
	f.app.Prompt = func(string) (string, error) { return "", boom }

	_, err := executeCmd(t, f.app, "registry", "add")
	assert.ErrorIs(t, err, boom)
}

func TestRegistryRemove(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "registry", "remove", "--name", "search")
	require.NoError(t, err)
	assert.Equal(t, "Removed feature 'search'\n", out)
	assert.NotContains(t, reloadConfig(t, f.cfgPath).Registry().Features, "search")
}

func TestRegistryRemove_DefaultRefused(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	_, err := executeCmd(t, f.app, "registry", "remove", "--name", "checkout")
	assert.ErrorIs(t, err, domain.ErrRemoveDefault)
	assert.Contains(t, reloadConfig(t, f.cfgPath).Registry().Features, "checkout")
}

func TestRegistryRemove_Unknown(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	_, err := executeCmd(t, f.app, "registry", "remove", "--name", "nope")
	assert.ErrorIs(t, err, domain.ErrFeatureNotFound)
}

func TestRegistrySetDefault(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	out, err := executeCmd(t, f.app, "registry", "set-default", "--name", "search")
	require.NoError(t, err)
	assert.Equal(t, "Default feature set to 'search'\n", out)
	assert.Equal(t, "search", reloadConfig(t, f.cfgPath).Registry().Default)

	_, err = executeCmd(t, f.app, "registry", "remove", "--name", "checkout")
	require.NoError(t, err)
}

func TestRegistrySetDefault_Unknown(t *testing.T) {
	f := newCLIFixture(t, testConfig)

	_, err := executeCmd(t, f.app, "registry", "set-default", "--name", "nope")
	assert.ErrorIs(t, err, domain.ErrFeatureNotFound)
}

func TestRegistryStatus(t *testing.T) {
	f := newCLIFixture(t, testConfig)
	checkout := detail(100, domain.TypeFeature, "Checkout revamp", "Active")
	checkout.CreatedDate = "2026-01-05T08:30:00.123Z"
	checkout.ChangedDate = "2026-03-10T17:45:09Z"
	f.items.details[100] = &checkout
	f.items.children[100] = []ado.WorkItemDetail{
		detail(101, domain.TypeTask, "Fix bug", "New"),
		detail(102, domain.TypeUserStory, "Pay with card", "Active"),
		detail(104, domain.TypeTask, "Audit", "New"),
	}
	f.items.errs[200] = errors.New("connection reset")

	out, err := executeCmd(t, f.app, "registry", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Feature: checkout (ID 100)\n")
	assert.Contains(t, out, "  Title:    Checkout revamp\n")
	assert.Contains(t, out, "  Created:  2026-01-05 08:30\n")
	assert.Contains(t, out, "  Changed:  2026-03-10 17:45\n")
	assert.Contains(t, out, "  Children: 3 total: 2 Task, 1 User Story\n")
	assert.Contains(t, out, "Feature: search (ID 200)\n")
	assert.Contains(t, out, "  ERROR fetching: connection reset\n")
}
