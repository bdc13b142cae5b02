package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/azdo/internal/ado"
	"github.com/alexanderramin/azdo/internal/cli"
	"github.com/alexanderramin/azdo/internal/config"
	"github.com/alexanderramin/azdo/internal/db"
	"github.com/alexanderramin/azdo/internal/irstore"
	"github.com/alexanderramin/azdo/internal/repository"
	"github.com/alexanderramin/azdo/internal/service"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

func main() {
	app := &cli.App{
		Selector:        cli.NewPickerSelector(os.Stdin, os.Stderr),
		FeatureSelector: cli.NewFeatureSelector(),
		Prompt:          cli.HuhPrompt,
		Launch:          cli.ClaudeLauncher(os.Stdin, os.Stdout, os.Stderr),
		Bootstrap:       bootstrap,
	}

	// Detect interactive terminal for pickers, prompts, and spinners.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	app.TermWidth = func() int {
		w, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return 0
		}
		return w
	}

	err := cli.NewRootCmd(app).Execute()
	closeHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var closeHistory = func() {}

// bootstrap loads the config file and wires the REST client, the IR store,
// and the marshal history journal.
func bootstrap(app *cli.App, opts cli.GlobalOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	cfg.Override(opts.Org, opts.Project, opts.Repo)
	app.Config = cfg

	adoCfg := ado.LoadConfig(cfg.Org(), cfg.ProjectName())
	verbose := opts.Verbose || adoCfg.LogCalls
	var observer ado.Observer = ado.NoopObserver{}
	if verbose {
		observer = ado.NewLogObserver(os.Stderr)
	}
	client := ado.NewClient(adoCfg, ado.NewTokenSource(adoCfg), observer)
	app.WorkItems = client
	app.Threads = client

	var useCaseObservers []service.UseCaseObserver
	if verbose {
		useCaseObservers = append(useCaseObservers, service.NewLogUseCaseObserver(os.Stderr))
	}

	store := irstore.New(cfg.IRPath())
	database, err := db.OpenDB(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: marshal history disabled: %v\n", err)
		app.Features = service.NewFeatureService(client, store, nil, nil, useCaseObservers...)
		return nil
	}
	closeHistory = func() { _ = database.Close() }

	app.Features = service.NewFeatureService(
		client,
		store,
		repository.NewSQLiteMarshalRunRepo(database),
		db.NewSQLiteUnitOfWork(database),
		useCaseObservers...,
	)
	return nil
}
