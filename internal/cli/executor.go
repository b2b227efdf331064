package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/config"
	"github.com/pineunity/apmec-horizon/internal/database"
	"github.com/pineunity/apmec-horizon/internal/deploy"
	"github.com/pineunity/apmec-horizon/internal/formatting"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
	"github.com/pineunity/apmec-horizon/internal/store"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// cliSession identifies CLI actions in audit logs.
const cliSession = "cli"

// ExecutorOptions contains configuration options for command execution.
type ExecutorOptions struct {
	// Format specifies the desired output format
	Format formatting.OutputFormat
	// Template is used with formatting.FormatTemplate
	Template string
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
	// Debug enables debug logging
	Debug bool
	// ConfigPath specifies the configuration directory path
	ConfigPath string
	// Endpoint overrides orchestrator.endpoint from the configuration
	Endpoint string
	// Color enables coloured table output
	Color bool
	// Out and ErrOut default to os.Stdout and os.Stderr.
	Out    io.Writer
	ErrOut io.Writer
}

// Executor runs CLI commands against the orchestration API. It polls through
// the same reconciler as the panel, with one local store scope.
type Executor struct {
	options   ExecutorOptions
	config    config.PanelConfig
	client    *apmec.Client
	poller    *reconciler.Poller
	scope     *store.Scope
	formatter formatting.Formatter
	out       io.Writer
	errOut    io.Writer

	db *database.DB
}

// NewExecutor loads the configuration and creates the orchestration client.
func NewExecutor(options ExecutorOptions) (*Executor, error) {
	if options.ConfigPath == "" {
		return nil, fmt.Errorf("Logic error: empty executor ConfigPath")
	}

	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		return nil, err
	}
	if options.Endpoint != "" {
		cfg.Orchestrator.Endpoint = strings.TrimRight(options.Endpoint, "/")
	}

	client, err := apmec.NewClient(cfg.Orchestrator)
	if err != nil {
		return nil, err
	}

	e := &Executor{
		options: options,
		config:  cfg,
		client:  client,
		poller:  reconciler.NewPoller(client),
		scope:   store.NewScope(),
		out:     options.Out,
		errOut:  options.ErrOut,
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.errOut == nil {
		e.errOut = os.Stderr
	}

	e.formatter, err = formatting.NewFactory().CreateFormatter(formatting.Options{
		Format:   options.Format,
		Quiet:    options.Quiet,
		Color:    options.Color,
		Template: options.Template,
		Out:      e.out,
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("CLI", "Using orchestration API at %s", client.Endpoint())
	return e, nil
}

// Config returns the loaded configuration.
func (e *Executor) Config() config.PanelConfig {
	return e.config
}

// Client returns the orchestration client.
func (e *Executor) Client() *apmec.Client {
	return e.client
}

// Close releases the operations log, if it was opened.
func (e *Executor) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *Executor) tableOutput() bool {
	return e.options.Format == formatting.FormatTable || e.options.Format == formatting.FormatWide
}

// withSpinner runs fn while showing a spinner on interactive table output.
func (e *Executor) withSpinner(message string, fn func()) {
	f, isFile := e.errOut.(*os.File)
	if e.options.Quiet || !e.tableOutput() || !isFile || !isTerminal(f) {
		fn()
		return
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(e.errOut))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()
	fn()
}

func (e *Executor) friendly(err error) error {
	return FriendlyError(err, e.client.Endpoint())
}

func (e *Executor) warn(msg string) {
	if e.options.Quiet {
		return
	}
	warning := FormatWarning(msg)
	if e.options.Color {
		warning = text.FgYellow.Sprint(warning)
	}
	fmt.Fprintln(e.errOut, warning)
}

func (e *Executor) success(msg string) {
	if e.options.Quiet {
		return
	}
	fmt.Fprintln(e.out, FormatSuccess(msg))
}

// pollError returns the error to report for a finished poll, or nil when
// its rows can be shown.
func (e *Executor) pollError(result reconciler.PollResult, allowStale bool) error {
	switch result.Outcome {
	case reconciler.OutcomeOK:
		if result.Message != "" {
			e.warn(result.Message)
		}
		return nil
	case reconciler.OutcomeStale:
		if allowStale {
			e.warn(result.Message)
			return nil
		}
	}
	return e.friendly(result.Err)
}

// List polls kind once and renders the rows.
func (e *Executor) List(ctx context.Context, kind apmec.Kind, filters map[string]string) error {
	var result reconciler.PollResult
	e.withSpinner(fmt.Sprintf("Fetching %s...", kind.Plural()), func() {
		result = e.poller.Poll(ctx, e.scope, kind, filters)
	})
	if err := e.pollError(result, false); err != nil {
		return err
	}
	return e.formatter.FormatRows(kind, result.Rows)
}

// Get shows the full record of one resource.
func (e *Executor) Get(ctx context.Context, kind apmec.Kind, id string) error {
	var (
		rec apmec.Record
		err error
	)
	e.withSpinner(fmt.Sprintf("Fetching %s %s...", kind, id), func() {
		rec, err = e.client.Show(ctx, kind, id)
	})
	if err != nil {
		return e.friendly(err)
	}
	return e.formatter.FormatRecord(kind, rec)
}

// Events lists the lifecycle events of a resource. When parentKind is set
// the resource must exist.
func (e *Executor) Events(ctx context.Context, parentKind apmec.Kind, resourceID string) error {
	var result reconciler.PollResult
	e.withSpinner(fmt.Sprintf("Fetching events of %s...", resourceID), func() {
		result = e.poller.PollEvents(ctx, e.scope, parentKind, resourceID)
	})
	if err := e.pollError(result, false); err != nil {
		return err
	}
	return e.formatter.FormatRows(apmec.KindEvent, result.Rows)
}

// WatchOptions controls Watch.
type WatchOptions struct {
	// Interval between polls.
	Interval time.Duration
	// Count stops after this many polls; 0 watches until ctx ends.
	Count int
}

// Watch re-polls kind on an interval and renders every result. Transient
// failures show the last known rows with a warning; a NotFound or any other
// failure ends the watch with an error.
func (e *Executor) Watch(ctx context.Context, kind apmec.Kind, filters map[string]string, opts WatchOptions) error {
	if opts.Interval <= 0 {
		opts.Interval = e.config.Panel.PollInterval
	}
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultPollInterval
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		result := e.poller.Poll(ctx, e.scope, kind, filters)
		if ctx.Err() != nil {
			return nil
		}
		if err := e.pollError(result, true); err != nil {
			return err
		}

		if e.tableOutput() && !e.options.Quiet {
			fmt.Fprintf(e.out, "Every %s: %s at %s\n", opts.Interval, kind.Plural(), time.Now().Format(time.TimeOnly))
		}
		if err := e.formatter.FormatRows(kind, result.Rows); err != nil {
			return err
		}

		if opts.Count > 0 && polls >= opts.Count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// operations opens the operations log on first use.
func (e *Executor) operations() (*database.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := database.Open(e.config.Database.Path)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *Executor) deployer() (*deploy.Deployer, error) {
	db, err := e.operations()
	if err != nil {
		return nil, err
	}
	return deploy.NewDeployer(e.client, db), nil
}

// Deploy creates an instance of kind.
func (e *Executor) Deploy(ctx context.Context, kind apmec.Kind, req deploy.Request) error {
	d, err := e.deployer()
	if err != nil {
		return err
	}

	var rec apmec.Record
	e.withSpinner(fmt.Sprintf("Deploying %s %s...", kind, req.Name), func() {
		rec, err = d.Deploy(ctx, kind, req, cliSession)
	})
	if err != nil {
		return e.friendly(err)
	}

	if !e.tableOutput() {
		return e.formatter.FormatRecord(kind, rec)
	}
	if e.options.Quiet {
		fmt.Fprintln(e.out, rec.ID())
		return nil
	}
	e.success(fmt.Sprintf("%s %s create operation initiated (id %s)", kind.Title(), req.Name, rec.ID()))
	return nil
}

// Delete terminates the given resources. It attempts every id and returns
// the joined errors.
func (e *Executor) Delete(ctx context.Context, kind apmec.Kind, ids []string) error {
	d, err := e.deployer()
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range ids {
		if err := d.Delete(ctx, kind, id, cliSession); err != nil {
			errs = append(errs, e.friendly(err))
			continue
		}
		e.success(fmt.Sprintf("%s %s delete operation initiated", kind.Title(), id))
	}
	return errors.Join(errs...)
}

// Operations renders the most recent deploy and delete operations.
func (e *Executor) Operations(ctx context.Context, limit int) error {
	db, err := e.operations()
	if err != nil {
		return err
	}
	ops, err := db.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(ops) == 0 && e.tableOutput() {
		fmt.Fprintln(e.out, "No operations recorded")
		return nil
	}
	return e.formatter.FormatData(ops)
}
