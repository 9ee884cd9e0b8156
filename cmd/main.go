// Command vero assesses athletes' growth data from a roster file.
//
//	vero assess -roster athletes.yaml [-date 2024-06-01] [-format text|markdown|html] [-athlete ID] [-out FILE] [-config FILE] [-env FILE]
//	vero windows [-config FILE] [-env FILE]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/okian/vero/internal/adapters/roster"
	app "github.com/okian/vero/internal/app"
	"github.com/okian/vero/internal/config"
	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/phv"
	"github.com/okian/vero/internal/report"
	"github.com/okian/vero/pkg/logger"
	"github.com/okian/vero/pkg/metrics"
)

// Process exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("invalid usage")

type commandLine struct {
	stdout io.Writer
	stderr io.Writer
	today  func() calendar.Date
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cli := &commandLine{stdout: os.Stdout, stderr: os.Stderr, today: calendar.Today}
	code := cli.execute(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}

// execute runs a command and flushes the logger before the exit code is
// handed back, since os.Exit skips deferred calls.
func (cli *commandLine) execute(ctx context.Context, args []string) int {
	code := cli.exitCode(cli.run(ctx, args))
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(cli.stderr, "failed to flush logs: %v\n", err)
	}
	return code
}

func (cli *commandLine) exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		fmt.Fprintln(cli.stderr, "vero:", err)
		return exitError
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.stderr, "Usage:")
	fmt.Fprintln(cli.stderr, "  vero assess -roster FILE [-date YYYY-MM-DD] [-format text|markdown|html] [-athlete ID] [-out FILE] [-config FILE] [-env FILE]")
	fmt.Fprintln(cli.stderr, "      assess every athlete in the roster, or one with -athlete")
	fmt.Fprintln(cli.stderr, "  vero windows [-config FILE] [-env FILE]")
	fmt.Fprintln(cli.stderr, "      print the sensitive-window definitions in use")
	fmt.Fprintln(cli.stderr, "")
	fmt.Fprintln(cli.stderr, "Configuration is read from $"+config.EnvConfigPath+" or -config, then VERO_* environment variables (optionally from -env).")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errUsage
	}

	switch args[0] {
	case "assess":
		return cli.assess(ctx, args[1:])
	case "windows":
		return cli.windows(ctx, args[1:])
	case "help", "-help", "--help", "-h":
		cli.printUsage()
		return nil
	default:
		fmt.Fprintf(cli.stderr, "unknown command %q\n", args[0])
		cli.printUsage()
		return errUsage
	}
}

// configFlags are accepted by every command.
type configFlags struct {
	path    *string
	envFile *string
}

func (cli *commandLine) newFlagSet(name string) (*flag.FlagSet, configFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.stderr)
	return fs, configFlags{
		path:    fs.String("config", "", "YAML config file (overrides $"+config.EnvConfigPath+")"),
		envFile: fs.String("env", "", "dotenv file with VERO_* variables"),
	}
}

// parse maps flag errors to errUsage; -help is not an error.
func parse(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false, errUsage
	}
	return true, nil
}

// setup loads configuration and initializes logging on stderr.
func (cli *commandLine) setup(ctx context.Context, flags configFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(*flags.envFile); err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if *flags.path != "" {
		cfg, err = config.LoadFrom(ctx, *flags.path)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.WithWriter(cli.stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

func (cli *commandLine) assess(ctx context.Context, args []string) error {
	fs, cfgFlags := cli.newFlagSet("assess")
	rosterPath := fs.String("roster", "", "roster file (YAML or JSON), required")
	dateStr := fs.String("date", "", "assessment date YYYY-MM-DD (default today)")
	formatStr := fs.String("format", string(report.FormatText), "output format: text, markdown or html")
	athleteID := fs.String("athlete", "", "assess only this athlete id")
	outPath := fs.String("out", "", "write the report to this file instead of stdout")

	ok, err := parse(fs, args)
	if !ok {
		return err
	}
	if *rosterPath == "" {
		fmt.Fprintln(cli.stderr, "-roster is required")
		fs.Usage()
		return errUsage
	}
	format, err := report.ParseFormat(*formatStr)
	if err != nil {
		fmt.Fprintln(cli.stderr, err)
		return errUsage
	}
	on := cli.today()
	if *dateStr != "" {
		if on, err = calendar.Parse(*dateStr); err != nil {
			fmt.Fprintln(cli.stderr, err)
			return errUsage
		}
	}

	cfg, err := cli.setup(ctx, cfgFlags)
	if err != nil {
		return err
	}
	log := logger.Named("cli")

	athletes, err := roster.Load(ctx, *rosterPath)
	if err != nil {
		metrics.RecordError("roster", "load")
		return err
	}
	log.Info(ctx, "roster loaded", logger.String("path", *rosterPath), logger.Int("athletes", len(athletes)))

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithEstimator(phv.NewHeuristicEstimator(cfg.EstimatorOptions()...)),
		app.WithDefinitions(cfg.Definitions()),
		app.WithStaleAfterMonths(cfg.StaleAfterMonths),
	)
	if _, err := svc.Import(ctx, athletes); err != nil {
		return err
	}

	var assessments []app.Assessment
	if *athleteID != "" {
		a, err := svc.Assess(ctx, *athleteID, on)
		if err != nil {
			return err
		}
		assessments = []app.Assessment{a}
	} else if assessments, err = svc.AssessAll(ctx, on); err != nil {
		return err
	}

	if err := cli.writeReport(*outPath, format, on, assessments); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		log.Debug(ctx, "metrics written", logger.String("path", cfg.MetricsFile))
	}
	return nil
}

func (cli *commandLine) writeReport(path string, format report.Format, on calendar.Date, assessments []app.Assessment) (err error) {
	if path == "" {
		return report.Render(cli.stdout, format, on, assessments)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()
	return report.Render(f, format, on, assessments)
}

func (cli *commandLine) windows(ctx context.Context, args []string) error {
	fs, cfgFlags := cli.newFlagSet("windows")
	ok, err := parse(fs, args)
	if !ok {
		return err
	}

	cfg, err := cli.setup(ctx, cfgFlags)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tSTART\tEND")
	for _, d := range cfg.Definitions() {
		fmt.Fprintf(tw, "%s\t%+d\t%+d\n", d.Name, d.OffsetStartMonths, d.OffsetEndMonths)
	}
	return tw.Flush()
}
