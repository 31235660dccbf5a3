// Package commands implements the insighthubctl command tree.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"insighthub/internal/cache"
	"insighthub/internal/config"
	"insighthub/internal/gateway"
	"insighthub/internal/logging"
	"insighthub/internal/models"
	"insighthub/internal/printer"
	"insighthub/internal/reconcile"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	output     string
	server     string
	token      string
	profile    string
	cacheKind  string
	cacheDir   string
	verbose    bool

	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	printer *printer.Printer
	log     *logrus.Logger
	state   *reconcile.State
	closers []io.Closer
}

// Execute runs insighthubctl against os.Args.
func Execute(version string) error {
	return run(os.Args[1:], os.Stdout, os.Stderr, version)
}

func run(args []string, out, errOut io.Writer, version string) error {
	a := &app{out: out, errOut: errOut}
	defer a.teardown()

	root := newRootCmd(a)
	root.Version = version
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {

	root := &cobra.Command{
		Use:   "insighthubctl",
		Short: "InsightHub command-line client",
		Long: `insighthubctl manages InsightHub projects, tasks and goals.

Every change is sent to the InsightHub API. When the API cannot be reached
the change is applied to the local cache instead and marked "local"; the
next successful load replaces local data with the server's.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	flags.StringVarP(&a.output, "output", "o", "table", "Output format: table, json or yaml")
	flags.StringVar(&a.server, "server", "", "InsightHub API base URL")
	flags.StringVar(&a.token, "token", "", "Bearer token for the API")
	flags.StringVar(&a.profile, "profile", "", "Cache profile name")
	flags.StringVar(&a.cacheKind, "cache", "", "Local cache: file, redis or memory")
	flags.StringVar(&a.cacheDir, "cache-dir", "", "Directory for the file cache")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log gateway activity to stderr")

	root.AddCommand(
		newProjectsCmd(a),
		newTasksCmd(a),
		newGoalsCmd(a),
		newStatsCmd(a),
		newTokenCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	format, err := printer.ParseFormat(a.output)
	if err != nil {
		return err
	}
	a.printer = &printer.Printer{Out: a.out, Err: a.errOut, Format: format}

	if err := config.LoadDotEnv(".env"); err != nil {
		return a.printer.Error("could not read .env", err.Error())
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return a.printer.Error("invalid configuration", err.Error())
	}
	a.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return a.printer.Error("invalid configuration", err.Error())
	}
	a.cfg = cfg

	logCfg := cfg.Log
	if a.verbose {
		logCfg.Level = "debug"
	} else if logCfg.File == "" {
		logCfg.Level = "error"
	}
	log, closer, err := logging.NewLogrus(logCfg, a.errOut)
	if err != nil {
		return err
	}
	a.log = log
	a.closers = append(a.closers, closer)

	c, err := a.openCache()
	if err != nil {
		return a.printer.Error("could not open local cache", err.Error())
	}

	gw, err := gateway.NewHTTPClient(gateway.Config{
		BaseURL:          cfg.Client.BaseURL,
		Token:            cfg.Client.Token,
		Timeout:          cfg.Client.Timeout,
		FailureThreshold: cfg.Client.FailureThreshold,
		OpenTimeout:      cfg.Client.OpenTimeout,
	}, log)
	if err != nil {
		return a.printer.Error("invalid server address", err.Error())
	}

	a.state = reconcile.New(gw, reconcile.WithCache(c), reconcile.WithLogger(log))
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Client.BaseURL = a.server
	}
	if flags.Changed("token") {
		cfg.Client.Token = a.token
	}
	if flags.Changed("profile") {
		cfg.Client.Profile = a.profile
	}
	if flags.Changed("cache") {
		cfg.Client.Cache = strings.ToLower(a.cacheKind)
	}
	if flags.Changed("cache-dir") {
		cfg.Client.CacheDir = a.cacheDir
	}
}

func (a *app) openCache() (cache.Cache, error) {
	c := a.cfg.Client
	switch c.Cache {
	case config.CacheFile:
		return cache.NewFile(filepath.Join(c.CacheDir, c.Profile))
	case config.CacheRedis:
		r, err := cache.NewRedisFromURL(c.RedisURL, c.Profile, c.CacheTTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r)
		return r, nil
	}
	return cache.NewMemory(), nil
}

func (a *app) teardown() {
	for _, c := range a.closers {
		c.Close()
	}
	a.closers = nil
}

func (a *app) loadProjects(cmd *cobra.Command) error {
	src, err := a.state.Load(cmd.Context())
	if err != nil {
		return a.fail(err)
	}
	if src != reconcile.SourceServer {
		a.printer.Warning("server unreachable, showing %s data", src)
	}
	return nil
}

func (a *app) loadGoals(cmd *cobra.Command) error {
	src, err := a.state.LoadGoals(cmd.Context())
	if err != nil {
		return a.fail(err)
	}
	if src != reconcile.SourceServer {
		a.printer.Warning("server unreachable, showing %s data", src)
	}
	return nil
}

// saved reports where a mutation landed.
func (a *app) saved(what string, d models.Durability) {
	if d == models.LocalOnly {
		a.printer.Warning("%s saved locally only", what)
		return
	}
	a.printer.Success("%s saved", what)
}

func (a *app) fail(err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return a.printer.Error("invalid input", err.Error())
	case models.IsNotFound(err):
		return a.printer.Error("not found", err.Error(),
			"List what exists:\n  insighthubctl projects list\n  insighthubctl goals list")
	case models.IsPersistence(err):
		return a.printer.Error("server error", err.Error(),
			fmt.Sprintf("Check the server:\n  curl %s/api/healthz", a.cfg.Client.BaseURL))
	}
	return a.printer.Error("request failed", err.Error())
}
