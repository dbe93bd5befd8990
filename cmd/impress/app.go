package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/impress/internal/api"
	"github.com/dshills/impress/internal/auth"
	"github.com/dshills/impress/internal/config"
	"github.com/dshills/impress/internal/logging"
	"github.com/dshills/impress/internal/render"
	"github.com/dshills/impress/internal/store"
)

// noApp marks commands that run without config, store or client.
const noApp = "impress/no-app"

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	baseURL    string
	stateDir   string
	format     string
	verbose    bool
	debug      bool
}

// app is the wired runtime for one invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	client   *api.Client
	auth     *auth.Service
	renderer render.Renderer
}

// cli owns the command tree and the lazily built app.
type cli struct {
	flags globalFlags
	app   *app
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "impress",
		Short:         "Grow to Impress from the command line",
		Long:          "impress drives the Grow to Impress mentorship platform: 21-day habit guides, the story gallery, resource guides and the chat companion.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[noApp] != "" {
				return nil
			}
			return c.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return codeError(exitInput, "invalid flags: %s", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configFile, "config", "", "Config file (default: ./impress.yaml, then <state_dir>/impress.yaml)")
	pf.StringVar(&c.flags.baseURL, "base-url", "", "Backend base URL")
	pf.StringVar(&c.flags.stateDir, "state-dir", "", "Directory for the local session and cache database")
	pf.StringVar(&c.flags.format, "format", "", "Output format: text, md, json or yaml")
	pf.BoolVar(&c.flags.verbose, "verbose", false, "Log progress to stderr")
	pf.BoolVar(&c.flags.debug, "debug", false, "Log requests and responses (secrets redacted) to stderr")

	root.AddCommand(
		c.pingCmd(),
		c.signupCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.guideCmd(),
		c.storiesCmd(),
		c.resourcesCmd(),
		c.chatCmd(),
		c.quoteCmd(),
		c.versionCmd(),
	)
	return root
}

// setup loads config and wires the logger, store, client and renderer.
func (c *cli) setup(cmd *cobra.Command) error {
	overrides := map[string]any{}
	f := cmd.Flags()
	if f.Changed("base-url") {
		overrides["base_url"] = c.flags.baseURL
	}
	if f.Changed("state-dir") {
		overrides["state_dir"] = c.flags.stateDir
	}
	if f.Changed("format") {
		overrides["format"] = c.flags.format
	}

	cfg, err := config.Load(config.Options{File: c.flags.configFile, Overrides: overrides})
	if err != nil {
		return codeError(exitLocal, "loading config: %s", err)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: c.flags.verbose,
		Debug:   c.flags.debug,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return codeError(exitLocal, "configuring logging: %s", err)
	}
	logger.Debug("config loaded",
		zap.String("file", cfg.File),
		zap.String("base_url", cfg.BaseURL),
		zap.String("state_dir", cfg.StateDir),
	)

	renderer, err := render.NewRenderer(cfg.Format)
	if err != nil {
		return codeError(exitInput, "invalid format: %s", err)
	}

	st, err := store.Open(cfg.StateDir, logger.Named("store"))
	if err != nil {
		return codeError(exitLocal, "opening local store: %s", err)
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		UserID:  cfg.UserID,
		Logger:  logger.Named("api"),
	})
	if err != nil {
		st.Close()
		return codeError(exitLocal, "creating API client: %s", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		client:   client,
		auth:     auth.New(client, st, logger.Named("auth")),
		renderer: renderer,
	}
	if _, err := a.auth.Restore(cmd.Context()); err != nil {
		logger.Warn("restoring session", zap.Error(err))
	}
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.store.Close(); err != nil {
		c.app.logger.Warn("closing store", zap.Error(err))
	}
	_ = c.app.logger.Sync()
	c.app = nil
}

// render writes a view to the command's stdout, ending with a newline.
func (c *cli) render(cmd *cobra.Command, kind render.Kind, data any) error {
	r := render.Renderer(nil)
	if c.app != nil {
		r = c.app.renderer
	} else {
		var err error
		if r, err = render.NewRenderer(c.flags.format); err != nil {
			return codeError(exitInput, "invalid format: %s", err)
		}
	}
	out, err := r.Render(kind, data)
	if err != nil {
		return fmt.Errorf("rendering output: %w", err)
	}
	return write(cmd.OutOrStdout(), out)
}

func write(w io.Writer, out []byte) error {
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(w)
	}
	return nil
}

// exactArgs is cobra.ExactArgs with the input exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return codeError(exitInput, "%s", err)
		}
		return nil
	}
}

// maxArgs is cobra.MaximumNArgs with the input exit code.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return codeError(exitInput, "%s", err)
		}
		return nil
	}
}
