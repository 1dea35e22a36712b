// Command a11yctl manages saved accessibility profiles from the terminal and
// previews them against a live page in a headless browser.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/a11y-engine/internal/config"
	"github.com/keyxmakerx/a11y-engine/internal/profileclient"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	cfg     config.ClientConfig
	verbose bool
	logger  *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.LoadClient()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flag defaults come from cfg so the
// environment and the command line agree on precedence.
func newRootCmd(cfg config.ClientConfig) *cobra.Command {
	opts := &options{cfg: cfg}

	root := &cobra.Command{
		Use:           "a11yctl",
		Short:         "Manage and preview accessibility profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.cfg.LogLevel, opts.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfg.APIURL, "api-url", cfg.APIURL, "profile API base URL (env A11Y_API_URL)")
	pf.StringVar(&opts.cfg.Token, "token", cfg.Token, "session token (env A11Y_TOKEN)")
	pf.IntVar(&opts.cfg.RetryMax, "retries", cfg.RetryMax, "retries for failed requests")
	pf.DurationVar(&opts.cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newProfilesCmd(opts), newPreviewCmd(opts))
	return root
}

// client builds a profile API client from the resolved flags.
func (o *options) client() *profileclient.Client {
	var logger *slog.Logger
	if o.verbose {
		logger = o.logger
	}
	return profileclient.New(profileclient.Config{
		BaseURL:  o.cfg.APIURL,
		Token:    o.cfg.Token,
		RetryMax: o.cfg.RetryMax,
		Timeout:  o.cfg.Timeout,
		Logger:   logger,
	})
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
